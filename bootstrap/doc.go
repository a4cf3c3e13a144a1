// Package bootstrap runs the process lifecycle shared by the server and
// the management commands: build the logger from settings, start
// registered components, run configure callbacks and hooks, then either
// block until a signal (Run) or execute one task (RunTask) before shutting
// everything down in reverse order.
package bootstrap
