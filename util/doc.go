// Package util holds small string helpers shared by settings, the API and
// the management CLI.
package util
