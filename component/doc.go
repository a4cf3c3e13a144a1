// Package component defines the lifecycle contract for process-owned
// resources and a Registry that starts them in order and stops them in
// reverse.
package component
