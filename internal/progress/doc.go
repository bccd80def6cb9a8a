// Package progress renders a live upload indicator without touching the
// transfer path. The encoder increments an atomic byte counter; a polling
// goroutine reads it at a bounded rate and drives the terminal bar.
package progress
