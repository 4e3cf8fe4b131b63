// Package api
// Author: momentics@gmail.com
//
// Deferred result of a submitted task.

package api

// Future is the completion handle returned for every submitted task.
type Future interface {
	// Done is closed after the task finished, successfully or not.
	Done() <-chan struct{}

	// Err returns the task's error once Done is closed; nil before that.
	Err() error
}
