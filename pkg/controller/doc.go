// Package controller implements the form submit controller: it binds to a
// form's field events, validates values against their declared constraints,
// surfaces errors through a view, drives an injected submit action and
// reports the outcome as a transient notification.
//
// Lifecycle:
//
//	idle -(submit, invalid)-> validating -> idle          (errors shown)
//	idle -(submit, valid)---> validating -> submitting
//	submitting -(success)---> settled-success -(timeout/ack)-> idle
//	submitting -(failure)---> settled-error -(timeout/ack/correction)-> idle
//
// A Submit while submitting is ignored. The controller guards its state with
// a mutex, and view, notification and hook calls are made after the lock is
// released so they may call back into the controller.
package controller
