package views

import (
	"context"
	"errors"

	"mbaayadmin/internal/apiclient"
)

type State string

const (
	StateLoading  State = "loading"
	StateError    State = "error"
	StateNotFound State = "not_found"
	StateReady    State = "ready"
)

// Detail is the model of a single-record page. Exactly one of the states is
// rendered; a fetch error is never shown as an empty record.
type Detail[T any] struct {
	State   State
	Item    T
	Message string
}

// StateOf maps a fetch outcome to a page state. A read that outlived the
// render budget means the shared fetch is still running.
func StateOf(err error) (State, string) {
	switch {
	case err == nil:
		return StateReady, ""
	case errors.Is(err, context.DeadlineExceeded):
		return StateLoading, "Still loading. This page will refresh shortly."
	}
	return StateError, apiclient.Message(err, "Something went wrong while loading this page.")
}

// DetailOf builds the detail model; item is nil when the backend has no
// such record.
func DetailOf[T any](item *T, err error) Detail[T] {
	st, msg := StateOf(err)
	if st != StateReady {
		return Detail[T]{State: st, Message: msg}
	}
	if item == nil {
		return Detail[T]{State: StateNotFound, Message: "We could not find that record."}
	}
	return Detail[T]{State: StateReady, Item: *item}
}
