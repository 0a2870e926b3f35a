// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
)

// Exit codes.
const (
	exitSuccess      = 0
	exitFailure      = 1 // nothing to report, e.g. no core dump saved
	exitCommandError = 2 // bad arguments, unreadable files
)

// An exitError is an error with a specific exit code.
type exitError struct {
	Code    int
	Message string
	Err     error // optional
}

func (e *exitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *exitError) Unwrap() error {
	return e.Err
}

func newExitError(code int, message string) *exitError {
	return &exitError{Code: code, Message: message}
}

func wrapExitError(code int, message string, err error) *exitError {
	return &exitError{Code: code, Message: message, Err: err}
}

// exitCode returns the exit code for err; exitCommandError if err
// carries none.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var e *exitError
	if errors.As(err, &e) {
		return e.Code
	}
	return exitCommandError
}
