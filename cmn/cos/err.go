// Package cos provides common low-level types and utilities for all fgfs packages.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"errors"
	"fmt"
)

type (
	ErrNotImplemented struct {
		what string
	}
	ErrInvalidAnswer struct {
		val string
	}
)

func NewErrNotImplemented(what string) *ErrNotImplemented { return &ErrNotImplemented{what} }
func (e *ErrNotImplemented) Error() string                { return e.what + ": not implemented" }

func IsErrNotImplemented(err error) bool {
	var e *ErrNotImplemented
	return errors.As(err, &e)
}

func NewErrInvalidAnswer(val string) *ErrInvalidAnswer { return &ErrInvalidAnswer{val} }
func (e *ErrInvalidAnswer) Error() string              { return fmt.Sprintf("invalid answer %s", e.val) }

func Plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
