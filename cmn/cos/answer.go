// Package cos provides common low-level types and utilities for all fgfs packages.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package cos

// Answer is the outcome of a collective query.
// Error is distinct from No and survives negation.
type Answer int8

const (
	No Answer = iota
	Yes
	Error
)

func FromBool(b bool) Answer {
	if b {
		return Yes
	}
	return No
}

func (a Answer) IsYes() bool { return a == Yes }
func (a Answer) IsNo() bool  { return a == No }
func (a Answer) IsErr() bool { return a == Error }

// Not flips Yes and No; Error stays Error.
func (a Answer) Not() Answer {
	switch a {
	case Yes:
		return No
	case No:
		return Yes
	default:
		return Error
	}
}

func (a Answer) String() string {
	switch a {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "error"
	}
}

func (a Answer) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

func (a *Answer) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case `"yes"`:
		*a = Yes
	case `"no"`:
		*a = No
	case `"error"`:
		*a = Error
	default:
		return NewErrInvalidAnswer(string(b))
	}
	return nil
}
