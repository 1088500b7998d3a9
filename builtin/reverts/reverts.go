// Copyright (c) 2025 The Muon developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
)

// Kind classifies a rejected call.
type Kind uint8

const (
	Validation    Kind = iota + 1 // bad input, nothing was changed
	Authorization                 // caller lacks the capability
	State                         // the record is not in a state allowing the call
	Signature                     // a signed quote was rejected
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Authorization:
		return "authorization"
	case State:
		return "state"
	case Signature:
		return "signature"
	default:
		return "unknown"
	}
}

// ErrRevert is a protocol level rejection. A reverted call leaves no side effects.
type ErrRevert struct {
	kind    Kind
	message string
}

func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

// Is matches sentinel reverts by kind and message, so wrapped copies compare equal.
func (e *ErrRevert) Is(target error) bool {
	var t *ErrRevert
	if !errors.As(target, &t) {
		return false
	}
	return t.kind == e.kind && t.message == e.message
}

// Wrapf returns a revert of the same kind carrying extra detail, still matching e.
func (e *ErrRevert) Wrapf(format string, args ...any) error {
	return &wrapped{revert: e, detail: fmt.Sprintf(format, args...)}
}

type wrapped struct {
	revert *ErrRevert
	detail string
}

func (w *wrapped) Error() string { return w.revert.message + ": " + w.detail }
func (w *wrapped) Unwrap() error { return w.revert }

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// KindOf returns the kind of a revert, or 0 for any other error.
func KindOf(err error) Kind {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.kind
	}
	return 0
}
