/*
 * errors.go, part of goagg.
 *
 * Copyright 2026 The goagg Authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package agg

import (
	"fmt"
	"strings"
)

// CError is the general error type of the package. It implements Error and,
// if it comes from a file, TrajError.
type CError struct {
	msg      string
	filename string
	deco     []string
	critical bool
	err      error //the wrapped error, if any
}

// NewError returns a critical CError with the message msg, decorated with caller.
func NewError(msg, caller string) *CError {
	return &CError{msg: msg, deco: []string{caller}, critical: true}
}

// WrapError returns a CError wrapping err, decorated with caller.
func WrapError(err error, caller string) *CError {
	return &CError{msg: err.Error(), deco: []string{caller}, critical: true, err: err}
}

// InFile sets the file associated to the error and returns the error.
func (err *CError) InFile(name string) *CError {
	err.filename = name
	return err
}

func (err *CError) Error() string {
	if err.filename != "" {
		return fmt.Sprintf("%s (file %s)", err.msg, err.filename)
	}
	return err.msg
}

// Decorate adds the dec string to the decoration slice of the error and
// returns the resulting slice. An empty dec just returns the current slice.
func (err *CError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Trace returns the decorations, innermost call first.
func (err *CError) Trace() string {
	return strings.Join(err.deco, " <- ")
}

func (err *CError) Critical() bool { return err.critical }

func (err *CError) FileName() string { return err.filename }

func (err *CError) Format() string { return "" }

func (err *CError) Unwrap() error { return err.err }

// ErrDecorate decorates err with the caller's name if it implements Error,
// and returns it. Other errors are wrapped in a CError.
func ErrDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(Error); ok {
		e.Decorate(caller)
		return err
	}
	return WrapError(err, caller)
}

// lastFrameError implements LastFrameError
type lastFrameError struct {
	deco     []string
	fileName string
}

// NormalLastFrameTermination does nothing
func (E *lastFrameError) NormalLastFrameTermination() {}

func (E *lastFrameError) FileName() string { return E.fileName }

func (E *lastFrameError) Error() string { return "EOF" }

func (E *lastFrameError) Critical() bool { return false }

func (E *lastFrameError) Format() string { return "mem" }

func (E *lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newLastFrameError(filename string, caller string) *lastFrameError {
	return &lastFrameError{fileName: filename, deco: []string{caller}}
}
