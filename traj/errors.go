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

// Package traj contains what the trajectory readers in its sub-packages
// share: their error types.
package traj

import (
	"fmt"

	agg "github.com/rmera/goagg"
)

const (
	TrajUnIniRead  = "Traj object uninitialized to read"
	TrajUnIniWrite = "Traj object uninitialized to write"
	ReadError      = "Error reading frame"
	UnableToOpen   = "Unable to open file"
	NilCoordinates = "Given nil coordinates"
	WrongFormat    = "Wrong format in the file or frame"
	EOF            = "EOF"
)

// Error is the error type of trajectory readers and writers. It implements agg.TrajError.
type Error struct {
	message  string
	filename string //the file that has problems, or empty string if none.
	format   string
	deco     []string
	critical bool
}

// NewError returns a critical Error for the file name, in the given format.
func NewError(format, name, message, caller string) *Error {
	return &Error{message: message, filename: name, format: format, deco: []string{caller}, critical: true}
}

func (err *Error) Error() string {
	return fmt.Sprintf("%s file %s error: %s", err.format, err.filename, err.message)
}

// Decorate adds new information to the error.
func (err *Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// FileName returns the file to which the failing trajectory was associated.
func (err *Error) FileName() string { return err.filename }

// Format returns the format of the file associated to the error.
func (err *Error) Format() string { return err.format }

// Critical returns true if the error is critical, false otherwise.
func (err *Error) Critical() bool { return err.critical }

// lastFrameError implements agg.LastFrameError.
type lastFrameError struct {
	deco     []string
	fileName string
	format   string
}

// NormalLastFrameTermination does nothing.
func (E *lastFrameError) NormalLastFrameTermination() {}

func (E *lastFrameError) FileName() string { return E.fileName }

func (E *lastFrameError) Error() string { return EOF }

func (E *lastFrameError) Critical() bool { return false }

func (E *lastFrameError) Format() string { return E.format }

func (E *lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

// NewLastFrameError returns the error that signals the normal end of a trajectory.
func NewLastFrameError(format, name, caller string) agg.LastFrameError {
	return &lastFrameError{fileName: name, format: format, deco: []string{caller}}
}
