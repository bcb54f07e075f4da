/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package fdfserr

import (
	"math"
	"runtime"
)

// FuncMap is called for each error in a hierarchy; return false to stop.
type FuncMap func(e error) bool

// Error extends the standard error with a numeric code and parent hierarchy.
//
// A transport failure surfaced deep inside the pool keeps its original code
// and message while being wrapped by the orchestrator's higher-level Error,
// so callers can either inspect the immediate code or walk to the root cause.
type Error interface {
	error

	// IsCode reports whether this error's own code equals code (parents not checked).
	IsCode(code CodeError) bool
	// HasCode reports whether this error or any parent carries code.
	HasCode(code CodeError) bool
	// GetCode returns this error's own code.
	GetCode() CodeError
	// GetParentCode returns the unique set of codes across this error and its parents.
	GetParentCode() []CodeError

	// Is implements errors.Is compatibility.
	Is(e error) bool
	// IsError reports whether err has the same text as this error.
	IsError(err error) bool
	// HasError reports whether err's text appears anywhere in the hierarchy.
	HasError(err error) bool
	// HasParent reports whether this error has at least one parent.
	HasParent() bool
	// GetParent returns the flattened parent chain, including the receiver if withMainError.
	GetParent(withMainError bool) []error
	// Map visits this error and its parents depth-first, stopping if fct returns false.
	Map(fct FuncMap) bool
	// ContainsString reports whether s appears in this error's message or any parent's.
	ContainsString(s string) bool

	// Add appends parent errors to this error's hierarchy.
	Add(parent ...error)
	// SetParent replaces the parent hierarchy with the given errors.
	SetParent(parent ...error)

	// Code returns the raw numeric code.
	Code() uint16
	// CodeSlice returns the code of this error followed by each parent's code.
	CodeSlice() []uint16

	// StringError returns only this error's own message, ignoring parents.
	StringError() string
	// StringErrorSlice returns this error's message followed by each parent's.
	StringErrorSlice() []string

	// GetError returns a plain stdlib error wrapping this error's message.
	GetError() error
	// GetErrorSlice flattens this error and all parents into plain stdlib errors.
	GetErrorSlice() []error

	// Unwrap exposes the parent chain for errors.Is / errors.As.
	Unwrap() []error

	// GetTrace returns the "file#line" (or "function#line") of the call site.
	GetTrace() string
	// GetTraceSlice returns the trace of this error followed by each parent's.
	GetTraceSlice() []string

	// CodeError renders "code: message" using pattern (or a default pattern if empty).
	CodeError(pattern string) string
	// CodeErrorSlice renders CodeError for this error and each parent.
	CodeErrorSlice(pattern string) []string
}

const (
	defaultPattern = "%d: %s"
)

// Make coerces a plain error into an Error, wrapping it at code 0 if needed.
func Make(e error) Error {
	if e == nil {
		return nil
	}

	if er, ok := e.(Error); ok {
		return er
	}

	return &ers{
		c: 0,
		e: e.Error(),
		t: getFrame(),
	}
}

// New creates an Error with the given code, message and optional parents.
func New(code uint16, message string, parent ...error) Error {
	var p = make([]Error, 0, len(parent))

	for _, e := range parent {
		if er := Make(e); er != nil {
			p = append(p, er)
		}
	}

	return &ers{
		c: code,
		e: message,
		p: p,
		t: getFrame(),
	}
}

// NewErrorTrace creates an Error with an explicit call-site location, used
// when reconstructing an Error from data captured on another goroutine.
func NewErrorTrace(code int, msg string, file string, line int, parent ...error) Error {
	var p = make([]Error, 0, len(parent))

	for _, e := range parent {
		if er := Make(e); er != nil {
			p = append(p, er)
		}
	}

	var c uint16
	switch {
	case code < 0:
		c = 0
	case code > math.MaxUint16:
		c = math.MaxUint16
	default:
		c = uint16(code)
	}

	return &ers{
		c: c,
		e: msg,
		p: p,
		t: runtime.Frame{File: file, Line: line},
	}
}

// IfError returns an Error built from the non-nil entries of parent, or nil
// if none of them are valid errors. Use this to fold "maybe an error"
// collaborator results into a single optional Error without an if/nil dance.
func IfError(code uint16, message string, parent ...error) Error {
	p := make([]Error, 0, len(parent))

	for _, e := range parent {
		if er := Make(e); er != nil {
			p = append(p, er)
		}
	}

	if len(p) < 1 {
		return nil
	}

	return &ers{
		c: code,
		e: message,
		p: p,
		t: getFrame(),
	}
}
