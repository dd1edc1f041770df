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
 */

package xerrors

import (
	"fmt"
	"runtime"
	"strings"
)

// Error extends the standard error interface with a code and a parent chain.
// It is not safe for concurrent modification (Add); concurrent reads are
// fine.
type Error interface {
	error

	Code() CodeError
	IsCode(code CodeError) bool
	HasCode(code CodeError) bool

	Add(parent ...error)
	HasParent() bool

	Is(err error) bool
	Unwrap() []error

	// Trace returns "file:line" of the call that created this error.
	Trace() string
}

type ers struct {
	code CodeError
	msg  string
	pars []Error
	file string
	line int
}

func callerTrace(skip int) (string, int) {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "", 0
	}
	if i := strings.LastIndex(file, "/"); i >= 0 {
		file = file[i+1:]
	}
	return file, line
}

func newError(code CodeError, msg string, parent ...error) Error {
	file, line := callerTrace(3)
	e := &ers{code: code, msg: msg, file: file, line: line}
	e.Add(parent...)
	return e
}

func newErrorf(code CodeError, format string, args ...interface{}) Error {
	file, line := callerTrace(3)
	return &ers{code: code, msg: fmt.Sprintf(format, args...), file: file, line: line}
}

// New builds an Error with no registered message, just the given text.
func New(code CodeError, msg string, parent ...error) Error {
	return newError(code, msg, parent...)
}

func (e *ers) Code() CodeError { return e.code }

func (e *ers) IsCode(code CodeError) bool { return e.code == code }

func (e *ers) HasCode(code CodeError) bool {
	if e.IsCode(code) {
		return true
	}
	for _, p := range e.pars {
		if p.HasCode(code) {
			return true
		}
	}
	return false
}

func (e *ers) Add(parent ...error) {
	for _, v := range parent {
		if v == nil {
			continue
		}
		if er, ok := v.(*ers); ok {
			e.pars = append(e.pars, er)
		} else if er, ok := v.(Error); ok {
			e.pars = append(e.pars, er)
		} else {
			e.pars = append(e.pars, &ers{msg: v.Error()})
		}
	}
}

func (e *ers) HasParent() bool { return len(e.pars) > 0 }

func (e *ers) Is(err error) bool {
	if err == nil {
		return false
	}
	if oe, ok := err.(*ers); ok {
		return e.code != UnknownError && e.code == oe.code
	}
	return strings.EqualFold(e.msg, err.Error())
}

func (e *ers) Unwrap() []error {
	if len(e.pars) == 0 {
		return nil
	}
	r := make([]error, 0, len(e.pars))
	for _, p := range e.pars {
		r = append(r, p)
	}
	return r
}

func (e *ers) Trace() string {
	if e.file == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", e.file, e.line)
}

// Error renders "[code] message: parent1; parent2" — logged and, for
// worker failures, sent back to the client verbatim.
func (e *ers) Error() string {
	s := e.msg
	if e.code != UnknownError {
		s = fmt.Sprintf("[%d] %s", e.code, e.msg)
	}
	if len(e.pars) > 0 {
		parts := make([]string, 0, len(e.pars))
		for _, p := range e.pars {
			parts = append(parts, p.Error())
		}
		s = s + ": " + strings.Join(parts, "; ")
	}
	return s
}
