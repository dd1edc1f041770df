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

// Package xerrors provides the error taxonomy shared by every component:
// a numeric CodeError (HTTP-status-like), parent chaining, and a message
// registry, scaled down from a general-purpose library's per-package code
// ranges to the five classes this daemon actually raises.
package xerrors

import "strconv"

// CodeError is a numeric classification of an error, similar in spirit to
// an HTTP status code. Zero means "no code assigned".
type CodeError uint16

const (
	UnknownError CodeError = 0
	UnknownMessage        = "unknown error"
)

// Per-class code ranges.
const (
	MinConfigError  CodeError = 500
	MinSocketError  CodeError = 600
	MinParseError   CodeError = 700
	MinStoreError   CodeError = 800
	MinFramingError CodeError = 900
)

var registry = make(map[CodeError]string)

// Register associates a human-readable message with a code. Called once per
// constant from classes.go's init().
func Register(code CodeError, message string) {
	registry[code] = message
}

// Message returns the registered message for code, or UnknownMessage.
func (c CodeError) Message() string {
	if c == UnknownError {
		return UnknownMessage
	}
	if m, ok := registry[c]; ok {
		return m
	}
	return UnknownMessage
}

func (c CodeError) Uint16() uint16 {
	return uint16(c)
}

func (c CodeError) String() string {
	return strconv.Itoa(int(c))
}

// Error builds a new Error value carrying this code, optionally wrapping
// parent errors.
func (c CodeError) Error(parent ...error) Error {
	return newError(c, c.Message(), parent...)
}

// Errorf builds an Error carrying this code whose message is format
// rendered with args; the registered message is not used.
func (c CodeError) Errorf(format string, args ...interface{}) Error {
	return newErrorf(c, format, args...)
}
