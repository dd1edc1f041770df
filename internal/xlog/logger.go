/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2021 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

// Package xlog is the daemon's leveled logger, a logrus.Logger held behind
// a package singleton so any component that logs (currently the server and
// the cmd entry point) goes through the same sink without threading a
// logger value through every constructor.
package xlog

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu  sync.RWMutex
	log = newDefault()
)

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return l
}

// SetLevel adjusts the minimum severity logged. Accepts logrus level names
// ("debug", "info", "warn", "error"); invalid names are ignored.
func SetLevel(name string) {
	lvl, err := logrus.ParseLevel(name)
	if err != nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	log.SetLevel(lvl)
}

// SetOutput redirects the log sink, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	log.SetOutput(w)
}

func entry() *logrus.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

func Debugf(format string, args ...interface{}) { entry().Debugf(format, args...) }
func Infof(format string, args ...interface{})  { entry().Infof(format, args...) }
func Warnf(format string, args ...interface{})  { entry().Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { entry().Errorf(format, args...) }

// WithField returns a logrus.Entry for structured, field-tagged logging,
// e.g. xlog.WithField("session", id).Info("joined").
func WithField(key string, value interface{}) *logrus.Entry {
	return entry().WithField(key, value)
}

// CheckError logs err at errLevel if non-nil, at okLevel (as a confirmation
// message) otherwise. Used around fallible, non-fatal setup steps.
func CheckError(errLevel, okLevel logrus.Level, msg string, err error) {
	e := entry()
	if err != nil {
		e.WithField("error", err.Error()).Log(errLevel, msg)
	} else {
		e.Log(okLevel, msg)
	}
}
