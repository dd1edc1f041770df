/*
 * MIT License
 *
 * Copyright (c) 2019 Nicolas JUHEL
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

// Package xconsole prints the operator-facing join/receive/close
// messages, serialized by a single mutex so concurrent client sessions
// never interleave their console output.
package xconsole

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

var (
	mu  sync.Mutex
	out io.Writer = os.Stdout

	colJoin    = color.New(color.FgGreen)
	colClose   = color.New(color.FgYellow)
	colReceive = color.New(color.FgCyan)
	colError   = color.New(color.FgRed)
)

// SetOutput redirects console output, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// ClientJoined prints "client with id N joined." under the console mutex.
func ClientJoined(id int64) {
	mu.Lock()
	defer mu.Unlock()
	_, _ = colJoin.Fprintf(out, "client with id %d joined.\n", id)
}

// ClientClosed prints "client with id N closed." under the console mutex.
func ClientClosed(id int64) {
	mu.Lock()
	defer mu.Unlock()
	_, _ = colClose.Fprintf(out, "client with id %d closed.\n", id)
}

// ClientData prints the raw XML received from a client, for operator
// visibility (mirrors original_source/src/server.cpp's printClientData).
func ClientData(id int64, data []byte) {
	mu.Lock()
	defer mu.Unlock()
	_, _ = colReceive.Fprintf(out, "received from %d\n%s\n", id, data)
}

// Error prints a standalone error line, e.g. fatal startup failures.
func Error(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	_, _ = colError.Fprintf(out, "Error : "+format+"\n", args...)
}

// Line prints a plain, uncolored line (help/version/steps output).
func Line(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	_, _ = fmt.Fprintf(out, format+"\n", args...)
}
