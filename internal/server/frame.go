/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
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

package server

import (
	"fmt"

	"github.com/sabouaram/xmldbserver/internal/iobuf"
	"github.com/sabouaram/xmldbserver/internal/session"
	"github.com/sabouaram/xmldbserver/internal/xerrors"
)

// readFrame runs PROMPT_LEN/READ_LEN/PROMPT_DATA/READ_DATA. It returns
// (nil, true) when a framing error was handled locally and the caller
// should re-prompt for a new length, and (nil, false) when the
// connection is unusable and the session must end.
func (s *Server) readFrame(sess *session.Session) ([]byte, bool) {
	if _, err := sess.Conn.Write([]byte(promptLength)); err != nil {
		return nil, false
	}

	size, lenErr := iobuf.ReadLength(sess.Conn)
	if lenErr != nil {
		return nil, s.writeFramingDiagnostic(sess, lenErr)
	}

	dataPrompt := fmt.Sprintf("\nEnter the data of size %d : \n", size)
	if _, err := sess.Conn.Write([]byte(dataPrompt)); err != nil {
		return nil, false
	}

	data, readErr := iobuf.ReadPayload(sess.Conn, size)
	if readErr != nil {
		return nil, false
	}

	return data, true
}

// framingDiagnostics renders the exact client-facing lines
// Socket::readDataSize writes for each FramingError cause.
var framingDiagnostics = map[xerrors.CodeError]string{
	xerrors.CodeFramingShort:      "Your input is less than 15 digits.\n",
	xerrors.CodeFramingNotNumeric: "Invalid argument cannot convert to integer.\n",
	xerrors.CodeFramingOutOfRange: "Out of range error: value is too large.\n",
}

// writeFramingDiagnostic writes the client-facing line for a FramingError
// and reports whether the session should keep looping.
func (s *Server) writeFramingDiagnostic(sess *session.Session, err xerrors.Error) bool {
	msg, ok := framingDiagnostics[err.Code()]
	if !ok {
		msg = err.Code().Message() + "\n"
	}
	_, writeErr := sess.Conn.Write([]byte(msg))
	return writeErr == nil
}

// promptContinue runs PROMPT_CONT: writes the continuation prompt, reads
// up to 128 bytes, and reports whether the first byte was 'y'.
func (s *Server) promptContinue(sess *session.Session) bool {
	if _, err := sess.Conn.Write([]byte(promptCont)); err != nil {
		return false
	}

	buf := make([]byte, 128)
	n, err := sess.Conn.Read(buf)
	if err != nil || n < 1 {
		return false
	}

	return buf[0] == 'y'
}
