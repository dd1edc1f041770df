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

// Package iobuf buffers one client request off the wire the way
// original_source's Socket::readDataSize/readData do: a fixed 15-digit
// length header, then exactly that many data bytes, returned as a plain
// byte slice; the drain step substitutes a short read-deadline
// probe for the original's ioctl(FIONREAD), since net.Conn exposes no
// ioctl.
package iobuf

import (
	"bytes"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/sabouaram/xmldbserver/internal/xerrors"
)

const (
	lengthFieldWidth = 15
	drainChunk       = 1024
	drainWindow      = 20 * time.Millisecond
)

// ReadLength does the single read Socket::readDataSize does: one read of
// up to 1024 bytes, rejecting immediately if fewer than 15 bytes came
// back rather than blocking for the rest to arrive. The first 15 bytes
// are parsed as a 32-bit decimal integer, matching std::stoi's int
// range so a 15-digit value that overflows int32 surfaces as
// CodeFramingOutOfRange instead of being handed to make([]byte, size).
func ReadLength(r io.Reader) (int, xerrors.Error) {
	buf := make([]byte, drainChunk)
	n, err := r.Read(buf)
	if n < lengthFieldWidth {
		if err != nil {
			return 0, xerrors.CodeFramingShort.Error(err)
		}
		return 0, xerrors.CodeFramingShort.Error(nil)
	}

	text := strings.TrimSpace(string(buf[:lengthFieldWidth]))
	size, convErr := strconv.ParseInt(text, 10, 32)
	if convErr != nil {
		if numErr, ok := convErr.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
			return 0, xerrors.CodeFramingOutOfRange.Error(convErr)
		}
		return 0, xerrors.CodeFramingNotNumeric.Error(convErr)
	}

	return int(size), nil
}

// ReadPayload reads exactly size bytes, mirroring Socket::readData's
// read loop, then drains any extra bytes already buffered on the
// connection so a client that over-sent doesn't desync the next frame.
func ReadPayload(conn net.Conn, size int) ([]byte, xerrors.Error) {
	buf := make([]byte, size)
	if _, err := io.ReadFull(conn, buf); err != nil {
		return nil, xerrors.CodeFramingShort.Error(err)
	}

	drain(conn)

	return buf, nil
}

// drain reads and discards any bytes the client sent past the declared
// payload size, using a brief read deadline as a bounded stand-in for
// ioctl(FIONREAD): once a short read times out, the connection is
// considered caught up.
func drain(conn net.Conn) {
	trash := make([]byte, drainChunk)
	for {
		_ = conn.SetReadDeadline(time.Now().Add(drainWindow))
		n, err := conn.Read(trash)
		if n == 0 || err != nil {
			break
		}
	}
	_ = conn.SetReadDeadline(time.Time{})
}

// Buffer is a small bytes.Buffer wrapper for accumulating raw request
// bytes without retaining the original slice. ReadLength and ReadPayload
// do not use it.
type Buffer struct {
	b bytes.Buffer
}

// Write appends p.
func (b *Buffer) Write(p []byte) (int, error) { return b.b.Write(p) }

// Bytes returns the accumulated content.
func (b *Buffer) Bytes() []byte { return b.b.Bytes() }

// Reset clears the buffer for reuse.
func (b *Buffer) Reset() { b.b.Reset() }
