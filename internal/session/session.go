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

// Package session is the per-connection state original_source's Client
// class holds: the raw XML request, the rendered result, and the
// mutex+condition pair a mapper worker signals once the result is ready.
// handleClient's wait-for-result block becomes Session.WaitResult.
package session

import (
	"net"
	"sync"
)

// Session tracks one accepted connection across its request/response
// cycle. A single goroutine owns the conn; a mapper worker running on a
// separate goroutine produces Result and signals WaitResult.
type Session struct {
	ID   int64
	Conn net.Conn

	mu         sync.Mutex
	cond       *sync.Cond
	xmlData    []byte
	result     string
	dataReady  bool
	resultDone bool
}

// New wraps conn under the given id.
func New(id int64, conn net.Conn) *Session {
	s := &Session{ID: id, Conn: conn}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// SetRequest stores the raw XML payload read off the wire and marks the
// session ready to be enqueued for mapping.
func (s *Session) SetRequest(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.xmlData = data
	s.dataReady = true
}

// Request returns the stored XML payload.
func (s *Session) Request() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.xmlData
}

// SetResult stores the mapper's rendered response and wakes WaitResult.
func (s *Session) SetResult(result string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = result
	s.resultDone = true
	s.cond.Signal()
}

// WaitResult blocks until SetResult has been called, mirroring
// handleClient's `cv.wait(lock, [client] { return client->getResultReady(); })`.
func (s *Session) WaitResult() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for !s.resultDone {
		s.cond.Wait()
	}
	return s.result
}

// Reset clears per-request state so the session can be reused for the
// next request on the same connection, mirroring Client::reset().
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resultDone = false
	s.result = ""
	s.dataReady = false
	s.xmlData = nil
}
