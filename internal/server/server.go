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

// Package server is original_source's Socket class: it owns the
// listener, accepts connections, and drives each one through the framed
// request/response state machine (handleClient). Enqueuing and result
// handoff are delegated to queue.Queue and session.Session; parsing and
// storage are the mapper/store packages' job, invoked from the
// application's dispatcher, not from here.
package server

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/sabouaram/xmldbserver/internal/atomicid"
	"github.com/sabouaram/xmldbserver/internal/config"
	"github.com/sabouaram/xmldbserver/internal/queue"
	"github.com/sabouaram/xmldbserver/internal/session"
	"github.com/sabouaram/xmldbserver/internal/xconsole"
	"github.com/sabouaram/xmldbserver/internal/xerrors"
	"github.com/sabouaram/xmldbserver/internal/xlog"
)

const (
	promptLength = "\nEnter the data length as 15 digits : \n"
	promptCont   = "\nPress 'y' if you want to continue .\n"
	stoppedMsg   = "Server stoped. \n"
)

// Server listens for client connections and runs their session loops,
// mirroring the Socket class's createSocket/acceptClient/handleClient.
type Server struct {
	cfg config.ServerConfig
	q   *queue.Queue
	ids atomicid.Counter

	mu       sync.Mutex
	listener net.Listener
	open     int32

	wg sync.WaitGroup
}

// New builds a Server bound to cfg, handing off enqueued sessions to q.
func New(cfg config.ServerConfig, q *queue.Queue) *Server {
	return &Server{cfg: cfg, q: q}
}

// IsOpen reports whether the server is bound and listening, mirroring
// Socket::isRunning.
func (s *Server) IsOpen() bool {
	return atomic.LoadInt32(&s.open) == 1
}

// Addr returns the listener's bound address, useful when cfg.Port is 0
// and the kernel assigned an ephemeral port. Returns nil before Start
// has bound the listener.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start binds, listens, and runs the accept loop until ctx is canceled
// or Stop is called. It blocks until the accept loop exits.
func (s *Server) Start(ctx context.Context) xerrors.Error {
	addr := fmt.Sprintf("%s:%d", s.cfg.IP, s.cfg.Port)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return xerrors.CodeSocketListen.Error(err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	atomic.StoreInt32(&s.open, 1)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if !s.IsOpen() {
				return nil
			}
			return xerrors.CodeSocketAccept.Error(err)
		}

		id := s.ids.Next()
		sess := session.New(id, conn)

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleSession(ctx, sess)
		}()
	}
}

// Stop idempotently closes the listener, mirroring Socket::stop.
func (s *Server) Stop() {
	if !atomic.CompareAndSwapInt32(&s.open, 1, 0) {
		return
	}

	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()

	if ln != nil {
		_ = ln.Close()
	}
	xlog.Infof("server stopped")
}

// Wait blocks until every in-flight session handler has returned.
func (s *Server) Wait() {
	s.wg.Wait()
}

// handleSession runs one connection through PROMPT_LEN -> READ_LEN ->
// PROMPT_DATA -> READ_DATA -> ENQUEUE -> WAIT_RESULT -> WRITE_RESULT ->
// PROMPT_CONT, looping until the client stops continuing or the server
// shuts down, mirroring Socket::handleClient. When ctx is canceled the
// connection is closed, which ends any read the loop is blocked in.
func (s *Server) handleSession(ctx context.Context, sess *session.Session) {
	xconsole.ClientJoined(sess.ID)
	defer func() {
		_ = sess.Conn.Close()
		xconsole.ClientClosed(sess.ID)
	}()

	// Closing the connection on shutdown unblocks any pending read.
	sessionDone := make(chan struct{})
	defer close(sessionDone)
	go func() {
		select {
		case <-ctx.Done():
			_ = sess.Conn.Close()
		case <-sessionDone:
		}
	}()

	for s.IsOpen() {
		data, ok := s.readFrame(sess)
		if !ok {
			return
		}
		if data == nil {
			continue
		}

		xconsole.ClientData(sess.ID, data)
		sess.SetRequest(data)

		if err := s.q.Push(ctx, sess); err != nil {
			return
		}

		result := sess.WaitResult()
		if _, err := sess.Conn.Write([]byte(result)); err != nil {
			return
		}
		sess.Reset()

		if !s.promptContinue(sess) {
			return
		}
	}
}
