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

// Package queue replaces original_source's waitingClients std::queue plus
// its condition_variable/mutex pair (Socket::pushToQueue, Socket::cv) with
// a bounded Go channel: Push is the notifying enqueue, Pop is the waiting
// dequeue, and ctx cancellation takes the place of the explicit stop()
// notify_one wakeup.
package queue

import (
	"context"

	"github.com/sabouaram/xmldbserver/internal/session"
)

// Queue hands sessions with a pending request from connection handlers to
// the mapper workers that service them.
type Queue struct {
	ch chan *session.Session
}

// New creates a queue buffered to hold up to capacity pending sessions.
func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue{ch: make(chan *session.Session, capacity)}
}

// Push enqueues s, blocking if the queue is full, until ctx is done.
func (q *Queue) Push(ctx context.Context, s *session.Session) error {
	select {
	case q.ch <- s:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pop dequeues the next session, blocking until one is available or ctx
// is done.
func (q *Queue) Pop(ctx context.Context) (*session.Session, error) {
	select {
	case s := <-q.ch:
		return s, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len reports the number of sessions currently queued, for diagnostics.
func (q *Queue) Len() int {
	return len(q.ch)
}
