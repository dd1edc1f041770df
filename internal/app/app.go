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

// Package app is main.cpp's Application class: it owns configuration,
// the connection server, the store, and the dispatcher loop that hands
// queued sessions off to detached mapper workers
// (processAndStoreClientData). Run is the process entry point a cobra
// command calls into.
package app

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/sabouaram/xmldbserver/internal/config"
	"github.com/sabouaram/xmldbserver/internal/mapper"
	"github.com/sabouaram/xmldbserver/internal/queue"
	"github.com/sabouaram/xmldbserver/internal/server"
	"github.com/sabouaram/xmldbserver/internal/session"
	"github.com/sabouaram/xmldbserver/internal/store"
	"github.com/sabouaram/xmldbserver/internal/xconsole"
)

// queueCapacity bounds the work queue; admission is otherwise governed
// by the listener backlog.
const queueCapacity = 64

// Application wires together configuration, the store, the work queue,
// and the connection server for one run of the daemon.
type Application struct {
	cfg config.Config
	db  *store.Store
	q   *queue.Queue
	srv *server.Server

	workers sync.WaitGroup
}

// New loads configuration from path and opens the store, mirroring
// Application's constructor plus configuration.config/server() setup.
func New(path string) (*Application, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	q := queue.New(queueCapacity)

	return &Application{
		cfg: cfg,
		db:  db,
		q:   q,
		srv: server.New(cfg.Server, q),
	}, nil
}

// Run starts the server and dispatcher and blocks until ctx is canceled,
// mirroring Application::run's server()+processAndStoreClientData
// sequence with the "press Enter to stop" affordance delivered via ctx
// instead of a raw stdin thread.
func (a *Application) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- a.srv.Start(ctx)
	}()

	go a.dispatch(ctx)

	select {
	case err := <-serverErrCh:
		return err
	case <-ctx.Done():
		a.srv.Wait()
		a.workers.Wait()
		return nil
	}
}

// Stop closes the listener, which makes Run return; Run then cancels its
// context, so the dispatcher stops taking sessions from the queue and open
// session connections are closed. Sessions still in the queue are not
// processed, and Run does not wait for workers that are already running.
func (a *Application) Stop() {
	a.srv.Stop()
}

// Close releases the store handle. Call after Run returns.
func (a *Application) Close() error {
	return a.db.Close()
}

// dispatch is processAndStoreClientData's loop: pop a ready session and
// spawn a detached worker to map and persist it, so the next session can
// be picked up immediately.
func (a *Application) dispatch(ctx context.Context) {
	for {
		sess, err := a.q.Pop(ctx)
		if err != nil {
			return
		}

		a.workers.Add(1)
		go func(s *session.Session) {
			defer a.workers.Done()
			result := mapper.Process(s.Request(), a.db)
			s.SetResult(result)
		}(sess)
	}
}

// PrintStartupBanner writes the "Server started" line the original
// prints once the listener is confirmed open.
func (a *Application) PrintStartupBanner() {
	if a.srv.IsOpen() {
		xconsole.Line("Server started. Press Enter to stop...\n")
	} else {
		xconsole.Line("Server failed to start. Check logs for errors.")
	}
}

// WaitForStopSignal blocks until one read from in (typically os.Stdin)
// returns, either with a byte such as the Enter of a line or with end of
// input, then calls stop, mirroring the original's stopServerThread.
func WaitForStopSignal(in *os.File, stop func()) {
	buf := make([]byte, 1)
	_, _ = in.Read(buf)
	stop()
}

// Addr exposes the bound listen address, mainly for logging at startup.
func (a *Application) Addr() string {
	if addr := a.srv.Addr(); addr != nil {
		return addr.String()
	}
	return fmt.Sprintf("%s:%d", a.cfg.Server.IP, a.cfg.Server.Port)
}
