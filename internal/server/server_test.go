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

package server_test

import (
	"context"
	"fmt"
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sabouaram/xmldbserver/internal/config"
	"github.com/sabouaram/xmldbserver/internal/queue"
	"github.com/sabouaram/xmldbserver/internal/server"
)

func startTestServer() (*server.Server, context.CancelFunc, net.Addr) {
	q := queue.New(4)
	srv := server.New(config.ServerConfig{IP: "127.0.0.1", Port: 0, MaxConnection: 5}, q)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = srv.Start(ctx) }()

	Eventually(func() net.Addr { return srv.Addr() }, time.Second).ShouldNot(BeNil())
	return srv, cancel, srv.Addr()
}

var _ = Describe("Server", func() {
	It("prompts for a length, accepts a well-framed request, and enqueues the session", func() {
		q := queue.New(4)
		srv := server.New(config.ServerConfig{IP: "127.0.0.1", Port: 0, MaxConnection: 5}, q)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() { _ = srv.Start(ctx) }()
		Eventually(func() net.Addr { return srv.Addr() }, time.Second).ShouldNot(BeNil())

		conn, err := net.Dial("tcp", srv.Addr().String())
		Expect(err).ToNot(HaveOccurred())
		defer conn.Close()

		readLine(conn) // PROMPT_LEN

		payload := "<root></root>"
		_, _ = conn.Write([]byte(fmt.Sprintf("%015d", len(payload))))
		readLine(conn) // "Enter the data of size N"

		_, _ = conn.Write([]byte(payload))

		sess, err := q.Pop(context.Background())
		Expect(err).ToNot(HaveOccurred())
		Expect(sess.Request()).To(Equal([]byte(payload)))
	})

	It("re-prompts on a too-short length field instead of enqueuing", func() {
		q := queue.New(4)
		srv := server.New(config.ServerConfig{IP: "127.0.0.1", Port: 0, MaxConnection: 5}, q)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() { _ = srv.Start(ctx) }()
		Eventually(func() net.Addr { return srv.Addr() }, time.Second).ShouldNot(BeNil())

		conn, err := net.Dial("tcp", srv.Addr().String())
		Expect(err).ToNot(HaveOccurred())
		defer conn.Close()

		readLine(conn)
		_, _ = conn.Write([]byte("123"))

		diag := readLine(conn)
		Expect(diag).To(ContainSubstring("less than 15 digits"))

		Expect(q.Len()).To(Equal(0))
	})

	It("Stop closes the listener and IsOpen reports false", func() {
		srv, cancel, _ := startTestServer()
		defer cancel()

		Expect(srv.IsOpen()).To(BeTrue())
		srv.Stop()
		Eventually(srv.IsOpen, time.Second).Should(BeFalse())
	})
})

func readLine(conn net.Conn) string {
	buf := make([]byte, 256)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _ := conn.Read(buf)
	return string(buf[:n])
}
