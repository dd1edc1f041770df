/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sabouaram/xmldbserver/internal/config"
	"github.com/sabouaram/xmldbserver/internal/xerrors"
)

func writeFile(dir, content string) string {
	p := filepath.Join(dir, "config.json")
	Expect(os.WriteFile(p, []byte(content), 0o644)).To(Succeed())
	return p
}

var _ = Describe("Default", func() {
	It("matches the documented defaults", func() {
		d := config.Default()
		Expect(d.Server.IP).To(Equal("0.0.0.0"))
		Expect(d.Server.Port).To(Equal(9090))
		Expect(d.Server.MaxConnection).To(Equal(50))
		Expect(d.Database.Path).To(Equal("./xmldbserver.db"))
	})
})

var _ = Describe("Load", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "xmldbserver-config-*")
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		_ = os.RemoveAll(dir)
	})

	It("applies defaults for fields missing from the file", func() {
		path := writeFile(dir, `{"database": {"path": "/tmp/data.db"}}`)

		cfg, err := config.Load(path)
		Expect(err).To(BeNil())
		Expect(cfg.Server.Port).To(Equal(9090))
		Expect(cfg.Database.Path).To(Equal("/tmp/data.db"))
	})

	It("overrides defaults with file values", func() {
		path := writeFile(dir, `{
			"servive": {"ip": "0.0.0.0", "port": 7000, "maxConnection": 10},
			"database": {"path": "/tmp/other.db"}
		}`)

		cfg, err := config.Load(path)
		Expect(err).To(BeNil())
		Expect(cfg.Server.Port).To(Equal(7000))
		Expect(cfg.Server.MaxConnection).To(Equal(10))
		Expect(cfg.Addr()).To(Equal("0.0.0.0:7000"))
	})

	It("rejects an unreadable path", func() {
		_, err := config.Load(filepath.Join(dir, "missing.json"))
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(xerrors.CodeConfigUnreadable)).To(BeTrue())
	})

	It("rejects a port outside the valid range", func() {
		path := writeFile(dir, `{"servive": {"ip": "0.0.0.0", "port": 99999, "maxConnection": 5}}`)

		_, err := config.Load(path)
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(xerrors.CodeConfigInvalid)).To(BeTrue())
	})
})
