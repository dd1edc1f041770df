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

package mapper_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sabouaram/xmldbserver/internal/mapper"
	"github.com/sabouaram/xmldbserver/internal/store"
)

var _ = Describe("Process", func() {
	var (
		db  *store.Store
		dir string
	)

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "xmldbserver-mapper-*")
		Expect(err).ToNot(HaveOccurred())

		xerr := func() error {
			s, xerr := store.Open(filepath.Join(dir, "test.db"))
			if xerr != nil {
				return xerr
			}
			db = s
			return nil
		}()
		Expect(xerr).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		_ = db.Close()
		_ = os.RemoveAll(dir)
	})

	It("returns 'done :) ' for a minimal insert, then the row back on select", func() {
		resp := mapper.Process([]byte(
			`<root><operation type="insert"/><person><uuid>u1</uuid><name>a</name></person></root>`), db)
		Expect(resp).To(Equal("done :) \n"))

		resp = mapper.Process([]byte(`<request><operation type="select"/></request>`), db)
		Expect(resp).To(ContainSubstring("<database>"))
		Expect(resp).To(ContainSubstring("<person>"))
		Expect(resp).To(ContainSubstring("<uuid>u1</uuid>"))
		Expect(resp).To(ContainSubstring("<name>a</name>"))
		Expect(resp).To(ContainSubstring("</database>"))
	})

	It("returns only the requested table's section for a scoped select", func() {
		mapper.Process([]byte(
			`<root><operation type="insert"/><person><uuid>u1</uuid><name>a</name></person></root>`), db)

		resp := mapper.Process([]byte(
			`<request><operation type="select"><table>person</table></operation></request>`), db)
		Expect(resp).To(ContainSubstring("<person>"))
		Expect(resp).ToNot(ContainSubstring("<database>"))
	})

	It("creates a foreign-key linked table for a nested object", func() {
		resp := mapper.Process([]byte(
			`<root><operation type="insert"/><order><uuid>u2</uuid><total>9</total>`+
				`<line><sku>s1</sku><qty>2</qty></line></order></root>`), db)
		Expect(resp).To(Equal("done :) \n"))

		resp = mapper.Process([]byte(`<request><operation type="select"/></request>`), db)
		Expect(resp).To(ContainSubstring("<order>"))
		Expect(resp).To(ContainSubstring("<line>"))
		Expect(resp).To(ContainSubstring("<sku>s1</sku>"))
	})

	It("folds a parse failure into an 'Error : ' response instead of a panic", func() {
		resp := mapper.Process([]byte(`<not valid`), db)
		Expect(resp).To(HavePrefix("Error : "))
	})
})
