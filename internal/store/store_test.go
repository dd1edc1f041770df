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

package store_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sabouaram/xmldbserver/internal/store"
)

var _ = Describe("Store", func() {
	var (
		s    *store.Store
		path string
	)

	BeforeEach(func() {
		dir, err := os.MkdirTemp("", "xmldbserver-store-*")
		Expect(err).ToNot(HaveOccurred())
		path = filepath.Join(dir, "test.db")

		s, err = openStore(path)
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		_ = s.Close()
		_ = os.RemoveAll(filepath.Dir(path))
	})

	It("reports a table as absent until it is created", func() {
		exists, xerr := s.TableExists("person")
		Expect(xerr).To(BeNil())
		Expect(exists).To(BeFalse())

		Expect(s.CreateTable("person", []string{"name"}, true, "person")).To(BeNil())

		exists, xerr = s.TableExists("person")
		Expect(xerr).To(BeNil())
		Expect(exists).To(BeTrue())
	})

	It("inserts a row and dumps it back as XML", func() {
		Expect(s.CreateTable("person", []string{"name"}, true, "person")).To(BeNil())
		Expect(s.Insert("u1", []string{"name"}, []string{"alice"}, "person")).To(BeNil())

		xml, xerr := s.DumpTable("person")
		Expect(xerr).To(BeNil())
		Expect(xml).To(ContainSubstring("<person>"))
		Expect(xml).To(ContainSubstring("<uuid>u1</uuid>"))
		Expect(xml).To(ContainSubstring("<name>alice</name>"))
		Expect(xml).To(ContainSubstring("</person>"))
	})

	It("wraps all tables in <database> for DumpAll", func() {
		Expect(s.CreateTable("order", []string{"total"}, true, "order")).To(BeNil())
		Expect(s.Insert("u2", []string{"total"}, []string{"9"}, "order")).To(BeNil())

		xml, xerr := s.DumpAll()
		Expect(xerr).To(BeNil())
		Expect(xml).To(HavePrefix("<database>\n"))
		Expect(xml).To(ContainSubstring("<order>"))
		Expect(xml).To(HaveSuffix("</database>\n"))
	})

	It("creates non-main tables with a nullable uuid foreign key", func() {
		Expect(s.CreateTable("order", []string{"total"}, true, "order")).To(BeNil())
		Expect(s.CreateTable("line", []string{"sku", "qty"}, false, "order")).To(BeNil())

		exists, xerr := s.TableExists("line")
		Expect(xerr).To(BeNil())
		Expect(exists).To(BeTrue())
	})

	It("rejects identifiers that are not safe SQL names", func() {
		err := s.CreateTable("person; DROP TABLE person;--", nil, true, "")
		Expect(err).ToNot(BeNil())
	})
})

func openStore(path string) (*store.Store, error) {
	s, xerr := store.Open(path)
	if xerr != nil {
		return nil, xerr
	}
	return s, nil
}
