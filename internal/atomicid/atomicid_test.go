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

package atomicid_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sabouaram/xmldbserver/internal/atomicid"
)

var _ = Describe("Counter", func() {
	It("starts at 1 and increments", func() {
		var c atomicid.Counter
		Expect(c.Next()).To(Equal(int64(1)))
		Expect(c.Next()).To(Equal(int64(2)))
		Expect(c.Next()).To(Equal(int64(3)))
	})

	It("never hands out the same id twice under concurrent use", func() {
		var c atomicid.Counter
		const n = 200
		seen := make([]int64, n)

		var wg sync.WaitGroup
		wg.Add(n)
		for i := 0; i < n; i++ {
			i := i
			go func() {
				defer wg.Done()
				seen[i] = c.Next()
			}()
		}
		wg.Wait()

		unique := map[int64]bool{}
		for _, id := range seen {
			Expect(unique[id]).To(BeFalse())
			unique[id] = true
		}
		Expect(unique).To(HaveLen(n))
	})
})
