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

package xerrors

// Five error classes: ConfigError, SocketError, ParseError, StoreError,
// FramingError. Each is a distinct code so callers can test
// `err.HasCode(xerrors.CodeParseUUIDMissing)` without string matching.
const (
	CodeConfigUnreadable CodeError = MinConfigError + iota
	CodeConfigInvalid
)

const (
	CodeSocketCreate CodeError = MinSocketError + iota
	CodeSocketBind
	CodeSocketListen
	CodeSocketAccept
)

const (
	CodeParseMalformed CodeError = MinParseError + iota
	CodeParseMissingOperationType
	CodeParseUUIDMissing
	CodeParseUUIDNoParent
)

const (
	CodeStoreOpen CodeError = MinStoreError + iota
	CodeStorePrepare
	CodeStoreExec
	CodeStoreQuery
)

const (
	CodeFramingShort CodeError = MinFramingError + iota
	CodeFramingNotNumeric
	CodeFramingOutOfRange
)

func init() {
	Register(CodeConfigUnreadable, "unable to read configuration file")
	Register(CodeConfigInvalid, "configuration failed validation")

	Register(CodeSocketCreate, "error creating socket")
	Register(CodeSocketBind, "bind failed")
	Register(CodeSocketListen, "listen failed")
	Register(CodeSocketAccept, "accept failed")

	Register(CodeParseMalformed, "error parsing XML data: failed to parse XML document")
	Register(CodeParseMissingOperationType, "operation element is missing a type attribute")
	Register(CodeParseUUIDMissing, "uuid not found")
	Register(CodeParseUUIDNoParent, "uuid element has no parent to use as main table")

	Register(CodeStoreOpen, "can't open database")
	Register(CodeStorePrepare, "error preparing statement")
	Register(CodeStoreExec, "error executing statement")
	Register(CodeStoreQuery, "error querying table")

	Register(CodeFramingShort, "your input is less than 15 digits")
	Register(CodeFramingNotNumeric, "invalid argument cannot convert to integer")
	Register(CodeFramingOutOfRange, "out of range error: value is too large")
}
