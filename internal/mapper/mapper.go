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

// Package mapper is XmlParser reborn: it walks a parsed Document and
// drives the Store, translating each object-with-properties element into
// a CREATE TABLE (if new) plus an INSERT, or — for a select — renders the
// stored tables back as XML. processAndStoreClientData /
// storeXmlNodesInDatabase's explicit-stack walk is reproduced node for
// node so the insertion order observed by the store matches the
// original.
package mapper

import (
	"github.com/sabouaram/xmldbserver/internal/store"
	"github.com/sabouaram/xmldbserver/internal/xerrors"
	"github.com/sabouaram/xmldbserver/internal/xmltree"
)

const noIndex = -1

// selectedTable, when non-empty, names the single table a select
// requested via <operation type="select"><table>name</table></operation>.
func selectedTable(doc *xmltree.Document) string {
	root := 0
	for c := doc.Nodes[root].FirstChild; c != noIndex; c = doc.Nodes[c].NextSibling {
		if doc.Nodes[c].Name != "operation" {
			continue
		}
		for t := doc.Nodes[c].FirstChild; t != noIndex; t = doc.Nodes[t].NextSibling {
			if doc.Nodes[t].Name == "table" {
				return doc.Nodes[t].Content
			}
		}
	}
	return ""
}

// Process parses raw XML and either stores it (insert) or renders stored
// data (select), returning the exact response text to write back to the
// client. It never returns a Go error: any failure is folded into the
// "Error : ..." response text, mirroring
// XmlParser::parseAndStoreXmlData's catch blocks.
func Process(raw []byte, db *store.Store) string {
	doc, err := xmltree.Parse(raw)
	if err != nil {
		return "Error : " + err.Error()
	}

	if doc.IsSelectType {
		if table := selectedTable(doc); table != "" {
			xml, err := db.DumpTable(table)
			if err != nil {
				return "Error : " + err.Error()
			}
			return xml
		}
		xml, err := db.DumpAll()
		if err != nil {
			return "Error : " + err.Error()
		}
		return xml
	}

	if err := store_(doc, db); err != nil {
		return "Error : " + err.Error()
	}
	return "done :) \n"
}

// store_ performs storeXmlNodesInDatabase's walk: drill through
// FirstChild pushing ancestors, process a node once its children chain is
// exhausted, then continue through NextSibling. Every object element
// that also has at least one leaf-element child gets a CREATE TABLE (if
// it doesn't exist yet) and an INSERT.
func store_(doc *xmltree.Document, db *store.Store) xerrors.Error {
	var stack []int
	current := 0

	for current != noIndex || len(stack) > 0 {
		for current != noIndex {
			stack = append(stack, current)
			current = doc.Nodes[current].FirstChild
		}

		current = stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if doc.HasPropertyNode(current) && doc.IsObjectNode(current) {
			name := doc.Nodes[current].Name
			names := doc.PropertyNames(current)
			values := doc.PropertyValues(current)

			exists, err := db.TableExists(name)
			if err != nil {
				return err
			}
			if !exists {
				isMain := name == doc.MainTable
				if err := db.CreateTable(name, names, isMain, doc.MainTable); err != nil {
					return err
				}
			}
			if err := db.Insert(doc.UUID, names, values, name); err != nil {
				return err
			}
		}

		current = doc.Nodes[current].NextSibling
	}

	return nil
}
