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

// Package xmltree rebuilds original_source's Document/Node pair (built on
// libxml2) on top of encoding/xml: a Document holds every Node in a flat
// arena, and nodes reference each other by arena index (Parent/FirstChild/
// NextSibling) instead of pointers, so the tree can't form the parent/
// child reference cycles the C++ xmlNodePtr graph relies on the library to
// manage. Document.Root is always index 0.
package xmltree

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/sabouaram/xmldbserver/internal/xerrors"
)

const noIndex = -1

// Node is one element in the arena. Content is this element's own
// character data (original_source's xmlNodeGetContent on a leaf node).
type Node struct {
	Name    string
	Content string
	Attrs   map[string]string

	Parent      int
	FirstChild  int
	NextSibling int
}

// Document is a parsed XML document plus the derived facts
// Document::initialize computes once: whether it is a select operation,
// and (for inserts) the UUID and main table name.
type Document struct {
	Nodes []Node

	IsSelectType bool
	UUID         string
	MainTable    string
}

// Parse builds a Document from raw XML bytes. It mirrors
// Document::initialize: parse, determineType, and (for inserts) findUuid,
// failing with ParseError codes in place of ParseXmlException.
func Parse(data []byte) (*Document, xerrors.Error) {
	doc := &Document{}

	if err := doc.build(data); err != nil {
		return nil, xerrors.CodeParseMalformed.Error(err)
	}
	if len(doc.Nodes) == 0 {
		return nil, xerrors.CodeParseMalformed.Errorf("empty xml document")
	}

	if err := doc.determineType(); err != nil {
		return nil, err
	}

	if !doc.IsSelectType {
		if err := doc.findUUID(); err != nil {
			return nil, err
		}
	}

	return doc, nil
}

// build decodes data token-by-token with encoding/xml.NewDecoder, pushing
// the current parent index onto an explicit stack on StartElement and
// popping on EndElement, so the arena is built without recursion.
func (d *Document) build(data []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var stack []int
	lastChildOf := map[int]int{}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			idx := len(d.Nodes)
			n := Node{Name: t.Name.Local, Parent: noIndex, FirstChild: noIndex, NextSibling: noIndex}
			if len(t.Attr) > 0 {
				n.Attrs = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					n.Attrs[a.Name.Local] = a.Value
				}
			}
			d.Nodes = append(d.Nodes, n)

			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				d.Nodes[idx].Parent = parent
				if prev, ok := lastChildOf[parent]; ok {
					d.Nodes[prev].NextSibling = idx
				} else {
					d.Nodes[parent].FirstChild = idx
				}
				lastChildOf[parent] = idx
			}
			stack = append(stack, idx)

		case xml.CharData:
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				d.Nodes[top].Content += string(t)
			}

		case xml.EndElement:
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				d.Nodes[top].Content = strings.TrimSpace(d.Nodes[top].Content)
				stack = stack[:len(stack)-1]
			}
		}
	}

	return nil
}

// IsObjectNode reports whether n has at least one element child,
// mirroring Node::isObjectNode.
func (d *Document) IsObjectNode(n int) bool {
	for c := d.Nodes[n].FirstChild; c != noIndex; c = d.Nodes[c].NextSibling {
		return true
	}
	return false
}

// IsPropertyNode reports the negation of IsObjectNode, mirroring
// Node::isPropertyNode.
func (d *Document) IsPropertyNode(n int) bool {
	return !d.IsObjectNode(n)
}

// HasPropertyNode reports whether n has at least one leaf-element child,
// mirroring Node::hasPropertyNode.
func (d *Document) HasPropertyNode(n int) bool {
	for c := d.Nodes[n].FirstChild; c != noIndex; c = d.Nodes[c].NextSibling {
		if d.IsPropertyNode(c) {
			return true
		}
	}
	return false
}

// determineType scans the root's direct children for an <operation
// type="..."> element, mirroring Document::determineType. The type
// attribute is required and non-empty; its absence is a ParseError.
func (d *Document) determineType() xerrors.Error {
	root := 0
	for c := d.Nodes[root].FirstChild; c != noIndex; c = d.Nodes[c].NextSibling {
		if d.Nodes[c].Name == "operation" {
			typ, ok := d.Nodes[c].Attrs["type"]
			if !ok || typ == "" {
				return xerrors.CodeParseMissingOperationType.Error(nil)
			}
			d.IsSelectType = typ == "select"
			return nil
		}
	}
	return xerrors.CodeParseMissingOperationType.Error(nil)
}

// findUUID walks the arena with the same explicit-stack traversal as
// Document::findUuid: drill down through FirstChild links pushing every
// ancestor visited, then back out through NextSibling links, so the
// first element literally named "uuid" encountered is the same one the
// original depth-first walk would find. Its parent becomes the main
// table.
func (d *Document) findUUID() xerrors.Error {
	var stack []int
	current := 0

	for current != noIndex || len(stack) > 0 {
		for current != noIndex {
			stack = append(stack, current)
			current = d.Nodes[current].FirstChild
		}

		current = stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if d.Nodes[current].Name == "uuid" {
			d.UUID = d.Nodes[current].Content
			if d.Nodes[current].Parent == noIndex {
				return xerrors.CodeParseUUIDNoParent.Error(nil)
			}
			d.MainTable = d.Nodes[d.Nodes[current].Parent].Name
			return nil
		}

		current = d.Nodes[current].NextSibling
	}

	return xerrors.CodeParseUUIDMissing.Error(nil)
}

// PropertyNames returns the leaf-element children of n, in document
// order, excluding any child literally named "uuid" (uuid is never a
// data column), mirroring Node::propertyNames.
func (d *Document) PropertyNames(n int) []string {
	var names []string
	for c := d.Nodes[n].FirstChild; c != noIndex; c = d.Nodes[c].NextSibling {
		if d.IsPropertyNode(c) && d.Nodes[c].Name != "uuid" {
			names = append(names, d.Nodes[c].Name)
		}
	}
	return names
}

// PropertyValues returns the content of the same children PropertyNames
// lists, in the same order, mirroring Node::propertyValues.
func (d *Document) PropertyValues(n int) []string {
	var values []string
	for c := d.Nodes[n].FirstChild; c != noIndex; c = d.Nodes[c].NextSibling {
		if d.IsPropertyNode(c) && d.Nodes[c].Name != "uuid" {
			values = append(values, d.Nodes[c].Content)
		}
	}
	return values
}
