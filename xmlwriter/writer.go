// Package xmlwriter is a small streaming XML writer: open/close named
// elements (optionally scoped so they auto-close), write attributes on
// the currently open tag, and write escaped text content. It guarantees
// well-formed output for well-nested calls; it does not validate element
// or attribute names.
package xmlwriter

import (
	"fmt"
	"io"
	"strings"
)

// Formatting controls whitespace around text content.
type Formatting int

const (
	// None writes text with no surrounding whitespace; the closing tag
	// follows the text on the same line.
	None Formatting = iota
	// Newline writes a newline after the text, so the closing tag starts
	// on a fresh indented line.
	Newline
)

var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"\n", "&#x0A;",
		"\t", "&#x09;",
		"\r", "&#x0D;",
	)
)

// Writer emits an XML document to an underlying io.Writer. Write errors
// are sticky: the first one is retained and every later call becomes a
// no-op, so callers only need to check the error once, at Finish.
type Writer struct {
	out       io.Writer
	tags      []string
	tagIsOpen bool // "<name attrs" written, ">" not yet
	pendingNL bool
	err       error
}

// New creates a Writer and emits the XML declaration.
func New(out io.Writer) *Writer {
	w := &Writer{out: out}
	w.write(`<?xml version="1.0" encoding="UTF-8"?>`)
	w.pendingNL = true
	return w
}

// Err returns the first write error encountered, if any.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) write(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.out, s)
}

// ensureTagClosed terminates a pending "<name attrs" with ">".
func (w *Writer) ensureTagClosed() {
	if w.tagIsOpen {
		w.write(">")
		w.tagIsOpen = false
	}
}

func (w *Writer) newlineIfPending() {
	if w.pendingNL {
		w.write("\n" + strings.Repeat("  ", len(w.tags)))
		w.pendingNL = false
	}
}

// StartElement opens a new element. Attributes may be written until the
// next child element or text content.
func (w *Writer) StartElement(name string) *Writer {
	w.ensureTagClosed()
	w.pendingNL = true
	w.newlineIfPending()
	w.write("<" + name)
	w.tags = append(w.tags, name)
	w.tagIsOpen = true
	return w
}

// EndElement closes the most recently opened element, collapsing
// childless elements to the "<name/>" form.
func (w *Writer) EndElement() *Writer {
	if len(w.tags) == 0 {
		if w.err == nil {
			w.err = fmt.Errorf("xmlwriter: EndElement with no open element")
		}
		return w
	}
	name := w.tags[len(w.tags)-1]
	w.tags = w.tags[:len(w.tags)-1]

	if w.tagIsOpen {
		w.write("/>")
		w.tagIsOpen = false
	} else {
		w.newlineIfPending()
		w.write("</" + name + ">")
	}
	w.pendingNL = true
	return w
}

// WriteAttribute writes an attribute on the currently open start tag.
// Calling it after content has been written is a well-formedness bug and
// is surfaced as an error.
func (w *Writer) WriteAttribute(name, value string) *Writer {
	if !w.tagIsOpen {
		if w.err == nil {
			w.err = fmt.Errorf("xmlwriter: attribute %q written outside a start tag", name)
		}
		return w
	}
	w.write(" " + name + `="` + attrEscaper.Replace(value) + `"`)
	return w
}

// WriteText writes escaped text content into the current element.
func (w *Writer) WriteText(text string, f Formatting) *Writer {
	w.ensureTagClosed()
	w.pendingNL = false
	w.write(textEscaper.Replace(text))
	w.pendingNL = f == Newline
	return w
}

// ScopedElement is a handle to an element opened via Scoped; Close ends it.
type ScopedElement struct {
	w *Writer
}

// Scoped opens an element for use with a deferred or explicit Close.
func (w *Writer) Scoped(name string) ScopedElement {
	w.StartElement(name)
	return ScopedElement{w: w}
}

// WriteAttribute writes an attribute on the scoped element's start tag.
func (s ScopedElement) WriteAttribute(name, value string) ScopedElement {
	s.w.WriteAttribute(name, value)
	return s
}

// WriteText writes text content into the scoped element.
func (s ScopedElement) WriteText(text string, f Formatting) ScopedElement {
	s.w.WriteText(text, f)
	return s
}

// Close ends the scoped element.
func (s ScopedElement) Close() {
	s.w.EndElement()
}

// Finish closes any still-open elements and reports the sticky error.
// The document is complete once Finish returns nil.
func (w *Writer) Finish() error {
	for len(w.tags) > 0 {
		w.EndElement()
	}
	w.write("\n")
	return w.err
}
