// Package query assembles the outbound XML envelopes sent to the Tally
// reporting interface. An envelope is a root ENVELOPE element holding a
// HEADER (either a bare request name or a structured version/request/
// type/id tuple) and a BODY built per report kind.
package query

import (
	"encoding/xml"
	"strconv"

	"sharathv/tally-connect/internal/daterange"
)

// Static variable values fixed by the protocol.
const (
	ExportFormatXML = "$$SysName:XML"
	EncodingUnicode = "UNICODE"

	// WireDateLayout is the DD-MM-YYYY form Tally expects in request
	// date tags.
	WireDateLayout = "02-01-2006"
)

// Element is a generic XML tree node. The shape is chosen so that
// encoding/xml can marshal it directly: the element name comes from
// XMLName, attributes from Attrs, text content from Text and nested
// elements from Children.
type Element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []*Element `xml:",any"`
}

// New returns an element with the given tag name.
func New(name string) *Element {
	return &Element{XMLName: xml.Name{Local: name}}
}

// Child appends a new empty child element and returns it.
func (e *Element) Child(name string) *Element {
	c := New(name)
	e.Children = append(e.Children, c)
	return c
}

// ChildText appends a child carrying text content and returns it.
func (e *Element) ChildText(name, text string) *Element {
	c := e.Child(name)
	c.Text = text
	return c
}

// SetAttr adds an attribute and returns the element for chaining.
func (e *Element) SetAttr(name, value string) *Element {
	e.Attrs = append(e.Attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
	return e
}

// Header identifies the request in the envelope header. A header with
// only Request set serializes as a bare TALLYREQUEST tag; one with Type
// or ID set serializes as the structured VERSION/TALLYREQUEST/TYPE/ID
// form.
type Header struct {
	Version int
	Request string
	Type    string
	ID      string
}

// Simple returns a bare request-name header.
func Simple(request string) Header {
	return Header{Request: request}
}

func (h Header) element() *Element {
	e := New("HEADER")
	if h.Type == "" && h.ID == "" {
		e.ChildText("TALLYREQUEST", h.Request)
		return e
	}
	e.ChildText("VERSION", strconv.Itoa(h.Version))
	e.ChildText("TALLYREQUEST", h.Request)
	e.ChildText("TYPE", h.Type)
	e.ChildText("ID", h.ID)
	return e
}

// Filter is one additional tag/value pair injected under the
// STATICVARIABLES block. Filters are applied in slice order, so callers
// that need determinism get it for free.
type Filter struct {
	Tag   string
	Value string
}

// Envelope pairs a header with a report-specific body.
type Envelope struct {
	Header Header
	Body   *Element
}

// Marshal serializes the envelope to its wire byte form.
func (e *Envelope) Marshal() ([]byte, error) {
	root := New("ENVELOPE")
	root.Children = append(root.Children, e.Header.element())
	body := root.Child("BODY")
	body.Children = append(body.Children, e.Body)
	return xml.Marshal(root)
}

// StaticVariables returns the STATICVARIABLES block common to every
// request body: export format, encoding and, when set, the current
// company.
func StaticVariables(company string) *Element {
	sv := New("STATICVARIABLES")
	sv.ChildText("SVEXPORTFORMAT", ExportFormatXML)
	sv.ChildText("ENCODINGTYPE", EncodingUnicode)
	if company != "" {
		sv.ChildText("SVCURRENTCOMPANY", company).SetAttr("TYPE", "String")
	}
	return sv
}

// AddDateRange injects the three request date tags for the resolved
// range.
func AddDateRange(sv *Element, rng daterange.Range) {
	sv.ChildText("SVFROMDATE", rng.Start.Format(WireDateLayout)).SetAttr("TYPE", "Date")
	sv.ChildText("SVTODATE", rng.End.Format(WireDateLayout)).SetAttr("TYPE", "Date")
	sv.ChildText("SVCURRENTDATE", rng.Reference.Format(WireDateLayout)).SetAttr("TYPE", "Date")
}

// AddFilters appends each filter as a child tag, in order.
func AddFilters(sv *Element, filters []Filter) {
	for _, f := range filters {
		sv.ChildText(f.Tag, f.Value)
	}
}

// AddFetchList appends a FETCH tag per field, preserving order.
func AddFetchList(parent *Element, fields []string) {
	for _, f := range fields {
		parent.ChildText("FETCH", f)
	}
}

// CollectionDefinition builds the TDL block used by collection-style
// snapshot reports: a named COLLECTION of the given record type with an
// explicit fetch list.
func CollectionDefinition(body *Element, name, recordType string, fetch []string) {
	tdl := body.Child("TDL")
	msg := tdl.Child("TDLMESSAGE")
	coll := msg.Child("COLLECTION")
	coll.SetAttr("ISMODIFY", "No")
	coll.SetAttr("NAME", name)
	coll.ChildText("TYPE", recordType)
	AddFetchList(coll, fetch)
}
