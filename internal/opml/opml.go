// Package opml reads and writes OPML subscription lists.
package opml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

type Document struct {
	XMLName xml.Name `xml:"opml"`
	Version string   `xml:"version,attr"`
	Head    Head     `xml:"head"`
	Body    Body     `xml:"body"`
}

type Head struct {
	Title        string `xml:"title,omitempty"`
	DateCreated  string `xml:"dateCreated,omitempty"`
	DateModified string `xml:"dateModified,omitempty"`
	OwnerName    string `xml:"ownerName,omitempty"`
	OwnerEmail   string `xml:"ownerEmail,omitempty"`
}

type Body struct {
	Outlines []Outline `xml:"outline"`
}

// Outline is either a folder (children, no xmlUrl) or a feed.
type Outline struct {
	Text     string    `xml:"text,attr,omitempty"`
	Title    string    `xml:"title,attr,omitempty"`
	Type     string    `xml:"type,attr,omitempty"`
	XMLURL   string    `xml:"xmlUrl,attr,omitempty"`
	HTMLURL  string    `xml:"htmlUrl,attr,omitempty"`
	Category string    `xml:"category,attr,omitempty"`
	Outlines []Outline `xml:"outline,omitempty"`
}

// Entry is a feed outline together with the folder it was found in.
type Entry struct {
	Category string
	Title    string
	URL      string
	HTMLURL  string
}

// Parse decodes an OPML document. Non UTF-8 encodings declared in the XML
// header are converted.
func Parse(r io.Reader) (Document, error) {
	var doc Document
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel
	decoder.Strict = false
	if err := decoder.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode opml: %w", err)
	}
	return doc, nil
}

func Encode(doc Document) ([]byte, error) {
	if doc.Version == "" {
		doc.Version = "2.0"
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	encoder := xml.NewEncoder(&buf)
	encoder.Indent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode opml: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// IsFeed reports whether the outline describes a subscription.
func (o Outline) IsFeed() bool {
	if strings.TrimSpace(o.XMLURL) != "" {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(o.Type)) {
	case "rss", "atom", "feed":
		return true
	}
	return false
}

// Name prefers title over text.
func (o Outline) Name() string {
	if title := strings.TrimSpace(o.Title); title != "" {
		return title
	}
	return strings.TrimSpace(o.Text)
}

// Flatten walks the outline tree. A feed takes the name of its innermost
// enclosing folder as category, falling back to its own category attribute.
func Flatten(outlines []Outline) []Entry {
	var entries []Entry
	var walk func(outlines []Outline, folder string)
	walk = func(outlines []Outline, folder string) {
		for _, o := range outlines {
			if o.IsFeed() {
				category := folder
				if category == "" {
					category = strings.TrimSpace(o.Category)
				}
				entries = append(entries, Entry{
					Category: category,
					Title:    o.Name(),
					URL:      strings.TrimSpace(o.XMLURL),
					HTMLURL:  strings.TrimSpace(o.HTMLURL),
				})
				continue
			}
			name := o.Name()
			if name == "" {
				name = folder
			}
			walk(o.Outlines, name)
		}
	}
	walk(outlines, "")
	return entries
}
