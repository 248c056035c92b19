package export

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/dbsmedya/jsonconv/internal/jsonvalue"
	"github.com/dbsmedya/jsonconv/internal/logger"
)

// DefaultElementName replaces empty keys.
const DefaultElementName = "item"

// XMLExporter writes the unflattened document as nested elements.
type XMLExporter struct {
	opts Options
	log  *logger.Logger
}

// Format returns "xml".
func (e *XMLExporter) Format() string { return FormatXML }

// Extension returns ".xml".
func (e *XMLExporter) Extension() string { return ".xml" }

// Export writes doc under a root element named after outputPath's base name.
func (e *XMLExporter) Export(doc jsonvalue.Value, outputPath string) error {
	e.log.Infof("Exporting to %s", outputPath)
	return writeFile(outputPath, func(w io.Writer) error {
		return WriteXML(w, BaseName(outputPath), doc, e.opts.XMLIndent)
	})
}

// element is one node of the output tree.
type element struct {
	name     string
	text     string
	null     bool
	children []*element
}

// WriteXML renders doc as pretty-printed XML without a declaration.
// Elements with neither text nor children are self-closed.
func WriteXML(w io.Writer, rootName string, doc jsonvalue.Value, indent string) error {
	root := buildDocument(rootName, doc)
	xw := &xmlWriter{w: w, indent: indent}
	xw.write(root, 0)
	return xw.err
}

// buildDocument maps the document onto the root element: object members and
// array items become children, a scalar becomes the root's own content.
func buildDocument(rootName string, doc jsonvalue.Value) *element {
	root := &element{name: SanitizeName(rootName)}
	fill(root, doc)
	return root
}

func buildElement(key string, v jsonvalue.Value) *element {
	el := &element{name: SanitizeName(key)}
	fill(el, v)
	return el
}

func fill(el *element, v jsonvalue.Value) {
	switch v.Kind() {
	case jsonvalue.Object:
		for _, m := range v.Members() {
			el.children = append(el.children, buildElement(m.Key, m.Value))
		}
	case jsonvalue.Array:
		for i, item := range v.Items() {
			el.children = append(el.children, buildElement("item_"+strconv.Itoa(i), item))
		}
	case jsonvalue.Null:
		el.null = true
	default:
		// Bool renders as true/false, numbers as their literal
		el.text = v.String()
	}
}

// SanitizeName turns key into a valid element name. Characters outside
// [A-Za-z0-9_.-] become "_", a name that would start with a digit, "-" or "."
// gets an "item_" prefix, and an empty key becomes "item". Sanitizing an
// already sanitized name returns it unchanged.
func SanitizeName(key string) string {
	if key == "" {
		return DefaultElementName
	}

	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		if isNameRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}

	name := b.String()
	switch c := name[0]; {
	case c >= '0' && c <= '9', c == '-', c == '.':
		name = DefaultElementName + "_" + name
	}
	return name
}

func isNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '-', r == '.':
		return true
	default:
		return false
	}
}

// xmlWriter remembers the first write error so rendering stays linear.
type xmlWriter struct {
	w      io.Writer
	indent string
	err    error
}

func (x *xmlWriter) str(s string) {
	if x.err != nil {
		return
	}
	_, x.err = io.WriteString(x.w, s)
}

func (x *xmlWriter) escaped(s string) {
	if x.err != nil {
		return
	}
	x.err = xml.EscapeText(x.w, []byte(s))
}

func (x *xmlWriter) write(el *element, depth int) {
	pad := strings.Repeat(x.indent, depth)

	x.str(pad + "<" + el.name)
	if el.null {
		x.str(` null="true"`)
	}

	switch {
	case len(el.children) > 0:
		x.str(">\n")
		for _, child := range el.children {
			x.write(child, depth+1)
		}
		x.str(pad + "</" + el.name + ">\n")
	case el.text != "":
		x.str(">")
		x.escaped(el.text)
		x.str("</" + el.name + ">\n")
	default:
		x.str("/>\n")
	}
}
