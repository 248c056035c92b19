package export

import (
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/jsonconv/internal/logger"
)

func renderXML(t *testing.T, root, doc string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteXML(&buf, root, mustParse(t, doc), "  "))
	return buf.String()
}

func TestWriteXML(t *testing.T) {
	tests := []struct {
		name string
		root string
		doc  string
		want string
	}{
		{
			name: "null member",
			root: "name",
			doc:  `{"active": null}`,
			want: "<name>\n  <active null=\"true\"/>\n</name>\n",
		},
		{
			name: "nested object keeps key order",
			root: "person",
			doc:  `{"name": "Ann", "addr": {"city": "Oslo", "zip": 150}, "ok": true}`,
			want: "<person>\n" +
				"  <name>Ann</name>\n" +
				"  <addr>\n" +
				"    <city>Oslo</city>\n" +
				"    <zip>150</zip>\n" +
				"  </addr>\n" +
				"  <ok>true</ok>\n" +
				"</person>\n",
		},
		{
			name: "array items",
			root: "list",
			doc:  `[{"id": 1}, 2.50]`,
			want: "<list>\n" +
				"  <item_0>\n" +
				"    <id>1</id>\n" +
				"  </item_0>\n" +
				"  <item_1>2.50</item_1>\n" +
				"</list>\n",
		},
		{
			name: "top-level scalar",
			root: "n",
			doc:  `42`,
			want: "<n>42</n>\n",
		},
		{
			name: "top-level null",
			root: "n",
			doc:  `null`,
			want: "<n null=\"true\"/>\n",
		},
		{
			name: "empty containers and strings self-close",
			root: "r",
			doc:  `{"a": [], "b": {}, "c": ""}`,
			want: "<r>\n  <a/>\n  <b/>\n  <c/>\n</r>\n",
		},
		{
			name: "text is escaped",
			root: "r",
			doc:  `{"t": "a < b & \"c\""}`,
			want: "<r>\n  <t>a &lt; b &amp; &#34;c&#34;</t>\n</r>\n",
		},
		{
			name: "keys and root are sanitized",
			root: "2024 data",
			doc:  `{"first name": "x", "1st": "y", "": "z"}`,
			want: "<item_2024_data>\n" +
				"  <first_name>x</first_name>\n" +
				"  <item_1st>y</item_1st>\n" +
				"  <item>z</item>\n" +
				"</item_2024_data>\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, renderXML(t, tt.root, tt.doc))
		})
	}
}

func TestWriteXML_CustomIndent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXML(&buf, "r", mustParse(t, `{"a": {"b": 1}}`), "\t"))
	assert.Equal(t, "<r>\n\t<a>\n\t\t<b>1</b>\n\t</a>\n</r>\n", buf.String())
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{key: "name", want: "name"},
		{key: "", want: "item"},
		{key: "first name", want: "first_name"},
		{key: "a/b:c", want: "a_b_c"},
		{key: "9lives", want: "item_9lives"},
		{key: "-x", want: "item_-x"},
		{key: ".hidden", want: "item_.hidden"},
		{key: "tags.0", want: "tags.0"},
		{key: "héllo", want: "h_llo"},
		{key: "_under", want: "_under"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := SanitizeName(tt.key)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, SanitizeName(got), "sanitizing twice must not change the name")
		})
	}
}

// decodeTree reads rendered output back into elements using encoding/xml.
func decodeTree(t *testing.T, data string) *element {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(data))

	var stack []*element
	var root *element
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)

		switch tok := tok.(type) {
		case xml.StartElement:
			el := &element{name: tok.Name.Local}
			for _, attr := range tok.Attr {
				if attr.Name.Local == "null" && attr.Value == "true" {
					el.null = true
				}
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			} else {
				root = el
			}
			stack = append(stack, el)
		case xml.CharData:
			if len(stack) > 0 && strings.TrimSpace(string(tok)) != "" {
				stack[len(stack)-1].text += string(tok)
			}
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}
	require.NotNil(t, root)
	return root
}

func TestWriteXML_RoundTrip(t *testing.T) {
	docs := []string{
		`{"a": 1, "b": {"c": [true, null, "x & y"]}}`,
		`[{"id": 1, "tags": ["a", "b"]}, {"id": 2, "tags": []}]`,
		`{"weird key!": {"1": "one"}, "quote": "it's \"fine\""}`,
	}

	for _, doc := range docs {
		first := renderXML(t, "root", doc)

		var buf bytes.Buffer
		xw := &xmlWriter{w: &buf, indent: "  "}
		xw.write(decodeTree(t, first), 0)
		require.NoError(t, xw.err)

		assert.Equal(t, first, buf.String(), "doc %s", doc)
	}
}

func TestXMLExporter_Export(t *testing.T) {
	dir := t.TempDir()
	exp, err := New(FormatXML, DefaultOptions(), logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, ".xml", exp.Extension())

	out := filepath.Join(dir, "people.xml")
	require.NoError(t, exp.Export(mustParse(t, `[{"name": "Ann"}]`), out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "<people>\n  <item_0>\n    <name>Ann</name>\n  </item_0>\n</people>\n", string(data))
}

func TestXMLExporter_EmptyArrayWritesRootOnly(t *testing.T) {
	dir := t.TempDir()
	exp, err := New(FormatXML, DefaultOptions(), nil)
	require.NoError(t, err)

	out := filepath.Join(dir, "empty.xml")
	require.NoError(t, exp.Export(mustParse(t, `[]`), out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "<empty/>\n", string(data))
}

func TestNew_UnsupportedFormat(t *testing.T) {
	_, err := New("yaml", DefaultOptions(), nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), `"yaml"`)
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "people", BaseName("/tmp/out/people.csv"))
	assert.Equal(t, "archive.v2", BaseName("archive.v2.sql"))
	assert.Equal(t, "noext", BaseName("dir/noext"))
}

func TestSupportedFormats(t *testing.T) {
	assert.Equal(t, []string{"csv", "sql", "xml"}, SupportedFormats())
}
