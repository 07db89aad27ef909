package epubtext

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"
)

// Node is one element of a parsed content document.
type Node struct {
	// Name is the element name. Name.Space holds the resolved namespace
	// URI, not the prefix.
	Name xml.Name

	// Text is the element's direct text: character data between the start
	// tag and the first child element. Comments and processing
	// instructions inside that span are dropped without ending it.
	Text string

	Children []*Node
}

// Local returns the element's local name, without namespace.
func (n *Node) Local() string {
	return n.Name.Local
}

// FindAll returns every descendant of n whose local name equals local,
// in any namespace or none, depth-first in document order. n itself is
// never included.
func (n *Node) FindAll(local string) []*Node {
	var out []*Node
	n.findAll(local, &out)
	return out
}

func (n *Node) findAll(local string, out *[]*Node) {
	for _, c := range n.Children {
		if c.Name.Local == local {
			*out = append(*out, c)
		}
		c.findAll(local, out)
	}
}

// Parse reads one XML document from r and returns its root element.
//
// Input is treated as UTF-8 unless the XML declaration names another
// encoding, in which case it is decoded with golang.org/x/net/html/charset.
// A leading UTF-8 BOM is skipped. Malformed documents, including ones
// with no root element or more than one, return an error wrapping
// ErrXMLParse. Errors from r itself are returned wrapped but are not
// classified as parse errors.
func Parse(r io.Reader, opts Options) (*Node, error) {
	src := &readTracker{r: r}
	d := xml.NewDecoder(skipBOM(src))
	d.Strict = true
	d.CharsetReader = charset.NewReaderLabel
	if opts.HTMLEntities {
		d.Entity = xml.HTMLEntity
	}

	root, err := buildTree(d)
	if err != nil {
		if src.err != nil {
			return nil, fmt.Errorf("epubtext: read document: %w", src.err)
		}
		return nil, fmt.Errorf("%w: %w", ErrXMLParse, err)
	}
	return root, nil
}

// xmlNamespace is bound to the "xml" prefix without declaration.
const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// frame is one open element during tree building.
type frame struct {
	raw  xml.Name          // name as written; Space holds the prefix
	ns   map[string]string // namespace declarations made on this element
	node *Node
}

// buildTree consumes d and assembles the element tree. Raw tokens are read
// so that namespace binding, duplicate attributes and tag matching can be
// checked here; encoding/xml resolves prefixes leniently and leaves an
// unbound prefix in Name.Space.
func buildTree(d *xml.Decoder) (*Node, error) {
	var (
		root  *Node
		stack []frame
		text  bytes.Buffer
	)

	for {
		tok, err := d.RawToken()
		if errors.Is(err, io.EOF) {
			if len(stack) > 0 {
				return nil, fmt.Errorf("line %d: unexpected EOF: <%s> not closed", line(d), qname(stack[len(stack)-1].raw))
			}
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 && root != nil {
				return nil, fmt.Errorf("line %d: junk after document element <%s>", line(d), qname(t.Name))
			}
			f, err := openFrame(stack, t)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line(d), err)
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1].node
				if len(parent.Children) == 0 {
					parent.Text = text.String()
				}
				parent.Children = append(parent.Children, f.node)
			} else {
				root = f.node
			}
			text.Reset()
			stack = append(stack, f)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("line %d: unexpected end element </%s>", line(d), qname(t.Name))
			}
			f := stack[len(stack)-1]
			if t.Name != f.raw {
				return nil, fmt.Errorf("line %d: element <%s> closed by </%s>", line(d), qname(f.raw), qname(t.Name))
			}
			if len(f.node.Children) == 0 {
				f.node.Text = text.String()
			}
			text.Reset()
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					return nil, fmt.Errorf("line %d: text outside document element", line(d))
				}
				continue
			}
			// Only text before the first child is kept.
			if len(stack[len(stack)-1].node.Children) == 0 {
				text.Write(t)
			}
		}
	}

	if root == nil {
		return nil, errors.New("no element found")
	}
	return root, nil
}

// openFrame resolves the element and attribute names of t against the
// declarations in scope, including those t makes itself.
func openFrame(stack []frame, t xml.StartElement) (frame, error) {
	f := frame{raw: t.Name}
	seen := make(map[xml.Name]bool, len(t.Attr))
	for _, a := range t.Attr {
		if seen[a.Name] {
			return f, fmt.Errorf("duplicate attribute %s on <%s>", qname(a.Name), qname(t.Name))
		}
		seen[a.Name] = true

		switch {
		case a.Name.Space == "xmlns":
			if f.ns == nil {
				f.ns = make(map[string]string)
			}
			f.ns[a.Name.Local] = a.Value
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			if f.ns == nil {
				f.ns = make(map[string]string)
			}
			f.ns[""] = a.Value
		}
	}
	space, ok := lookupNamespace(stack, f.ns, t.Name.Space)
	if !ok {
		return f, fmt.Errorf("unbound prefix %q on <%s>", t.Name.Space, qname(t.Name))
	}

	// Prefixed attributes bound to the same URI are also duplicates.
	expanded := make(map[xml.Name]bool, len(t.Attr))
	for _, a := range t.Attr {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		name := xml.Name{Local: a.Name.Local}
		if a.Name.Space != "" {
			uri, ok := lookupNamespace(stack, f.ns, a.Name.Space)
			if !ok {
				return f, fmt.Errorf("unbound prefix %q on attribute %s", a.Name.Space, qname(a.Name))
			}
			name.Space = uri
		}
		if expanded[name] {
			return f, fmt.Errorf("duplicate attribute %s on <%s>", qname(a.Name), qname(t.Name))
		}
		expanded[name] = true
	}

	f.node = &Node{Name: xml.Name{Space: space, Local: t.Name.Local}}
	return f, nil
}

// lookupNamespace returns the URI bound to prefix by own, the declarations
// of the element being opened, or else by the open elements in stack. The
// empty prefix is always bound, to "" when no default namespace is declared.
func lookupNamespace(stack []frame, own map[string]string, prefix string) (string, bool) {
	if prefix == "xml" {
		return xmlNamespace, true
	}
	if uri, ok := own[prefix]; ok {
		return uri, true
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if uri, ok := stack[i].ns[prefix]; ok {
			return uri, true
		}
	}
	return "", prefix == ""
}

func qname(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func line(d *xml.Decoder) int {
	l, _ := d.InputPos()
	return l
}

// readTracker remembers the first non-EOF error returned by r, so that
// I/O failures can be told apart from syntax errors after decoding.
type readTracker struct {
	r   io.Reader
	err error
}

func (t *readTracker) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && t.err == nil {
		t.err = err
	}
	return n, err
}
