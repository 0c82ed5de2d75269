package models

import (
	"bytes"
	"strings"

	json "github.com/goccy/go-json"
)

const PathSeparator = "."

// ContentRow is one row of the content worksheet: A = path, B = text, C = reply flag.
type ContentRow struct {
	Path    string
	Text    string
	IsReply bool
}

// Leaf is the payload of a content node.
type Leaf struct {
	Text    string
	IsReply bool
}

// Node is a content tree node. A node may carry a payload, children, or both.
type Node struct {
	Leaf     *Leaf
	keys     []string
	children map[string]*Node
}

func newNode() *Node {
	return &Node{children: make(map[string]*Node)}
}

func (n *Node) child(key string) (*Node, bool) {
	c, ok := n.children[key]
	return c, ok
}

func (n *Node) childOrCreate(key string) *Node {
	if c, ok := n.children[key]; ok {
		return c
	}
	c := newNode()
	n.children[key] = c
	n.keys = append(n.keys, key)
	return c
}

// Keys returns child segment keys in insertion order.
func (n *Node) Keys() []string {
	return append([]string(nil), n.keys...)
}

func (n *Node) Child(key string) *Node {
	return n.children[key]
}

// MarshalJSON renders the node the way clients have always received it:
// payload keys and child segments side by side in one object.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	writeField := func(key string, value any) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}

	if n.Leaf != nil {
		if err := writeField("text", n.Leaf.Text); err != nil {
			return nil, err
		}
		if err := writeField("is_reply", n.Leaf.IsReply); err != nil {
			return nil, err
		}
	}
	for _, key := range n.keys {
		if err := writeField(key, n.children[key]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Button is a flattened content node with its full path.
type Button struct {
	Path    string `json:"path"`
	Text    string `json:"text"`
	IsReply bool   `json:"is_reply"`
}

// Tree is an immutable content tree. Build a new one to change content.
type Tree struct {
	root *Node
}

func (t *Tree) Root() *Node {
	return t.root
}

// ParseContentRows converts raw worksheet rows (header excluded) into content rows.
// A repeated path keeps its first position and its last value; rows with blank
// text are skipped.
func ParseContentRows(raw [][]string) []ContentRow {
	order := make([]string, 0, len(raw))
	byPath := make(map[string]ContentRow, len(raw))

	for _, r := range raw {
		cell := func(i int) string {
			if i < len(r) {
				return r[i]
			}
			return ""
		}
		path := strings.TrimSpace(cell(0))
		if path == "" {
			continue
		}
		row := ContentRow{
			Path:    path,
			Text:    cell(1),
			IsReply: strings.EqualFold(strings.TrimSpace(cell(2)), "y"),
		}
		if _, seen := byPath[path]; !seen {
			order = append(order, path)
		}
		byPath[path] = row
	}

	rows := make([]ContentRow, 0, len(order))
	for _, path := range order {
		row := byPath[path]
		if row.Text == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// BuildTree inserts every row under its dot-delimited path. A row whose path is
// already a parent keeps the existing children.
func BuildTree(rows []ContentRow) *Tree {
	root := newNode()
	for _, row := range rows {
		if row.Text == "" && !row.IsReply {
			continue
		}
		node := root
		for _, segment := range strings.Split(row.Path, PathSeparator) {
			node = node.childOrCreate(segment)
		}
		node.Leaf = &Leaf{Text: row.Text, IsReply: row.IsReply}
	}
	return &Tree{root: root}
}

func joinPath(prefix, path string) string {
	joined := prefix + PathSeparator + path
	joined = strings.TrimSuffix(joined, PathSeparator)
	return strings.TrimPrefix(joined, PathSeparator)
}

func flatten(n *Node, replies bool) []Button {
	var out []Button
	if n.Leaf != nil && n.Leaf.IsReply == replies {
		out = append(out, Button{Text: n.Leaf.Text, IsReply: n.Leaf.IsReply})
	}
	for _, key := range n.keys {
		for _, b := range flatten(n.children[key], replies) {
			b.Path = joinPath(key, b.Path)
			out = append(out, b)
		}
	}
	return out
}

// Flatten lists every navigable button depth-first.
func (t *Tree) Flatten() []Button {
	return flatten(t.root, false)
}

// FlattenReplies lists every free-text prompt depth-first.
func (t *Tree) FlattenReplies() []Button {
	return flatten(t.root, true)
}

// Lookup walks the tree along path.
func (t *Tree) Lookup(path string) (*Node, error) {
	node := t.root
	for _, segment := range strings.Split(path, PathSeparator) {
		next, ok := node.child(segment)
		if !ok {
			return nil, ErrNotFound
		}
		node = next
	}
	return node, nil
}

// Query returns the node at path (if it has a payload) followed by each
// immediate child that has one. It does not recurse further.
func (t *Tree) Query(path string) ([]Button, error) {
	node, err := t.Lookup(path)
	if err != nil {
		return nil, err
	}

	var out []Button
	if node.Leaf != nil {
		out = append(out, Button{Path: path, Text: node.Leaf.Text, IsReply: node.Leaf.IsReply})
	}
	for _, key := range node.keys {
		c := node.children[key]
		if c.Leaf == nil {
			continue
		}
		out = append(out, Button{Path: path + PathSeparator + key, Text: c.Leaf.Text, IsReply: c.Leaf.IsReply})
	}
	return out, nil
}

// Buttons returns the navigable children of path.
func (t *Tree) Buttons(path string) ([]Button, error) {
	entries, err := t.Query(path)
	if err != nil {
		return nil, err
	}
	out := make([]Button, 0, len(entries))
	for _, b := range entries {
		if !b.IsReply && b.Path != path {
			out = append(out, b)
		}
	}
	return out, nil
}

// Replies returns the free-text prompts at path, the node itself included.
func (t *Tree) Replies(path string) ([]Button, error) {
	entries, err := t.Query(path)
	if err != nil {
		return nil, err
	}
	out := make([]Button, 0, len(entries))
	for _, b := range entries {
		if b.IsReply {
			out = append(out, b)
		}
	}
	return out, nil
}

// DisplayName is the text of the first non-reply entry at path.
func (t *Tree) DisplayName(path string) (string, bool) {
	entries, err := t.Query(path)
	if err != nil {
		return "", false
	}
	for _, b := range entries {
		if !b.IsReply {
			return b.Text, true
		}
	}
	return "", false
}
