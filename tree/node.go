// Package tree is a concrete stand-in for the host packet-analysis
// framework's output sink (spec.md §3, §6): a tree of labelled nodes,
// interior nodes denoting messages or repeated groups, leaves carrying a
// typed rendered value. The decoder core only ever appends to this tree;
// it never reads it back.
package tree

import (
	"fmt"

	"github.com/protolens/pbtree/expertinfo"
)

// ByteRange is an absolute-offset view into the captured payload.
// Offset and Length are both in bytes from the start of the original
// buffer, independent of any nesting.
type ByteRange struct {
	Offset int
	Length int
}

func (r ByteRange) End() int { return r.Offset + r.Length }

// Contains reports whether r entirely encloses other, per invariant 1
// in spec.md §3 ("every emitted leaf's byte range lies entirely within
// the enclosing message's byte range").
func (r ByteRange) Contains(other ByteRange) bool {
	return other.Offset >= r.Offset && other.End() <= r.End()
}

// ExpertInfo is a diagnostic annotation attached to a node.
type ExpertInfo struct {
	Kind     expertinfo.Kind
	Severity expertinfo.Severity
	Message  string
}

// Node is one element of the output tree. Leaves carry a non-nil Value;
// interior nodes (Message, Repeated, Field) carry Children instead.
type Node struct {
	Label       string
	Range       ByteRange
	Value       *Value
	Children    []*Node
	ExpertInfos []ExpertInfo
}

// Value is a typed leaf rendering. Kind names the declared type of the
// rendering (e.g. "INT32"), or "meta" for the generated field
// pseudo-children (message name, field name, field type).
type Value struct {
	Kind string
	Text string // human-readable rendering, e.g. "150" or `"testing"`
	Raw  interface{}
}

// NewRoot creates the top-level "ProtoBuf" node the Entry Dispatcher
// writes into.
func NewRoot(r ByteRange) *Node {
	return &Node{Label: "ProtoBuf", Range: r}
}

// AddChild appends a child node, preserving stream order (spec.md §5).
func (n *Node) AddChild(child *Node) {
	n.Children = append(n.Children, child)
}

// SetValue assigns this node's leaf value.
func (n *Node) SetValue(v Value) {
	n.Value = &v
}

// AddExpertInfo attaches a diagnostic to this node.
func (n *Node) AddExpertInfo(kind expertinfo.Kind, format string, args ...interface{}) {
	n.ExpertInfos = append(n.ExpertInfos, ExpertInfo{
		Kind:     kind,
		Severity: expertinfo.SeverityOf(kind),
		Message:  fmt.Sprintf(format, args...),
	})
}

// NewChild creates and appends a labelled child covering r, returning it
// for further population.
func (n *Node) NewChild(label string, r ByteRange) *Node {
	c := &Node{Label: label, Range: r}
	n.AddChild(c)
	return c
}
