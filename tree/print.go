package tree

import (
	"fmt"
	"io"
	"strings"
)

// Print writes a human-readable, indented rendering of the tree to w,
// intended for CLI/tooling use rather than for the host framework (which
// consumes the Node structure directly).
func Print(w io.Writer, n *Node) {
	print(w, n, 0)
}

func print(w io.Writer, n *Node, depth int) {
	indent := strings.Repeat("  ", depth)
	line := fmt.Sprintf("%s%s", indent, n.Label)
	if n.Value != nil {
		line += fmt.Sprintf(": %s = %s", n.Value.Kind, n.Value.Text)
	}
	line += fmt.Sprintf("  [%d..%d)", n.Range.Offset, n.Range.End())
	fmt.Fprintln(w, line)
	for _, ei := range n.ExpertInfos {
		fmt.Fprintf(w, "%s  ! %s (%s): %s\n", indent, ei.Kind, ei.Severity, ei.Message)
	}
	for _, c := range n.Children {
		print(w, c, depth+1)
	}
}
