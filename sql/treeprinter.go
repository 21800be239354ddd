package sql

import (
	"errors"
	"fmt"
	"strings"
)

// TreePrinter renders a node header followed by its already rendered
// children, drawing the branches that connect them.
type TreePrinter struct {
	buf         strings.Builder
	nodeWritten bool
	written     bool
}

// NewTreePrinter creates a new tree printer.
func NewTreePrinter() *TreePrinter {
	return new(TreePrinter)
}

var (
	// ErrNodeNotWritten is returned when the children are written before
	// the node.
	ErrNodeNotWritten = errors.New("treeprinter: a child was written before the node")
	// ErrNodeAlreadyWritten is returned when the node has already been
	// written.
	ErrNodeAlreadyWritten = errors.New("treeprinter: node already written")
	// ErrChildrenAlreadyWritten is returned when the children have already
	// been written.
	ErrChildrenAlreadyWritten = errors.New("treeprinter: children already written")
)

// branch prefixes, for the first line of a child and for the rest of its
// lines, depending on whether it is the last child.
var (
	midBranch  = [2]string{" ├─ ", " │  "}
	lastBranch = [2]string{" └─ ", "    "}
)

// WriteNode writes the main node.
func (p *TreePrinter) WriteNode(format string, args ...interface{}) error {
	if p.nodeWritten {
		return ErrNodeAlreadyWritten
	}

	fmt.Fprintf(&p.buf, format, args...)
	p.buf.WriteByte('\n')
	p.nodeWritten = true
	return nil
}

// WriteChildren writes the children of the tree, each one indented under
// the node. Children can span several lines.
func (p *TreePrinter) WriteChildren(children ...string) error {
	if !p.nodeWritten {
		return ErrNodeNotWritten
	}

	if p.written {
		return ErrChildrenAlreadyWritten
	}
	p.written = true

	for i, child := range children {
		prefix := midBranch
		if i == len(children)-1 {
			prefix = lastBranch
		}

		for j, line := range strings.Split(strings.TrimSuffix(child, "\n"), "\n") {
			if j == 0 {
				p.buf.WriteString(prefix[0])
			} else {
				p.buf.WriteString(prefix[1])
			}
			p.buf.WriteString(line)
			p.buf.WriteByte('\n')
		}
	}
	return nil
}

// String returns the output of the printed tree.
func (p *TreePrinter) String() string {
	return p.buf.String()
}
