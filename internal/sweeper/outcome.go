package sweeper

import "strings"

// Outcome is one node of a sweep result: a Leaf for a file (deleted or kept)
// or a Branch holding the outcomes of a directory listing in listing order.
type Outcome struct {
	leaf     bool
	deleted  bool
	children []Outcome
}

// Leaf is the outcome of one file.
func Leaf(deleted bool) Outcome {
	return Outcome{leaf: true, deleted: deleted}
}

// Branch is the outcome of one directory.
func Branch(children ...Outcome) Outcome {
	if children == nil {
		children = []Outcome{}
	}
	return Outcome{children: children}
}

func (o Outcome) IsLeaf() bool { return o.leaf }

// Deleted is the file outcome of a leaf; false for branches.
func (o Outcome) Deleted() bool { return o.leaf && o.deleted }

// Children of a branch; nil for leaves.
func (o Outcome) Children() []Outcome { return o.children }

// Flatten returns every leaf value, depth first.
func (o Outcome) Flatten() []bool {
	var out []bool
	o.walk(func(n Outcome) {
		if n.leaf {
			out = append(out, n.deleted)
		}
	})
	return out
}

// CountDeleted is the number of true leaves.
func (o Outcome) CountDeleted() int {
	n := 0
	for _, d := range o.Flatten() {
		if d {
			n++
		}
	}
	return n
}

// CountFiles is the number of leaves.
func (o Outcome) CountFiles() int {
	return len(o.Flatten())
}

// CountDirectories is the number of branches below o.
func (o Outcome) CountDirectories() int {
	n := 0
	o.walk(func(c Outcome) {
		if !c.leaf {
			n++
		}
	})
	if !o.leaf {
		n--
	}
	return n
}

func (o Outcome) walk(fn func(Outcome)) {
	fn(o)
	for _, c := range o.children {
		c.walk(fn)
	}
}

// String renders the tree, e.g. [false [true true]].
func (o Outcome) String() string {
	var b strings.Builder
	o.write(&b)
	return b.String()
}

func (o Outcome) write(b *strings.Builder) {
	if o.leaf {
		if o.deleted {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
		return
	}
	b.WriteByte('[')
	for i, c := range o.children {
		if i > 0 {
			b.WriteByte(' ')
		}
		c.write(b)
	}
	b.WriteByte(']')
}
