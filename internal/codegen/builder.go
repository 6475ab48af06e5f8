package codegen

import (
	"bytes"
	"fmt"
	"strings"
)

// Builder accumulates Go source line by line, keeping track of the
// indentation level. Blocks are written through closures so that every
// opening brace gets its closing brace.
type Builder struct {
	buf   bytes.Buffer
	depth int
}

// Line writes one formatted line at the current indentation.
func (b *Builder) Line(format string, args ...any) {
	b.buf.WriteString(strings.Repeat("\t", b.depth))
	if len(args) == 0 {
		b.buf.WriteString(format)
	} else {
		fmt.Fprintf(&b.buf, format, args...)
	}
	b.buf.WriteByte('\n')
}

// Blank writes an empty line.
func (b *Builder) Blank() {
	b.buf.WriteByte('\n')
}

// Block writes "header {", the body one level deeper, and "}".
func (b *Builder) Block(header string, body func()) {
	b.Group(header+" {", "}", body)
}

// Group writes open and end verbatim around an indented body, e.g.
// "import (" and ")", or a closure passed as an argument and "})".
func (b *Builder) Group(open, end string, body func()) {
	b.Line("%s", open)
	b.depth++
	body()
	b.depth--
	b.Line("%s", end)
}

// Bytes returns the source written so far.
func (b *Builder) Bytes() []byte {
	return b.buf.Bytes()
}

func (b *Builder) String() string {
	return b.buf.String()
}
