package symbols

import (
	"go/ast"
	"reflect"
	"strings"
)

// DirectivePrefix starts every cligen comment directive.
const DirectivePrefix = "//cligen:"

// ParseDirective splits a comment line like
//
//	//cligen:command name:"serve" desc:"Run the server"
//
// into its name ("command") and its attributes in struct tag syntax.
func ParseDirective(line string) (name string, attrs reflect.StructTag, ok bool) {
	if !strings.HasPrefix(line, DirectivePrefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(line, DirectivePrefix)
	name, tail, _ := strings.Cut(rest, " ")
	if name == "" {
		return "", "", false
	}
	return name, reflect.StructTag(strings.TrimSpace(tail)), true
}

// findDirective returns the attributes of the first directive called name in doc.
func findDirective(doc *ast.CommentGroup, names ...string) (string, reflect.StructTag, bool) {
	if doc == nil {
		return "", "", false
	}
	for _, c := range doc.List {
		got, attrs, ok := ParseDirective(c.Text)
		if !ok {
			continue
		}
		for _, name := range names {
			if got == name {
				return got, attrs, true
			}
		}
	}
	return "", "", false
}

// docText returns the comment text without directive lines.
// ast.CommentGroup.Text already drops "//name:" style directives.
func docText(groups ...*ast.CommentGroup) string {
	for _, g := range groups {
		if g == nil {
			continue
		}
		if s := strings.TrimSpace(g.Text()); s != "" {
			return s
		}
	}
	return ""
}
