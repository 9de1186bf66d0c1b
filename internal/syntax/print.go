package syntax

import (
	"fmt"
	"strings"

	"graft/internal/source"
)

// Render prints a tree as readable source text. Формат стабилен и
// детерминирован: им пользуются вывод `expand`, дисковый кэш и golden-тесты.
func Render(tree *Tree, interner *source.Interner) string {
	var sb strings.Builder
	p := &printer{tree: tree, interner: interner, sb: &sb}
	root := tree.Decl(tree.Root())
	for i, id := range root.Members {
		if i > 0 {
			sb.WriteByte('\n')
		}
		p.printDecl(id, 0)
	}
	return sb.String()
}

type printer struct {
	tree     *Tree
	interner *source.Interner
	sb       *strings.Builder
}

func (p *printer) indent(depth int) {
	for i := 0; i < depth; i++ {
		p.sb.WriteString("    ")
	}
}

func (p *printer) line(depth int, format string, args ...any) {
	p.indent(depth)
	fmt.Fprintf(p.sb, format, args...)
	p.sb.WriteByte('\n')
}

func (p *printer) printDecl(id DeclID, depth int) {
	d := p.tree.Decl(id)
	name := p.interner.MustLookup(d.Name)

	for _, attr := range d.Attrs {
		attrName := p.interner.MustLookup(attr.Name)
		if len(attr.Args) == 0 {
			p.line(depth, "@%s", attrName)
		} else {
			p.line(depth, "@%s(%s)", attrName, strings.Join(attr.Args, ", "))
		}
	}

	switch d.Kind {
	case DeclStruct, DeclExtension:
		p.line(depth, "%s %s {", d.Kind, name)
		for i, member := range d.Members {
			if i > 0 {
				p.sb.WriteByte('\n')
			}
			p.printDecl(member, depth+1)
		}
		p.line(depth, "}")

	case DeclVar:
		p.printVar(d, name, depth)

	case DeclFunc:
		p.printFunc(d, name, depth)

	case DeclSubscript:
		p.printSubscript(d, depth)

	default:
		p.line(depth, "// %s %s", d.Kind, name)
	}
}

func (p *printer) printVar(d *Decl, name string, depth int) {
	head := fmt.Sprintf("var %s", name)
	if d.Type != "" {
		head += ": " + d.Type
	}
	if d.Initializer != "" {
		head += " = " + d.Initializer
	}
	if len(d.Accessors) == 0 {
		p.line(depth, "%s", head)
		return
	}
	p.line(depth, "%s {", head)
	for _, a := range d.Accessors {
		p.printAccessor(a, depth+1)
	}
	p.line(depth, "}")
}

func (p *printer) printFunc(d *Decl, name string, depth int) {
	head := fmt.Sprintf("func %s(%s)", name, formatParams(d.Params))
	if d.Async {
		head += " async"
	}
	if d.Result != "" {
		head += " -> " + d.Result
	}
	if d.Body == "" {
		p.line(depth, "%s", head)
		return
	}
	p.line(depth, "%s {", head)
	for _, bodyLine := range strings.Split(d.Body, "\n") {
		p.line(depth+1, "%s", bodyLine)
	}
	p.line(depth, "}")
}

func (p *printer) printSubscript(d *Decl, depth int) {
	head := fmt.Sprintf("subscript(%s)", formatParams(d.Params))
	if d.Result != "" {
		head += " -> " + d.Result
	}
	if len(d.Accessors) == 0 {
		p.line(depth, "%s", head)
		return
	}
	p.line(depth, "%s {", head)
	for _, a := range d.Accessors {
		p.printAccessor(a, depth+1)
	}
	p.line(depth, "}")
}

func (p *printer) printAccessor(a Accessor, depth int) {
	if a.Body == "" {
		p.line(depth, "%s", a.Kind)
		return
	}
	p.line(depth, "%s {", a.Kind)
	for _, bodyLine := range strings.Split(a.Body, "\n") {
		p.line(depth+1, "%s", bodyLine)
	}
	p.line(depth, "}")
}

func formatParams(params []Param) string {
	parts := make([]string, 0, len(params))
	for _, prm := range params {
		switch {
		case prm.Label == "" || prm.Label == prm.Name:
			parts = append(parts, fmt.Sprintf("%s: %s", prm.Name, prm.Type))
		default:
			parts = append(parts, fmt.Sprintf("%s %s: %s", prm.Label, prm.Name, prm.Type))
		}
	}
	return strings.Join(parts, ", ")
}
