package syntax

import (
	"fmt"

	"fortio.org/safecast"

	"graft/internal/source"
)

// Builder constructs the initial Tree for a unit. It is the only mutable
// entry point into the syntax model: the parser collaborator (or a unit
// loader, or tests) builds the tree once, calls Build, and from then on the
// engine works exclusively with immutable snapshots.
type Builder struct {
	interner *source.Interner
	decls    []Decl
	root     DeclID
}

// NewBuilder creates a builder with a fresh unit root covering span.
func NewBuilder(interner *source.Interner, span source.Span) *Builder {
	if interner == nil {
		interner = source.NewInterner()
	}
	b := &Builder{
		interner: interner,
		decls:    make([]Decl, 1, 16), // decls[0] — NoDeclID
	}
	b.root = b.add(Decl{Kind: DeclUnit, Span: span})
	return b
}

// Interner returns the interner used for declaration and attribute names.
func (b *Builder) Interner() *source.Interner {
	return b.interner
}

// Root returns the unit root ID.
func (b *Builder) Root() DeclID {
	return b.root
}

func (b *Builder) add(d Decl) DeclID {
	n, err := safecast.Conv[uint32](len(b.decls))
	if err != nil {
		panic(fmt.Errorf("decl table overflow: %w", err))
	}
	b.decls = append(b.decls, d)
	return DeclID(n)
}

func (b *Builder) attach(parent DeclID, d Decl) DeclID {
	d.Parent = parent
	id := b.add(d)
	b.decls[parent].Members = append(b.decls[parent].Members, id)
	return id
}

// NewStruct adds a struct declaration under parent.
func (b *Builder) NewStruct(parent DeclID, name string, span source.Span) DeclID {
	return b.attach(parent, Decl{
		Kind: DeclStruct,
		Name: b.interner.Intern(name),
		Span: span,
	})
}

// NewExtension adds an extension declaration under parent.
func (b *Builder) NewExtension(parent DeclID, name string, span source.Span) DeclID {
	return b.attach(parent, Decl{
		Kind: DeclExtension,
		Name: b.interner.Intern(name),
		Span: span,
	})
}

// NewVar adds a stored property; initializer may be empty.
func (b *Builder) NewVar(parent DeclID, name, typ, initializer string, span source.Span) DeclID {
	return b.attach(parent, Decl{
		Kind:        DeclVar,
		Name:        b.interner.Intern(name),
		Type:        typ,
		Initializer: initializer,
		Span:        span,
	})
}

// NewFunc adds a function declaration.
func (b *Builder) NewFunc(parent DeclID, name string, params []Param, result string, async bool, body string, span source.Span) DeclID {
	return b.attach(parent, Decl{
		Kind:   DeclFunc,
		Name:   b.interner.Intern(name),
		Params: params,
		Result: result,
		Async:  async,
		Body:   body,
		Span:   span,
	})
}

// NewSubscript adds a subscript declaration.
func (b *Builder) NewSubscript(parent DeclID, params []Param, result string, span source.Span) DeclID {
	return b.attach(parent, Decl{
		Kind:   DeclSubscript,
		Name:   b.interner.Intern("subscript"),
		Params: params,
		Result: result,
		Span:   span,
	})
}

// AddAttr appends an attribute occurrence to a declaration (source order).
func (b *Builder) AddAttr(target DeclID, name string, args []string, span source.Span) {
	b.decls[target].Attrs = append(b.decls[target].Attrs, Attr{
		Name: b.interner.Intern(name),
		Args: args,
		Span: span,
	})
}

// SetAccessors устанавливает аксессорный блок (свойство становится вычисляемым).
func (b *Builder) SetAccessors(target DeclID, accessors []Accessor) {
	b.decls[target].Accessors = accessors
}

// Build freezes the builder into an immutable Tree. Дальнейшее использование
// builder-а после Build не допускается.
func (b *Builder) Build() *Tree {
	decls := b.decls
	b.decls = nil
	return &Tree{decls: decls, root: b.root}
}
