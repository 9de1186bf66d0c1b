package syntax

import (
	"graft/internal/source"
)

type DeclKind uint8

const (
	// DeclUnit — корень дерева скоупов одной единицы компиляции.
	DeclUnit DeclKind = iota
	DeclStruct
	DeclExtension
	DeclVar
	DeclFunc
	DeclSubscript
)

func (k DeclKind) String() string {
	switch k {
	case DeclUnit:
		return "unit"
	case DeclStruct:
		return "struct"
	case DeclExtension:
		return "extension"
	case DeclVar:
		return "var"
	case DeclFunc:
		return "func"
	case DeclSubscript:
		return "subscript"
	}
	return "unknown"
}

// Attr описывает атрибут вида `@name(args...)` на декларации.
// Аргументы хранятся как сырой текст: их грамматика — забота парсера.
type Attr struct {
	Name source.StringID
	Args []string
	Span source.Span
}

// Param — параметр функции или сабскрипта.
type Param struct {
	Label string
	Name  string
	Type  string
}

type AccessorKind uint8

const (
	AccessorGet AccessorKind = iota
	AccessorSet
)

func (k AccessorKind) String() string {
	if k == AccessorSet {
		return "set"
	}
	return "get"
}

// Accessor — один аксессор свойства/сабскрипта; тело хранится текстом.
type Accessor struct {
	Kind AccessorKind
	Body string
}

// Decl is a single declaration node. One flat struct covers all kinds;
// kind-specific fields are documented per field. Decl values inside a Tree
// are immutable: every modification goes through the Tree's With* methods,
// which produce a new Tree version.
type Decl struct {
	Kind   DeclKind
	Name   source.StringID
	Span   source.Span
	Parent DeclID
	Attrs  []Attr

	// Origin is set on synthesized declarations: the declaration whose
	// expansion produced this one. NoDeclID for parsed declarations.
	Origin DeclID

	// Members: unit / struct / extension, в порядке исходника.
	Members []DeclID

	// Var / subscript.
	Type        string
	Initializer string // "" — нет инициализатора
	Accessors   []Accessor

	// Func / subscript.
	Params []Param
	Result string
	Async  bool
	Body   string
}

// Stored reports whether the declaration is a stored property: a var
// without accessors. Синтезированный аксессорный блок делает свойство
// вычисляемым.
func (d *Decl) Stored() bool {
	return d.Kind == DeclVar && len(d.Accessors) == 0
}

// HasAttr reports whether an attribute with the given name is present.
func (d *Decl) HasAttr(name source.StringID) bool {
	for i := range d.Attrs {
		if d.Attrs[i].Name == name {
			return true
		}
	}
	return false
}
