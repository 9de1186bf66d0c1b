package project

import (
	"bytes"
	"errors"
	"fmt"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"

	"graft/internal/source"
	"graft/internal/syntax"
)

// AttrNode — одно вхождение атрибута `@name(args...)` в файле единицы.
type AttrNode struct {
	Name string   `toml:"name"`
	Args []string `toml:"args"`
}

// ParamNode describes a function or subscript parameter.
type ParamNode struct {
	Label string `toml:"label"`
	Name  string `toml:"name"`
	Type  string `toml:"type"`
}

// AccessorNode describes one accessor of a computed property.
type AccessorNode struct {
	Kind string `toml:"kind"`
	Body string `toml:"body"`
}

// DeclNode is one declaration in a unit file. Members nest recursively.
type DeclNode struct {
	Kind        string         `toml:"kind"`
	Name        string         `toml:"name"`
	Type        string         `toml:"type"`
	Initializer string         `toml:"initializer"`
	Result      string         `toml:"result"`
	Async       bool           `toml:"async"`
	Body        string         `toml:"body"`
	Params      []ParamNode    `toml:"param"`
	Accessors   []AccessorNode `toml:"accessor"`
	Attrs       []AttrNode     `toml:"attr"`
	Members     []DeclNode     `toml:"member"`
}

// UnitFile — TOML-представление единицы компиляции: плоский список
// деклараций верхнего уровня с рекурсивными членами.
type UnitFile struct {
	Name  string     `toml:"name"`
	Decls []DeclNode `toml:"decl"`
}

var (
	// ErrUnknownDeclKind indicates an unrecognized declaration kind.
	ErrUnknownDeclKind = errors.New("unknown declaration kind")
	// ErrUnknownAccessorKind indicates an unrecognized accessor kind.
	ErrUnknownAccessorKind = errors.New("unknown accessor kind")
	// ErrInvalidNesting indicates members under a declaration that cannot
	// contain them.
	ErrInvalidNesting = errors.New("declaration cannot contain members")
)

// LoadUnit reads a unit file into the file set and builds its syntax tree.
// Span-ы указывают на первое вхождение имени декларации в тексте файла от
// движущегося курсора, так что диагностики ведут в сам TOML.
func LoadUnit(fileSet *source.FileSet, interner *source.Interner, path string) (*syntax.Tree, error) {
	fileID, err := fileSet.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read unit %s: %w", path, err)
	}
	file := fileSet.Get(fileID)

	var unit UnitFile
	if _, err := toml.Decode(string(file.Content), &unit); err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}

	return buildTree(interner, fileID, file.Content, &unit)
}

// LoadUnitBytes builds a tree from in-memory unit content (tests, stdin).
func LoadUnitBytes(fileSet *source.FileSet, interner *source.Interner, name string, content []byte) (*syntax.Tree, error) {
	fileID := fileSet.AddVirtual(name, content)

	var unit UnitFile
	if _, err := toml.Decode(string(content), &unit); err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", name, err)
	}

	return buildTree(interner, fileID, content, &unit)
}

func buildTree(interner *source.Interner, fileID source.FileID, content []byte, unit *UnitFile) (*syntax.Tree, error) {
	loc := &locator{file: fileID, content: content}
	end, err := safecast.Conv[uint32](len(content))
	if err != nil {
		return nil, fmt.Errorf("unit file too large: %w", err)
	}
	b := syntax.NewBuilder(interner, source.Span{File: fileID, Start: 0, End: end})

	for i := range unit.Decls {
		if err := buildDecl(b, b.Root(), &unit.Decls[i], loc); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

func buildDecl(b *syntax.Builder, parent syntax.DeclID, node *DeclNode, loc *locator) error {
	span := loc.spanFor(node.Name)

	var id syntax.DeclID
	switch node.Kind {
	case "struct":
		id = b.NewStruct(parent, node.Name, span)
	case "extension":
		id = b.NewExtension(parent, node.Name, span)
	case "var":
		id = b.NewVar(parent, node.Name, node.Type, node.Initializer, span)
		if len(node.Accessors) > 0 {
			accessors, err := parseAccessors(node)
			if err != nil {
				return err
			}
			b.SetAccessors(id, accessors)
		}
	case "func":
		id = b.NewFunc(parent, node.Name, params(node), node.Result, node.Async, node.Body, span)
	case "subscript":
		id = b.NewSubscript(parent, params(node), node.Result, span)
	default:
		return fmt.Errorf("declaration %q kind %q: %w", node.Name, node.Kind, ErrUnknownDeclKind)
	}

	for _, attr := range node.Attrs {
		b.AddAttr(id, attr.Name, attr.Args, loc.spanFor(attr.Name))
	}

	if len(node.Members) > 0 {
		if node.Kind != "struct" && node.Kind != "extension" {
			return fmt.Errorf("%s %q: %w", node.Kind, node.Name, ErrInvalidNesting)
		}
		for i := range node.Members {
			if err := buildDecl(b, id, &node.Members[i], loc); err != nil {
				return err
			}
		}
	}
	return nil
}

func params(node *DeclNode) []syntax.Param {
	if len(node.Params) == 0 {
		return nil
	}
	out := make([]syntax.Param, 0, len(node.Params))
	for _, p := range node.Params {
		out = append(out, syntax.Param{Label: p.Label, Name: p.Name, Type: p.Type})
	}
	return out
}

func parseAccessors(node *DeclNode) ([]syntax.Accessor, error) {
	out := make([]syntax.Accessor, 0, len(node.Accessors))
	for _, a := range node.Accessors {
		var kind syntax.AccessorKind
		switch a.Kind {
		case "get":
			kind = syntax.AccessorGet
		case "set":
			kind = syntax.AccessorSet
		default:
			return nil, fmt.Errorf("var %q accessor %q: %w", node.Name, a.Kind, ErrUnknownAccessorKind)
		}
		out = append(out, syntax.Accessor{Kind: kind, Body: a.Body})
	}
	return out, nil
}

// locator assigns spans by scanning for the next occurrence of a name from a
// moving cursor. Декларации в TOML идут в порядке исходника, поэтому
// последовательный поиск даёт монотонные, правдоподобные позиции.
type locator struct {
	file    source.FileID
	content []byte
	cursor  uint32
}

func (loc *locator) spanFor(name string) source.Span {
	if name == "" {
		return source.Span{File: loc.file, Start: loc.cursor, End: loc.cursor}
	}
	idx := bytes.Index(loc.content[loc.cursor:], []byte(name))
	if idx < 0 {
		return source.Span{File: loc.file, Start: loc.cursor, End: loc.cursor}
	}
	start := loc.cursor + uint32(idx)
	end := start + uint32(len(name))
	loc.cursor = end
	return source.Span{File: loc.file, Start: start, End: end}
}
