package project

import (
	"errors"
	"testing"

	"graft/internal/source"
	"graft/internal/syntax"
)

const sampleUnit = `
name = "users"

[[decl]]
kind = "struct"
name = "User"

  [[decl.attr]]
  name = "Memberwise"

  [[decl.member]]
  kind = "var"
  name = "id"
  type = "Int"
  initializer = "0"

  [[decl.member]]
  kind = "var"
  name = "name"
  type = "String"

[[decl]]
kind = "func"
name = "fetchUser"
result = "User"
async = true
body = "return await api.user(id: id)"

  [[decl.param]]
  label = "id"
  name = "id"
  type = "Int"

  [[decl.attr]]
  name = "AddCompletionHandler"
`

func TestLoadUnitBytes(t *testing.T) {
	fileSet := source.NewFileSet()
	interner := source.NewInterner()

	tree, err := LoadUnitBytes(fileSet, interner, "users.toml", []byte(sampleUnit))
	if err != nil {
		t.Fatalf("LoadUnitBytes вернул ошибку: %v", err)
	}

	root := tree.Decl(tree.Root())
	if root.Kind != syntax.DeclUnit {
		t.Fatalf("ожидался корень unit, получен %s", root.Kind)
	}
	if len(root.Members) != 2 {
		t.Fatalf("ожидалось 2 декларации верхнего уровня, получено %d", len(root.Members))
	}

	user := tree.Decl(root.Members[0])
	if user.Kind != syntax.DeclStruct {
		t.Fatalf("ожидался struct, получен %s", user.Kind)
	}
	if got := interner.MustLookup(user.Name); got != "User" {
		t.Errorf("ожидалось имя User, получено %q", got)
	}
	if len(user.Attrs) != 1 || interner.MustLookup(user.Attrs[0].Name) != "Memberwise" {
		t.Errorf("ожидался атрибут Memberwise, получено %+v", user.Attrs)
	}
	if len(user.Members) != 2 {
		t.Fatalf("ожидалось 2 члена User, получено %d", len(user.Members))
	}

	id := tree.Decl(user.Members[0])
	if !id.Stored() || id.Type != "Int" || id.Initializer != "0" {
		t.Errorf("член id разобран неверно: %+v", id)
	}

	fetch := tree.Decl(root.Members[1])
	if fetch.Kind != syntax.DeclFunc || !fetch.Async {
		t.Fatalf("ожидалась async-функция, получено %+v", fetch)
	}
	if len(fetch.Params) != 1 || fetch.Params[0].Type != "Int" {
		t.Errorf("параметры fetchUser разобраны неверно: %+v", fetch.Params)
	}
	if fetch.Result != "User" {
		t.Errorf("ожидался результат User, получен %q", fetch.Result)
	}

	// span-ы монотонны и указывают внутрь файла
	if user.Span.Start >= fetch.Span.Start {
		t.Errorf("span-ы не монотонны: User %v, fetchUser %v", user.Span, fetch.Span)
	}
	start, _ := fileSet.Resolve(user.Span)
	if start.Line == 0 {
		t.Error("span User не разрешается в позицию")
	}
}

func TestLoadUnitComputedProperty(t *testing.T) {
	const unit = `
[[decl]]
kind = "struct"
name = "Box"

  [[decl.member]]
  kind = "var"
  name = "area"
  type = "Int"

    [[decl.member.accessor]]
    kind = "get"
    body = "return w * h"
`
	fileSet := source.NewFileSet()
	interner := source.NewInterner()

	tree, err := LoadUnitBytes(fileSet, interner, "box.toml", []byte(unit))
	if err != nil {
		t.Fatalf("LoadUnitBytes вернул ошибку: %v", err)
	}

	box := tree.Decl(tree.Decl(tree.Root()).Members[0])
	area := tree.Decl(box.Members[0])
	if area.Stored() {
		t.Error("свойство с аксессором не должно считаться stored")
	}
	if len(area.Accessors) != 1 || area.Accessors[0].Kind != syntax.AccessorGet {
		t.Errorf("аксессоры разобраны неверно: %+v", area.Accessors)
	}
}

func TestLoadUnitErrors(t *testing.T) {
	cases := []struct {
		name string
		toml string
		want error
	}{
		{
			name: "unknown kind",
			toml: "[[decl]]\nkind = \"class\"\nname = \"C\"\n",
			want: ErrUnknownDeclKind,
		},
		{
			name: "members under var",
			toml: "[[decl]]\nkind = \"var\"\nname = \"x\"\n\n[[decl.member]]\nkind = \"var\"\nname = \"y\"\n",
			want: ErrInvalidNesting,
		},
		{
			name: "unknown accessor",
			toml: "[[decl]]\nkind = \"var\"\nname = \"x\"\n\n[[decl.accessor]]\nkind = \"willSet\"\n",
			want: ErrUnknownAccessorKind,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fileSet := source.NewFileSet()
			_, err := LoadUnitBytes(fileSet, source.NewInterner(), "bad.toml", []byte(tc.toml))
			if !errors.Is(err, tc.want) {
				t.Fatalf("ожидалась %v, получено: %v", tc.want, err)
			}
		})
	}
}
