package expand

import (
	"testing"

	"graft/internal/diag"
	"graft/internal/macro"
	"graft/internal/source"
	"graft/internal/syntax"
)

func TestRoleApplicableMatrix(t *testing.T) {
	decls := map[string]*syntax.Decl{
		"struct":       {Kind: syntax.DeclStruct},
		"extension":    {Kind: syntax.DeclExtension},
		"var":          {Kind: syntax.DeclVar},
		"computed var": {Kind: syntax.DeclVar, Accessors: []syntax.Accessor{{Kind: syntax.AccessorGet}}},
		"func":         {Kind: syntax.DeclFunc},
		"async func":   {Kind: syntax.DeclFunc, Async: true},
		"subscript":    {Kind: syntax.DeclSubscript},
		"unit":         {Kind: syntax.DeclUnit},
	}

	cases := []struct {
		role macro.RoleSpec
		decl string
		want bool
	}{
		{macro.RoleSpec{Kind: macro.RolePeer}, "func", true},
		{macro.RoleSpec{Kind: macro.RolePeer}, "var", true},
		{macro.RoleSpec{Kind: macro.RolePeer}, "struct", true},
		{macro.RoleSpec{Kind: macro.RolePeer}, "unit", false},
		{macro.RoleSpec{Kind: macro.RolePeer, Requires: macro.RequireAsync}, "async func", true},
		{macro.RoleSpec{Kind: macro.RolePeer, Requires: macro.RequireAsync}, "func", false},
		{macro.RoleSpec{Kind: macro.RolePeer, Requires: macro.RequireAsync}, "var", false},
		{macro.RoleSpec{Kind: macro.RoleMember}, "struct", true},
		{macro.RoleSpec{Kind: macro.RoleMember}, "extension", true},
		{macro.RoleSpec{Kind: macro.RoleMember}, "func", false},
		{macro.RoleSpec{Kind: macro.RoleMemberAttribute}, "struct", true},
		{macro.RoleSpec{Kind: macro.RoleMemberAttribute}, "var", false},
		{macro.RoleSpec{Kind: macro.RoleAccessor}, "var", true},
		{macro.RoleSpec{Kind: macro.RoleAccessor}, "subscript", true},
		{macro.RoleSpec{Kind: macro.RoleAccessor}, "func", false},
		{macro.RoleSpec{Kind: macro.RoleAccessor, Requires: macro.RequireStored}, "var", true},
		{macro.RoleSpec{Kind: macro.RoleAccessor, Requires: macro.RequireStored}, "computed var", false},
	}

	for _, tc := range cases {
		got := roleApplicable(tc.role, decls[tc.decl])
		if got != tc.want {
			t.Errorf("роль %s на %s: ожидалось %t, получено %t", tc.role.Kind, tc.decl, tc.want, got)
		}
	}
}

func TestResolveDeclSkipsExecutedOccurrence(t *testing.T) {
	// Аксессорное раскрытие делает свойство вычисляемым: роль с requires
	// stored перестаёт подходить. Повторное разрешение не должно давать
	// ни запроса, ни диагностики о неприменимости.
	interner := source.NewInterner()
	b := syntax.NewBuilder(interner, source.Span{})
	st := b.NewStruct(b.Root(), "Person", source.Span{})
	prop := b.NewVar(st, "name", "String", "", source.Span{})
	b.AddAttr(prop, "Wrapped", nil, source.Span{})
	tree := b.Build()

	registry := macro.NewRegistry()
	def := &macro.Definition{
		Name:   "Wrapped",
		Module: "Storage",
		Roles: []macro.RoleSpec{{
			Kind:     macro.RoleAccessor,
			Requires: macro.RequireStored,
		}},
		Impls: map[macro.RoleKind]macro.ImplFunc{
			macro.RoleAccessor: func(inv *macro.Invocation) (macro.Result, error) {
				return macro.Result{}, nil
			},
		},
	}
	if err := registry.Register(def); err != nil {
		t.Fatalf("не удалось зарегистрировать макрос: %v", err)
	}

	bag := diag.NewBag(8)
	res := newResolver(registry, interner, diag.BagReporter{Bag: bag})
	done := map[requestKey]struct{}{}

	if reqs := res.resolveDecl(tree, prop, 0, done); len(reqs) != 1 {
		t.Fatalf("ожидался 1 запрос на stored-свойстве, получено %d", len(reqs))
	}

	expanded := tree.WithAccessors(prop, []syntax.Accessor{{Kind: syntax.AccessorGet, Body: "return stored"}})
	done[requestKey{target: prop, attrIdx: 0, role: macro.RoleAccessor}] = struct{}{}

	if reqs := res.resolveDecl(expanded, prop, 0, done); len(reqs) != 0 {
		t.Errorf("исполненное вхождение не должно порождать запросов: %+v", reqs)
	}
	if bag.Len() != 0 {
		t.Errorf("исполненное вхождение не должно диагностироваться: %+v", bag.Items())
	}
}
