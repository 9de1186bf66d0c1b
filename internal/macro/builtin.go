package macro

import (
	"fmt"
	"slices"
	"strings"

	"graft/internal/syntax"
)

// Каталог встроенных реализаций ролей. Манифест привязывает роль
// определения к реализации по ключу (поле impl). Внешние реализации
// регистрируются программно через Definition.Impls.
var builtinImpls = map[string]ImplFunc{
	"completion_handler": implCompletionHandler,
	"property_accessors": implPropertyAccessors,
	"memberwise_init":    implMemberwiseInit,
	"attach_to_members":  implAttachToMembers,
}

// BuiltinImpl returns the builtin implementation registered under key.
func BuiltinImpl(key string) (ImplFunc, bool) {
	fn, ok := builtinImpls[key]
	return fn, ok
}

// BuiltinImplKeys returns all builtin implementation keys, sorted.
func BuiltinImplKeys() []string {
	keys := make([]string, 0, len(builtinImpls))
	for k := range builtinImpls {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// implCompletionHandler: peer-роль на асинхронной функции. Строит
// синхронного соседа с тем же именем: async-маркер и возвращаемый тип
// сняты, добавлен параметр completionHandler, тело вызывает оригинал и
// передаёт результат в обработчик.
func implCompletionHandler(inv *Invocation) (Result, error) {
	d := inv.TargetDecl()
	if d.Kind != syntax.DeclFunc || !d.Async {
		return Result{}, fmt.Errorf("@%s requires an async function", inv.AttrName)
	}

	name := inv.TargetName()
	result := d.Result
	if result == "" {
		result = "Void"
	}

	params := slices.Clone(d.Params)
	params = append(params, syntax.Param{
		Label: "completionHandler",
		Name:  "completionHandler",
		Type:  fmt.Sprintf("(%s) -> Void", result),
	})

	args := make([]string, 0, len(d.Params))
	for _, p := range d.Params {
		label := p.Label
		if label == "" {
			label = p.Name
		}
		args = append(args, fmt.Sprintf("%s: %s", label, p.Name))
	}
	body := fmt.Sprintf("Task { completionHandler(await %s(%s)) }", name, strings.Join(args, ", "))

	return Result{Fragments: []Fragment{{
		Kind: FragmentDecl,
		Decl: DeclSpec{
			Kind:   syntax.DeclFunc,
			Name:   name,
			Params: params,
			Body:   body,
		},
	}}}, nil
}

// implPropertyAccessors: accessor-роль на stored-свойстве. Возвращает один
// аксессорный блок над сгенерированным именем хранилища.
func implPropertyAccessors(inv *Invocation) (Result, error) {
	d := inv.TargetDecl()
	if d.Kind != syntax.DeclVar && d.Kind != syntax.DeclSubscript {
		return Result{}, fmt.Errorf("@%s requires a property or subscript", inv.AttrName)
	}

	storage := inv.UniqueName(inv.TargetName() + "_storage")
	return Result{Fragments: []Fragment{{
		Kind: FragmentAccessors,
		Accessors: []syntax.Accessor{
			{Kind: syntax.AccessorGet, Body: fmt.Sprintf("return %s", storage)},
			{Kind: syntax.AccessorSet, Body: fmt.Sprintf("%s = newValue", storage)},
		},
	}}}, nil
}

// implMemberwiseInit: member-роль на типе. Читает список stored-свойств
// (фиксируя зависимости от ожидающих раскрытий) и добавляет член-инициализатор.
func implMemberwiseInit(inv *Invocation) (Result, error) {
	d := inv.TargetDecl()
	if d.Kind != syntax.DeclStruct && d.Kind != syntax.DeclExtension {
		return Result{}, fmt.Errorf("@%s requires a type declaration", inv.AttrName)
	}

	props := inv.StoredProperties(inv.Target)
	params := make([]syntax.Param, 0, len(props))
	assigns := make([]string, 0, len(props))
	for _, p := range props {
		params = append(params, syntax.Param{Label: p.Name, Name: p.Name, Type: p.Type})
		assigns = append(assigns, fmt.Sprintf("self.%s = %s", p.Name, p.Name))
	}

	return Result{Fragments: []Fragment{{
		Kind: FragmentDecl,
		Decl: DeclSpec{
			Kind:   syntax.DeclFunc,
			Name:   "init",
			Params: params,
			Body:   strings.Join(assigns, "\n"),
		},
	}}}, nil
}

// implAttachToMembers: memberAttribute-роль. Первый аргумент — имя
// атрибута, остальные передаются как его аргументы. Атрибут добавляется
// каждому stored-члену типа; результат уходит обратно в планировщик.
func implAttachToMembers(inv *Invocation) (Result, error) {
	d := inv.TargetDecl()
	if d.Kind != syntax.DeclStruct && d.Kind != syntax.DeclExtension {
		return Result{}, fmt.Errorf("@%s requires a type declaration", inv.AttrName)
	}
	if len(inv.AttrArgs) == 0 {
		return Result{}, fmt.Errorf("@%s requires the attribute name as first argument", inv.AttrName)
	}

	attr := AttrSpec{Name: inv.AttrArgs[0], Args: slices.Clone(inv.AttrArgs[1:])}
	var fragments []Fragment
	for _, id := range inv.Tree.StoredProperties(inv.Target) {
		fragments = append(fragments, Fragment{
			Kind:   FragmentAttr,
			Attr:   attr,
			Member: id,
		})
	}
	return Result{Fragments: fragments}, nil
}
