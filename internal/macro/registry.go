package macro

import (
	"errors"
	"fmt"
	"slices"
)

// Ошибки регистрации. Поверхность драйвера превращает их в диагностики;
// внутри реестра это обычные Go-ошибки.
var (
	ErrInvalidRoleCombination = errors.New("invalid role combination")
	ErrDuplicateDefinition    = errors.New("duplicate macro definition")
	ErrEmptyRoleSet           = errors.New("macro defines no roles")
	ErrMissingImpl            = errors.New("role has no implementation")
)

// Registry records, per macro definition, the set of roles it inhabits and
// each role's name-introduction policy. Read-only after registration:
// концевые фазы обращаются к нему конкурентно без блокировок.
type Registry struct {
	byName map[string][]*Definition
	names  []string
}

func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string][]*Definition),
	}
}

// Register validates and records a definition.
func (r *Registry) Register(def *Definition) error {
	if def.Name == "" {
		return fmt.Errorf("macro with empty name: %w", ErrDuplicateDefinition)
	}
	if len(def.Roles) == 0 {
		return fmt.Errorf("macro %q: %w", def.Name, ErrEmptyRoleSet)
	}

	var seen [roleKindCount]bool
	for _, role := range def.Roles {
		if seen[role.Kind] {
			return fmt.Errorf("macro %q repeats role %s: %w", def.Name, role.Kind, ErrInvalidRoleCombination)
		}
		seen[role.Kind] = true
		if _, ok := def.Impls[role.Kind]; !ok {
			return fmt.Errorf("macro %q role %s: %w", def.Name, role.Kind, ErrMissingImpl)
		}
	}

	// accessor и member на одном определении претендуют на аксессорный
	// блок одного и того же свойства цели — комбинация запрещена.
	if seen[RoleAccessor] && seen[RoleMember] {
		return fmt.Errorf("macro %q combines accessor and member: %w", def.Name, ErrInvalidRoleCombination)
	}

	for _, existing := range r.byName[def.Name] {
		if existing.Module == def.Module {
			return fmt.Errorf("macro %s::%s already registered: %w", def.Module, def.Name, ErrDuplicateDefinition)
		}
	}

	if _, ok := r.byName[def.Name]; !ok {
		r.names = append(r.names, def.Name)
	}
	r.byName[def.Name] = append(r.byName[def.Name], def)
	return nil
}

// Lookup returns all visible definitions for the given macro name.
// Пустой срез — UnknownMacro; больше одного — AmbiguousMacro (решает резолвер).
func (r *Registry) Lookup(name string) []*Definition {
	return r.byName[name]
}

// LookupRoles returns the role set of the single visible definition.
func (r *Registry) LookupRoles(name string) ([]RoleSpec, bool) {
	defs := r.byName[name]
	if len(defs) != 1 {
		return nil, false
	}
	return defs[0].Roles, true
}

// Definitions returns all registered definitions sorted by name then module.
func (r *Registry) Definitions() []*Definition {
	names := slices.Clone(r.names)
	slices.Sort(names)
	out := make([]*Definition, 0, len(names))
	for _, name := range names {
		defs := slices.Clone(r.byName[name])
		slices.SortFunc(defs, func(a, b *Definition) int {
			switch {
			case a.Module < b.Module:
				return -1
			case a.Module > b.Module:
				return 1
			}
			return 0
		})
		out = append(out, defs...)
	}
	return out
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	n := 0
	for _, defs := range r.byName {
		n += len(defs)
	}
	return n
}
