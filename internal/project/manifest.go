package project

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"

	"graft/internal/macro"
)

// RoleEntry describes one role of a macro definition in graft.toml.
type RoleEntry struct {
	Kind           string   `toml:"kind"`
	Policy         []string `toml:"policy"`
	Requires       []string `toml:"requires"`
	Impl           string   `toml:"impl"`
	DefaultWitness bool     `toml:"default_witness"`
}

// MacroEntry describes one [[macro]] table.
type MacroEntry struct {
	Name          string      `toml:"name"`
	Module        string      `toml:"module"`
	GenericParams []string    `toml:"generic_params"`
	Roles         []RoleEntry `toml:"role"`
}

// Manifest — манифест макросов graft.toml: какие определения видимы
// единице компиляции и какими реализациями связаны их роли.
type Manifest struct {
	Macros []MacroEntry `toml:"macro"`
}

var (
	// ErrUnknownImpl indicates a role references a builtin impl key that
	// does not exist.
	ErrUnknownImpl = errors.New("unknown builtin implementation")
	// ErrUnknownRole indicates an unparseable role kind.
	ErrUnknownRole = errors.New("unknown role kind")
	// ErrUnknownRequirement indicates an unparseable requirement.
	ErrUnknownRequirement = errors.New("unknown requirement")
)

// LoadManifest parses a macro manifest file.
func LoadManifest(path string) (*Manifest, error) {
	var m Manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	return &m, nil
}

// BuildRegistry validates the manifest and registers every definition,
// binding roles to builtin implementations by impl key.
func (m *Manifest) BuildRegistry() (*macro.Registry, error) {
	registry := macro.NewRegistry()
	for _, entry := range m.Macros {
		def, err := entry.definition()
		if err != nil {
			return nil, err
		}
		if err := registry.Register(def); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func (entry MacroEntry) definition() (*macro.Definition, error) {
	def := &macro.Definition{
		Name:          entry.Name,
		Module:        entry.Module,
		GenericParams: entry.GenericParams,
		Impls:         make(map[macro.RoleKind]macro.ImplFunc, len(entry.Roles)),
	}

	for _, role := range entry.Roles {
		kind, ok := macro.ParseRoleKind(role.Kind)
		if !ok {
			return nil, fmt.Errorf("macro %q role %q: %w", entry.Name, role.Kind, ErrUnknownRole)
		}

		policy := make(macro.NamePolicy, 0, len(role.Policy))
		for _, rule := range role.Policy {
			parsed, err := macro.ParseNameRule(rule)
			if err != nil {
				return nil, fmt.Errorf("macro %q role %s: %w", entry.Name, kind, err)
			}
			policy = append(policy, parsed)
		}

		var requires macro.Requirement
		for _, req := range role.Requires {
			parsed, ok := macro.ParseRequirement(req)
			if !ok {
				return nil, fmt.Errorf("macro %q role %s requires %q: %w", entry.Name, kind, req, ErrUnknownRequirement)
			}
			requires |= parsed
		}

		impl, ok := macro.BuiltinImpl(role.Impl)
		if !ok {
			return nil, fmt.Errorf("macro %q role %s impl %q: %w", entry.Name, kind, role.Impl, ErrUnknownImpl)
		}

		def.Roles = append(def.Roles, macro.RoleSpec{
			Kind:           kind,
			Policy:         policy,
			Requires:       requires,
			DefaultWitness: role.DefaultWitness,
		})
		def.Impls[kind] = impl
	}

	return def, nil
}
