package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"graft/internal/macro"
	"graft/internal/project"
)

var macrosCmd = &cobra.Command{
	Use:   "macros [flags]",
	Short: "List macro definitions visible under a manifest",
	RunE:  runMacros,
}

func init() {
	macrosCmd.Flags().String("manifest", "graft.toml", "macro manifest path")
	macrosCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	macrosCmd.Flags().Bool("impls", false, "list builtin implementation keys instead")
}

type roleJSON struct {
	Kind           string   `json:"kind"`
	Policy         []string `json:"policy,omitempty"`
	Requires       []string `json:"requires,omitempty"`
	DefaultWitness bool     `json:"default_witness,omitempty"`
}

type macroJSON struct {
	Name          string     `json:"name"`
	Module        string     `json:"module"`
	GenericParams []string   `json:"generic_params,omitempty"`
	Roles         []roleJSON `json:"roles"`
}

func runMacros(cmd *cobra.Command, args []string) error {
	manifestPath, err := cmd.Flags().GetString("manifest")
	if err != nil {
		return fmt.Errorf("failed to get manifest flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	listImpls, err := cmd.Flags().GetBool("impls")
	if err != nil {
		return fmt.Errorf("failed to get impls flag: %w", err)
	}

	out := cmd.OutOrStdout()

	if listImpls {
		for _, key := range macro.BuiltinImplKeys() {
			fmt.Fprintln(out, key)
		}
		return nil
	}

	manifest, err := project.LoadManifest(manifestPath)
	if err != nil {
		return err
	}
	registry, err := manifest.BuildRegistry()
	if err != nil {
		return err
	}

	defs := registry.Definitions()

	if format == "json" {
		payload := make([]macroJSON, 0, len(defs))
		for _, def := range defs {
			m := macroJSON{
				Name:          def.Name,
				Module:        def.Module,
				GenericParams: def.GenericParams,
			}
			for _, role := range def.Roles {
				m.Roles = append(m.Roles, roleJSON{
					Kind:           role.Kind.String(),
					Policy:         policyStrings(role.Policy),
					Requires:       requirementStrings(role.Requires),
					DefaultWitness: role.DefaultWitness,
				})
			}
			payload = append(payload, m)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	for _, def := range defs {
		name := def.Name
		if len(def.GenericParams) > 0 {
			name += "<" + strings.Join(def.GenericParams, ", ") + ">"
		}
		fmt.Fprintf(out, "%s::%s\n", def.Module, name)
		for _, role := range def.Roles {
			line := "  " + role.Kind.String()
			if p := policyStrings(role.Policy); len(p) > 0 {
				line += " names(" + strings.Join(p, ", ") + ")"
			}
			if r := requirementStrings(role.Requires); len(r) > 0 {
				line += " requires(" + strings.Join(r, ", ") + ")"
			}
			if role.DefaultWitness {
				line += " default-witness"
			}
			fmt.Fprintln(out, line)
		}
	}
	return nil
}

func policyStrings(policy macro.NamePolicy) []string {
	out := make([]string, 0, len(policy))
	for _, rule := range policy {
		out = append(out, rule.String())
	}
	return out
}

func requirementStrings(req macro.Requirement) []string {
	var out []string
	if req&macro.RequireAsync != 0 {
		out = append(out, "async")
	}
	if req&macro.RequireStored != 0 {
		out = append(out, "stored")
	}
	return out
}
