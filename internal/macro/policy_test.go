package macro

import (
	"math/rand"
	"strings"
	"testing"
)

func TestPolicyAllowsBasics(t *testing.T) {
	cases := []struct {
		name      string
		policy    NamePolicy
		target    string
		candidate string
		want      bool
	}{
		{"overloaded match", NamePolicy{{Kind: NameOverloaded}}, "fetch", "fetch", true},
		{"overloaded mismatch", NamePolicy{{Kind: NameOverloaded}}, "fetch", "fetchAll", false},
		{"prefixed match", NamePolicy{{Kind: NamePrefixed, Text: "_"}}, "name", "_name", true},
		{"prefixed wrong base", NamePolicy{{Kind: NamePrefixed, Text: "_"}}, "name", "_other", false},
		{"prefix alone is not enough", NamePolicy{{Kind: NamePrefixed, Text: "_"}}, "name", "_nameX", false},
		{"suffixed match", NamePolicy{{Kind: NameSuffixed, Text: "DidChange"}}, "value", "valueDidChange", true},
		{"suffixed mismatch", NamePolicy{{Kind: NameSuffixed, Text: "DidChange"}}, "value", "valueWillChange", false},
		{"arbitrary admits anything", NamePolicy{{Kind: NameArbitrary}}, "x", "totallyUnrelated", true},
		{"empty policy rejects plain names", NamePolicy{}, "x", "x", false},
		{"generated always allowed", NamePolicy{}, "x", Format(3, 1, "storage"), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.policy.Allows(tc.target, tc.candidate); got != tc.want {
				t.Errorf("Allows(%q, %q) = %v, want %v", tc.target, tc.candidate, got, tc.want)
			}
		})
	}
}

// referenceAllows — прямолинейная модель политики для сравнения.
func referenceAllows(p NamePolicy, target, candidate string) bool {
	if strings.HasPrefix(candidate, "__macro") {
		return true
	}
	for _, r := range p {
		switch r.Kind {
		case NameOverloaded:
			if candidate == target {
				return true
			}
		case NamePrefixed:
			if candidate == r.Text+target {
				return true
			}
		case NameSuffixed:
			if candidate == target+r.Text {
				return true
			}
		case NameArbitrary:
			return true
		}
	}
	return false
}

// Гигиена тотальна: на случайных парах (политика, имя) Allows принимает
// ровно те имена, что соответствуют объявленным шаблонам. В частности,
// произвольные имена не должны проходить под не-arbitrary политиками.
func TestPolicyAllowsRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	ruleKinds := []NameRuleKind{NameOverloaded, NamePrefixed, NameSuffixed, NameArbitrary}
	affixes := []string{"_", "$", "make", "DidSet", "Storage"}
	bases := []string{"name", "value", "fetch", "x"}

	randomRule := func() NameRule {
		kind := ruleKinds[rng.Intn(len(ruleKinds))]
		r := NameRule{Kind: kind}
		if kind == NamePrefixed || kind == NameSuffixed {
			r.Text = affixes[rng.Intn(len(affixes))]
		}
		return r
	}

	for i := 0; i < 2000; i++ {
		policy := make(NamePolicy, rng.Intn(3))
		arbitrary := false
		for j := range policy {
			policy[j] = randomRule()
			if policy[j].Kind == NameArbitrary {
				arbitrary = true
			}
		}
		target := bases[rng.Intn(len(bases))]

		// кандидаты: совпадение, аффиксные варианты и заведомо чужое имя
		candidates := []string{
			target,
			affixes[rng.Intn(len(affixes))] + target,
			target + affixes[rng.Intn(len(affixes))],
			"unrelated" + bases[rng.Intn(len(bases))],
			Format(uint64(i), 1, target),
		}
		for _, candidate := range candidates {
			got := policy.Allows(target, candidate)
			want := referenceAllows(policy, target, candidate)
			if got != want {
				t.Fatalf("policy %v target %q candidate %q: Allows=%v, want %v", policy, target, candidate, got, want)
			}
			if !arbitrary && candidate == "unrelated"+target && got {
				t.Fatalf("не-arbitrary политика %v приняла произвольное имя %q", policy, candidate)
			}
		}
	}
}

func TestParseNameRule(t *testing.T) {
	if r, err := ParseNameRule("prefixed(_)"); err != nil || r.Kind != NamePrefixed || r.Text != "_" {
		t.Errorf("prefixed(_): %v, %v", r, err)
	}
	if r, err := ParseNameRule("suffixed(DidChange)"); err != nil || r.Kind != NameSuffixed || r.Text != "DidChange" {
		t.Errorf("suffixed(DidChange): %v, %v", r, err)
	}
	if _, err := ParseNameRule("prefixed()"); err == nil {
		t.Error("пустой префикс должен быть ошибкой")
	}
	if _, err := ParseNameRule("nonsense"); err == nil {
		t.Error("неизвестный шаблон должен быть ошибкой")
	}
}

func TestUniqueNamesDisjointScopes(t *testing.T) {
	var names UniqueNames
	s1 := names.NextScope()
	s2 := names.NextScope()
	if s1 == s2 {
		t.Fatal("скоупы должны быть уникальны")
	}
	a := Format(s1, 1, "x")
	b := Format(s2, 1, "x")
	if a == b {
		t.Errorf("имена разных скоупов должны различаться: %q", a)
	}
	if !IsGeneratedName(a) {
		t.Errorf("сгенерированное имя должно распознаваться: %q", a)
	}
}
