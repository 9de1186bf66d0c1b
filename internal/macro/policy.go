package macro

import (
	"fmt"
	"strings"
)

// NameRuleKind — вид шаблона допустимых имён.
type NameRuleKind uint8

const (
	// NameOverloaded: имя совпадает с базовым именем цели.
	NameOverloaded NameRuleKind = iota
	// NamePrefixed: имя = префикс + базовое имя цели.
	NamePrefixed
	// NameSuffixed: имя = базовое имя цели + суффикс.
	NameSuffixed
	// NameArbitrary: любое имя; должен быть объявлен явно.
	NameArbitrary
)

// NameRule — один объявленный шаблон имени.
type NameRule struct {
	Kind NameRuleKind
	Text string // префикс/суффикс; пусто для overloaded и arbitrary
}

func (r NameRule) String() string {
	switch r.Kind {
	case NameOverloaded:
		return "overloaded"
	case NamePrefixed:
		return fmt.Sprintf("prefixed(%s)", r.Text)
	case NameSuffixed:
		return fmt.Sprintf("suffixed(%s)", r.Text)
	case NameArbitrary:
		return "arbitrary"
	}
	return "unknown"
}

// NamePolicy — множество объявленных шаблонов имён одной роли.
// Пустая политика допускает только контекстно-сгенерированные уникальные
// имена (они разрешены всегда).
type NamePolicy []NameRule

// ParseNameRule разбирает шаблон из манифеста: "overloaded", "arbitrary",
// "prefixed(p)", "suffixed(s)".
func ParseNameRule(s string) (NameRule, error) {
	switch {
	case s == "overloaded":
		return NameRule{Kind: NameOverloaded}, nil
	case s == "arbitrary":
		return NameRule{Kind: NameArbitrary}, nil
	case strings.HasPrefix(s, "prefixed(") && strings.HasSuffix(s, ")"):
		text := s[len("prefixed(") : len(s)-1]
		if text == "" {
			return NameRule{}, fmt.Errorf("empty prefix in %q", s)
		}
		return NameRule{Kind: NamePrefixed, Text: text}, nil
	case strings.HasPrefix(s, "suffixed(") && strings.HasSuffix(s, ")"):
		text := s[len("suffixed(") : len(s)-1]
		if text == "" {
			return NameRule{}, fmt.Errorf("empty suffix in %q", s)
		}
		return NameRule{Kind: NameSuffixed, Text: text}, nil
	}
	return NameRule{}, fmt.Errorf("unknown name rule %q", s)
}

// Allows reports whether the candidate name is admitted by the policy for a
// target with the given base name. Контекстно-сгенерированные уникальные
// имена проверяются до политики и разрешены всегда.
func (p NamePolicy) Allows(targetBase, candidate string) bool {
	if IsGeneratedName(candidate) {
		return true
	}
	for _, rule := range p {
		switch rule.Kind {
		case NameOverloaded:
			if candidate == targetBase {
				return true
			}
		case NamePrefixed:
			if candidate == rule.Text+targetBase {
				return true
			}
		case NameSuffixed:
			if candidate == targetBase+rule.Text {
				return true
			}
		case NameArbitrary:
			return true
		}
	}
	return false
}
