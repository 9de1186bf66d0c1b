package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Регистрация макросов
	RegInfo                   Code = 1000
	RegInvalidRoleCombination Code = 1001
	RegDuplicateDefinition    Code = 1002
	RegEmptyRoleSet           Code = 1003
	RegInvalidNamePolicy      Code = 1004

	// Разрешение атрибутов
	ResInfo              Code = 2000
	ResUnknownMacro      Code = 2001
	ResAmbiguousMacro    Code = 2002
	ResRoleNotApplicable Code = 2003

	// Раскрытие (scheduler, invoker, hygiene, cycles, merge)
	ExpInfo                  Code = 3000
	ExpInvalidIntroducedName Code = 3001
	ExpDependencyCycle       Code = 3002
	ExpNonterminating        Code = 3003
	ExpMacroImplementation   Code = 3004
	ExpStoredPropertyInjected Code = 3005

	// Манифесты и входные файлы
	PrjInfo            Code = 4000
	PrjManifestInvalid Code = 4001
	PrjUnitInvalid     Code = 4002
	PrjUnknownImpl     Code = 4003
)

var codeDescription = map[Code]string{
	UnknownCode: "unknown error",

	RegInfo:                   "registration info",
	RegInvalidRoleCombination: "invalid role combination",
	RegDuplicateDefinition:    "duplicate macro definition",
	RegEmptyRoleSet:           "macro defines no roles",
	RegInvalidNamePolicy:      "invalid name policy",

	ResInfo:              "resolution info",
	ResUnknownMacro:      "unknown macro",
	ResAmbiguousMacro:    "ambiguous macro reference",
	ResRoleNotApplicable: "role not applicable at this position",

	ExpInfo:                   "expansion info",
	ExpInvalidIntroducedName:  "introduced name violates name policy",
	ExpDependencyCycle:        "dependency cycle between expansions",
	ExpNonterminating:         "macro expansion does not terminate",
	ExpMacroImplementation:    "macro implementation failed",
	ExpStoredPropertyInjected: "role may not introduce a stored property",

	PrjInfo:            "project info",
	PrjManifestInvalid: "invalid macro manifest",
	PrjUnitInvalid:     "invalid unit file",
	PrjUnknownImpl:     "unknown builtin implementation",
}

// ID returns the stable short identifier, e.g. "EXP3002".
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("REG%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("RES%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("EXP%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
