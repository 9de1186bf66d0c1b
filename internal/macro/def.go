package macro

// Definition — зарегистрированное определение attached-макроса.
// Неизменяемо после регистрации: набор ролей фиксируется один раз.
type Definition struct {
	// Name — имя макроса, каким оно встречается в атрибутах.
	Name string
	// Module различает одноимённые макросы разных модулей; разрешение
	// более одного видимого определения — AmbiguousMacro.
	Module string
	// GenericParams — имена генерик-параметров определения (если есть).
	GenericParams []string
	// Roles — роли в порядке объявления.
	Roles []RoleSpec
	// Impls — функция раскрытия на каждую роль из Roles.
	Impls map[RoleKind]ImplFunc
}

// Role returns the spec for the given kind, if the definition inhabits it.
func (d *Definition) Role(kind RoleKind) (RoleSpec, bool) {
	for _, r := range d.Roles {
		if r.Kind == kind {
			return r, true
		}
	}
	return RoleSpec{}, false
}

// Impl returns the expansion function for the given role kind.
func (d *Definition) Impl(kind RoleKind) (ImplFunc, bool) {
	fn, ok := d.Impls[kind]
	return fn, ok
}
