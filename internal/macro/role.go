package macro

// RoleKind — закрытое перечисление ролей attached-макроса. Каждая роль
// имеет собственный контракт входа/выхода; макрос регистрирует по одной
// функции раскрытия на роль.
type RoleKind uint8

const (
	// RoleMemberAttribute добавляет атрибуты членам типа. Выполняется
	// раньше остальных ролей: его результат должен попасть в списки
	// атрибутов членов до того, как атрибуты этих членов будут разрешены.
	RoleMemberAttribute RoleKind = iota
	// RoleMember добавляет новые члены в объемлющий тип/расширение.
	RoleMember
	// RolePeer добавляет декларации-соседи сразу после цели.
	RolePeer
	// RoleAccessor заменяет аксессорный блок свойства/сабскрипта.
	RoleAccessor

	roleKindCount
)

func (k RoleKind) String() string {
	switch k {
	case RoleMemberAttribute:
		return "memberAttribute"
	case RoleMember:
		return "member"
	case RolePeer:
		return "peer"
	case RoleAccessor:
		return "accessor"
	}
	return "unknown"
}

// ParseRoleKind разбирает имя роли из манифеста.
func ParseRoleKind(s string) (RoleKind, bool) {
	switch s {
	case "memberAttribute":
		return RoleMemberAttribute, true
	case "member":
		return RoleMember, true
	case "peer":
		return RolePeer, true
	case "accessor":
		return RoleAccessor, true
	}
	return 0, false
}

// RoleKinds returns all role kinds in execution order.
func RoleKinds() []RoleKind {
	return []RoleKind{RoleMemberAttribute, RoleMember, RolePeer, RoleAccessor}
}

// Requirement — дополнительное синтаксическое требование роли к цели,
// сверх базовой матрицы применимости.
type Requirement uint8

const (
	RequireNone Requirement = 0
	// RequireAsync: цель — асинхронная функция.
	RequireAsync Requirement = 1 << iota
	// RequireStored: цель — stored-свойство (без аксессоров).
	RequireStored
)

// ParseRequirement разбирает требование из манифеста.
func ParseRequirement(s string) (Requirement, bool) {
	switch s {
	case "async":
		return RequireAsync, true
	case "stored":
		return RequireStored, true
	}
	return RequireNone, false
}

// RoleSpec describes one role a macro definition inhabits: the kind, the
// name-introduction policy for declarations it produces, optional extra
// requirements on the target, and whether the role acts as a default
// witness (which forbids introducing stored properties).
type RoleSpec struct {
	Kind           RoleKind
	Policy         NamePolicy
	Requires       Requirement
	DefaultWitness bool
}
