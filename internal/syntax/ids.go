package syntax

type (
	// DeclID идентифицирует декларацию внутри одного Tree (1-based).
	DeclID uint32
	// AttrIdx — позиция атрибута в списке атрибутов декларации.
	AttrIdx uint32
)

const NoDeclID DeclID = 0

func (id DeclID) IsValid() bool { return id != NoDeclID }
