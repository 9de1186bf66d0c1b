package expand

import (
	"fmt"

	"graft/internal/diag"
	"graft/internal/macro"
)

// validateFragment checks every name a fragment introduces against the
// producing role's name policy and enforces the stored-property ban for
// default-witness roles. Возвращает false, если фрагмент отбрасывается;
// соседние фрагменты и раскрытия продолжаются.
func validateFragment(req *Request, targetName string, frag *macro.Fragment, reporter diag.Reporter) bool {
	for _, name := range frag.IntroducedNames() {
		if !req.Role.Policy.Allows(targetName, name) {
			diag.ReportError(reporter, diag.ExpInvalidIntroducedName, req.Attr.Span,
				fmt.Sprintf("macro '%s' (%s role) introduced name '%s' outside its declared name policy",
					req.AttrName, req.Role.Kind, name)).
				Emit()
			return false
		}
	}

	if req.Role.DefaultWitness && frag.Kind == macro.FragmentDecl && frag.Decl.Stored() {
		diag.ReportError(reporter, diag.ExpStoredPropertyInjected, req.Attr.Span,
			fmt.Sprintf("macro '%s' acts as a default witness and may not introduce stored property '%s'",
				req.AttrName, frag.Decl.Name)).
			Emit()
		return false
	}

	return true
}
