package checker

import "github.com/neve-lang/neve/internal/types"

// Option and Result are part of the standard library but are also
// threaded through the language's core syntax (`?`, `??`, `?.`), so the
// checker treats them as built-in type constructors rather than
// requiring every program to import a prelude module before `?`
// type-checks. DefID sentinels are reserved above any id internal/hir
// ever assigns (hir.DefId starts at 1 and grows with real definitions),
// so they can never collide with a user Def.
const (
	optionDefID uint32 = 0xFFFFFFF0
	resultDefID uint32 = 0xFFFFFFF1
)

func optionOf(t types.Type) *types.Constructor {
	return &types.Constructor{DefID: optionDefID, Name: "Option", Args: []types.Type{t}}
}

func resultOf(ok, err types.Type) *types.Constructor {
	return &types.Constructor{DefID: resultDefID, Name: "Result", Args: []types.Type{ok, err}}
}

func asOption(t types.Type) (*types.Constructor, bool) {
	c, ok := types.Prune(t).(*types.Constructor)
	if !ok || c.DefID != optionDefID {
		return nil, false
	}
	return c, true
}

func asResult(t types.Type) (*types.Constructor, bool) {
	c, ok := types.Prune(t).(*types.Constructor)
	if !ok || c.DefID != resultDefID {
		return nil, false
	}
	return c, true
}
