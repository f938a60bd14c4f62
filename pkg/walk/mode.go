package walk

import "github.com/matzehuels/symbol/pkg/errors"

// Mode selects the frontier discipline.
type Mode string

const (
	DepthFirst   Mode = "depth_first"
	BreadthFirst Mode = "breadth_first"
)

// Family selects which family neighbours are expanded first.
type Family string

const (
	ChildrenFirst Family = "children_first"
	ParentsFirst  Family = "parents_first"
)

// ParseMode converts a mode name. The empty string selects DepthFirst;
// unknown names fail with INVALID_MODE.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case "":
		return DepthFirst, nil
	case DepthFirst, BreadthFirst:
		return m, nil
	}
	return "", errors.New(errors.ErrCodeInvalidMode, "unknown traverse mode %q", s)
}

// ParseFamily converts a family mode name. The empty string selects
// ChildrenFirst; unknown names fail with INVALID_MODE.
func ParseFamily(s string) (Family, error) {
	switch f := Family(s); f {
	case "":
		return ChildrenFirst, nil
	case ChildrenFirst, ParentsFirst:
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidMode, "unknown family mode %q", s)
}
