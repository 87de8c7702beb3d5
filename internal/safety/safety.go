// Package safety implements the sandbox gate. Every path a plan would
// touch must canonicalize to a location inside the sandbox root and
// outside every forbidden system prefix. The gate runs strictly after
// validation and strictly before any mutation.
package safety

import (
	"fmt"

	"shelve/internal/errdefs"
	"shelve/internal/paths"
	"shelve/internal/plan"
)

// Violation kinds.
const (
	KindForbiddenSystemPath = "forbidden-system-path"
	KindEscapesRoot         = "escapes-root"
)

// Violation reports the first unsafe path found in a plan.
type Violation struct {
	Kind  string
	Path  string
	Index int

	// Prefix is the deny-list entry that matched, for
	// forbidden-system-path violations.
	Prefix string
}

func (v *Violation) Error() string {
	if v.Prefix != "" {
		return fmt.Sprintf("unsafe path: %s: %s under %s (operation %d)", v.Kind, v.Path, v.Prefix, v.Index)
	}
	return fmt.Sprintf("unsafe path: %s: %s (operation %d)", v.Kind, v.Path, v.Index)
}

func (v *Violation) Unwrap() error {
	return errdefs.ErrUnsafePath
}

// Gatekeeper enforces sandbox containment and the deny-list. The root
// is canonicalized once at construction; the deny-list is data, never
// hardwired logic.
type Gatekeeper struct {
	root      string
	forbidden []string
}

// NewGatekeeper canonicalizes root and captures the deny-list.
func NewGatekeeper(root string, forbidden []string) (*Gatekeeper, error) {
	canonical, err := paths.Canonicalize(root)
	if err != nil {
		return nil, errdefs.Wrap(errdefs.ErrConfiguration, "safety", "new", fmt.Sprintf("cannot canonicalize sandbox root %s", root), err)
	}
	return &Gatekeeper{
		root:      canonical,
		forbidden: append([]string(nil), forbidden...),
	}, nil
}

// Root returns the canonical sandbox root.
func (g *Gatekeeper) Root() string {
	return g.root
}

// IsInsideRoot reports whether path canonicalizes to the root itself
// or to a descendant of it, component-wise. A path that cannot be
// canonicalized is not provably inside and reports false.
func (g *Gatekeeper) IsInsideRoot(path string) bool {
	canonical, err := paths.Canonicalize(path)
	if err != nil {
		return false
	}
	return paths.Contains(g.root, canonical)
}

// CheckPlan canonicalizes every source and destination and rejects the
// plan on the first path that touches a forbidden prefix or falls
// outside the sandbox root. No mutation occurs here.
func (g *Gatekeeper) CheckPlan(p *plan.Plan) error {
	for i, op := range p.Operations {
		for _, raw := range []string{op.Source, op.Destination} {
			canonical, err := paths.Canonicalize(raw)
			if err != nil {
				return errdefs.Wrap(errdefs.ErrUnsafePath, "safety", "check_plan", fmt.Sprintf("cannot canonicalize %s (operation %d)", raw, i), err)
			}
			if prefix, hit := paths.UnderAny(g.forbidden, canonical); hit {
				return &Violation{Kind: KindForbiddenSystemPath, Path: canonical, Index: i, Prefix: prefix}
			}
			if !paths.Contains(g.root, canonical) {
				return &Violation{Kind: KindEscapesRoot, Path: canonical, Index: i}
			}
		}
	}
	return nil
}
