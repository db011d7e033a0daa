package container

import "slices"

type color uint8

const (
	white color = iota // not visited
	gray               // on the current path
	black              // fully checked
)

// validate walks the required set of every binding, in registration order,
// and reports all missing and cyclic dependencies as one ValidationError.
//
// A provider ref that is not bound itself is satisfied by a binding of its
// raw ref and is never followed, so provider edges cannot close a cycle.
func validate(bindings map[Ref]*binding, order []Ref) error {
	g := &graph{
		bindings: bindings,
		state:    make(map[Ref]color, len(bindings)),
	}
	for _, ref := range order {
		if g.state[ref] == white {
			g.visit(ref, []Ref{ref})
		}
	}
	if len(g.violations) > 0 {
		return &ValidationError{Violations: g.violations}
	}
	return nil
}

type graph struct {
	bindings   map[Ref]*binding
	state      map[Ref]color
	violations []*Error
}

func (g *graph) visit(ref Ref, path []Ref) {
	g.state[ref] = gray
	defer func() { g.state[ref] = black }()

	seen := make(map[Ref]bool)
	for _, dep := range g.bindings[ref].provider.Dependencies() {
		if seen[dep] {
			continue
		}
		seen[dep] = true

		if _, bound := g.bindings[dep]; !bound {
			if dep.IsProvider() {
				if _, rawBound := g.bindings[dep.Raw()]; rawBound {
					continue
				}
			}
			g.violations = append(g.violations, dependencyNotFound(dep, slices.Clone(path)))
			continue
		}

		switch g.state[dep] {
		case gray:
			start := slices.Index(path, dep)
			cycle := append(slices.Clone(path[start:]), dep)
			g.violations = append(g.violations, cyclicDependency(cycle))
		case white:
			g.visit(dep, append(slices.Clone(path), dep))
		}
	}
}
