package sandbox

import "fmt"

// Guard is the containment policy every filesystem operation goes through.
// Check admits paths that may not exist yet (write and create targets);
// CheckExisting additionally requires the entry to be present (reads, lists,
// stat, move sources).
type Guard struct {
	resolver *Resolver
}

// NewGuard wraps a Resolver with the per-operation existence policy.
func NewGuard(resolver *Resolver) *Guard {
	return &Guard{resolver: resolver}
}

// Check validates containment only; the entry may or may not exist.
func (g *Guard) Check(path string) (ResolvedPath, error) {
	return g.resolver.Resolve(path)
}

// CheckExisting validates containment and requires the entry to exist.
func (g *Guard) CheckExisting(path string) (ResolvedPath, error) {
	rp, err := g.resolver.Resolve(path)
	if err != nil {
		return ResolvedPath{}, err
	}
	if !rp.Exists {
		return ResolvedPath{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return rp, nil
}

// Roots returns the configured allowed roots, for caller introspection.
func (g *Guard) Roots() []string {
	return g.resolver.Roots()
}
