package locale

import (
	"context"
	"sort"

	"golang.org/x/text/language"
)

// Chain consults resolvers in Order and uses the first one that supports the
// authentication.
type Chain struct {
	resolvers []Resolver
	fallback  language.Tag
}

// NewChain creates a chain with fallback for unsupported authentications.
func NewChain(fallback language.Tag, resolvers ...Resolver) *Chain {
	sorted := make([]Resolver, 0, len(resolvers))
	for _, r := range resolvers {
		if r != nil {
			sorted = append(sorted, r)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order() < sorted[j].Order()
	})
	return &Chain{resolvers: sorted, fallback: fallback}
}

// Resolve returns the locale for auth.
func (c *Chain) Resolve(ctx context.Context, auth Authentication) language.Tag {
	if tag, ok := c.Lookup(ctx, auth); ok {
		return tag
	}
	return c.fallback
}

// Lookup is Resolve without the fallback. ok is false when no resolver
// supports auth.
func (c *Chain) Lookup(ctx context.Context, auth Authentication) (language.Tag, bool) {
	for _, r := range c.resolvers {
		if r.Supports(auth) {
			return r.Locale(ctx, auth), true
		}
	}
	return language.Und, false
}

// Resolvers returns the resolvers in evaluation order.
func (c *Chain) Resolvers() []Resolver {
	out := make([]Resolver, len(c.resolvers))
	copy(out, c.resolvers)
	return out
}
