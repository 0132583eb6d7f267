// Package source turns a Query into a raw property document. Sources are
// the HTTP API client, the embedded demo fixture and a caching wrapper that
// can sit in front of either.
package source

import (
	"context"

	"github.com/oakwood-commons/propdash/internal/document"
)

// Source fetches the raw document for a query.
type Source interface {
	Fetch(ctx context.Context, q Query) (document.Value, error)
}

// Func adapts a plain function to Source.
type Func func(ctx context.Context, q Query) (document.Value, error)

func (f Func) Fetch(ctx context.Context, q Query) (document.Value, error) {
	return f(ctx, q)
}
