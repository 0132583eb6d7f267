package source

import (
	"context"

	"github.com/oakwood-commons/propdash/internal/document"
	"github.com/oakwood-commons/propdash/internal/fixture"
)

// Demo serves the embedded sample property for any query, without I/O.
type Demo struct{}

func (Demo) Fetch(ctx context.Context, _ Query) (document.Value, error) {
	if err := ctx.Err(); err != nil {
		return document.Value{}, err
	}
	return fixture.Demo(), nil
}
