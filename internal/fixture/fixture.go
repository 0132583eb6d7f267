// Package fixture embeds the demo property document served when no network
// call is wanted.
package fixture

import (
	_ "embed"

	"github.com/oakwood-commons/propdash/internal/document"
)

//go:embed demo.json
var demoJSON []byte

// DemoJSON returns a copy of the raw demo payload.
func DemoJSON() []byte {
	return append([]byte(nil), demoJSON...)
}

// Demo decodes the embedded demo document. The payload is compiled in, so a
// decode failure is a build defect and panics.
func Demo() document.Value {
	v, err := document.Parse(demoJSON)
	if err != nil {
		panic("fixture: embedded demo document is invalid: " + err.Error())
	}
	return v
}
