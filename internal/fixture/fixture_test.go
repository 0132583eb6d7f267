package fixture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/propdash/internal/document"
)

func TestDemoShape(t *testing.T) {
	doc := Demo()
	require.Equal(t, document.Object, doc.Kind())

	keys := []string{}
	for _, m := range doc.Members() {
		keys = append(keys, m.Key)
	}
	assert.Equal(t, []string{"address", "zoning", "lot", "overlays", "nearby", "council"}, keys)

	overlays, ok := doc.Get("overlays")
	require.True(t, ok)
	assert.Equal(t, 2, overlays.Len())
}

func TestDemoJSONIsCopy(t *testing.T) {
	a := DemoJSON()
	a[0] = 'X'
	assert.Equal(t, byte('{'), DemoJSON()[0])
}
