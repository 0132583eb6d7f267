package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrettify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"floorSpaceRatio", "Floor Space Ratio"},
		{"devAppsLast12m", "Dev Apps Last12m"},
		{"lot.areaSqm", "Lot Area Sqm"},
		{"max_height_meters", "Max Height Meters"},
		{"council.devAppsLast12m", "Council Dev Apps Last12m"},
		{"address", "Address"},
		{"#1", "#1"},
		{"URLPath", "URLPath"},
		{"aBcD", "A Bc D"},
		{"a__b..c", "A B C"},
		{"", ""},
		{"_", ""},
		{"élan_vital", "Élan Vital"},
		{"floor space", "Floor space"},
		{"site area_totalSqm", "Site area Total Sqm"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Prettify(tt.in))
		})
	}
}
