package source

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryValidate(t *testing.T) {
	lat, lng := -33.86, 151.2

	tests := []struct {
		name    string
		query   Query
		wantErr error
		ok      bool
	}{
		{name: "text", query: Query{Text: "1 George St"}, ok: true},
		{name: "coordinates", query: Query{Lat: &lat, Lng: &lng}, ok: true},
		{name: "both", query: Query{Text: "x", Lat: &lat, Lng: &lng}, ok: true},
		{name: "empty", query: Query{}, wantErr: ErrEmptyQuery},
		{name: "blank text", query: Query{Text: "   "}, wantErr: ErrEmptyQuery},
		{name: "lat only", query: Query{Text: "x", Lat: &lat}, wantErr: ErrEmptyQuery},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestQueryValidateRange(t *testing.T) {
	assert.Error(t, Coordinates(91, 0).Validate())
	assert.Error(t, Coordinates(0, -181).Validate())
	assert.NoError(t, Coordinates(-90, 180).Validate())
}

func TestQueryKey(t *testing.T) {
	a := Query{Text: "  1 George   St "}
	b := Query{Text: "1 george st"}
	assert.Equal(t, a.Key(), b.Key())

	c := Coordinates(-33.8688, 151.2093)
	d := Coordinates(-33.86880000001, 151.2093)
	assert.Equal(t, c.Key(), d.Key())
	assert.NotEqual(t, a.Key(), c.Key())
}

func TestQueryValues(t *testing.T) {
	q := Coordinates(-33.5, 151)
	q.Text = " 1 George St "
	v := q.Values()
	assert.Equal(t, "1 George St", v.Get("q"))
	assert.Equal(t, "-33.500000", v.Get("lat"))
	assert.Equal(t, "151.000000", v.Get("lng"))

	assert.Empty(t, Query{Text: "x"}.Values().Get("lat"))
}

func TestParseQuery(t *testing.T) {
	q, err := ParseQuery("", "-33.5", "151.25")
	require.NoError(t, err)
	require.True(t, q.HasCoordinates())
	assert.InDelta(t, -33.5, *q.Lat, 1e-9)
	assert.InDelta(t, 151.25, *q.Lng, 1e-9)

	_, err = ParseQuery("", "north", "151")
	assert.Error(t, err)

	_, err = ParseQuery("", "", "")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}
