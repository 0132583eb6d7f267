package source

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// ErrEmptyQuery is returned when a Query has neither text nor a full
// coordinate pair.
var ErrEmptyQuery = errors.New("query needs an address or both latitude and longitude")

// Query selects a property by free text, coordinates, or both.
type Query struct {
	Text string
	Lat  *float64
	Lng  *float64
}

// Coordinates builds a coordinate-only query.
func Coordinates(lat, lng float64) Query {
	return Query{Lat: &lat, Lng: &lng}
}

// HasCoordinates reports whether both latitude and longitude are set.
func (q Query) HasCoordinates() bool {
	return q.Lat != nil && q.Lng != nil
}

// Validate checks the query is answerable.
func (q Query) Validate() error {
	if (q.Lat == nil) != (q.Lng == nil) {
		return fmt.Errorf("%w: latitude and longitude must be given together", ErrEmptyQuery)
	}
	if q.HasCoordinates() {
		if !finite(*q.Lat) || *q.Lat < -90 || *q.Lat > 90 {
			return fmt.Errorf("latitude %v out of range", *q.Lat)
		}
		if !finite(*q.Lng) || *q.Lng < -180 || *q.Lng > 180 {
			return fmt.Errorf("longitude %v out of range", *q.Lng)
		}
		return nil
	}
	if strings.TrimSpace(q.Text) == "" {
		return ErrEmptyQuery
	}
	return nil
}

// Values encodes the query as URL parameters q, lat and lng.
func (q Query) Values() url.Values {
	v := url.Values{}
	if text := strings.TrimSpace(q.Text); text != "" {
		v.Set("q", text)
	}
	if q.HasCoordinates() {
		v.Set("lat", formatCoord(*q.Lat))
		v.Set("lng", formatCoord(*q.Lng))
	}
	return v
}

// Key is the canonical cache key: trimmed, case-folded text plus
// coordinates. Equivalent queries share a key.
func (q Query) Key() string {
	var b strings.Builder
	b.WriteString("q=")
	b.WriteString(strings.ToLower(strings.Join(strings.Fields(q.Text), " ")))
	if q.HasCoordinates() {
		b.WriteString("&lat=")
		b.WriteString(formatCoord(*q.Lat))
		b.WriteString("&lng=")
		b.WriteString(formatCoord(*q.Lng))
	}
	return b.String()
}

func (q Query) String() string {
	switch {
	case q.HasCoordinates() && q.Text != "":
		return fmt.Sprintf("%q (%s, %s)", q.Text, formatCoord(*q.Lat), formatCoord(*q.Lng))
	case q.HasCoordinates():
		return fmt.Sprintf("(%s, %s)", formatCoord(*q.Lat), formatCoord(*q.Lng))
	default:
		return strconv.Quote(q.Text)
	}
}

// ParseQuery reads a Query from raw parameter strings. Empty lat/lng are
// treated as absent.
func ParseQuery(text, lat, lng string) (Query, error) {
	q := Query{Text: strings.TrimSpace(text)}
	var err error
	if q.Lat, err = parseCoord("lat", lat); err != nil {
		return q, err
	}
	if q.Lng, err = parseCoord("lng", lng); err != nil {
		return q, err
	}
	return q, q.Validate()
}

func parseCoord(name, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", name, raw)
	}
	return &f, nil
}

// six decimal places is roughly 0.1m
func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
