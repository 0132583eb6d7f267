package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/propdash/internal/document"
	"github.com/oakwood-commons/propdash/internal/fixture"
)

func TestCollectSectionsDemo(t *testing.T) {
	sections := CollectSections(fixture.Demo(), "")

	type shape struct {
		title string
		path  string
		rows  int
	}
	got := make([]shape, len(sections))
	for i, s := range sections {
		got[i] = shape{s.Title, s.Path, len(s.Rows)}
	}
	assert.Equal(t, []shape{
		{"Overview", "", 1},
		{"Zoning", "zoning", 4},
		{"Lot", "lot", 4},
		{"Overlays", "overlays", 2},
		{"Nearby", "nearby", 4},
		{"Council", "council", 3},
	}, got)

	assert.Equal(t, "address", sections[0].Rows[0].Key)
	assert.Equal(t, "#1", sections[3].Rows[0].Key)
	assert.Equal(t, "#2", sections[3].Rows[1].Key)
	assert.Equal(t, document.Object, sections[3].Rows[0].Value.Kind(), "array elements are not expanded")

	zoning := sections[1].Rows
	assert.Equal(t, []string{"code", "name", "floorSpaceRatio", "maxHeightMeters"},
		[]string{zoning[0].Key, zoning[1].Key, zoning[2].Key, zoning[3].Key})
}

func TestCollectSectionsScalarsPrependedAfterContainers(t *testing.T) {
	doc := document.NewObject(
		document.M("inner", document.NewObject(document.M("x", document.NumberValue(1)))),
		document.M("top", document.StringValue("t")),
		document.M("deep", document.NewObject(
			document.M("list", document.ArrayValue(document.NumberValue(1))),
			document.M("leaf", document.BoolValue(true)),
		)),
	)
	sections := CollectSections(doc, "")
	require.Len(t, sections, 4)
	assert.Equal(t, "", sections[0].Path)
	assert.Equal(t, "inner", sections[1].Path)
	assert.Equal(t, "deep", sections[2].Path, "deep's scalar section precedes its array section")
	assert.Equal(t, "deep.list", sections[3].Path)
	assert.Equal(t, "List", sections[3].Title)
	assert.Equal(t, "Deep", sections[2].Title)
}

func TestCollectSectionsNestedTitles(t *testing.T) {
	doc := document.NewObject(
		document.M("site", document.NewObject(
			document.M("zoningInfo", document.NewObject(document.M("code", document.StringValue("R2")))),
		)),
	)
	sections := CollectSections(doc, "")
	require.Len(t, sections, 1)
	assert.Equal(t, "site.zoningInfo", sections[0].Path)
	assert.Equal(t, "Site Zoning Info", sections[0].Title)
}

func TestCollectSectionsBasePath(t *testing.T) {
	doc := document.NewObject(document.M("a", document.NumberValue(1)))
	sections := CollectSections(doc, "root")
	require.Len(t, sections, 1)
	assert.Equal(t, "root", sections[0].Path)
	assert.Equal(t, "Root", sections[0].Title)
}

func TestCollectSectionsEmpty(t *testing.T) {
	assert.Empty(t, CollectSections(document.NewObject(), ""))
	assert.Empty(t, CollectSections(document.NullValue(), ""))
	assert.Empty(t, CollectSections(document.NewObject(document.M("e", document.NewObject())), ""))
}

func TestCollectSectionsEmptyArray(t *testing.T) {
	sections := CollectSections(document.NewObject(document.M("items", document.ArrayValue())), "")
	require.Len(t, sections, 1)
	assert.Empty(t, sections[0].Rows)
}

func TestCollectSectionsNullIsScalar(t *testing.T) {
	sections := CollectSections(document.NewObject(document.M("gone", document.NullValue())), "")
	require.Len(t, sections, 1)
	assert.Equal(t, "Overview", sections[0].Title)
	assert.True(t, sections[0].Rows[0].Value.IsNull())
}

// Rows across all sections equal the non-array flat entries plus one row per
// element of every array.
func TestSectionRowCountMatchesFlatten(t *testing.T) {
	docs := []document.Value{
		fixture.Demo(),
		document.NewObject(
			document.M("a", document.NewObject(
				document.M("b", document.ArrayValue(document.NumberValue(1), document.NumberValue(2), document.ArrayValue())),
				document.M("c", document.StringValue("")),
				document.M("d", document.NewObject(document.M("e", document.NullValue()))),
			)),
			document.M("f", document.ArrayValue()),
			document.M("g", document.BoolValue(false)),
		),
		document.NewObject(),
	}
	for _, doc := range docs {
		want := 0
		for _, e := range Flatten(doc, nil).Entries() {
			if e.Value.Kind() == document.Array {
				want += e.Value.Len()
				continue
			}
			want++
		}
		got := 0
		for _, s := range CollectSections(doc, "") {
			got += len(s.Rows)
		}
		assert.Equal(t, want, got)
	}
}
