package transform

import (
	"strconv"

	"github.com/oakwood-commons/propdash/internal/document"
)

// OverviewTitle titles the section holding the document's root-level scalars.
const OverviewTitle = "Overview"

// Row is one key/value line of a section.
type Row struct {
	Key   string
	Value document.Value
}

// Section groups the rows of one object level or one array field.
type Section struct {
	Title string
	Path  string
	Rows  []Row
}

// CollectSections groups doc into sections. Scalars directly under an object
// form one section for that object; each array forms its own section with one
// row per element; nested objects contribute their own sections, spliced in
// order. A level's scalar section is placed in front of the sections its
// containers produced.
func CollectSections(doc document.Value, basePath string) []Section {
	var (
		scalars  []Row
		sections []Section
	)
	for _, m := range doc.Members() {
		path := joinPath(basePath, m.Key)
		switch m.Value.Kind() {
		case document.Array:
			sections = append(sections, arraySection(m.Key, path, m.Value))
		case document.Object:
			sections = append(sections, CollectSections(m.Value, path)...)
		case document.Null, document.Bool, document.Number, document.String:
			scalars = append(scalars, Row{Key: m.Key, Value: m.Value})
		}
	}
	if len(scalars) == 0 {
		return sections
	}
	own := Section{Title: levelTitle(basePath), Path: basePath, Rows: scalars}
	return append([]Section{own}, sections...)
}

func arraySection(key, path string, arr document.Value) Section {
	items := arr.Items()
	rows := make([]Row, len(items))
	for i, item := range items {
		rows[i] = Row{Key: "#" + strconv.Itoa(i+1), Value: item}
	}
	return Section{Title: Prettify(key), Path: path, Rows: rows}
}

func levelTitle(basePath string) string {
	if basePath == "" {
		return OverviewTitle
	}
	return Prettify(basePath)
}
