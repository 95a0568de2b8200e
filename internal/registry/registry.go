// Package registry holds the file-field registry: the single source of truth
// mapping each content model to the columns that may hold stored file paths.
// The orphan reclaimer builds its reference set exclusively from these
// entries. A model or column missing here is invisible to reclamation, and
// any files it references WILL be deleted as orphans: register every
// file-bearing field.
package registry

// Field describes one file-bearing column of a content model.
// Multi marks columns holding a JSON array of paths instead of a single path.
type Field struct {
	Column string
	Multi  bool
}

// Entry binds a content model to its table and file-bearing columns.
type Entry struct {
	Model  string
	Table  string
	Fields []Field
}

// Registry is the ordered list of registered models.
type Registry []Entry

// Default returns the registry for the built-in content models.
func Default() Registry {
	return Registry{
		{
			Model:  "User",
			Table:  "users",
			Fields: []Field{{Column: "profile_image"}},
		},
		{
			Model:  "Attorney",
			Table:  "attorneys",
			Fields: []Field{{Column: "profile_image"}, {Column: "banner_image"}},
		},
		{
			Model:  "PracticeArea",
			Table:  "practice_areas",
			Fields: []Field{{Column: "image"}, {Column: "images", Multi: true}},
		},
	}
}

// Columns returns the column names of an entry in registration order.
func (e Entry) Columns() []string {
	cols := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		cols = append(cols, f.Column)
	}
	return cols
}
