package dataset

import "strings"

// ReferenceRecord is one professionally cataloged book used as ground truth
// when evaluating extraction accuracy.
type ReferenceRecord struct {
	Identifier      string   `json:"identifier" parquet:"identifier"`
	Title           string   `json:"title" parquet:"title"`
	Author          string   `json:"author" parquet:"author"`
	Language        string   `json:"language" parquet:"language"` // ISO 639-3 code or full name
	Genres          []string `json:"genres" parquet:"genres,list"`
	PublicationDate string   `json:"publication_date" parquet:"publication_date"`
}

// QueryTitle returns the title as it should be submitted to the pipeline,
// with cataloging punctuation trimmed.
func (r ReferenceRecord) QueryTitle() string {
	title := strings.TrimSpace(r.Title)
	title = strings.TrimSuffix(title, "/")
	title = strings.TrimSuffix(title, ":")
	return strings.TrimSpace(title)
}

// QueryAuthor returns the author in display order. Catalog records often
// store "Last, First"; the pipeline prompt wants natural order.
func (r ReferenceRecord) QueryAuthor() string {
	author := strings.TrimSpace(r.Author)
	author = strings.TrimSuffix(author, ",")
	parts := strings.SplitN(author, ", ", 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[1] + " " + parts[0])
	}
	return author
}
