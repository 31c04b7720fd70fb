// Package dataset loads review datasets and writes scored output files.
//
// Input files are semicolon-separated with a header row that includes
// "review" and "sentiment" columns. Loading detects the file's character
// encoding, strips HTML tags from reviews and maps sentiment labels to 0/1.
package dataset

import (
	"regexp"
)

// Column names required in every input file.
const (
	ReviewColumn    = "review"
	SentimentColumn = "sentiment"
)

// PositiveLabel is the only raw sentiment value mapped to 1.
const PositiveLabel = "positive"

var htmlTag = regexp.MustCompile(`<.*?>`)

// Record is one cleaned review with its 0/1 label.
type Record struct {
	Review    string `json:"review"`
	Sentiment int    `json:"sentiment"`
}

// Dataset holds every column of a loaded file. The review and sentiment
// columns are stored cleaned.
type Dataset struct {
	header       []string
	rows         [][]string
	encoding     string
	reviewCol    int
	sentimentCol int
}

// Sanitize replaces every HTML tag in s with a single space.
func Sanitize(s string) string {
	return htmlTag.ReplaceAllString(s, " ")
}

// NormalizeLabel returns 1 for exactly "positive" and 0 for anything else.
func NormalizeLabel(raw string) int {
	if raw == PositiveLabel {
		return 1
	}
	return 0
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.rows)
}

// Encoding returns the character set the file was decoded from.
func (d *Dataset) Encoding() string {
	return d.encoding
}

// Header returns a copy of the column names.
func (d *Dataset) Header() []string {
	return append([]string(nil), d.header...)
}

// Records returns the cleaned review/label pairs.
func (d *Dataset) Records() []Record {
	out := make([]Record, len(d.rows))
	for i, row := range d.rows {
		out[i] = Record{
			Review:    row[d.reviewCol],
			Sentiment: d.label(row),
		}
	}
	return out
}

// Reviews returns the cleaned review texts in file order.
func (d *Dataset) Reviews() []string {
	out := make([]string, len(d.rows))
	for i, row := range d.rows {
		out[i] = row[d.reviewCol]
	}
	return out
}

// label reads the already-normalized sentiment cell.
func (d *Dataset) label(row []string) int {
	if row[d.sentimentCol] == "1" {
		return 1
	}
	return 0
}
