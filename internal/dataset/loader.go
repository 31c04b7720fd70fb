package dataset

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sentimentlab/sentiment-service/internal/pkg/errors"
	"github.com/sentimentlab/sentiment-service/internal/pkg/logger"
)

// Loader reads review datasets from disk.
type Loader struct {
	log *logger.Logger
}

// NewLoader creates a loader. log may be nil.
func NewLoader(log *logger.Logger) *Loader {
	if log == nil {
		log = logger.Discard()
	}
	return &Loader{log: log}
}

// Load reads path, detects its encoding and returns the cleaned dataset.
// The whole file is held in memory.
func (l *Loader) Load(path string) (*Dataset, error) {
	l.log.Info("Analysing encoding of data", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.DatasetError("read dataset", err).WithDetail("path", path)
	}
	if len(data) == 0 {
		return nil, errors.DatasetError("dataset is empty", nil).WithDetail("path", path)
	}

	charset := DetectEncoding(data)
	l.log.Info("Detected encoding", "encoding", charset)

	l.log.Info("Loading data")
	ds, err := Parse(data, charset)
	if err != nil {
		if appErr, ok := errors.As(err); ok {
			return nil, appErr.WithDetail("path", path)
		}
		return nil, err
	}

	l.log.Info("Data loaded", "rows", ds.Len(), "columns", len(ds.header))
	return ds, nil
}

// Parse decodes data from charset and parses it as a semicolon-separated
// table. Reviews are sanitized and sentiment labels normalized in place.
func Parse(data []byte, charset string) (*Dataset, error) {
	text, used, err := decode(data, charset)
	if err != nil {
		return nil, errors.DatasetError("decode dataset", err).WithDetail("encoding", charset)
	}

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = ';'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.DatasetError("dataset has no header row", nil)
		}
		return nil, errors.DatasetError("parse header", err)
	}

	ds := &Dataset{
		header:       header,
		encoding:     used,
		reviewCol:    indexOf(header, ReviewColumn),
		sentimentCol: indexOf(header, SentimentColumn),
	}
	if ds.reviewCol < 0 || ds.sentimentCol < 0 {
		return nil, errors.DatasetError(
			fmt.Sprintf("dataset header must contain %q and %q columns", ReviewColumn, SentimentColumn), nil,
		).WithDetail("header", strings.Join(header, ";"))
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.DatasetError("parse row", err)
		}

		if len(row) > len(header) {
			line, _ := r.FieldPos(0)
			return nil, errors.DatasetError(
				fmt.Sprintf("expected %d fields, saw %d", len(header), len(row)), nil,
			).WithDetail("line", strconv.Itoa(line))
		}
		for len(row) < len(header) {
			row = append(row, "")
		}

		row[ds.reviewCol] = Sanitize(row[ds.reviewCol])
		row[ds.sentimentCol] = strconv.Itoa(NormalizeLabel(row[ds.sentimentCol]))
		ds.rows = append(ds.rows, row)
	}

	return ds, nil
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}
