package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sentimentlab/sentiment-service/internal/pkg/errors"
)

// WriteCSV writes every column of d plus column holding values, comma
// separated with a header row and no index column. An existing column with
// the same name is overwritten.
func (d *Dataset) WriteCSV(w io.Writer, column string, values []int) error {
	if len(values) != len(d.rows) {
		return errors.ValidationError(
			fmt.Sprintf("column %q has %d values for %d rows", column, len(values), len(d.rows)),
		)
	}

	target := indexOf(d.header, column)
	header := d.Header()
	if target < 0 {
		target = len(header)
		header = append(header, column)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return errors.DatasetError("write header", err)
	}

	record := make([]string, len(header))
	for i, row := range d.rows {
		copy(record, row)
		record[target] = strconv.Itoa(values[i])
		if err := cw.Write(record); err != nil {
			return errors.DatasetError("write row", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.DatasetError("flush output", err)
	}
	return nil
}

// WriteCSVFile writes the dataset to path, creating parent directories.
func (d *Dataset) WriteCSVFile(path, column string, values []int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.DatasetError("create output directory", err).WithDetail("path", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.DatasetError("create output file", err).WithDetail("path", path)
	}

	if err := d.WriteCSV(f, column, values); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.DatasetError("close output file", err).WithDetail("path", path)
	}
	return nil
}
