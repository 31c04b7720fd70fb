package dataset

import (
	"bytes"
	"io"
	"strings"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DetectSampleSize is how many leading bytes are inspected to guess the encoding.
const DetectSampleSize = 100000

// DefaultEncoding is used when detection fails or names an unknown charset.
const DefaultEncoding = "UTF-8"

// DetectEncoding guesses the character set of data from its first
// DetectSampleSize bytes. It never fails; unknown input yields DefaultEncoding.
func DetectEncoding(data []byte) string {
	sample := data
	if len(sample) > DetectSampleSize {
		sample = sample[:DetectSampleSize]
	}
	if len(sample) == 0 {
		return DefaultEncoding
	}

	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil || result == nil || result.Charset == "" {
		return DefaultEncoding
	}
	return result.Charset
}

// lookupEncoding resolves a charset name, falling back to UTF-8.
func lookupEncoding(name string) (encoding.Encoding, string) {
	enc, err := htmlindex.Get(strings.ToLower(name))
	if err != nil || enc == nil {
		return unicode.UTF8, DefaultEncoding
	}
	return enc, name
}

// decode converts data from charset to UTF-8. A UTF-8 or UTF-16 byte order
// mark overrides charset and is dropped.
func decode(data []byte, charset string) (string, string, error) {
	enc, used := lookupEncoding(charset)

	r := transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(enc.NewDecoder()))
	out, err := io.ReadAll(r)
	if err != nil {
		return "", used, err
	}
	return string(out), used, nil
}
