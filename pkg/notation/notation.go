// pkg/notation/notation.go
package notation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/David-Botos/bookstore-ingress/pkg/model"
)

// ErrMalformed is returned when the repaired text is still not a JSON array of objects
var ErrMalformed = errors.New("malformed notation")

var (
	arrowSeparator = []byte("=>")
	symbolKey      = regexp.MustCompile(`:([\p{L}\p{N}_]+)`)
)

// Repair rewrites the hash-rocket notation into JSON.
// `=>` becomes `: ` and a `:word` symbol becomes the quoted string "word".
func Repair(raw []byte) []byte {
	repaired := bytes.ReplaceAll(raw, arrowSeparator, []byte(": "))
	return symbolKey.ReplaceAll(repaired, []byte(`"$1"`))
}

// Parse repairs raw and decodes it as an array of records.
// Numbers are kept as json.Number so ids keep their source text.
func Parse(raw []byte) ([]model.RawRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(Repair(raw)))
	dec.UseNumber()

	var records []model.RawRecord
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("%w at offset %d: %v", ErrMalformed, dec.InputOffset(), err)
	}

	// Anything but whitespace after the array is a malformed document
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data at offset %d", ErrMalformed, dec.InputOffset())
	}

	for i, rec := range records {
		if rec == nil {
			return nil, fmt.Errorf("%w: record %d is null", ErrMalformed, i)
		}
	}

	return records, nil
}

// ParseFile reads and parses a whole notation file
func ParseFile(path string) ([]model.RawRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read notation file %s: %w", path, err)
	}
	return Parse(raw)
}
