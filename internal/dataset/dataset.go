// internal/dataset/dataset.go
// Package dataset supplies benchmark question records to the evaluation
// loop. Acquisition and conversion of upstream corpora happen elsewhere;
// this package only iterates already-normalized record files.
package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Record is one normalized benchmark question. Which fields are populated
// depends on the suite: math problems carry only a question, completion
// suites a context plus options, exam suites lettered options.
type Record struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Context  string   `json:"context,omitempty"`
	Options  []string `json:"options,omitempty"`
	Truth    string   `json:"truth"`
}

// Dataset is a forward-only iterator over question records. Next returns
// io.EOF once the dataset is exhausted; exhaustion is normal termination,
// not a failure.
type Dataset interface {
	Next() (Record, error)
	Len() int
}

type sliceDataset struct {
	records []Record
	pos     int
}

// FromRecords wraps an in-memory record slice as a Dataset.
func FromRecords(records []Record) Dataset {
	return &sliceDataset{records: records}
}

func (d *sliceDataset) Next() (Record, error) {
	if d.pos >= len(d.records) {
		return Record{}, io.EOF
	}
	rec := d.records[d.pos]
	d.pos++
	return rec, nil
}

func (d *sliceDataset) Len() int {
	return len(d.records)
}

// LoadFile reads a JSON array of records from path, validating it against
// the suite's record schema first. Any read, validation, or decode failure
// is fatal for the run: a benchmark must not start against a dataset it
// cannot trust.
func LoadFile(path, schemaJSON string) (Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}

	if strings.TrimSpace(schemaJSON) != "" {
		result, err := gojsonschema.Validate(
			gojsonschema.NewStringLoader(schemaJSON),
			gojsonschema.NewBytesLoader(raw),
		)
		if err != nil {
			return nil, fmt.Errorf("validate dataset %s: %w", path, err)
		}
		if !result.Valid() {
			details := make([]string, 0, len(result.Errors()))
			for _, desc := range result.Errors() {
				details = append(details, desc.String())
			}
			return nil, fmt.Errorf("dataset %s failed schema validation: %s", path, strings.Join(details, "; "))
		}
	}

	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset %s contains no records", path)
	}

	for i := range records {
		if records[i].ID == 0 {
			records[i].ID = i + 1
		}
	}
	return FromRecords(records), nil
}

// Limit caps a dataset at the first n records. A non-positive n leaves the
// dataset unchanged.
func Limit(ds Dataset, n int) Dataset {
	if n <= 0 {
		return ds
	}
	return &limited{inner: ds, cap: n, remaining: n}
}

type limited struct {
	inner     Dataset
	cap       int
	remaining int
}

func (l *limited) Next() (Record, error) {
	if l.remaining <= 0 {
		return Record{}, io.EOF
	}
	rec, err := l.inner.Next()
	if err != nil {
		return Record{}, err
	}
	l.remaining--
	return rec, nil
}

func (l *limited) Len() int {
	if inner := l.inner.Len(); inner < l.cap {
		return inner
	}
	return l.cap
}
