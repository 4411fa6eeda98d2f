// internal/dataset/dataset_test.go
package dataset

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

const testSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["question", "truth"],
    "properties": {
      "id": {"type": "integer"},
      "question": {"type": "string"},
      "context": {"type": "string"},
      "options": {"type": "array", "items": {"type": "string"}},
      "truth": {"type": "string"}
    }
  }
}`

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := writeDataset(t, `[
  {"question": "2+2?", "truth": "4"},
  {"id": 7, "question": "capital of France?", "options": ["(A) Paris", "(B) Rome"], "truth": "A"}
]`)

	ds, err := LoadFile(path, testSchema)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if ds.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", ds.Len())
	}

	first, err := ds.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if first.ID != 1 {
		t.Fatalf("expected assigned id 1, got %d", first.ID)
	}

	second, err := ds.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if second.ID != 7 {
		t.Fatalf("expected preserved id 7, got %d", second.ID)
	}

	if _, err := ds.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF after exhaustion, got %v", err)
	}
}

func TestLoadFileSchemaViolation(t *testing.T) {
	t.Parallel()

	path := writeDataset(t, `[{"question": "missing truth field"}]`)
	if _, err := LoadFile(path, testSchema); err == nil {
		t.Fatal("expected schema validation error")
	}
}

func TestLoadFileMissing(t *testing.T) {
	t.Parallel()

	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.json"), testSchema); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFileEmptyArray(t *testing.T) {
	t.Parallel()

	path := writeDataset(t, `[]`)
	if _, err := LoadFile(path, testSchema); err == nil {
		t.Fatal("expected error for empty dataset")
	}
}

func TestLimit(t *testing.T) {
	t.Parallel()

	records := []Record{
		{ID: 1, Question: "a", Truth: "1"},
		{ID: 2, Question: "b", Truth: "2"},
		{ID: 3, Question: "c", Truth: "3"},
	}

	ds := Limit(FromRecords(records), 2)
	if ds.Len() != 2 {
		t.Fatalf("expected Len 2, got %d", ds.Len())
	}
	if _, err := ds.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if _, err := ds.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if _, err := ds.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF at limit, got %v", err)
	}

	// a limit beyond the dataset ends early without error
	short := Limit(FromRecords(records[:1]), 5)
	if short.Len() != 1 {
		t.Fatalf("expected Len 1, got %d", short.Len())
	}
	if _, err := short.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if _, err := short.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}
