package notation

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const sample = `[
  {:id=>1, :title=>"Dune", :author=>"Frank Herbert", :genre=>"Science Fiction", :publisher=>"Chilton", :year=>1965, :price=>"$9.99"},
  {:id=>2, :title=>"Good Omens", :author=>"Terry Pratchett, Neil Gaiman", :genre=>"Fantasy", :publisher=>"Gollancz", :year=>null, :price=>"€12,50"},
  {:id=>2, :title=>"Duplicate", :author=>"Nobody", :genre=>"None", :publisher=>"None", :year=>2001, :price=>"1"}
]`

func TestRepair(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"symbol key", `{:id=>1}`, `{"id": 1}`},
		{"string value", `{:title=>"Dune"}`, `{"title": "Dune"}`},
		{"underscore key", `{:user_id=>7}`, `{"user_id": 7}`},
		{"already json", `{"id": 1}`, `{"id": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(Repair([]byte(tt.in))); got != tt.want {
				t.Errorf("Repair(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseKeepsRecordCount(t *testing.T) {
	records, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	first := records[0]
	if id, ok := first["id"].(json.Number); !ok || id.String() != "1" {
		t.Errorf("expected id json.Number 1, got %#v", first["id"])
	}
	if first["title"] != "Dune" {
		t.Errorf("unexpected title %#v", first["title"])
	}
	if records[1]["year"] != nil {
		t.Errorf("expected null year, got %#v", records[1]["year"])
	}
	if records[1]["author"] != "Terry Pratchett, Neil Gaiman" {
		t.Errorf("unexpected author %#v", records[1]["author"])
	}
}

func TestParseEmptyArray(t *testing.T) {
	records, err := Parse([]byte("[]"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestParseAllowsTrailingWhitespace(t *testing.T) {
	records, err := Parse([]byte("[{:id=>1}]\n\t \n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
}

func TestParseMalformed(t *testing.T) {
	inputs := []string{
		`[{:id=>1,}]`,
		`{:id=>1}`,
		`[{:id=>1}] [{:id=>2}]`,
		`[null]`,
		`[{:id=>1, :title=>"x"}]]`,
		`[{:id=>1}]}`,
	}

	for _, in := range inputs {
		_, err := Parse([]byte(in))
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("Parse(%q) error = %v, want ErrMalformed", in, err)
		}
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "task1_d.json")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	records, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
