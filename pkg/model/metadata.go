// pkg/model/metadata.go
package model

// ColumnKind is the logical type of a cleaned column
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindInteger
	KindFloat
	KindTimestamp
)

// String returns a lowercase name for the kind
func (k ColumnKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindTimestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

// TableMetadata contains the structure information for a cleaned table
type TableMetadata struct {
	Table       string   // Table name
	Columns     []Column // Column definitions, in insert order
	PrimaryKeys []string // List of primary key column names
}

// Column represents metadata about a table column
type Column struct {
	Name         string     // Column name
	Kind         ColumnKind // Logical type
	Nullable     bool       // Whether column allows NULL values
	IsPrimaryKey bool       // Whether column is part of primary key
}

// ColumnNames returns the column names in declaration order
func (tm *TableMetadata) ColumnNames() []string {
	names := make([]string, len(tm.Columns))
	for i, col := range tm.Columns {
		names[i] = col.Name
	}
	return names
}
