// pkg/source/source.go
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"github.com/David-Botos/bookstore-ingress/pkg/model"
)

// ReadUsers decodes the users CSV. Columns beyond the user fields are ignored.
func ReadUsers(r io.Reader) ([]model.RawUser, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read users header: %w", err)
	}

	var users []model.RawUser
	for {
		var u model.RawUser
		err := dec.Decode(&u)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode user row %d: %w", len(users)+1, err)
		}
		users = append(users, u)
	}
	return users, nil
}

// ReadBooks decodes a YAML sequence of book mappings.
// Keys are returned as written, including any leading ':' marker.
func ReadBooks(r io.Reader) ([]model.RawRecord, error) {
	var docs []map[string]interface{}
	if err := yaml.NewDecoder(r).Decode(&docs); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode books: %w", err)
	}

	books := make([]model.RawRecord, 0, len(docs))
	for _, doc := range docs {
		books = append(books, model.RawRecord(doc))
	}
	return books, nil
}

// ReadOrders reads every row of a flat parquet file into records keyed by column name.
// Null cells are stored as nil.
func ReadOrders(r io.ReaderAt, size int64) ([]model.RawRecord, error) {
	f, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open orders parquet: %w", err)
	}

	paths := f.Schema().Columns()
	names := make([]string, len(paths))
	for i, path := range paths {
		names[i] = strings.Join(path, ".")
	}

	orders := make([]model.RawRecord, 0, f.NumRows())
	buf := make([]parquet.Row, 128)

	for _, rg := range f.RowGroups() {
		rows := rg.Rows()
		for {
			n, err := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				rec := make(model.RawRecord, len(names))
				for _, v := range row {
					rec[names[v.Column()]] = parquetValue(v)
				}
				orders = append(orders, rec)
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to read orders rows: %w", err)
			}
		}
		if err := rows.Close(); err != nil {
			return nil, fmt.Errorf("failed to close row group: %w", err)
		}
	}

	return orders, nil
}

func parquetValue(v parquet.Value) interface{} {
	if v.IsNull() {
		return nil
	}
	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		return int64(v.Int32())
	case parquet.Int64:
		return v.Int64()
	case parquet.Float:
		return float64(v.Float())
	case parquet.Double:
		return v.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return v.String()
	}
}

// ReadUsersFile opens path and calls ReadUsers
func ReadUsersFile(path string) ([]model.RawUser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open users file: %w", err)
	}
	defer f.Close()
	return ReadUsers(f)
}

// ReadBooksFile opens path and calls ReadBooks
func ReadBooksFile(path string) ([]model.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open books file: %w", err)
	}
	defer f.Close()
	return ReadBooks(f)
}

// ReadOrdersFile opens path and calls ReadOrders
func ReadOrdersFile(path string) ([]model.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open orders file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat orders file: %w", err)
	}
	return ReadOrders(f, info.Size())
}
