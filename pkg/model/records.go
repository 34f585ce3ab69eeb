// pkg/model/records.go
package model

import (
	"database/sql"
	"strings"
)

// NoInfo replaces missing values in text columns
const NoInfo = "No Info"

// RawRecord is a decoded source document before cleaning
type RawRecord map[string]interface{}

// Fields of a notation-file record, in table order
var RawRecordFields = []string{"id", "title", "author", "genre", "publisher", "year", "price"}

// User is a cleaned row of the users dataset
type User struct {
	ID      string
	Name    string
	Address string
	Phone   string
	Email   string
}

// Key returns the structural identity of the user
func (u User) Key() UserKey {
	return UserKey{Name: u.Name, Address: u.Address, Phone: u.Phone, Email: u.Email}
}

// UserKey identifies a person by content rather than by surrogate id
type UserKey struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// Less orders keys field by field
func (k UserKey) Less(other UserKey) bool {
	a := []string{k.Name, k.Address, k.Phone, k.Email}
	b := []string{other.Name, other.Address, other.Phone, other.Email}
	for i := range a {
		if c := strings.Compare(a[i], b[i]); c != 0 {
			return c < 0
		}
	}
	return false
}

// Book is a cleaned row of the books dataset
type Book struct {
	ID        string
	Title     string
	Author    string
	Genre     string
	Publisher string
	Year      sql.NullInt64
	Price     string
}

// Authors returns the normalized author set of the book
func (b Book) Authors() AuthorSet {
	return NewAuthorSet(b.Author)
}

// Order is a cleaned row of the orders dataset.
// Invalid fields are stored as SQL NULL rather than raw text.
type Order struct {
	ID        string
	UserID    string
	BookID    string
	Quantity  sql.NullInt64
	UnitPrice sql.NullFloat64 // USD
	Timestamp sql.NullTime
	DateOnly  sql.NullString // YYYY-MM-DD
	PaidPrice sql.NullFloat64
}

// RawUser is one row of the users CSV before cleaning.
// Empty cells decode to "" and count as missing.
type RawUser struct {
	ID      string `csv:"id"`
	Name    string `csv:"name"`
	Address string `csv:"address"`
	Phone   string `csv:"phone"`
	Email   string `csv:"email"`
}
