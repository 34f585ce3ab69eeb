package transfer

import (
	"github.com/David-Botos/bookstore-ingress/pkg/cleaner"
	"github.com/David-Botos/bookstore-ingress/pkg/model"
)

// UsersMetadata describes the cleaned users table
var UsersMetadata = &model.TableMetadata{
	Table: cleaner.UsersTable,
	Columns: []model.Column{
		{Name: "id", Kind: model.KindText},
		{Name: "name", Kind: model.KindText},
		{Name: "address", Kind: model.KindText},
		{Name: "phone", Kind: model.KindText},
		{Name: "email", Kind: model.KindText},
	},
}

// BooksMetadata describes the cleaned books table
var BooksMetadata = &model.TableMetadata{
	Table: cleaner.BooksTable,
	Columns: []model.Column{
		{Name: "id", Kind: model.KindText},
		{Name: "title", Kind: model.KindText},
		{Name: "author", Kind: model.KindText},
		{Name: "genre", Kind: model.KindText},
		{Name: "publisher", Kind: model.KindText},
		{Name: "year", Kind: model.KindInteger, Nullable: true},
		{Name: "price", Kind: model.KindText},
	},
}

// OrdersMetadata describes the cleaned orders table
var OrdersMetadata = &model.TableMetadata{
	Table: cleaner.OrdersTable,
	Columns: []model.Column{
		{Name: "id", Kind: model.KindText},
		{Name: "user_id", Kind: model.KindText},
		{Name: "book_id", Kind: model.KindText},
		{Name: "quantity", Kind: model.KindInteger, Nullable: true},
		{Name: "unit_price", Kind: model.KindFloat, Nullable: true},
		{Name: "timestamp", Kind: model.KindTimestamp, Nullable: true},
		{Name: "date_only", Kind: model.KindText, Nullable: true},
		{Name: "paid_price", Kind: model.KindFloat, Nullable: true},
	},
}

// UsersJob builds the write job for cleaned users
func UsersJob(users []model.User) TableJob {
	rows := make([][]interface{}, len(users))
	for i, u := range users {
		rows[i] = []interface{}{u.ID, u.Name, u.Address, u.Phone, u.Email}
	}
	return NewTableJob(UsersMetadata, rows)
}

// BooksJob builds the write job for cleaned books
func BooksJob(books []model.Book) TableJob {
	rows := make([][]interface{}, len(books))
	for i, b := range books {
		rows[i] = []interface{}{b.ID, b.Title, b.Author, b.Genre, b.Publisher, b.Year, b.Price}
	}
	return NewTableJob(BooksMetadata, rows)
}

// OrdersJob builds the write job for cleaned orders
func OrdersJob(orders []model.Order) TableJob {
	rows := make([][]interface{}, len(orders))
	for i, o := range orders {
		rows[i] = []interface{}{
			o.ID, o.UserID, o.BookID,
			o.Quantity, o.UnitPrice, o.Timestamp, o.DateOnly, o.PaidPrice,
		}
	}
	return NewTableJob(OrdersMetadata, rows)
}
