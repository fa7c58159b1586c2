package models

import "time"

type LoanStatus string

const (
	LoanBorrowed LoanStatus = "BORROWED"
	LoanReturned LoanStatus = "RETURNED"
)

// LoanModel records one user holding one physical copy of a book.
// At most one BORROWED loan may exist per (user, book) pair; the partial
// unique index enforces it even if a concurrent request slips past the
// service checks.
type LoanModel struct {
	Id           int        `json:"id" gorm:"primaryKey;autoIncrement"`
	UserId       int        `json:"userId" gorm:"column:user_id;not null;index;index:idx_loans_user_book_open,unique,where:status = 'BORROWED'"`
	User         *UserModel `json:"user,omitempty" gorm:"foreignKey:UserId;references:Id"`
	BookId       int        `json:"bookId" gorm:"column:book_id;not null;index:idx_loans_book_status;index:idx_loans_user_book_open,unique,where:status = 'BORROWED'"`
	Book         *BookModel `json:"book,omitempty" gorm:"foreignKey:BookId;references:Id"`
	Status       LoanStatus `json:"status" gorm:"type:varchar(20);not null;default:'BORROWED';index:idx_loans_book_status"`
	BorrowedAt   time.Time  `json:"borrowedAt" gorm:"column:borrowed_at;not null"`
	DueAt        time.Time  `json:"dueAt" gorm:"column:due_at;not null;index"`
	ReturnedAt   *time.Time `json:"returnedAt" gorm:"column:returned_at"`
	RenewedCount int        `json:"renewedCount" gorm:"column:renewed_count;not null;default:0"`
	FineCreated  bool       `json:"fineCreated" gorm:"column:fine_created;not null;default:false"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
