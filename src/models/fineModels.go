package models

import "time"

type FineStatus string

const (
	FineOpen   FineStatus = "OPEN"
	FinePaid   FineStatus = "PAID"
	FineWaived FineStatus = "WAIVED"
)

type FineReason string

const (
	FineOverdue FineReason = "OVERDUE"
	FineLost    FineReason = "LOST"
	FineDamaged FineReason = "DAMAGED"
)

// FineModel is created at most once per loan, at return time, when the
// accrued amount is positive. While OPEN with reason OVERDUE the stored
// amount is only a cache: it keeps growing with time and must be
// recomputed whenever it is read or closed.
type FineModel struct {
	Id               int        `json:"id" gorm:"primaryKey;autoIncrement"`
	UserId           int        `json:"userId" gorm:"column:user_id;not null;index"`
	User             *UserModel `json:"user,omitempty" gorm:"foreignKey:UserId;references:Id"`
	LoanId           int        `json:"loanId" gorm:"column:loan_id;not null;unique"`
	Loan             *LoanModel `json:"loan,omitempty" gorm:"foreignKey:LoanId;references:Id"`
	BookId           int        `json:"bookId" gorm:"column:book_id;not null;index"`
	Book             *BookModel `json:"book,omitempty" gorm:"foreignKey:BookId;references:Id"`
	Status           FineStatus `json:"status" gorm:"type:varchar(20);not null;default:'OPEN';index"`
	Amount           int        `json:"amount" gorm:"not null;default:0;check:amount >= 0"`
	Currency         string     `json:"currency" gorm:"type:varchar(10);not null;default:'PLN'"`
	Reason           FineReason `json:"reason" gorm:"type:varchar(20);not null;default:'OVERDUE'"`
	StartedAt        time.Time  `json:"startedAt" gorm:"column:started_at;not null"`
	LastCalculatedAt *time.Time `json:"lastCalculatedAt" gorm:"column:last_calculated_at"`
	PaidAt           *time.Time `json:"paidAt" gorm:"column:paid_at"`
	WaivedAt         *time.Time `json:"waivedAt" gorm:"column:waived_at"`
	WaivedById       *int       `json:"waivedById" gorm:"column:waived_by_id"`
	WaivedBy         *UserModel `json:"waivedBy,omitempty" gorm:"foreignKey:WaivedById;references:Id"`
	Notes            *string    `json:"notes" gorm:"type:text"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}
