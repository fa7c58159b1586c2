package models

import "time"

type ReservationStatus string

const (
	ReservationActive     ReservationStatus = "ACTIVE"
	ReservationExpectancy ReservationStatus = "EXPECTANCY"
	ReservationFulfilled  ReservationStatus = "FULFILLED"
	ReservationCancelled  ReservationStatus = "CANCELLED"
	ReservationExpired    ReservationStatus = "EXPIRED"
)

// IsTerminal reports whether no further transition can happen.
func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationFulfilled || s == ReservationCancelled || s == ReservationExpired
}

// ReservationModel queues a user for a book that has no free copies.
// ACTIVE means waiting in the queue; EXPECTANCY means a copy has been set
// aside and the user has a fixed window to pick it up. Both states count
// against availability and against the user's engagement cap.
type ReservationModel struct {
	Id                  int               `json:"id" gorm:"primaryKey;autoIncrement"`
	UserId              int               `json:"userId" gorm:"column:user_id;not null;index;index:idx_reservations_user_book_live,unique,where:status = 'ACTIVE' OR status = 'EXPECTANCY'"`
	User                *UserModel        `json:"user,omitempty" gorm:"foreignKey:UserId;references:Id"`
	BookId              int               `json:"bookId" gorm:"column:book_id;not null;index:idx_reservations_book_status;index:idx_reservations_user_book_live,unique,where:status = 'ACTIVE' OR status = 'EXPECTANCY'"`
	Book                *BookModel        `json:"book,omitempty" gorm:"foreignKey:BookId;references:Id"`
	Status              ReservationStatus `json:"status" gorm:"type:varchar(20);not null;default:'ACTIVE';index:idx_reservations_book_status"`
	ReservedAt          time.Time         `json:"reservedAt" gorm:"column:reserved_at;not null;index"`
	ExpectancyStartedAt *time.Time        `json:"expectancyStartedAt" gorm:"column:expectancy_started_at"`
	FulfilledAt         *time.Time        `json:"fulfilledAt" gorm:"column:fulfilled_at"`
	CreatedAt           time.Time         `json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
}
