package dtos

import "time"

// BookSummaryDTO represents a catalog row with its derived availability.
type BookSummaryDTO struct {
	ID             int     `json:"id"`
	Isbn           string  `json:"isbn"`
	Title          string  `json:"title"`
	Author         string  `json:"author"`
	Publisher      *string `json:"publisher,omitempty"`
	AvailableCount int     `json:"availableCount"`
	Status         string  `json:"status"`
}

type LoanSummaryDTO struct {
	ID         int        `json:"id"`
	Isbn       string     `json:"isbn"`
	BorrowedAt time.Time  `json:"borrowedAt"`
	DueAt      time.Time  `json:"dueAt"`
	ReturnedAt *time.Time `json:"returnedAt"`
	UserID     int        `json:"userId"`
}

type ReservationSummaryDTO struct {
	ID         int        `json:"id"`
	Isbn       string     `json:"isbn"`
	ReservedAt time.Time  `json:"reservedAt"`
	Status     string     `json:"status"`
	ExpiryAt   *time.Time `json:"expiryAt"`
}

type FineSummaryDTO struct {
	ID        int        `json:"id"`
	Isbn      string     `json:"isbn"`
	Status    string     `json:"status"`
	Reason    string     `json:"reason"`
	Amount    int        `json:"amount"`
	Currency  string     `json:"currency"`
	StartedAt time.Time  `json:"startedAt"`
	PaidAt    *time.Time `json:"paidAt"`
}

// MemberSummaryDTO is the light listing of active members.
type MemberSummaryDTO struct {
	ID           int    `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	AddressEmail string `json:"addressEmail"`
	PhoneNumber  string `json:"phoneNumber"`
}
