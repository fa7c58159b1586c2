package services

import (
	"github.com/BiblioDesk/BiblioDesk-Backend/src/config"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/models"
	"gorm.io/gorm"
)

// Availability is always derived from authoritative counts inside the
// current transaction, never cached: a stored "copies free" counter would
// drift on any missed event.

var liveReservationStatuses = []models.ReservationStatus{
	models.ReservationActive,
	models.ReservationExpectancy,
}

func countOpenLoansForBook(tx *gorm.DB, bookID int) (int64, error) {
	var n int64
	err := tx.Model(&models.LoanModel{}).
		Where("book_id = ? AND status = ?", bookID, models.LoanBorrowed).
		Count(&n).Error
	return n, err
}

func countLiveReservationsForBook(tx *gorm.DB, bookID int) (int64, error) {
	var n int64
	err := tx.Model(&models.ReservationModel{}).
		Where("book_id = ? AND status IN ?", bookID, liveReservationStatuses).
		Count(&n).Error
	return n, err
}

func countExpectancyForBook(tx *gorm.DB, bookID int) (int64, error) {
	var n int64
	err := tx.Model(&models.ReservationModel{}).
		Where("book_id = ? AND status = ?", bookID, models.ReservationExpectancy).
		Count(&n).Error
	return n, err
}

// FreeCopies is the inventory ledger: copies free right now, given the
// recorded counts and the currently open loans and live reservations.
func FreeCopies(book *models.BookModel, openLoans, liveReservations int) int {
	return book.PhysicalCopies() - openLoans - liveReservations
}

// freeCopiesForBook recomputes FreeCopies from the store, counting both
// open loans and ACTIVE/EXPECTANCY reservations against the book.
func freeCopiesForBook(tx *gorm.DB, book *models.BookModel) (int, error) {
	loans, err := countOpenLoansForBook(tx, book.Id)
	if err != nil {
		return 0, err
	}
	reservations, err := countLiveReservationsForBook(tx, book.Id)
	if err != nil {
		return 0, err
	}
	return FreeCopies(book, int(loans), int(reservations)), nil
}

// countActiveEngagements returns the user's open loans plus live
// reservations.
func countActiveEngagements(tx *gorm.DB, userID int) (int64, error) {
	var loans int64
	if err := tx.Model(&models.LoanModel{}).
		Where("user_id = ? AND status = ?", userID, models.LoanBorrowed).
		Count(&loans).Error; err != nil {
		return 0, err
	}

	var reservations int64
	if err := tx.Model(&models.ReservationModel{}).
		Where("user_id = ? AND status IN ?", userID, liveReservationStatuses).
		Count(&reservations).Error; err != nil {
		return 0, err
	}

	return loans + reservations, nil
}

// checkEngagementLimit fails with ErrEngagementLimitExceeded when the user
// is already at the cap. Runs inside the caller's transaction so that two
// simultaneous requests cannot both pass.
func checkEngagementLimit(tx *gorm.DB, userID int) error {
	engagements, err := countActiveEngagements(tx, userID)
	if err != nil {
		return err
	}
	if engagements >= config.MaxActiveEngagements {
		return ErrEngagementLimitExceeded
	}
	return nil
}

func hasOpenFines(tx *gorm.DB, userID int) (bool, error) {
	var n int64
	err := tx.Model(&models.FineModel{}).
		Where("user_id = ? AND status = ?", userID, models.FineOpen).
		Count(&n).Error
	return n > 0, err
}
