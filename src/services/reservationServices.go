package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/BiblioDesk/BiblioDesk-Backend/src/config"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/dtos"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/models"
	"gorm.io/gorm"
)

type ReservationService struct {
	db *gorm.DB
}

// NewReservationService creates a new instance of ReservationService
func NewReservationService(db *gorm.DB) *ReservationService {
	return &ReservationService{db: db}
}

// normalizeBookReservations reconciles the reservation queue of one book:
//  1. expire EXPECTANCY reservations whose pickup window has passed,
//  2. recompute how many copies are free counting loans and already
//     promoted EXPECTANCY holds only,
//  3. promote that many of the oldest ACTIVE reservations (FIFO by
//     reservedAt, insertion order on ties) to EXPECTANCY.
//
// The routine recomputes everything from current counts, so it is
// idempotent and safe to run redundantly. It runs at the top of every
// mutating transaction touching the book and from the periodic sweep.
func normalizeBookReservations(tx *gorm.DB, bookID int, now time.Time) error {
	expiryLimit := now.Add(-config.ExpectancyExpiry)

	if err := tx.Model(&models.ReservationModel{}).
		Where("book_id = ? AND status = ? AND expectancy_started_at <= ?",
			bookID, models.ReservationExpectancy, expiryLimit).
		Update("status", models.ReservationExpired).Error; err != nil {
		return err
	}

	var book models.BookModel
	if err := tx.First(&book, bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: book %d", ErrNotFound, bookID)
		}
		return err
	}

	openLoans, err := countOpenLoansForBook(tx, bookID)
	if err != nil {
		return err
	}
	expectancyCount, err := countExpectancyForBook(tx, bookID)
	if err != nil {
		return err
	}

	slots := FreeCopies(&book, int(openLoans), 0) - int(expectancyCount)
	if slots <= 0 {
		return nil
	}

	var toPromote []models.ReservationModel
	if err := tx.
		Where("book_id = ? AND status = ?", bookID, models.ReservationActive).
		Order("reserved_at ASC, id ASC").
		Limit(slots).
		Find(&toPromote).Error; err != nil {
		return err
	}

	for i := range toPromote {
		promotedAt := now
		toPromote[i].Status = models.ReservationExpectancy
		toPromote[i].ExpectancyStartedAt = &promotedAt
		if err := tx.Save(&toPromote[i]).Error; err != nil {
			return err
		}
	}

	return nil
}

// expireUserReservations expires every EXPECTANCY reservation of one user
// whose pickup window has passed, regardless of book.
func expireUserReservations(tx *gorm.DB, userID int, now time.Time) error {
	expiryLimit := now.Add(-config.ExpectancyExpiry)

	return tx.Model(&models.ReservationModel{}).
		Where("user_id = ? AND status = ? AND expectancy_started_at <= ?",
			userID, models.ReservationExpectancy, expiryLimit).
		Update("status", models.ReservationExpired).Error
}

// CreateReservation queues a user for a book that currently has no free
// copies. Reservations exist to wait for scarce items, so the book must be
// unavailable at creation time.
func (s *ReservationService) CreateReservation(userID, bookID int) (*models.ReservationModel, error) {
	var reservation models.ReservationModel

	err := runSerializable(s.db, func(tx *gorm.DB) error {
		now := time.Now()

		var user models.UserModel
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user %d", ErrNotFound, userID)
			}
			return err
		}
		if !user.IsActive {
			return fmt.Errorf("%w: user is inactive", ErrIneligibleHolder)
		}

		var book models.BookModel
		if err := tx.First(&book, bookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: book %d", ErrNotFound, bookID)
			}
			return err
		}

		openFines, err := hasOpenFines(tx, userID)
		if err != nil {
			return err
		}
		if openFines {
			return fmt.Errorf("%w: user has unpaid fines", ErrIneligibleHolder)
		}

		if err := expireUserReservations(tx, userID, now); err != nil {
			return err
		}
		if err := normalizeBookReservations(tx, bookID, now); err != nil {
			return err
		}

		if err := checkEngagementLimit(tx, userID); err != nil {
			return err
		}

		free, err := freeCopiesForBook(tx, &book)
		if err != nil {
			return err
		}
		if free > 0 {
			return fmt.Errorf("%w: book is currently available", ErrConflict)
		}

		reservation = models.ReservationModel{
			UserId:     userID,
			BookId:     bookID,
			Status:     models.ReservationActive,
			ReservedAt: now,
		}
		if err := tx.Create(&reservation).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: reservation already exists", ErrConflict)
			}
			return err
		}

		return normalizeBookReservations(tx, bookID, now)
	})

	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// CancelReservation cancels a reservation that is not yet terminal and
// reconciles the book so the freed slot can promote the next in line.
func (s *ReservationService) CancelReservation(reservationID int) (*models.ReservationModel, error) {
	var reservation models.ReservationModel

	err := runSerializable(s.db, func(tx *gorm.DB) error {
		if err := tx.First(&reservation, reservationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: reservation %d", ErrNotFound, reservationID)
			}
			return err
		}

		if reservation.Status.IsTerminal() {
			return fmt.Errorf("%w: reservation cannot be cancelled in its current status", ErrConflict)
		}

		reservation.Status = models.ReservationCancelled
		if err := tx.Save(&reservation).Error; err != nil {
			return err
		}

		return normalizeBookReservations(tx, reservation.BookId, time.Now())
	})

	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// FulfillReservation confirms the pickup of a promoted reservation: it
// creates the loan and marks the reservation FULFILLED. The reservation
// must still be in EXPECTANCY after reconciliation, a copy must still be
// free net of the other EXPECTANCY holders, and the user must not already
// hold the same book.
func (s *ReservationService) FulfillReservation(reservationID int) (*models.ReservationModel, error) {
	var reservation models.ReservationModel

	err := runSerializable(s.db, func(tx *gorm.DB) error {
		now := time.Now()

		if err := tx.First(&reservation, reservationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: reservation %d", ErrNotFound, reservationID)
			}
			return err
		}

		var user models.UserModel
		if err := tx.First(&user, reservation.UserId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user %d", ErrNotFound, reservation.UserId)
			}
			return err
		}
		if !user.IsActive {
			return fmt.Errorf("%w: user is inactive", ErrIneligibleHolder)
		}

		var book models.BookModel
		if err := tx.First(&book, reservation.BookId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: book %d", ErrNotFound, reservation.BookId)
			}
			return err
		}

		if err := normalizeBookReservations(tx, book.Id, now); err != nil {
			return err
		}

		// Re-read: normalization may just have expired this reservation.
		if err := tx.First(&reservation, reservationID).Error; err != nil {
			return err
		}
		if reservation.Status != models.ReservationExpectancy {
			return fmt.Errorf("%w: reservation is not ready for pickup", ErrConflict)
		}

		openLoans, err := countOpenLoansForBook(tx, book.Id)
		if err != nil {
			return err
		}
		expectancyCount, err := countExpectancyForBook(tx, book.Id)
		if err != nil {
			return err
		}

		// A copy must remain after serving the other EXPECTANCY holders.
		free := FreeCopies(&book, int(openLoans), 0)
		if free <= int(expectancyCount)-1 {
			return fmt.Errorf("%w: book is no longer available", ErrCapacityExceeded)
		}

		var existing models.LoanModel
		err = tx.Where("user_id = ? AND book_id = ? AND status = ?",
			user.Id, book.Id, models.LoanBorrowed).First(&existing).Error
		if err == nil {
			return fmt.Errorf("%w: loan already exists", ErrConflict)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		loan := models.LoanModel{
			UserId:     user.Id,
			BookId:     book.Id,
			Status:     models.LoanBorrowed,
			BorrowedAt: now,
			DueAt:      now.AddDate(0, 0, config.LoanDurationDays),
		}
		if err := tx.Create(&loan).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: loan already exists", ErrConflict)
			}
			return err
		}

		fulfilledAt := now
		reservation.Status = models.ReservationFulfilled
		reservation.FulfilledAt = &fulfilledAt
		if err := tx.Save(&reservation).Error; err != nil {
			return err
		}

		return normalizeBookReservations(tx, book.Id, now)
	})

	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// GetUserReservations retrieves all reservations of one user, oldest
// first, with the derived pickup deadline for promoted ones.
func (s *ReservationService) GetUserReservations(userID int) ([]dtos.ReservationSummaryDTO, error) {
	var reservations []models.ReservationModel
	if err := s.db.
		Preload("Book").
		Where("user_id = ?", userID).
		Order("reserved_at ASC").
		Find(&reservations).Error; err != nil {
		return nil, err
	}

	result := make([]dtos.ReservationSummaryDTO, 0, len(reservations))
	for _, r := range reservations {
		row := dtos.ReservationSummaryDTO{
			ID:         r.Id,
			ReservedAt: r.ReservedAt,
			Status:     string(r.Status),
		}
		if r.Book != nil {
			row.Isbn = r.Book.Isbn
		}
		if r.Status == models.ReservationExpectancy && r.ExpectancyStartedAt != nil {
			expiry := r.ExpectancyStartedAt.Add(config.ExpectancyExpiry)
			row.ExpiryAt = &expiry
		}
		result = append(result, row)
	}
	return result, nil
}

// NormalizeAllBooks reconciles every book that has any live reservation,
// one transaction per book. The periodic sweep calls this so promotions
// and expirations happen even with no user traffic; overlapping runs are
// harmless because normalization is idempotent.
func (s *ReservationService) NormalizeAllBooks() error {
	var bookIDs []int
	if err := s.db.Model(&models.ReservationModel{}).
		Where("status IN ?", liveReservationStatuses).
		Distinct().
		Pluck("book_id", &bookIDs).Error; err != nil {
		return err
	}

	for _, bookID := range bookIDs {
		err := runSerializable(s.db, func(tx *gorm.DB) error {
			return normalizeBookReservations(tx, bookID, time.Now())
		})
		if err != nil {
			log.Printf("Failed to normalize reservations for book %d: %v\n", bookID, err)
		}
	}
	return nil
}
