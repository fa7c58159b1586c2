package services

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/BiblioDesk/BiblioDesk-Backend/src/config"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/dtos"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/models"
	"gorm.io/gorm"
)

type LoanService struct {
	db *gorm.DB
}

// NewLoanService creates a new instance of LoanService
func NewLoanService(db *gorm.DB) *LoanService {
	return &LoanService{db: db}
}

// CreateLoan lends a copy of the book identified by isbn to the user.
// The whole check-then-act sequence runs in one serializable transaction:
// the book's reservation queue is reconciled first, then availability and
// the engagement cap are validated against fresh counts, then the loan is
// written. Copies held by ACTIVE or EXPECTANCY reservations are not free
// for walk-in loans.
func (s *LoanService) CreateLoan(userID int, bookIsbn string) (*models.LoanModel, error) {
	var loan models.LoanModel

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

		if err := checkEngagementLimit(tx, userID); err != nil {
			return err
		}

		var book models.BookModel
		if err := tx.Where("isbn = ?", bookIsbn).First(&book).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: book with ISBN %s", ErrNotFound, bookIsbn)
			}
			return err
		}

		if err := normalizeBookReservations(tx, book.Id, now); err != nil {
			return err
		}

		free, err := freeCopiesForBook(tx, &book)
		if err != nil {
			return err
		}
		if free <= 0 {
			return ErrCapacityExceeded
		}

		loan = models.LoanModel{
			UserId:     userID,
			BookId:     book.Id,
			Status:     models.LoanBorrowed,
			BorrowedAt: now,
			DueAt:      now.AddDate(0, 0, config.LoanDurationDays),
		}
		if err := tx.Create(&loan).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: user already has an active loan for this book", ErrConflict)
			}
			return err
		}

		return nil
	})

	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// ReturnLoan closes an open loan. Lost or damaged copies shrink the
// book's usable stock; any positive accrual at this moment creates the
// loan's one fine, its reason fixed forever at creation. Returning frees
// a copy, so the queue is reconciled before committing.
func (s *LoanService) ReturnLoan(loanID int, lost, damaged bool) (*models.LoanModel, error) {
	var loan models.LoanModel

	err := runSerializable(s.db, func(tx *gorm.DB) error {
		now := time.Now()

		if err := tx.First(&loan, loanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: loan %d", ErrNotFound, loanID)
			}
			return err
		}

		if loan.Status == models.LoanReturned {
			return fmt.Errorf("%w: loan already returned", ErrConflict)
		}

		var book models.BookModel
		if err := tx.First(&book, loan.BookId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: book %d", ErrNotFound, loan.BookId)
			}
			return err
		}

		returnedAt := now
		loan.Status = models.LoanReturned
		loan.ReturnedAt = &returnedAt

		amount := CalculateFineAmount(&loan, lost, damaged, now)
		if amount > 0 {
			reason := models.FineOverdue
			if lost {
				reason = models.FineLost
			} else if damaged {
				reason = models.FineDamaged
			}

			fine := models.FineModel{
				UserId:    loan.UserId,
				LoanId:    loan.Id,
				BookId:    loan.BookId,
				Status:    models.FineOpen,
				Amount:    amount,
				Currency:  config.FineCurrency,
				Reason:    reason,
				StartedAt: now,
			}
			if err := tx.Create(&fine).Error; err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("%w: fine already exists for this loan", ErrConflict)
				}
				return err
			}
			loan.FineCreated = true
		}

		if err := tx.Save(&loan).Error; err != nil {
			return err
		}

		if lost {
			book.LostCount++
		} else if damaged {
			book.DamagedCount++
		}
		if lost || damaged {
			if err := tx.Save(&book).Error; err != nil {
				return err
			}
		}

		return normalizeBookReservations(tx, book.Id, now)
	})

	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// RenewLoan extends an open loan's due date by one of the allowed
// extension lengths, up to the renewal cap.
func (s *LoanService) RenewLoan(loanID, extendByDays int) (*models.LoanModel, error) {
	if !slices.Contains(config.AllowedLoanExtensionDays, extendByDays) {
		return nil, fmt.Errorf("%w: invalid extension period", ErrInvalidRequest)
	}

	var loan models.LoanModel

	err := runSerializable(s.db, func(tx *gorm.DB) error {
		if err := tx.First(&loan, loanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: loan %d", ErrNotFound, loanID)
			}
			return err
		}

		if loan.Status == models.LoanReturned {
			return fmt.Errorf("%w: loan already returned", ErrConflict)
		}
		if loan.RenewedCount >= config.MaxRenewals {
			return fmt.Errorf("%w: maximum number of renewals reached", ErrConflict)
		}

		loan.DueAt = loan.DueAt.AddDate(0, 0, extendByDays)
		loan.RenewedCount++

		return tx.Save(&loan).Error
	})

	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// GetUserLoans retrieves all loans of one user, most recent first.
func (s *LoanService) GetUserLoans(userID int) ([]dtos.LoanSummaryDTO, error) {
	var loans []models.LoanModel
	if err := s.db.
		Preload("Book").
		Where("user_id = ?", userID).
		Order("borrowed_at DESC").
		Find(&loans).Error; err != nil {
		return nil, err
	}

	result := make([]dtos.LoanSummaryDTO, 0, len(loans))
	for _, loan := range loans {
		row := dtos.LoanSummaryDTO{
			ID:         loan.Id,
			UserID:     loan.UserId,
			BorrowedAt: loan.BorrowedAt,
			DueAt:      loan.DueAt,
			ReturnedAt: loan.ReturnedAt,
		}
		if loan.Book != nil {
			row.Isbn = loan.Book.Isbn
		}
		result = append(result, row)
	}
	return result, nil
}
