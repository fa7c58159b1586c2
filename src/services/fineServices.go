package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/BiblioDesk/BiblioDesk-Backend/src/config"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/dtos"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FineService struct {
	db *gorm.DB
}

// NewFineService creates a new instance of FineService
func NewFineService(db *gorm.DB) *FineService {
	return &FineService{db: db}
}

// CalculateFineAmount computes what the loan owes at the given instant.
// Lost takes precedence over damaged; both are flat amounts where
// lateness is irrelevant. Overdue accrues per started day, capped.
func CalculateFineAmount(loan *models.LoanModel, lost, damaged bool, now time.Time) int {
	if lost {
		return config.LostBookFinePLN
	}
	if damaged {
		return config.DamagedBookFinePLN
	}

	if now.After(loan.DueAt) {
		daysOverdue := int(math.Ceil(now.Sub(loan.DueAt).Hours() / 24))
		return min(daysOverdue*config.OverduePerDayPLN, config.OverdueMaxPLN)
	}

	return 0
}

// normalizeFineAmount recomputes an overdue fine against its loan and
// stores the result. LOST and DAMAGED amounts are fixed at creation, but
// an OPEN overdue debt keeps growing until it is paid or waived, so the
// stored amount is only valid at lastCalculatedAt.
func normalizeFineAmount(tx *gorm.DB, fine *models.FineModel, now time.Time) error {
	loan := fine.Loan
	if loan == nil {
		loan = &models.LoanModel{}
		if err := tx.First(loan, fine.LoanId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: loan %d", ErrNotFound, fine.LoanId)
			}
			return err
		}
	}

	fine.Amount = CalculateFineAmount(loan,
		fine.Reason == models.FineLost,
		fine.Reason == models.FineDamaged,
		now)
	calculatedAt := now
	fine.LastCalculatedAt = &calculatedAt

	return tx.Omit(clause.Associations).Save(fine).Error
}

// GetUserFines retrieves all fines of one user. The stored amount of an
// OPEN fine is only a cache, so it is recomputed (and re-stored) before
// the rows are returned.
func (s *FineService) GetUserFines(userID int) ([]dtos.FineSummaryDTO, error) {
	var fines []models.FineModel

	err := runSerializable(s.db, func(tx *gorm.DB) error {
		if err := tx.
			Preload("Loan").
			Preload("Book").
			Where("user_id = ?", userID).
			Order("started_at DESC").
			Find(&fines).Error; err != nil {
			return err
		}

		now := time.Now()
		for i := range fines {
			if fines[i].Status != models.FineOpen {
				continue
			}
			if err := normalizeFineAmount(tx, &fines[i], now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := make([]dtos.FineSummaryDTO, 0, len(fines))
	for _, fine := range fines {
		row := dtos.FineSummaryDTO{
			ID:        fine.Id,
			Status:    string(fine.Status),
			Reason:    string(fine.Reason),
			Amount:    fine.Amount,
			Currency:  fine.Currency,
			StartedAt: fine.StartedAt,
			PaidAt:    fine.PaidAt,
		}
		if fine.Book != nil {
			row.Isbn = fine.Book.Isbn
		}
		result = append(result, row)
	}
	return result, nil
}

// CloseFine settles an open fine as PAID or WAIVED. The amount is
// recomputed first so an overdue debt is settled at its current value,
// not at whatever was cached when it was created.
func (s *FineService) CloseFine(fineID int, outcome models.FineStatus, closerID int) (*models.FineModel, error) {
	if outcome != models.FinePaid && outcome != models.FineWaived {
		return nil, fmt.Errorf("%w: invalid status transition", ErrInvalidRequest)
	}

	var fine models.FineModel

	err := runSerializable(s.db, func(tx *gorm.DB) error {
		now := time.Now()

		if err := tx.First(&fine, fineID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: fine %d", ErrNotFound, fineID)
			}
			return err
		}

		if fine.Status != models.FineOpen {
			return fmt.Errorf("%w: fine is already closed", ErrConflict)
		}

		if err := normalizeFineAmount(tx, &fine, now); err != nil {
			return err
		}

		fine.Status = outcome
		switch outcome {
		case models.FinePaid:
			paidAt := now
			fine.PaidAt = &paidAt
		case models.FineWaived:
			waivedAt := now
			fine.WaivedAt = &waivedAt
			fine.WaivedById = &closerID
		}

		return tx.Save(&fine).Error
	})

	if err != nil {
		return nil, err
	}
	return &fine, nil
}
