package services

import (
	"testing"
	"time"

	"github.com/BiblioDesk/BiblioDesk-Backend/src/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLoan(t *testing.T) {
	db := openTestDB(t)
	service := NewLoanService(db)

	user := createTestUser(t, db)
	book := createTestBook(t, db, 2)

	loan, err := service.CreateLoan(user.Id, book.Isbn)
	require.NoError(t, err)

	assert.Equal(t, models.LoanBorrowed, loan.Status)
	assert.Equal(t, user.Id, loan.UserId)
	assert.Equal(t, book.Id, loan.BookId)
	assert.Equal(t, 0, loan.RenewedCount)
	assert.Nil(t, loan.ReturnedAt)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 14), loan.DueAt, time.Minute)
}

func TestCreateLoanUnknownReferences(t *testing.T) {
	db := openTestDB(t)
	service := NewLoanService(db)

	user := createTestUser(t, db)
	book := createTestBook(t, db, 1)

	_, err := service.CreateLoan(user.Id+999, book.Isbn)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = service.CreateLoan(user.Id, "978-00-0000-000-0")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateLoanRejectsInactiveUser(t *testing.T) {
	db := openTestDB(t)
	service := NewLoanService(db)

	user := createTestUser(t, db)
	book := createTestBook(t, db, 1)
	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	_, err := service.CreateLoan(user.Id, book.Isbn)
	assert.ErrorIs(t, err, ErrIneligibleHolder)
}

func TestCreateLoanWhenNoCopyIsFree(t *testing.T) {
	db := openTestDB(t)
	service := NewLoanService(db)

	holder := createTestUser(t, db)
	user := createTestUser(t, db)
	book := createTestBook(t, db, 1)
	createTestLoan(t, db, holder.Id, book.Id, time.Now().AddDate(0, 0, 14))

	_, err := service.CreateLoan(user.Id, book.Isbn)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestCreateLoanCountsReservedCopiesAsTaken(t *testing.T) {
	db := openTestDB(t)
	service := NewLoanService(db)

	reserver := createTestUser(t, db)
	user := createTestUser(t, db)
	book := createTestBook(t, db, 1)
	reservation := createTestReservation(t, db, reserver.Id, book.Id, models.ReservationActive, time.Now())

	_, err := service.CreateLoan(user.Id, book.Isbn)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	// The failed attempt rolled back, leaving the queue untouched.
	assert.Equal(t, models.ReservationActive, reloadReservation(t, db, reservation.Id).Status)
}

func TestCreateLoanEnforcesEngagementLimit(t *testing.T) {
	db := openTestDB(t)
	service := NewLoanService(db)

	user := createTestUser(t, db)
	other := createTestUser(t, db)
	first := createTestBook(t, db, 1)
	second := createTestBook(t, db, 1)
	third := createTestBook(t, db, 1)

	createTestLoan(t, db, user.Id, first.Id, time.Now().AddDate(0, 0, 14))
	createTestLoan(t, db, other.Id, second.Id, time.Now().AddDate(0, 0, 14))
	createTestReservation(t, db, user.Id, second.Id, models.ReservationActive, time.Now())

	_, err := service.CreateLoan(user.Id, third.Isbn)
	assert.ErrorIs(t, err, ErrEngagementLimitExceeded)
}

func TestCreateLoanRejectsDuplicateOpenLoan(t *testing.T) {
	db := openTestDB(t)
	service := NewLoanService(db)

	user := createTestUser(t, db)
	book := createTestBook(t, db, 3)

	_, err := service.CreateLoan(user.Id, book.Isbn)
	require.NoError(t, err)

	_, err = service.CreateLoan(user.Id, book.Isbn)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestReturnLoanOnTime(t *testing.T) {
	db := openTestDB(t)
	service := NewLoanService(db)

	user := createTestUser(t, db)
	book := createTestBook(t, db, 1)
	loan := createTestLoan(t, db, user.Id, book.Id, time.Now().AddDate(0, 0, 7))

	returned, err := service.ReturnLoan(loan.Id, false, false)
	require.NoError(t, err)

	assert.Equal(t, models.LoanReturned, returned.Status)
	require.NotNil(t, returned.ReturnedAt)
	assert.False(t, returned.FineCreated)

	var fineCount int64
	require.NoError(t, db.Model(&models.FineModel{}).Count(&fineCount).Error)
	assert.Zero(t, fineCount)
}

func TestReturnLoanOverdueCreatesFine(t *testing.T) {
	db := openTestDB(t)
	service := NewLoanService(db)

	user := createTestUser(t, db)
	book := createTestBook(t, db, 1)
	loan := createTestLoan(t, db, user.Id, book.Id, time.Now().AddDate(0, 0, -3).Add(time.Hour))

	returned, err := service.ReturnLoan(loan.Id, false, false)
	require.NoError(t, err)
	assert.True(t, returned.FineCreated)

	var fine models.FineModel
	require.NoError(t, db.Where("loan_id = ?", loan.Id).First(&fine).Error)
	assert.Equal(t, models.FineOpen, fine.Status)
	assert.Equal(t, models.FineOverdue, fine.Reason)
	assert.Equal(t, 6, fine.Amount)
	assert.Equal(t, "PLN", fine.Currency)
	assert.Equal(t, user.Id, fine.UserId)
}

func TestReturnLoanLostShrinksStock(t *testing.T) {
	db := openTestDB(t)
	service := NewLoanService(db)

	user := createTestUser(t, db)
	book := createTestBook(t, db, 2)
	loan := createTestLoan(t, db, user.Id, book.Id, time.Now().AddDate(0, 0, 7))

	returned, err := service.ReturnLoan(loan.Id, true, false)
	require.NoError(t, err)
	assert.True(t, returned.FineCreated)

	var fine models.FineModel
	require.NoError(t, db.Where("loan_id = ?", loan.Id).First(&fine).Error)
	assert.Equal(t, models.FineLost, fine.Reason)
	assert.Equal(t, 120, fine.Amount)

	reloaded := reloadBook(t, db, book.Id)
	assert.Equal(t, 1, reloaded.LostCount)
	assert.Equal(t, 0, reloaded.DamagedCount)
	assert.Equal(t, 1, reloaded.PhysicalCopies())
}

func TestReturnLoanDamagedShrinksStock(t *testing.T) {
	db := openTestDB(t)
	service := NewLoanService(db)

	user := createTestUser(t, db)
	book := createTestBook(t, db, 2)
	loan := createTestLoan(t, db, user.Id, book.Id, time.Now().AddDate(0, 0, 7))

	returned, err := service.ReturnLoan(loan.Id, false, true)
	require.NoError(t, err)
	assert.True(t, returned.FineCreated)

	var fine models.FineModel
	require.NoError(t, db.Where("loan_id = ?", loan.Id).First(&fine).Error)
	assert.Equal(t, models.FineDamaged, fine.Reason)
	assert.Equal(t, 60, fine.Amount)

	reloaded := reloadBook(t, db, book.Id)
	assert.Equal(t, 1, reloaded.DamagedCount)
}

func TestReturnLoanTwice(t *testing.T) {
	db := openTestDB(t)
	service := NewLoanService(db)

	user := createTestUser(t, db)
	book := createTestBook(t, db, 1)
	loan := createTestLoan(t, db, user.Id, book.Id, time.Now().AddDate(0, 0, 7))

	_, err := service.ReturnLoan(loan.Id, false, false)
	require.NoError(t, err)

	_, err = service.ReturnLoan(loan.Id, false, false)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestReturnLoanPromotesNextReservation(t *testing.T) {
	db := openTestDB(t)
	service := NewLoanService(db)

	holder := createTestUser(t, db)
	waiting := createTestUser(t, db)
	book := createTestBook(t, db, 1)
	loan := createTestLoan(t, db, holder.Id, book.Id, time.Now().AddDate(0, 0, 7))
	reservation := createTestReservation(t, db, waiting.Id, book.Id, models.ReservationActive, time.Now())

	_, err := service.ReturnLoan(loan.Id, false, false)
	require.NoError(t, err)

	promoted := reloadReservation(t, db, reservation.Id)
	assert.Equal(t, models.ReservationExpectancy, promoted.Status)
	require.NotNil(t, promoted.ExpectancyStartedAt)
}

func TestRenewLoan(t *testing.T) {
	db := openTestDB(t)
	service := NewLoanService(db)

	user := createTestUser(t, db)
	book := createTestBook(t, db, 1)
	dueAt := time.Now().AddDate(0, 0, 7)
	loan := createTestLoan(t, db, user.Id, book.Id, dueAt)

	renewed, err := service.RenewLoan(loan.Id, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, renewed.RenewedCount)
	assert.WithinDuration(t, dueAt.AddDate(0, 0, 7), renewed.DueAt, time.Second)

	renewed, err = service.RenewLoan(loan.Id, 14)
	require.NoError(t, err)
	assert.Equal(t, 2, renewed.RenewedCount)

	_, err = service.RenewLoan(loan.Id, 7)
	assert.ErrorIs(t, err, ErrConflict, "renewal cap reached")
}

func TestRenewLoanValidation(t *testing.T) {
	db := openTestDB(t)
	service := NewLoanService(db)

	user := createTestUser(t, db)
	book := createTestBook(t, db, 1)
	loan := createTestLoan(t, db, user.Id, book.Id, time.Now().AddDate(0, 0, 7))

	_, err := service.RenewLoan(loan.Id, 10)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = service.RenewLoan(loan.Id+999, 7)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = service.ReturnLoan(loan.Id, false, false)
	require.NoError(t, err)

	_, err = service.RenewLoan(loan.Id, 7)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestGetUserLoans(t *testing.T) {
	db := openTestDB(t)
	service := NewLoanService(db)

	user := createTestUser(t, db)
	other := createTestUser(t, db)
	first := createTestBook(t, db, 1)
	second := createTestBook(t, db, 1)

	older := createTestLoan(t, db, user.Id, first.Id, time.Now().AddDate(0, 0, -10))
	newer := createTestLoan(t, db, user.Id, second.Id, time.Now().AddDate(0, 0, 14))
	createTestLoan(t, db, other.Id, second.Id, time.Now().AddDate(0, 0, 14))

	loans, err := service.GetUserLoans(user.Id)
	require.NoError(t, err)
	require.Len(t, loans, 2)

	assert.Equal(t, newer.Id, loans[0].ID)
	assert.Equal(t, older.Id, loans[1].ID)
	assert.Equal(t, second.Isbn, loans[0].Isbn)
}
