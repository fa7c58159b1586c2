package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/BiblioDesk/BiblioDesk-Backend/src/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB opens an in-memory sqlite database with the full schema.
// The connection pool is pinned to one connection so the in-memory
// database survives for the whole test.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.UserModel{},
		&models.BookModel{},
		&models.LoanModel{},
		&models.ReservationModel{},
		&models.FineModel{},
	))

	return db
}

var testUserSeq int

func createTestUser(t *testing.T, db *gorm.DB) *models.UserModel {
	t.Helper()

	testUserSeq++
	user := &models.UserModel{
		FirstName:      "Jan",
		LastName:       "Kowalski",
		AddressNumber:  "12",
		AddressStreet:  "Marszalkowska",
		AddressCity:    "Warsaw",
		AddressCountry: "Poland",
		AddressEmail:   fmt.Sprintf("user%d@example.com", testUserSeq),
		PhoneNumber:    fmt.Sprintf("%09d", testUserSeq),
		Role:           models.RoleMember,
		Password:       "hashed",
		IsActive:       true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

var testBookSeq int

func createTestBook(t *testing.T, db *gorm.DB, quantity int) *models.BookModel {
	t.Helper()

	testBookSeq++
	book := &models.BookModel{
		Isbn:     fmt.Sprintf("978-83-0000-%03d-0", testBookSeq),
		Title:    "Lalka",
		Author:   "Boleslaw Prus",
		Quantity: quantity,
	}
	require.NoError(t, db.Create(book).Error)
	return book
}

func createTestLoan(t *testing.T, db *gorm.DB, userID, bookID int, dueAt time.Time) *models.LoanModel {
	t.Helper()

	loan := &models.LoanModel{
		UserId:     userID,
		BookId:     bookID,
		Status:     models.LoanBorrowed,
		BorrowedAt: dueAt.AddDate(0, 0, -14),
		DueAt:      dueAt,
	}
	require.NoError(t, db.Create(loan).Error)
	return loan
}

func createTestReservation(t *testing.T, db *gorm.DB, userID, bookID int, status models.ReservationStatus, reservedAt time.Time) *models.ReservationModel {
	t.Helper()

	reservation := &models.ReservationModel{
		UserId:     userID,
		BookId:     bookID,
		Status:     status,
		ReservedAt: reservedAt,
	}
	if status == models.ReservationExpectancy {
		startedAt := reservedAt
		reservation.ExpectancyStartedAt = &startedAt
	}
	require.NoError(t, db.Create(reservation).Error)
	return reservation
}

func reloadReservation(t *testing.T, db *gorm.DB, id int) *models.ReservationModel {
	t.Helper()

	var reservation models.ReservationModel
	require.NoError(t, db.First(&reservation, id).Error)
	return &reservation
}

func reloadLoan(t *testing.T, db *gorm.DB, id int) *models.LoanModel {
	t.Helper()

	var loan models.LoanModel
	require.NoError(t, db.First(&loan, id).Error)
	return &loan
}

func reloadBook(t *testing.T, db *gorm.DB, id int) *models.BookModel {
	t.Helper()

	var book models.BookModel
	require.NoError(t, db.First(&book, id).Error)
	return &book
}
