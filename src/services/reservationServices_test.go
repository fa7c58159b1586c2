package services

import (
	"testing"
	"time"

	"github.com/BiblioDesk/BiblioDesk-Backend/src/config"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReservationRequiresUnavailableBook(t *testing.T) {
	db := openTestDB(t)
	service := NewReservationService(db)

	user := createTestUser(t, db)
	book := createTestBook(t, db, 1)

	_, err := service.CreateReservation(user.Id, book.Id)
	assert.ErrorIs(t, err, ErrConflict, "a free copy should be borrowed, not reserved")
}

func TestCreateReservation(t *testing.T) {
	db := openTestDB(t)
	service := NewReservationService(db)

	holder := createTestUser(t, db)
	user := createTestUser(t, db)
	book := createTestBook(t, db, 1)
	createTestLoan(t, db, holder.Id, book.Id, time.Now().AddDate(0, 0, 14))

	reservation, err := service.CreateReservation(user.Id, book.Id)
	require.NoError(t, err)

	assert.Equal(t, models.ReservationActive, reservation.Status)
	assert.Equal(t, user.Id, reservation.UserId)
	assert.Equal(t, book.Id, reservation.BookId)
	assert.WithinDuration(t, time.Now(), reservation.ReservedAt, time.Minute)
	assert.Nil(t, reservation.ExpectancyStartedAt)
}

func TestCreateReservationEligibility(t *testing.T) {
	db := openTestDB(t)
	service := NewReservationService(db)

	holder := createTestUser(t, db)
	book := createTestBook(t, db, 1)
	createTestLoan(t, db, holder.Id, book.Id, time.Now().AddDate(0, 0, 14))

	t.Run("unknown user", func(t *testing.T) {
		_, err := service.CreateReservation(9999, book.Id)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown book", func(t *testing.T) {
		user := createTestUser(t, db)
		_, err := service.CreateReservation(user.Id, 9999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("inactive user", func(t *testing.T) {
		user := createTestUser(t, db)
		require.NoError(t, db.Model(user).Update("is_active", false).Error)
		_, err := service.CreateReservation(user.Id, book.Id)
		assert.ErrorIs(t, err, ErrIneligibleHolder)
	})

	t.Run("user with an open fine", func(t *testing.T) {
		user := createTestUser(t, db)
		other := createTestBook(t, db, 1)
		_, _ = createOverdueFine(t, db, user.Id, other.Id, 3, 6)
		_, err := service.CreateReservation(user.Id, book.Id)
		assert.ErrorIs(t, err, ErrIneligibleHolder)
	})

	t.Run("user at the engagement cap", func(t *testing.T) {
		user := createTestUser(t, db)
		first := createTestBook(t, db, 1)
		second := createTestBook(t, db, 1)
		createTestLoan(t, db, user.Id, first.Id, time.Now().AddDate(0, 0, 14))
		createTestLoan(t, db, user.Id, second.Id, time.Now().AddDate(0, 0, 14))
		_, err := service.CreateReservation(user.Id, book.Id)
		assert.ErrorIs(t, err, ErrEngagementLimitExceeded)
	})

	t.Run("duplicate live reservation", func(t *testing.T) {
		user := createTestUser(t, db)
		_, err := service.CreateReservation(user.Id, book.Id)
		require.NoError(t, err)
		_, err = service.CreateReservation(user.Id, book.Id)
		assert.ErrorIs(t, err, ErrConflict)
	})
}

func TestNormalizePromotesOldestFirst(t *testing.T) {
	db := openTestDB(t)
	service := NewReservationService(db)

	holderA := createTestUser(t, db)
	holderB := createTestUser(t, db)
	waiterC := createTestUser(t, db)
	waiterD := createTestUser(t, db)
	book := createTestBook(t, db, 2)

	loanA := createTestLoan(t, db, holderA.Id, book.Id, time.Now().AddDate(0, 0, 14))
	createTestLoan(t, db, holderB.Id, book.Id, time.Now().AddDate(0, 0, 14))

	older := createTestReservation(t, db, waiterC.Id, book.Id, models.ReservationActive, time.Now().Add(-2*time.Hour))
	newer := createTestReservation(t, db, waiterD.Id, book.Id, models.ReservationActive, time.Now().Add(-time.Hour))

	// One copy comes back: only the head of the queue gets it.
	returnedAt := time.Now()
	require.NoError(t, db.Model(loanA).Updates(map[string]interface{}{
		"status":      models.LoanReturned,
		"returned_at": returnedAt,
	}).Error)
	require.NoError(t, service.NormalizeAllBooks())

	promoted := reloadReservation(t, db, older.Id)
	assert.Equal(t, models.ReservationExpectancy, promoted.Status)
	require.NotNil(t, promoted.ExpectancyStartedAt)

	waiting := reloadReservation(t, db, newer.Id)
	assert.Equal(t, models.ReservationActive, waiting.Status)
	assert.Nil(t, waiting.ExpectancyStartedAt)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	service := NewReservationService(db)

	waiter := createTestUser(t, db)
	book := createTestBook(t, db, 1)
	reservation := createTestReservation(t, db, waiter.Id, book.Id, models.ReservationActive, time.Now())

	require.NoError(t, service.NormalizeAllBooks())
	first := reloadReservation(t, db, reservation.Id)
	require.Equal(t, models.ReservationExpectancy, first.Status)
	require.NotNil(t, first.ExpectancyStartedAt)

	require.NoError(t, service.NormalizeAllBooks())
	second := reloadReservation(t, db, reservation.Id)
	assert.Equal(t, models.ReservationExpectancy, second.Status)
	assert.Equal(t, first.ExpectancyStartedAt.Unix(), second.ExpectancyStartedAt.Unix())
}

func TestNormalizeExpiresStalePickupsAndPromotesNext(t *testing.T) {
	db := openTestDB(t)
	service := NewReservationService(db)

	stale := createTestUser(t, db)
	waiter := createTestUser(t, db)
	book := createTestBook(t, db, 1)

	expired := createTestReservation(t, db, stale.Id, book.Id, models.ReservationExpectancy, time.Now().AddDate(0, 0, -3))
	next := createTestReservation(t, db, waiter.Id, book.Id, models.ReservationActive, time.Now().Add(-time.Hour))

	require.NoError(t, service.NormalizeAllBooks())

	assert.Equal(t, models.ReservationExpired, reloadReservation(t, db, expired.Id).Status)
	assert.Equal(t, models.ReservationExpectancy, reloadReservation(t, db, next.Id).Status)
}

func TestCancelReservation(t *testing.T) {
	db := openTestDB(t)
	service := NewReservationService(db)

	user := createTestUser(t, db)
	book := createTestBook(t, db, 1)
	createTestLoan(t, db, user.Id, book.Id, time.Now().AddDate(0, 0, 14))

	waiter := createTestUser(t, db)
	reservation := createTestReservation(t, db, waiter.Id, book.Id, models.ReservationActive, time.Now())

	cancelled, err := service.CancelReservation(reservation.Id)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationCancelled, cancelled.Status)

	_, err = service.CancelReservation(reservation.Id)
	assert.ErrorIs(t, err, ErrConflict, "terminal reservations cannot be cancelled")

	_, err = service.CancelReservation(9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelReservationHandsSlotToNextInLine(t *testing.T) {
	db := openTestDB(t)
	service := NewReservationService(db)

	first := createTestUser(t, db)
	second := createTestUser(t, db)
	book := createTestBook(t, db, 1)

	promoted := createTestReservation(t, db, first.Id, book.Id, models.ReservationExpectancy, time.Now().Add(-time.Hour))
	waiting := createTestReservation(t, db, second.Id, book.Id, models.ReservationActive, time.Now())

	_, err := service.CancelReservation(promoted.Id)
	require.NoError(t, err)

	assert.Equal(t, models.ReservationExpectancy, reloadReservation(t, db, waiting.Id).Status)
}

func TestFulfillReservation(t *testing.T) {
	db := openTestDB(t)
	service := NewReservationService(db)

	user := createTestUser(t, db)
	book := createTestBook(t, db, 1)
	reservation := createTestReservation(t, db, user.Id, book.Id, models.ReservationExpectancy, time.Now().Add(-time.Hour))

	fulfilled, err := service.FulfillReservation(reservation.Id)
	require.NoError(t, err)

	assert.Equal(t, models.ReservationFulfilled, fulfilled.Status)
	require.NotNil(t, fulfilled.FulfilledAt)

	var loan models.LoanModel
	require.NoError(t, db.Where("user_id = ? AND book_id = ?", user.Id, book.Id).First(&loan).Error)
	assert.Equal(t, models.LoanBorrowed, loan.Status)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 14), loan.DueAt, time.Minute)
}

func TestFulfillReservationNotPromoted(t *testing.T) {
	db := openTestDB(t)
	service := NewReservationService(db)

	holder := createTestUser(t, db)
	user := createTestUser(t, db)
	book := createTestBook(t, db, 1)
	createTestLoan(t, db, holder.Id, book.Id, time.Now().AddDate(0, 0, 14))
	reservation := createTestReservation(t, db, user.Id, book.Id, models.ReservationActive, time.Now())

	_, err := service.FulfillReservation(reservation.Id)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestFulfillReservationAfterPickupWindow(t *testing.T) {
	db := openTestDB(t)
	service := NewReservationService(db)

	user := createTestUser(t, db)
	book := createTestBook(t, db, 1)
	reservation := createTestReservation(t, db, user.Id, book.Id, models.ReservationExpectancy, time.Now().AddDate(0, 0, -3))

	_, err := service.FulfillReservation(reservation.Id)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, models.ReservationExpired, reloadReservation(t, db, reservation.Id).Status)
}

func TestFulfillReservationWhenStockVanished(t *testing.T) {
	db := openTestDB(t)
	service := NewReservationService(db)

	user := createTestUser(t, db)
	book := createTestBook(t, db, 1)
	reservation := createTestReservation(t, db, user.Id, book.Id, models.ReservationExpectancy, time.Now().Add(-time.Hour))

	// The last copy is reported lost before pickup.
	require.NoError(t, db.Model(book).Update("lost_count", 1).Error)

	_, err := service.FulfillReservation(reservation.Id)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestFulfillReservationWhenUserAlreadyHoldsTheBook(t *testing.T) {
	db := openTestDB(t)
	service := NewReservationService(db)

	user := createTestUser(t, db)
	book := createTestBook(t, db, 2)
	createTestLoan(t, db, user.Id, book.Id, time.Now().AddDate(0, 0, 14))
	reservation := createTestReservation(t, db, user.Id, book.Id, models.ReservationExpectancy, time.Now().Add(-time.Hour))

	_, err := service.FulfillReservation(reservation.Id)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestGetUserReservations(t *testing.T) {
	db := openTestDB(t)
	service := NewReservationService(db)

	user := createTestUser(t, db)
	first := createTestBook(t, db, 1)
	second := createTestBook(t, db, 1)

	active := createTestReservation(t, db, user.Id, first.Id, models.ReservationActive, time.Now().Add(-2*time.Hour))
	promoted := createTestReservation(t, db, user.Id, second.Id, models.ReservationExpectancy, time.Now().Add(-time.Hour))

	reservations, err := service.GetUserReservations(user.Id)
	require.NoError(t, err)
	require.Len(t, reservations, 2)

	assert.Equal(t, active.Id, reservations[0].ID)
	assert.Equal(t, first.Isbn, reservations[0].Isbn)
	assert.Nil(t, reservations[0].ExpiryAt)

	assert.Equal(t, promoted.Id, reservations[1].ID)
	require.NotNil(t, reservations[1].ExpiryAt)
	expected := promoted.ExpectancyStartedAt.Add(config.ExpectancyExpiry)
	assert.Equal(t, expected.Unix(), reservations[1].ExpiryAt.Unix())
}
