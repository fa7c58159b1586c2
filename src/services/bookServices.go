package services

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/BiblioDesk/BiblioDesk-Backend/src/config"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/dtos"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/models"
	excelize "github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type BookService struct {
	db *gorm.DB
}

type ImportResult struct {
	Imported int
	Errors   []string
}

// NewBookService creates a new instance of BookService
func NewBookService(db *gorm.DB) *BookService {
	return &BookService{db: db}
}

type bookCountRow struct {
	BookId int
	N      int64
}

// availabilityByBook returns open-loan and live-reservation counts grouped
// by book, for the catalog listings.
func (s *BookService) availabilityByBook() (map[int]int64, map[int]int64, error) {
	var loanRows []bookCountRow
	if err := s.db.Model(&models.LoanModel{}).
		Select("book_id, COUNT(*) AS n").
		Where("status = ?", models.LoanBorrowed).
		Group("book_id").
		Scan(&loanRows).Error; err != nil {
		return nil, nil, err
	}

	var reservationRows []bookCountRow
	if err := s.db.Model(&models.ReservationModel{}).
		Select("book_id, COUNT(*) AS n").
		Where("status IN ?", liveReservationStatuses).
		Group("book_id").
		Scan(&reservationRows).Error; err != nil {
		return nil, nil, err
	}

	loans := make(map[int]int64, len(loanRows))
	for _, row := range loanRows {
		loans[row.BookId] = row.N
	}
	reservations := make(map[int]int64, len(reservationRows))
	for _, row := range reservationRows {
		reservations[row.BookId] = row.N
	}
	return loans, reservations, nil
}

func bookSummary(book *models.BookModel, openLoans, liveReservations int64) dtos.BookSummaryDTO {
	available := FreeCopies(book, int(openLoans), int(liveReservations))
	status := "Unavailable"
	if available > 0 {
		status = "Available"
	}
	return dtos.BookSummaryDTO{
		ID:             book.Id,
		Isbn:           book.Isbn,
		Title:          book.Title,
		Author:         book.Author,
		Publisher:      book.Publisher,
		AvailableCount: available,
		Status:         status,
	}
}

// GetAllBooks retrieves the whole catalog with derived availability.
func (s *BookService) GetAllBooks() ([]dtos.BookSummaryDTO, error) {
	var books []models.BookModel
	if err := s.db.Find(&books).Error; err != nil {
		return nil, err
	}

	loans, reservations, err := s.availabilityByBook()
	if err != nil {
		return nil, err
	}

	result := make([]dtos.BookSummaryDTO, 0, len(books))
	for i := range books {
		result = append(result, bookSummary(&books[i], loans[books[i].Id], reservations[books[i].Id]))
	}
	return result, nil
}

// GetUnavailableBooks retrieves only the books with no free copy left.
func (s *BookService) GetUnavailableBooks() ([]dtos.BookSummaryDTO, error) {
	all, err := s.GetAllBooks()
	if err != nil {
		return nil, err
	}

	result := make([]dtos.BookSummaryDTO, 0)
	for _, book := range all {
		if book.AvailableCount < 1 {
			result = append(result, book)
		}
	}
	return result, nil
}

// GetBookByID retrieves one book together with its current free-copy count.
func (s *BookService) GetBookByID(id int) (*models.BookModel, int, error) {
	var book models.BookModel
	if err := s.db.First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, fmt.Errorf("%w: book %d", ErrNotFound, id)
		}
		return nil, 0, err
	}

	available, err := freeCopiesForBook(s.db, &book)
	if err != nil {
		return nil, 0, err
	}
	return &book, available, nil
}

// CreateBook adds a new title to the catalog.
func (s *BookService) CreateBook(book *models.BookModel) error {
	if book.Isbn == "" || book.Title == "" || book.Author == "" {
		return fmt.Errorf("%w: ISBN, title, author and quantity are required", ErrInvalidRequest)
	}
	if book.Quantity < 0 || book.LostCount < 0 || book.DamagedCount < 0 {
		return fmt.Errorf("%w: counts must not be negative", ErrInvalidRequest)
	}
	if book.Quantity < book.LostCount+book.DamagedCount {
		return fmt.Errorf("%w: quantity is below the lost and damaged counts", ErrInvalidRequest)
	}

	if err := s.db.Create(book).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: book with this ISBN already exists", ErrConflict)
		}
		return err
	}
	return nil
}

// UpdateBook edits the allow-listed catalog fields of one book. Changing
// the copy counts changes availability, so the reservation queue is
// reconciled in the same transaction.
func (s *BookService) UpdateBook(id int, updates map[string]interface{}) (*models.BookModel, error) {
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: no update data provided", ErrInvalidRequest)
	}
	for field := range updates {
		allowed := false
		for _, f := range config.AllowedBookUpdateFields {
			if f == field {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, fmt.Errorf("%w: invalid update fields", ErrInvalidRequest)
		}
	}

	var book models.BookModel

	err := runSerializable(s.db, func(tx *gorm.DB) error {
		if err := tx.First(&book, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: book %d", ErrNotFound, id)
			}
			return err
		}

		if err := applyBookUpdates(&book, updates); err != nil {
			return err
		}
		if book.Quantity < book.LostCount+book.DamagedCount {
			return fmt.Errorf("%w: quantity is below the lost and damaged counts", ErrInvalidRequest)
		}

		if err := tx.Save(&book).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: book with this ISBN already exists", ErrConflict)
			}
			return err
		}

		return normalizeBookReservations(tx, book.Id, time.Now())
	})

	if err != nil {
		return nil, err
	}
	return &book, nil
}

// DeleteBook removes a book from the catalog. Forbidden while any open
// loan or live reservation still references it.
func (s *BookService) DeleteBook(id int) error {
	return runSerializable(s.db, func(tx *gorm.DB) error {
		var book models.BookModel
		if err := tx.First(&book, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: book %d", ErrNotFound, id)
			}
			return err
		}

		openLoans, err := countOpenLoansForBook(tx, id)
		if err != nil {
			return err
		}
		liveReservations, err := countLiveReservationsForBook(tx, id)
		if err != nil {
			return err
		}
		if openLoans > 0 || liveReservations > 0 {
			return fmt.Errorf("%w: book has open loans or reservations", ErrConflict)
		}

		return tx.Delete(&models.BookModel{}, id).Error
	})
}

// ImportBooksFromExcel bulk-loads catalog rows from a spreadsheet.
// Expected columns: ISBN, title, author, publisher, published year,
// quantity, aisle, bookcase, shelf, shelf position. Row errors are
// collected, not fatal.
func (s *BookService) ImportBooksFromExcel(r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid excel file: %v", ErrInvalidRequest, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: excel file has no sheets", ErrInvalidRequest)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("could not read sheet %s: %w", sheets[0], err)
	}

	result := &ImportResult{Imported: 0, Errors: []string{}}

	for i, row := range rows {
		// Header row and empty rows are skipped
		if i == 0 || len(row) == 0 || strings.TrimSpace(cell(row, 0)) == "" {
			continue
		}

		isbn := strings.TrimSpace(cell(row, 0))
		title := strings.TrimSpace(cell(row, 1))
		author := strings.TrimSpace(cell(row, 2))
		if title == "" || author == "" {
			result.Errors = append(result.Errors, fmt.Sprintf(
				"Row %d: title and author are required", i+1))
			continue
		}

		quantity, err := strconv.Atoi(strings.TrimSpace(cell(row, 5)))
		if err != nil || quantity < 0 {
			result.Errors = append(result.Errors, fmt.Sprintf(
				"Row %d: invalid quantity %q", i+1, cell(row, 5)))
			continue
		}

		book := models.BookModel{
			Isbn:     isbn,
			Title:    title,
			Author:   author,
			Quantity: quantity,
			Location: models.BookLocation{
				Aisle:         optionalCell(row, 6),
				Bookcase:      optionalCell(row, 7),
				Shelf:         optionalCell(row, 8),
				ShelfPosition: optionalCell(row, 9),
			},
		}
		if publisher := optionalCell(row, 3); publisher != nil {
			book.Publisher = publisher
		}
		if yearText := strings.TrimSpace(cell(row, 4)); yearText != "" {
			if year, err := strconv.Atoi(yearText); err == nil {
				book.PublishedYear = &year
			}
		}

		if err := s.db.Create(&book).Error; err != nil {
			if isUniqueViolation(err) {
				result.Errors = append(result.Errors, fmt.Sprintf(
					"Row %d: book with ISBN %s already exists", i+1, isbn))
			} else {
				result.Errors = append(result.Errors, fmt.Sprintf(
					"Row %d: could not create book %s: %v", i+1, isbn, err))
			}
			continue
		}
		result.Imported++
	}

	return result, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func optionalCell(row []string, i int) *string {
	v := strings.TrimSpace(cell(row, i))
	if v == "" {
		return nil
	}
	return &v
}

// applyBookUpdates maps the JSON field names of the update payload onto
// the model.
func applyBookUpdates(book *models.BookModel, updates map[string]interface{}) error {
	for field, value := range updates {
		switch field {
		case "isbn":
			v, ok := value.(string)
			if !ok {
				return fmt.Errorf("%w: isbn must be a string", ErrInvalidRequest)
			}
			book.Isbn = v
		case "title":
			v, ok := value.(string)
			if !ok {
				return fmt.Errorf("%w: title must be a string", ErrInvalidRequest)
			}
			book.Title = v
		case "author":
			v, ok := value.(string)
			if !ok {
				return fmt.Errorf("%w: author must be a string", ErrInvalidRequest)
			}
			book.Author = v
		case "publisher":
			v, ok := value.(string)
			if !ok {
				return fmt.Errorf("%w: publisher must be a string", ErrInvalidRequest)
			}
			book.Publisher = &v
		case "publishedYear":
			v, ok := toInt(value)
			if !ok {
				return fmt.Errorf("%w: publishedYear must be a number", ErrInvalidRequest)
			}
			book.PublishedYear = &v
		case "quantity":
			v, ok := toInt(value)
			if !ok || v < 0 {
				return fmt.Errorf("%w: quantity must be a non-negative number", ErrInvalidRequest)
			}
			book.Quantity = v
		case "lostCount":
			v, ok := toInt(value)
			if !ok || v < 0 {
				return fmt.Errorf("%w: lostCount must be a non-negative number", ErrInvalidRequest)
			}
			book.LostCount = v
		case "damagedCount":
			v, ok := toInt(value)
			if !ok || v < 0 {
				return fmt.Errorf("%w: damagedCount must be a non-negative number", ErrInvalidRequest)
			}
			book.DamagedCount = v
		case "location":
			loc, ok := value.(map[string]interface{})
			if !ok {
				return fmt.Errorf("%w: location must be an object", ErrInvalidRequest)
			}
			book.Location = models.BookLocation{
				Aisle:         optionalField(loc, "aisle"),
				Bookcase:      optionalField(loc, "bookcase"),
				Shelf:         optionalField(loc, "shelf"),
				ShelfPosition: optionalField(loc, "shelfPosition"),
			}
		}
	}
	return nil
}

func optionalField(m map[string]interface{}, key string) *string {
	if v, ok := m[key].(string); ok && v != "" {
		return &v
	}
	return nil
}

// toInt accepts the number shapes JSON decoding produces.
func toInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
