package models

import "time"

// BookLocation describes where the copies of a book are shelved.
type BookLocation struct {
	Aisle         *string `json:"aisle" gorm:"column:aisle;type:varchar(20)"`
	Bookcase      *string `json:"bookcase" gorm:"column:bookcase;type:varchar(20)"`
	Shelf         *string `json:"shelf" gorm:"column:shelf;type:varchar(20)"`
	ShelfPosition *string `json:"shelfPosition" gorm:"column:shelf_position;type:varchar(20)"`
}

type BookModel struct {
	Id            int          `json:"id" gorm:"primaryKey;autoIncrement"`
	Isbn          string       `json:"isbn" gorm:"type:varchar(20);not null;unique"`
	Title         string       `json:"title" gorm:"type:varchar(255);not null"`
	Author        string       `json:"author" gorm:"type:varchar(255);not null"`
	Publisher     *string      `json:"publisher" gorm:"type:varchar(255)"`
	PublishedYear *int         `json:"publishedYear" gorm:"column:published_year"`
	Quantity      int          `json:"quantity" gorm:"not null;check:quantity >= 0"`
	LostCount     int          `json:"lostCount" gorm:"column:lost_count;not null;default:0;check:lost_count >= 0"`
	DamagedCount  int          `json:"damagedCount" gorm:"column:damaged_count;not null;default:0;check:damaged_count >= 0"`
	Location      BookLocation `json:"location" gorm:"embedded"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// PhysicalCopies is the number of copies that physically remain in the
// collection, before subtracting loans and reservations.
func (b *BookModel) PhysicalCopies() int {
	return b.Quantity - b.LostCount - b.DamagedCount
}
