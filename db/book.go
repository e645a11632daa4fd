package db

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Book is a cached book record from the user's library.
type Book struct {
	ID     int64  `gorm:"primaryKey" json:"id"`
	Title  string `gorm:"index" json:"title"` // Indexed for faster queries
	Author string `json:"author"`
	ISBN   string `json:"isbn,omitempty"`
}

// Highlight is a cached highlight belonging to a book.
type Highlight struct {
	ID       int64  `gorm:"primaryKey" json:"id"`
	BookID   int64  `gorm:"index" json:"book_id"`
	Text     string `json:"text"`
	Note     string `json:"note,omitempty"`
	Location string `json:"location,omitempty"`
}

// UpsertBook inserts or updates a book record in the library cache.
func UpsertBook(book Book) error {
	if err := Db.Clauses(
		clause.OnConflict{
			UpdateAll: true, // Updates all fields if there's a conflict on the primary key (ID).
		},
	).Create(&book).Error; err != nil {
		log.Error().Err(err).Msgf("Failed to upsert book with ID %d", book.ID)
		return err
	}

	log.Debug().Msgf("Book upserted successfully: ID=%d, Title=%s", book.ID, book.Title)
	return nil
}

// ReplaceHighlights swaps the cached highlights of a book for a fresh set.
func ReplaceHighlights(bookID int64, highlights []Highlight) error {
	return Db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", bookID).Delete(&Highlight{}).Error; err != nil {
			log.Error().Err(err).Msgf("Failed to clear highlights for book %d", bookID)
			return err
		}
		if len(highlights) == 0 {
			return nil
		}
		if err := tx.Create(&highlights).Error; err != nil {
			log.Error().Err(err).Msgf("Failed to insert highlights for book %d", bookID)
			return err
		}
		return nil
	})
}

// EmptyLibrary removes all records from the library cache.
func EmptyLibrary() error {
	if err := Db.Unscoped().Where("1 = 1").Delete(&Highlight{}).Error; err != nil {
		log.Error().Err(err).Msg("Failed to empty highlight cache")
		return err
	}
	if err := Db.Unscoped().Where("1 = 1").Delete(&Book{}).Error; err != nil {
		log.Error().Err(err).Msg("Failed to empty book cache")
		return err
	}

	log.Info().Msg("Library cache emptied successfully")
	return nil
}

// GetLibrary retrieves all books in the library cache.
func GetLibrary() ([]Book, error) {
	var books []Book
	if err := Db.Order("title").Find(&books).Error; err != nil {
		log.Error().Err(err).Msg("Failed to fetch books from the database")
		return nil, err
	}

	log.Debug().Msgf("Retrieved %d books from the library cache", len(books))
	return books, nil
}

// GetBookByID retrieves a book from the library cache by its ID.
func GetBookByID(id int64) (*Book, error) {
	if Db == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}

	var book Book
	if err := Db.First(&book, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Book not found
		}
		return nil, fmt.Errorf("failed to retrieve book with ID %d: %w", id, err)
	}

	return &book, nil
}

// SearchBooksByTitle searches the library cache for books whose title
// contains the given substring.
func SearchBooksByTitle(title string) ([]Book, error) {
	if Db == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}

	var books []Book
	if err := Db.Where("title LIKE ?", "%"+title+"%").Find(&books).Error; err != nil {
		log.Error().Err(err).Msgf("Failed to search books by title: %s", title)
		return nil, err
	}

	return books, nil
}

// GetHighlightsByBook retrieves the cached highlights of a book.
func GetHighlightsByBook(bookID int64) ([]Highlight, error) {
	if Db == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}

	var highlights []Highlight
	if err := Db.Where("book_id = ?", bookID).Find(&highlights).Error; err != nil {
		log.Error().Err(err).Msgf("Failed to fetch highlights for book %d", bookID)
		return nil, err
	}
	return highlights, nil
}
