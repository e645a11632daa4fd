package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookRepository defines decoupled operations for library-cache persistence.
type BookRepository interface {
	Put(ctx context.Context, b Book) error
	GetByID(ctx context.Context, id int64) (*Book, error)
	List(ctx context.Context) ([]Book, error)
	SearchByTitle(ctx context.Context, titleSubstr string) ([]Book, error)
	Clear(ctx context.Context) error
}

// HighlightRepository defines decoupled operations for highlight persistence.
type HighlightRepository interface {
	Replace(ctx context.Context, bookID int64, highlights []Highlight) error
	ListByBook(ctx context.Context, bookID int64) ([]Highlight, error)
}

// gormBookRepo is a GORM-backed implementation of BookRepository.
// Use constructor NewBookRepository to obtain an instance.
type gormBookRepo struct{ db *gorm.DB }

// gormHighlightRepo is a GORM-backed implementation of HighlightRepository.
// Use constructor NewHighlightRepository to obtain an instance.
type gormHighlightRepo struct{ db *gorm.DB }

// NewBookRepository creates a BookRepository. Accepts *gorm.DB to avoid global access.
func NewBookRepository(db *gorm.DB) BookRepository { return &gormBookRepo{db: db} }

// NewHighlightRepository creates a HighlightRepository. Accepts *gorm.DB to avoid global access.
func NewHighlightRepository(db *gorm.DB) HighlightRepository { return &gormHighlightRepo{db: db} }

func (r *gormBookRepo) Put(ctx context.Context, b Book) error {
	if r.db == nil {
		return fmt.Errorf("repository not initialized")
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&b).Error
}

func (r *gormBookRepo) GetByID(ctx context.Context, id int64) (*Book, error) {
	if r.db == nil {
		return nil, fmt.Errorf("repository not initialized")
	}
	var book Book
	err := r.db.WithContext(ctx).First(&book, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *gormBookRepo) List(ctx context.Context) ([]Book, error) {
	if r.db == nil {
		return nil, fmt.Errorf("repository not initialized")
	}
	var books []Book
	if err := r.db.WithContext(ctx).Order("title").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (r *gormBookRepo) SearchByTitle(ctx context.Context, titleSubstr string) ([]Book, error) {
	if r.db == nil {
		return nil, fmt.Errorf("repository not initialized")
	}
	var books []Book
	if err := r.db.WithContext(ctx).Where("title LIKE ?", "%"+titleSubstr+"%").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (r *gormBookRepo) Clear(ctx context.Context) error {
	if r.db == nil {
		return fmt.Errorf("repository not initialized")
	}
	return r.db.WithContext(ctx).Unscoped().Where("1 = 1").Delete(&Book{}).Error
}

func (r *gormHighlightRepo) Replace(ctx context.Context, bookID int64, highlights []Highlight) error {
	if r.db == nil {
		return fmt.Errorf("repository not initialized")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", bookID).Delete(&Highlight{}).Error; err != nil {
			return err
		}
		if len(highlights) == 0 {
			return nil
		}
		return tx.Create(&highlights).Error
	})
}

func (r *gormHighlightRepo) ListByBook(ctx context.Context, bookID int64) ([]Highlight, error) {
	if r.db == nil {
		return nil, fmt.Errorf("repository not initialized")
	}
	var highlights []Highlight
	if err := r.db.WithContext(ctx).Where("book_id = ?", bookID).Find(&highlights).Error; err != nil {
		return nil, err
	}
	return highlights, nil
}
