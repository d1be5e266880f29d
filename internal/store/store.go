// Package store persists content records, one gorm table per resource.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/manjeshpatagar/mytradingview/internal/apperr"
	"github.com/manjeshpatagar/mytradingview/internal/models"
	"github.com/manjeshpatagar/mytradingview/internal/schema"
	"github.com/manjeshpatagar/mytradingview/internal/util"
)

// RecordPtr constrains P to *T implementing models.Record.
type RecordPtr[T any] interface {
	*T
	models.Record
}

// ListOptions narrows List. A nil Window lists everything.
type ListOptions struct {
	Window *util.Window
}

// Store is the generic CRUD store for one resource collection.
type Store[T any, P RecordPtr[T]] struct {
	db   *gorm.DB
	name string
}

// New binds a store to db. name is the human resource name used in
// not-found messages ("Stock news").
func New[T any, P RecordPtr[T]](db *gorm.DB, name string) *Store[T, P] {
	return &Store[T, P]{db: db, name: name}
}

func (s *Store[T, P]) Name() string { return s.name }

// Create validates rec, assigns its id and persists it. Timestamps come from
// the database clock.
func (s *Store[T, P]) Create(ctx context.Context, rec *T) (*T, error) {
	meta := P(rec).GetMeta()
	meta.ID = uuid.NewString()
	meta.CreatedAt, meta.UpdatedAt = time.Time{}, time.Time{}

	if err := schema.Check(P(rec)); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, s.dbError("create", err)
	}
	return rec, nil
}

// Get returns the record with id or a not-found error.
func (s *Store[T, P]) Get(ctx context.Context, id string) (*T, error) {
	var rec T
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, s.dbError("get", err)
	}
	return &rec, nil
}

// List returns records newest first. With a window only records created
// inside it are returned.
func (s *Store[T, P]) List(ctx context.Context, opts ListOptions) ([]T, error) {
	q := s.db.WithContext(ctx).Model(new(T))
	if w := opts.Window; w != nil {
		q = q.Where("created_at BETWEEN ? AND ?", w.From, w.To)
	}

	out := make([]T, 0)
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, s.dbError("list", err)
	}
	return out, nil
}

// Update loads the record, lets apply merge changes onto it, re-validates
// the result and saves it. id and createdAt cannot be changed by apply.
func (s *Store[T, P]) Update(ctx context.Context, id string, apply func(*T) error) (*T, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *P(rec).GetMeta()

	if err := apply(rec); err != nil {
		return nil, err
	}

	meta := P(rec).GetMeta()
	meta.ID = before.ID
	meta.CreatedAt = before.CreatedAt
	meta.UpdatedAt = before.UpdatedAt
	if meta.IsActive == nil {
		meta.IsActive = before.IsActive
	}

	if err := schema.Check(P(rec)); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(rec).Error; err != nil {
		return nil, s.dbError("update", err)
	}
	return s.Get(ctx, id)
}

// Delete removes the record for good.
func (s *Store[T, P]) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if res.Error != nil {
		return s.dbError("delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return s.notFound()
	}
	return nil
}

func (s *Store[T, P]) notFound() error {
	return apperr.NotFound(s.name + " not found")
}

func (s *Store[T, P]) dbError(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.notFound()
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Conflict(s.name+" already exists", err)
	default:
		return apperr.Internal(s.name+" "+op, err)
	}
}
