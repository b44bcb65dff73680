package repository

import (
	"context"

	"gorm.io/gorm"
)

// Tx groups the repositories bound to a single database transaction.
type Tx struct {
	Submissions SubmissionRepository
	Evaluations EvaluationRepository
}

// Transactor runs a unit of work atomically.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(tx Tx) error) error
}

// NewTransactor constructs a gorm backed transactor.
func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

type gormTransactor struct {
	db *gorm.DB
}

// WithinTransaction commits when fn returns nil and rolls back otherwise.
func (t *gormTransactor) WithinTransaction(ctx context.Context, fn func(tx Tx) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Tx{
			Submissions: NewSubmissionRepository(tx),
			Evaluations: NewEvaluationRepository(tx),
		})
	})
}
