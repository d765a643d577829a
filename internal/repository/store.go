package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/lecitrade/coa-tracker/internal/entity"
)

// Filter narrows record queries. A nil UserID means "no user scoping";
// a set UserID scopes to that user's rows, with reads falling back to
// unowned (legacy) rows when the user owns none.
type Filter struct {
	UserID   *uuid.UUID
	BatchID  *string
	SampleID *string
	IDs      []uuid.UUID
}

// Partial carries the fields of an update; nil members are left untouched.
type Partial struct {
	SampleID         *string
	BatchID          *string
	FileName         *string
	Fields           map[string]string
	AdditionalFields map[string]string
}

// Store is the record-store boundary. Persistence details stay behind it;
// the reconciliation engine is its only mutating consumer.
type Store interface {
	Create(ctx context.Context, rec *entity.CoaRecord) (*entity.CoaRecord, error)
	FindMany(ctx context.Context, f Filter) ([]*entity.CoaRecord, error)
	Update(ctx context.Context, id uuid.UUID, p Partial) (*entity.CoaRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteMany(ctx context.Context, f Filter) (int64, error)
	Count(ctx context.Context, f Filter) (int64, error)
}
