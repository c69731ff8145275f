package repository

import (
	"context"

	"github.com/manavgup/ragcore/internal/errors"
	"github.com/manavgup/ragcore/internal/types"
	"gorm.io/gorm"
)

// CollectionRepository is the thin read-side adapter the query-time core depends on:
// checking a collection is ready, and tracking the index-version counter the keyword
// engine uses to invalidate its cached TF-IDF matrix.
type CollectionRepository struct {
	db *gorm.DB
}

func NewCollectionRepository(db *gorm.DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

func (r *CollectionRepository) Get(ctx context.Context, tenantID uint, id string) (*types.Collection, error) {
	var c types.Collection
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&c).Error; err != nil {
		return nil, errors.NewNotFoundError("collection not found: " + id)
	}
	return &c, nil
}

// EnsureReady returns an error unless the collection exists and its status is "ready",
// since retrieval against an unready collection would silently return nothing useful.
func (r *CollectionRepository) EnsureReady(ctx context.Context, tenantID uint, id string) (*types.Collection, error) {
	c, err := r.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !c.IsReady() {
		return nil, errors.NewRetrievalError("collection is not ready: " + id)
	}
	return c, nil
}

// BumpIndexVersion increments the index version, invalidating cached keyword indexes,
// and should be called whenever the collection's chunk set changes.
func (r *CollectionRepository) BumpIndexVersion(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&types.Collection{}).
		Where("id = ?", id).
		UpdateColumn("index_version", gorm.Expr("index_version + 1")).Error
}
