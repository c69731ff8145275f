// Package repository holds the gorm-backed persistence adapters for the query-time
// core: pipelines, collections, and agent configurations. Session/message persistence lives
// in internal/conversation, which owns that table directly for locality with its
// windowing logic.
package repository

import (
	"context"

	"github.com/manavgup/ragcore/internal/errors"
	"github.com/manavgup/ragcore/internal/types"
	"gorm.io/gorm"
)

// PipelineRepository persists and resolves Pipeline configurations.
type PipelineRepository struct {
	db *gorm.DB
}

func NewPipelineRepository(db *gorm.DB) *PipelineRepository {
	return &PipelineRepository{db: db}
}

// Resolve returns the pipeline requested by ID, or the tenant's default pipeline when
// pipelineID is empty, matching the teacher's convention of falling back to a sensible
// default rather than requiring every request to name one explicitly.
func (r *PipelineRepository) Resolve(ctx context.Context, tenantID uint, pipelineID string) (*types.Pipeline, error) {
	var p types.Pipeline
	q := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if pipelineID != "" {
		q = q.Where("id = ?", pipelineID)
	} else {
		q = q.Where("is_default = ?", true)
	}
	if err := q.First(&p).Error; err != nil {
		return nil, errors.NewNotFoundError("no pipeline resolved for tenant")
	}
	return &p, nil
}

func (r *PipelineRepository) Create(ctx context.Context, p *types.Pipeline) (*types.Pipeline, error) {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, errors.NewInternalServerError("create pipeline: " + err.Error())
	}
	return p, nil
}

func (r *PipelineRepository) Get(ctx context.Context, tenantID uint, id string) (*types.Pipeline, error) {
	var p types.Pipeline
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&p).Error; err != nil {
		return nil, errors.NewNotFoundError("pipeline not found: " + id)
	}
	return &p, nil
}
