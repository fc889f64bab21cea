package repository

import (
	"context"
	"time"

	"tallerpos/internal/model"

	"gorm.io/gorm"
)

// JournalRepository records every sale and refund submission made from a
// terminal, successful or not.
type JournalRepository interface {
	CreateVenta(ctx context.Context, r *model.VentaRegistro) error
	ListVentas(ctx context.Context, terminalID string, limit int) ([]model.VentaRegistro, error)
	CreateReembolso(ctx context.Context, r *model.ReembolsoRegistro) error
	ListReembolsos(ctx context.Context, terminalID string, limit int) ([]model.ReembolsoRegistro, error)
	// Purge deletes entries of both kinds created before the cutoff.
	Purge(ctx context.Context, before time.Time) (int64, error)
}

type journalRepo struct{ db *gorm.DB }

func NewJournalRepository(db *gorm.DB) JournalRepository { return &journalRepo{db: db} }

func (r *journalRepo) CreateVenta(ctx context.Context, v *model.VentaRegistro) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *journalRepo) ListVentas(ctx context.Context, terminalID string, limit int) ([]model.VentaRegistro, error) {
	var out []model.VentaRegistro
	err := r.db.WithContext(ctx).
		Where("terminal_id = ?", terminalID).
		Order("created_at DESC").
		Limit(clampLimit(limit)).
		Find(&out).Error
	return out, err
}

func (r *journalRepo) CreateReembolso(ctx context.Context, rr *model.ReembolsoRegistro) error {
	return r.db.WithContext(ctx).Create(rr).Error
}

func (r *journalRepo) ListReembolsos(ctx context.Context, terminalID string, limit int) ([]model.ReembolsoRegistro, error) {
	var out []model.ReembolsoRegistro
	err := r.db.WithContext(ctx).
		Where("terminal_id = ?", terminalID).
		Order("created_at DESC").
		Limit(clampLimit(limit)).
		Find(&out).Error
	return out, err
}

func (r *journalRepo) Purge(ctx context.Context, before time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("created_at < ?", before).Delete(&model.VentaRegistro{})
		if res.Error != nil {
			return res.Error
		}
		total += res.RowsAffected
		res = tx.Where("created_at < ?", before).Delete(&model.ReembolsoRegistro{})
		if res.Error != nil {
			return res.Error
		}
		total += res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func clampLimit(n int) int {
	if n <= 0 || n > 200 {
		return 50
	}
	return n
}
