package repository

import (
	"errors"

	"payments-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormChargeRepository stores charges in Postgres via GORM.
type GormChargeRepository struct {
	db *gorm.DB
}

func NewGormChargeRepository(db *gorm.DB) *GormChargeRepository {
	return &GormChargeRepository{db: db}
}

func (r *GormChargeRepository) Create(charge *models.Charge) error {
	return r.db.Create(charge).Error
}

func (r *GormChargeRepository) GetByID(id string) (*models.Charge, error) {
	var charge models.Charge
	if err := r.db.First(&charge, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &charge, nil
}

// UpdateStatus runs the read-modify-write inside a transaction holding a
// row lock, so concurrent captures/cancels of the same charge serialize.
func (r *GormChargeRepository) UpdateStatus(id string, fn func(*models.Charge) error) (*models.Charge, error) {
	var charge models.Charge
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&charge, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := fn(&charge); err != nil {
			return err
		}
		return tx.Model(&models.Charge{}).
			Where("id = ?", id).
			Update("status", charge.Status).Error
	})
	if err != nil {
		// fn rejections still carry the charge as read for reporting.
		if charge.ID != "" {
			return &charge, err
		}
		return nil, err
	}
	return &charge, nil
}

func (r *GormChargeRepository) Count() (int64, error) {
	var n int64
	if err := r.db.Model(&models.Charge{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// GormIdempotencyRepository stores idempotency records in Postgres.
type GormIdempotencyRepository struct {
	db *gorm.DB
}

func NewGormIdempotencyRepository(db *gorm.DB) *GormIdempotencyRepository {
	return &GormIdempotencyRepository{db: db}
}

func (r *GormIdempotencyRepository) Get(key string) (*models.IdempotencyRecord, error) {
	var rec models.IdempotencyRecord
	if err := r.db.First(&rec, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// Create relies on the unique index on key for first-writer-wins; a lost
// race surfaces as ErrDuplicateKey.
func (r *GormIdempotencyRepository) Create(rec *models.IdempotencyRecord) error {
	if err := r.db.Create(rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateKey
		}
		return err
	}
	return nil
}
