package database

import (
	"fmt"

	"payments-backend/models"

	"gorm.io/gorm"
)

// Migrate applies (idempotent) schema migrations:
// - AutoMigrate (tables/columns/index tags)
// - Unique index on idempotency key (first-writer-wins across processes)
// - CHECK constraint: charges.amount > 0
func Migrate(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(
			&models.Charge{},
			&models.IdempotencyRecord{},
		); err != nil {
			return fmt.Errorf("automigrate failed: %w", err)
		}

		indexes := []string{
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_idempotency_records_key ON idempotency_records (key)`,
			`CREATE INDEX IF NOT EXISTS idx_charges_created_at ON charges (created_at)`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		check := `
DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM pg_constraint
		WHERE conrelid = 'charges'::regclass
		  AND conname  = 'chk_charges_amount_positive'
	) THEN
		ALTER TABLE charges
		ADD CONSTRAINT chk_charges_amount_positive
		CHECK (amount > 0);
	END IF;
END $$;`
		if err := tx.Exec(check).Error; err != nil {
			return fmt.Errorf("check constraint migration failed: %w", err)
		}

		return nil
	})
}
