package db

import (
	"bitwise74/roleplay-api/internal/model"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DataMigration changes rows after the schema has been auto-migrated. Each
// one runs once and is recorded in the migrations table.
type DataMigration struct {
	Name string
	Run  func(tx *gorm.DB) error
}

var dataMigrations = []DataMigration{
	{
		// Tables created before masters were attached as players
		Name: "backfill_master_membership",
		Run: func(tx *gorm.DB) error {
			return tx.Exec(`
				INSERT INTO tables_users (user_id, table_id)
				SELECT t.master, t.id FROM tables t
				WHERE NOT EXISTS (
					SELECT 1 FROM tables_users tu
					WHERE tu.table_id = t.id AND tu.user_id = t.master
				)`).Error
		},
	},
}

// Migrate auto-migrates every model and then applies pending data migrations
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.Table{},
		&model.TablePlayer{},
		&model.TableRequest{},
		&model.PasswordResetToken{},
		&model.ApiToken{},
		&model.Migration{},
	)
	if err != nil {
		return fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return applyDataMigrations(db, dataMigrations)
}

func applyDataMigrations(db *gorm.DB, migrations []DataMigration) error {
	for _, m := range migrations {
		err := db.Transaction(func(tx *gorm.DB) error {
			var applied model.Migration

			err := tx.Where("name = ?", m.Name).First(&applied).Error
			if err == nil {
				return nil
			}

			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			if err := m.Run(tx); err != nil {
				return err
			}

			zap.L().Info("Applied data migration", zap.String("name", m.Name))

			return tx.Create(&model.Migration{Name: m.Name}).Error
		})
		if err != nil {
			return fmt.Errorf("data migration %s failed, %w", m.Name, err)
		}
	}

	return nil
}
