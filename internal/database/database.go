package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Adarsh-MG101/VerifyCert2/internal/logger"
	"github.com/Adarsh-MG101/VerifyCert2/internal/models"
)

// Open bootstraps a SQLite database using the provided filesystem path.
func Open(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	return db, nil
}

// Migrate applies the schema for all models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.Template{},
		&models.Document{},
		&models.Activity{},
		&models.Notification{},
		&models.Setting{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Seed creates the default superadmin account when no user exists yet, so a
// fresh install is usable without manual SQL.
func Seed(db *gorm.DB, adminEmail, adminPassword string) error {
	if adminEmail == "" {
		adminEmail = "admin@verifycert.com"
	}
	if adminPassword == "" {
		adminPassword = "Admin@123"
	}

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	admin := models.User{
		Name:  "Admin",
		Email: adminEmail,
		Role:  models.RoleSuperAdmin,
	}
	if err := admin.SetPassword(adminPassword); err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	logger.Log().WithField("email", adminEmail).Info("seeded default admin user")
	return nil
}
