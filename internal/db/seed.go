package db

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/diewo77/go-sales/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultCategories are offered on a fresh install.
var DefaultCategories = []string{"Alimentos", "Bebidas", "Higiene", "Limpeza", "Outros"}

// Seed inserts the default categories and, when password is not empty, an
// admin user. Rows that already exist are left untouched.
func Seed(db *gorm.DB, adminEmail, adminPassword string) error {
	for _, label := range DefaultCategories {
		var existing models.Category
		err := db.Where("label = ?", label).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&models.Category{Label: label}).Error; err != nil {
				return fmt.Errorf("seed category %q: %w", label, err)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("seed category %q: %w", label, err)
		}
	}

	adminEmail = strings.ToLower(strings.TrimSpace(adminEmail))
	if adminEmail == "" || adminPassword == "" {
		return nil
	}
	var count int64
	if err := db.Unscoped().Model(&models.User{}).Where("email = ?", adminEmail).Count(&count).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if count > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if err := db.Create(&models.User{Email: adminEmail, Name: "Admin", Password: string(hash)}).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	log.Printf("[DB] seeded admin user %s", adminEmail)
	return nil
}
