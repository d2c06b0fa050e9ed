package crm

import (
	"time"

	"gorm.io/gorm"

	"github.com/concesa/salesagent/internal/models"
)

// Migrate creates or updates the CRM schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Customer{},
		&models.InterestEvent{},
		&models.ConversationRecord{},
		&models.StockItem{},
	)
}

// SeedStock loads the default equipment inventory on a fresh database.
// Existing stock is left alone.
func SeedStock(db *gorm.DB, now time.Time) error {
	var n int64
	if err := db.Model(&models.StockItem{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	restock := now.AddDate(0, 0, 7)
	items := []models.StockItem{
		{Key: "demoledor", Name: "Demoledor eléctrico", Units: 3},
		{Key: "rotomartillo", Name: "Rotomartillo", Units: 5},
		{Key: "compactador", Name: "Compactadora de suelo", Units: 0, NextAvailableAt: &restock},
		{Key: "bailarina", Name: "Bailarina compactadora", Units: 2},
		{Key: "allanadora", Name: "Allanadora de concreto", Units: 2},
		{Key: "mezcladora", Name: "Mezcladora de concreto", Units: 4},
		{Key: "te-500", Name: "Martillo demoledor TE-500", Units: 4},
		{Key: "te-2000", Name: "Martillo demoledor TE-2000", Units: 2},
		{Key: "te-800", Name: "Rompedor TE-800", Units: 3},
	}
	return db.Create(&items).Error
}
