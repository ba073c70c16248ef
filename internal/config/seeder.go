package config

import (
	"log"

	"gcub-intake/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// SeedCatalogData seeds the branch directory and product catalog
func SeedCatalogData(db *gorm.DB) error {
	if err := seedBranches(db); err != nil {
		return err
	}
	if err := seedProducts(db); err != nil {
		return err
	}

	log.Println("✅ Catalog data seeded successfully")
	return nil
}

func seedBranches(db *gorm.DB) error {
	branches := []models.Branch{
		{
			Code:     "HQ",
			Name:     "Head Office",
			Address:  "1 Union Plaza",
			Phone:    "020-555-0100",
			IsActive: true,
		},
		{
			Code:     "NORTH",
			Name:     "North Branch",
			Address:  "45 Hillside Road",
			Phone:    "020-555-0101",
			IsActive: true,
		},
		{
			Code:     "EAST",
			Name:     "East Branch",
			Address:  "12 Riverside Avenue",
			Phone:    "020-555-0102",
			IsActive: true,
		},
	}

	for _, b := range branches {
		var existing models.Branch
		err := db.Where("code = ?", b.Code).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := db.Create(&b).Error; err != nil {
			return err
		}
		log.Printf("   Created branch: %s", b.Name)
	}
	return nil
}

func seedProducts(db *gorm.DB) error {
	products := []models.Product{
		{
			Code:         "SAVINGS",
			Name:         "Regular Savings",
			Category:     models.ProductCategoryDeposit,
			Description:  "Standard savings account with monthly interest",
			InterestRate: 1.25,
			IsActive:     true,
		},
		{
			Code:         "FIXED12",
			Name:         "12-Month Fixed Deposit",
			Category:     models.ProductCategoryDeposit,
			Description:  "Fixed-term deposit, 12 months",
			InterestRate: 2.10,
			IsActive:     true,
		},
		{
			Code:         "PERSONAL",
			Name:         "Personal Loan",
			Category:     models.ProductCategoryLoan,
			Description:  "Unsecured personal loan",
			InterestRate: 8.50,
			IsActive:     true,
		},
		{
			Code:         "HOME",
			Name:         "Home Loan",
			Category:     models.ProductCategoryLoan,
			Description:  "Secured housing loan",
			InterestRate: 5.75,
			IsActive:     true,
		},
	}

	for _, p := range products {
		var existing models.Product
		err := db.Where("code = ?", p.Code).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := db.Create(&p).Error; err != nil {
			return err
		}
		log.Printf("   Created product: %s", p.Name)
	}
	return nil
}
