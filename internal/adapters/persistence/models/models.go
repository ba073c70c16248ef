package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Catalog Tables (Branch directory + Product catalog)
// ============================================================

// Branch represents branches table
type Branch struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Code      string         `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	Address   string         `gorm:"size:255" json:"address"`
	Phone     string         `gorm:"size:20" json:"phone"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Branch) TableName() string {
	return "branches"
}

// Product categories (match application types)
const (
	ProductCategoryDeposit = "deposit"
	ProductCategoryLoan    = "loan"
)

// Product represents products table (deposit/loan products)
type Product struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Code         string         `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	Category     string         `gorm:"size:20;not null;index" json:"category"`
	Description  string         `gorm:"type:text" json:"description"`
	InterestRate float64        `gorm:"type:decimal(5,2)" json:"interest_rate"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// ============================================================
// Intake Tables
// ============================================================

// Application represents applications table (deposit/loan intake records).
// Rows are never hard-deleted: rejected applications stay queryable so the
// duplicate check can exclude them and the audit trail survives.
type Application struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ApplicationID   string    `gorm:"size:20;uniqueIndex;not null" json:"application_id"`
	ApplicationType string    `gorm:"size:10;not null;index" json:"application_type"`
	ProductID       uint      `gorm:"not null;index" json:"product_id"`
	ProductName     string    `gorm:"size:100;not null" json:"product_name"`
	BranchID        uint      `gorm:"not null;index" json:"branch_id"`
	Name            string    `gorm:"size:100;not null" json:"name"`
	Email           string    `gorm:"size:100;not null;index" json:"email"`
	Phone           string    `gorm:"size:20;not null;index" json:"phone"`
	Status          string    `gorm:"size:15;not null;default:'open';index" json:"status"`
	Notes           string    `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Branch  *Branch  `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (Application) TableName() string {
	return "applications"
}

// ApplicationResponse DTO
type ApplicationResponse struct {
	ID              uint      `json:"id"`
	ApplicationID   string    `json:"application_id"`
	ApplicationType string    `json:"application_type"`
	ProductID       uint      `json:"product_id"`
	ProductName     string    `json:"product_name"`
	BranchID        uint      `json:"branch_id"`
	BranchName      string    `json:"branch_name,omitempty"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Status          string    `json:"status"`
	Notes           string    `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (a *Application) ToResponse() *ApplicationResponse {
	resp := &ApplicationResponse{
		ID:              a.ID,
		ApplicationID:   a.ApplicationID,
		ApplicationType: a.ApplicationType,
		ProductID:       a.ProductID,
		ProductName:     a.ProductName,
		BranchID:        a.BranchID,
		Name:            a.Name,
		Email:           a.Email,
		Phone:           a.Phone,
		Status:          a.Status,
		Notes:           a.Notes,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}

	if a.Branch != nil {
		resp.BranchName = a.Branch.Name
	}

	return resp
}

// StatusLog represents status_logs table (append-only audit trail).
// OldStatus is NULL only for the entry written at creation; replaying the
// log in order reconstructs the application's full status history.
type StatusLog struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ApplicationID uint      `gorm:"not null;index" json:"application_id"`
	OldStatus     *string   `gorm:"size:15" json:"old_status"`
	NewStatus     string    `gorm:"size:15;not null" json:"new_status"`
	Notes         string    `gorm:"type:text" json:"notes"`
	ChangedBy     string    `gorm:"size:100" json:"changed_by"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Application *Application `gorm:"foreignKey:ApplicationID" json:"application,omitempty"`
}

func (StatusLog) TableName() string {
	return "status_logs"
}

// ApplicationSequence represents application_sequences table.
// One counter row per (branch, product) pair; incremented under a row lock
// so concurrent intakes can never mint the same application number.
type ApplicationSequence struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BranchID  uint      `gorm:"not null;uniqueIndex:idx_seq_branch_product" json:"branch_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_seq_branch_product" json:"product_id"`
	LastSeq   int       `gorm:"not null;default:0" json:"last_seq"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ApplicationSequence) TableName() string {
	return "application_sequences"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Catalog
		&Branch{},
		&Product{},
		// Intake
		&Application{},
		&StatusLog{},
		&ApplicationSequence{},
	)
}
