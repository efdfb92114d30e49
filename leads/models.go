package leads

import (
	"time"

	"gorm.io/gorm"
)

// LeadModel is the canonical, persistence-ready lead record.
// Nullable columns use pointers so NULL survives both the store and the
// offline SQL emitter.
type LeadModel struct {
	ID             string    `gorm:"primaryKey;type:text" json:"id"`
	OwnerID        string    `gorm:"not null;index" json:"owner_id"`
	ContactDate    *string   `gorm:"type:text" json:"contact_date,omitempty"` // YYYY-MM-DD
	Name           string    `gorm:"not null" json:"name"`
	ContactHandle  *string   `gorm:"index" json:"contact_handle,omitempty"` // WhatsApp/Instagram identifier
	Source         string    `gorm:"not null" json:"source"`
	BudgetSent     bool      `gorm:"not null" json:"budget_sent"`
	Outcome        string    `gorm:"not null" json:"outcome"`
	ContactQuality *string   `json:"contact_quality,omitempty"`
	ClosedValue    *float64  `json:"closed_value,omitempty"`
	Note           *string   `gorm:"type:text" json:"note,omitempty"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
}

// Canonical source values. Unrecognized raw input buckets into SourceAd.
const (
	SourceReferral  = "referral"
	SourceOrganic   = "organic_profile"
	SourceAd        = "ad"
	SourceReturning = "returning_customer"
)

// Canonical outcome values. Empty or unrecognized input buckets into
// OutcomeQuote.
const (
	OutcomeSale   = "sale"
	OutcomeQuote  = "quote_in_progress"
	OutcomeNoSale = "no_sale"
)

// Canonical contact quality values. Unrecognized input stays NULL.
const (
	QualityGood    = "good"
	QualityRegular = "regular"
	QualityPoor    = "poor"
)

func (LeadModel) TableName() string {
	return "leads"
}

// AutoMigrate creates the leads table
func AutoMigrate(db *gorm.DB) {
	db.AutoMigrate(&LeadModel{})
}
