package domain

import (
	"strings"
	"time"
)

// Product status values. Transitions are enforced at action time by the
// admin API, not by database constraints.
const (
	ProductStatusDraft      = "draft"
	ProductStatusActive     = "active"
	ProductStatusBeta       = "beta"
	ProductStatusComingSoon = "coming-soon"
	ProductStatusSuspended  = "suspended"
	ProductStatusArchived   = "archived"
)

const (
	PricingOneTime      = "one_time"
	PricingSubscription = "subscription"
	PricingFreemium     = "freemium"
)

// Product is a sellable catalog entry with GitHub/Cloudflare/Stripe linkage.
type Product struct {
	ID          int64  `gorm:"primaryKey" json:"id,string" form:"id"`
	Name        string `gorm:"index;size:200" json:"name" form:"name"`
	Slug        string `gorm:"uniqueIndex;size:200" json:"slug" form:"slug"`
	Description string `gorm:"type:text" json:"description" form:"description"`
	Status      string `gorm:"size:32;index;default:'draft'" json:"status" form:"status"`
	PricingType string `gorm:"size:32;default:'one_time'" json:"pricing_type" form:"pricing_type"`

	// Base prices per currency, in main units.
	PriceCHF float64 `json:"price_chf" form:"price_chf"`
	PriceEUR float64 `json:"price_eur" form:"price_eur"`
	PriceUSD float64 `json:"price_usd" form:"price_usd"`

	// Sale fields. Sale prices are derived from the discount and stored
	// alongside the base prices.
	IsOnSale           bool       `gorm:"default:false" json:"is_on_sale" form:"is_on_sale"`
	DiscountPercentage *float64   `json:"discount_percentage" form:"discount_percentage"`
	SaleStartsAt       *time.Time `json:"sale_starts_at"`
	SaleEndsAt         *time.Time `json:"sale_ends_at"`
	SalePriceCHF       *float64   `json:"sale_price_chf"`
	SalePriceEUR       *float64   `json:"sale_price_eur"`
	SalePriceUSD       *float64   `json:"sale_price_usd"`

	// External linkage. All four of GithubRepo/CloudflareDomain/
	// StripeProductId/IconUrl must be set before publishing.
	GithubRepo        string `gorm:"size:200" json:"github_repo" form:"github_repo"`
	GithubBranch      string `gorm:"size:64" json:"github_branch" form:"github_branch"`
	CloudflareDomain  string `gorm:"size:200" json:"cloudflare_domain" form:"cloudflare_domain"`
	StripeProductId   string `gorm:"size:100;index" json:"stripe_product_id" form:"stripe_product_id"`
	StripePriceId     string `gorm:"size:100" json:"stripe_price_id" form:"stripe_price_id"`
	StripeSalePriceId string `gorm:"size:100" json:"stripe_sale_price_id"`
	IconUrl           string `gorm:"size:1024" json:"icon_url" form:"icon_url"`
	ScreenshotUrls    string `gorm:"type:text" json:"screenshot_urls" form:"screenshot_urls"`

	// TechnicalSpec is the free-text specification fed to the framework
	// detector when scaffolding the product repository.
	TechnicalSpec string `gorm:"type:text" json:"technical_spec" form:"technical_spec"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// IsTestEntity reports whether the product is a seeding/test record that
// bypasses publish validation.
func (p *Product) IsTestEntity() bool {
	return strings.HasPrefix(p.Name, "Test ") ||
		strings.HasPrefix(p.StripeProductId, "prod_test_")
}

// MissingPublishFields returns the linkage fields still unset, in the fixed
// check order: GitHub repository, Cloudflare domain, Stripe product, icon.
func (p *Product) MissingPublishFields() []string {
	var missing []string
	if strings.TrimSpace(p.GithubRepo) == "" {
		missing = append(missing, "GitHub repository")
	}
	if strings.TrimSpace(p.CloudflareDomain) == "" {
		missing = append(missing, "Cloudflare domain")
	}
	if strings.TrimSpace(p.StripeProductId) == "" {
		missing = append(missing, "Stripe product")
	}
	if strings.TrimSpace(p.IconUrl) == "" {
		missing = append(missing, "icon")
	}
	return missing
}

// ValidProductStatus reports whether s is one of the known status values.
func ValidProductStatus(s string) bool {
	switch s {
	case ProductStatusDraft, ProductStatusActive, ProductStatusBeta,
		ProductStatusComingSoon, ProductStatusSuspended, ProductStatusArchived:
		return true
	}
	return false
}
