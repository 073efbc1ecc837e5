package domain

import (
	"regexp"
	"strings"
	"time"
)

const (
	PaymentStripe       = "stripe"
	PaymentBankTransfer = "bank_transfer"
)

// Service pricing types. The pricing JSON shape depends on this value,
// see pricing.ValidatePricing.
const (
	ServicePricingFixed        = "fixed"
	ServicePricingRange        = "range"
	ServicePricingHourly       = "hourly"
	ServicePricingSubscription = "subscription"
	ServicePricingVariable     = "variable"
)

// Service is a billable service offering (consulting, setup, support...).
type Service struct {
	ID              int64  `gorm:"primaryKey" json:"id,string" form:"id"`
	Name            string `gorm:"index;size:200" json:"name" form:"name"`
	Slug            string `gorm:"uniqueIndex;size:200" json:"slug" form:"slug"`
	Description     string `gorm:"type:text" json:"description" form:"description"`
	ServiceCategory string `gorm:"size:100;index" json:"service_category" form:"service_category"`
	PaymentMethod   string `gorm:"size:32" json:"payment_method" form:"payment_method"`
	PricingType     string `gorm:"size:32;default:'fixed'" json:"pricing_type" form:"pricing_type"`
	IsMembership    bool   `gorm:"default:false" json:"is_membership" form:"is_membership"`

	// Pricing is a JSON object keyed by lowercase currency code; its shape
	// depends on PricingType.
	Pricing string `gorm:"type:text" json:"pricing" form:"pricing"`

	IsOnSale           bool       `gorm:"default:false" json:"is_on_sale" form:"is_on_sale"`
	DiscountPercentage *float64   `json:"discount_percentage" form:"discount_percentage"`
	SaleStartsAt       *time.Time `json:"sale_starts_at"`
	SaleEndsAt         *time.Time `json:"sale_ends_at"`

	StripeProductId string `gorm:"size:100;index" json:"stripe_product_id" form:"stripe_product_id"`
	// StripePriceIds is a JSON object mapping plan tier to Stripe price id,
	// e.g. {"standard":"price_x","member":"price_y"}.
	StripePriceIds string `gorm:"type:text" json:"stripe_price_ids"`

	Status    string    `gorm:"size:32;index;default:'draft'" json:"status" form:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Service) TableName() string {
	return "services"
}

var numericCostRe = regexp.MustCompile(`\d`)

// consulting-like categories are invoiced by bank transfer rather than
// checkout.
var bankTransferCategories = map[string]bool{
	"consulting":  true,
	"audit":       true,
	"development": true,
	"training":    true,
}

// DerivePaymentMethod picks the payment method from the service category and
// the free-form cost text: consulting-like categories and non-numeric costs
// ("on request") are invoiced by bank transfer, everything else goes through
// Stripe checkout.
func DerivePaymentMethod(category, costText string) string {
	if bankTransferCategories[strings.ToLower(strings.TrimSpace(category))] {
		return PaymentBankTransfer
	}
	if strings.TrimSpace(costText) != "" && !numericCostRe.MatchString(costText) {
		return PaymentBankTransfer
	}
	return PaymentStripe
}

// ValidServicePricingType reports whether s is a known pricing type.
func ValidServicePricingType(s string) bool {
	switch s {
	case ServicePricingFixed, ServicePricingRange, ServicePricingHourly,
		ServicePricingSubscription, ServicePricingVariable:
		return true
	}
	return false
}
