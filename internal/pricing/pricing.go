// Package pricing holds the sale-price arithmetic and the per-currency
// pricing JSON validation shared by the product and service panels.
package pricing

import (
	"math"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/bitminded/backoffice/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrDiscountOutOfRange is returned for discounts outside (0, 100].
var ErrDiscountOutOfRange = errors.New("discount percentage must be between 0 and 100")

// SalePrice computes the discounted price rounded to two decimals.
func SalePrice(price, discount float64) float64 {
	return math.Round(price*(1-discount/100)*100) / 100
}

// ValidateDiscount checks a discount percentage before any sale write.
// nil or zero means "no sale" and is valid; out-of-range values are rejected
// before reaching the calculator.
func ValidateDiscount(discount *float64) error {
	if discount == nil || *discount == 0 {
		return nil
	}
	if *discount < 0 || *discount > 100 {
		return ErrDiscountOutOfRange
	}
	return nil
}

// HasSale reports whether the discount yields an actual sale price.
func HasSale(discount *float64) bool {
	return discount != nil && *discount > 0
}

// currency shapes per service pricing type
type fixedPricing struct {
	Amount *float64 `json:"amount"`
}

type rangePricing struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

type hourlyPricing struct {
	HourlyRate *float64 `json:"hourly_rate"`
}

type subscriptionPricing struct {
	Monthly *float64 `json:"monthly"`
	Yearly  *float64 `json:"yearly"`
	// Member rates apply when the service is membership-discounted.
	MemberMonthly *float64 `json:"member_monthly"`
	MemberYearly  *float64 `json:"member_yearly"`
}

type variablePricing struct {
	Note string `json:"note"`
}

// ValidatePricing checks a service pricing JSON document against its
// pricing type: an object keyed by lowercase currency code whose value shape
// depends on the type.
func ValidatePricing(pricingType, raw string) error {
	if raw == "" {
		return errors.New("pricing is required")
	}
	var byCurrency map[string]jsoniter.RawMessage
	if err := json.UnmarshalFromString(raw, &byCurrency); err != nil {
		return errors.Wrap(err, "pricing must be a JSON object keyed by currency")
	}
	if len(byCurrency) == 0 {
		return errors.New("pricing must contain at least one currency")
	}
	for currency, entry := range byCurrency {
		if err := validateEntry(pricingType, entry); err != nil {
			return errors.Wrapf(err, "pricing[%s]", currency)
		}
	}
	return nil
}

func validateEntry(pricingType string, entry jsoniter.RawMessage) error {
	switch pricingType {
	case domain.ServicePricingFixed:
		var p fixedPricing
		if err := json.Unmarshal(entry, &p); err != nil {
			return err
		}
		if p.Amount == nil || *p.Amount < 0 {
			return errors.New("amount is required and must be >= 0")
		}
	case domain.ServicePricingRange:
		var p rangePricing
		if err := json.Unmarshal(entry, &p); err != nil {
			return err
		}
		if p.Min == nil || p.Max == nil {
			return errors.New("min and max are required")
		}
		if *p.Min < 0 || *p.Max < *p.Min {
			return errors.New("range must satisfy 0 <= min <= max")
		}
	case domain.ServicePricingHourly:
		var p hourlyPricing
		if err := json.Unmarshal(entry, &p); err != nil {
			return err
		}
		if p.HourlyRate == nil || *p.HourlyRate <= 0 {
			return errors.New("hourly_rate is required and must be > 0")
		}
	case domain.ServicePricingSubscription:
		var p subscriptionPricing
		if err := json.Unmarshal(entry, &p); err != nil {
			return err
		}
		if p.Monthly == nil && p.Yearly == nil {
			return errors.New("monthly or yearly rate is required")
		}
	case domain.ServicePricingVariable:
		var p variablePricing
		if err := json.Unmarshal(entry, &p); err != nil {
			return err
		}
	default:
		return errors.Errorf("unknown pricing type %q", pricingType)
	}
	return nil
}
