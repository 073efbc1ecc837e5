package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitminded/backoffice/internal/domain"
)

func f(v float64) *float64 { return &v }

func TestSalePrice(t *testing.T) {
	cases := []struct {
		price    float64
		discount float64
		want     float64
	}{
		{100, 20, 80},
		{49.90, 10, 44.91},
		{19.99, 33, 13.39},
		{100, 0, 100},
		{100, 100, 0},
		{250, 12.5, 218.75},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, SalePrice(tc.price, tc.discount), 0.0001,
			"price=%v discount=%v", tc.price, tc.discount)
	}
}

func TestValidateDiscount(t *testing.T) {
	assert.NoError(t, ValidateDiscount(nil))
	assert.NoError(t, ValidateDiscount(f(0)))
	assert.NoError(t, ValidateDiscount(f(0.5)))
	assert.NoError(t, ValidateDiscount(f(100)))
	assert.ErrorIs(t, ValidateDiscount(f(-1)), ErrDiscountOutOfRange)
	assert.ErrorIs(t, ValidateDiscount(f(100.01)), ErrDiscountOutOfRange)
	assert.ErrorIs(t, ValidateDiscount(f(250)), ErrDiscountOutOfRange)
}

func TestHasSale(t *testing.T) {
	assert.False(t, HasSale(nil))
	assert.False(t, HasSale(f(0)))
	assert.True(t, HasSale(f(10)))
}

func TestValidatePricingFixed(t *testing.T) {
	assert.NoError(t, ValidatePricing(domain.ServicePricingFixed, `{"chf":{"amount":490},"eur":{"amount":510}}`))
	assert.Error(t, ValidatePricing(domain.ServicePricingFixed, `{"chf":{}}`))
	assert.Error(t, ValidatePricing(domain.ServicePricingFixed, `{"chf":{"amount":-5}}`))
}

func TestValidatePricingRange(t *testing.T) {
	assert.NoError(t, ValidatePricing(domain.ServicePricingRange, `{"chf":{"min":100,"max":500}}`))
	assert.Error(t, ValidatePricing(domain.ServicePricingRange, `{"chf":{"min":500,"max":100}}`))
	assert.Error(t, ValidatePricing(domain.ServicePricingRange, `{"chf":{"min":100}}`))
}

func TestValidatePricingHourly(t *testing.T) {
	assert.NoError(t, ValidatePricing(domain.ServicePricingHourly, `{"chf":{"hourly_rate":180}}`))
	assert.Error(t, ValidatePricing(domain.ServicePricingHourly, `{"chf":{"hourly_rate":0}}`))
}

func TestValidatePricingSubscription(t *testing.T) {
	assert.NoError(t, ValidatePricing(domain.ServicePricingSubscription, `{"chf":{"monthly":29,"yearly":290}}`))
	assert.NoError(t, ValidatePricing(domain.ServicePricingSubscription, `{"chf":{"yearly":290,"member_yearly":190}}`))
	assert.Error(t, ValidatePricing(domain.ServicePricingSubscription, `{"chf":{"member_monthly":19}}`))
}

func TestValidatePricingVariable(t *testing.T) {
	assert.NoError(t, ValidatePricing(domain.ServicePricingVariable, `{"chf":{"note":"quoted per project"}}`))
}

func TestValidatePricingRejectsBadDocuments(t *testing.T) {
	assert.Error(t, ValidatePricing(domain.ServicePricingFixed, ""))
	assert.Error(t, ValidatePricing(domain.ServicePricingFixed, `[]`))
	assert.Error(t, ValidatePricing(domain.ServicePricingFixed, `{}`))
	assert.Error(t, ValidatePricing("bogus", `{"chf":{"amount":1}}`))
}
