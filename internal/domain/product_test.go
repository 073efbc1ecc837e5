package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMissingPublishFieldsOrder(t *testing.T) {
	p := &Product{}
	assert.Equal(t, []string{"GitHub repository", "Cloudflare domain", "Stripe product", "icon"},
		p.MissingPublishFields())

	p.CloudflareDomain = "invoicer.bitminded.ch"
	assert.Equal(t, []string{"GitHub repository", "Stripe product", "icon"}, p.MissingPublishFields())

	p.GithubRepo = "acme/invoicer"
	p.StripeProductId = "prod_123"
	p.IconUrl = "https://cdn.example.com/icon.png"
	assert.Empty(t, p.MissingPublishFields())
}

func TestMissingPublishFieldsIgnoresWhitespace(t *testing.T) {
	p := &Product{GithubRepo: "   ", CloudflareDomain: "x.ch", StripeProductId: "prod_1", IconUrl: "u"}
	assert.Equal(t, []string{"GitHub repository"}, p.MissingPublishFields())
}

func TestIsTestEntity(t *testing.T) {
	assert.True(t, (&Product{Name: "Test Invoicer"}).IsTestEntity())
	assert.True(t, (&Product{StripeProductId: "prod_test_abc"}).IsTestEntity())
	assert.False(t, (&Product{Name: "Testimonial Builder"}).IsTestEntity())
	assert.False(t, (&Product{Name: "Invoicer", StripeProductId: "prod_live_abc"}).IsTestEntity())
}

func TestValidProductStatus(t *testing.T) {
	for _, s := range []string{"draft", "active", "beta", "coming-soon", "suspended", "archived"} {
		assert.True(t, ValidProductStatus(s), s)
	}
	assert.False(t, ValidProductStatus(""))
	assert.False(t, ValidProductStatus("published"))
}

func TestDerivePaymentMethod(t *testing.T) {
	// bank-transfer categories regardless of cost
	assert.Equal(t, PaymentBankTransfer, DerivePaymentMethod("consulting", `{"chf":{"amount":500}}`))
	assert.Equal(t, PaymentBankTransfer, DerivePaymentMethod("audit", ""))
	assert.Equal(t, PaymentBankTransfer, DerivePaymentMethod("development", `{"chf":{"amount":500}}`))
	assert.Equal(t, PaymentBankTransfer, DerivePaymentMethod("training", ""))

	// non-numeric cost forces bank transfer even for stripe categories
	assert.Equal(t, PaymentBankTransfer, DerivePaymentMethod("design", "on request"))

	// otherwise stripe
	assert.Equal(t, PaymentStripe, DerivePaymentMethod("design", `{"chf":{"amount":500}}`))
	assert.Equal(t, PaymentStripe, DerivePaymentMethod("hosting", ""))
}

func TestValidServicePricingType(t *testing.T) {
	for _, s := range []string{"fixed", "range", "hourly", "subscription", "variable"} {
		assert.True(t, ValidServicePricingType(s), s)
	}
	assert.False(t, ValidServicePricingType("tiered"))
}
