package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/bitminded/backoffice/internal/domain"
	"github.com/bitminded/backoffice/internal/pricing"
	"github.com/bitminded/backoffice/internal/webserver"
	"github.com/bitminded/backoffice/pkg/common"
)

type servicePayload struct {
	Name            string `json:"name" form:"name"`
	Slug            string `json:"slug" form:"slug"`
	Description     string `json:"description" form:"description"`
	ServiceCategory string `json:"service_category" form:"service_category"`
	PaymentMethod   string `json:"payment_method" form:"payment_method"`
	PricingType     string `json:"pricing_type" form:"pricing_type"`
	IsMembership    bool   `json:"is_membership" form:"is_membership"`
	Pricing         string `json:"pricing" form:"pricing"`
	Status          string `json:"status" form:"status"`
}

func registerServiceRoutes() {
	webserver.ApiGET("/crm/services", listServices)
	webserver.ApiGET("/crm/services/:id", getService)
	webserver.ApiPOST("/crm/services", createService)
	webserver.ApiPUT("/crm/services/:id", updateService)
	webserver.ApiDELETE("/crm/services/:id", deleteService)
	webserver.ApiPUT("/crm/services/:id/sale", updateServiceSale)
	webserver.ApiPOST("/crm/services/:id/stripe", createServiceStripe)
}

func listServices(c echo.Context) error {
	page, pageSize := parsePagination(c)

	q := strings.TrimSpace(c.QueryParam("q"))
	category := strings.TrimSpace(c.QueryParam("category"))
	pricingType := strings.TrimSpace(c.QueryParam("pricing_type"))
	status := strings.TrimSpace(c.QueryParam("status"))

	db := GetDB(c).Model(&domain.Service{})
	if q != "" {
		kw := "%" + strings.ToLower(q) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(slug) LIKE ?", kw, kw)
	}
	if category != "" {
		db = db.Where("service_category = ?", category)
	}
	if pricingType != "" {
		db = db.Where("pricing_type = ?", pricingType)
	}
	if status != "" {
		db = db.Where("status IN ?", strings.Split(status, ","))
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query services", err.Error())
	}

	var rows []domain.Service
	if err := db.Order("id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query services", err.Error())
	}

	return paged(c, rows, total, page, pageSize)
}

func getService(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid service ID", nil)
	}
	var s domain.Service
	if err := GetDB(c).Where("id = ?", id).First(&s).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Service not found", nil)
	}
	return ok(c, s)
}

// validateServicePayload normalizes the payload and fills derived fields.
// The payment method is only derived when the caller did not set one.
func validateServicePayload(payload *servicePayload) error {
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Name is required")
	}
	if payload.Slug == "" {
		payload.Slug = slugify(payload.Name)
	}
	if payload.PricingType == "" {
		payload.PricingType = domain.ServicePricingFixed
	}
	if !domain.ValidServicePricingType(payload.PricingType) {
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown pricing type: "+payload.PricingType)
	}
	if payload.Pricing != "" {
		if err := pricing.ValidatePricing(payload.PricingType, payload.Pricing); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid pricing: "+err.Error())
		}
	}
	if payload.PaymentMethod == "" {
		payload.PaymentMethod = domain.DerivePaymentMethod(payload.ServiceCategory, payload.Pricing)
	}
	if payload.Status == "" {
		payload.Status = domain.ProductStatusDraft
	}
	return nil
}

func createService(c echo.Context) error {
	var payload servicePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse service", err.Error())
	}
	if err := validateServicePayload(&payload); err != nil {
		he := err.(*echo.HTTPError)
		return fail(c, he.Code, "INVALID_REQUEST", he.Message.(string), nil)
	}

	now := time.Now()
	s := domain.Service{
		ID:              common.UUIDint64(),
		Name:            payload.Name,
		Slug:            payload.Slug,
		Description:     payload.Description,
		ServiceCategory: payload.ServiceCategory,
		PaymentMethod:   payload.PaymentMethod,
		PricingType:     payload.PricingType,
		IsMembership:    payload.IsMembership,
		Pricing:         payload.Pricing,
		Status:          payload.Status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := GetDB(c).Create(&s).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create service", err.Error())
	}
	writeOprLog(c, "service_create", s.Slug)
	return ok(c, s)
}

func updateService(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid service ID", nil)
	}
	var s domain.Service
	if err := GetDB(c).Where("id = ?", id).First(&s).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Service not found", nil)
	}

	var payload servicePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse service", err.Error())
	}
	if err := validateServicePayload(&payload); err != nil {
		he := err.(*echo.HTTPError)
		return fail(c, he.Code, "INVALID_REQUEST", he.Message.(string), nil)
	}

	s.Name = payload.Name
	s.Slug = payload.Slug
	s.Description = payload.Description
	s.ServiceCategory = payload.ServiceCategory
	s.PaymentMethod = payload.PaymentMethod
	s.PricingType = payload.PricingType
	s.IsMembership = payload.IsMembership
	s.Pricing = payload.Pricing
	if domain.ValidProductStatus(payload.Status) {
		s.Status = payload.Status
	}
	s.UpdatedAt = time.Now()

	if err := GetDB(c).Save(&s).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update service", err.Error())
	}
	return ok(c, s)
}

func deleteService(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid service ID", nil)
	}
	if err := GetDB(c).Where("id = ?", id).Delete(&domain.Service{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete service", err.Error())
	}
	writeOprLog(c, "service_delete", c.Param("id"))
	return ok(c, map[string]interface{}{"id": id})
}

func updateServiceSale(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid service ID", nil)
	}
	var s domain.Service
	if err := GetDB(c).Where("id = ?", id).First(&s).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Service not found", nil)
	}

	var payload salePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse sale", err.Error())
	}

	now := time.Now()
	if !payload.Enabled {
		if err := GetDB(c).Model(&domain.Service{}).Where("id = ?", id).Updates(map[string]interface{}{
			"is_on_sale":          false,
			"discount_percentage": nil,
			"sale_starts_at":      nil,
			"sale_ends_at":        nil,
			"updated_at":          now,
		}).Error; err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to clear sale", err.Error())
		}
		writeOprLog(c, "service_sale_clear", s.Slug)
		return ok(c, map[string]interface{}{"id": id, "is_on_sale": false})
	}

	if err := pricing.ValidateDiscount(payload.DiscountPercentage); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_DISCOUNT", err.Error(), nil)
	}
	if !pricing.HasSale(payload.DiscountPercentage) {
		return fail(c, http.StatusBadRequest, "INVALID_DISCOUNT", "A discount percentage is required to enable a sale", nil)
	}

	var startsAt, endsAt *time.Time
	if payload.StartsAt != "" {
		t, err := dateparse.ParseAny(payload.StartsAt)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_DATE", "Unable to parse sale start date", payload.StartsAt)
		}
		startsAt = &t
	}
	if payload.EndsAt != "" {
		t, err := dateparse.ParseAny(payload.EndsAt)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_DATE", "Unable to parse sale end date", payload.EndsAt)
		}
		endsAt = &t
	}
	if startsAt != nil && endsAt != nil && endsAt.Before(*startsAt) {
		return fail(c, http.StatusBadRequest, "INVALID_DATE", "Sale end date is before the start date", nil)
	}

	if err := GetDB(c).Model(&domain.Service{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_on_sale":          true,
		"discount_percentage": *payload.DiscountPercentage,
		"sale_starts_at":      startsAt,
		"sale_ends_at":        endsAt,
		"updated_at":          now,
	}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save sale", err.Error())
	}
	writeOprLog(c, "service_sale", s.Slug)
	return ok(c, map[string]interface{}{"id": id, "is_on_sale": true})
}

// createServiceStripe creates the Stripe product and one recurring price per
// subscription tier (or a single price for fixed pricing). The created price
// ids are stored as a tier→id map.
func createServiceStripe(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid service ID", nil)
	}
	var s domain.Service
	if err := GetDB(c).Where("id = ?", id).First(&s).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Service not found", nil)
	}
	if !stripeClient.Enabled() {
		return fail(c, http.StatusBadRequest, "STRIPE_DISABLED", "No Stripe API key is configured", nil)
	}
	if s.StripeProductId != "" {
		return fail(c, http.StatusBadRequest, "ALREADY_LINKED", "Service already has a Stripe product", s.StripeProductId)
	}

	ctx := c.Request().Context()
	stripeID, err := stripeClient.CreateProduct(ctx, s.Name, s.Description)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STRIPE_ERROR", "Failed to create Stripe product", err.Error())
	}

	var warnings []string
	priceIDs := map[string]string{}

	switch s.PricingType {
	case domain.ServicePricingSubscription:
		var tiers map[string]map[string]float64
		if err := jsoniter.UnmarshalFromString(s.Pricing, &tiers); err != nil {
			warnings = append(warnings, "pricing: "+err.Error())
			break
		}
		for currency, amounts := range tiers {
			for tier, amount := range amounts {
				if amount <= 0 {
					continue
				}
				interval := "month"
				if strings.Contains(tier, "yearly") {
					interval = "year"
				}
				pid, err := stripeClient.CreatePrice(ctx, stripeID, currency, amount, interval)
				if err != nil {
					warnings = append(warnings, "stripe price "+currency+"/"+tier+": "+err.Error())
					continue
				}
				priceIDs[currency+"_"+tier] = pid
			}
		}
	case domain.ServicePricingFixed:
		var fixed map[string]struct {
			Amount float64 `json:"amount"`
		}
		if err := jsoniter.UnmarshalFromString(s.Pricing, &fixed); err != nil {
			warnings = append(warnings, "pricing: "+err.Error())
			break
		}
		for currency, entry := range fixed {
			if entry.Amount <= 0 {
				continue
			}
			pid, err := stripeClient.CreatePrice(ctx, stripeID, currency, entry.Amount, "")
			if err != nil {
				warnings = append(warnings, "stripe price "+currency+": "+err.Error())
				continue
			}
			priceIDs[currency] = pid
		}
	default:
		// range, hourly and variable pricing are invoiced manually
	}

	encoded, err := jsoniter.MarshalToString(priceIDs)
	if err != nil {
		encoded = "{}"
	}
	if err := GetDB(c).Model(&domain.Service{}).Where("id = ?", id).Updates(map[string]interface{}{
		"stripe_product_id": stripeID,
		"stripe_price_ids":  encoded,
		"updated_at":        time.Now(),
	}).Error; err != nil {
		warnings = append(warnings, "save stripe ids: "+err.Error())
	}
	writeOprLog(c, "service_stripe_create", s.Slug)

	if len(warnings) > 0 {
		zap.L().Warn("stripe service sync finished with warnings",
			zap.String("slug", s.Slug), zap.Strings("warnings", warnings))
	}
	return okWarn(c, map[string]interface{}{
		"id":                id,
		"stripe_product_id": stripeID,
		"stripe_price_ids":  priceIDs,
	}, warnings)
}
