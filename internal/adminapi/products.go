package adminapi

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/bitminded/backoffice/internal/app"
	"github.com/bitminded/backoffice/internal/domain"
	"github.com/bitminded/backoffice/internal/pricing"
	"github.com/bitminded/backoffice/internal/scaffold"
	"github.com/bitminded/backoffice/internal/webserver"
	"github.com/bitminded/backoffice/pkg/common"
)

type productPayload struct {
	Name             string  `json:"name" form:"name"`
	Slug             string  `json:"slug" form:"slug"`
	Description      string  `json:"description" form:"description"`
	Status           string  `json:"status" form:"status"`
	PricingType      string  `json:"pricing_type" form:"pricing_type"`
	PriceCHF         float64 `json:"price_chf" form:"price_chf"`
	PriceEUR         float64 `json:"price_eur" form:"price_eur"`
	PriceUSD         float64 `json:"price_usd" form:"price_usd"`
	GithubRepo       string  `json:"github_repo" form:"github_repo"`
	CloudflareDomain string  `json:"cloudflare_domain" form:"cloudflare_domain"`
	StripeProductId  string  `json:"stripe_product_id" form:"stripe_product_id"`
	IconUrl          string  `json:"icon_url" form:"icon_url"`
	ScreenshotUrls   string  `json:"screenshot_urls" form:"screenshot_urls"`
	TechnicalSpec    string  `json:"technical_spec" form:"technical_spec"`
}

// registerProductRoutes registers the product panel endpoints.
func registerProductRoutes() {
	webserver.ApiGET("/crm/products", listProducts)
	webserver.ApiGET("/crm/products/:id", getProduct)
	webserver.ApiPOST("/crm/products", createProduct)
	webserver.ApiPUT("/crm/products/:id", updateProduct)
	webserver.ApiDELETE("/crm/products/:id", deleteProduct)
	webserver.ApiPUT("/crm/products/:id/status", updateProductStatus)
	webserver.ApiPUT("/crm/products/:id/sale", updateProductSale)
	webserver.ApiPOST("/crm/products/:id/stripe", createProductStripe)
	webserver.ApiPOST("/crm/products/:id/scaffold", scaffoldProduct)
}

func listProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)

	q := strings.TrimSpace(c.QueryParam("q"))
	status := strings.TrimSpace(c.QueryParam("status"))
	pricingType := strings.TrimSpace(c.QueryParam("pricing_type"))
	onSale := strings.TrimSpace(c.QueryParam("on_sale"))

	sortField := strings.TrimSpace(c.QueryParam("sort"))
	order := strings.ToUpper(strings.TrimSpace(c.QueryParam("order")))
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	// whitelist allowed sort columns to avoid SQL injection
	allowed := map[string]string{
		"id":         "id",
		"name":       "name",
		"slug":       "slug",
		"status":     "status",
		"price_chf":  "price_chf",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	sortCol, sortOk := allowed[sortField]
	if !sortOk || sortCol == "" {
		sortCol = "id"
	}

	db := GetDB(c).Model(&domain.Product{})
	if q != "" {
		kw := "%" + strings.ToLower(q) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(slug) LIKE ?", kw, kw)
	}
	if status != "" {
		db = db.Where("status IN ?", strings.Split(status, ","))
	}
	if pricingType != "" {
		db = db.Where("pricing_type = ?", pricingType)
	}
	if onSale == "true" {
		db = db.Where("is_on_sale = ?", true)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	var rows []domain.Product
	if err := db.Order(sortCol + " " + order).Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	return paged(c, rows, total, page, pageSize)
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	return ok(c, p)
}

var slugCleanRe = regexp.MustCompile(`[^a-z0-9-]+`)

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "-")
	s = slugCleanRe.ReplaceAllString(s, "")
	return strings.Trim(s, "-")
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Name is required", nil)
	}
	if payload.Slug == "" {
		payload.Slug = slugify(payload.Name)
	}
	if payload.Status == "" {
		payload.Status = domain.ProductStatusDraft
	}
	if !domain.ValidProductStatus(payload.Status) {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unknown product status", payload.Status)
	}
	if payload.PricingType == "" {
		payload.PricingType = domain.PricingOneTime
	}

	now := time.Now()
	p := domain.Product{
		ID:               common.UUIDint64(),
		Name:             payload.Name,
		Slug:             payload.Slug,
		Description:      payload.Description,
		Status:           payload.Status,
		PricingType:      payload.PricingType,
		PriceCHF:         payload.PriceCHF,
		PriceEUR:         payload.PriceEUR,
		PriceUSD:         payload.PriceUSD,
		GithubRepo:       strings.TrimSpace(payload.GithubRepo),
		CloudflareDomain: strings.TrimSpace(payload.CloudflareDomain),
		StripeProductId:  strings.TrimSpace(payload.StripeProductId),
		IconUrl:          strings.TrimSpace(payload.IconUrl),
		ScreenshotUrls:   payload.ScreenshotUrls,
		TechnicalSpec:    payload.TechnicalSpec,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := GetDB(c).Create(&p).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create product", err.Error())
	}
	writeOprLog(c, "product_create", p.Slug)
	return ok(c, p)
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}

	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Name is required", nil)
	}

	p.Name = payload.Name
	if payload.Slug != "" {
		p.Slug = payload.Slug
	}
	p.Description = payload.Description
	if payload.PricingType != "" {
		p.PricingType = payload.PricingType
	}
	p.PriceCHF = payload.PriceCHF
	p.PriceEUR = payload.PriceEUR
	p.PriceUSD = payload.PriceUSD
	p.GithubRepo = strings.TrimSpace(payload.GithubRepo)
	p.CloudflareDomain = strings.TrimSpace(payload.CloudflareDomain)
	p.StripeProductId = strings.TrimSpace(payload.StripeProductId)
	p.IconUrl = strings.TrimSpace(payload.IconUrl)
	p.ScreenshotUrls = payload.ScreenshotUrls
	p.TechnicalSpec = payload.TechnicalSpec
	p.UpdatedAt = time.Now()

	if err := GetDB(c).Save(&p).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update product", err.Error())
	}
	return ok(c, p)
}

func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	if err := GetDB(c).Where("id = ?", id).Delete(&domain.Product{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete product", err.Error())
	}
	writeOprLog(c, "product_delete", p.Slug)

	// Archiving the linked Stripe product is best-effort; the catalog row
	// is already gone.
	var warnings []string
	if stripeClient.Enabled() && p.StripeProductId != "" {
		if err := stripeClient.ArchiveProduct(c.Request().Context(), p.StripeProductId); err != nil {
			zap.L().Warn("stripe archive failed", zap.String("slug", p.Slug), zap.Error(err))
			warnings = append(warnings, "stripe archive: "+err.Error())
		}
	}
	return okWarn(c, map[string]interface{}{"id": id}, warnings)
}

type statusPayload struct {
	Status string `json:"status" form:"status"`
}

// updateProductStatus handles status transitions. Publishing (status →
// active) requires the GitHub/Cloudflare/Stripe/icon linkage unless the
// record is a test entity.
func updateProductStatus(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var payload statusPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse status", err.Error())
	}
	if !domain.ValidProductStatus(payload.Status) {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unknown product status", payload.Status)
	}

	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}

	if payload.Status == domain.ProductStatusActive && !p.IsTestEntity() {
		if missing := p.MissingPublishFields(); len(missing) > 0 {
			return fail(c, http.StatusBadRequest, "PUBLISH_BLOCKED",
				"Cannot publish: missing "+strings.Join(missing, ", "), missing)
		}
	}

	if err := GetDB(c).Model(&domain.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     payload.Status,
		"updated_at": time.Now(),
	}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update status", err.Error())
	}
	writeOprLog(c, "product_status", p.Slug+" -> "+payload.Status)
	if payload.Status == domain.ProductStatusActive {
		GetApp(c).Bus().Publish(app.EventProductPublished, p.ID)
	}
	p.Status = payload.Status
	return ok(c, p)
}

type salePayload struct {
	Enabled            bool     `json:"enabled" form:"enabled"`
	DiscountPercentage *float64 `json:"discount_percentage" form:"discount_percentage"`
	StartsAt           string   `json:"starts_at" form:"starts_at"`
	EndsAt             string   `json:"ends_at" form:"ends_at"`
}

// updateProductSale enables or clears a sale. Sale prices are derived from
// the discount; the Stripe sale-price sync is best-effort and reported as
// warnings.
func updateProductSale(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}

	var payload salePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse sale", err.Error())
	}

	now := time.Now()
	if !payload.Enabled {
		if err := GetDB(c).Model(&domain.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
			"is_on_sale":           false,
			"discount_percentage":  nil,
			"sale_starts_at":       nil,
			"sale_ends_at":         nil,
			"sale_price_chf":       nil,
			"sale_price_eur":       nil,
			"sale_price_usd":       nil,
			"stripe_sale_price_id": "",
			"updated_at":           now,
		}).Error; err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to clear sale", err.Error())
		}
		writeOprLog(c, "product_sale_clear", p.Slug)

		var warnings []string
		if stripeClient.Enabled() && p.StripeSalePriceId != "" {
			if err := stripeClient.DeactivatePrice(c.Request().Context(), p.StripeSalePriceId); err != nil {
				zap.L().Warn("stripe sale price deactivation failed", zap.String("slug", p.Slug), zap.Error(err))
				warnings = append(warnings, "stripe sale price deactivation: "+err.Error())
			}
		}
		return okWarn(c, map[string]interface{}{"id": id, "is_on_sale": false}, warnings)
	}

	if err := pricing.ValidateDiscount(payload.DiscountPercentage); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_DISCOUNT", err.Error(), nil)
	}
	if !pricing.HasSale(payload.DiscountPercentage) {
		return fail(c, http.StatusBadRequest, "INVALID_DISCOUNT", "A discount percentage is required to enable a sale", nil)
	}
	discount := *payload.DiscountPercentage

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

	saleCHF := pricing.SalePrice(p.PriceCHF, discount)
	saleEUR := pricing.SalePrice(p.PriceEUR, discount)
	saleUSD := pricing.SalePrice(p.PriceUSD, discount)

	if err := GetDB(c).Model(&domain.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_on_sale":          true,
		"discount_percentage": discount,
		"sale_starts_at":      startsAt,
		"sale_ends_at":        endsAt,
		"sale_price_chf":      saleCHF,
		"sale_price_eur":      saleEUR,
		"sale_price_usd":      saleUSD,
		"updated_at":          now,
	}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save sale", err.Error())
	}
	writeOprLog(c, "product_sale", p.Slug)

	// Best-effort Stripe sale price; the sale itself stays on.
	var warnings []string
	if stripeClient.Enabled() && p.StripeProductId != "" {
		interval := ""
		if p.PricingType == domain.PricingSubscription {
			interval = "month"
		}
		priceID, err := stripeClient.CreatePrice(c.Request().Context(), p.StripeProductId, "chf", saleCHF, interval)
		if err != nil {
			zap.L().Warn("stripe sale price sync failed", zap.String("slug", p.Slug), zap.Error(err))
			warnings = append(warnings, "stripe sale price: "+err.Error())
		} else if err := GetDB(c).Model(&domain.Product{}).Where("id = ?", id).
			Update("stripe_sale_price_id", priceID).Error; err != nil {
			warnings = append(warnings, "save stripe sale price id: "+err.Error())
		}
	}

	return okWarn(c, map[string]interface{}{
		"id":             id,
		"is_on_sale":     true,
		"sale_price_chf": saleCHF,
		"sale_price_eur": saleEUR,
		"sale_price_usd": saleUSD,
	}, warnings)
}

// createProductStripe creates the Stripe product plus one price per
// configured currency and stores the returned ids.
func createProductStripe(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	if !stripeClient.Enabled() {
		return fail(c, http.StatusBadRequest, "STRIPE_DISABLED", "No Stripe API key is configured", nil)
	}
	if p.StripeProductId != "" {
		return fail(c, http.StatusBadRequest, "ALREADY_LINKED", "Product already has a Stripe product", p.StripeProductId)
	}

	ctx := c.Request().Context()
	stripeID, err := stripeClient.CreateProduct(ctx, p.Name, p.Description)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STRIPE_ERROR", "Failed to create Stripe product", err.Error())
	}

	interval := ""
	if p.PricingType == domain.PricingSubscription {
		interval = "month"
	}

	// The product id write-back must not be lost to a price failure, so
	// prices are best-effort once the product exists.
	var warnings []string
	priceID := ""
	for _, cur := range []struct {
		code   string
		amount float64
	}{{"chf", p.PriceCHF}, {"eur", p.PriceEUR}, {"usd", p.PriceUSD}} {
		if cur.amount <= 0 {
			continue
		}
		pid, err := stripeClient.CreatePrice(ctx, stripeID, cur.code, cur.amount, interval)
		if err != nil {
			warnings = append(warnings, "stripe price "+cur.code+": "+err.Error())
			continue
		}
		if priceID == "" {
			priceID = pid
		}
	}

	if err := GetDB(c).Model(&domain.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
		"stripe_product_id": stripeID,
		"stripe_price_id":   priceID,
		"updated_at":        time.Now(),
	}).Error; err != nil {
		warnings = append(warnings, "save stripe ids: "+err.Error())
	}
	writeOprLog(c, "product_stripe_create", p.Slug)

	return okWarn(c, map[string]interface{}{
		"id":                id,
		"stripe_product_id": stripeID,
		"stripe_price_id":   priceID,
	}, warnings)
}

// scaffoldProduct provisions the product's GitHub repository from its
// technical specification and writes back the repo linkage fields. The call
// is rate-limited per operator.
func scaffoldProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	if strings.TrimSpace(p.TechnicalSpec) == "" {
		return fail(c, http.StatusBadRequest, "MISSING_SPEC", "Product has no technical specification to scaffold from", nil)
	}

	if allowed, rsp := checkRateLimit(c, "create-github-repository", "scaffold"); !allowed {
		return rsp
	}

	var screenshots []string
	for _, u := range strings.Split(p.ScreenshotUrls, "\n") {
		if u = strings.TrimSpace(u); u != "" {
			screenshots = append(screenshots, u)
		}
	}

	result, err := orchestrator.Provision(c.Request().Context(), scaffold.Request{
		ProductName:    p.Name,
		Slug:           p.Slug,
		Spec:           p.TechnicalSpec,
		Private:        false,
		IconURL:        p.IconUrl,
		ScreenshotURLs: screenshots,
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "SCAFFOLD_FAILED", "Repository scaffolding failed", err.Error())
	}

	if result.DefaultBranch == "" {
		result.DefaultBranch = GetApp(c).GetSettingsStringValue("scaffold", "default_branch")
	}
	if !result.Existed {
		if err := GetDB(c).Model(&domain.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
			"github_repo":   result.FullName,
			"github_branch": result.DefaultBranch,
			"updated_at":    time.Now(),
		}).Error; err != nil {
			result.Warnings = append(result.Warnings, "save repo linkage: "+err.Error())
		}
	}
	writeOprLog(c, "product_scaffold", p.Slug)

	return okWarn(c, result, result.Warnings)
}
