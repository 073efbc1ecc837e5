package adminapi

import (
	"net/http"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"

	"github.com/bitminded/backoffice/internal/domain"
	"github.com/bitminded/backoffice/internal/webserver"
)

func registerExportRoutes() {
	webserver.ApiGET("/crm/products/export", exportProducts)
	webserver.ApiGET("/crm/services/export", exportServices)
}

type productCSVRow struct {
	ID          int64   `csv:"id"`
	Name        string  `csv:"name"`
	Slug        string  `csv:"slug"`
	Status      string  `csv:"status"`
	PricingType string  `csv:"pricing_type"`
	PriceCHF    float64 `csv:"price_chf"`
	PriceEUR    float64 `csv:"price_eur"`
	PriceUSD    float64 `csv:"price_usd"`
	IsOnSale    bool    `csv:"is_on_sale"`
	GithubRepo  string  `csv:"github_repo"`
	StripeId    string  `csv:"stripe_product_id"`
	CreatedAt   string  `csv:"created_at"`
}

func exportProducts(c echo.Context) error {
	var rows []domain.Product
	if err := GetDB(c).Order("id").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	out := make([]productCSVRow, 0, len(rows))
	for _, p := range rows {
		out = append(out, productCSVRow{
			ID:          p.ID,
			Name:        p.Name,
			Slug:        p.Slug,
			Status:      p.Status,
			PricingType: p.PricingType,
			PriceCHF:    p.PriceCHF,
			PriceEUR:    p.PriceEUR,
			PriceUSD:    p.PriceUSD,
			IsOnSale:    p.IsOnSale,
			GithubRepo:  p.GithubRepo,
			StripeId:    p.StripeProductId,
			CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		})
	}

	data, err := gocsv.MarshalBytes(&out)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to render CSV", err.Error())
	}
	writeOprLog(c, "product_export", "")

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="products.csv"`)
	return c.Blob(http.StatusOK, "text/csv", data)
}

type serviceCSVRow struct {
	ID            int64  `csv:"id"`
	Name          string `csv:"name"`
	Slug          string `csv:"slug"`
	Category      string `csv:"service_category"`
	PaymentMethod string `csv:"payment_method"`
	PricingType   string `csv:"pricing_type"`
	IsMembership  bool   `csv:"is_membership"`
	Status        string `csv:"status"`
	CreatedAt     string `csv:"created_at"`
}

func exportServices(c echo.Context) error {
	var rows []domain.Service
	if err := GetDB(c).Order("id").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query services", err.Error())
	}

	out := make([]serviceCSVRow, 0, len(rows))
	for _, s := range rows {
		out = append(out, serviceCSVRow{
			ID:            s.ID,
			Name:          s.Name,
			Slug:          s.Slug,
			Category:      s.ServiceCategory,
			PaymentMethod: s.PaymentMethod,
			PricingType:   s.PricingType,
			IsMembership:  s.IsMembership,
			Status:        s.Status,
			CreatedAt:     s.CreatedAt.Format(time.RFC3339),
		})
	}

	data, err := gocsv.MarshalBytes(&out)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to render CSV", err.Error())
	}
	writeOprLog(c, "service_export", "")

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="services.csv"`)
	return c.Blob(http.StatusOK, "text/csv", data)
}
