package storefront

import (
	"embed"
	"html/template"

	"github.com/ajinkyamaster/storefront/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("storefront").Funcs(template.FuncMap{
	"price":     formatPrice,
	"lineTotal": lineTotal,
}).ParseFS(templateFS, "templates/*.html"))

type page struct {
	Title     string
	CartCount int
}

type productsPage struct {
	page
	Listing Listing
}

type cartPage struct {
	page
	Notice     string
	Items      []domain.CartLineItem
	TotalItems int
	TotalValue float64
}

type receiptPage struct {
	page
	Message string
	Receipt *domain.Receipt
}
