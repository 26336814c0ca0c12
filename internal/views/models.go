package views

import (
	"html/template"

	"github.com/ignitoosolutions/ignito1/internal/checkout"
	"github.com/ignitoosolutions/ignito1/internal/domain"
	"github.com/ignitoosolutions/ignito1/internal/format"
	"github.com/ignitoosolutions/ignito1/internal/payments"
)

// Page is the data every full page renders with.
type Page struct {
	Title  string
	Active string
	Theme  string
	Cart   CartView
	Body   any
}

// ServiceCard is a catalog entry on the home and services pages.
type ServiceCard struct {
	Slug         string
	Name         string
	Description  string
	PriceDisplay string
	Price        string
	PriceValue   float64
	Image        string
}

// ServiceCards converts catalog services for display.
func ServiceCards(services []domain.Service, currency string) []ServiceCard {
	cards := make([]ServiceCard, 0, len(services))
	for _, svc := range services {
		cards = append(cards, ServiceCard{
			Slug:         svc.Slug,
			Name:         svc.Name,
			Description:  svc.Description,
			PriceDisplay: svc.PriceDisplay,
			Price:        format.Price(svc.Price, currency),
			PriceValue:   svc.Price,
			Image:        svc.Image,
		})
	}
	return cards
}

// CatalogView backs the home and services pages.
type CatalogView struct {
	Services []ServiceCard
}

// CheckoutView backs the checkout page.
type CheckoutView struct {
	Summary   checkout.Summary
	Button    payments.Button
	HasButton bool
	Notice    string
	Form      domain.Buyer
}

// CompleteView backs the order confirmation page.
type CompleteView struct {
	OrderID string
}

// ContactView backs the contact page.
type ContactView struct {
	Notice    string
	Success   bool
	Form      domain.Buyer
	Latitude  float64
	Longitude float64
}

// CalculatorRow is one service line in the calculator form.
type CalculatorRow struct {
	Slug      string
	Name      string
	UnitPrice string
	Quantity  int
	Months    int
	Cost      string
}

// CalculatorView backs the calculator page and its result fragment.
type CalculatorView struct {
	Rows  []CalculatorRow
	Total string
	Error string
}

// PostView is a rendered blog post. BodyHTML has already been sanitised.
type PostView struct {
	ID        string
	Title     string
	BodyHTML  template.HTML
	CoverURL  template.URL
	CreatedAt string
}

// BlogView backs the blog page and its post list fragment.
type BlogView struct {
	Posts []PostView
	Error string
	Draft domain.Post
}

// PostViews converts composed posts for display.
func PostViews(posts []domain.Post) []PostView {
	out := make([]PostView, 0, len(posts))
	for _, post := range posts {
		out = append(out, PostView{
			ID:    post.ID,
			Title: post.Title,
			// Sanitised by the blog composer's UGC policy.
			BodyHTML: template.HTML(post.BodyHTML),
			// Built by blog.ReadCover from sniffed image bytes only.
			CoverURL:  template.URL(post.CoverURL),
			CreatedAt: post.CreatedAt.Format("Jan 2, 2006 15:04"),
		})
	}
	return out
}
