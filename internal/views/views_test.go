package views

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignitoosolutions/ignito1/internal/cart"
	"github.com/ignitoosolutions/ignito1/internal/catalog"
	"github.com/ignitoosolutions/ignito1/internal/checkout"
	"github.com/ignitoosolutions/ignito1/internal/domain"
	"github.com/ignitoosolutions/ignito1/internal/payments"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)
	return r
}

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func sampleCart() *cart.Cart {
	c := &cart.Cart{}
	c.Add("marketing", "Marketing", 12.5, 1)
	c.Add("offshore-teams", "Offshore Teams", 3, 2)
	return c
}

func TestBuildCartView(t *testing.T) {
	view := BuildCartView(sampleCart(), "USD")

	require.Len(t, view.Lines, 2)
	assert.Equal(t, "Marketing x 1", view.Lines[0].Label)
	assert.Equal(t, "$12.50", view.Lines[0].Subtotal)
	assert.Equal(t, "Offshore Teams x 2", view.Lines[1].Label)
	assert.Equal(t, "$6.00", view.Lines[1].Subtotal)
	assert.Equal(t, 1, view.Lines[1].Index)
	assert.Equal(t, "$18.50", view.Total)
	assert.Equal(t, 3, view.Count)
	assert.False(t, view.Empty)
}

func TestBuildCartViewNilCart(t *testing.T) {
	view := BuildCartView(nil, "USD")
	assert.True(t, view.Empty)
	assert.Equal(t, "$0.00", view.Total)
	assert.Zero(t, view.Count)
}

func TestCartViewTrigger(t *testing.T) {
	trigger := BuildCartView(sampleCart(), "USD").Trigger()
	payload, ok := trigger["cart:updated"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 3, payload["count"])
	assert.Equal(t, "$18.50", payload["total"])
}

func TestCartDropdownRendersLines(t *testing.T) {
	r := newTestRenderer(t)
	view := BuildCartView(sampleCart(), "USD")
	view.AutoHideMS = 3000

	var buf bytes.Buffer
	require.NoError(t, r.CartDropdown(&buf, view))
	doc := parse(t, buf.String())

	dropdown := doc.Find("#cart-dropdown")
	require.Equal(t, 1, dropdown.Length())
	autohide, _ := dropdown.Attr("data-autohide-ms")
	assert.Equal(t, "3000", autohide)

	items := doc.Find("li.cart-item")
	require.Equal(t, 2, items.Length())
	assert.Equal(t, "Marketing x 1", strings.TrimSpace(items.Eq(0).Find(".cart-item-label").Text()))
	assert.Equal(t, "$12.50", strings.TrimSpace(items.Eq(0).Find(".cart-item-subtotal").Text()))
	action, _ := items.Eq(1).Find("form").Attr("action")
	assert.Equal(t, "/cart/items/1/remove", action)

	assert.Equal(t, "$18.50", doc.Find("#cart-total").Text())
	assert.Equal(t, "3", doc.Find("#cart-count").Text())
	assert.Equal(t, 1, doc.Find("a[href='/checkout']").Length())
}

func TestCartDropdownEmpty(t *testing.T) {
	r := newTestRenderer(t)

	var buf bytes.Buffer
	require.NoError(t, r.CartDropdown(&buf, BuildCartView(&cart.Cart{}, "USD")))
	doc := parse(t, buf.String())

	assert.Zero(t, doc.Find("li.cart-item").Length())
	assert.Equal(t, "Your cart is empty.", strings.TrimSpace(doc.Find(".cart-empty").Text()))
	assert.Equal(t, "$0.00", doc.Find("#cart-total").Text())
	assert.Equal(t, "0", doc.Find("#cart-count").Text())
	_, hasAutohide := doc.Find("#cart-dropdown").Attr("data-autohide-ms")
	assert.False(t, hasAutohide)
}

func TestCartDropdownIsIdempotent(t *testing.T) {
	r := newTestRenderer(t)
	c := sampleCart()

	var first, second bytes.Buffer
	require.NoError(t, r.CartDropdown(&first, BuildCartView(c, "USD")))
	require.NoError(t, r.CartDropdown(&second, BuildCartView(c, "USD")))
	assert.Equal(t, first.String(), second.String())
}

func TestPageUnknown(t *testing.T) {
	r := newTestRenderer(t)
	err := r.Page(&bytes.Buffer{}, "missing", Page{})
	require.Error(t, err)
	assert.False(t, r.HasPage("missing"))
	assert.True(t, r.HasPage("home"))
}

func TestEveryPageRenders(t *testing.T) {
	r := newTestRenderer(t)
	bodies := map[string]any{
		"home":              CatalogView{Services: ServiceCards(catalog.Default().All(), "USD")},
		"services":          CatalogView{Services: ServiceCards(catalog.Default().All(), "USD")},
		"about":             nil,
		"privacy":           nil,
		"terms":             nil,
		"not_found":         nil,
		"checkout":          CheckoutView{Summary: checkout.NewSummary(nil, "USD")},
		"checkout_complete": CompleteView{OrderID: "01HZX"},
		"contact":           ContactView{Latitude: 1.5, Longitude: 2.5},
		"calculator":        CalculatorView{},
		"blog":              BlogView{},
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, r.Page(&buf, name, Page{Title: name, Active: name, Body: body}))
			doc := parse(t, buf.String())
			assert.Equal(t, 1, doc.Find("nav#navbar").Length())
			assert.Equal(t, 1, doc.Find("#cart-dropdown").Length())
			assert.Equal(t, 1, doc.Find("main").Length())
		})
	}
}

func TestLayoutThemeToggle(t *testing.T) {
	r := newTestRenderer(t)

	var buf bytes.Buffer
	require.NoError(t, r.Page(&buf, "about", Page{Theme: "dark"}))
	doc := parse(t, buf.String())

	theme, _ := doc.Find("html").Attr("data-theme")
	assert.Equal(t, "dark", theme)
	next, _ := doc.Find("form.theme-toggle input[name='theme']").Attr("value")
	assert.Equal(t, "light", next)
}

func TestHomeListsCatalog(t *testing.T) {
	r := newTestRenderer(t)
	services := catalog.Default().All()

	var buf bytes.Buffer
	require.NoError(t, r.Page(&buf, "home", Page{Active: "home", Body: CatalogView{Services: ServiceCards(services, "USD")}}))
	doc := parse(t, buf.String())

	assert.Equal(t, len(services), doc.Find(".service-card").Length())
	assert.Equal(t, len(services), doc.Find("form.add-to-cart").Length())
	class, _ := doc.Find("a[href='/']").Eq(1).Attr("class")
	assert.Equal(t, "active", class)
}

func TestCheckoutEmpty(t *testing.T) {
	r := newTestRenderer(t)

	var buf bytes.Buffer
	view := CheckoutView{Summary: checkout.NewSummary(&cart.Cart{}, "USD")}
	require.NoError(t, r.Page(&buf, "checkout", Page{Body: view}))
	doc := parse(t, buf.String())

	assert.Equal(t, checkout.EmptyMessage, strings.TrimSpace(doc.Find(".checkout-empty").Text()))
	assert.Zero(t, doc.Find("#checkout-total").Length())
	assert.Zero(t, doc.Find("#checkout-form").Length())
	assert.Zero(t, doc.Find("#payment-button").Length())
}

func TestCheckoutTotalMatchesButton(t *testing.T) {
	r := newTestRenderer(t)
	summary := checkout.NewSummary(sampleCart(), "USD")
	button, ok := summary.Mount(payments.NewStaticWidget())
	require.True(t, ok)

	var buf bytes.Buffer
	view := CheckoutView{Summary: summary, Button: button, HasButton: ok, Notice: "Try again"}
	require.NoError(t, r.Page(&buf, "checkout", Page{Body: view}))
	doc := parse(t, buf.String())

	lines := doc.Find(".checkout-line")
	require.Equal(t, 2, lines.Length())
	assert.Equal(t, "Marketing x 1", lines.Eq(0).Find(".label").Text())
	assert.Equal(t, "$18.50", doc.Find("#checkout-total").Text())

	minor, _ := doc.Find("#payment-button").Attr("data-amount-minor")
	assert.Equal(t, "1850", minor)
	assert.Equal(t, "Pay $18.50", strings.TrimSpace(doc.Find("#payment-button button").Text()))
	assert.Equal(t, "Try again", strings.TrimSpace(doc.Find(".notice").Text()))
}

func TestContactNotice(t *testing.T) {
	r := newTestRenderer(t)

	var buf bytes.Buffer
	view := ContactView{Notice: "Thank you!", Success: true, Latitude: 40.7, Longitude: -74}
	require.NoError(t, r.Page(&buf, "contact", Page{Body: view}))
	doc := parse(t, buf.String())

	notice := doc.Find("#contact-notice")
	assert.True(t, notice.HasClass("notice-success"))
	assert.Equal(t, "Thank you!", notice.Text())
	lat, _ := doc.Find("#map").Attr("data-lat")
	assert.Equal(t, "40.7", lat)
	action, _ := doc.Find("#contact-form").Attr("action")
	assert.Equal(t, "/contact/send", action)
}

func TestBlogPostsFragment(t *testing.T) {
	r := newTestRenderer(t)
	posts := PostViews([]domain.Post{{
		ID:        "p1",
		Title:     "Launch",
		BodyHTML:  "<p><strong>hello</strong></p>",
		CoverURL:  "data:image/png;base64,AAAA",
		CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}})

	var buf bytes.Buffer
	require.NoError(t, r.Fragment(&buf, "blog_posts", BlogView{Posts: posts}))
	doc := parse(t, buf.String())

	post := doc.Find("#post-p1")
	require.Equal(t, 1, post.Length())
	assert.Equal(t, "hello", post.Find(".blog-body strong").Text())
	src, _ := post.Find("img.blog-cover").Attr("src")
	assert.Equal(t, "data:image/png;base64,AAAA", src)
	assert.Equal(t, "May 1, 2024 10:00", post.Find("time").Text())
}

func TestCalculatorResultFragment(t *testing.T) {
	r := newTestRenderer(t)
	view := CalculatorView{
		Rows: []CalculatorRow{
			{Slug: "marketing", Name: "Marketing", Quantity: 2, Months: 3, Cost: "$89.94"},
			{Slug: "apps-development", Name: "Apps Development"},
		},
		Total: "$89.94",
	}

	var buf bytes.Buffer
	require.NoError(t, r.Fragment(&buf, "calculator_result", view))
	doc := parse(t, buf.String())

	assert.Equal(t, "$89.94", doc.Find("#calculator-total").Text())
	assert.Equal(t, 1, doc.Find(".calculator-lines tr").Length())
}

func TestServiceCards(t *testing.T) {
	cards := ServiceCards([]domain.Service{{Slug: "x", Name: "X", Price: 14.99}}, "USD")
	require.Len(t, cards, 1)
	assert.Equal(t, "$14.99", cards[0].Price)
	assert.InDelta(t, 14.99, cards[0].PriceValue, 1e-9)
}
