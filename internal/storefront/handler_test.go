package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ajinkyamaster/storefront/internal/apiclient"
	"github.com/ajinkyamaster/storefront/internal/domain"
	"github.com/ajinkyamaster/storefront/pkg/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"
)

type fakeAPI struct {
	mu        sync.Mutex
	products  []domain.Product
	fetchErr  error
	submitErr error
	submitted [][]domain.SubmittedItem
}

func (f *fakeAPI) FetchProducts(context.Context) ([]domain.Product, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make([]domain.Product, len(f.products))
	copy(out, f.products)
	return out, nil
}

func (f *fakeAPI) SubmitCart(_ context.Context, items []domain.SubmittedItem) (*domain.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, items)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	totalItems := 0
	totalPrice := 0.0
	for _, item := range items {
		totalItems += item.Quantity
		totalPrice += item.Price * float64(item.Quantity)
	}
	return &domain.Receipt{
		Items:       items,
		TotalPrice:  totalPrice,
		TotalItems:  totalItems,
		SubmittedAt: time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC),
	}, nil
}

type browser struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
}

func newBrowser(t *testing.T, api API) *browser {
	h := NewHandler(Config{API: api, ImageBaseURL: "http://api.test/", Title: "Test Store"})
	return &browser{t: t, handler: h.Routes()}
}

func (b *browser) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()
	var request *http.Request
	if form != nil {
		request = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		request = httptest.NewRequest(method, target, nil)
	}
	for _, c := range b.cookies {
		request.AddCookie(c)
	}

	recorder := httptest.NewRecorder()
	b.handler.ServeHTTP(recorder, request)
	if cookies := recorder.Result().Cookies(); len(cookies) > 0 {
		b.cookies = cookies
	}
	return recorder
}

func (b *browser) add(p domain.Product) {
	b.t.Helper()
	recorder := b.do(http.MethodPost, "/cart/items", url.Values{
		"id":    {p.ID},
		"name":  {p.Name},
		"price": {formatFloat(p.Price)},
		"image": {p.Image},
	})
	require.Equal(b.t, http.StatusSeeOther, recorder.Code)
}

func formatFloat(f float64) string {
	data, _ := json.Marshal(f)
	return string(data)
}

var (
	mouse = domain.Product{ID: "65a1", Name: "Wireless Mouse", Price: 10, Image: "http://api.test/images/wireless-mouse.jpg"}
	stand = domain.Product{ID: "65a2", Name: "Phone Stand", Price: 5, Image: "http://api.test/images/phone-stand.jpg"}
)

func TestProductList_Success(t *testing.T) {
	api := &fakeAPI{products: []domain.Product{
		{ID: "65a1", Name: "Wireless Mouse", Price: 24.99, Image: "/images/wireless-mouse.jpg"},
		{ID: "65a2", Name: "Phone Stand", Price: 14.99, Image: "https://cdn.example.com/stand.jpg"},
	}}
	b := newBrowser(t, api)

	recorder := b.do(http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, recorder.Code)
	body := recorder.Body.String()
	assert.Contains(t, body, "Test Store")
	assert.Contains(t, body, "Cart (0)")
	assert.Contains(t, body, "Wireless Mouse")
	assert.Contains(t, body, "$24.99")
	assert.Contains(t, body, `src="http://api.test/images/wireless-mouse.jpg"`)
	assert.Contains(t, body, `src="https://cdn.example.com/stand.jpg"`)
	assert.Less(t, strings.Index(body, "Loading products..."), strings.Index(body, "Wireless Mouse"))
	assert.Contains(t, body, "#loading { display: none; }")
	assert.NotContains(t, body, "Failed to load products")
	assert.True(t, recorder.Flushed)
}

func TestProductList_CatalogFailure(t *testing.T) {
	api := &fakeAPI{fetchErr: &apiclient.StatusError{Op: apiclient.ErrFetchProducts, StatusCode: http.StatusInternalServerError}}
	b := newBrowser(t, api)

	recorder := b.do(http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, recorder.Code)
	body := recorder.Body.String()
	assert.Contains(t, body, "Failed to load products. Please try again later.")
	assert.NotContains(t, body, "product-card")
	assert.NotContains(t, body, "No products available")
}

func TestProductList_Empty(t *testing.T) {
	b := newBrowser(t, &fakeAPI{})

	recorder := b.do(http.MethodGet, "/", nil)

	assert.Contains(t, recorder.Body.String(), "No products available")
}

func TestCartView_Empty(t *testing.T) {
	b := newBrowser(t, &fakeAPI{})

	recorder := b.do(http.MethodGet, "/cart", nil)

	require.Equal(t, http.StatusOK, recorder.Code)
	body := recorder.Body.String()
	assert.Contains(t, body, "Your cart is empty")
	assert.Contains(t, body, `href="/"`)
	assert.Contains(t, body, "Continue Shopping")
	assert.NotContains(t, body, "Proceed to Checkout")
}

func TestCart_AddAndTotals(t *testing.T) {
	b := newBrowser(t, &fakeAPI{})

	b.add(mouse)
	b.add(mouse)
	b.add(stand)
	b.add(stand)
	b.add(stand)

	body := b.do(http.MethodGet, "/cart", nil).Body.String()
	assert.Contains(t, body, "Cart (5)")
	assert.Contains(t, body, "$10.00 each")
	assert.Contains(t, body, "$5.00 each")
	assert.Contains(t, body, "<span>Items:</span><span>5</span>")
	assert.Contains(t, body, "<span>Total:</span><span>$35.00</span>")
	assert.Contains(t, body, "Proceed to Checkout")
	assert.Less(t, strings.Index(body, "Wireless Mouse"), strings.Index(body, "Phone Stand"))
}

func TestCart_IncrementDecrementRemove(t *testing.T) {
	b := newBrowser(t, &fakeAPI{})
	b.add(mouse)
	b.add(stand)

	recorder := b.do(http.MethodPost, "/cart/items/65a1/increment", nil)
	assert.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, "/cart", recorder.Header().Get("Location"))
	assert.Contains(t, b.do(http.MethodGet, "/cart", nil).Body.String(), "Cart (3)")

	b.do(http.MethodPost, "/cart/items/65a1/decrement", nil)
	b.do(http.MethodPost, "/cart/items/65a1/decrement", nil)
	body := b.do(http.MethodGet, "/cart", nil).Body.String()
	assert.NotContains(t, body, "Wireless Mouse")
	assert.Contains(t, body, "Cart (1)")

	b.do(http.MethodPost, "/cart/items/65a2/remove", nil)
	b.do(http.MethodPost, "/cart/items/missing/increment", nil)
	assert.Contains(t, b.do(http.MethodGet, "/cart", nil).Body.String(), "Your cart is empty")
}

func TestAddItem_InvalidForm(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
	}{
		{"missing id", url.Values{"name": {"X"}, "price": {"1"}}},
		{"missing name", url.Values{"id": {"1"}, "price": {"1"}}},
		{"negative price", url.Values{"id": {"1"}, "name": {"X"}, "price": {"-1"}}},
		{"non-numeric price", url.Values{"id": {"1"}, "name": {"X"}, "price": {"abc"}}},
		{"nan price", url.Values{"id": {"1"}, "name": {"X"}, "price": {"NaN"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBrowser(t, &fakeAPI{})

			recorder := b.do(http.MethodPost, "/cart/items", tt.form)

			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			assert.Contains(t, b.do(http.MethodGet, "/cart", nil).Body.String(), "Cart (0)")
		})
	}
}

func TestCheckout_Success(t *testing.T) {
	api := &fakeAPI{}
	b := newBrowser(t, api)
	b.add(mouse)
	b.add(mouse)

	recorder := b.do(http.MethodPost, "/cart/checkout", nil)

	require.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, "/cart/receipt", recorder.Header().Get("Location"))
	require.Len(t, api.submitted, 1)
	require.Len(t, api.submitted[0], 1)
	assert.JSONEq(t, `"65a1"`, string(api.submitted[0][0].ID))
	assert.Equal(t, 2, api.submitted[0][0].Quantity)

	body := b.do(http.MethodGet, "/cart/receipt", nil).Body.String()
	assert.Contains(t, body, "Cart submitted successfully")
	assert.Contains(t, body, "$20.00")
	assert.Contains(t, body, "Cart (0)")
	assert.Contains(t, b.do(http.MethodGet, "/cart", nil).Body.String(), "Your cart is empty")
}

func TestCheckout_FailureKeepsCart(t *testing.T) {
	api := &fakeAPI{submitErr: &apiclient.StatusError{Op: apiclient.ErrSubmitCart, StatusCode: http.StatusInternalServerError, Message: "Failed to submit cart"}}
	b := newBrowser(t, api)
	b.add(mouse)

	recorder := b.do(http.MethodPost, "/cart/checkout", nil)

	assert.Equal(t, "/cart", recorder.Header().Get("Location"))
	body := b.do(http.MethodGet, "/cart", nil).Body.String()
	assert.Contains(t, body, MsgCheckoutFailed)
	assert.Contains(t, body, "Wireless Mouse")
	assert.Contains(t, body, "Cart (1)")

	assert.NotContains(t, b.do(http.MethodGet, "/cart", nil).Body.String(), MsgCheckoutFailed)
}

func TestCheckout_RejectionShowsReason(t *testing.T) {
	api := &fakeAPI{submitErr: &apiclient.StatusError{Op: apiclient.ErrSubmitCart, StatusCode: http.StatusBadRequest, Message: "Price must be non-negative and quantity must be at least 1"}}
	b := newBrowser(t, api)
	b.add(mouse)

	b.do(http.MethodPost, "/cart/checkout", nil)

	assert.Contains(t, b.do(http.MethodGet, "/cart", nil).Body.String(), "Price must be non-negative and quantity must be at least 1")
}

func TestCheckout_EmptyCartSkipsAPI(t *testing.T) {
	api := &fakeAPI{}
	b := newBrowser(t, api)

	recorder := b.do(http.MethodPost, "/cart/checkout", nil)

	assert.Equal(t, "/cart", recorder.Header().Get("Location"))
	assert.Empty(t, api.submitted)
}

func TestReceipt_WithoutCheckoutRedirects(t *testing.T) {
	b := newBrowser(t, &fakeAPI{})

	recorder := b.do(http.MethodGet, "/cart/receipt", nil)

	assert.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, "/cart", recorder.Header().Get("Location"))
}

func TestHealth(t *testing.T) {
	b := newBrowser(t, &fakeAPI{})

	recorder := b.do(http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"status":"ok"}`, recorder.Body.String())
}

func TestSessionsAreSeparate(t *testing.T) {
	api := &fakeAPI{}
	first := newBrowser(t, api)
	first.add(mouse)

	second := &browser{t: t, handler: first.handler}
	assert.Contains(t, second.do(http.MethodGet, "/cart", nil).Body.String(), "Your cart is empty")
	assert.Contains(t, first.do(http.MethodGet, "/cart", nil).Body.String(), "Cart (1)")
}

func TestReadOnlyPagesDoNotCreateSessions(t *testing.T) {
	h := NewHandler(Config{API: &fakeAPI{products: []domain.Product{mouse}}, Title: "Test Store"})
	routes := h.Routes()

	for i := 0; i < 100; i++ {
		for _, target := range []string{"/", "/cart", "/cart/receipt"} {
			recorder := httptest.NewRecorder()
			routes.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))
			assert.Empty(t, recorder.Result().Cookies())
		}
		for _, target := range []string{"/cart/items/65a1/increment", "/cart/items/65a1/remove", "/cart/checkout"} {
			routes.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, target, nil))
		}
	}

	assert.Equal(t, 0, h.sessions.Len())
}

func TestUnknownSessionCookieIsNotStored(t *testing.T) {
	h := NewHandler(Config{API: &fakeAPI{}})
	b := &browser{t: t, handler: h.Routes(), cookies: []*http.Cookie{{Name: sessionCookie, Value: "0b9f5c1e-6f7a-4c1e-9a51-7d9d2f3c1a10"}}}

	assert.Contains(t, b.do(http.MethodGet, "/cart", nil).Body.String(), "Your cart is empty")
	assert.Equal(t, 0, h.sessions.Len())

	b.add(mouse)
	assert.Equal(t, 1, h.sessions.Len())
	assert.Contains(t, b.do(http.MethodGet, "/cart", nil).Body.String(), "Cart (1)")
}

func TestProductList_TracesCatalogCallWithoutIncomingHeader(t *testing.T) {
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })
	shutdown, err := tracing.Setup(context.Background(), tracing.Config{ServiceName: "storefront-test", SampleRatio: 1})
	require.NoError(t, err)
	defer shutdown(context.Background())

	traceparents := make(chan string, 1)
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceparents <- r.Header.Get("traceparent")
		_, _ = w.Write([]byte(`[{"id":"65a1","name":"Wireless Mouse","price":10,"image":"/images/wireless-mouse.jpg"}]`))
	}))
	defer api.Close()

	client := apiclient.NewClient(api.URL, nil)
	h := NewHandler(Config{API: client, ImageBaseURL: client.BaseURL(), Title: "Test Store"})

	recorder := httptest.NewRecorder()
	h.Routes().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Wireless Mouse")

	traceparent := <-traceparents
	require.NotEmpty(t, traceparent)
	parts := strings.Split(traceparent, "-")
	require.Len(t, parts, 4)
	assert.NotEqual(t, strings.Repeat("0", 32), parts[1])
	assert.Equal(t, "01", parts[3])
}
