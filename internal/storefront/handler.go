// Package storefront is the browser-facing client: it renders the product
// listing and the per-session cart, and forwards checkouts to the API.
package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ajinkyamaster/storefront/internal/apiclient"
	"github.com/ajinkyamaster/storefront/internal/domain"
	apihttp "github.com/ajinkyamaster/storefront/internal/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	MsgCheckoutFailed = "Failed to submit cart. Please try again."
	MsgCartSubmitted  = "Cart submitted successfully"
)

// API is the part of the catalog and cart API the storefront calls.
type API interface {
	ProductFetcher
	SubmitCart(ctx context.Context, items []domain.SubmittedItem) (*domain.Receipt, error)
}

type Config struct {
	API API
	// ImageBaseURL is prefixed to relative product image references.
	ImageBaseURL   string
	Title          string
	RequestTimeout time.Duration
	// SessionIdleTimeout is how long an unused cart is kept.
	SessionIdleTimeout time.Duration
	Logger             *zap.Logger
}

type Handler struct {
	api       API
	imageBase string
	title     string
	timeout   time.Duration
	idle      time.Duration
	sessions  *Sessions
	logger    *zap.Logger
}

func NewHandler(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.SessionIdleTimeout <= 0 {
		cfg.SessionIdleTimeout = 24 * time.Hour
	}
	return &Handler{
		api:       cfg.API,
		imageBase: strings.TrimSuffix(cfg.ImageBaseURL, "/"),
		title:     cfg.Title,
		timeout:   cfg.RequestTimeout,
		idle:      cfg.SessionIdleTimeout,
		sessions:  NewSessions(),
		logger:    cfg.Logger,
	}
}

// Routes returns the storefront router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apihttp.RequestLogger(h.logger))
	r.Use(middleware.Recoverer)

	r.Get("/", h.ProductList)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.CartView)
		r.Get("/receipt", h.Receipt)
		r.Post("/items", h.AddItem)
		r.Post("/items/{id}/increment", h.Increment)
		r.Post("/items/{id}/decrement", h.Decrement)
		r.Post("/items/{id}/remove", h.RemoveItem)
		r.Post("/checkout", h.Checkout)
	})

	return otelhttp.NewHandler(r, "storefront")
}

// ExpireSessions drops idle carts until ctx is done.
func (h *Handler) ExpireSessions(ctx context.Context) {
	interval := h.idle / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	h.sessions.Expire(ctx, h.idle, interval, h.logger)
}

func (h *Handler) page(count int) page {
	return page{Title: h.title, CartCount: count}
}

func (h *Handler) cartCount(id string) int {
	var n int
	h.sessions.Existing(id, func(s *Session) { n = s.Cart.TotalItems() })
	return n
}

// ProductList writes the page shell with a loading indicator, flushes it, and
// then renders the outcome of a single catalog fetch.
func (h *Handler) ProductList(w http.ResponseWriter, r *http.Request) {
	p := h.page(h.cartCount(currentSessionID(r)))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, "head", p); err != nil {
		h.logger.Error("render page head", zap.Error(err))
		return
	}
	if err := templates.ExecuteTemplate(w, "loading", p); err != nil {
		h.logger.Error("render loading indicator", zap.Error(err))
		return
	}
	_ = http.NewResponseController(w).Flush()

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	listing := LoadListing(ctx, h.api, h.imageBase, h.logger)

	if err := templates.ExecuteTemplate(w, "products", productsPage{page: p, Listing: listing}); err != nil {
		h.logger.Error("render products", zap.Error(err))
		return
	}
	if err := templates.ExecuteTemplate(w, "foot", p); err != nil {
		h.logger.Error("render page foot", zap.Error(err))
	}
}

func (h *Handler) CartView(w http.ResponseWriter, r *http.Request) {
	data := cartPage{page: h.page(0)}
	h.sessions.Existing(currentSessionID(r), func(s *Session) {
		data = cartPage{
			page:       h.page(s.Cart.TotalItems()),
			Notice:     s.Notice,
			Items:      s.Cart.Items(),
			TotalItems: s.Cart.TotalItems(),
			TotalValue: s.Cart.TotalValue(),
		}
		s.Notice = ""
	})

	h.render(w, http.StatusOK, "cart", data)
}

// AddItem adds the product described by the listing form to the cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	product, err := productFromForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.sessions.With(sessionID(w, r), func(s *Session) { s.Cart.AddItem(product) })
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) Increment(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, 1)
}

func (h *Handler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, -1)
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request, delta int) {
	productID := chi.URLParam(r, "id")

	h.sessions.Existing(currentSessionID(r), func(s *Session) {
		if item, ok := s.Cart.Item(productID); ok {
			s.Cart.UpdateQuantity(productID, item.Quantity+delta)
		}
	})
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	h.sessions.Existing(currentSessionID(r), func(s *Session) { s.Cart.RemoveItem(productID) })
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

// Checkout submits the cart. The cart is cleared only when the API accepts
// it; otherwise it is kept and a notice is shown.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	target := "/cart"
	h.sessions.Existing(currentSessionID(r), func(s *Session) {
		if s.Cart.IsEmpty() {
			return
		}

		receipt, err := h.api.SubmitCart(ctx, s.Cart.Snapshot())
		if err != nil {
			h.logger.Error("error submitting cart", zap.Error(err))
			s.Notice = checkoutNotice(err)
			return
		}

		s.Cart.Clear()
		s.Receipt = receipt
		target = "/cart/receipt"
	})

	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request) {
	var data receiptPage
	h.sessions.Existing(currentSessionID(r), func(s *Session) {
		data = receiptPage{
			page:    h.page(s.Cart.TotalItems()),
			Message: MsgCartSubmitted,
			Receipt: s.Receipt,
		}
	})
	if data.Receipt == nil {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}

	h.render(w, http.StatusOK, "receipt", data)
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("render template", zap.String("template", name), zap.Error(err))
	}
}

// checkoutNotice keeps the API's rejection reason for client errors and
// falls back to a generic message otherwise.
func checkoutNotice(err error) string {
	var statusErr *apiclient.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode < http.StatusInternalServerError && statusErr.Message != "" {
		return statusErr.Message
	}
	return MsgCheckoutFailed
}

func productFromForm(r *http.Request) (domain.Product, error) {
	if err := r.ParseForm(); err != nil {
		return domain.Product{}, errors.New("invalid form")
	}

	p := domain.Product{
		ID:    strings.TrimSpace(r.PostForm.Get("id")),
		Name:  strings.TrimSpace(r.PostForm.Get("name")),
		Image: r.PostForm.Get("image"),
	}
	if p.ID == "" || p.Name == "" {
		return domain.Product{}, errors.New("product id and name are required")
	}

	price, err := strconv.ParseFloat(r.PostForm.Get("price"), 64)
	if err != nil || price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return domain.Product{}, errors.New("price must be a non-negative number")
	}
	p.Price = price
	return p, nil
}
