package adapter

import (
	"book-store/internal/core/model"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// Storefront is what the HTTP layer drives; *core.Service implements it.
type Storefront interface {
	Cart() []model.Book
	CartTotal() float64
	AddToCart(ctx context.Context, b model.Book) bool
	RemoveFromCart(ctx context.Context, key string) bool
	ClearCart(ctx context.Context)
	MoveToWishlist(ctx context.Context, b model.Book) bool

	Wishlist() []model.Book
	AddToWishlist(ctx context.Context, b model.Book) bool
	RemoveFromWishlist(ctx context.Context, key string) bool
	ClearWishlist(ctx context.Context)
	MoveToCart(ctx context.Context, b model.Book) bool

	Orders() []model.Order
	PlaceOrder(ctx context.Context) (model.Order, error)

	Reviews(key string) []model.Review
	AddReview(ctx context.Context, key string, r model.Review)

	Profile() model.Profile
	SaveProfile(ctx context.Context, name, email string) model.Profile

	Filters() model.SearchFilters
	SetFilters(f model.SearchFilters)
	Results() []model.Book
	Search(ctx context.Context, query string) ([]model.Book, error)
	Category() (string, []model.Book)
	BrowseCategory(ctx context.Context, category string) ([]model.Book, error)

	FindBook(key string) (model.Book, bool)
	ShareLink(b model.Book) string
	TwitterIntent(b model.Book) string
	Notice() (model.Notice, bool)
}

type HTTPHandler struct {
	Svc Storefront
	log *slog.Logger
}

func NewHTTPHandler(svc Storefront, logger *slog.Logger) *HTTPHandler {
	return &HTTPHandler{Svc: svc, log: logger}
}

// Routes mounts the storefront API under /api/v1.
func (h *HTTPHandler) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Get("/search", h.Search)
		r.Get("/results", h.Results)
		r.Get("/filters", h.GetFilters)
		r.Put("/filters", h.PutFilters)
		r.Get("/categories/{name}", h.BrowseCategory)

		r.Get("/cart", h.GetCart)
		r.Post("/cart", h.AddToCart)
		r.Delete("/cart", h.RemoveFromCart)
		r.Post("/cart/clear", h.ClearCart)
		r.Post("/cart/move-to-wishlist", h.MoveToWishlist)

		r.Get("/wishlist", h.GetWishlist)
		r.Post("/wishlist", h.AddToWishlist)
		r.Delete("/wishlist", h.RemoveFromWishlist)
		r.Post("/wishlist/clear", h.ClearWishlist)
		r.Post("/wishlist/move-to-cart", h.MoveToCart)

		r.Get("/orders", h.ListOrders)
		r.Post("/orders", h.PlaceOrder)

		r.Get("/reviews", h.ListReviews)
		r.Post("/reviews", h.AddReview)

		r.Get("/profile", h.GetProfile)
		r.Put("/profile", h.PutProfile)

		r.Get("/share", h.Share)
		r.Get("/toast", h.Toast)
	})
}

func NewRouter(h *HTTPHandler) http.Handler {
	r := chi.NewRouter()
	h.Routes(r)
	return r
}

type httpError struct {
	Error struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details,omitempty"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string, details map[string]interface{}) {
	e := httpError{}
	e.Error.Code = code
	e.Error.Message = msg
	e.Error.Details = details
	writeJSON(w, status, e)
}

type booksResponse struct {
	Data   []model.Book  `json:"data"`
	Count  int           `json:"count"`
	Total  *float64      `json:"total,omitempty"`
	Notice *model.Notice `json:"notice,omitempty"`
}

type mutationResponse struct {
	Changed bool         `json:"changed"`
	Data    []model.Book `json:"data"`
}

type shareResponse struct {
	Link    string `json:"link"`
	Twitter string `json:"twitter"`
}

type reviewRequest struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Text string `json:"text"`
}

func (h *HTTPHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// bindKey reads the required "key" query parameter.
func (h *HTTPHandler) bindKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	var key string
	if err := runtime.BindQueryParameter("form", true, true, "key", r.URL.Query(), &key); err != nil || key == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION", "key is required", nil)
		return "", false
	}
	return key, true
}

func decodeBook(w http.ResponseWriter, r *http.Request) (model.Book, bool) {
	var b model.Book
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "invalid book payload", map[string]interface{}{"reason": err.Error()})
		return model.Book{}, false
	}
	if b.Key == "" || b.Title == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION", "book key and title are required", nil)
		return model.Book{}, false
	}
	return b, true
}

func (h *HTTPHandler) lookupResult(w http.ResponseWriter, books []model.Book, err error) {
	if errors.Is(err, model.ErrSuperseded) {
		writeError(w, http.StatusConflict, "SUPERSEDED", "a newer lookup replaced this one", nil)
		return
	}
	resp := booksResponse{Data: books, Count: len(books)}
	if err != nil {
		h.log.Warn("catalog lookup failed", "error", err)
		if n, ok := h.Svc.Notice(); ok {
			resp.Notice = &n
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	var q string
	if err := runtime.BindQueryParameter("form", true, false, "q", r.URL.Query(), &q); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "invalid q", nil)
		return
	}
	books, err := h.Svc.Search(r.Context(), q)
	h.lookupResult(w, books, err)
}

func (h *HTTPHandler) Results(w http.ResponseWriter, _ *http.Request) {
	books := h.Svc.Results()
	writeJSON(w, http.StatusOK, booksResponse{Data: books, Count: len(books)})
}

func (h *HTTPHandler) GetFilters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Svc.Filters())
}

func (h *HTTPHandler) PutFilters(w http.ResponseWriter, r *http.Request) {
	var f model.SearchFilters
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "invalid filters", nil)
		return
	}
	h.Svc.SetFilters(f)
	books := h.Svc.Results()
	writeJSON(w, http.StatusOK, booksResponse{Data: books, Count: len(books)})
}

func (h *HTTPHandler) BrowseCategory(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(chi.URLParam(r, "name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION", "category is required", nil)
		return
	}
	books, err := h.Svc.BrowseCategory(r.Context(), name)
	h.lookupResult(w, books, err)
}

func (h *HTTPHandler) GetCart(w http.ResponseWriter, _ *http.Request) {
	cart := h.Svc.Cart()
	total := h.Svc.CartTotal()
	writeJSON(w, http.StatusOK, booksResponse{Data: cart, Count: len(cart), Total: &total})
}

func (h *HTTPHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	b, ok := decodeBook(w, r)
	if !ok {
		return
	}
	added := h.Svc.AddToCart(r.Context(), b)
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, status, mutationResponse{Changed: added, Data: h.Svc.Cart()})
}

func (h *HTTPHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	key, ok := h.bindKey(w, r)
	if !ok {
		return
	}
	removed := h.Svc.RemoveFromCart(r.Context(), key)
	writeJSON(w, http.StatusOK, mutationResponse{Changed: removed, Data: h.Svc.Cart()})
}

func (h *HTTPHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.Svc.ClearCart(r.Context())
	writeJSON(w, http.StatusOK, mutationResponse{Changed: true, Data: h.Svc.Cart()})
}

func (h *HTTPHandler) MoveToWishlist(w http.ResponseWriter, r *http.Request) {
	key, ok := h.bindKey(w, r)
	if !ok {
		return
	}
	b, found := findIn(h.Svc.Cart(), key)
	if !found {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "book not in cart", nil)
		return
	}
	added := h.Svc.MoveToWishlist(r.Context(), b)
	writeJSON(w, http.StatusOK, mutationResponse{Changed: added, Data: h.Svc.Wishlist()})
}

func (h *HTTPHandler) GetWishlist(w http.ResponseWriter, _ *http.Request) {
	wl := h.Svc.Wishlist()
	writeJSON(w, http.StatusOK, booksResponse{Data: wl, Count: len(wl)})
}

func (h *HTTPHandler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	b, ok := decodeBook(w, r)
	if !ok {
		return
	}
	added := h.Svc.AddToWishlist(r.Context(), b)
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, status, mutationResponse{Changed: added, Data: h.Svc.Wishlist()})
}

func (h *HTTPHandler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	key, ok := h.bindKey(w, r)
	if !ok {
		return
	}
	removed := h.Svc.RemoveFromWishlist(r.Context(), key)
	writeJSON(w, http.StatusOK, mutationResponse{Changed: removed, Data: h.Svc.Wishlist()})
}

func (h *HTTPHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	h.Svc.ClearWishlist(r.Context())
	writeJSON(w, http.StatusOK, mutationResponse{Changed: true, Data: h.Svc.Wishlist()})
}

func (h *HTTPHandler) MoveToCart(w http.ResponseWriter, r *http.Request) {
	key, ok := h.bindKey(w, r)
	if !ok {
		return
	}
	b, found := findIn(h.Svc.Wishlist(), key)
	if !found {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "book not in wishlist", nil)
		return
	}
	added := h.Svc.MoveToCart(r.Context(), b)
	writeJSON(w, http.StatusOK, mutationResponse{Changed: added, Data: h.Svc.Cart()})
}

func (h *HTTPHandler) ListOrders(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"data": h.Svc.Orders()})
}

func (h *HTTPHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.Svc.PlaceOrder(r.Context())
	if errors.Is(err, model.ErrEmptyCart) {
		writeError(w, http.StatusConflict, "EMPTY_CART", "cart is empty", nil)
		return
	}
	if err != nil {
		h.log.Error("place order failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "could not place order", nil)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *HTTPHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	key, ok := h.bindKey(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"key": key, "data": h.Svc.Reviews(key)})
}

func (h *HTTPHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "invalid review payload", nil)
		return
	}
	if req.Key == "" || strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION", "key and text are required", nil)
		return
	}
	h.Svc.AddReview(r.Context(), req.Key, model.Review{Name: req.Name, Text: req.Text})
	writeJSON(w, http.StatusCreated, map[string]any{"key": req.Key, "data": h.Svc.Reviews(req.Key)})
}

func (h *HTTPHandler) GetProfile(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Svc.Profile())
}

func (h *HTTPHandler) PutProfile(w http.ResponseWriter, r *http.Request) {
	var p model.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "invalid profile payload", nil)
		return
	}
	writeJSON(w, http.StatusOK, h.Svc.SaveProfile(r.Context(), p.Name, p.Email))
}

func (h *HTTPHandler) Share(w http.ResponseWriter, r *http.Request) {
	key, ok := h.bindKey(w, r)
	if !ok {
		return
	}
	b, found := h.Svc.FindBook(key)
	if !found {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown book", nil)
		return
	}
	writeJSON(w, http.StatusOK, shareResponse{Link: h.Svc.ShareLink(b), Twitter: h.Svc.TwitterIntent(b)})
}

func (h *HTTPHandler) Toast(w http.ResponseWriter, _ *http.Request) {
	n, ok := h.Svc.Notice()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func findIn(books []model.Book, key string) (model.Book, bool) {
	for _, b := range books {
		if b.Key == key {
			return b, true
		}
	}
	return model.Book{}, false
}
