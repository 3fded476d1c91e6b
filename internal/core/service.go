package core

import (
	"book-store/internal/core/model"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// StateStore persists the named storefront records. Loads fall back to the
// documented default for each record and saves absorb backend failures.
type StateStore interface {
	LoadBooks(ctx context.Context, name string) []model.Book
	SaveBooks(ctx context.Context, name string, books []model.Book)
	LoadProfile(ctx context.Context) model.Profile
	SaveProfile(ctx context.Context, p model.Profile)
	LoadOrders(ctx context.Context) []model.Order
	SaveOrders(ctx context.Context, orders []model.Order)
	LoadReviews(ctx context.Context) model.Reviews
	SaveReviews(ctx context.Context, reviews model.Reviews)
}

type Catalog interface {
	SearchByQuery(ctx context.Context, text string) ([]model.Book, error)
	SearchByCategory(ctx context.Context, category string) ([]model.Book, error)
}

const orderDateLayout = "1/2/2006, 3:04:05 PM"

type Options struct {
	ToastDelay         time.Duration
	AllowEmptyCheckout bool
	BaseURL            string
	Now                func() time.Time
	Logger             *slog.Logger
}

// Service owns all storefront state. Every mutation runs under mu and is
// persisted before the in-memory value is replaced.
type Service struct {
	Store   StateStore
	Catalog Catalog

	opts Options
	log  *slog.Logger

	mu            sync.Mutex
	cart          bookList
	wishlist      bookList
	profile       model.Profile
	orders        []model.Order
	reviews       model.Reviews
	filters       model.SearchFilters
	results       []model.Book
	category      string
	categoryBooks []model.Book
	lastOrderID   int64

	searches   searcher
	categories searcher

	subMu   sync.Mutex
	subs    map[int]func(model.Event)
	nextSub int

	toast *Toaster
}

func NewService(ctx context.Context, store StateStore, catalog Catalog, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Service{
		Store:   store,
		Catalog: catalog,
		opts:    opts,
		log:     opts.Logger,
		subs:    make(map[int]func(model.Event)),
	}
	s.toast = NewToaster(opts.ToastDelay, func(*model.Notice) { s.publish(model.TopicToast) })

	s.cart = store.LoadBooks(ctx, model.KeyCart)
	s.wishlist = store.LoadBooks(ctx, model.KeyWishlist)
	s.profile = store.LoadProfile(ctx)
	s.orders = store.LoadOrders(ctx)
	s.reviews = store.LoadReviews(ctx)
	for _, o := range s.orders {
		if o.ID > s.lastOrderID {
			s.lastOrderID = o.ID
		}
	}
	return s
}

// Close stops in-flight lookups and the pending toast clear.
func (s *Service) Close() {
	s.searches.stop()
	s.categories.stop()
	s.toast.Close()
}

// Subscribe registers fn for state change events and returns its cancel func.
func (s *Service) Subscribe(fn func(model.Event)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Service) publish(topics ...model.Topic) {
	s.subMu.Lock()
	fns := make([]func(model.Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, t := range topics {
		for _, fn := range fns {
			fn(model.Event{Topic: t})
		}
	}
}

func (s *Service) Notice() (model.Notice, bool) {
	return s.toast.Current()
}

// --- cart ---

func (s *Service) Cart() []model.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.clone()
}

func (s *Service) CartTotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.total()
}

// AddToCart reports false when the book is already in the cart.
func (s *Service) AddToCart(ctx context.Context, b model.Book) bool {
	s.mu.Lock()
	added := s.addLocked(ctx, &s.cart, model.KeyCart, b)
	s.mu.Unlock()

	if added {
		s.toast.Show("Book added to cart!", model.NoticeSuccess)
		s.publish(model.TopicCart)
	} else {
		s.toast.Show("Book already in cart.", model.NoticeInfo)
	}
	return added
}

func (s *Service) RemoveFromCart(ctx context.Context, key string) bool {
	s.mu.Lock()
	removed := s.removeLocked(ctx, &s.cart, model.KeyCart, key)
	s.mu.Unlock()

	s.toast.Show("Book removed from cart.", model.NoticeInfo)
	if removed {
		s.publish(model.TopicCart)
	}
	return removed
}

func (s *Service) ClearCart(ctx context.Context) {
	s.mu.Lock()
	s.Store.SaveBooks(ctx, model.KeyCart, []model.Book{})
	s.cart = bookList{}
	s.mu.Unlock()

	s.toast.Show("Cart cleared.", model.NoticeInfo)
	s.publish(model.TopicCart)
}

// MoveToWishlist adds b to the wishlist when absent, then removes it from the
// cart regardless. It reports whether the wishlist gained the book.
func (s *Service) MoveToWishlist(ctx context.Context, b model.Book) bool {
	s.mu.Lock()
	added := s.addLocked(ctx, &s.wishlist, model.KeyWishlist, b)
	removed := s.removeLocked(ctx, &s.cart, model.KeyCart, b.Key)
	s.mu.Unlock()

	if added {
		s.toast.Show("Book moved to wishlist.", model.NoticeSuccess)
	}
	s.toast.Show("Book removed from cart.", model.NoticeInfo)
	if added {
		s.publish(model.TopicWishlist)
	}
	if removed {
		s.publish(model.TopicCart)
	}
	return added
}

// --- wishlist ---

func (s *Service) Wishlist() []model.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wishlist.clone()
}

func (s *Service) AddToWishlist(ctx context.Context, b model.Book) bool {
	s.mu.Lock()
	added := s.addLocked(ctx, &s.wishlist, model.KeyWishlist, b)
	s.mu.Unlock()

	if added {
		s.toast.Show("Book added to wishlist!", model.NoticeSuccess)
		s.publish(model.TopicWishlist)
	} else {
		s.toast.Show("Book already in wishlist.", model.NoticeInfo)
	}
	return added
}

func (s *Service) RemoveFromWishlist(ctx context.Context, key string) bool {
	s.mu.Lock()
	removed := s.removeLocked(ctx, &s.wishlist, model.KeyWishlist, key)
	s.mu.Unlock()

	s.toast.Show("Book removed from wishlist.", model.NoticeInfo)
	if removed {
		s.publish(model.TopicWishlist)
	}
	return removed
}

func (s *Service) ClearWishlist(ctx context.Context) {
	s.mu.Lock()
	s.Store.SaveBooks(ctx, model.KeyWishlist, []model.Book{})
	s.wishlist = bookList{}
	s.mu.Unlock()

	s.toast.Show("Wishlist cleared.", model.NoticeInfo)
	s.publish(model.TopicWishlist)
}

// MoveToCart adds b to the cart, then removes it from the wishlist even when
// the cart already held it. It reports whether the cart gained the book.
func (s *Service) MoveToCart(ctx context.Context, b model.Book) bool {
	s.mu.Lock()
	added := s.addLocked(ctx, &s.cart, model.KeyCart, b)
	removed := s.removeLocked(ctx, &s.wishlist, model.KeyWishlist, b.Key)
	s.mu.Unlock()

	s.toast.Show("Book moved to cart!", model.NoticeSuccess)
	if added {
		s.publish(model.TopicCart)
	}
	if removed {
		s.publish(model.TopicWishlist)
	}
	return added
}

func (s *Service) addLocked(ctx context.Context, list *bookList, name string, b model.Book) bool {
	next, ok := list.with(b)
	if !ok {
		return false
	}
	s.Store.SaveBooks(ctx, name, next)
	*list = next
	return true
}

func (s *Service) removeLocked(ctx context.Context, list *bookList, name, key string) bool {
	next, ok := list.without(key)
	if !ok {
		return false
	}
	s.Store.SaveBooks(ctx, name, next)
	*list = next
	return true
}

// --- orders ---

func (s *Service) Orders() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Order{}, s.orders...)
}

// PlaceOrder snapshots the cart into a new order, prepends it to the order
// log and empties the cart. An empty cart is rejected with ErrEmptyCart
// unless AllowEmptyCheckout is set.
func (s *Service) PlaceOrder(ctx context.Context) (model.Order, error) {
	s.mu.Lock()
	if len(s.cart) == 0 && !s.opts.AllowEmptyCheckout {
		s.mu.Unlock()
		s.toast.Show("Your cart is empty.", model.NoticeInfo)
		return model.Order{}, model.ErrEmptyCart
	}

	now := s.opts.Now()
	id := now.UnixMilli()
	if id <= s.lastOrderID {
		id = s.lastOrderID + 1
	}
	order := model.Order{
		ID:    id,
		Date:  now.Format(orderDateLayout),
		Items: s.cart.clone(),
		Total: s.cart.total(),
	}

	orders := make([]model.Order, 0, len(s.orders)+1)
	orders = append(orders, order)
	orders = append(orders, s.orders...)
	s.Store.SaveOrders(ctx, orders)
	s.orders = orders
	s.lastOrderID = id

	s.Store.SaveBooks(ctx, model.KeyCart, []model.Book{})
	s.cart = bookList{}
	s.mu.Unlock()

	s.log.Info("order placed", "order_id", order.ID, "items", len(order.Items), "total", order.Total)
	s.toast.Show("Order placed successfully!", model.NoticeSuccess)
	s.publish(model.TopicOrders, model.TopicCart)
	return order, nil
}

// --- reviews ---

func (s *Service) Reviews(key string) []model.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Review{}, s.reviews[key]...)
}

// AddReview appends r to the reviews for key. A blank name is stored as Anonymous.
func (s *Service) AddReview(ctx context.Context, key string, r model.Review) {
	if strings.TrimSpace(r.Name) == "" {
		r.Name = "Anonymous"
	}

	s.mu.Lock()
	next := make(model.Reviews, len(s.reviews)+1)
	for k, v := range s.reviews {
		next[k] = v
	}
	list := make([]model.Review, 0, len(s.reviews[key])+1)
	list = append(list, s.reviews[key]...)
	next[key] = append(list, r)
	s.Store.SaveReviews(ctx, next)
	s.reviews = next
	s.mu.Unlock()

	s.toast.Show("Review added!", model.NoticeSuccess)
	s.publish(model.TopicReviews)
}

// --- profile ---

func (s *Service) Profile() model.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

func (s *Service) SaveProfile(ctx context.Context, name, email string) model.Profile {
	p := model.Profile{Name: name, Email: email}

	s.mu.Lock()
	s.Store.SaveProfile(ctx, p)
	s.profile = p
	s.mu.Unlock()

	s.toast.Show("Profile updated.", model.NoticeSuccess)
	s.publish(model.TopicProfile)
	return p
}

// --- search ---

func (s *Service) Filters() model.SearchFilters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

func (s *Service) SetFilters(f model.SearchFilters) {
	s.mu.Lock()
	s.filters = f
	s.mu.Unlock()
	s.publish(model.TopicFilters)
}

// Results returns the latest search results narrowed by the current filters.
func (s *Service) Results() []model.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return FilterBooks(s.results, s.filters)
}

// Search replaces the result set with the catalog's matches for query. A
// lookup superseded by a newer Search returns ErrSuperseded and leaves the
// newer results alone. On fetch failure the results are emptied and an error
// notice is shown.
func (s *Service) Search(ctx context.Context, query string) ([]model.Book, error) {
	if strings.TrimSpace(query) == "" {
		s.searches.stop()
		s.setResults(nil)
		return []model.Book{}, nil
	}

	sctx, gen, cancel := s.searches.begin(ctx)
	defer cancel()
	books, err := s.Catalog.SearchByQuery(sctx, query)

	s.mu.Lock()
	if !s.searches.current(gen) {
		s.mu.Unlock()
		return nil, model.ErrSuperseded
	}
	if err != nil {
		s.results = nil
	} else {
		s.results = books
	}
	out := FilterBooks(s.results, s.filters)
	s.mu.Unlock()

	s.publish(model.TopicResults)
	if err != nil {
		s.fetchFailed("search", query, err)
		return []model.Book{}, err
	}
	return out, nil
}

func (s *Service) setResults(books []model.Book) {
	s.mu.Lock()
	s.results = books
	s.mu.Unlock()
	s.publish(model.TopicResults)
}

// Category returns the selected category and its books.
func (s *Service) Category() (string, []model.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.category, append([]model.Book{}, s.categoryBooks...)
}

// BrowseCategory loads the books for category, superseding any earlier browse.
func (s *Service) BrowseCategory(ctx context.Context, category string) ([]model.Book, error) {
	sctx, gen, cancel := s.categories.begin(ctx)
	defer cancel()

	s.mu.Lock()
	s.category = category
	s.categoryBooks = nil
	s.mu.Unlock()

	books, err := s.Catalog.SearchByCategory(sctx, category)

	s.mu.Lock()
	if !s.categories.current(gen) {
		s.mu.Unlock()
		return nil, model.ErrSuperseded
	}
	if err == nil {
		s.categoryBooks = books
	}
	s.mu.Unlock()

	s.publish(model.TopicCategory)
	if err != nil {
		s.fetchFailed("category", category, err)
		return []model.Book{}, err
	}
	return append([]model.Book{}, books...), nil
}

func (s *Service) fetchFailed(op, input string, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	s.log.Warn("catalog lookup failed", "op", op, "input", input, "error", err)
	s.toast.Show("Could not load books. Please try again.", model.NoticeError)
}

// --- sharing ---

func (s *Service) ShareLink(b model.Book) string {
	s.toast.Show("Book link copied to clipboard!", model.NoticeInfo)
	return ShareLink(s.opts.BaseURL, b)
}

func (s *Service) TwitterIntent(b model.Book) string {
	return TwitterIntent(s.opts.BaseURL, b)
}

// FindBook looks a key up in the cart, wishlist, results and category books.
func (s *Service) FindBook(key string) (model.Book, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, list := range [][]model.Book{s.cart, s.wishlist, s.results, s.categoryBooks} {
		if i := bookList(list).indexOf(key); i >= 0 {
			return list[i], true
		}
	}
	return model.Book{}, false
}
