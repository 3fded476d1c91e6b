package adapter

import (
	"book-store/internal/core/model"
	"context"
	"encoding/json"
	"log/slog"
)

// Backend is a durable byte store addressed by record name.
type Backend interface {
	Get(ctx context.Context, name string) ([]byte, bool, error)
	Put(ctx context.Context, name string, data []byte) error
}

// Store maps storefront records onto a Backend as JSON. Read problems
// (missing, unreadable or corrupt values) yield the record's default; write
// problems are logged. Neither is returned to the caller.
type Store struct {
	backend Backend
	log     *slog.Logger
}

func NewStore(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{backend: backend, log: logger}
}

// Load decodes the named record, or returns def when it is absent or unusable.
func Load[T any](ctx context.Context, s *Store, name string, def T) T {
	raw, ok, err := s.backend.Get(ctx, name)
	if err != nil {
		s.log.Warn("store read failed, using default", "record", name, "error", err)
		return def
	}
	if !ok {
		return def
	}
	var v *T
	if err := json.Unmarshal(raw, &v); err != nil {
		s.log.Warn("corrupt store record, using default", "record", name, "error", err)
		return def
	}
	if v == nil {
		return def
	}
	return *v
}

func Save[T any](ctx context.Context, s *Store, name string, v T) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.log.Error("store encode failed", "record", name, "error", err)
		return
	}
	if err := s.backend.Put(ctx, name, raw); err != nil {
		s.log.Error("store write failed", "record", name, "error", err)
	}
}

func (s *Store) LoadBooks(ctx context.Context, name string) []model.Book {
	return Load(ctx, s, name, []model.Book{})
}

func (s *Store) SaveBooks(ctx context.Context, name string, books []model.Book) {
	if books == nil {
		books = []model.Book{}
	}
	Save(ctx, s, name, books)
}

func (s *Store) LoadProfile(ctx context.Context) model.Profile {
	return Load(ctx, s, model.KeyProfile, model.DefaultProfile())
}

func (s *Store) SaveProfile(ctx context.Context, p model.Profile) {
	Save(ctx, s, model.KeyProfile, p)
}

func (s *Store) LoadOrders(ctx context.Context) []model.Order {
	return Load(ctx, s, model.KeyOrders, []model.Order{})
}

func (s *Store) SaveOrders(ctx context.Context, orders []model.Order) {
	if orders == nil {
		orders = []model.Order{}
	}
	Save(ctx, s, model.KeyOrders, orders)
}

func (s *Store) LoadReviews(ctx context.Context) model.Reviews {
	return Load(ctx, s, model.KeyReviews, model.Reviews{})
}

func (s *Store) SaveReviews(ctx context.Context, reviews model.Reviews) {
	if reviews == nil {
		reviews = model.Reviews{}
	}
	Save(ctx, s, model.KeyReviews, reviews)
}
