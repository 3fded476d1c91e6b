//go:build unit

package adapter

import (
	"book-store/internal/core/model"
	"book-store/pkg/util"
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingBackend struct{}

func (failingBackend) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("disk on fire")
}

func (failingBackend) Put(context.Context, string, []byte) error {
	return errors.New("disk on fire")
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(httptest.NewRecorder(), nil))
}

func backends(t *testing.T) map[string]Backend {
	fb, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	return map[string]Backend{"memory": NewMemoryBackend(), "file": fb}
}

func TestStore_RoundTrip(t *testing.T) {
	books := []model.Book{
		{Key: "/works/OL1W", Title: "Dune", Author: util.GetPtr("Frank Herbert"), Price: 12.34, Rating: 4.5,
			Img: util.GetPtr("https://covers.openlibrary.org/b/id/1-L.jpg"), Olid: util.GetPtr("OL1M")},
		{Key: "/works/OL2W", Title: "Untitled", Price: 9.99, Rating: 3.5},
	}
	orders := []model.Order{{ID: 1700000000000, Date: "11/14/2023, 10:13:20 PM", Items: books, Total: 22.33}}
	reviews := model.Reviews{"/works/OL1W": {{Name: "Ada", Text: "Great"}, {Name: "Anonymous", Text: "Meh"}}}
	profile := model.Profile{Name: "Ada", Email: "ada@example.com"}

	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := NewStore(backend, quietLogger())

			s.SaveBooks(ctx, model.KeyCart, books)
			s.SaveBooks(ctx, model.KeyWishlist, books[:1])
			s.SaveOrders(ctx, orders)
			s.SaveReviews(ctx, reviews)
			s.SaveProfile(ctx, profile)

			assert.Equal(t, books, s.LoadBooks(ctx, model.KeyCart))
			assert.Equal(t, books[:1], s.LoadBooks(ctx, model.KeyWishlist))
			assert.Equal(t, orders, s.LoadOrders(ctx))
			assert.Equal(t, reviews, s.LoadReviews(ctx))
			assert.Equal(t, profile, s.LoadProfile(ctx))
		})
	}
}

func TestStore_Defaults(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemoryBackend(), quietLogger())

	assert.Equal(t, []model.Book{}, s.LoadBooks(ctx, model.KeyCart))
	assert.Equal(t, []model.Book{}, s.LoadBooks(ctx, model.KeyWishlist))
	assert.Equal(t, []model.Order{}, s.LoadOrders(ctx))
	assert.Equal(t, model.Reviews{}, s.LoadReviews(ctx))
	assert.Equal(t, model.Profile{Name: "Guest"}, s.LoadProfile(ctx))
}

func TestStore_CorruptRecordsFallBack(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	require.NoError(t, backend.Put(ctx, model.KeyCart, []byte("{not json")))
	require.NoError(t, backend.Put(ctx, model.KeyWishlist, []byte("null")))
	require.NoError(t, backend.Put(ctx, model.KeyProfile, []byte(`[1,2,3]`)))
	require.NoError(t, backend.Put(ctx, model.KeyOrders, []byte(`{"id":1}`)))
	require.NoError(t, backend.Put(ctx, model.KeyReviews, []byte(`"nope"`)))

	s := NewStore(backend, quietLogger())
	assert.Equal(t, []model.Book{}, s.LoadBooks(ctx, model.KeyCart))
	assert.Equal(t, []model.Book{}, s.LoadBooks(ctx, model.KeyWishlist))
	assert.Equal(t, model.DefaultProfile(), s.LoadProfile(ctx))
	assert.Equal(t, []model.Order{}, s.LoadOrders(ctx))
	assert.Equal(t, model.Reviews{}, s.LoadReviews(ctx))
}

func TestStore_BackendErrorsAreAbsorbed(t *testing.T) {
	ctx := context.Background()
	s := NewStore(failingBackend{}, quietLogger())

	assert.NotPanics(t, func() { s.SaveBooks(ctx, model.KeyCart, nil) })
	assert.Equal(t, []model.Book{}, s.LoadBooks(ctx, model.KeyCart))
	assert.Equal(t, model.DefaultProfile(), s.LoadProfile(ctx))
}

func TestStore_NilCollectionsPersistAsEmpty(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	s := NewStore(backend, quietLogger())

	s.SaveBooks(ctx, model.KeyCart, nil)
	s.SaveOrders(ctx, nil)
	s.SaveReviews(ctx, nil)

	raw, ok, err := backend.Get(ctx, model.KeyCart)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[]", string(raw))
	raw, _, _ = backend.Get(ctx, model.KeyReviews)
	assert.Equal(t, "{}", string(raw))
}

func TestFileBackend_MissingAndOverwrite(t *testing.T) {
	ctx := context.Background()
	fb, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)

	_, ok, err := fb.Get(ctx, "cart")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, fb.Put(ctx, "cart", []byte("[1]")))
	require.NoError(t, fb.Put(ctx, "cart", []byte("[2]")))
	got, ok, err := fb.Get(ctx, "cart")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[2]", string(got))
}

func TestMemoryBackend_CopiesBytes(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()
	in := []byte("[]")
	require.NoError(t, m.Put(ctx, "cart", in))
	in[0] = 'x'

	got, ok, err := m.Get(ctx, "cart")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[]", string(got))
}
