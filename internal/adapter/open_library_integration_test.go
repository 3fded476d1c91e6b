//go:build integration

package adapter

import (
	"book-store/pkg/http_client"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOpenLibrary_Live(t *testing.T) {
	c := NewOpenLibraryClient("https://openlibrary.org", 2, http_client.CreateHTTPClient(10*time.Second), nil)
	books, err := c.SearchByQuery(context.Background(), "clean architecture")
	require.NoError(t, err)
	require.NotEmpty(t, books)
	require.NotEmpty(t, books[0].Key)

	books, err = c.SearchByCategory(context.Background(), "Science Fiction")
	require.NoError(t, err)
	require.NotEmpty(t, books)
}
