package core

import (
	"book-store/internal/core/model"
	"strconv"
	"strings"
)

// FilterBooks returns the books matching every set filter, in input order.
// The input slice is never modified.
func FilterBooks(books []model.Book, f model.SearchFilters) []model.Book {
	out := make([]model.Book, 0, len(books))
	for _, b := range books {
		if matchFilters(b, f) {
			out = append(out, b)
		}
	}
	return out
}

// matchFilters checks whether a book matches the given filters.
func matchFilters(b model.Book, f model.SearchFilters) bool {
	// title: contains (case-insensitive)
	if f.Title != "" {
		if !strings.Contains(strings.ToLower(b.Title), strings.ToLower(f.Title)) {
			return false
		}
	}

	// author: contains (case-insensitive); books without an author never match
	if f.Author != "" {
		if b.Author == nil || !strings.Contains(strings.ToLower(*b.Author), strings.ToLower(f.Author)) {
			return false
		}
	}

	if v, ok := parseBound(f.MinRating); ok && b.Rating < v {
		return false
	}
	if v, ok := parseBound(f.MinPrice); ok && b.Price < v {
		return false
	}
	if v, ok := parseBound(f.MaxPrice); ok && b.Price > v {
		return false
	}
	return true
}

// parseBound reports ok=false for empty or non-numeric input, which skips the predicate.
func parseBound(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
