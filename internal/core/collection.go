package core

import "book-store/internal/core/model"

// bookList is an ordered set of books keyed by Book.Key. Mutating helpers
// return a fresh slice so callers can persist before swapping state in.
type bookList []model.Book

func (l bookList) indexOf(key string) int {
	for i, b := range l {
		if b.Key == key {
			return i
		}
	}
	return -1
}

func (l bookList) contains(key string) bool {
	return l.indexOf(key) >= 0
}

// with appends b unless its key is already present.
func (l bookList) with(b model.Book) (bookList, bool) {
	if l.contains(b.Key) {
		return l, false
	}
	out := make(bookList, 0, len(l)+1)
	out = append(out, l...)
	return append(out, b), true
}

// without drops the entry keyed by key. ok is false when nothing was removed.
func (l bookList) without(key string) (bookList, bool) {
	i := l.indexOf(key)
	if i < 0 {
		return l, false
	}
	out := make(bookList, 0, len(l)-1)
	out = append(out, l[:i]...)
	return append(out, l[i+1:]...), true
}

func (l bookList) total() float64 {
	var sum float64
	for _, b := range l {
		sum += b.Price
	}
	return sum
}

func (l bookList) clone() []model.Book {
	return append([]model.Book{}, l...)
}
