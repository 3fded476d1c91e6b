package model

import (
	"errors"
	"fmt"
	"time"
)

// All core models live here together for simplicity.

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not_found")
	ErrEmptyCart  = errors.New("empty_cart")
	ErrNetwork    = errors.New("network")
	ErrParse      = errors.New("parse")
	ErrSuperseded = errors.New("superseded")
)

// Store record names.
const (
	KeyCart     = "cart"
	KeyWishlist = "wishlist"
	KeyProfile  = "profile"
	KeyOrders   = "orders"
	KeyReviews  = "reviews"
)

// Book is a normalized catalog record. Key is its identity everywhere.
type Book struct {
	Key    string  `json:"key"`
	Title  string  `json:"title"`
	Author *string `json:"author,omitempty"`
	Price  float64 `json:"price"`
	Rating float64 `json:"rating"`
	Img    *string `json:"img,omitempty"`
	Olid   *string `json:"olid,omitempty"`
}

type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func DefaultProfile() Profile {
	return Profile{Name: "Guest", Email: ""}
}

type Order struct {
	ID    int64   `json:"id"`
	Date  string  `json:"date"`
	Items []Book  `json:"items"`
	Total float64 `json:"total"`
}

type Review struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// Reviews maps a book key to its reviews, oldest first.
type Reviews map[string][]Review

// SearchFilters holds the raw filter inputs. Empty fields are ignored.
type SearchFilters struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	MinRating string `json:"minRating"`
	MinPrice  string `json:"minPrice"`
	MaxPrice  string `json:"maxPrice"`
}

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeInfo    NoticeKind = "info"
	NoticeError   NoticeKind = "error"
)

// Notice is a single toast instance.
type Notice struct {
	ID      string     `json:"id"`
	Message string     `json:"msg"`
	Kind    NoticeKind `json:"type"`
	ShownAt time.Time  `json:"shown_at"`
}

type Topic string

const (
	TopicCart     Topic = "cart"
	TopicWishlist Topic = "wishlist"
	TopicProfile  Topic = "profile"
	TopicOrders   Topic = "orders"
	TopicReviews  Topic = "reviews"
	TopicFilters  Topic = "filters"
	TopicResults  Topic = "results"
	TopicCategory Topic = "category"
	TopicToast    Topic = "toast"
)

// Event tells subscribers which slice of state changed.
type Event struct {
	Topic Topic
}

type FetchKind int

const (
	FetchNetwork FetchKind = iota
	FetchParse
)

func (k FetchKind) String() string {
	switch k {
	case FetchNetwork:
		return "network"
	case FetchParse:
		return "parse"
	default:
		return "unknown"
	}
}

// FetchError is returned by catalog lookups. Status is set for non-2xx responses.
type FetchError struct {
	Kind   FetchKind
	Op     string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("catalog %s: %s error: status %d", e.Op, e.Kind, e.Status)
	}
	return fmt.Sprintf("catalog %s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == FetchNetwork
	case ErrParse:
		return e.Kind == FetchParse
	}
	return false
}
