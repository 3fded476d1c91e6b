package core

import (
	"book-store/internal/core/model"
	"net/url"
	"strings"
)

const twitterIntentURL = "https://twitter.com/intent/tweet"

// ShareLink is the fragment link that opens a book's detail view.
func ShareLink(baseURL string, b model.Book) string {
	return baseURL + "#book-" + b.Key
}

// TwitterIntent builds a compose URL prefilled with the share link and a blurb.
func TwitterIntent(baseURL string, b model.Book) string {
	link := encodeComponent(ShareLink(baseURL, b))
	text := encodeComponent("Check out this book: " + b.Title)
	return twitterIntentURL + "?url=" + link + "&text=" + text
}

// encodeComponent escapes like a browser's encodeURIComponent (space as %20).
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
