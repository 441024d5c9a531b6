// Package domain contains core business entities and rules.
package domain

import "strings"

// quoteTrimCutset holds the characters stripped from the edges of a body or
// author: whitespace plus the straight and typographic quote characters that
// show up in exported documents.
const quoteTrimCutset = " \t\r\n\"'“”‘’"

// Quote is a body/author pair extracted from a quote source file.
// It is immutable once constructed; both fields are non-empty.
type Quote struct {
	// Body is the text of the quote.
	Body string

	// Author is who said or wrote the quote.
	Author string
}

// NewQuote builds a Quote from raw body and author text, trimming whitespace
// and surrounding quote characters. Returns ok=false when either field trims
// to empty; callers must skip such entries rather than emit a partial record.
func NewQuote(body, author string) (Quote, bool) {
	body = strings.Trim(body, quoteTrimCutset)
	author = strings.Trim(author, quoteTrimCutset)

	if body == "" || author == "" {
		return Quote{}, false
	}

	return Quote{Body: body, Author: author}, true
}

// String renders the quote the way it is drawn onto a meme.
func (q Quote) String() string {
	return q.Body + " - " + q.Author
}
