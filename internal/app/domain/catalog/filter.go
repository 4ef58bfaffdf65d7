package catalog

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Ordering fields accepted by BookFilter. Anything else is ignored.
const (
	OrderByTitle           = "title"
	OrderByAuthor          = "author"
	OrderByPublicationYear = "publication_year"
)

// BookFilter is an explicit, pure filter value. Each present field narrows
// the result set; absent fields impose no constraint. Because every field is
// a conjunctive narrowing predicate, applying them in any order yields the
// same final set.
type BookFilter struct {
	Title           string
	Author          string
	PublicationYear *int
	OrderBy         string
}

// ParseBookFilter reads the recognized query keys (title, author,
// publication_year, ordering) from a URL query. Unrecognized keys and
// unparsable year values are ignored, not errors.
func ParseBookFilter(values url.Values) BookFilter {
	f := BookFilter{
		Title:  strings.TrimSpace(values.Get("title")),
		Author: strings.TrimSpace(values.Get("author")),
	}
	if raw := strings.TrimSpace(values.Get("publication_year")); raw != "" {
		if year, err := strconv.Atoi(raw); err == nil {
			f.PublicationYear = &year
		}
	}
	switch values.Get("ordering") {
	case OrderByTitle, OrderByAuthor, OrderByPublicationYear:
		f.OrderBy = values.Get("ordering")
	}
	return f
}

// IsZero reports whether the filter imposes no constraint and no ordering.
func (f BookFilter) IsZero() bool {
	return f.Title == "" && f.Author == "" && f.PublicationYear == nil && f.OrderBy == ""
}

// Matches evaluates the conjunction of present predicates against a Book.
// Title and author match case-insensitively on substrings; the author
// predicate tests the referenced Author's name.
func (f BookFilter) Matches(book Book, authorName string) bool {
	if f.Title != "" && !strings.Contains(strings.ToLower(book.Title), strings.ToLower(f.Title)) {
		return false
	}
	if f.Author != "" && !strings.Contains(strings.ToLower(authorName), strings.ToLower(f.Author)) {
		return false
	}
	if f.PublicationYear != nil && book.PublicationYear != *f.PublicationYear {
		return false
	}
	return true
}

// Sort orders books ascending by the requested field using a stable sort.
// authorNames maps author id to name for the author ordering.
func (f BookFilter) Sort(books []Book, authorNames map[string]string) {
	switch f.OrderBy {
	case OrderByTitle:
		sort.SliceStable(books, func(i, j int) bool { return books[i].Title < books[j].Title })
	case OrderByAuthor:
		sort.SliceStable(books, func(i, j int) bool {
			return authorNames[books[i].AuthorID] < authorNames[books[j].AuthorID]
		})
	case OrderByPublicationYear:
		sort.SliceStable(books, func(i, j int) bool {
			return books[i].PublicationYear < books[j].PublicationYear
		})
	}
}
