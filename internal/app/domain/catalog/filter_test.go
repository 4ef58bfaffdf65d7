package catalog

import (
	"net/url"
	"testing"
)

func sampleBooks() ([]Book, map[string]string) {
	books := []Book{
		{ID: "1", Title: "Dune", AuthorID: "a1", PublicationYear: 1965},
		{ID: "2", Title: "Dune Messiah", AuthorID: "a1", PublicationYear: 1969},
		{ID: "3", Title: "Foundation", AuthorID: "a2", PublicationYear: 1951},
		{ID: "4", Title: "I, Robot", AuthorID: "a2", PublicationYear: 1950},
	}
	names := map[string]string{"a1": "Frank Herbert", "a2": "Isaac Asimov"}
	return books, names
}

func TestParseBookFilter_IgnoresUnknownKeys(t *testing.T) {
	values := url.Values{}
	values.Set("title", " dune ")
	values.Set("publication_year", "1965")
	values.Set("ordering", "title")
	values.Set("color", "blue")
	values.Set("page_size", "10")

	f := ParseBookFilter(values)
	if f.Title != "dune" {
		t.Fatalf("title not trimmed: %q", f.Title)
	}
	if f.PublicationYear == nil || *f.PublicationYear != 1965 {
		t.Fatalf("publication year not parsed: %v", f.PublicationYear)
	}
	if f.OrderBy != OrderByTitle {
		t.Fatalf("ordering not parsed: %q", f.OrderBy)
	}
}

func TestParseBookFilter_BadValues(t *testing.T) {
	values := url.Values{}
	values.Set("publication_year", "ninteen-sixty-five")
	values.Set("ordering", "price")

	f := ParseBookFilter(values)
	if f.PublicationYear != nil {
		t.Fatalf("unparsable year should be ignored, got %v", *f.PublicationYear)
	}
	if f.OrderBy != "" {
		t.Fatalf("unknown ordering should be ignored, got %q", f.OrderBy)
	}
	if !f.IsZero() {
		t.Fatalf("filter should be zero: %#v", f)
	}
}

func TestBookFilter_Matches(t *testing.T) {
	books, names := sampleBooks()
	year := 1965
	cases := []struct {
		name   string
		filter BookFilter
		want   []string
	}{
		{"title substring case-insensitive", BookFilter{Title: "dune"}, []string{"1", "2"}},
		{"author substring", BookFilter{Author: "asimov"}, []string{"3", "4"}},
		{"exact year", BookFilter{PublicationYear: &year}, []string{"1"}},
		{"conjunction", BookFilter{Title: "dune", PublicationYear: &year}, []string{"1"}},
		{"no constraint", BookFilter{}, []string{"1", "2", "3", "4"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got []string
			for _, b := range books {
				if tc.filter.Matches(b, names[b.AuthorID]) {
					got = append(got, b.ID)
				}
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}

// Filters are conjunctive narrowing predicates, so any evaluation order
// yields the same set.
func TestBookFilter_OrderIndependence(t *testing.T) {
	books, names := sampleBooks()
	year := 1969
	filter := BookFilter{Title: "dune", Author: "herbert", PublicationYear: &year}

	predicates := []func(Book) bool{
		func(b Book) bool { return BookFilter{Title: filter.Title}.Matches(b, names[b.AuthorID]) },
		func(b Book) bool { return BookFilter{Author: filter.Author}.Matches(b, names[b.AuthorID]) },
		func(b Book) bool {
			return BookFilter{PublicationYear: filter.PublicationYear}.Matches(b, names[b.AuthorID])
		},
	}

	apply := func(order []int) map[string]bool {
		got := map[string]bool{}
		for _, b := range books {
			keep := true
			for _, idx := range order {
				if !predicates[idx](b) {
					keep = false
					break
				}
			}
			if keep {
				got[b.ID] = true
			}
		}
		return got
	}

	reference := apply([]int{0, 1, 2})
	for _, order := range [][]int{{0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}} {
		got := apply(order)
		if len(got) != len(reference) {
			t.Fatalf("order %v yields %v, want %v", order, got, reference)
		}
		for id := range reference {
			if !got[id] {
				t.Fatalf("order %v missing %s", order, id)
			}
		}
	}
}

func TestBookFilter_Sort(t *testing.T) {
	books, names := sampleBooks()

	byAuthor := append([]Book(nil), books...)
	BookFilter{OrderBy: OrderByAuthor}.Sort(byAuthor, names)
	if byAuthor[0].AuthorID != "a1" || byAuthor[len(byAuthor)-1].AuthorID != "a2" {
		t.Fatalf("author ordering wrong: %#v", byAuthor)
	}

	byYear := append([]Book(nil), books...)
	BookFilter{OrderBy: OrderByPublicationYear}.Sort(byYear, names)
	for i := 1; i < len(byYear); i++ {
		if byYear[i-1].PublicationYear > byYear[i].PublicationYear {
			t.Fatalf("year ordering wrong: %#v", byYear)
		}
	}

	// Stable: equal keys keep their relative order.
	tied := []Book{
		{ID: "x", Title: "Same", PublicationYear: 2000},
		{ID: "y", Title: "Same", PublicationYear: 2000},
	}
	BookFilter{OrderBy: OrderByTitle}.Sort(tied, nil)
	if tied[0].ID != "x" || tied[1].ID != "y" {
		t.Fatalf("stable sort violated: %#v", tied)
	}
}
