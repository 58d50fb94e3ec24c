// Package pagination splits ordered gorm queries into numbered pages.
//
// Page numbers are forgiving: a missing or malformed number yields the
// first page and a number past either end yields the last page, so a list
// always renders something. An empty list has a single empty page.
package pagination

import (
	"fmt"
	"strconv"

	"gorm.io/gorm"
)

type Page[T any] struct {
	Items    []T
	Number   int
	NumPages int
	PerPage  int
	Total    int64
}

func (p *Page[T]) HasPrevious() bool   { return p.Number > 1 }
func (p *Page[T]) HasNext() bool       { return p.Number < p.NumPages }
func (p *Page[T]) HasOtherPages() bool { return p.NumPages > 1 }
func (p *Page[T]) PreviousNumber() int { return p.Number - 1 }
func (p *Page[T]) NextNumber() int     { return p.Number + 1 }

// StartIndex is the 1-based index of the first item on the page, 0 when empty.
func (p *Page[T]) StartIndex() int64 {
	if p.Total == 0 {
		return 0
	}
	return int64(p.PerPage)*int64(p.Number-1) + 1
}

// EndIndex is the 1-based index of the last item on the page.
func (p *Page[T]) EndIndex() int64 {
	if p.Total == 0 {
		return 0
	}
	return p.StartIndex() + int64(len(p.Items)) - 1
}

// NumPages returns how many pages total items occupy; never less than one.
func NumPages(total int64, perPage int) int {
	if total <= 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

// Resolve turns a raw page parameter into a valid page number.
func Resolve(raw string, numPages int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	if n < 1 || n > numPages {
		return numPages
	}
	return n
}

// Paginate counts rows with countQuery, then loads one page with listQuery.
// The two queries are separate so that annotations and preloads on the list
// query do not leak into the COUNT.
func Paginate[T any](countQuery, listQuery *gorm.DB, raw string, perPage int) (*Page[T], error) {
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count page rows: %w", err)
	}

	numPages := NumPages(total, perPage)
	page := &Page[T]{
		Number:   Resolve(raw, numPages),
		NumPages: numPages,
		PerPage:  perPage,
		Total:    total,
		Items:    []T{},
	}
	if total == 0 {
		return page, nil
	}

	offset := (page.Number - 1) * perPage
	if err := listQuery.Limit(perPage).Offset(offset).Find(&page.Items).Error; err != nil {
		return nil, fmt.Errorf("load page %d: %w", page.Number, err)
	}
	return page, nil
}
