package repository

import (
	"strconv"
	"strings"
)

const (
	// DefaultPage is the page used when none (or an invalid one) is requested.
	DefaultPage = 1
)

// Paginator represents page/limit pagination over an already filtered result list.
// A zero Limit means "the whole result set".
type Paginator struct {
	Page  int
	Limit int
}

// ParsePaginator builds a Paginator from raw query values. Only the leading
// integer of each value is read, so "2.0" and "2abc" both mean 2. Missing,
// non-numeric or non-positive values fall back to the defaults.
func ParsePaginator(page, limit string) Paginator {
	return Paginator{
		Page:  positiveOr(page, DefaultPage),
		Limit: positiveOr(limit, 0),
	}
}

// Resolve returns the effective limit for a result list of the given size.
func (p Paginator) Resolve(total int) Paginator {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = total
	}
	return p
}

// Paginate returns the page of items selected by p along with the resolved paginator.
// A page past the end yields an empty, non-nil slice.
func Paginate[T any](items []T, p Paginator) ([]T, Paginator) {
	p = p.Resolve(len(items))
	if p.Limit == 0 || p.Page-1 > len(items)/p.Limit {
		return []T{}, p
	}
	start := (p.Page - 1) * p.Limit
	if start >= len(items) {
		return []T{}, p
	}
	end := min(start+p.Limit, len(items))
	return items[start:end], p
}

func positiveOr(raw string, fallback int) int {
	n, err := strconv.Atoi(leadingInt(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// leadingInt returns the optional sign and the digits that start raw,
// after leading whitespace.
func leadingInt(raw string) string {
	raw = strings.TrimLeft(raw, " \t\n\r")
	end := 0
	if end < len(raw) && (raw[end] == '+' || raw[end] == '-') {
		end++
	}
	digits := end
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == digits {
		return ""
	}
	return raw[:end]
}
