package pagination

import (
	"strconv"
	"strings"
)

const (
	// DefaultPage is used when the page parameter is absent or unusable.
	DefaultPage = 1
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 20
	// MaxLimit caps how many rows any list query can request.
	MaxLimit = 100
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// Meta describes the page returned alongside list results.
type Meta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// Parse reads raw query values. Non-numeric or out-of-range values fall back to the defaults
// instead of failing the request.
func Parse(rawPage, rawLimit string) Params {
	return Params{
		Page:  parsePositive(rawPage, DefaultPage),
		Limit: NormalizeLimit(parsePositive(rawLimit, DefaultLimit)),
	}
}

func parsePositive(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Normalize returns params with defaults applied.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	p.Limit = NormalizeLimit(p.Limit)
	return p
}

// Skip is the number of rows preceding the requested page.
func (p Params) Skip() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// Take is the number of rows on the requested page.
func (p Params) Take() int {
	return p.Normalize().Limit
}

// Pages returns ceil(total/limit).
func Pages(total int64, limit int) int {
	limit = NormalizeLimit(limit)
	if total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// MetaFor builds the response metadata for params and the total row count.
func MetaFor(p Params, total int64) Meta {
	n := p.Normalize()
	return Meta{
		Page:  n.Page,
		Limit: n.Limit,
		Total: total,
		Pages: Pages(total, n.Limit),
	}
}
