// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// =============================================================================
// FILTERS
// =============================================================================

// FilterKey names one filter dimension. The value is the query parameter.
type FilterKey string

const (
	FilterStrategy      FilterKey = "strategy"
	FilterMVCComponent  FilterKey = "mvc_component"
	FilterGdpr          FilterKey = "gdpr_id"
	FilterPbd           FilterKey = "pbd_id"
	FilterIso           FilterKey = "iso_id"
	FilterVulnerability FilterKey = "vulnerability_id"
	FilterSearch        FilterKey = "search"
)

// FilterKeys lists every key in query-string order.
var FilterKeys = []FilterKey{
	FilterStrategy, FilterMVCComponent, FilterGdpr, FilterPbd,
	FilterIso, FilterVulnerability, FilterSearch,
}

// Filters is the closed set of list/search filters. Zero values mean
// "absent": they are never encoded into a request.
type Filters struct {
	Strategy        Strategy
	MVCComponent    MVCComponent
	GdprID          int
	PbdID           int
	IsoID           int
	VulnerabilityID int
	Search          string
}

// Set returns a copy of f with key set to value. An empty value is the same
// as Unset. Enum and id values are validated.
func (f Filters) Set(key FilterKey, value string) (Filters, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return f.Unset(key), nil
	}
	switch key {
	case FilterStrategy:
		s, err := ParseStrategy(value)
		if err != nil {
			return f, err
		}
		f.Strategy = s
	case FilterMVCComponent:
		c, err := ParseMVCComponent(value)
		if err != nil {
			return f, err
		}
		f.MVCComponent = c
	case FilterGdpr, FilterPbd, FilterIso, FilterVulnerability:
		id, err := strconv.Atoi(value)
		if err != nil || id <= 0 {
			return f, fmt.Errorf("%s: invalid id %q", key, value)
		}
		*f.idField(key) = id
	case FilterSearch:
		f.Search = value
	default:
		return f, fmt.Errorf("unknown filter %q", key)
	}
	return f, nil
}

// Unset returns a copy of f with key absent.
func (f Filters) Unset(key FilterKey) Filters {
	switch key {
	case FilterStrategy:
		f.Strategy = ""
	case FilterMVCComponent:
		f.MVCComponent = ""
	case FilterGdpr, FilterPbd, FilterIso, FilterVulnerability:
		*f.idField(key) = 0
	case FilterSearch:
		f.Search = ""
	}
	return f
}

// Get returns the encoded value of key, or "" when absent.
func (f Filters) Get(key FilterKey) string {
	switch key {
	case FilterStrategy:
		return string(f.Strategy)
	case FilterMVCComponent:
		return string(f.MVCComponent)
	case FilterGdpr, FilterPbd, FilterIso, FilterVulnerability:
		if id := *f.idField(key); id > 0 {
			return strconv.Itoa(id)
		}
		return ""
	case FilterSearch:
		return f.Search
	}
	return ""
}

// Active returns the keys currently set, in FilterKeys order.
func (f Filters) Active() []FilterKey {
	var keys []FilterKey
	for _, k := range FilterKeys {
		if f.Get(k) != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// IsZero reports whether no filter is set.
func (f Filters) IsZero() bool {
	return len(f.Active()) == 0
}

// Encode adds every set filter to q. Absent keys are not written.
func (f Filters) Encode(q url.Values) {
	for _, k := range f.Active() {
		q.Set(string(k), f.Get(k))
	}
}

func (f *Filters) idField(key FilterKey) *int {
	switch key {
	case FilterGdpr:
		return &f.GdprID
	case FilterPbd:
		return &f.PbdID
	case FilterIso:
		return &f.IsoID
	default:
		return &f.VulnerabilityID
	}
}

// =============================================================================
// PAGINATION
// =============================================================================

// PageSizes are the page sizes the UI offers.
var PageSizes = []int{10, 25, 50, 100}

// DefaultPageSize is the page size used when none is configured.
const DefaultPageSize = 10

// ErrInvalidPageSize is returned for sizes outside PageSizes.
var ErrInvalidPageSize = fmt.Errorf("page size must be one of %v", PageSizes)

// ValidPageSize reports whether n is one of PageSizes.
func ValidPageSize(n int) bool {
	for _, s := range PageSizes {
		if s == n {
			return true
		}
	}
	return false
}

// PageRequest is a 1-based page of a fixed size.
type PageRequest struct {
	Page int
	Size int
}

// NewPageRequest clamps page to at least 1 and rejects sizes outside
// PageSizes.
func NewPageRequest(page, size int) (PageRequest, error) {
	if !ValidPageSize(size) {
		return PageRequest{}, fmt.Errorf("%w: got %d", ErrInvalidPageSize, size)
	}
	if page < 1 {
		page = 1
	}
	return PageRequest{Page: page, Size: size}, nil
}

// Skip is the backend offset for the page.
func (p PageRequest) Skip() int {
	return (p.Page - 1) * p.Size
}

// Encode writes skip and limit into q.
func (p PageRequest) Encode(q url.Values) {
	q.Set("skip", strconv.Itoa(p.Skip()))
	q.Set("limit", strconv.Itoa(p.Size))
}

// TotalPages is ceil(total/size), at least 1.
func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}
