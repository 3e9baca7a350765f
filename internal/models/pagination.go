package models

import (
	"slices"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// PageRequest is a normalised page/limit pair.
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest clamps page and limit to usable values.
func NewPageRequest(page, limit int) PageRequest {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return PageRequest{Page: page, Limit: limit}
}

// Skip returns the number of documents preceding the page.
func (p PageRequest) Skip() int64 {
	return int64((p.Page - 1) * p.Limit)
}

// Pagination is the block returned alongside every paginated list.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// NewPagination computes totalPages = ceil(total/limit) and the next/prev flags.
func NewPagination(p PageRequest, total int64) Pagination {
	limit := int64(p.Limit)
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + limit - 1) / limit)
	}
	return Pagination{
		CurrentPage: p.Page,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasNextPage: int64(p.Page)*limit < total,
		HasPrevPage: p.Page > 1,
	}
}

// Page is a generic page of items.
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// SortField orders results by one field.
type SortField struct {
	Field      string
	Descending bool
}

// ParseSort reads "field" or "-field" terms separated by commas, keeping
// only fields in allowed. Unknown fields are dropped silently.
func ParseSort(raw string, allowed ...string) []SortField {
	fields := make([]SortField, 0)
	for _, term := range strings.Split(raw, ",") {
		term = strings.TrimSpace(term)
		desc := strings.HasPrefix(term, "-")
		term = strings.TrimPrefix(term, "-")
		if term == "" || !slices.Contains(allowed, term) {
			continue
		}
		fields = append(fields, SortField{Field: term, Descending: desc})
	}
	return fields
}

// Sortable fields per listing.
var (
	UserSortFields        = []string{"createdAt", "updatedAt", "name", "username", "status", "checkpointsCompleted", "lastLogin"}
	AppointmentSortFields = []string{"date", "time", "title", "status", "duration", "createdAt", "updatedAt"}
	CheckpointSortFields  = []string{"isMajorCheckpoint", "internalId", "location", "createdAt", "updatedAt"}
	StreetSortFields      = []string{"provaId", "location", "createdAt", "updatedAt"}
)
