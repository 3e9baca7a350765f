package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/BradenHooton/citywalk/internal/models"
)

// pageFromQuery reads page and limit, falling back to defaults for
// missing or malformed values.
func pageFromQuery(r *http.Request) models.PageRequest {
	q := r.URL.Query()
	return models.NewPageRequest(atoiOr(q.Get("page"), 0), atoiOr(q.Get("limit"), 0))
}

// sortFromQuery reads the "sort" parameter, e.g. "-createdAt,name".
func sortFromQuery(r *http.Request, allowed []string) []models.SortField {
	return models.ParseSort(r.URL.Query().Get("sort"), allowed...)
}

// boolQuery returns nil when the parameter is absent or not a boolean.
func boolQuery(r *http.Request, key string) *bool {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

func atoiOr(raw string, fallback int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
		return n
	}
	return fallback
}
