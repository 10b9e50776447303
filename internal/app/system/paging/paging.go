// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"go.mongodb.org/mongo-driver/mongo/options"
)

// MaxLimit caps the page size a client may request.
const MaxLimit = 500

// Find builds FindOptions from the optional limit and skip query
// parameters. Returns nil when neither is present, so unpaged requests
// keep returning the full collection. Invalid or out-of-range values
// are ignored.
func Find(r *http.Request) *options.FindOptions {
	limit := parseParam(r, "limit", MaxLimit)
	skip := parseParam(r, "skip", -1)

	if limit < 0 && skip < 0 {
		return nil
	}

	opts := options.Find()
	if limit >= 0 {
		opts.SetLimit(limit)
	}
	if skip >= 0 {
		opts.SetSkip(skip)
	}
	return opts
}

// parseParam returns the parsed non-negative value, clamped to max
// when max >= 0, or -1 when the parameter is absent or invalid.
func parseParam(r *http.Request, name string, max int64) int64 {
	s := r.URL.Query().Get(name)
	if s == "" {
		return -1
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return -1
	}
	if max >= 0 && n > max {
		return max
	}
	return n
}
