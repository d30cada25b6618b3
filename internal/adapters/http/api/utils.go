package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/jobchanges/internal/domain/pipeline"
)

// Query parameter names.
const (
	paramTop  = "top"
	paramYear = "year"
)

// queryInt reads an optional integer parameter. set is false when the
// parameter is absent or blank.
func queryInt(r *http.Request, name string, lo, hi int) (int, bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, true, fmt.Errorf("%w: %s must be an integer, got %q", ErrBadRequest, name, raw)
	}
	if n < lo || n > hi {
		return 0, true, fmt.Errorf("%w: %s must be in [%d, %d], got %d", ErrBadRequest, name, lo, hi, n)
	}
	return n, true, nil
}

// parseParams reads top and year from r. Unset values stay zero so the
// service applies its defaults.
func parseParams(r *http.Request, maxTopN int) (pipeline.Params, error) {
	var p pipeline.Params
	top, _, err := queryInt(r, paramTop, 1, maxTopN)
	if err != nil {
		return p, err
	}
	year, _, err := queryInt(r, paramYear, 1, 9999)
	if err != nil {
		return p, err
	}
	p.TopN = top
	p.TargetYear = year
	return p, nil
}
