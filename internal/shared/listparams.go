package shared

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/driveline-dms/driveline/internal/platform/httpx"
)

// List pagination bounds shared by every resource.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListParams carries pagination for list queries.
type ListParams struct {
	Limit  int
	Offset int
}

// ParseListParams reads limit/offset query parameters and clamps them into the
// supported range. Absent or unparseable values fall back to the defaults.
func ParseListParams(values url.Values) ListParams {
	p := ListParams{Limit: DefaultLimit, Offset: 0}
	if raw := values.Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			p.Limit = parsed
		}
	}
	if raw := values.Get("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			p.Offset = parsed
		}
	}
	return p.Clamp()
}

// Clamp bounds limit to [1, MaxLimit] and offset to >= 0.
func (p ListParams) Clamp() ListParams {
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Meta builds the list metadata envelope for a page of returned rows.
func (p ListParams) Meta(total, returned int) httpx.ListMeta {
	return httpx.ListMeta{
		Total:   total,
		Limit:   p.Limit,
		Offset:  p.Offset,
		HasMore: p.Offset+returned < total,
	}
}

// ParseID parses a route identifier, requiring a positive integer.
func ParseID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", httpx.ErrInvalidID, raw)
	}
	return id, nil
}
