package shared_test

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/driveline-dms/driveline/internal/platform/httpx"
	"github.com/driveline-dms/driveline/internal/shared"
)

func TestParseListParamsDefaults(t *testing.T) {
	p := shared.ParseListParams(url.Values{})
	require.Equal(t, 10, p.Limit)
	require.Equal(t, 0, p.Offset)
}

func TestParseListParamsClampsLimit(t *testing.T) {
	cases := []struct {
		name  string
		limit string
		want  int
	}{
		{"above max", "200", 100},
		{"at max", "100", 100},
		{"zero falls back", "0", 10},
		{"negative falls back", "-5", 10},
		{"garbage falls back", "abc", 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := shared.ParseListParams(url.Values{"limit": {tc.limit}})
			require.Equal(t, tc.want, p.Limit)
		})
	}
}

func TestListParamsMetaHasMore(t *testing.T) {
	p := shared.ListParams{Limit: 10, Offset: 0}
	meta := p.Meta(25, 10)
	require.True(t, meta.HasMore)
	require.Equal(t, 25, meta.Total)

	last := shared.ListParams{Limit: 10, Offset: 20}
	meta = last.Meta(25, 5)
	require.False(t, meta.HasMore)
}

func TestParseID(t *testing.T) {
	id, err := shared.ParseID("42")
	require.NoError(t, err)
	require.Equal(t, int64(42), id)

	for _, raw := range []string{"0", "-1", "abc", "", "1.5"} {
		_, err := shared.ParseID(raw)
		require.Error(t, err, raw)
		require.True(t, errors.Is(err, httpx.ErrInvalidID), raw)
	}
}
