package favicon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"concoro/internal/domain/favicon"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, html string, status int) (*httptest.Server, string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(html))
	}))
	t.Cleanup(srv.Close)
	return srv, strings.TrimPrefix(srv.URL, "http://")
}

func newTestResolver(srvURL string) *Resolver {
	return NewResolver(nil, WithHomeURL(func(string) string { return srvURL + "/" }))
}

func TestResolve_PrefersAppleTouchIcon(t *testing.T) {
	srv, domain := serve(t, `<html><head>
		<link rel="shortcut icon" href="/favicon.ico">
		<link rel="icon" sizes="16x16" href="/i16.png">
		<link rel="icon" sizes="192x192" href="/i192.png">
		<link rel="apple-touch-icon" href="/apple.png">
	</head></html>`, http.StatusOK)

	f, err := newTestResolver(srv.URL).Resolve(context.Background(), domain)
	require.NoError(t, err)
	assert.Equal(t, favicon.SourceHTML, f.Source)
	assert.Equal(t, srv.URL+"/apple.png", f.IconURL)
}

func TestResolve_LargestIconWinsOverShortcut(t *testing.T) {
	srv, domain := serve(t, `<html><head>
		<link rel="shortcut icon" href="/favicon.ico">
		<link rel="icon" sizes="16x16" href="/i16.png">
		<link rel="icon" sizes="32x32 96x96" href="/i96.png">
	</head></html>`, http.StatusOK)

	f, err := newTestResolver(srv.URL).Resolve(context.Background(), domain)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/i96.png", f.IconURL)
}

func TestResolve_DefaultWhenNoLinks(t *testing.T) {
	srv, domain := serve(t, `<html><head><title>x</title></head></html>`, http.StatusOK)

	f, err := newTestResolver(srv.URL).Resolve(context.Background(), domain)
	require.NoError(t, err)
	assert.Equal(t, favicon.SourceDefault, f.Source)
	assert.Equal(t, srv.URL+"/favicon.ico", f.IconURL)
}

func TestResolve_FallbackOnError(t *testing.T) {
	srv, domain := serve(t, `oops`, http.StatusInternalServerError)

	f, err := newTestResolver(srv.URL).Resolve(context.Background(), domain)
	require.NoError(t, err)
	assert.Equal(t, favicon.SourceFallback, f.Source)
	assert.Equal(t, FallbackURL(domain), f.IconURL)
}

func TestRelRankAndSizes(t *testing.T) {
	assert.Equal(t, 3, relRank("apple-touch-icon-precomposed"))
	assert.Equal(t, 2, relRank("ICON"))
	assert.Equal(t, 1, relRank("shortcut icon"))
	assert.Equal(t, 0, relRank("stylesheet"))
	assert.Equal(t, 0, relRank("mask-icon"))

	assert.Equal(t, 180, parseSizes("120x120 180x180"))
	assert.Equal(t, anySize, parseSizes("any"))
	assert.Equal(t, 0, parseSizes("bogus"))
}
