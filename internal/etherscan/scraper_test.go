package etherscan

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScraperAlternativePattern(t *testing.T) {
	// 主模式匹配不上时退回宽松模式
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<div>This is a proxy. The implementation contract at
			<a class="link" href="/address/%s">view</a></div>`, implAddr)
	}))
	defer server.Close()

	scraper := NewPageScraper(server.URL, server.Client())
	impl, err := scraper.ResolveImplementationFromPage(context.Background(), proxyAddr)
	require.NoError(t, err)
	assert.Equal(t, implAddr, impl)
}

func TestScraperNoMatchReturnsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>plain token page</body></html>")
	}))
	defer server.Close()

	scraper := NewPageScraper(server.URL, server.Client())
	impl, err := scraper.ResolveImplementationFromPage(context.Background(), proxyAddr)
	require.NoError(t, err)
	assert.Empty(t, impl)
}

func TestScraperPageErrorIsReported(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	scraper := NewPageScraper(server.URL, server.Client())
	_, err := scraper.ResolveImplementationFromPage(context.Background(), proxyAddr)
	assert.Error(t, err)
}

func TestExtractAddressFromPayload(t *testing.T) {
	payload := fmt.Sprintf("this proxy delegates to the contract at %s for all calls", implAddr)
	assert.Equal(t, implAddr, extractAddressFromPayload(payload))

	assert.Empty(t, extractAddressFromPayload("no address mentioned here"))
	assert.Empty(t, extractAddressFromPayload("at 0x1234 too short"))
}
