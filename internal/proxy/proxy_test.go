package proxy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tavgar/patternhunter/internal/output"
	"github.com/tavgar/patternhunter/internal/pattern"
	"github.com/tavgar/patternhunter/internal/scan"
	"go.uber.org/zap/zaptest"
)

func newBackend() *httptest.Server {
	var hits int32
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<html><body><p>Only 3 items left, 10 pieces available</p><span>00:%02d</span></body></html>`, 30-n)
	}))
}

func get(t *testing.T, client *http.Client, u string) string {
	t.Helper()
	resp, err := client.Get(u)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func newProxy(t *testing.T, out *bytes.Buffer) *Proxy {
	t.Helper()
	s, err := scan.NewScanner(pattern.Default(nil), zaptest.NewLogger(t))
	require.NoError(t, err)
	return New(s, output.NewPrinter("json", false, true, "test"), out, zaptest.NewLogger(t))
}

func TestProxyScansResponses(t *testing.T) {
	backend := newBackend()
	defer backend.Close()

	buf := &bytes.Buffer{}
	p := newProxy(t, buf)
	p.SetAnnotate(true)
	front := httptest.NewServer(p.Handler())
	defer front.Close()

	proxyURL, _ := url.Parse(front.URL)
	client := &http.Client{Transport: &http.Transport{Proxy: http.ProxyURL(proxyURL), DisableCompression: true}}

	first := get(t, client, backend.URL)
	assert.Contains(t, first, pattern.DetectedClassName+" "+pattern.ClassPrefix+"scarcity")
	assert.NotContains(t, buf.String(), `"countdown"`)

	second := get(t, client, backend.URL)
	assert.Contains(t, second, pattern.ClassPrefix+"countdown")
	assert.Contains(t, buf.String(), `"className":"countdown"`)
	assert.Contains(t, buf.String(), `"className":"scarcity"`)
}

func TestProxyPassesNonHTML(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, "10 pieces available")
	}))
	defer backend.Close()

	buf := &bytes.Buffer{}
	front := httptest.NewServer(newProxy(t, buf).Handler())
	defer front.Close()

	proxyURL, _ := url.Parse(front.URL)
	client := &http.Client{Transport: &http.Transport{Proxy: http.ProxyURL(proxyURL)}}
	assert.Equal(t, "10 pieces available", get(t, client, backend.URL))
	assert.Empty(t, buf.String())
}

func TestProxyHistoryEviction(t *testing.T) {
	backend := newBackend()
	defer backend.Close()

	buf := &bytes.Buffer{}
	p := newProxy(t, buf)
	require.NoError(t, p.SetHistorySize(1))
	assert.Error(t, p.SetHistorySize(0))
	front := httptest.NewServer(p.Handler())
	defer front.Close()

	proxyURL, _ := url.Parse(front.URL)
	client := &http.Client{Transport: &http.Transport{Proxy: http.ProxyURL(proxyURL)}}

	get(t, client, backend.URL+"/a")
	get(t, client, backend.URL+"/b")
	get(t, client, backend.URL+"/a")
	assert.NotContains(t, buf.String(), `"countdown"`, "snapshot of /a should have been evicted")
	assert.Equal(t, 1, p.history.Len())

	get(t, client, backend.URL+"/a")
	assert.Contains(t, buf.String(), `"className":"countdown"`)
}

func TestProxyKeepsLargeBodies(t *testing.T) {
	page := `<html><body><p>10 pieces available</p><pre>` +
		strings.Repeat("x", scan.MaxDocumentSize) + `</pre></body></html>`
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, page)
	}))
	defer backend.Close()

	buf := &bytes.Buffer{}
	p := newProxy(t, buf)
	p.SetAnnotate(true)
	front := httptest.NewServer(p.Handler())
	defer front.Close()

	proxyURL, _ := url.Parse(front.URL)
	client := &http.Client{Transport: &http.Transport{Proxy: http.ProxyURL(proxyURL), DisableCompression: true}}
	got := get(t, client, backend.URL)
	assert.Equal(t, len(page), len(got))
	assert.True(t, got == page, "oversized page must pass through unchanged")
	assert.Contains(t, buf.String(), `"className":"scarcity"`)
}

func TestProxyRunStopsOnCancel(t *testing.T) {
	// Choose an available port
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- newProxy(t, &bytes.Buffer{}).Run(ctx, addr)
	}()
	// give server time to start
	time.Sleep(100 * time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("proxy did not stop")
	}
}
