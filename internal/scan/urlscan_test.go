package scan

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countdownServer serves a timer that loses one second per request.
func countdownServer() *httptest.Server {
	var hits int32
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, fmt.Sprintf(`<html><body><div>Offer ends in <span>00:%02d</span></div><p>Free delivery</p></body></html>`, 30-n))
	}))
}

func TestScanURLDetectsCountdown(t *testing.T) {
	ts := countdownServer()
	defer ts.Close()

	s := newTestScanner(t)
	matches, err := s.ScanURL(context.Background(), ts.URL, 10*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "countdown", matches[0].ClassName)
	assert.Equal(t, "/html[1]/body[1]/div[1]/span[1]", matches[0].Element)
	assert.Equal(t, ts.URL, matches[0].Source)
}

func TestScanURLSingleSnapshot(t *testing.T) {
	ts := countdownServer()
	defer ts.Close()

	s := newTestScanner(t)
	matches, err := s.ScanURL(context.Background(), ts.URL, 0)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestScanURLCancelled(t *testing.T) {
	ts := countdownServer()
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	s := newTestScanner(t)
	_, err := s.ScanURL(ctx, ts.URL, time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
