package scan

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"sync"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36 patternhunter"

var (
	settingsMu          sync.RWMutex
	extraHeaders        = http.Header{}
	SkipTLSVerification bool
)

// SetExtraHeaders replaces the headers sent with every fetch and render.
func SetExtraHeaders(h http.Header) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	if h == nil {
		h = http.Header{}
	}
	extraHeaders = h.Clone()
}

// SetSkipTLSVerification toggles certificate verification for fetches and renders.
func SetSkipTLSVerification(skip bool) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	SkipTLSVerification = skip
}

func requestSettings() (http.Header, bool) {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return extraHeaders.Clone(), SkipTLSVerification
}

func httpClient(skipTLS bool) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if skipTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &http.Client{
		Timeout:   HTTPClientTimeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= MaxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// FetchURL retrieves the content at url with timeouts and limited redirects.
// The caller must close the returned body.
func FetchURL(ctx context.Context, url string) (io.ReadCloser, error) {
	headers, skipTLS := requestSettings()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	for k, vals := range headers {
		for _, v := range vals {
			if http.CanonicalHeaderKey(k) == "User-Agent" {
				req.Header.Set(k, v)
				continue
			}
			req.Header.Add(k, v)
		}
	}
	resp, err := httpClient(skipTLS).Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}
	return resp.Body, nil
}
