package proxy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/elazarl/goproxy"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tavgar/patternhunter/internal/output"
	"github.com/tavgar/patternhunter/internal/scan"
	"go.uber.org/zap"
)

// Proxy scans HTML responses passing through it. The last snapshot of every
// URL is kept so that countdowns are detected when a page is reloaded.
type Proxy struct {
	scanner  *scan.Scanner
	printer  *output.Printer
	out      io.Writer
	logger   *zap.Logger
	annotate bool

	mu      sync.Mutex
	history *lru.Cache[string, *scan.Document]
	outMu   sync.Mutex
}

// New creates a Proxy. Matches are printed live to out with printer.
func New(s *scan.Scanner, printer *output.Printer, out io.Writer, logger *zap.Logger) *Proxy {
	if logger == nil {
		logger = zap.NewNop()
	}
	history, _ := lru.New[string, *scan.Document](DefaultHistorySize)
	return &Proxy{
		scanner: s,
		printer: printer,
		out:     out,
		logger:  logger,
		history: history,
	}
}

// DefaultHistorySize is the number of URLs whose last snapshot is kept.
const DefaultHistorySize = 1024

// SetHistorySize limits the snapshot history to n URLs, dropping the least
// recently seen ones first.
func (p *Proxy) SetHistorySize(n int) error {
	if n <= 0 {
		return fmt.Errorf("history size must be positive, got %d", n)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.history.Resize(n)
	return nil
}

// SetAnnotate makes the proxy add pattern classes to flagged elements in the
// HTML it returns to the client.
func (p *Proxy) SetAnnotate(on bool) { p.annotate = on }

// Handler returns the proxy as an http.Handler.
func (p *Proxy) Handler() http.Handler {
	prx := goproxy.NewProxyHttpServer()
	prx.Verbose = false
	// Enable MITM for HTTPS so response bodies can be inspected.
	prx.OnRequest().HandleConnect(goproxy.AlwaysMitm)
	prx.OnResponse().DoFunc(func(resp *http.Response, ctx *goproxy.ProxyCtx) *http.Response {
		return p.handleResponse(resp)
	})
	return prx
}

func (p *Proxy) handleResponse(resp *http.Response) *http.Response {
	if resp == nil || resp.Body == nil || resp.Request == nil {
		return resp
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "html") {
		return resp
	}
	if enc := resp.Header.Get("Content-Encoding"); enc != "" && enc != "identity" {
		return resp
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		p.logger.Warn("failed to read response", zap.Error(err))
		resp.Body = io.NopCloser(io.MultiReader(bytes.NewReader(data), errReader{err}))
		return resp
	}
	resp.Body = io.NopCloser(bytes.NewReader(data))

	url := resp.Request.URL.String()
	doc, err := scan.ParseHTML(bytes.NewReader(data))
	if err != nil {
		p.logger.Warn("failed to parse response", zap.String("url", url), zap.Error(err))
		return resp
	}
	prev := p.swap(url, doc.Snapshot())
	ms := p.scanner.ScanDocuments(url, doc, prev)
	if len(ms) == 0 {
		return resp
	}
	p.print(ms)

	// Documents cut at MaxDocumentSize are scanned but passed through as is.
	if !p.annotate || len(data) > scan.MaxDocumentSize {
		return resp
	}
	scan.Annotate(doc, ms)
	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		p.logger.Warn("failed to render annotated response", zap.String("url", url), zap.Error(err))
		return resp
	}
	resp.Body = io.NopCloser(&buf)
	resp.ContentLength = int64(buf.Len())
	resp.Header.Set("Content-Length", strconv.Itoa(buf.Len()))
	return resp
}

// swap stores snap as the latest snapshot of url and returns the previous one.
func (p *Proxy) swap(url string, snap *scan.Document) *scan.Document {
	p.mu.Lock()
	defer p.mu.Unlock()
	prev, _ := p.history.Get(url)
	p.history.Add(url, snap)
	return prev
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

func (p *Proxy) print(ms []scan.Match) {
	p.outMu.Lock()
	defer p.outMu.Unlock()
	if err := p.printer.Print(p.out, ms); err != nil {
		p.logger.Warn("failed to print matches", zap.Error(err))
	}
}

// Run starts an HTTP proxy server on addr and blocks until ctx is cancelled.
func (p *Proxy) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: p.Handler()}
	errCh := make(chan error, 1)
	go func() {
		p.logger.Info("proxy listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
