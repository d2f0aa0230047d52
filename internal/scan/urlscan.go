package scan

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// FetchDocument retrieves url and parses it as HTML.
func FetchDocument(ctx context.Context, url string) (*Document, error) {
	rc, err := FetchURL(ctx, url)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ParseHTML(rc)
}

// ScanURL fetches url, waits interval and fetches it again, then scans the
// second snapshot against the first. A non-positive interval fetches once.
func (s *Scanner) ScanURL(ctx context.Context, url string, interval time.Duration) ([]Match, error) {
	first, err := FetchDocument(ctx, url)
	if err != nil {
		return nil, err
	}
	if interval <= 0 {
		return s.ScanDocuments(url, first, nil), nil
	}

	s.logger.Debug("waiting for second snapshot", zap.String("url", url), zap.Duration("interval", interval))
	if err := sleep(ctx, interval); err != nil {
		return nil, err
	}
	second, err := FetchDocument(ctx, url)
	if err != nil {
		return nil, err
	}
	return s.ScanDocuments(url, second, first), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
