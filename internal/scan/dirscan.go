package scan

import (
	"io"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// ScanDir scans all saved HTML pages under root directory using workers
// to limit concurrency. Each file is a single snapshot.
func (s *Scanner) ScanDir(root string, workers int) ([]Match, error) {
	files, err := WalkDir(root)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()

	if workers <= 0 {
		workers = 1
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	matchesCh := make(chan []Match, len(files))
	errCh := make(chan error, len(files))

	for name, r := range files {
		sem <- struct{}{}
		wg.Add(1)
		go func(n string, rc io.Reader) {
			defer wg.Done()
			defer func() { <-sem }()

			ms, err := s.ScanReader(n, rc)
			if err != nil {
				s.logger.Warn("scan failed", zap.String("file", n), zap.Error(err))
				errCh <- err
				return
			}
			if len(ms) > 0 {
				matchesCh <- ms
			}
		}(name, r)
	}

	go func() {
		wg.Wait()
		close(matchesCh)
		close(errCh)
	}()

	var matches []Match
	for m := range matchesCh {
		matches = append(matches, m...)
	}

	var firstErr error
	for err := range errCh {
		if firstErr == nil {
			firstErr = err
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Source < matches[j].Source })
	return matches, firstErr
}
