package scan

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// RenderURL loads the page at urlStr in headless Chrome and returns the
// rendered HTML after RenderSleepDuration, followed by one more snapshot per
// entry in intervals, each taken after waiting that long.
func RenderURL(ctx context.Context, urlStr string, intervals ...time.Duration) ([][]byte, error) {
	extra, skipTLS := requestSettings()
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	if skipTLS {
		opts = append(opts, chromedp.Flag("ignore-certificate-errors", true))
	}
	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	ctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	timeout := RenderTimeout
	for _, d := range intervals {
		timeout += d
	}
	ctx, cancelTimeout := context.WithTimeout(ctx, timeout)
	defer cancelTimeout()

	headers := map[string]interface{}{"User-Agent": defaultUserAgent}
	if vals := extra.Values("User-Agent"); len(vals) > 0 {
		headers["User-Agent"] = vals[len(vals)-1]
	}
	for k, vals := range extra {
		if strings.EqualFold(k, "User-Agent") || len(vals) == 0 {
			continue
		}
		headers[k] = vals[len(vals)-1]
	}

	snapshots := make([]string, len(intervals)+1)
	actions := []chromedp.Action{
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers(headers)),
		emulation.SetUserAgentOverride(headers["User-Agent"].(string)),
		chromedp.Navigate(urlStr),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(RenderSleepDuration),
		chromedp.OuterHTML("html", &snapshots[0], chromedp.ByQuery),
	}
	for i, d := range intervals {
		actions = append(actions,
			chromedp.Sleep(d),
			chromedp.OuterHTML("html", &snapshots[i+1], chromedp.ByQuery),
		)
	}
	if err := chromedp.Run(ctx, actions...); err != nil {
		return nil, err
	}

	out := make([][]byte, len(snapshots))
	for i, s := range snapshots {
		out[i] = []byte(s)
	}
	return out, nil
}

// ScanRendered renders urlStr twice, interval apart, and scans the second
// snapshot against the first.
func (s *Scanner) ScanRendered(ctx context.Context, urlStr string, interval time.Duration) ([]Match, error) {
	var intervals []time.Duration
	if interval > 0 {
		intervals = append(intervals, interval)
	}
	pages, err := RenderURL(ctx, urlStr, intervals...)
	if err != nil {
		return nil, err
	}
	docs := make([]*Document, len(pages))
	for i, p := range pages {
		if docs[i], err = ParseHTML(bytes.NewReader(p)); err != nil {
			return nil, err
		}
	}
	if len(docs) == 1 {
		return s.ScanDocuments(urlStr, docs[0], nil), nil
	}
	return s.ScanDocuments(urlStr, docs[1], docs[0]), nil
}
