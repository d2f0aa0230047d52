package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tavgar/patternhunter/internal/config"
	"github.com/tavgar/patternhunter/internal/scan"
	"go.uber.org/zap"
)

type scanOptions struct {
	previous    string
	targets     string
	output      string
	annotateOut string
	render      bool
	all         bool
}

func newScanCmd(a *app) *cobra.Command {
	var opts scanOptions
	d := config.Default()
	cmd := &cobra.Command{
		Use:   "scan [URL|FILE|DIR|-]...",
		Short: "Scan pages for dark patterns",
		Long: `Scan web pages, saved HTML files, directories of saved pages (including
.zip archives) or standard input.

URLs are fetched twice, --interval apart, so countdowns can be detected.
For files and standard input pass the earlier snapshot with --previous.`,
		Example: `  patternhunter scan https://shop.example/offer
  patternhunter scan --render --interval 3s https://shop.example/offer
  patternhunter scan --previous before.html after.html
  curl -s https://shop.example | patternhunter scan -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd.Context(), a, opts, args, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.previous, "previous", "", "earlier snapshot of the page given as FILE or -")
	f.StringVarP(&opts.targets, "targets", "t", "", "file with one target per line")
	f.StringVarP(&opts.output, "output", "o", "", "write results to file instead of stdout")
	f.StringVar(&opts.annotateOut, "annotated-output", "", "write the annotated HTML of a single file or stdin target")
	f.BoolVar(&opts.render, "render", false, "render URLs with headless Chrome before scanning")
	f.BoolVar(&opts.all, "all", false, "report every matching element, not only the innermost")
	f.Int("workers", d.Workers, "number of concurrent workers for directory scans")
	f.Duration("interval", d.Interval, "delay between the two snapshots of a URL (0 takes one snapshot)")
	_ = a.v.BindPFlag("workers", f.Lookup("workers"))
	_ = a.v.BindPFlag("interval", f.Lookup("interval"))
	return cmd
}

func runScan(ctx context.Context, a *app, opts scanOptions, args []string, stdin io.Reader, stdout io.Writer) error {
	s, err := a.scanner()
	if err != nil {
		return err
	}
	s.SetInnermost(!opts.all)

	targets := append([]string(nil), args...)
	if opts.targets != "" {
		more, err := readTargets(opts.targets)
		if err != nil {
			return err
		}
		targets = append(targets, more...)
	}
	if len(targets) == 0 {
		return fmt.Errorf("no targets given")
	}
	if opts.annotateOut != "" && len(targets) != 1 {
		return fmt.Errorf("--annotated-output needs exactly one target")
	}
	if opts.previous != "" {
		if len(targets) != 1 || isURL(targets[0]) || isDir(targets[0]) {
			return fmt.Errorf("--previous needs exactly one file or stdin target")
		}
		if opts.previous == "-" && targets[0] == "-" {
			return fmt.Errorf("--previous and the target cannot both be stdin")
		}
	}

	var (
		matches []scan.Match
		failed  int
	)
	for _, t := range targets {
		ms, err := a.scanTarget(ctx, s, t, opts, stdin)
		matches = append(matches, ms...)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.logger.Error("scan failed", zap.String("target", t), zap.Error(err))
			failed++
		}
	}
	matches = scan.UniqueMatches(matches)

	w := stdout
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	showSource := len(targets) > 1 || isDir(targets[0])
	if err := a.printer(showSource).Print(w, matches); err != nil {
		return err
	}
	if failed > 0 {
		return &exitError{code: exitScanFailed, err: fmt.Errorf("%d of %d targets could not be scanned", failed, len(targets))}
	}
	if len(matches) > 0 {
		return &exitError{code: exitMatches}
	}
	return nil
}

func (a *app) scanTarget(ctx context.Context, s *scan.Scanner, target string, opts scanOptions, stdin io.Reader) ([]scan.Match, error) {
	interval := a.cfg.Interval
	switch {
	case isURL(target):
		if opts.render {
			return s.ScanRendered(ctx, target, interval)
		}
		return s.ScanURL(ctx, target, interval)
	case isDir(target):
		return s.ScanDir(target, a.cfg.Workers)
	}

	cur, err := openDocument(target, stdin)
	if err != nil {
		return nil, err
	}
	var prev *scan.Document
	if opts.previous != "" {
		if prev, err = openDocument(opts.previous, stdin); err != nil {
			return nil, err
		}
	}
	source := target
	if target == "-" {
		source = "stdin"
	}
	ms := s.ScanDocuments(source, cur, prev)
	if opts.annotateOut != "" {
		n := scan.Annotate(cur, ms)
		if err := writeDocument(opts.annotateOut, cur); err != nil {
			return nil, err
		}
		a.logger.Info("annotated document written", zap.String("path", opts.annotateOut), zap.Int("elements", n))
	}
	return ms, nil
}

func openDocument(name string, stdin io.Reader) (*scan.Document, error) {
	if name == "-" {
		return scan.ParseHTML(stdin)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return scan.ParseHTML(f)
}

func writeDocument(path string, d *scan.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := d.Render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readTargets(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func isDir(s string) bool {
	if s == "-" || isURL(s) {
		return false
	}
	fi, err := os.Stat(s)
	return err == nil && fi.IsDir()
}
