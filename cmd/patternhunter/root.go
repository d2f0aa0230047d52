package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tavgar/patternhunter/internal/config"
	"github.com/tavgar/patternhunter/internal/logging"
	"github.com/tavgar/patternhunter/internal/output"
	"github.com/tavgar/patternhunter/internal/pattern"
	"github.com/tavgar/patternhunter/internal/scan"
	"go.uber.org/zap"
)

// app holds state shared by all commands, set up before any command runs.
type app struct {
	v        *viper.Viper
	cfgFile  string
	headers  []string
	cfg      *config.Config
	logger   *zap.Logger
	registry *pattern.Registry
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: zap.NewNop()}
	d := config.Default()

	root := &cobra.Command{
		Use:   "patternhunter",
		Short: "Detect dark patterns on web pages",
		Long: `patternhunter flags page elements whose text matches known dark patterns:
countdowns, scarcity claims, social proof and forced continuity pricing.

Countdowns are found by comparing two snapshots of the same page.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) { _ = a.logger.Sync() },
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is ./patternhunter.yaml or $HOME/patternhunter.yaml)")
	pf.String("log-level", d.LogLevel, "log level (debug, info, warn, error)")
	pf.String("format", d.Format, "output format: pretty or json")
	pf.BoolP("quiet", "q", d.Quiet, "suppress banner")
	pf.String("messages", d.Messages, "message file with pattern names and descriptions (YAML or messages.json)")
	pf.String("feedback-file", d.FeedbackFile, "file storing user feedback")
	pf.Bool("insecure", d.Insecure, "skip TLS certificate verification")
	pf.StringArrayVarP(&a.headers, "header", "H", nil, `extra request header "Name: value" (repeatable)`)
	pf.Duration("render-timeout", d.RenderTimeout, "timeout for headless browser rendering")
	pf.Duration("render-sleep", d.RenderSleep, "wait for dynamic content before the first snapshot")

	_ = a.v.BindPFlag("log_level", pf.Lookup("log-level"))
	_ = a.v.BindPFlag("format", pf.Lookup("format"))
	_ = a.v.BindPFlag("quiet", pf.Lookup("quiet"))
	_ = a.v.BindPFlag("messages", pf.Lookup("messages"))
	_ = a.v.BindPFlag("feedback_file", pf.Lookup("feedback-file"))
	_ = a.v.BindPFlag("insecure", pf.Lookup("insecure"))
	_ = a.v.BindPFlag("render_timeout", pf.Lookup("render-timeout"))
	_ = a.v.BindPFlag("render_sleep", pf.Lookup("render-sleep"))

	root.AddCommand(
		newScanCmd(a),
		newPatternsCmd(a),
		newProxyCmd(a),
		newServeCmd(a),
		newFeedbackCmd(a),
		newExportCmd(a),
	)
	return root
}

// setup loads configuration, builds the logger and the pattern registry.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	home, _ := os.UserHomeDir()
	cfg, err := config.Load(a.v, a.cfgFile, home)
	if err != nil {
		return err
	}
	if cfg.Headers == nil {
		cfg.Headers = make(map[string]string)
	}
	for _, h := range a.headers {
		k, val, ok := strings.Cut(h, ":")
		if !ok {
			return fmt.Errorf("invalid header %q: expected \"Name: value\"", h)
		}
		cfg.Headers[strings.TrimSpace(k)] = strings.TrimSpace(val)
	}
	a.cfg = cfg

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.logger = logger
	if used := a.v.ConfigFileUsed(); used != "" {
		logger.Debug("using config file", zap.String("path", used))
	}

	headers := http.Header{}
	for k, val := range cfg.Headers {
		headers.Set(k, val)
	}
	scan.SetExtraHeaders(headers)
	scan.SetSkipTLSVerification(cfg.Insecure)
	scan.SetRenderTimeout(cfg.RenderTimeout)
	scan.SetRenderSleepDuration(cfg.RenderSleep)

	var res pattern.Resolver = pattern.DefaultMessages
	if cfg.Messages != "" {
		msgs, err := pattern.LoadMessages(cfg.Messages)
		if err != nil {
			return err
		}
		res = msgs.Fallback(pattern.DefaultMessages)
	}
	a.registry = pattern.Default(res)
	if !a.registry.Valid() {
		logger.Error("pattern registry is invalid", zap.Error(a.registry.Err()))
	}
	return nil
}

// scanner returns a Scanner for the registry, or an exit error when the
// registry failed validation.
func (a *app) scanner() (*scan.Scanner, error) {
	s, err := scan.NewScanner(a.registry, a.logger)
	if err != nil {
		return nil, &exitError{code: exitInvalidRegistry, err: err}
	}
	return s, nil
}

func (a *app) printer(showSource bool) *output.Printer {
	return output.NewPrinter(a.cfg.Format, !a.cfg.Quiet, showSource, version)
}
