package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tavgar/patternhunter/internal/config"
	"github.com/tavgar/patternhunter/internal/output"
	"github.com/tavgar/patternhunter/internal/proxy"
	"go.uber.org/zap"
)

func newProxyCmd(a *app) *cobra.Command {
	d := config.Default()
	cmd := &cobra.Command{
		Use:   "proxy",
		Short: "Run an intercepting proxy that scans HTML responses",
		Long: `Run an HTTP(S) proxy that scans every HTML response passing through it.
The previous response for the same URL serves as the earlier snapshot, so
reloading a page reveals countdowns. With --annotate the detected elements
get marker classes in the HTML delivered to the browser.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.scanner()
			if err != nil {
				return err
			}
			if !a.cfg.Quiet {
				fmt.Fprintln(cmd.OutOrStdout(), output.Banner(version))
			}
			printer := output.NewPrinter(a.cfg.Format, false, true, version)
			p := proxy.New(s, printer, cmd.OutOrStdout(), a.logger)
			p.SetAnnotate(a.cfg.Annotate)
			if err := p.SetHistorySize(a.cfg.ProxyHistory); err != nil {
				return err
			}
			a.logger.Info("starting proxy", zap.String("addr", a.cfg.ProxyAddr), zap.Bool("annotate", a.cfg.Annotate))
			return p.Run(cmd.Context(), a.cfg.ProxyAddr)
		},
	}
	f := cmd.Flags()
	f.String("addr", d.ProxyAddr, "listen address")
	f.Bool("annotate", d.Annotate, "add marker classes to detected elements")
	f.Int("history", d.ProxyHistory, "number of pages whose last snapshot is kept for countdown detection")
	_ = a.v.BindPFlag("proxy_addr", f.Lookup("addr"))
	_ = a.v.BindPFlag("annotate", f.Lookup("annotate"))
	_ = a.v.BindPFlag("proxy_history", f.Lookup("history"))
	return cmd
}
