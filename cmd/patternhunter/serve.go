package main

import (
	"github.com/spf13/cobra"
	"github.com/tavgar/patternhunter/internal/config"
	"github.com/tavgar/patternhunter/internal/feedback"
	"github.com/tavgar/patternhunter/internal/server"
	"go.uber.org/zap"
)

func newServeCmd(a *app) *cobra.Command {
	d := config.Default()
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the detection and feedback HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.scanner()
			if err != nil {
				return err
			}
			store := feedback.NewStore(a.cfg.FeedbackFile, a.logger)
			a.logger.Info("starting api server", zap.String("addr", a.cfg.Listen), zap.String("feedback_file", store.Path()))
			return server.New(s, store, a.logger).Run(cmd.Context(), a.cfg.Listen)
		},
	}
	f := cmd.Flags()
	f.String("listen", d.Listen, "listen address")
	_ = a.v.BindPFlag("listen", f.Lookup("listen"))
	return cmd
}
