package main

import (
	"bytes"
	"context"

	"github.com/spf13/cobra"
	"github.com/tavgar/patternhunter/internal/export"
	"github.com/tavgar/patternhunter/internal/scan"
	"go.uber.org/zap"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		out    string
		render bool
	)
	cmd := &cobra.Command{
		Use:   "export URL|FILE|-",
		Short: "Save the visible text of a page to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(cmd.Context(), args[0], render, cmd)
			if err != nil {
				return err
			}
			if err := export.WriteText(out, doc.VisibleText()); err != nil {
				return err
			}
			a.logger.Info("exported page text", zap.String("source", args[0]), zap.String("file", out))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", export.DefaultFilename, "file to write")
	cmd.Flags().BoolVar(&render, "render", false, "render URLs with headless Chrome first")
	return cmd
}

func loadDocument(ctx context.Context, target string, render bool, cmd *cobra.Command) (*scan.Document, error) {
	if !isURL(target) {
		return openDocument(target, cmd.InOrStdin())
	}
	if !render {
		return scan.FetchDocument(ctx, target)
	}
	pages, err := scan.RenderURL(ctx, target)
	if err != nil {
		return nil, err
	}
	return scan.ParseHTML(bytes.NewReader(pages[0]))
}
