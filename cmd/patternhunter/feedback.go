package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/tavgar/patternhunter/internal/feedback"
)

func newFeedbackCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Record or list user reports about missed or wrong detections",
	}

	var url string
	add := &cobra.Command{
		Use:   "add DESCRIPTION...",
		Short: "Record a report",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := feedback.NewStore(a.cfg.FeedbackFile, a.logger)
			rec, err := store.Add(cmd.Context(), strings.Join(args, " "), url)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rec.ID)
			return nil
		},
	}
	add.Flags().StringVar(&url, "url", "", "page the report is about")

	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := feedback.NewStore(a.cfg.FeedbackFile, a.logger)
			records, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			return printRecords(cmd.OutOrStdout(), a.cfg.Format, records)
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

var feedbackTimeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

func printRecords(w io.Writer, format string, records []feedback.Record) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	for _, r := range records {
		line := feedbackTimeStyle.Render(r.Timestamp.Format("2006-01-02 15:04:05")) + " " + r.Description
		if r.URL != "" {
			line += " (" + r.URL + ")"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
