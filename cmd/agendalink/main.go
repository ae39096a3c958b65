package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dgallion1/agendalink/internal/config"
	"github.com/dgallion1/agendalink/internal/parser"
	"github.com/dgallion1/agendalink/internal/pipeline"
	"github.com/dgallion1/agendalink/internal/report"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "agendalink",
		Short: "Match agenda items to their attached PDFs",
		Long: `Agendalink reads a municipal meeting agenda PDF, splits the agenda into
numbered items and assigns every linked PDF attachment to the item that
mentions it.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(linksCmd())
	rootCmd.AddCommand(docketCmd())
	return rootCmd
}

func linksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "links <file.pdf>",
		Short: "List attachment links with resolved titles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := setup(cmd, args[0])
			if err != nil {
				return err
			}
			all, err := p.Links(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{"all_links": all})
		},
	}
}

func docketCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docket <file.pdf>",
		Short: "Build the agenda docket with matched attachments",
		Long: `Build the agenda docket with matched attachments.

Example:
  agendalink docket agenda.pdf
  agendalink docket agenda.pdf --format markdown --artifact-dir ./debug`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			switch format {
			case "json", "markdown", "html":
			default:
				return fmt.Errorf("unsupported format: %s", format)
			}

			p, err := setup(cmd, args[0])
			if err != nil {
				return err
			}
			list, err := p.Docket(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "markdown":
				_, err = out.Write(report.Markdown(list))
				return err
			case "html":
				body, err := report.HTML(list)
				if err != nil {
					return err
				}
				_, err = out.Write(body)
				return err
			default:
				return writeJSON(out, list)
			}
		},
	}
	cmd.Flags().StringP("format", "f", "json", "Output format (json, markdown, html)")
	return cmd
}

// setup loads configuration and builds the pipeline. Logs go to stderr so
// stdout carries only the result.
func setup(cmd *cobra.Command, path string) (*pipeline.Pipeline, error) {
	if !parser.IsPDFFilename(path) {
		return nil, fmt.Errorf("not a .pdf file: %s", path)
	}
	cfg := config.Load(cmd.Flags())
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	log := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	p, _ := pipeline.FromConfig(cfg, log)
	return p, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
