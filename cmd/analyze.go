package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"interplay/pkg/analysis"
	"interplay/pkg/book"
	"interplay/pkg/utils"
)

var (
	analyzeBook  string
	analyzeFile  string
	analyzeStrip bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [-]",
	Short: "Analyze a Gutenberg book or a local file and print the result as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			if args[0] != "-" || analyzeFile != "" {
				return errors.New(`only "-" (stdin) is accepted as an argument`)
			}
			analyzeFile = "-"
		}
		if (analyzeBook == "") == (analyzeFile == "") {
			return errors.New("exactly one of --book, --file or - is required")
		}

		ctx := runContext(cmd.Context())

		var text string
		if analyzeBook != "" {
			b, err := book.NewFetcher(cfg.BookConfig()).Fetch(ctx, analyzeBook)
			if err != nil {
				return err
			}
			log.FromContext(ctx).Info("analyzing book", "id", b.ID, "title", b.Title)
			text = book.StripBoilerplate(b.Content)
		} else {
			var err error
			text, err = book.LoadFile(analyzeFile)
			if err != nil {
				return err
			}
			if analyzeStrip {
				text = book.StripBoilerplate(text)
			}
		}

		analyzer, err := newAnalyzer(ctx)
		if err != nil {
			return err
		}
		res, err := analyzer.AnalyzeWithProgress(ctx, text, func(p analysis.Progress) {
			log.FromContext(ctx).Info("chunk done", "chunk", p.Chunk, "total", p.Total, "interactions", p.Interactions)
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), utils.PrettyJSON(res))
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeBook, "book", "", "Project Gutenberg book id")
	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "Path to a .txt, .html or .pdf file")
	analyzeCmd.Flags().BoolVar(&analyzeStrip, "strip", false, "Strip Project Gutenberg boilerplate from --file input")
	rootCmd.AddCommand(analyzeCmd)
}

func newAnalyzer(ctx context.Context) (*analysis.Analyzer, error) {
	inf, name, err := newInferencer(ctx, cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", name, err)
	}
	log.Info("using provider", "provider", name, "model", cfg.Provider.Model)

	a := analysis.New(inf, cfg.AnalysisConfig())
	if cfg.Analysis.LogTokens {
		a.CountTokens = utils.NumTokens
	}
	return a, nil
}
