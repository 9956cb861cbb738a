package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"interplay/pkg/book"
)

var (
	fetchBook  string
	fetchClean bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download a Project Gutenberg book and print its text",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := runContext(cmd.Context())

		b, err := book.NewFetcher(cfg.BookConfig()).Fetch(ctx, fetchBook)
		if err != nil {
			return err
		}

		text := b.Content
		if fetchClean {
			text = book.StripBoilerplate(text)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n%s\n", b.Title, text)
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchBook, "book", "", "Project Gutenberg book id")
	fetchCmd.Flags().BoolVar(&fetchClean, "clean", false, "Strip Project Gutenberg boilerplate")
	_ = fetchCmd.MarkFlagRequired("book")
	rootCmd.AddCommand(fetchCmd)
}
