package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/listenupapp/listenup-library/internal/normalize"
	"github.com/listenupapp/listenup-library/internal/seed"
)

func newSeedCommand(ctx *commandContext) *cobra.Command {
	var prefixes []string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write a demo catalog with users and progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.ensureStore()
			if err != nil {
				return err
			}

			res, err := seed.Demo(cmd.Context(), st, seed.Options{
				Prefixes: prefixes,
				Logger:   ctx.logger().Logger,
			})
			if err != nil {
				return err
			}

			if ctx.opts.json {
				return writeJSON(cmd, res)
			}

			rows := [][]string{
				{"book library", res.BookLibraryID},
				{"podcast library", res.PodcastLibraryID},
			}
			names := make([]string, 0, len(res.Users))
			for name := range res.Users {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				rows = append(rows, []string{"user " + name, res.Users[name]})
			}
			printTable(cmd, []string{"Entity", "ID"}, rows, nil)
			fmt.Fprintf(cmd.OutOrStdout(), "%d books, %d podcasts, %d episodes\n", res.Books, res.Podcasts, res.Episodes)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&prefixes, "prefixes", normalize.DefaultSortingPrefixes, "Leading words ignored by prefix-less sorting")

	return cmd
}
