package main

import (
	"errors"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/listenupapp/listenup-library/internal/service"
)

func newShelvesCommand(ctx *commandContext) *cobra.Command {
	var (
		userID  string
		limit   int
		include []string
	)

	cmd := &cobra.Command{
		Use:   "shelves <library-id>",
		Short: "Show a user's personalized shelves",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}

			svc, err := ctx.shelves()
			if err != nil {
				return err
			}
			user, err := lookupUser(cmd.Context(), ctx, userID)
			if err != nil {
				return err
			}

			shelves, err := svc.GetPersonalizedShelves(cmd.Context(), service.ShelfParams{
				LibraryID: args[0],
				User:      user,
				Include:   trimList(include),
				Limit:     limit,
			})
			if err != nil {
				return err
			}

			if ctx.opts.json {
				return writeJSON(cmd, shelves)
			}

			rows := make([][]string, 0, len(shelves))
			for _, s := range shelves {
				rows = append(rows, []string{s.ID, s.Label, s.Type, strconv.Itoa(s.Total)})
			}
			printTable(cmd, []string{"Shelf", "Label", "Type", "Total"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight})
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User whose shelves to build")
	cmd.Flags().IntVar(&limit, "limit", 0, "Entities per shelf, 0 for the default")
	cmd.Flags().StringSliceVar(&include, "include", nil, "Extras to attach, e.g. rssfeed")

	return cmd
}
