package main

import (
	"github.com/spf13/cobra"
)

func newLibrariesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "libraries",
		Short: "List libraries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.ensureStore()
			if err != nil {
				return err
			}

			libs, err := st.ListLibraries(cmd.Context())
			if err != nil {
				return err
			}

			if ctx.opts.json {
				return writeJSON(cmd, libs)
			}

			rows := make([][]string, 0, len(libs))
			for _, lib := range libs {
				rows = append(rows, []string{lib.ID, lib.Name, string(lib.MediaType)})
			}
			printTable(cmd, []string{"ID", "Name", "Media"}, rows, nil)
			return nil
		},
	}
}
