package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/listenupapp/listenup-library/internal/domain"
	"github.com/listenupapp/listenup-library/internal/dto"
	"github.com/listenupapp/listenup-library/internal/service"
)

type itemsOptions struct {
	userID         string
	filter         string
	group          string
	value          string
	sort           string
	desc           bool
	collapseSeries bool
	include        []string
	limit          int
	page           int
}

// filterString builds the wire filter. --group/--value are the readable
// form of --filter; the value is base64 encoded like clients do.
func (o itemsOptions) filterString() (string, error) {
	if o.group == "" {
		return o.filter, nil
	}
	if o.filter != "" {
		return "", errors.New("use either --filter or --group/--value")
	}
	if o.value == "" {
		return o.group, nil
	}
	return o.group + "." + base64.StdEncoding.EncodeToString([]byte(o.value)), nil
}

func newItemsCommand(ctx *commandContext) *cobra.Command {
	var opts itemsOptions

	cmd := &cobra.Command{
		Use:   "items <library-id>",
		Short: "List library items with filter, sort and paging",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := opts.filterString()
			if err != nil {
				return err
			}

			svc, err := ctx.libraryItems()
			if err != nil {
				return err
			}
			user, err := lookupUser(cmd.Context(), ctx, opts.userID)
			if err != nil {
				return err
			}

			result, err := svc.GetFilteredLibraryItems(cmd.Context(), service.FilterParams{
				LibraryID:      args[0],
				User:           user,
				Filter:         filter,
				Sort:           opts.sort,
				Desc:           opts.desc,
				CollapseSeries: opts.collapseSeries,
				Include:        trimList(opts.include),
				Limit:          opts.limit,
				Page:           opts.page,
			})
			if err != nil {
				return err
			}

			if ctx.opts.json {
				return writeJSON(cmd, result)
			}

			headers, rows, aligns := itemRows(result.Results)
			printTable(cmd, headers, rows, aligns)
			fmt.Fprintf(cmd.OutOrStdout(), "page %d, %d of %d\n", result.Page, len(result.Results), result.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.userID, "user", "", "Apply this user's permissions and progress")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "Raw filter, group.base64(value)")
	cmd.Flags().StringVar(&opts.group, "group", "", "Filter group, e.g. genres, authors, progress")
	cmd.Flags().StringVar(&opts.value, "value", "", "Plain filter value for --group")
	cmd.Flags().StringVar(&opts.sort, "sort", "", "Sort key, e.g. media.metadata.title, addedAt")
	cmd.Flags().BoolVar(&opts.desc, "desc", false, "Sort descending")
	cmd.Flags().BoolVar(&opts.collapseSeries, "collapse-series", false, "Show one item per series")
	cmd.Flags().StringSliceVar(&opts.include, "include", nil, "Extras to attach, e.g. rssfeed")
	cmd.Flags().IntVar(&opts.limit, "limit", 20, "Items per page, 0 for all")
	cmd.Flags().IntVar(&opts.page, "page", 0, "Zero-based page")

	return cmd
}

func lookupUser(ctx context.Context, c *commandContext, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, nil
	}
	st, err := c.ensureStore()
	if err != nil {
		return nil, err
	}
	user, err := st.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", userID, err)
	}
	return user, nil
}

func itemRows(items []*dto.LibraryItem) ([]string, [][]string, []columnAlignment) {
	headers := []string{"ID", "Title", "Author", "Series", "Duration"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight}

	rows := make([][]string, 0, len(items))
	for _, li := range items {
		switch {
		case li.Book() != nil:
			b := li.Book()
			title := b.Metadata.Title
			series := b.Metadata.SeriesName
			if cs := li.CollapsedSeries; cs != nil {
				title = cs.Name
				series = strconv.Itoa(cs.NumBooks) + " books"
			}
			rows = append(rows, []string{li.ID, title, b.Metadata.AuthorName, series, formatDuration(b.Duration)})
		case li.Podcast() != nil:
			p := li.Podcast()
			rows = append(rows, []string{li.ID, p.Metadata.Title, p.Metadata.Author, strconv.Itoa(p.NumEpisodes) + " episodes", ""})
		default:
			rows = append(rows, []string{li.ID, "", "", "", ""})
		}
	}
	return headers, rows, aligns
}

// trimList drops empty entries from a comma separated flag.
func trimList(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
