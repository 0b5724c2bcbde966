package cli

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/folio/pkg/types"
)

func newBookmarkCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookmark",
		Short: "Manage a document's bookmarks",
	}
	cmd.AddCommand(newBookmarkAddCmd(a))
	cmd.AddCommand(newBookmarkListCmd(a))
	cmd.AddCommand(newBookmarkRemoveCmd(a))
	return cmd
}

func newBookmarkAddCmd(a *app) *cobra.Command {
	var x, y float64

	cmd := &cobra.Command{
		Use:   "add <file> <id> <page>",
		Short: "Add or replace a bookmark",
		Long: `Add stores a bookmark on a document, replacing any bookmark with the
same id. --x and --y record the scroll position within the page; an
omitted coordinate is stored as unset.

Example:
  folio bookmark add paper.pdf intro 3
  folio bookmark add paper.pdf fig2 7 --x 0.1 --y 0.45`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := documentPath(args[0])
			if err != nil {
				return err
			}
			if args[1] == "" {
				return userError("bookmark id must not be empty")
			}
			page, err := parsePage(args[2])
			if err != nil {
				return err
			}

			bm := types.Bookmark{ID: args[1], Page: page}
			if cmd.Flags().Changed("x") {
				bm.X = types.Coord(x)
			}
			if cmd.Flags().Changed("y") {
				bm.Y = types.Coord(y)
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			if err := store.AddBookmark(path, bm); err != nil {
				return storeError("add bookmark", err)
			}
			if a.flags.jsonMode {
				return printJSON(cmd, bm)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Bookmark %q set on page %d of %s\n", bm.ID, bm.Page, path)
			return nil
		},
	}
	cmd.Flags().Float64Var(&x, "x", 0, "horizontal position within the page")
	cmd.Flags().Float64Var(&y, "y", 0, "vertical position within the page")
	return cmd
}

func newBookmarkListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <file>",
		Short: "List a document's bookmarks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := documentPath(args[0])
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			bookmarks, err := store.LoadBookmarks(path)
			if err != nil {
				return storeError("load bookmarks", err)
			}

			slices.SortFunc(bookmarks, func(p, q types.Bookmark) int {
				return cmp.Or(cmp.Compare(p.Page, q.Page), cmp.Compare(p.ID, q.ID))
			})

			if a.flags.jsonMode {
				return printJSON(cmd, bookmarks)
			}
			out := cmd.OutOrStdout()
			if len(bookmarks) == 0 {
				fmt.Fprintln(out, "No bookmarks found.")
				return nil
			}
			rows := make([][]string, 0, len(bookmarks))
			for _, b := range bookmarks {
				rows = append(rows, []string{
					b.ID,
					strconv.FormatUint(uint64(b.Page), 10),
					formatCoord(b.X),
					formatCoord(b.Y),
				})
			}
			printTable(out, []string{"ID", "PAGE", "X", "Y"}, rows)
			fmt.Fprintf(out, "Total: %d bookmark(s)\n", len(bookmarks))
			return nil
		},
	}
}

func newBookmarkRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <file> <id>",
		Short: "Remove a bookmark",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := documentPath(args[0])
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			if err := store.RemoveBookmark(path, args[1]); err != nil {
				return storeError(fmt.Sprintf("remove bookmark %q", args[1]), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Bookmark %q removed from %s\n", args[1], path)
			return nil
		},
	}
}
