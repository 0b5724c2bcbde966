package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRecentCmd(a *app) *cobra.Command {
	var (
		limit  int
		prefix string
	)

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently viewed documents, newest first",
		Long: `Recent lists documents with stored view state, most recently accessed
first. --prefix restricts the list to paths starting with the given string,
for example a directory.

Example:
  folio recent --max 5
  folio recent --prefix /home/me/papers/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			files, err := store.RecentFiles(limit, prefix)
			if err != nil {
				return storeError("recent files", err)
			}

			if a.flags.jsonMode {
				return printJSON(cmd, files)
			}
			out := cmd.OutOrStdout()
			for _, f := range files {
				fmt.Fprintln(out, f)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "max", -1, "maximum number of documents (negative means no limit)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "only list paths starting with this prefix")
	return cmd
}
