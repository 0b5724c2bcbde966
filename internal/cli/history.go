package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/folio/pkg/types"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage the command and search input history",
	}
	cmd.AddCommand(newHistoryAppendCmd(a))
	cmd.AddCommand(newHistoryListCmd(a))
	return cmd
}

func newHistoryAppendCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "append <line>",
		Short: "Append a line to the input history",
		Long: `Append adds a command (":goto 5") or search ("/term", "?term") line to
the end of the input history, dropping any earlier copy of it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			line := args[0]
			if !types.IsHistoryLine(line) {
				return userError("history line %q must be a single line starting with ':', '/' or '?'", line)
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			if err := store.AppendHistory(line); err != nil {
				return storeError("append history", err)
			}
			return nil
		},
	}
}

func newHistoryListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the input history, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			lines, err := store.ReadHistory()
			if err != nil {
				return storeError("read history", err)
			}

			if a.flags.jsonMode {
				return printJSON(cmd, lines)
			}
			out := cmd.OutOrStdout()
			for _, l := range lines {
				fmt.Fprintln(out, l)
			}
			return nil
		},
	}
}
