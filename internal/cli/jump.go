package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/folio/pkg/types"
)

func newJumpCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jump",
		Short: "Manage a document's jumplist",
	}
	cmd.AddCommand(newJumpListCmd(a))
	cmd.AddCommand(newJumpSaveCmd(a))
	cmd.AddCommand(newJumpPushCmd(a))
	return cmd
}

func newJumpListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <file>",
		Short: "Print a document's jumplist, oldest first",
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
			jumps, err := store.LoadJumplist(path)
			if err != nil {
				return storeError("load jumplist", err)
			}

			if a.flags.jsonMode {
				return printJSON(cmd, jumps)
			}
			out := cmd.OutOrStdout()
			if len(jumps) == 0 {
				fmt.Fprintln(out, "Jumplist is empty.")
				return nil
			}
			rows := make([][]string, 0, len(jumps))
			for _, j := range jumps {
				rows = append(rows, []string{
					strconv.FormatUint(uint64(j.Page), 10),
					formatFloat(j.X),
					formatFloat(j.Y),
				})
			}
			printTable(out, []string{"PAGE", "X", "Y"}, rows)
			return nil
		},
	}
}

func newJumpSaveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save <file> [page x y]...",
		Short: "Replace a document's whole jumplist",
		Long: `Save replaces the jumplist with the given page/x/y triples. With no
triples the jumplist is cleared.

Example:
  folio jump save paper.pdf 1 0 0 12 0.5 -0.25`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return userError("requires a document argument")
			}
			if (len(args)-1)%3 != 0 {
				return userError("jumps must be given as page x y triples, got %d values", len(args)-1)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := documentPath(args[0])
			if err != nil {
				return err
			}
			jumps := make([]types.Jump, 0, (len(args)-1)/3)
			for i := 1; i+2 < len(args); i += 3 {
				j, err := parseJump(args[i : i+3])
				if err != nil {
					return err
				}
				jumps = append(jumps, j)
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			if err := store.SaveJumplist(path, jumps); err != nil {
				return storeError("save jumplist", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d jump(s) for %s\n", len(jumps), path)
			return nil
		},
	}
	// Coordinates may be negative; keep them from being read as flags.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func newJumpPushCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push <file> <page> <x> <y>",
		Short: "Append one jump to a document's jumplist",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := documentPath(args[0])
			if err != nil {
				return err
			}
			j, err := parseJump(args[1:4])
			if err != nil {
				return err
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			jumps, err := store.LoadJumplist(path)
			if err != nil {
				return storeError("load jumplist", err)
			}
			jumps = append(jumps, j)
			if err := store.SaveJumplist(path, jumps); err != nil {
				return storeError("save jumplist", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Jumplist of %s has %d jump(s)\n", path, len(jumps))
			return nil
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func parseJump(triple []string) (types.Jump, error) {
	page, err := parsePage(triple[0])
	if err != nil {
		return types.Jump{}, err
	}
	x, err := parseRatio("x", triple[1])
	if err != nil {
		return types.Jump{}, err
	}
	y, err := parseRatio("y", triple[2])
	if err != nil {
		return types.Jump{}, err
	}
	return types.Jump{Page: page, X: x, Y: y}, nil
}
