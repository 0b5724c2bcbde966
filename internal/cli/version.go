package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/folio/pkg/folio"
)

const modulePath = "github.com/mesh-intelligence/folio"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the folio version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "folio %s\nmodule: %s\n", folio.Version, modulePath)
			return nil
		},
	}
}
