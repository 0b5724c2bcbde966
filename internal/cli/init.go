package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize folio configuration and storage",
		Long: "Create the configuration directory with a default config.yaml, then\n" +
			"open the configured store once so its files or schema exist.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, a)
		},
	}
}

func runInit(cmd *cobra.Command, a *app) error {
	written, err := writeConfigIfMissing(a.settings.ConfigDir, a.settings)
	if err != nil {
		return systemError(err)
	}

	if _, err := a.openStore(); err != nil {
		return err
	}
	if err := a.close(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if written {
		fmt.Fprintf(out, "Wrote %s\n", filepath.Join(a.settings.ConfigDir, configFileExt))
	}
	fmt.Fprintf(out, "Initialized %s store in %s\n", a.settings.Backend, a.settings.DataDir)
	return nil
}
