// Package cli implements the folio command-line interface: a thin front end
// over the document state store, used to inspect and edit what a viewer
// persisted and to move state between backends.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/folio/pkg/folio"
	"github.com/mesh-intelligence/folio/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	backend   string
	logLevel  string
	jsonMode  bool
}

// app carries per-invocation state: flags, resolved settings and the store,
// which is opened lazily by the commands that need one.
type app struct {
	flags    rootFlags
	settings settings
	store    types.Store
}

// NewRootCmd creates the top-level "folio" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "folio",
		Short: "Inspect and edit persisted document viewer state",
		Long: "folio manages the per-document state a document viewer persists:\n" +
			"bookmarks, jumplists, view state, the recent files list and the\n" +
			"command input history.",
		// Do not print usage on errors returned by subcommands.
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/folio)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $XDG_DATA_HOME/folio)")
	root.PersistentFlags().StringVar(&a.flags.backend, "backend", "", "storage backend: null, plain or sqlite (default from config.yaml)")
	root.PersistentFlags().StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newBookmarkCmd(a))
	root.AddCommand(newJumpCmd(a))
	root.AddCommand(newInfoCmd(a))
	root.AddCommand(newRecentCmd(a))
	root.AddCommand(newHistoryCmd(a))
	root.AddCommand(newExportCmd(a))
	root.AddCommand(newMigrateCmd(a))

	closeAfterRun(root, a)
	return root
}

// closeAfterRun makes every runnable command close the store when it
// returns, including on error, where cobra skips post-run hooks.
func closeAfterRun(cmd *cobra.Command, a *app) {
	if run := cmd.RunE; run != nil {
		cmd.RunE = func(c *cobra.Command, args []string) error {
			err := run(c, args)
			if cerr := a.close(); err == nil {
				err = cerr
			}
			return err
		}
	}
	for _, sub := range cmd.Commands() {
		closeAfterRun(sub, a)
	}
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// openStore opens the configured store once per invocation.
func (a *app) openStore() (types.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	store, err := folio.Open(a.settings.storeConfig(a.settings.Backend))
	if err != nil {
		return nil, systemError(fmt.Errorf("open %s store: %w", a.settings.Backend, err))
	}
	a.store = store
	return store, nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	if err != nil {
		return systemError(fmt.Errorf("close store: %w", err))
	}
	return nil
}

// cliError carries the process exit code for an error.
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func userError(format string, args ...any) error {
	return &cliError{code: exitUserError, err: fmt.Errorf(format, args...)}
}

func systemError(err error) error {
	return &cliError{code: exitSysError, err: err}
}

// storeError classifies an error returned by a store operation. Missing
// records are the user's mistake; anything else is a system failure.
func storeError(op string, err error) error {
	if errors.Is(err, types.ErrNotFound) {
		return &cliError{code: exitUserError, err: fmt.Errorf("%s: %w", op, err)}
	}
	return systemError(fmt.Errorf("%s: %w", op, err))
}

// exitCode maps an error to the process exit code. Errors that are not
// classified, such as flag parse errors from cobra, are user errors.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitUserError
}

// documentPath makes a command-line document argument absolute.
func documentPath(arg string) (string, error) {
	if arg == "" {
		return "", userError("document path must not be empty")
	}
	p, err := filepath.Abs(arg)
	if err != nil {
		return "", userError("resolve %s: %v", arg, err)
	}
	return p, nil
}
