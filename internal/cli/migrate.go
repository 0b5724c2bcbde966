package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/folio/pkg/folio"
	"github.com/mesh-intelligence/folio/pkg/types"
)

// migrateWorkers bounds how many documents are copied at once.
const migrateWorkers = 4

func newMigrateCmd(a *app) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy stored state from one backend to another",
		Long: `Migrate copies the view state, bookmarks and jumplist of every document
in the source backend's recent files list, followed by the input history,
into the destination backend. Both backends use the configured data
directory. Existing destination state for the same documents is
overwritten; bookmarks are merged by id.

Example:
  folio migrate --from plain --to sqlite`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == to {
				return userError("source and destination backend are both %q", from)
			}
			for _, name := range []string{from, to} {
				if err := a.settings.storeConfig(name).Validate(); err != nil {
					return userError("backend %q: %v (valid: %v)", name, err, types.Backends())
				}
			}

			src, err := folio.Open(a.settings.storeConfig(from))
			if err != nil {
				return systemError(fmt.Errorf("open %s store: %w", from, err))
			}
			defer src.Close()

			dst, err := folio.Open(a.settings.storeConfig(to))
			if err != nil {
				return systemError(fmt.Errorf("open %s store: %w", to, err))
			}
			defer dst.Close()

			docs, lines, err := migrate(src, dst)
			if err != nil {
				return systemError(err)
			}
			if err := dst.Close(); err != nil {
				return systemError(fmt.Errorf("close %s store: %w", to, err))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d document(s) and %d history line(s) from %s to %s\n",
				docs, lines, from, to)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "source backend")
	cmd.Flags().StringVar(&to, "to", "", "destination backend")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// migrate copies every recent document and the input history from src to
// dst. Documents are copied concurrently; the history is copied afterwards
// in order so that its oldest-first ordering survives.
func migrate(src, dst types.Store) (docs, lines int, err error) {
	paths, err := src.RecentFiles(-1, "")
	if err != nil {
		return 0, 0, fmt.Errorf("list documents: %w", err)
	}

	g := new(errgroup.Group)
	g.SetLimit(migrateWorkers)
	for _, path := range paths {
		g.Go(func() error {
			st, err := loadDocumentState(src, path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			if err := st.apply(dst); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			slog.Debug("cli: migrated document",
				"path", path,
				"bookmarks", len(st.Bookmarks),
				"jumps", len(st.Jumplist))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, 0, err
	}

	history, err := src.ReadHistory()
	if err != nil {
		return len(paths), 0, fmt.Errorf("read history: %w", err)
	}
	for _, line := range history {
		if err := dst.AppendHistory(line); err != nil {
			return len(paths), 0, fmt.Errorf("append history: %w", err)
		}
	}
	return len(paths), len(history), nil
}
