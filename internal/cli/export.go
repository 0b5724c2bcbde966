package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/folio/pkg/types"
)

// Export formats.
const (
	formatYAML = "yaml"
	formatTOML = "toml"
	formatJSON = "json"
)

// documentState is everything stored for one document.
type documentState struct {
	Path      string           `json:"path" yaml:"path" toml:"path"`
	FileInfo  *types.FileInfo  `json:"file_info,omitempty" yaml:"file_info,omitempty" toml:"file_info,omitempty"`
	Bookmarks []types.Bookmark `json:"bookmarks" yaml:"bookmarks" toml:"bookmarks"`
	Jumplist  []types.Jump     `json:"jumplist" yaml:"jumplist" toml:"jumplist"`
}

// loadDocumentState reads the complete stored state of path from store.
func loadDocumentState(store types.Store, path string) (documentState, error) {
	st := documentState{Path: path}

	info, err := store.GetFileInfo(path)
	switch {
	case err == nil:
		st.FileInfo = &info
	case !errors.Is(err, types.ErrNotFound):
		return st, fmt.Errorf("file info: %w", err)
	}

	if st.Bookmarks, err = store.LoadBookmarks(path); err != nil {
		return st, fmt.Errorf("bookmarks: %w", err)
	}
	if st.Jumplist, err = store.LoadJumplist(path); err != nil {
		return st, fmt.Errorf("jumplist: %w", err)
	}
	return st, nil
}

// apply writes st into store. Bookmarks are added one by one, so bookmarks
// already present in store under other ids are kept. The file info keeps its
// access time.
func (st documentState) apply(store types.Store) error {
	for _, b := range st.Bookmarks {
		if err := store.AddBookmark(st.Path, b); err != nil {
			return fmt.Errorf("bookmark %q: %w", b.ID, err)
		}
	}
	if len(st.Jumplist) > 0 {
		if err := store.SaveJumplist(st.Path, st.Jumplist); err != nil {
			return fmt.Errorf("jumplist: %w", err)
		}
	}
	if st.FileInfo != nil {
		if err := setFileInfo(store, st.Path, *st.FileInfo); err != nil {
			return fmt.Errorf("file info: %w", err)
		}
	}
	return nil
}

// setFileInfo stores info keeping its access time when store supports it.
func setFileInfo(store types.Store, path string, info types.FileInfo) error {
	if timed, ok := store.(types.FileInfoAtSetter); ok {
		return timed.SetFileInfoAt(path, info, info.AccessTime)
	}
	return store.SetFileInfo(path, info)
}

// encode renders st in the given format.
func (st documentState) encode(format string) ([]byte, error) {
	switch format {
	case formatYAML:
		return yaml.Marshal(st)
	case formatTOML:
		return toml.Marshal(st)
	case formatJSON:
		return json.MarshalIndent(st, "", "  ")
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

func newExportCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Dump everything stored for a document",
		Long: `Export prints a document's view state, bookmarks and jumplist in one
document. The global --json flag selects JSON regardless of --format.

Example:
  folio export paper.pdf
  folio export paper.pdf --format toml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.flags.jsonMode {
				format = formatJSON
			}
			format = strings.ToLower(format)
			switch format {
			case formatYAML, formatTOML, formatJSON:
			default:
				return userError("invalid format %q: must be yaml, toml or json", format)
			}

			path, err := documentPath(args[0])
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			st, err := loadDocumentState(store, path)
			if err != nil {
				return storeError("export "+path, err)
			}

			data, err := st.encode(format)
			if err != nil {
				return systemError(fmt.Errorf("encode %s: %w", format, err))
			}
			out := cmd.OutOrStdout()
			out.Write(data)
			if len(data) > 0 && data[len(data)-1] != '\n' {
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", formatYAML, "output format: yaml, toml or json")
	return cmd
}
