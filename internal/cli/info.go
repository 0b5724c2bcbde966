package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/folio/pkg/types"
)

func newInfoCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Read or write a document's view state",
	}
	cmd.AddCommand(newInfoGetCmd(a))
	cmd.AddCommand(newInfoSetCmd(a))
	return cmd
}

func newInfoGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <file>",
		Short: "Print a document's view state",
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
			info, err := store.GetFileInfo(path)
			if err != nil {
				return storeError(fmt.Sprintf("file info for %s", path), err)
			}

			if a.flags.jsonMode {
				return printJSON(cmd, info)
			}
			printTable(cmd.OutOrStdout(), []string{"FIELD", "VALUE"}, fileInfoRows(info))
			return nil
		},
	}
}

func fileInfoRows(info types.FileInfo) [][]string {
	return [][]string{
		{"page", strconv.FormatUint(uint64(info.CurrentPage), 10)},
		{"offset", strconv.FormatUint(uint64(info.PageOffset), 10)},
		{"zoom", formatFloat(info.Zoom)},
		{"rotation", strconv.FormatUint(uint64(info.Rotation), 10)},
		{"pages-per-row", strconv.FormatUint(uint64(info.PagesPerRow), 10)},
		{"first-page-columns", info.FirstPageColumns},
		{"position-x", formatFloat(info.PositionX)},
		{"position-y", formatFloat(info.PositionY)},
		{"accessed", info.AccessTime.Local().Format(time.DateTime)},
	}
}

// infoSetFlags holds the flag values of "info set". Only flags the user
// changed are applied to the stored view state.
type infoSetFlags struct {
	page             uint
	offset           uint
	zoom             float64
	rotation         uint
	pagesPerRow      uint
	firstPageColumns string
	positionX        float64
	positionY        float64
}

func newInfoSetCmd(a *app) *cobra.Command {
	var f infoSetFlags

	cmd := &cobra.Command{
		Use:   "set <file>",
		Short: "Update a document's view state",
		Long: `Set updates the given fields of a document's view state and marks the
document as accessed now. Fields not given keep their stored value, or the
default for a document opened for the first time.

Example:
  folio info set paper.pdf --page 12 --zoom 1.5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := documentPath(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("rotation") && f.rotation%90 != 0 {
				return userError("invalid rotation %d: must be a multiple of 90", f.rotation)
			}
			if cmd.Flags().Changed("zoom") && f.zoom <= 0 {
				return userError("invalid zoom %s: must be positive", formatFloat(f.zoom))
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			info, err := store.GetFileInfo(path)
			if errors.Is(err, types.ErrNotFound) {
				info = types.DefaultFileInfo()
			} else if err != nil {
				return storeError("load file info", err)
			}

			f.apply(cmd, &info)

			if err := store.SetFileInfo(path, info); err != nil {
				return storeError("save file info", err)
			}
			if a.flags.jsonMode {
				return printJSON(cmd, info)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated view state of %s\n", path)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.UintVar(&f.page, "page", 0, "current page")
	fl.UintVar(&f.offset, "offset", 0, "page label offset")
	fl.Float64Var(&f.zoom, "zoom", 1, "zoom factor")
	fl.UintVar(&f.rotation, "rotation", 0, "rotation in degrees")
	fl.UintVar(&f.pagesPerRow, "pages-per-row", 1, "pages shown per row")
	fl.StringVar(&f.firstPageColumns, "first-page-columns", "1:2", "first page column per pages-per-row setting")
	fl.Float64Var(&f.positionX, "position-x", 0, "horizontal scroll position")
	fl.Float64Var(&f.positionY, "position-y", 0, "vertical scroll position")
	return cmd
}

func (f *infoSetFlags) apply(cmd *cobra.Command, info *types.FileInfo) {
	changed := cmd.Flags().Changed
	if changed("page") {
		info.CurrentPage = f.page
	}
	if changed("offset") {
		info.PageOffset = f.offset
	}
	if changed("zoom") {
		info.Zoom = f.zoom
	}
	if changed("rotation") {
		info.Rotation = f.rotation
	}
	if changed("pages-per-row") {
		info.PagesPerRow = f.pagesPerRow
	}
	if changed("first-page-columns") {
		info.FirstPageColumns = f.firstPageColumns
	}
	if changed("position-x") {
		info.PositionX = f.positionX
	}
	if changed("position-y") {
		info.PositionY = f.positionY
	}
}
