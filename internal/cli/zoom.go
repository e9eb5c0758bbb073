package cli

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/treebbb/msurf/fractal"
	"github.com/treebbb/msurf/internal/config"
)

var zoomCmd = &cobra.Command{
	Use:   "zoom",
	Short: "Render a zoom sequence into a frame archive",
	Long: `Render a sequence of frames, each zoomed by --factor about the view
centre, into a frame archive. The output name is given the ` + ArchiveExt + `
extension if it does not already have it.`,
	Args: cobra.NoArgs,
	RunE: runZoom,
}

func init() {
	rootCmd.AddCommand(zoomCmd)
	addViewFlags(zoomCmd.Flags())
	zoomCmd.Flags().Float64("factor", 0.9, "size of each frame relative to the one before")
	zoomCmd.Flags().Int("frames", 30, "number of frames")
}

func archivePath(path string) string {
	if filepath.Ext(path) == ArchiveExt {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ArchiveExt
}

func runZoom(cmd *cobra.Command, args []string) (err error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	view, err := cfg.View()
	if err != nil {
		return err
	}

	palettes, err := fractal.NewPaletteCache(cfg.Render.PaletteCache)
	if err != nil {
		return err
	}

	out := archivePath(cfg.Output)
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w, err := fractal.NewArchiveWriter(f)
	if err != nil {
		return err
	}

	for i := 0; i < cfg.Zoom.Frames; i++ {
		frame, err := renderFrame(cmd.Context(), view, palettes, cfg)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		if err := w.WriteFrame(frame); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		view = view.Zoom(cfg.Zoom.Factor)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	hits, misses := palettes.Stats()
	log.Printf("palette cache: %d hits, %d misses", hits, misses)

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d frames to %s\n", w.Frames(), out)
	return nil
}
