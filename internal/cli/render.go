package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/treebbb/msurf/fractal"
	"github.com/treebbb/msurf/internal/config"
)

// ArchiveExt selects archive output instead of PNG.
const ArchiveExt = ".msa"

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render one frame",
	Long: `Render one frame of the view given by the config file, MSURF_
environment variables and flags. The output is a PNG image, or a
single-frame archive if the output name ends in ` + ArchiveExt + `.`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	addViewFlags(renderCmd.Flags())
}

// addViewFlags adds the flags shared by render and zoom. Their defaults
// are only shown in help; unset flags never override config or env.
func addViewFlags(f *pflag.FlagSet) {
	f.Int("width", 640, "image width in pixels")
	f.Int("height", 480, "image height in pixels")
	f.Int("maxiter", 256, "maximum iterations per pixel")
	f.Float64("xcenter", -0.5, "real part of the view centre")
	f.Float64("ycenter", 0, "imaginary part of the view centre")
	f.Float64("step", 3.0/640, "width of one pixel in the complex plane")
	f.String("bookmark", "", "JSON bookmark replacing xcenter, ycenter, step and maxiter")
	f.String("palette", "log", "palette: log, grey or wheel")
	f.StringP("output", "o", "msurf.png", "output file")
	f.Int("workers", 0, "concurrent render tasks (0 uses GOMAXPROCS)")
	f.Int("tile-size", 0, "render in square tiles of this size")
	f.Float32("horizon", fractal.DefaultHorizonSquared, "squared escape radius")
}

func runRender(cmd *cobra.Command, args []string) error {
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

	frame, err := renderFrame(cmd.Context(), view, palettes, cfg)
	if err != nil {
		return err
	}

	if err := writeOutput(cfg.Output, frame); err != nil {
		return err
	}

	bm, err := view.Bookmark()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\nbookmark: %s\n", cfg.Output, bm)
	return nil
}

func renderFrame(ctx context.Context, view fractal.View, palettes *fractal.PaletteCache, cfg *config.Config) (*fractal.Frame, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	palette, err := palettes.Get(fractal.PaletteKind(cfg.Palette), view.MaxIter)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	frame, err := fractal.Render(ctx, view, palette, cfg.Options())
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", view, err)
	}
	log.Printf("rendered %s in %s", view, time.Since(start))
	return frame, nil
}

func writeOutput(path string, frame *fractal.Frame) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if filepath.Ext(path) == ArchiveExt {
		w, err := fractal.NewArchiveWriter(f)
		if err != nil {
			return err
		}
		if err := w.WriteFrame(frame); err != nil {
			return err
		}
		return w.Flush()
	}
	return frame.WritePNG(f)
}
