package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/treebbb/msurf/fractal"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Inspect frame archives",
}

var archiveListCmd = &cobra.Command{
	Use:   "ls <archive>",
	Short: "List the frames of an archive with their bookmarks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return eachFrame(args[0], func(i int, f *fractal.Frame) (bool, error) {
			bm, err := f.View.Bookmark()
			if err != nil {
				return false, err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%dx%d\t%s\n", i, f.Width, f.Height, bm)
			return true, nil
		})
	},
}

var archiveExtractCmd = &cobra.Command{
	Use:   "extract <archive> <index> <png>",
	Short: "Write one frame of an archive as a PNG image",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("frame index %q: %w", args[1], err)
		}

		var found *fractal.Frame
		err = eachFrame(args[0], func(i int, f *fractal.Frame) (bool, error) {
			if i == index {
				found = f
				return false, nil
			}
			return true, nil
		})
		if err != nil {
			return err
		}
		if found == nil {
			return fmt.Errorf("archive %s has no frame %d", args[0], index)
		}

		if err := writeOutput(args[2], found); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[2])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveExtractCmd)
}

// eachFrame calls fn for each frame of the archive at path until fn
// returns false.
func eachFrame(path string, fn func(i int, f *fractal.Frame) (bool, error)) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	r, err := fractal.NewArchiveReader(file)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	for i := 0; ; i++ {
		f, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return fmt.Errorf("%s frame %d: %w", path, i, err)
		}
		more, err := fn(i, f)
		if err != nil || !more {
			return err
		}
	}
}
