package cli

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treebbb/msurf/fractal"
	"github.com/treebbb/msurf/num"
)

// resetFlags restores every flag of cmd and its children to its default,
// so flags set by one test do not leak into the next.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func decodePNG(t *testing.T, path string) (w, h int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func readArchive(t *testing.T, path string) []*fractal.Frame {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	r, err := fractal.NewArchiveReader(f)
	require.NoError(t, err)

	var frames []*fractal.Frame
	for {
		frame, err := r.Next()
		if err != nil {
			break
		}
		frames = append(frames, frame)
	}
	return frames
}

func TestRenderPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "set.png")

	out, err := run(t, "render", "--width=16", "--height=12", "--maxiter=32", "--palette=wheel", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)
	assert.Contains(t, out, `bookmark: {"xcenter":`)

	w, h := decodePNG(t, path)
	assert.Equal(t, 16, w)
	assert.Equal(t, 12, h)
}

func TestRenderConfigFile(t *testing.T) {
	dir := t.TempDir()
	conf := filepath.Join(dir, "msurf.toml")
	path := filepath.Join(dir, "set.png")
	require.NoError(t, os.WriteFile(conf, []byte("width = 9\nheight = 5\nmaxiter = 20\n\n[render]\ntile_size = 4\n"), 0644))

	_, err := run(t, "render", "--conf", conf, "--height=6", "-o", path)
	require.NoError(t, err)

	w, h := decodePNG(t, path)
	assert.Equal(t, 9, w)
	assert.Equal(t, 6, h)
}

func TestRenderArchive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "set"+ArchiveExt)

	_, err := run(t, "render", "--width=8", "--height=8", "--maxiter=16", "--tile-size=3", "-o", path)
	require.NoError(t, err)

	out, err := run(t, "archive", "ls", path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "0\t8x8\t{"), lines[0])

	pngPath := filepath.Join(dir, "frame.png")
	_, err = run(t, "archive", "extract", path, "0", pngPath)
	require.NoError(t, err)
	w, h := decodePNG(t, pngPath)
	assert.Equal(t, 8, w)
	assert.Equal(t, 8, h)

	_, err = run(t, "archive", "extract", path, "1", pngPath)
	assert.Error(t, err)
}

func TestRenderErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "set.png")

	_, err := run(t, "render", "--palette=plasma", "-o", path)
	assert.Error(t, err)

	_, err = run(t, "render", "--width=0", "-o", path)
	assert.Error(t, err)

	_, err = run(t, "render", "--width=4", "--height=4", "--xcenter=1e40", "-o", path)
	require.Error(t, err)
	assert.True(t, num.ErrDomain.Has(err), "%v", err)

	_, err = run(t, "render", "--width=4", "--height=4", "--xcenter=0", "--step=1e-21", "-o", path)
	require.Error(t, err)
	assert.True(t, fractal.Error.Has(err), "%v", err)
}

func TestZoom(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "zoom", "--width=10", "--height=6", "--maxiter=24", "--frames=3", "--factor=0.5",
		"--xcenter=-0.75", "--ycenter=0.1", "--step=0.02", "-o", filepath.Join(dir, "zoom.png"))
	require.NoError(t, err)

	path := filepath.Join(dir, "zoom"+ArchiveExt)
	assert.Contains(t, out, "wrote 3 frames to "+path)

	frames := readArchive(t, path)
	require.Len(t, frames, 3)
	for i, f := range frames {
		assert.Equal(t, 10, f.Width)
		assert.Equal(t, 6, f.Height)
		assert.Equal(t, 24, f.View.MaxIter)
		assert.InDelta(t, 0.02/float64(int(1)<<i), f.View.Step(), 1e-12, "frame %d", i)

		xc, yc := f.View.Center()
		assert.InDelta(t, -0.75, xc, 1e-12)
		assert.InDelta(t, 0.1, yc, 1e-12)
	}
}

func TestWide(t *testing.T) {
	out, err := run(t, "wide", "add", "18446744073709551615", "1")
	require.NoError(t, err)
	assert.Equal(t, "18446744073709551616\n", out)

	out, err = run(t, "wide", "mul", "18446744073709551616", "18446744073709551616")
	require.NoError(t, err)
	assert.Equal(t, "340282366920938463463374607431768211456\n", out)

	out, err = run(t, "wide", "parse", "18446744073709551617")
	require.NoError(t, err)
	assert.Contains(t, out, "0x10000000000000001\n")
	assert.Contains(t, out, "limb 0: 0x0000000000000001\n")
	assert.Contains(t, out, "limb 1: 0x0000000000000001\n")

	_, err = run(t, "wide", "add", "1x", "1")
	assert.True(t, num.ErrMalformed.Has(err))
}

func TestScaled(t *testing.T) {
	out, err := run(t, "scaled", "mul", "1.5", "-2.25")
	require.NoError(t, err)
	assert.Contains(t, out, "value: -3.375\n")
	assert.Contains(t, out, "wire: hi=0x8000000000000003 lo=0x6000000000000000\n")

	out, err = run(t, "scaled", "add", "--raw", "1", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "raw: 3\n")

	out, err = run(t, "scaled", "sub", "1", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "value: -2\n")

	out, err = run(t, "scaled", "add", "--raw", "-123", "123")
	require.NoError(t, err)
	assert.Contains(t, out, "raw: 0\n")

	// Everything after the first negative operand is an operand.
	_, err = run(t, "scaled", "sub", "-.5", "-0.25", "--raw")
	assert.Error(t, err)

	out, err = run(t, "-v", "scaled", "add", "-1", "-2")
	require.NoError(t, err)
	assert.Contains(t, out, "value: -3\n")

	_, err = run(t, "scaled", "add", "-1")
	assert.Error(t, err)

	_, err = run(t, "scaled", "add", "--bogus", "1", "2")
	assert.Error(t, err)

	_, err = run(t, "scaled", "mul", "1e30", "1e30")
	assert.True(t, num.ErrCapacity.Has(err), "%v", err)

	_, err = run(t, "scaled", "add", "nan", "1")
	assert.True(t, num.ErrDomain.Has(err), "%v", err)
}

func TestScaledInspect(t *testing.T) {
	out, err := run(t, "scaled", "inspect", "2.5")
	require.NoError(t, err)
	assert.Contains(t, out, "raw: 46116860184273879040\n")
	assert.Contains(t, out, "used: (int) 3")
	assert.Contains(t, out, "neg: (bool) false")

	out, err = run(t, "scaled", "inspect", "-2.5")
	require.NoError(t, err)
	assert.Contains(t, out, "value: -2.5\n")
	assert.Contains(t, out, "wire: hi=0x8000000000000002 lo=0x8000000000000000\n")
	assert.Contains(t, out, "neg: (bool) true")

	out, err = run(t, "scaled", "inspect", "--raw", "-1")
	require.NoError(t, err)
	assert.Contains(t, out, "raw: -1\n")
}

func TestMarkOperands(t *testing.T) {
	for _, tc := range []struct {
		in, out []string
	}{
		{[]string{"1", "2"}, []string{"1", "2"}},
		{[]string{"1.5", "-2.25"}, []string{"1.5", "--", "-2.25"}},
		{[]string{"--raw", "-1", "-2"}, []string{"--raw", "--", "-1", "-2"}},
		{[]string{"-.5"}, []string{"--", "-.5"}},
		{[]string{"-v", "--", "-1"}, []string{"-v", "--", "-1"}},
	} {
		assert.Equal(t, tc.out, markOperands(tc.in), "%q", tc.in)
	}
}
