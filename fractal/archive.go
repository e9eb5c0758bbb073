package fractal

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4"
)

// archiveMagic starts every frame archive. The last byte is the format
// version.
var archiveMagic = [8]byte{'M', 'S', 'U', 'R', 'F', 'A', 'R', 1}

// frameHeader precedes each frame's bookmark and pixel data. A zero
// CompLen means the pixels were stored uncompressed.
type frameHeader struct {
	Width       uint32
	Height      uint32
	RawLen      uint32
	CompLen     uint32
	BookmarkLen uint32
}

// maxArchiveDim bounds the frame size accepted from an archive.
const maxArchiveDim = 1 << 15

// ArchiveWriter appends lz4-compressed frames to a stream, for example
// the frames of a zoom sequence.
type ArchiveWriter struct {
	w      *bufio.Writer
	frames int
}

// NewArchiveWriter writes the archive header to w.
func NewArchiveWriter(w io.Writer) (*ArchiveWriter, error) {
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(archiveMagic[:]); err != nil {
		return nil, Error.Wrap(err)
	}
	return &ArchiveWriter{w: bw}, nil
}

// Frames returns the number of frames written.
func (a *ArchiveWriter) Frames() int { return a.frames }

// WriteFrame appends f along with its view's bookmark.
func (a *ArchiveWriter) WriteFrame(f *Frame) error {
	if want := f.Width * f.Height * BytesPerPixel; len(f.Pix) != want {
		return Error.New("frame is %d bytes, want %d", len(f.Pix), want)
	}

	bm, err := f.View.Bookmark()
	if err != nil {
		return err
	}
	hdr := frameHeader{
		Width:       uint32(f.Width),
		Height:      uint32(f.Height),
		RawLen:      uint32(len(f.Pix)),
		BookmarkLen: uint32(len(bm)),
	}

	data := f.Pix
	if len(f.Pix) > 0 {
		comp := make([]byte, lz4.CompressBlockBound(len(f.Pix)))
		n, err := lz4.CompressBlock(f.Pix, comp, nil)
		if err != nil {
			return Error.Wrap(fmt.Errorf("lz4 compression failed: %w", err))
		}
		// n == 0 means the block did not compress.
		if n > 0 && n < len(f.Pix) {
			hdr.CompLen = uint32(n)
			data = comp[:n]
		}
	}

	if err := binary.Write(a.w, binary.LittleEndian, &hdr); err != nil {
		return Error.Wrap(err)
	}
	if _, err := io.WriteString(a.w, bm); err != nil {
		return Error.Wrap(err)
	}
	if _, err := a.w.Write(data); err != nil {
		return Error.Wrap(err)
	}
	a.frames++
	return nil
}

// Flush writes any buffered frames to the underlying writer.
func (a *ArchiveWriter) Flush() error {
	return Error.Wrap(a.w.Flush())
}

// ArchiveReader reads frames written by ArchiveWriter.
type ArchiveReader struct {
	r *bufio.Reader
}

// NewArchiveReader reads and checks the archive header.
func NewArchiveReader(r io.Reader) (*ArchiveReader, error) {
	br := bufio.NewReader(r)
	var magic [len(archiveMagic)]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, Error.Wrap(fmt.Errorf("archive header: %w", err))
	}
	if !bytes.Equal(magic[:len(magic)-1], archiveMagic[:len(archiveMagic)-1]) {
		return nil, Error.New("not a frame archive")
	}
	if v := magic[len(magic)-1]; v != archiveMagic[len(archiveMagic)-1] {
		return nil, Error.New("unsupported archive version %d", v)
	}
	return &ArchiveReader{r: br}, nil
}

// Next returns the next frame, or io.EOF after the last one. A frame cut
// short fails with io.ErrUnexpectedEOF.
func (a *ArchiveReader) Next() (*Frame, error) {
	var hdr frameHeader
	if err := binary.Read(a.r, binary.LittleEndian, &hdr); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, Error.Wrap(err)
	}

	if hdr.Width == 0 || hdr.Height == 0 || hdr.Width > maxArchiveDim || hdr.Height > maxArchiveDim {
		return nil, Error.New("archive frame size %dx%d", hdr.Width, hdr.Height)
	}
	if want := hdr.Width * hdr.Height * BytesPerPixel; hdr.RawLen != want {
		return nil, Error.New("archive frame is %d bytes, want %d", hdr.RawLen, want)
	}
	if hdr.CompLen > uint32(lz4.CompressBlockBound(int(hdr.RawLen))) || hdr.BookmarkLen > 1<<16 {
		return nil, Error.New("archive frame header corrupt")
	}

	bm := make([]byte, hdr.BookmarkLen)
	if _, err := io.ReadFull(a.r, bm); err != nil {
		return nil, Error.Wrap(unexpected(err))
	}

	pix := make([]byte, hdr.RawLen)
	if hdr.CompLen == 0 {
		if _, err := io.ReadFull(a.r, pix); err != nil {
			return nil, Error.Wrap(unexpected(err))
		}
	} else {
		comp := make([]byte, hdr.CompLen)
		if _, err := io.ReadFull(a.r, comp); err != nil {
			return nil, Error.Wrap(unexpected(err))
		}
		n, err := lz4.UncompressBlock(comp, pix)
		if err != nil {
			return nil, Error.Wrap(fmt.Errorf("lz4 decompression failed: %w", err))
		}
		if n != len(pix) {
			return nil, Error.New("archive frame decompressed to %d bytes, want %d", n, len(pix))
		}
	}

	view, err := ViewFromBookmark(string(bm), int(hdr.Width), int(hdr.Height))
	if err != nil {
		return nil, err
	}
	return &Frame{View: view, Width: view.Width, Height: view.Height, Pix: pix}, nil
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
