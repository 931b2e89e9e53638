// Package rgbimage holds rendered pixels and writes them out.
package rgbimage

import (
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"

	"checkertrace/vmath/vec3"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const dataLayoutVersion = 1

// Image is a grid of linear RGB colors.  Row 0 is the bottom row, matching
// the renderer's screen coordinates.
type Image struct {
	RowSize, ColSize int

	// Samples and Depth record the render settings that produced the
	// image.  They are carried in the raw format's header.
	Samples, Depth int

	// Pix holds RGB triples, row by row from the bottom.
	Pix []float32
}

func New(colSize, rowSize int) *Image {
	im := &Image{}
	im.Resize(rowSize, colSize)
	return im
}

func (im *Image) Resize(rowSize, colSize int) {
	im.RowSize = rowSize
	im.ColSize = colSize
	im.Pix = make([]float32, rowSize*colSize*3)
}

// SetPixel stores c as given.
func (im *Image) SetPixel(col, row int, c vec3.T) {
	idx := (row*im.ColSize + col) * 3
	im.Pix[idx+0] = float32(c[0])
	im.Pix[idx+1] = float32(c[1])
	im.Pix[idx+2] = float32(c[2])
}

func (im *Image) At(col, row int) vec3.T {
	idx := (row*im.ColSize + col) * 3
	return vec3.T{
		float64(im.Pix[idx+0]),
		float64(im.Pix[idx+1]),
		float64(im.Pix[idx+2]),
	}
}

func to8Bit(v float32) uint8 {
	if v <= 0 || math.IsNaN(float64(v)) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(float64(v) * 255))
}

// ToNRGBA converts the image to 8 bits per channel with each component
// clamped to [0, 1].  The result has its top row first.
func (im *Image) ToNRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, im.ColSize, im.RowSize))
	for r := 0; r < im.RowSize; r++ {
		y := im.RowSize - 1 - r
		for c := 0; c < im.ColSize; c++ {
			idx := (r*im.ColSize + c) * 3
			out.SetNRGBA(c, y, color.NRGBA{
				R: to8Bit(im.Pix[idx+0]),
				G: to8Bit(im.Pix[idx+1]),
				B: to8Bit(im.Pix[idx+2]),
				A: 255,
			})
		}
	}
	return out
}

func (im *Image) WritePNG(w io.Writer) error {
	if err := png.Encode(w, im.ToNRGBA()); err != nil {
		return fmt.Errorf("while encoding png: %w", err)
	}
	return nil
}

// Header returns the raw format's header for im.
func (im *Image) Header() (*structpb.Struct, error) {
	hdr, err := structpb.NewStruct(map[string]interface{}{
		"rows":           im.RowSize,
		"cols":           im.ColSize,
		"layout_version": dataLayoutVersion,
		"samples":        im.Samples,
		"depth":          im.Depth,
	})
	if err != nil {
		return nil, fmt.Errorf("while building header: %w", err)
	}
	return hdr, nil
}

func headerInt(hdr *structpb.Struct, key string) (int, error) {
	v, ok := hdr.GetFields()[key]
	if !ok {
		return 0, fmt.Errorf("header is missing %q", key)
	}
	n := v.GetNumberValue()
	if n < 0 || n != math.Trunc(n) {
		return 0, fmt.Errorf("header field %q has bad value %v", key, n)
	}
	return int(n), nil
}

// Read decodes an image in the raw format: an 8-byte little-endian header
// length, the protobuf header, then the zlib-compressed float32 pixels.
func Read(in io.Reader) (*Image, error) {
	var headerLength uint64
	if err := binary.Read(in, binary.LittleEndian, &headerLength); err != nil {
		return nil, fmt.Errorf("while reading header length: %w", err)
	}
	if headerLength > 1<<20 {
		return nil, fmt.Errorf("implausible header length %d", headerLength)
	}

	headerBytes := make([]byte, int(headerLength))
	if _, err := io.ReadFull(in, headerBytes); err != nil {
		return nil, fmt.Errorf("while reading header bytes: %w", err)
	}

	hdr := &structpb.Struct{}
	if err := proto.Unmarshal(headerBytes, hdr); err != nil {
		return nil, fmt.Errorf("while unmarshaling header: %w", err)
	}

	version, err := headerInt(hdr, "layout_version")
	if err != nil {
		return nil, err
	}
	if version != dataLayoutVersion {
		return nil, fmt.Errorf("bad data layout version: %v", version)
	}

	fields := map[string]int{}
	for _, key := range []string{"rows", "cols", "samples", "depth"} {
		n, err := headerInt(hdr, key)
		if err != nil {
			return nil, err
		}
		fields[key] = n
	}

	im := New(fields["cols"], fields["rows"])
	im.Samples = fields["samples"]
	im.Depth = fields["depth"]

	zipReader, err := zlib.NewReader(in)
	if err != nil {
		return nil, fmt.Errorf("while opening zip reader: %w", err)
	}
	defer zipReader.Close()

	if err := binary.Read(zipReader, binary.LittleEndian, im.Pix); err != nil {
		return nil, fmt.Errorf("while reading pixels: %w", err)
	}

	return im, nil
}

func ReadFile(name string) (*Image, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("while opening file: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Write encodes im in the raw format read by Read.
func Write(im *Image, w io.Writer) error {
	hdr, err := im.Header()
	if err != nil {
		return err
	}

	hdrBytes, err := proto.Marshal(hdr)
	if err != nil {
		return fmt.Errorf("while marshaling header: %w", err)
	}

	headerLengthBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(headerLengthBytes, uint64(len(hdrBytes)))
	if _, err := w.Write(headerLengthBytes); err != nil {
		return fmt.Errorf("while writing header length: %w", err)
	}

	if _, err := w.Write(hdrBytes); err != nil {
		return fmt.Errorf("while writing header: %w", err)
	}

	zipWriter := zlib.NewWriter(w)

	if err := binary.Write(zipWriter, binary.LittleEndian, im.Pix); err != nil {
		return fmt.Errorf("while writing pixels: %w", err)
	}

	if err := zipWriter.Close(); err != nil {
		return fmt.Errorf("while closing zip writer: %w", err)
	}

	return nil
}

// WriteFile writes im to name, in PNG if asPNG is set and the raw format
// otherwise.
func WriteFile(im *Image, name string, asPNG bool) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("while creating file: %w", err)
	}

	if asPNG {
		err = im.WritePNG(f)
	} else {
		err = Write(im, f)
	}
	if err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("while closing file: %w", err)
	}
	return nil
}
