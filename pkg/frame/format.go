package frame

import (
	"fmt"
	"strings"

	"github.com/srediag/shmemdev/api"
)

// MaxDimension bounds width and height so that frame sizes fit in an int32.
const MaxDimension = 16384

// PixelFormat tags the layout of the pixel bytes in the shared region.
type PixelFormat int

const (
	PixelFormatNone PixelFormat = iota
	// 4:2:0 formats, 12 bits per pixel.
	PixelFormatNV12
	PixelFormatNV21
	PixelFormatYUV420P
	// packed 4:2:2, 16 bits per pixel.
	PixelFormatYUYV422
	PixelFormatUYVY422
	PixelFormatRGB24
	PixelFormatBGR24
	PixelFormatRGBA
	PixelFormatBGRA
	PixelFormatGray8
	PixelFormatGray16LE
)

var pixelFormatNames = map[PixelFormat]string{
	PixelFormatNV12:     "nv12",
	PixelFormatNV21:     "nv21",
	PixelFormatYUV420P:  "yuv420p",
	PixelFormatYUYV422:  "yuyv422",
	PixelFormatUYVY422:  "uyvy422",
	PixelFormatRGB24:    "rgb24",
	PixelFormatBGR24:    "bgr24",
	PixelFormatRGBA:     "rgba",
	PixelFormatBGRA:     "bgra",
	PixelFormatGray8:    "gray",
	PixelFormatGray16LE: "gray16le",
}

func (f PixelFormat) String() string {
	if name, ok := pixelFormatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("PixelFormat(%d)", int(f))
}

// Valid reports whether f is a known format.
func (f PixelFormat) Valid() bool {
	_, ok := pixelFormatNames[f]
	return ok
}

// ParsePixelFormat maps a format name (as printed by String) to its tag.
func ParsePixelFormat(name string) (PixelFormat, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for f, n := range pixelFormatNames {
		if n == name {
			return f, nil
		}
	}
	return PixelFormatNone, api.NewError(api.ErrConfiguration, "frame.ParsePixelFormat", "",
		fmt.Errorf("unknown pixel format %q", name))
}

// Geometry is fixed for the lifetime of an open transport.
type Geometry struct {
	Width  int
	Height int
	Format PixelFormat
}

func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d %s", g.Width, g.Height, g.Format)
}

// FrameSize returns the number of bytes one frame occupies, rows packed
// without padding. Chroma planes of subsampled formats round odd
// dimensions up, so 4:2:0 frames with even dimensions are w*h*3/2 bytes.
func (g Geometry) FrameSize() (int, error) {
	if g.Width <= 0 || g.Height <= 0 || g.Width > MaxDimension || g.Height > MaxDimension {
		return 0, api.NewError(api.ErrConfiguration, "frame.FrameSize", "",
			fmt.Errorf("invalid frame size %dx%d", g.Width, g.Height))
	}
	w, h := g.Width, g.Height
	cw, ch := (w+1)/2, (h+1)/2
	switch g.Format {
	case PixelFormatNV12, PixelFormatNV21, PixelFormatYUV420P:
		return w*h + 2*cw*ch, nil
	case PixelFormatYUYV422, PixelFormatUYVY422:
		return 4 * cw * h, nil
	case PixelFormatRGB24, PixelFormatBGR24:
		return 3 * w * h, nil
	case PixelFormatRGBA, PixelFormatBGRA:
		return 4 * w * h, nil
	case PixelFormatGray8:
		return w * h, nil
	case PixelFormatGray16LE:
		return 2 * w * h, nil
	default:
		return 0, api.NewError(api.ErrConfiguration, "frame.FrameSize", "",
			fmt.Errorf("unsupported pixel format %s", g.Format))
	}
}
