package imaging

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// DefaultJPEGQuality matches the encoder default of OpenCV's imwrite.
const DefaultJPEGQuality = 95

// LoadError reports an image file that could not be read or decoded.
type LoadError struct {
	// Path is the file that failed to load.
	Path string

	// Err is the underlying open or decode error.
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("cannot load image %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load reads and decodes an image file.
//
// Parameters:
//   - path: Absolute or relative file path to the image. Supported formats are
//     JPEG, PNG, GIF, BMP and TIFF.
//
// Returns:
//   - image.Image: The decoded image with any EXIF orientation applied. The
//     concrete type is *image.NRGBA when an orientation transform was needed,
//     otherwise the decoder's native type.
//   - error: A *LoadError if the file does not exist, cannot be read, or is
//     not a decodable image.
//
// The file handle is closed before Load returns.
func Load(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return img, nil
}

// SaveJPEG encodes img as a JPEG file at path, replacing any existing file.
//
// Quality values outside 1-100 fall back to DefaultJPEGQuality.
func SaveJPEG(path string, img image.Image, quality int) error {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	if err := imgio.Save(path, img, imgio.JPEGEncoder(quality)); err != nil {
		return errors.Wrapf(err, "failed to save %s", path)
	}
	return nil
}

// SavePNG encodes img as a PNG file at path, replacing any existing file.
func SavePNG(path string, img image.Image) error {
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		return errors.Wrapf(err, "failed to save %s", path)
	}
	return nil
}

// EncodeJPEG writes img to w as JPEG. Quality values outside 1-100 fall back
// to DefaultJPEGQuality.
func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	if err := imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return errors.Wrap(err, "failed to encode JPEG")
	}
	return nil
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is derived from the file extension: "png", "jpeg", "gif", "bmp",
	// "tiff", or "unknown".
	Format string `json:"format"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// Describe returns metadata for an already loaded image.
//
// A missing file is not an error; FileSizeBytes is left at zero.
func Describe(path string, img image.Image) ImageInfo {
	info := ImageInfo{Format: formatFromExt(path)}
	if img != nil {
		bounds := img.Bounds()
		info.Width = bounds.Dx()
		info.Height = bounds.Dy()
	}
	if stat, err := os.Stat(path); err == nil {
		info.FileSizeBytes = stat.Size()
	}
	return info
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	case ".bmp":
		return "bmp"
	case ".tif", ".tiff":
		return "tiff"
	}
	return "unknown"
}
