package detection

import (
	"context"
	"image"
	"io"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/pool-detect/internal/imaging"
)

// Detector finds pool boundaries in an image.
type Detector interface {
	// Name is the method name the detector is registered under.
	Name() string

	// Detect returns zero or more closed polygons in contour-discovery order.
	Detect(ctx context.Context, img image.Image) ([]Polygon, error)
}

// Default detection parameters, tuned for blue/cyan pool water in aerial
// imagery.
const (
	DefaultMinPoolArea  = 600.0
	DefaultMinAreaRatio = 0.0015
	DefaultKernelSize   = 5

	// ApproxEpsilonRatio is the polygon simplification tolerance as a fraction
	// of the contour perimeter.
	ApproxEpsilonRatio = 0.008

	openIterations  = 2
	closeIterations = 3
)

// Params configures the color-segmentation detector.
type Params struct {
	// MinPoolArea is the minimum contour area in square pixels.
	MinPoolArea float64

	// MinAreaRatio is the minimum contour area as a fraction of the image area.
	MinAreaRatio float64

	// Lower and Upper bound the accepted HSV range, inclusive.
	Lower imaging.HSV
	Upper imaging.HSV

	// KernelSize is the side of the square structuring element used for
	// morphological cleanup.
	KernelSize int
}

// DefaultParams returns the stock pool-detection parameters.
func DefaultParams() Params {
	return Params{
		MinPoolArea:  DefaultMinPoolArea,
		MinAreaRatio: DefaultMinAreaRatio,
		Lower:        imaging.HSV{H: 80, S: 50, V: 40},
		Upper:        imaging.HSV{H: 135, S: 255, V: 255},
		KernelSize:   DefaultKernelSize,
	}
}

// MinArea returns the effective area threshold for an image of the given size.
func (p Params) MinArea(width, height int) float64 {
	return math.Max(p.MinPoolArea, p.MinAreaRatio*float64(width)*float64(height))
}

// ColorDetector finds pools by HSV color segmentation and morphology.
//
// The parameters are copied at construction and never change, so a
// ColorDetector can be reused for any number of images.
type ColorDetector struct {
	params Params
	log    logrus.FieldLogger
}

// NewColorDetector creates a color-segmentation detector. A nil logger
// discards debug output.
func NewColorDetector(params Params, log logrus.FieldLogger) *ColorDetector {
	if log == nil {
		log = discardLogger()
	}
	return &ColorDetector{params: params, log: log}
}

// Name returns "opencv", the method name of the classical pipeline.
func (d *ColorDetector) Name() string {
	return MethodOpenCV
}

// Params returns a copy of the detector's parameters.
func (d *ColorDetector) Params() Params {
	return d.params
}

// Detect finds pool polygons in img.
//
// # Algorithm
//
//  1. Threshold: select pixels whose HSV value is inside [Lower, Upper]
//  2. Opening: erode then dilate twice to remove speckle
//  3. Closing: dilate then erode three times to fill small gaps
//  4. Contours: trace outer borders of connected regions (holes ignored)
//  5. Filtering: drop contours below MinPoolArea or MinAreaRatio × image area
//  6. Approximation: Douglas-Peucker with epsilon = 0.8% of the perimeter
//  7. Closure: append the first point when the last differs
//
// The area threshold applies to the traced contour; the simplified polygon's
// area is not checked again. The returned error is always nil.
func (d *ColorDetector) Detect(_ context.Context, img image.Image) ([]Polygon, error) {
	polygons := make([]Polygon, 0)
	if img == nil {
		return polygons, nil
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return polygons, nil
	}

	mask := d.Segment(img)
	contours := FindExternalContours(mask)
	minArea := d.params.MinArea(width, height)

	d.log.WithFields(logrus.Fields{
		"cleaned_pixels": mask.Count(),
		"contours":       len(contours),
		"min_area":       minArea,
	}).Debug("segmented image")

	for _, contour := range contours {
		area := ContourArea(contour)
		if area < minArea {
			continue
		}

		epsilon := ApproxEpsilonRatio * ArcLength(contour, true)
		approx := ApproxPolyDP(contour, epsilon, true)

		polygon := make(Polygon, len(approx))
		for i, p := range approx {
			polygon[i] = Point{X: p.X + bounds.Min.X, Y: p.Y + bounds.Min.Y}
		}
		polygon = closePolygon(polygon)

		d.log.WithFields(logrus.Fields{
			"area":   area,
			"points": len(polygon),
		}).Debug("accepted contour")

		polygons = append(polygons, polygon)
	}

	return polygons, nil
}

// Segment returns the cleaned binary mask Detect traces contours on: the HSV
// threshold followed by opening and closing. Mask coordinates start at 0
// regardless of img.Bounds().Min.
func (d *ColorDetector) Segment(img image.Image) *imaging.Mask {
	mask := imaging.InRange(img, d.params.Lower, d.params.Upper)
	d.log.WithField("selected_pixels", mask.Count()).Debug("thresholded image")
	return mask.Open(d.params.KernelSize, openIterations).Close(d.params.KernelSize, closeIterations)
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
