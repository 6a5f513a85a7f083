//go:build gocv
// +build gocv

package detection

import (
	"context"
	"image"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// GoCVDetector runs the color-segmentation pipeline through OpenCV.
//
// It uses the same Params as ColorDetector and exists to cross-check the pure
// Go pipeline against OpenCV on real imagery. Only available in builds with
// the gocv tag.
type GoCVDetector struct {
	params Params
	log    logrus.FieldLogger
}

// NewGoCVDetector creates an OpenCV-backed detector.
func NewGoCVDetector(params Params, log logrus.FieldLogger) *GoCVDetector {
	if log == nil {
		log = discardLogger()
	}
	return &GoCVDetector{params: params, log: log}
}

// Name returns "gocv".
func (d *GoCVDetector) Name() string {
	return MethodGoCV
}

// Detect mirrors ColorDetector.Detect using cv::inRange, cv::morphologyEx,
// cv::findContours and cv::approxPolyDP.
func (d *GoCVDetector) Detect(_ context.Context, img image.Image) ([]Polygon, error) {
	polygons := make([]Polygon, 0)
	if img == nil {
		return polygons, nil
	}

	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	if src.Empty() {
		return polygons, nil
	}

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(src, &hsv, gocv.ColorBGRToHSV)

	lower := gocv.NewScalar(float64(d.params.Lower.H), float64(d.params.Lower.S), float64(d.params.Lower.V), 0)
	upper := gocv.NewScalar(float64(d.params.Upper.H), float64(d.params.Upper.S), float64(d.params.Upper.V), 0)
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.InRangeWithScalar(hsv, lower, upper, &mask)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(d.params.KernelSize, d.params.KernelSize))
	defer kernel.Close()

	opened := gocv.NewMat()
	defer opened.Close()
	gocv.MorphologyExWithParams(mask, &opened, gocv.MorphOpen, kernel, openIterations, gocv.BorderConstant)

	closed := gocv.NewMat()
	defer closed.Close()
	gocv.MorphologyExWithParams(opened, &closed, gocv.MorphClose, kernel, closeIterations, gocv.BorderConstant)

	contours := gocv.FindContours(closed, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	bounds := img.Bounds()
	imageArea := float64(src.Rows() * src.Cols())

	d.log.WithField("contours", contours.Size()).Debug("segmented image with OpenCV")

	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		area := gocv.ContourArea(contour)
		if area < d.params.MinPoolArea || area < d.params.MinAreaRatio*imageArea {
			continue
		}

		epsilon := ApproxEpsilonRatio * gocv.ArcLength(contour, true)
		approx := gocv.ApproxPolyDP(contour, epsilon, true)

		points := approx.ToPoints()
		polygon := make(Polygon, len(points))
		for j, p := range points {
			polygon[j] = Point{X: p.X + bounds.Min.X, Y: p.Y + bounds.Min.Y}
		}
		approx.Close()

		polygons = append(polygons, closePolygon(polygon))
	}

	return polygons, nil
}

func registerNative(r *Registry) {
	r.Register(MethodGoCV, func(opts Options) (Detector, error) {
		return NewGoCVDetector(opts.Params, opts.Logger), nil
	})
}
