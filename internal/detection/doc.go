// Package detection finds swimming-pool outlines in aerial imagery.
//
// Detectors implement a single operation, Detect, and are looked up by method
// name in a Registry:
//
//   - "opencv": classical color segmentation implemented in pure Go
//   - "llm": asks a multimodal inference service for the outline
//   - "gocv": the same color segmentation executed by OpenCV (gocv build tag)
//
// # Algorithm Overview
//
// The color-segmentation pipeline is:
//
//  1. HSV Threshold: keep pixels inside a configured hue/saturation/value box
//  2. Morphology: opening removes speckle, closing fills small gaps
//  3. Contour Tracing: follow the outer border of each connected region
//  4. Filtering: drop regions below an absolute and a relative area threshold
//  5. Simplification: Douglas-Peucker with a perimeter-proportional tolerance
//  6. Closure: every returned polygon with 3 or more points ends on its start
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Contours trace pixel centers, so a filled w×h rectangle has a traced area of
// (w-1)×(h-1).
//
// # Limitations
//
// Color thresholds are tuned for blue/cyan water. Covered pools, green
// algae-tinted water, and blue roofs or tarps produce misses and false
// positives.
package detection
