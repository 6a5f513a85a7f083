// Package imaging provides the low-level image operations used by pool detection.
//
// This package loads and saves image files, converts pixels to the HSV color
// space, thresholds an image into a binary Mask, and cleans masks with
// morphological erosion and dilation. All operations work with standard Go
// image.Image types and use a coordinate system where (0,0) is at the top-left
// corner, X increases rightward, and Y increases downward.
//
// # HSV Convention
//
// HSV values follow the 8-bit OpenCV convention so that thresholds tuned for
// OpenCV carry over unchanged:
//   - H: 0-179 (degrees divided by two)
//   - S: 0-255
//   - V: 0-255
//
// # Masks
//
// A Mask has the same spatial dimensions as the image it was derived from and
// is indexed from (0,0) regardless of the source image's bounds origin.
// Morphological operations treat pixels outside the mask as neutral: they never
// erode foreground at the border and never dilate into the mask.
//
// # Error Handling
//
// Load returns a *LoadError for missing, unreadable or undecodable files.
// Callers can detect it with errors.As.
package imaging
