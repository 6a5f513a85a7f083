//go:build !gocv
// +build !gocv

package detection

// registerNative is a no-op without the gocv build tag.
func registerNative(*Registry) {}
