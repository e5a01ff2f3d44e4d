//go:build !unix

package ioutils

// IsCrossDevice always reports false on platforms without EXDEV.
func IsCrossDevice(err error) bool {
	return false
}
