//go:build unix

package ioutils

import (
	"errors"

	"golang.org/x/sys/unix"
)

// IsCrossDevice reports whether err is a hard-link failure caused by source
// and destination living on different file systems.
func IsCrossDevice(err error) bool {
	return errors.Is(err, unix.EXDEV)
}
