//go:build !windows

package source

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Classify stats the path. Anything that is not a directory or a block
// device is treated as a regular file; opening or decoding it later reports
// the real problem.
func Classify(path string) (Kind, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		if errors.Is(err, unix.ENOENT) {
			return Missing, nil
		}
		return Missing, err
	}

	switch st.Mode & unix.S_IFMT {
	case unix.S_IFBLK:
		return BlockDevice, nil
	case unix.S_IFDIR:
		return Directory, nil
	default:
		return RegularFile, nil
	}
}

// DevicePath returns the path to open for a block device.
func DevicePath(path string) string {
	return path
}
