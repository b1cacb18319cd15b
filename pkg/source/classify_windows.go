//go:build windows

package source

import (
	"os"
	"strings"
)

// Classify stats the path. A bare drive letter ("E:") stats as a directory
// but is really the device to read the archive from, so it classifies as a
// block device.
func Classify(path string) (Kind, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Missing, nil
		}
		return Missing, err
	}

	if fi.IsDir() {
		if isDriveLetter(path) {
			return BlockDevice, nil
		}
		return Directory, nil
	}
	return RegularFile, nil
}

func isDriveLetter(path string) bool {
	return len(path) == 2 && path[1] == ':'
}

// DevicePath returns the path to open for a block device: the raw volume
// alias for a drive letter.
func DevicePath(path string) string {
	if isDriveLetter(path) {
		return `\\.\` + strings.ToUpper(path)
	}
	return path
}
