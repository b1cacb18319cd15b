// Package source classifies pack/extract paths so the archive code stays
// platform-agnostic. Block-device detection differs per OS and lives behind
// build tags.
package source

// Kind is the classification of a filesystem path.
type Kind int

const (
	Missing Kind = iota
	RegularFile
	Directory
	BlockDevice
)

func (k Kind) String() string {
	switch k {
	case Missing:
		return "missing"
	case RegularFile:
		return "file"
	case Directory:
		return "directory"
	case BlockDevice:
		return "device"
	}
	return "unknown"
}
