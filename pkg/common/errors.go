package common

import "errors"

var (
	ErrNoArchiveData  = errors.New("WTPA data not found")
	ErrNoSampleData   = errors.New("WTPA sample data not found")
	ErrInvalidSlot    = errors.New("slot index out of range")
	ErrCorruptSlot    = errors.New("slot length exceeds slot capacity")
	ErrSourceNotFound = errors.New("source does not exist")
	ErrNotADevice     = errors.New("source is not a device")
	ErrNotADirectory  = errors.New("destination exists but is not a directory")
)
