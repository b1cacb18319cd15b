package archive

import "github.com/wtpa-audio/wtpa2/pkg/common"

// On-disk layout of a WTPA2 sample archive: a 512 byte header followed by
// 512 fixed slots of 512 KiB. The header carries two 4 byte ASCII magics and
// a 64 byte slot bitmap at offset 16; the rest is reserved. An occupied slot
// starts with a 4 byte big-endian frame count followed by raw 8-bit mono PCM.
const (
	HeaderLen    = 512
	MagicArchive = "WTPA"
	MagicSamples = "SAMP"

	TOCOffset = 16
	SlotCount = 512
	SlotLen   = 512 * 1024
	BitmapLen = SlotCount / 8

	FrameCountLen = 4

	// MaxFrameCount keeps the length prefix plus the frames inside a single
	// slot region. One frame is one byte at 8-bit mono.
	MaxFrameCount = SlotLen - FrameCountLen
)

// NewHeader returns a zeroed header with both magics set.
func NewHeader() []byte {
	h := make([]byte, HeaderLen)
	copy(h[0:], MagicArchive)
	copy(h[4:], MagicSamples)
	return h
}

// SlotOffset returns the byte offset of a slot's data region.
func SlotOffset(slot int) (int64, error) {
	if slot < 0 || slot >= SlotCount {
		return 0, common.ErrInvalidSlot
	}
	return HeaderLen + int64(slot)*SlotLen, nil
}

// SlotMarked reports whether the bitmap marks the slot as occupied.
// Bit slot%8 of byte slot/8, LSB first.
func SlotMarked(bitmap []byte, slot int) bool {
	return bitmap[slot/8]&(1<<uint(slot%8)) != 0
}

// MarkSlot marks the slot as occupied. The caller guarantees slot < SlotCount.
func MarkSlot(bitmap []byte, slot int) {
	bitmap[slot/8] |= 1 << uint(slot%8)
}

// CheckMagic verifies both header signatures, reporting which one is missing.
func CheckMagic(header []byte) error {
	if len(header) < 8 || string(header[0:4]) != MagicArchive {
		return common.ErrNoArchiveData
	}
	if string(header[4:8]) != MagicSamples {
		return common.ErrNoSampleData
	}
	return nil
}
