package archive

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/wtpa-audio/wtpa2/pkg/common"
	"github.com/wtpa-audio/wtpa2/pkg/sample"
	"github.com/wtpa-audio/wtpa2/pkg/source"
)

// Extract reads an archive from a file or raw block device and writes every
// occupied slot out as <slot>.aiff under OutputPath. MaxSlots limits how many
// slots are examined; zero or out-of-range means all of them. Returns the
// number of samples extracted.
func (a *Archiver) Extract(opts ExtractOptions) (int, error) {
	maxSlots := opts.MaxSlots
	if maxSlots <= 0 || maxSlots > SlotCount {
		maxSlots = SlotCount
	}

	srcPath := opts.SourcePath
	kind, err := source.Classify(srcPath)
	if err != nil {
		return 0, fmt.Errorf("classifying %s: %w", srcPath, err)
	}
	switch kind {
	case source.Missing:
		return 0, fmt.Errorf("%s: %w", srcPath, common.ErrSourceNotFound)
	case source.RegularFile:
		log.Info().Msgf("reading from file %s", srcPath)
	case source.BlockDevice:
		srcPath = source.DevicePath(srcPath)
		log.Info().Msgf("reading from device %s", srcPath)
	default:
		return 0, fmt.Errorf("%s: %w", srcPath, common.ErrNotADevice)
	}

	if fi, err := os.Stat(opts.OutputPath); err == nil {
		if !fi.IsDir() {
			return 0, fmt.Errorf("%s: %w", opts.OutputPath, common.ErrNotADirectory)
		}
	} else if err := os.MkdirAll(opts.OutputPath, 0755); err != nil {
		return 0, fmt.Errorf("creating %s: %w", opts.OutputPath, err)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", srcPath, err)
	}
	defer src.Close()

	header := make([]byte, HeaderLen)
	if _, err := io.ReadFull(src, header); err != nil {
		return 0, fmt.Errorf("reading header: %w", err)
	}
	if err := CheckMagic(header); err != nil {
		return 0, err
	}

	bitmap := header[TOCOffset : TOCOffset+BitmapLen]
	extracted := 0

	for slot := 0; slot < maxSlots; slot++ {
		if !SlotMarked(bitmap, slot) {
			continue
		}

		off, err := SlotOffset(slot)
		if err != nil {
			return extracted, err
		}
		if _, err := src.Seek(off, io.SeekStart); err != nil {
			return extracted, fmt.Errorf("seeking to slot %d: %w", slot, err)
		}

		var prefix [FrameCountLen]byte
		if _, err := io.ReadFull(src, prefix[:]); err != nil {
			return extracted, fmt.Errorf("reading slot %d length: %w", slot, err)
		}

		// Raw devices hand back whatever bytes are there; a length that
		// cannot fit a slot means the region never held a sample.
		frameCount := binary.BigEndian.Uint32(prefix[:])
		if frameCount > MaxFrameCount {
			return extracted, fmt.Errorf("slot %d claims %d frames: %w", slot, frameCount, common.ErrCorruptSlot)
		}

		frames := make([]byte, frameCount)
		if _, err := io.ReadFull(src, frames); err != nil {
			return extracted, fmt.Errorf("reading slot %d: %w", slot, err)
		}

		name := filepath.Join(opts.OutputPath, fmt.Sprintf("%03d%s", slot, sample.Extension))
		if err := sample.Encode(name, sample.DefaultFrameRate, frames); err != nil {
			return extracted, fmt.Errorf("writing %s: %w", name, err)
		}

		log.Info().Msgf("wrote sample from slot %d to %s", slot, name)
		extracted++
	}

	return extracted, nil
}
