// Package archive packs mono 8-bit AIFF samples into the fixed-layout WTPA2
// container and extracts them back out.
package archive

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/karrick/godirwalk"
	"github.com/rs/zerolog/log"

	"github.com/wtpa-audio/wtpa2/pkg/sample"
	"github.com/wtpa-audio/wtpa2/pkg/source"
)

type PackOptions struct {
	OutputFile string
	InputPaths []string
}

type ExtractOptions struct {
	SourcePath string
	OutputPath string
	MaxSlots   int
}

type Archiver struct {
}

func NewArchiver() *Archiver {
	return &Archiver{}
}

// packState is threaded through the directory recursion; nextSlot is the
// slot the next accepted sample lands in.
type packState struct {
	header   []byte
	nextSlot int
	out      *os.File
}

func (s *packState) bitmap() []byte {
	return s.header[TOCOffset : TOCOffset+BitmapLen]
}

// Pack writes the samples found under the given input paths into a new
// archive at OutputFile, in order. Inputs that are not usable samples are
// skipped with a log line; only I/O errors on the output abort the pack.
// Returns the number of samples packed.
func (a *Archiver) Pack(opts PackOptions) (int, error) {
	out, err := os.Create(opts.OutputFile)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", opts.OutputFile, err)
	}
	defer out.Close()

	// Placeholder for the header. The real header is written last, so an
	// interrupted pack leaves an archive that fails the magic check instead
	// of one that claims slots it never wrote.
	if _, err := out.Write(make([]byte, HeaderLen)); err != nil {
		return 0, fmt.Errorf("reserving header: %w", err)
	}

	state := &packState{header: NewHeader(), out: out}

	for _, in := range opts.InputPaths {
		kind, err := source.Classify(in)
		if err != nil {
			return state.nextSlot, fmt.Errorf("classifying %s: %w", in, err)
		}

		switch kind {
		case source.Missing:
			log.Warn().Msgf("%s does not exist, skipping", in)
		case source.Directory:
			if err := a.packDir(state, in); err != nil {
				return state.nextSlot, err
			}
		default:
			if err := a.packFile(state, in); err != nil {
				return state.nextSlot, err
			}
		}
	}

	if _, err := out.Seek(0, io.SeekStart); err != nil {
		return state.nextSlot, fmt.Errorf("seeking to header: %w", err)
	}
	if _, err := out.Write(state.header); err != nil {
		return state.nextSlot, fmt.Errorf("writing header: %w", err)
	}

	return state.nextSlot, nil
}

// packDir packs every file directly under dir before recursing into any
// subdirectory, both in lexicographic order. Slot assignment depends on this
// order, so it must stay stable for a given tree.
func (a *Archiver) packDir(state *packState, dir string) error {
	log.Info().Msgf("processing directory %s", dir)

	dirents, err := godirwalk.ReadDirents(dir, nil)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}
	sort.Sort(dirents)

	for _, de := range dirents {
		if !de.IsDir() {
			if err := a.packFile(state, filepath.Join(dir, de.Name())); err != nil {
				return err
			}
		}
	}
	for _, de := range dirents {
		if de.IsDir() {
			if err := a.packDir(state, filepath.Join(dir, de.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

// packFile decodes one candidate file and, if it passes the filter, writes it
// into the next free slot. Filter failures only skip the file; errors writing
// the archive itself are fatal.
func (a *Archiver) packFile(state *packState, path string) error {
	log.Info().Msgf("processing file %s", path)

	s, err := sample.Decode(path)
	if err != nil {
		log.Warn().Msgf("skipped %s: %v", path, err)
		return nil
	}

	switch {
	case s.SampleWidth != 1:
		log.Warn().Msgf("skipped %s: sample width is %d bytes, want 1", path, s.SampleWidth)
		return nil
	case s.Channels != 1:
		log.Warn().Msgf("skipped %s: %d channels, want mono", path, s.Channels)
		return nil
	case s.FrameCount > MaxFrameCount:
		log.Warn().Msgf("skipped %s: %d frames, max is %d", path, s.FrameCount, MaxFrameCount)
		return nil
	case state.nextSlot >= SlotCount:
		log.Warn().Msgf("skipped %s: archive full (%d slots)", path, SlotCount)
		return nil
	}

	if s.FrameRate != sample.DefaultFrameRate {
		log.Warn().Msgf("%s: frame rate is %d, target is %d", path, s.FrameRate, sample.DefaultFrameRate)
	}

	slot := state.nextSlot

	var prefix [FrameCountLen]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(s.FrameCount))
	if _, err := state.out.Write(prefix[:]); err != nil {
		return fmt.Errorf("writing slot %d: %w", slot, err)
	}
	if _, err := state.out.Write(s.Frames); err != nil {
		return fmt.Errorf("writing slot %d: %w", slot, err)
	}

	// Leave the unused remainder of the slot unwritten and position the
	// output at the next slot boundary.
	next := int64(HeaderLen) + int64(slot+1)*SlotLen
	if _, err := state.out.Seek(next, io.SeekStart); err != nil {
		return fmt.Errorf("seeking past slot %d: %w", slot, err)
	}

	MarkSlot(state.bitmap(), slot)
	state.nextSlot++
	log.Info().Msgf("wrote %s to slot %d (%d frames)", path, slot, s.FrameCount)
	return nil
}
