package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wtpa-audio/wtpa2/pkg/archive"
	"github.com/wtpa-audio/wtpa2/pkg/common"
)

// Exit codes: 1 usage, 2 operation failure, 3 source is not a WTPA2 sample
// archive or usable device.
const (
	exitUsage   = 1
	exitFailure = 2
	exitBadData = 3
)

func main() {
	// Setup logging
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitUsage)
	}

	switch os.Args[1] {
	case "pack":
		packCommand()
	case "extract":
		extractCommand()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(exitUsage)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `wtpa2 - WTPA2 sample archive utility

Usage:
  wtpa2 <command> [options]

Commands:
  pack     Pack AIFF samples into a WTPA2 readable binary file
  extract  Extract samples from a WTPA2 formatted binary file or device

Examples:
  # Pack a directory of samples (and one extra file) into an archive
  wtpa2 pack card.img ./samples kick.aiff

  # Extract every occupied slot from an SD card device
  wtpa2 extract /dev/sdb ./out

  # Only look at the first 16 slots
  wtpa2 extract --slots 16 card.img ./out

Environment Variables:
  WTPA2_SLOTS    Default slot limit for extract (1-512)

`)
}

func packCommand() {
	fs := flag.NewFlagSet("pack", flag.ExitOnError)
	verbose := fs.Bool("verbose", false, "Verbose logging")
	fs.Parse(os.Args[2:])

	args := fs.Args()
	if len(args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: wtpa2 pack [-verbose] <outfile> <infile...>\n")
		os.Exit(exitUsage)
	}

	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	a := archive.NewArchiver()
	n, err := a.Pack(archive.PackOptions{
		OutputFile: args[0],
		InputPaths: args[1:],
	})
	if err != nil {
		log.Error().Err(err).Msg("pack failed")
		os.Exit(exitCode(err))
	}

	log.Info().Msgf("packed %d samples into %s", n, args[0])
}

func extractCommand() {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)

	var slots int
	defaultSlots := getEnvInt("WTPA2_SLOTS", archive.SlotCount)
	fs.IntVar(&slots, "s", defaultSlots, "Limit sample slots read (1-512)")
	fs.IntVar(&slots, "slots", defaultSlots, "Limit sample slots read (1-512)")
	verbose := fs.Bool("verbose", false, "Verbose logging")
	fs.Parse(os.Args[2:])

	args := fs.Args()
	if len(args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: wtpa2 extract [-verbose] [-s/--slots N] <src> <dest>\n")
		os.Exit(exitUsage)
	}
	if slots < 1 || slots > archive.SlotCount {
		fmt.Fprintf(os.Stderr, "Error: valid slot range is 1 - %d\n", archive.SlotCount)
		os.Exit(exitUsage)
	}

	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	a := archive.NewArchiver()
	n, err := a.Extract(archive.ExtractOptions{
		SourcePath: args[0],
		OutputPath: args[1],
		MaxSlots:   slots,
	})
	if err != nil {
		log.Error().Err(err).Msg("extract failed")
		os.Exit(exitCode(err))
	}

	log.Info().Msgf("extracted %d samples to %s", n, args[1])
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, common.ErrNoArchiveData),
		errors.Is(err, common.ErrNoSampleData),
		errors.Is(err, common.ErrNotADevice):
		return exitBadData
	default:
		return exitFailure
	}
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}
