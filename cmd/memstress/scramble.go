package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/TykTechnologies/murmur3"
	"github.com/joshuapare/memkit/pkg/hashcode"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newScrambleCmd())
}

func newScrambleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scramble",
		Short: "Scramble hash codes for keys read from stdin",
		Long: `The scramble command reads one key per line from stdin, hashes each with
murmur3, scrambles the hash the way table consumers should before taking high
bits, and reports how the keys spread over 256 high-byte buckets.

Example:
  printf 'alpha\nbeta\ngamma\n' | memstress scramble
  seq 1 1000 | memstress scramble --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScramble(os.Stdin)
		},
	}
	return cmd
}

type ScrambleEntry struct {
	Key       string
	Hash      uint32
	Scrambled uint32
	Bucket    int
}

func runScramble(in io.Reader) error {
	var buckets [256]int
	var entries []ScrambleEntry

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		key := scanner.Text()
		if key == "" {
			continue
		}

		h := murmur3.New32()
		h.Write([]byte(key))
		raw := hashcode.HashNumber(h.Sum32())

		scrambled := hashcode.Scramble(raw)
		bucket := int(scrambled >> 24)
		buckets[bucket]++
		entries = append(entries, ScrambleEntry{
			Key:       key,
			Hash:      uint32(raw),
			Scrambled: uint32(scrambled),
			Bucket:    bucket,
		})
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	used := 0
	maxBucket, maxCount := 0, 0
	for b, count := range buckets {
		if count == 0 {
			continue
		}
		used++
		if count > maxCount {
			maxBucket, maxCount = b, count
		}
	}

	// Output as JSON if requested
	if jsonOut {
		result := map[string]interface{}{
			"keys":        len(entries),
			"bucketsUsed": used,
			"maxBucket":   maxBucket,
			"maxCount":    maxCount,
			"entries":     entries,
		}
		return printJSON(result)
	}

	// Text output
	for _, e := range entries {
		printInfo("  %-24s %08x -> %08x  bucket %3d\n", e.Key, e.Hash, e.Scrambled, e.Bucket)
	}

	printInfo("\n%d keys across %d of 256 high-byte buckets\n", len(entries), used)
	if len(entries) > 0 {
		printInfo("Busiest bucket: %d (%d keys)\n", maxBucket, maxCount)
		printInfo("\nBucket spread (rows of 16):\n")
		for row := 0; row < 16; row++ {
			total := 0
			for col := 0; col < 16; col++ {
				total += buckets[row*16+col]
			}
			printInfo("  %x0-%xf: %d\n", row, row, total)
		}
	}

	return nil
}
