package main

import (
	"github.com/joshuapare/memkit/mem"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newClassesCmd())
}

func newClassesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classes",
		Short: "Print the allocator size-class table",
		Long: `The classes command prints the payload capacities the page-backed
allocator recycles through free lists, the request range each class serves,
and the block footprint including bookkeeping overhead.

Example:
  memstress classes
  memstress classes --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClasses()
		},
	}
	return cmd
}

type ClassRow struct {
	Class   int
	Payload uint64
	Block   uint64
	Serves  [2]uint64
}

func runClasses() error {
	classes := mem.SizeClasses()

	rows := make([]ClassRow, len(classes))
	first := uint64(1)
	for i, payload := range classes {
		rows[i] = ClassRow{
			Class:   i,
			Payload: uint64(payload),
			Block:   uint64(payload) + uint64(mem.BlockOverhead),
			Serves:  [2]uint64{first, uint64(payload)},
		}
		first = uint64(payload) + 1
	}
	largest := rows[len(rows)-1].Payload

	// Output as JSON if requested
	if jsonOut {
		result := map[string]interface{}{
			"overhead":   mem.BlockOverhead,
			"largest":    largest,
			"classes":    rows,
			"classCount": len(rows),
		}
		return printJSON(result)
	}

	// Text output
	printInfo("\nSize Classes (%d classes, %d-byte block overhead):\n\n", len(rows), mem.BlockOverhead)
	printInfo("  %-5s %9s %9s  %s\n", "Class", "Payload", "Block", "Serves")
	for _, row := range rows {
		printInfo("  %-5d %9d %9d  %d-%d\n", row.Class, row.Payload, row.Block, row.Serves[0], row.Serves[1])
	}
	printInfo("\nRequests above %d bytes get dedicated page-rounded mappings.\n", largest)

	return nil
}
