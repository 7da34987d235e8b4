package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult represents a parsed benchmark result.
type BenchmarkResult struct {
	Name        string
	Iterations  int
	NsPerOp     float64
	BytesPerOp  int64
	AllocsPerOp int64
}

// ComparisonResult represents one benchmark compared across the two runs.
type ComparisonResult struct {
	Name            string
	BaselineNs      float64
	CandidateNs     float64
	Speedup         float64
	BaselineBytes   int64
	CandidateBytes  int64
	BaselineAllocs  int64
	CandidateAllocs int64
	CandidateOnly   bool
}

var (
	baselineFile = flag.String(
		"baseline",
		"",
		"Benchmark output of the baseline run (e.g. the default pages backend)",
	)
	candidateFile = flag.String(
		"candidate",
		"",
		"Benchmark output of the candidate run (stdin if not specified)",
	)
	baselineLabel  = flag.String("baseline-label", "baseline", "Label for the baseline column")
	candidateLabel = flag.String("candidate-label", "candidate", "Label for the candidate column")
	outputFile     = flag.String("output", "", "Output markdown file (stdout if not specified)")
	quiet          = flag.Bool("quiet", false, "Suppress progress output")
)

func main() {
	flag.Parse()

	if *baselineFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -baseline is required")
		os.Exit(1)
	}

	baseline, err := readBenchmarks(*baselineFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading baseline: %v\n", err)
		os.Exit(1)
	}

	var candidate []BenchmarkResult
	if *candidateFile != "" {
		candidate, err = readBenchmarks(*candidateFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading candidate: %v\n", err)
			os.Exit(1)
		}
	} else {
		candidate = parseBenchmarks(bufio.NewScanner(os.Stdin))
	}

	if !*quiet {
		fmt.Fprintf(os.Stderr, "Parsed %d baseline and %d candidate results\n",
			len(baseline), len(candidate))
	}

	// Generate comparisons
	comparisons := generateComparisons(baseline, candidate)

	if !*quiet {
		fmt.Fprintf(os.Stderr, "Generated %d comparisons\n", len(comparisons))
	}

	// Generate markdown report
	report := generateMarkdownReport(comparisons)

	// Write output
	if *outputFile != "" {
		err := os.WriteFile(*outputFile, []byte(report), 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		if !*quiet {
			fmt.Fprintf(os.Stderr, "Report written to %s\n", *outputFile)
		}
	} else {
		fmt.Fprint(os.Stdout, report)
	}
}

func readBenchmarks(path string) ([]BenchmarkResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseBenchmarks(bufio.NewScanner(f)), nil
}

func parseBenchmarks(scanner *bufio.Scanner) []BenchmarkResult {
	var results []BenchmarkResult

	// Regex to parse benchmark output lines
	// Benchmark_Alloc_Recycled-8    10000    124.5 ns/op    0 B/op    0 allocs/op
	benchmarkRegex := regexp.MustCompile(
		`^(Benchmark\S+)\s+(\d+)\s+([\d.]+)\s+ns/op(?:\s+([\d.]+)\s+(?:B|MB)/op)?(?:\s+([\d.]+)\s+allocs/op)?`,
	)

	for scanner.Scan() {
		line := scanner.Text()

		// Try to parse as JSON (from -json flag)
		var testEvent map[string]any
		if err := json.Unmarshal([]byte(line), &testEvent); err == nil {
			if output, ok := testEvent["Output"].(string); ok {
				line = output
			}
		}

		// Parse benchmark line
		matches := benchmarkRegex.FindStringSubmatch(strings.TrimSpace(line))
		if matches == nil {
			continue
		}

		name := matches[1]
		iterations, _ := strconv.Atoi(matches[2])
		nsPerOp, _ := strconv.ParseFloat(matches[3], 64)

		var bytesPerOp int64
		var allocsPerOp int64

		if matches[4] != "" {
			bytesPerOp, _ = strconv.ParseInt(matches[4], 10, 64)
		}
		if matches[5] != "" {
			allocsPerOp, _ = strconv.ParseInt(matches[5], 10, 64)
		}

		// Strip the -N GOMAXPROCS suffix so runs from different machines
		// still line up
		if dashIdx := strings.LastIndex(name, "-"); dashIdx > 0 {
			if _, err := strconv.Atoi(name[dashIdx+1:]); err == nil {
				name = name[:dashIdx]
			}
		}

		results = append(results, BenchmarkResult{
			Name:        name,
			Iterations:  iterations,
			NsPerOp:     nsPerOp,
			BytesPerOp:  bytesPerOp,
			AllocsPerOp: allocsPerOp,
		})
	}

	return results
}

func generateComparisons(baseline, candidate []BenchmarkResult) []ComparisonResult {
	baseByName := make(map[string]BenchmarkResult, len(baseline))
	for _, result := range baseline {
		baseByName[result.Name] = result
	}

	var comparisons []ComparisonResult

	for _, cand := range candidate {
		base, hasBase := baseByName[cand.Name]

		if hasBase {
			// Both runs have this benchmark - compare them
			speedup := base.NsPerOp / cand.NsPerOp

			comparisons = append(comparisons, ComparisonResult{
				Name:            cand.Name,
				BaselineNs:      base.NsPerOp,
				CandidateNs:     cand.NsPerOp,
				Speedup:         speedup,
				BaselineBytes:   base.BytesPerOp,
				CandidateBytes:  cand.BytesPerOp,
				BaselineAllocs:  base.AllocsPerOp,
				CandidateAllocs: cand.AllocsPerOp,
			})
		} else {
			// Only the candidate run has it
			comparisons = append(comparisons, ComparisonResult{
				Name:            cand.Name,
				CandidateNs:     cand.NsPerOp,
				CandidateBytes:  cand.BytesPerOp,
				CandidateAllocs: cand.AllocsPerOp,
				CandidateOnly:   true,
			})
		}
	}

	sort.Slice(comparisons, func(i, j int) bool {
		return comparisons[i].Name < comparisons[j].Name
	})

	return comparisons
}

func generateMarkdownReport(comparisons []ComparisonResult) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Allocator Benchmark Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("Baseline: **%s**, candidate: **%s**\n\n", *baselineLabel, *candidateLabel))

	// Summary statistics
	candidateFaster := 0
	baselineFaster := 0
	candidateOnly := 0
	totalSpeedup := 0.0

	for _, comp := range comparisons {
		if comp.CandidateOnly {
			candidateOnly++
		} else {
			if comp.Speedup > 1.0 {
				candidateFaster++
			} else if comp.Speedup < 1.0 {
				baselineFaster++
			}
			totalSpeedup += comp.Speedup
		}
	}

	comparableCount := len(comparisons) - candidateOnly
	avgSpeedup := 0.0
	if comparableCount > 0 {
		avgSpeedup = totalSpeedup / float64(comparableCount)
	}

	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Total benchmarks**: %d\n", len(comparisons)))
	sb.WriteString(fmt.Sprintf("- **Comparable** (both runs): %d\n", comparableCount))
	if comparableCount > 0 {
		sb.WriteString(
			fmt.Sprintf(
				"  - %s faster: %d (%.1f%%)\n",
				*candidateLabel,
				candidateFaster,
				float64(candidateFaster)/float64(comparableCount)*100,
			),
		)
		sb.WriteString(
			fmt.Sprintf(
				"  - %s faster: %d (%.1f%%)\n",
				*baselineLabel,
				baselineFaster,
				float64(baselineFaster)/float64(comparableCount)*100,
			),
		)
		sb.WriteString(fmt.Sprintf("  - Average speedup: **%.2fx**\n", avgSpeedup))
	}
	sb.WriteString(fmt.Sprintf("- **%s-only benchmarks**: %d\n", *candidateLabel, candidateOnly))
	sb.WriteString("\n")

	// Detailed results table
	sb.WriteString("## Detailed Results\n\n")
	sb.WriteString(fmt.Sprintf(
		"| Benchmark | %s (ns/op) | %s (ns/op) | Speedup | Memory (B/op) | Allocs |\n",
		*baselineLabel, *candidateLabel,
	))
	sb.WriteString(
		"|-----------|------------|------------|---------|---------------|--------|\n",
	)

	for _, comp := range comparisons {
		if comp.CandidateOnly {
			sb.WriteString(fmt.Sprintf("| %s | *N/A* | %s | *%s only* | %s | %s |\n",
				comp.Name,
				formatNumber(comp.CandidateNs),
				*candidateLabel,
				formatBytes(comp.CandidateBytes),
				formatNumber(float64(comp.CandidateAllocs)),
			))
		} else {
			indicator := "✓"
			speedupStyle := "**"
			if comp.Speedup < 1.0 {
				indicator = "✗"
				speedupStyle = ""
			}

			memIndicator := ""
			if comp.CandidateBytes < comp.BaselineBytes {
				memIndicator = " ✓"
			} else if comp.CandidateBytes > comp.BaselineBytes {
				memIndicator = " ✗"
			}

			allocIndicator := ""
			if comp.CandidateAllocs < comp.BaselineAllocs {
				allocIndicator = " ✓"
			} else if comp.CandidateAllocs > comp.BaselineAllocs {
				allocIndicator = " ✗"
			}

			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s%.2fx%s %s | %s vs %s%s | %s vs %s%s |\n",
				comp.Name,
				formatNumber(comp.BaselineNs),
				formatNumber(comp.CandidateNs),
				speedupStyle,
				comp.Speedup,
				speedupStyle,
				indicator,
				formatBytes(comp.BaselineBytes),
				formatBytes(comp.CandidateBytes),
				memIndicator,
				formatNumber(float64(comp.BaselineAllocs)),
				formatNumber(float64(comp.CandidateAllocs)),
				allocIndicator,
			))
		}
	}

	sb.WriteString("\n")

	// Category summaries
	sb.WriteString("## Performance by Category\n\n")

	categories := categorizeBenchmarks(comparisons)
	for _, category := range categoryOrder {
		comps := categories[category]
		if len(comps) == 0 {
			continue
		}

		avgSpeed := 0.0
		count := 0
		for _, comp := range comps {
			if !comp.CandidateOnly {
				avgSpeed += comp.Speedup
				count++
			}
		}

		if count > 0 {
			avgSpeed /= float64(count)
			status := "✓"
			if avgSpeed < 1.0 {
				status = "✗"
			}
			sb.WriteString(fmt.Sprintf("- %s **%s**: %.2fx average speedup %s\n",
				status, category, avgSpeed, status))
		} else {
			sb.WriteString(fmt.Sprintf("- **%s**: %s-only benchmarks\n", category, *candidateLabel))
		}
	}

	sb.WriteString("\n")

	// Notes
	sb.WriteString("## Notes\n\n")
	sb.WriteString(fmt.Sprintf("- **Speedup > 1.0**: %s is faster ✓\n", *candidateLabel))
	sb.WriteString(fmt.Sprintf("- **Speedup < 1.0**: %s is faster ✗\n", *baselineLabel))
	sb.WriteString("- **Memory comparison**: Lower is better\n")
	sb.WriteString("- **Allocations**: Fewer is better\n")

	return sb.String()
}

var categoryOrder = []string{
	"Facade",
	"Typed",
	"Arrays",
	"Scoped",
	"Hashing",
	"Backends",
	"Other",
}

func categorizeBenchmarks(comparisons []ComparisonResult) map[string][]ComparisonResult {
	categories := make(map[string][]ComparisonResult, len(categoryOrder))

	for _, comp := range comparisons {
		name := strings.ToLower(comp.Name)

		switch {
		case strings.Contains(name, "goheap") || strings.Contains(name, "counting") ||
			strings.Contains(name, "backend"):
			categories["Backends"] = append(categories["Backends"], comp)
		case strings.Contains(name, "scoped") || strings.Contains(name, "own"):
			categories["Scoped"] = append(categories["Scoped"], comp)
		case strings.Contains(name, "slice"):
			categories["Arrays"] = append(categories["Arrays"], comp)
		case strings.Contains(name, "new") || strings.Contains(name, "delete") ||
			strings.Contains(name, "poison"):
			categories["Typed"] = append(categories["Typed"], comp)
		case strings.Contains(name, "scramble") || strings.Contains(name, "hash"):
			categories["Hashing"] = append(categories["Hashing"], comp)
		case strings.Contains(name, "alloc") || strings.Contains(name, "realloc") ||
			strings.Contains(name, "free") || strings.Contains(name, "calloc"):
			categories["Facade"] = append(categories["Facade"], comp)
		default:
			categories["Other"] = append(categories["Other"], comp)
		}
	}

	return categories
}

func formatNumber(n float64) string {
	if n >= 1000000 {
		return fmt.Sprintf("%.2fM", n/1000000)
	} else if n >= 1000 {
		return fmt.Sprintf("%.1fK", n/1000)
	}
	return fmt.Sprintf("%.0f", n)
}

func formatBytes(b int64) string {
	if b >= 1024*1024 {
		return fmt.Sprintf("%.2fMB", float64(b)/(1024*1024))
	} else if b >= 1024 {
		return fmt.Sprintf("%.1fKB", float64(b)/1024)
	}
	return fmt.Sprintf("%dB", b)
}
