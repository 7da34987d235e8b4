package main

import (
	"fmt"
	"math/bits"
	"math/rand"
	"net"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/joshuapare/memkit/mem"
	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	runGoroutines int
	runIters      int
	runSeed       int64
	runMaxSize    int
	runSlots      int
	runCheck      bool
	runListen     string
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().IntVarP(&runGoroutines, "goroutines", "g", 4, "Concurrent worker goroutines")
	cmd.Flags().IntVarP(&runIters, "iters", "n", 100000, "Iterations per goroutine")
	cmd.Flags().Int64Var(&runSeed, "seed", 1, "Seed for the size and action stream")
	cmd.Flags().IntVar(&runMaxSize, "max-size", 65536, "Largest request size in bytes")
	cmd.Flags().IntVar(&runSlots, "slots", 64, "Live-block slots per goroutine")
	cmd.Flags().BoolVar(&runCheck, "check", false, "Track every block and fail on leaks")
	cmd.Flags().StringVar(&runListen, "listen", "", "Serve live stats JSON on this address during the run")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Churn the allocator from concurrent goroutines",
		Long: `The run command hammers the allocator with a randomized mix of alloc,
realloc, and free calls across concurrent goroutines. Request sizes are
log-uniform so the recycling size classes and the dedicated-mapping path both
stay hot. Every worker drains its slots before exiting, so with --check a
nonzero live count at the end is a real leak and the command exits nonzero.

Example:
  memstress run
  memstress run --goroutines 8 --iters 500000 --check
  memstress run --seed 42 --max-size 1048576 --json
  memstress run --listen 127.0.0.1:8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress()
		},
	}
	return cmd
}

// churnCounters aggregates worker activity. Atomics so the live stats
// endpoint can read them mid-run.
type churnCounters struct {
	allocs   atomic.Uint64
	reallocs atomic.Uint64
	frees    atomic.Uint64
	failed   atomic.Uint64
	bytes    atomic.Uint64
}

type RunReport struct {
	Goroutines     int
	Iterations     int
	Seed           int64
	MaxSize        int
	Slots          int
	Checked        bool
	ElapsedSeconds float64
	Ops            uint64
	OpsPerSecond   float64
	Allocs         uint64
	Reallocs       uint64
	Frees          uint64
	FailedAllocs   uint64
	BytesRequested uint64
	LiveBlocks     int
	LiveBytes      uint64
	Backend        *mem.Stats
}

func runStress() error {
	if runGoroutines < 1 {
		return fmt.Errorf("--goroutines must be at least 1, got %d", runGoroutines)
	}
	if runIters < 0 {
		return fmt.Errorf("--iters must not be negative, got %d", runIters)
	}
	if runMaxSize < 1 {
		return fmt.Errorf("--max-size must be at least 1, got %d", runMaxSize)
	}
	if runSlots < 1 {
		return fmt.Errorf("--slots must be at least 1, got %d", runSlots)
	}

	printVerbose("Churning %d goroutines x %d iterations (seed %d, max %d bytes)\n",
		runGoroutines, runIters, runSeed, runMaxSize)

	base := mem.CurrentBackend()
	var counter *mem.CountingBackend
	if runCheck {
		counter = mem.NewCounting(base)
		mem.SetBackend(counter)
		defer mem.SetBackend(base)
	}

	counters := &churnCounters{}

	var srv *fasthttp.Server
	if runListen != "" {
		ln, err := net.Listen("tcp", runListen)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", runListen, err)
		}
		srv = &fasthttp.Server{Handler: statsHandler(counters, counter, base)}
		go func() {
			if serveErr := srv.Serve(ln); serveErr != nil {
				logger.Error("stats server stopped", zap.Error(serveErr))
			}
		}()
		logger.Info("serving live stats", zap.String("addr", ln.Addr().String()))
	}

	logger.Info("starting churn",
		zap.Int("goroutines", runGoroutines),
		zap.Int("iterations", runIters),
		zap.Int64("seed", runSeed),
		zap.Int("maxSize", runMaxSize),
		zap.Bool("check", runCheck))

	start := time.Now()
	var wg sync.WaitGroup
	for id := 0; id < runGoroutines; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			churnWorker(id, counters)
			logger.Debug("worker drained", zap.Int("worker", id))
		}(id)
	}
	wg.Wait()
	elapsed := time.Since(start)

	if srv != nil {
		if err := srv.Shutdown(); err != nil {
			logger.Warn("failed to stop stats server", zap.Error(err))
		}
	}

	report := buildReport(counters, counter, base, elapsed)
	logger.Info("churn finished",
		zap.Float64("seconds", report.ElapsedSeconds),
		zap.Uint64("ops", report.Ops),
		zap.Uint64("failed", report.FailedAllocs))

	if jsonOut {
		if err := printJSON(report); err != nil {
			return err
		}
	} else {
		printReport(report)
	}

	if counter != nil && counter.LiveBlocks() != 0 {
		return fmt.Errorf(
			"leak check failed: %d live blocks holding %d bytes",
			counter.LiveBlocks(),
			counter.LiveBytes(),
		)
	}
	return nil
}

// churnWorker runs one goroutine's share of the workload: random slot, then
// alloc into empty slots, occasionally realloc full ones, free the rest.
// Slots are drained before returning so a clean run leaves nothing live.
func churnWorker(id int, counters *churnCounters) {
	rng := rand.New(rand.NewSource(runSeed + int64(id)))
	slots := make([]unsafe.Pointer, runSlots)

	for i := 0; i < runIters; i++ {
		slot := rng.Intn(len(slots))
		switch {
		case slots[slot] == nil:
			size := requestSize(rng)
			p := mem.Alloc(size)
			if p == nil {
				counters.failed.Add(1)
				continue
			}
			stamp(p, size, byte(id))
			slots[slot] = p
			counters.allocs.Add(1)
			counters.bytes.Add(uint64(size))
		case rng.Intn(4) == 0:
			size := requestSize(rng)
			np := mem.Realloc(slots[slot], size)
			if np == nil {
				// The old block is still owned at its old size.
				counters.failed.Add(1)
				continue
			}
			stamp(np, size, byte(id))
			slots[slot] = np
			counters.reallocs.Add(1)
			counters.bytes.Add(uint64(size))
		default:
			mem.Free(slots[slot])
			slots[slot] = nil
			counters.frees.Add(1)
		}
	}

	for i, p := range slots {
		if p != nil {
			mem.Free(p)
			slots[i] = nil
			counters.frees.Add(1)
		}
	}
}

// requestSize draws a log-uniform size in [1, --max-size]: every power-of-two
// band gets equal weight, so small recycled classes and dedicated mappings
// are both exercised.
func requestSize(rng *rand.Rand) uintptr {
	band := rng.Intn(bits.Len(uint(runMaxSize)))
	size := 1<<band + rng.Intn(1<<band)
	if size > runMaxSize {
		size = runMaxSize
	}
	return uintptr(size)
}

// stamp writes both ends of the payload so every block the run claims is
// actually written through.
func stamp(p unsafe.Pointer, size uintptr, b byte) {
	buf := unsafe.Slice((*byte)(p), size)
	buf[0] = b
	buf[size-1] = b
}

func buildReport(counters *churnCounters, counter *mem.CountingBackend, base mem.Backend, elapsed time.Duration) RunReport {
	report := RunReport{
		Goroutines:     runGoroutines,
		Iterations:     runIters,
		Seed:           runSeed,
		MaxSize:        runMaxSize,
		Slots:          runSlots,
		Checked:        counter != nil,
		ElapsedSeconds: elapsed.Seconds(),
		Allocs:         counters.allocs.Load(),
		Reallocs:       counters.reallocs.Load(),
		Frees:          counters.frees.Load(),
		FailedAllocs:   counters.failed.Load(),
		BytesRequested: counters.bytes.Load(),
	}
	report.Ops = report.Allocs + report.Reallocs + report.Frees + report.FailedAllocs
	if secs := elapsed.Seconds(); secs > 0 {
		report.OpsPerSecond = float64(report.Ops) / secs
	}
	if counter != nil {
		report.LiveBlocks = counter.LiveBlocks()
		report.LiveBytes = counter.LiveBytes()
	}
	if sr, ok := base.(mem.StatsReader); ok {
		stats := sr.Stats()
		report.Backend = &stats
	}
	return report
}

func printReport(r RunReport) {
	if quiet {
		return
	}
	p := message.NewPrinter(language.English)
	p.Printf("\nChurn complete: %d goroutines x %d iterations in %.2fs\n",
		r.Goroutines, r.Iterations, r.ElapsedSeconds)
	p.Printf("  Operations:      %d (%.0f/s)\n", r.Ops, r.OpsPerSecond)
	p.Printf("  Allocations:     %d\n", r.Allocs)
	p.Printf("  Reallocations:   %d\n", r.Reallocs)
	p.Printf("  Frees:           %d\n", r.Frees)
	p.Printf("  Failed:          %d\n", r.FailedAllocs)
	p.Printf("  Bytes requested: %d\n", r.BytesRequested)
	if r.Checked {
		p.Printf("  Live after drain: %d blocks, %d bytes\n", r.LiveBlocks, r.LiveBytes)
	}
	if r.Backend != nil {
		p.Printf("\nBackend:\n")
		p.Printf("  Slabs reserved:  %d (%d bytes)\n", r.Backend.SlabCount, r.Backend.SlabBytes)
		p.Printf("  Recycled blocks: %d\n", r.Backend.Recycled)
		p.Printf("  Large mappings:  %d live (%d bytes)\n", r.Backend.LargeMaps, r.Backend.LargeBytes)
		p.Printf("  Carve waste:     %d bytes\n", r.Backend.CarveWaste)
	}
}

// statsHandler serves a point-in-time JSON snapshot of the run.
func statsHandler(counters *churnCounters, counter *mem.CountingBackend, base mem.Backend) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if !ctx.IsGet() {
			ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
			return
		}
		body, err := json.Marshal(liveSnapshot(counters, counter, base))
		if err != nil {
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			return
		}
		ctx.SetContentType("application/json")
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBody(body)
	}
}

func liveSnapshot(counters *churnCounters, counter *mem.CountingBackend, base mem.Backend) map[string]interface{} {
	snap := map[string]interface{}{
		"allocs":   counters.allocs.Load(),
		"reallocs": counters.reallocs.Load(),
		"frees":    counters.frees.Load(),
		"failed":   counters.failed.Load(),
		"bytes":    counters.bytes.Load(),
	}
	if counter != nil {
		snap["liveBlocks"] = counter.LiveBlocks()
		snap["liveBytes"] = counter.LiveBytes()
	}
	if sr, ok := base.(mem.StatsReader); ok {
		snap["backend"] = sr.Stats()
	}
	return snap
}
