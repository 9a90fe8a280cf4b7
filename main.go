package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fmash16/riscv-emulator/api"
	"github.com/fmash16/riscv-emulator/config"
	"github.com/fmash16/riscv-emulator/cpu"
	"github.com/fmash16/riscv-emulator/debugger"
	"github.com/fmash16/riscv-emulator/dram"
	"github.com/fmash16/riscv-emulator/loader"
	"github.com/fmash16/riscv-emulator/machine"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"     // Version number (set by git tag at build time)
	Commit  = "unknown" // Git commit hash
	Date    = "unknown" // Build date
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		debugMode   = flag.Bool("debug", false, "Start in debugger mode")
		tuiMode     = flag.Bool("tui", false, "Use TUI (Text User Interface) debugger")
		apiServer   = flag.Bool("api-server", false, "Start HTTP API server mode")
		listenAddr  = flag.String("listen", cfg.API.ListenAddr, "API server listen address (used with -api-server)")
		maxCycles   = flag.Uint64("max-cycles", cfg.Execution.MaxCycles, "Maximum CPU cycles before halt (0 = unbounded)")
		dramSize    = flag.Uint64("dram-size", cfg.Execution.DRAMSize, "DRAM size in bytes")
		verboseMode = flag.Bool("verbose", false, "Verbose output")

		enableTrace = flag.Bool("trace", cfg.Execution.EnableTrace, "Enable per-step execution trace")
		traceColor  = flag.Bool("trace-color", cfg.Display.ColorOutput, "Colorize execution trace output")
		traceFile   = flag.String("trace-file", "", "Trace output file (default: stdout)")

		enableStats = flag.Bool("stats", cfg.Execution.EnableStats, "Enable instruction/branch statistics")
		statsFile   = flag.String("stats-file", "", "Statistics output file (default: stats.<format> in log dir)")
		statsFormat = flag.String("stats-format", cfg.Statistics.Format, "Statistics format (json, csv)")

		enableCoverage = flag.Bool("coverage", false, "Enable PC coverage tracking")
		coverageFile   = flag.String("coverage-file", "", "Coverage output file (default: coverage.<format> in log dir)")
		coverageFormat = flag.String("coverage-format", "text", "Coverage format (text, json)")

		enableRegTrace = flag.Bool("register-trace", cfg.Execution.EnableRegTrace, "Enable register write trace")
		regTraceFile   = flag.String("register-trace-file", "", "Register trace output file (default: register_trace.txt in log dir)")
		regTraceFormat = flag.String("register-trace-format", "text", "Register trace format (text, json)")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("RV64I Emulator %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	if *showHelp {
		printHelp(cfg)
		os.Exit(0)
	}

	if *apiServer {
		runAPIServer(*listenAddr)
		return
	}

	if flag.NArg() == 0 {
		printHelp(cfg)
		os.Exit(0)
	}

	imagePath := flag.Arg(0)
	if _, err := os.Stat(imagePath); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: file not found: %s\n", imagePath)
		os.Exit(1)
	}

	if *dramSize == 0 {
		*dramSize = dram.Size
	}

	m := machine.New(*dramSize)
	if err := loader.LoadFile(m, imagePath); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading image: %v\n", err)
		os.Exit(1)
	}

	if *verboseMode {
		fmt.Printf("Loaded image: %s\n", imagePath)
		fmt.Printf("DRAM: 0x%016x - 0x%016x (%d bytes)\n", dram.Base, dram.Base+*dramSize, *dramSize)
		fmt.Printf("Entry: 0x%016x\n", m.CPU.PC)
	}

	if *debugMode || *tuiMode {
		dbg := debugger.NewDebugger(m)

		if *tuiMode {
			if err := debugger.RunTUI(dbg); err != nil {
				fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
				os.Exit(1)
			}
		} else {
			fmt.Println("RV64I Debugger - Type 'help' for commands")
			fmt.Printf("Image loaded: %s\n", imagePath)
			fmt.Println()

			if err := debugger.RunCLI(dbg); err != nil {
				fmt.Fprintf(os.Stderr, "Debugger error: %v\n", err)
				os.Exit(1)
			}
		}
		return
	}

	runDirect(m, directModeOptions{
		maxCycles: *maxCycles,
		verbose:   *verboseMode,

		enableTrace: *enableTrace,
		traceColor:  *traceColor,
		traceFile:   *traceFile,

		enableStats: *enableStats,
		statsFile:   *statsFile,
		statsFormat: *statsFormat,

		enableCoverage: *enableCoverage,
		coverageFile:   *coverageFile,
		coverageFormat: *coverageFormat,

		enableRegTrace: *enableRegTrace,
		regTraceFile:   *regTraceFile,
		regTraceFormat: *regTraceFormat,
	})
}

type directModeOptions struct {
	maxCycles uint64
	verbose   bool

	enableTrace bool
	traceColor  bool
	traceFile   string

	enableStats bool
	statsFile   string
	statsFormat string

	enableCoverage bool
	coverageFile   string
	coverageFormat string

	enableRegTrace bool
	regTraceFile   string
	regTraceFormat string
}

// runDirect executes m to halt or a fatal error, wiring up whichever
// instrumentation opts were requested, then prints the final register dump.
func runDirect(m *machine.Machine, opts directModeOptions) {
	var trace *machine.Trace
	if opts.enableTrace {
		w, closeFn := openOutput(opts.traceFile, os.Stdout)
		defer closeFn()
		trace = machine.NewTrace(w)
		trace.Color = opts.traceColor
	}

	var stats *machine.Statistics
	if opts.enableStats {
		stats = machine.NewStatistics()
	}

	var coverage *machine.Coverage
	if opts.enableCoverage {
		coverage = machine.NewCoverage()
	}

	var regTrace *machine.RegisterTrace
	if opts.enableRegTrace {
		regTrace = machine.NewRegisterTrace(nil, m)
	}

	if opts.verbose {
		fmt.Println("Starting execution...")
		fmt.Println("----------------------------------------")
	}

	runErr := m.Run(opts.maxCycles, func(r machine.StepResult) {
		if trace != nil {
			trace.Record(r)
		}
		if stats != nil {
			stats.Record(r, m.CPU.PC != r.PC+4)
		}
		if coverage != nil {
			coverage.Record(r)
		}
		if regTrace != nil {
			regTrace.Observe(m, r)
		}
	})

	if opts.verbose {
		fmt.Println("----------------------------------------")
		fmt.Printf("Execution complete (%d cycles)\n\n", m.Cycles)
	}

	if runErr != nil && !errors.Is(runErr, machine.ErrHalt) {
		fmt.Fprintf(os.Stderr, "Runtime error at pc=0x%016x: %v\n", m.CPU.PC, runErr)
		dumpRegisters(os.Stdout, m)
		os.Exit(1)
	}

	dumpRegisters(os.Stdout, m)

	if stats != nil {
		flushReport(opts.statsFile, "stats", opts.statsFormat, func(w *os.File) error {
			if opts.statsFormat == "csv" {
				return stats.WriteCSV(w)
			}
			return stats.WriteJSON(w)
		})
	}

	if coverage != nil {
		flushReport(opts.coverageFile, "coverage", opts.coverageFormat, func(w *os.File) error {
			if opts.coverageFormat == "json" {
				return coverage.WriteJSON(w)
			}
			return coverage.WriteText(w)
		})
	}

	if regTrace != nil {
		flushReport(opts.regTraceFile, "register_trace", opts.regTraceFormat, func(w *os.File) error {
			if opts.regTraceFormat == "json" {
				return regTrace.WriteJSON(w)
			}
			return regTrace.WriteText(w)
		})
	}
}

// openOutput opens path for writing, falling back to fallback when path is
// empty. The returned close func is always safe to defer.
func openOutput(path string, fallback *os.File) (*os.File, func()) {
	if path == "" {
		return fallback, func() {}
	}
	f, err := os.Create(path) // #nosec G304 -- user-specified trace output path
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", path, err)
		return fallback, func() {}
	}
	return f, func() {
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close %s: %v\n", path, err)
		}
	}
}

// flushReport writes a report via write to path, defaulting to
// "<name>.<format>" under the configured log directory when path is empty.
func flushReport(path, name, format string, write func(*os.File) error) {
	if path == "" {
		path = filepath.Join(config.GetLogPath(), name+"."+reportExtension(format))
	}
	f, err := os.Create(path) // #nosec G304 -- user-specified report output path
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", path, err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close %s: %v\n", path, err)
		}
	}()
	if err := write(f); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
	}
}

func reportExtension(format string) string {
	switch format {
	case "csv":
		return "csv"
	case "json":
		return "json"
	default:
		return "txt"
	}
}

// dumpRegisters prints the register dump format spec.md §6 describes: 32
// GPRs labelled with their ABI names, four per row, each a hex 64-bit
// value, followed by the program counter.
func dumpRegisters(w *os.File, m *machine.Machine) {
	fmt.Fprintln(w)
	for row := 0; row < cpu.NumRegisters/4; row++ {
		for col := 0; col < 4; col++ {
			reg := row*4 + col
			fmt.Fprintf(w, "x%-2d/%-3s: 0x%016x  ", reg, cpu.ABINames[reg], m.CPU.Get(uint64(reg)))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "pc: 0x%016x\n", m.CPU.PC)
}

// runAPIServer starts the HTTP/WebSocket API server and blocks until it
// receives a shutdown signal.
func runAPIServer(addr string) {
	server := api.NewServer(addr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var shutdownOnce sync.Once
	performShutdown := func() {
		shutdownOnce.Do(func() {
			fmt.Println("\nShutting down API server...")

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
				os.Exit(1)
			}

			fmt.Println("API server stopped")
			os.Exit(0)
		})
	}

	monitor := api.NewProcessMonitor(performShutdown)
	monitor.Start()

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "API server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-sigChan
	performShutdown()
}

func printHelp(cfg *config.Config) {
	fmt.Printf(`RV64I Emulator %s

Usage: riscv-emulator [options] <image-file>
       riscv-emulator -api-server [-listen addr]

Options:
  -help                   Show this help message
  -version                Show version information
  -api-server             Start HTTP API server mode (no image file required)
  -listen ADDR            API server listen address (default: %s)
  -debug                  Start in debugger mode (CLI)
  -tui                    Start in TUI debugger mode
  -max-cycles N           Set maximum CPU cycles, 0 = unbounded (default: %d)
  -dram-size N            Set DRAM size in bytes (default: %d)
  -verbose                Enable verbose output

Tracing & Statistics:
  -trace                  Enable per-step execution trace
  -trace-color            Colorize execution trace output
  -trace-file FILE        Trace output file (default: stdout)
  -stats                  Enable instruction/branch statistics
  -stats-file FILE        Statistics output file (default: stats.<format>)
  -stats-format FMT       Statistics format: json, csv (default: json)
  -coverage               Enable PC coverage tracking
  -coverage-file FILE     Coverage output file (default: coverage.<format>)
  -coverage-format FMT    Coverage format: text, json (default: text)
  -register-trace         Enable register write trace
  -register-trace-file F  Register trace output file (default: register_trace.<format>)
  -register-trace-format  Register trace format: text, json (default: text)

Examples:
  # Run a flat binary image directly
  riscv-emulator program.bin

  # Run with the CLI debugger
  riscv-emulator -debug program.bin

  # Run with the TUI debugger
  riscv-emulator -tui program.bin

  # Run with an execution trace to stdout
  riscv-emulator -trace -verbose program.bin

  # Start the HTTP API server for a front-end client
  riscv-emulator -api-server
  riscv-emulator -api-server -listen 127.0.0.1:3000

Debugger Commands (when in -debug mode):
  run, r             Start/restart execution
  continue, c        Continue execution
  step, s            Execute single instruction
  break ADDR         Set breakpoint at address
  info registers     Show all registers
  print TARGET       Print a register, csrN, or *address
  help               Show debugger help

`, Version, cfg.API.ListenAddr, cfg.Execution.MaxCycles, dram.Size)
}
