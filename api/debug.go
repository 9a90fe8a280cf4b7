package api

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/fmash16/riscv-emulator/config"
)

// debugLogEnvVar opts into session-lifecycle logging (session create/
// destroy, run-to-completion). Unset by default since a session churns
// through many short-lived HTTP requests and this would otherwise log on
// every one of them.
const debugLogEnvVar = "RISCV_EMULATOR_DEBUG"

var sessionLog *log.Logger

func init() {
	sessionLog = newSessionLogger()
}

// newSessionLogger returns a discarding logger unless debugLogEnvVar is
// set, in which case it opens a log file under the same directory the CLI's
// -trace/-stats/-coverage flags write to (config.GetLogPath), rather than a
// one-off path under os.TempDir — every other diagnostic output this
// project produces lands in that directory.
func newSessionLogger() *log.Logger {
	if os.Getenv(debugLogEnvVar) == "" {
		return log.New(io.Discard, "", 0)
	}

	logPath := filepath.Join(config.GetLogPath(), "api-session.log")
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600) // #nosec G304 -- fixed filename under the configured log directory
	if err != nil {
		return log.New(os.Stderr, "api: ", log.Ltime|log.Lmicroseconds|log.Lshortfile)
	}
	// f is intentionally left open for the process lifetime; the OS
	// reclaims it on exit.
	return log.New(f, "api: ", log.Ltime|log.Lmicroseconds|log.Lshortfile)
}

// debugLog records a session lifecycle message when debugLogEnvVar is set.
func debugLog(format string, args ...interface{}) {
	sessionLog.Printf(format, args...)
}
