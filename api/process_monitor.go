package api

import (
	"log"
	"os"
	"sync"
	"time"
)

// ProcessMonitor watches the process that launched the API server and
// triggers shutdown if it exits without the server being told to stop —
// e.g. a test harness or CI job that spawns `riscv-emulator -api-server`
// as a subprocess and is killed before it can send SIGTERM. Without this,
// the server would keep running as an orphan reparented to PID 1.
type ProcessMonitor struct {
	parentPID     int
	checkInterval time.Duration
	shutdownFunc  func()
	stopChan      chan struct{}
	stopOnce      sync.Once
}

// NewProcessMonitor captures the current parent PID via os.Getppid() and
// returns a monitor that calls shutdownFunc once that PID changes.
func NewProcessMonitor(shutdownFunc func()) *ProcessMonitor {
	return &ProcessMonitor{
		parentPID:     os.Getppid(),
		checkInterval: 2 * time.Second,
		shutdownFunc:  shutdownFunc,
		stopChan:      make(chan struct{}),
	}
}

// Start launches the polling goroutine. The OS reparents an orphaned
// process (typically to PID 1) the moment its parent exits, so polling
// os.Getppid() is sufficient to detect the parent's death without a signal
// from it.
func (pm *ProcessMonitor) Start() {
	go pm.monitorLoop()
}

// Stop ends the polling goroutine without invoking shutdownFunc. Idempotent.
func (pm *ProcessMonitor) Stop() {
	pm.stopOnce.Do(func() {
		close(pm.stopChan)
	})
}

// monitorLoop runs in a goroutine and periodically checks if the parent process is still alive.
func (pm *ProcessMonitor) monitorLoop() {
	ticker := time.NewTicker(pm.checkInterval)
	defer ticker.Stop()

	log.Printf("process monitor watching parent PID %d, polling every %v", pm.parentPID, pm.checkInterval)

	for {
		select {
		case <-ticker.C:
			currentPPID := os.Getppid()
			if currentPPID != pm.parentPID {
				log.Printf("parent PID changed %d -> %d, launching process is gone: shutting down",
					pm.parentPID, currentPPID)
				pm.shutdownFunc()
				return
			}
		case <-pm.stopChan:
			log.Println("process monitor stopped")
			return
		}
	}
}
