// Package sequencer orchestrates the multi-size benchmark run: free-space
// validation, writable-directory probing, the ordered write/read phases, and
// publication of RunState to the presentation layer.
package sequencer

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/jamesprial/drivebench-mcp/internal/bench"
	"github.com/jamesprial/drivebench-mcp/internal/probe"
)

// ErrRunActive is returned by Run while a previous run has not yet reached a
// terminal state.
var ErrRunActive = errors.New("a benchmark run is already active")

const (
	statusProbing   = "Locating writable directory..."
	statusCancelled = "Benchmark cancelled"
	statusComplete  = "Benchmark complete"
)

// Compile-time interface check.
var _ RunController = (*Sequencer)(nil)

// RunController is the narrow contract the tool surface consumes: start a
// run, request cancellation, observe published state.
type RunController interface {
	Run(mountPath string, availableBytes uint64) error
	Cancel()
	Snapshot() RunState
}

// Sequencer runs the configured size table against one volume at a time.
// All RunState mutations flow through a single ordered update channel applied
// by one goroutine, so observers never see updates reordered within a run.
type Sequencer struct {
	sizes        []SizeSpec
	safetyBuffer uint64
	prober       probe.Prober
	runner       bench.Runner

	tok     bench.Token
	running atomic.Bool

	updates chan RunState

	mu    sync.RWMutex
	state RunState
}

// New returns a Sequencer using the given size table and safety buffer.
// A nil or empty sizes slice selects DefaultSizes; a zero safetyBuffer
// selects DefaultSafetyBuffer.
func New(sizes []SizeSpec, safetyBuffer uint64, prober probe.Prober, runner bench.Runner) *Sequencer {
	if prober == nil {
		panic("prober must not be nil")
	}
	if runner == nil {
		panic("runner must not be nil")
	}
	if len(sizes) == 0 {
		sizes = DefaultSizes()
	}
	if safetyBuffer == 0 {
		safetyBuffer = DefaultSafetyBuffer
	}

	s := &Sequencer{
		sizes:        sizes,
		safetyBuffer: safetyBuffer,
		prober:       prober,
		runner:       runner,
		updates:      make(chan RunState, 16),
	}
	go s.applyUpdates()
	return s
}

// applyUpdates is the single writer of s.state.
func (s *Sequencer) applyUpdates() {
	for st := range s.updates {
		s.mu.Lock()
		s.state = st
		s.mu.Unlock()
	}
}

// publish posts a complete RunState snapshot onto the ordered update channel.
func (s *Sequencer) publish(active bool, status string, result AggregateResult) {
	s.updates <- RunState{IsActive: active, StatusMessage: status, Result: result}
}

// Snapshot returns the most recently applied RunState.
func (s *Sequencer) Snapshot() RunState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// RequiredBytes is the free space a run needs: the largest configured size
// plus the safety buffer.
func (s *Sequencer) RequiredBytes() uint64 {
	return uint64(s.sizes[len(s.sizes)-1].SizeBytes) + s.safetyBuffer
}

// Run validates the free-space precondition synchronously, then hands the
// sequence off to a background worker and returns. Progress is observed via
// Snapshot, not a return value. Returns ErrRunActive if a run is in flight,
// or an *InsufficientSpaceError before any I/O is attempted.
func (s *Sequencer) Run(mountPath string, availableBytes uint64) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrRunActive
	}

	if required := s.RequiredBytes(); availableBytes < required {
		err := &InsufficientSpaceError{RequiredBytes: required, AvailableBytes: availableBytes}
		s.publish(false, "Insufficient space: required "+formatBytes(required)+", available "+formatBytes(availableBytes), nil)
		s.running.Store(false)
		return err
	}

	s.tok.Reset()
	s.publish(true, statusProbing, nil)
	go s.runSequence(mountPath)
	return nil
}

// Cancel requests cooperative cancellation of the in-flight run. Idempotent;
// a cancel with no active run is a no-op because the flag is reset at the
// start of the next run.
func (s *Sequencer) Cancel() {
	s.tok.Cancel()
}

// runSequence is the background worker for one run. It never touches s.state
// directly; every transition goes through publish.
func (s *Sequencer) runSequence(mountPath string) {
	defer s.running.Store(false)

	dir, ok := s.prober.FindWritableDir(mountPath)
	if !ok {
		s.publish(false, fmt.Sprintf("No writable location found on %s", mountPath), nil)
		return
	}

	results := make(AggregateResult, 0, len(s.sizes))
	for _, spec := range s.sizes {
		if s.tok.IsCancelled() {
			s.publish(false, statusCancelled, nil)
			return
		}

		path := filepath.Join(dir, "drivebench-"+uuid.NewString()+".dat")
		pass, err := s.runPhase(path, spec)
		if err != nil {
			if errors.Is(err, bench.ErrCancelled) {
				// Normal termination, never surfaced as an error.
				s.publish(false, statusCancelled, nil)
			} else {
				s.publish(false, fmt.Sprintf("Benchmark failed: %v", err), nil)
			}
			return
		}
		results = append(results, pass)
	}

	s.publish(false, statusComplete, results)
}

// runPhase executes the timed write and read passes for one configured size
// against a fresh file. The file is deleted on every exit path; a failed
// deletion is logged and swallowed since it cannot affect the measurement.
func (s *Sequencer) runPhase(path string, spec SizeSpec) (PassResult, error) {
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("could not remove benchmark file %s: %v", path, err)
		}
	}()

	s.publish(true, fmt.Sprintf("Running %s write test...", spec.Label), nil)
	writeMBps, err := s.runner.WriteFile(path, spec.SizeBytes, &s.tok)
	if err != nil {
		return PassResult{}, err
	}

	s.publish(true, fmt.Sprintf("Running %s read test...", spec.Label), nil)
	readMBps, err := s.runner.ReadFile(path, spec.SizeBytes, &s.tok)
	if err != nil {
		return PassResult{}, err
	}

	return PassResult{
		SizeLabel:      spec.Label,
		SizeBytes:      spec.SizeBytes,
		WriteSpeedMBps: writeMBps,
		ReadSpeedMBps:  readMBps,
	}, nil
}
