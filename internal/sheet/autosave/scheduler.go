// Package autosave turns a stream of edit notifications into debounced save
// calls. Each edit restarts a quiet-period timer; only when the sheet has
// been left alone for the full debounce window does a save run, using the
// record state at that instant rather than the state when the timer was
// armed.
package autosave

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/arkhamdesk/sheetvault/internal/sheet/bus"
	"github.com/arkhamdesk/sheetvault/internal/sheet/domain"
	"go.uber.org/atomic"
)

// DefaultDebounce is the quiet period after the last edit before a save
// fires.
const DefaultDebounce = 500 * time.Millisecond

// State is the scheduler's lifecycle position.
type State int32

const (
	StateIdle State = iota
	StatePending
	StateSaving
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateSaving:
		return "saving"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Saver is the slice of the character service the scheduler needs.
type Saver interface {
	Save(ctx context.Context, rec domain.CharacterRecord) (string, error)
}

// Scheduler debounces edits into saves. It guarantees at most one save in
// flight: a debounce that fires mid-save queues exactly one follow-up, which
// runs with a fresh snapshot once the in-flight save resolves.
type Scheduler struct {
	Debounce time.Duration
	Snapshot func() domain.CharacterRecord
	Saver    Saver
	Bus      *bus.Bus
	Logger   *slog.Logger

	state atomic.Int32

	mu     sync.Mutex // guards timer and queued
	timer  *time.Timer
	queued bool

	saveMu sync.Mutex     // serializes saves; at most one writer per record
	wg     sync.WaitGroup // tracks the in-flight save
}

// New wires a scheduler. Snapshot must return a copy of the current
// in-memory record; it is called at save time, never at edit time.
func New(saver Saver, snapshot func() domain.CharacterRecord, b *bus.Bus, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		Debounce: DefaultDebounce,
		Snapshot: snapshot,
		Saver:    saver,
		Bus:      b,
		Logger:   logger,
	}
}

// State reports the current lifecycle state.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Notify records a qualifying edit. The debounce timer restarts; a timer
// superseded here never fires a save.
func (s *Scheduler) Notify() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.Debounce, s.fire)

	if State(s.state.Load()) != StateSaving {
		s.state.Store(int32(StatePending))
	}
}

// Stop cancels any armed timer without saving. An in-flight save is not
// interrupted; its result will still be reported on the bus.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if State(s.state.Load()) == StatePending {
		s.state.Store(int32(StateIdle))
	}
}

// Flush forces pending work through immediately: an armed timer is cancelled
// and its save runs now; an in-flight save is waited for. Used when the edit
// session ends.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	hadTimer := s.timer != nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	saving := State(s.state.Load()) == StateSaving
	if hadTimer && saving {
		s.queued = true
	}
	s.mu.Unlock()

	if hadTimer && !saving {
		s.runSave()
	}
	s.wg.Wait()
}

// fire runs on timer expiry.
func (s *Scheduler) fire() {
	s.mu.Lock()
	s.timer = nil
	if State(s.state.Load()) == StateSaving {
		// A save is still resolving; queue exactly one follow-up behind it.
		s.queued = true
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.runSave()
}

// runSave performs the save, plus one queued follow-up per completed save if
// edits kept arriving. Snapshots are taken per attempt so the follow-up
// persists the latest state.
func (s *Scheduler) runSave() {
	s.wg.Add(1)
	defer s.wg.Done()

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.state.Store(int32(StateSaving))
	ctx := context.Background()

	for {
		rec := s.Snapshot()
		s.Bus.Emit(bus.EventSaveStart, rec.ID)

		id, err := s.Saver.Save(ctx, rec)
		if err != nil {
			s.logger().Warn("autosave failed", slog.Any("error", err))
			s.Bus.Emit(bus.EventSaveError, err)
		} else {
			s.Bus.Emit(bus.EventSaveSuccess, id)
		}

		s.mu.Lock()
		if s.queued {
			s.queued = false
			s.mu.Unlock()
			continue
		}

		switch {
		case s.timer != nil:
			// Edits arrived during the save; the new timer owns the next one.
			s.state.Store(int32(StatePending))
		case err != nil:
			s.state.Store(int32(StateError))
		default:
			s.state.Store(int32(StateIdle))
		}
		s.mu.Unlock()
		return
	}
}

func (s *Scheduler) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
