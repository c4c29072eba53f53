package terminal

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog"
)

// TerminalService manages terminal lifecycle and input polling
type TerminalService struct {
	term    Terminal
	eventCh chan Event
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool
	log     zerolog.Logger
}

// NewService creates a new terminal service
func NewService() *TerminalService {
	return &TerminalService{
		eventCh: make(chan Event, 256),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
		log:     zerolog.Nop(),
	}
}

// SetLogger installs a logger; Init uses it to log the detected color
// capability. Crash handlers write to stderr directly.
func (s *TerminalService) SetLogger(log zerolog.Logger) {
	s.log = log.With().Str("component", "terminal").Logger()
}

// Init brings up the local terminal: enters raw mode, detects color
// capability (logged only; conhostd always renders truecolor), and
// prepares the input reader.
func (s *TerminalService) Init() error {
	s.log.Debug().Str("color_mode", DetectColorMode().String()).Msg("detected terminal color capability")

	s.term = New()
	if err := s.term.Init(); err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}

	return nil
}

// Start launches the input polling goroutine
func (s *TerminalService) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	go s.pollLoop()
	return nil
}

// pollLoop reads input events until stop signal
func (s *TerminalService) pollLoop() {
	defer close(s.doneCh)

	defer func() {
		if r := recover(); r != nil {
			EmergencyReset(os.Stdout)
			os.Stdout.Sync()
			os.Stderr.Sync()
			fmt.Fprintf(os.Stderr, "\r\n\x1b[31mTERMINAL POLL CRASHED: %v\x1b[0m\r\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
			os.Stderr.Sync()
			os.Exit(1)
		}
	}()

	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		ev := s.term.PollEvent()
		if ev.Type == EventClosed || ev.Type == EventError {
			return
		}

		select {
		case s.eventCh <- ev:
		case <-s.stopCh:
			return
		}
	}
}

// Stop signals the poll loop to stop and restores the terminal
func (s *TerminalService) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)

	// Post synthetic close event to unblock PollEvent
	if s.term != nil {
		s.term.PostEvent(Event{Type: EventClosed})
	}

	<-s.doneCh

	if s.term != nil {
		s.term.Fini()
	}
	return nil
}

// Terminal returns the wrapped terminal instance
func (s *TerminalService) Terminal() Terminal {
	return s.term
}

// Events returns the input event channel
func (s *TerminalService) Events() <-chan Event {
	return s.eventCh
}
