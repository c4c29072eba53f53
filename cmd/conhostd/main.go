// Command conhostd drives the console host core (pkg/conhost) against
// a real local terminal: it turns the terminal's raw key events into
// input events on one handle and repeatedly issues cooked line reads,
// echoing completed lines back to the screen.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/duskframe/conhost/internal/config"
	"github.com/duskframe/conhost/internal/dispatch"
	"github.com/duskframe/conhost/internal/handlearena"
	"github.com/duskframe/conhost/internal/inputevent"
	"github.com/duskframe/conhost/pkg/conhost"
	"github.com/duskframe/conhost/terminal"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var logLevel string

	cmd := &cobra.Command{
		Use:   "conhostd",
		Short: "interactive console host demo",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, logLevel)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to a conhost YAML config file")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "zerolog level: debug, info, warn, error")
	return cmd
}

func run(configPath, logLevel string) error {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("conhostd: %w", err)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Logger()

	cfg := config.Default()
	if configPath != "" {
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("conhostd: %w", err)
		}
	}

	svc := terminal.NewService()
	svc.SetLogger(log)
	if err := svc.Init(); err != nil {
		return fmt.Errorf("conhostd: starting terminal: %w", err)
	}
	if err := svc.Terminal().SetMouseMode(terminal.MouseModeClick); err != nil {
		return fmt.Errorf("conhostd: %w", err)
	}
	if err := svc.Start(); err != nil {
		return fmt.Errorf("conhostd: %w", err)
	}
	defer svc.Stop()

	width, height := svc.Terminal().Size()
	screen := terminal.NewScreenBridge(svc.Terminal(), width, height)

	core, err := conhost.New(cfg, screen, screen, log)
	if err != nil {
		return fmt.Errorf("conhostd: %w", err)
	}

	handle := core.CreateInputBuffer()
	if _, err := core.SetInputMode(handle, inputevent.ModeLineInput|inputevent.ModeEchoInput|inputevent.ModeProcessedInput); err != nil {
		return fmt.Errorf("conhostd: %w", err)
	}

	events := svc.Events()
	buf := &eventPump{core: core, handle: handle}
	go buf.run(events)

	log.Info().Msg("conhostd ready, type a line and press enter (ctrl-c to quit)")
	for {
		reply := core.ReadConsoleInput(dispatch.Request{
			HandleID:       handle,
			Capacity:       1024,
			ExecutableName: "conhostd",
			Unicode:        true,
		})
		switch reply.Status {
		case inputevent.StatusSuccess:
			log.Info().Str("line", string(reply.Content)).Msg("line read")
		case inputevent.StatusAlerted:
			log.Info().Msg("read alerted, exiting")
			return nil
		case inputevent.StatusThreadTerminating:
			return nil
		default:
			log.Warn().Uint8("status", uint8(reply.Status)).Msg("read failed")
			return nil
		}
	}
}

// eventPump forwards terminal events into the console core's input
// buffer, translating CTRL-C key events into a proper signal instead
// of a queued character (spec §4.B: CTRL-C is delivered out of band).
type eventPump struct {
	core   *conhost.Console
	handle handlearena.ID
}

func (p *eventPump) run(events <-chan terminal.Event) {
	scratch := inputevent.NewBuffer()
	for ev := range events {
		if ev.Type == terminal.EventKey && ev.Key == terminal.KeyCtrlC {
			p.core.SignalCtrlC(p.handle)
			continue
		}
		if ev.Type == terminal.EventClosed || ev.Type == terminal.EventError {
			p.core.CloseHandle(p.handle)
			return
		}

		scratch.Flush()
		terminal.TranslateEvent(ev, scratch)
		n := scratch.Len()
		if n == 0 {
			continue
		}
		drained := make([]inputevent.Event, n)
		scratch.ReadEvents(drained, false, false, false, false)
		p.core.AppendEvents(p.handle, drained...)
	}
}
