// Package textproto drives an engine over a line-oriented text protocol, for
// scripting and terminal play.
//
// Each input line is one command; each command answers with zero or more
// data lines followed by "ok" or "error <message>". A command that ends the
// game also prints "gameover <winner>" before its "ok".
package textproto

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hailam/rankwar/internal/board"
	"github.com/hailam/rankwar/internal/engine"
)

// Protocol reads commands and applies them to one engine.
type Protocol struct {
	engine *engine.Engine
	log    *zap.SugaredLogger
	out    *bufio.Writer

	// winner is set by the game-over listener and flushed after the command.
	winner board.Color
}

// New creates a protocol handler for eng. Replies are discarded until Run
// or SetOutput provides a writer.
func New(eng *engine.Engine, log *zap.SugaredLogger) *Protocol {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	p := &Protocol{engine: eng, log: log, out: bufio.NewWriter(io.Discard), winner: board.NoColor}
	eng.Subscribe(func(ev engine.Event) {
		if ev.Kind == engine.EventGameOver {
			p.winner = ev.Winner
		}
	})
	return p
}

// SetOutput directs replies to w. Callers of Execute must Flush.
func (p *Protocol) SetOutput(w io.Writer) {
	p.out = bufio.NewWriter(w)
}

// Flush writes any buffered replies.
func (p *Protocol) Flush() error {
	return p.out.Flush()
}

// Run processes commands from r until "quit", end of input or ctx is done.
func (p *Protocol) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	p.SetOutput(w)
	defer p.out.Flush()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if quit := p.Execute(line); quit {
				return nil
			}
			if err := p.out.Flush(); err != nil {
				return err
			}
		}
	}
}

// Execute runs one command line and reports whether it was "quit".
func (p *Protocol) Execute(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return false
	}

	parts := strings.Fields(line)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	var err error
	switch cmd {
	case "new":
		p.engine.Reset()
	case "click":
		err = p.handleClick(args)
	case "mode":
		err = p.handleMode(args)
	case "end":
		p.engine.OnEndTurn()
	case "d":
		p.handleDisplay()
	case "state":
		err = p.handleState()
	case "buttons":
		p.handleButtons()
	case "targets":
		p.handleTargets()
	case "layout":
		p.println("layout", p.engine.Layout())
	case "message":
		p.println("message", p.engine.Message())
	case "setup":
		err = p.handleSetup(args)
	case "help":
		p.handleHelp()
	case "quit":
		return true
	default:
		err = fmt.Errorf("unknown command %q", cmd)
		p.log.Warnw("unknown command", "line", line)
	}

	if p.winner != board.NoColor {
		p.println("gameover", strings.ToLower(p.winner.String()))
		p.winner = board.NoColor
	}
	if err != nil {
		p.println("error", engine.Describe(err))
		return false
	}
	p.println("ok")
	return false
}

func (p *Protocol) println(a ...any) {
	fmt.Fprintln(p.out, a...)
}

// handleClick parses "click <x> <y>".
func (p *Protocol) handleClick(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: click <x> <y>")
	}
	x, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("bad x %q", args[0])
	}
	y, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("bad y %q", args[1])
	}
	return p.engine.OnCellClicked(x, y)
}

// handleMode parses "mode <move|promote|attack|demote>".
func (p *Protocol) handleMode(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: mode <move|promote|attack|demote>")
	}
	m, err := engine.ParseMode(args[0])
	if err != nil {
		return err
	}
	return p.engine.OnModeSelected(m)
}

// handleSetup parses "setup <layout> [red|blue] [moves]".
func (p *Protocol) handleSetup(args []string) error {
	if len(args) < 1 || len(args) > 3 {
		return fmt.Errorf("usage: setup <layout> [red|blue] [moves]")
	}
	b, err := board.ParseLayout(args[0])
	if err != nil {
		return err
	}
	player := board.Red
	if len(args) > 1 {
		if player, err = board.ParseColor(args[1]); err != nil {
			return err
		}
	}
	moves := engine.MovesPerTurn
	if len(args) > 2 {
		if moves, err = strconv.Atoi(args[2]); err != nil {
			return fmt.Errorf("bad moves %q", args[2])
		}
	}
	return p.engine.Setup(b, player, moves)
}

// handleDisplay prints the board and the turn summary.
func (p *Protocol) handleDisplay() {
	fmt.Fprint(p.out, p.engine.Board().String())
	ts := p.engine.TurnState()
	sel := "-"
	if ts.Selected != nil {
		sel = ts.Selected.String()
	}
	p.println("turn", ts.Turn, "player", strings.ToLower(ts.CurrentPlayer.String()),
		"moves", ts.MovesLeft, "mode", ts.Mode, "selected", sel)
}

func (p *Protocol) handleState() error {
	data, err := json.Marshal(p.engine.Snapshot())
	if err != nil {
		return err
	}
	p.println(string(data))
	return nil
}

func (p *Protocol) handleButtons() {
	bv := p.engine.ButtonVisibility()
	fmt.Fprintf(p.out, "buttons promote=%t attack=%t demote=%t\n",
		bv.PromoteAvailable, bv.AttackAvailable, bv.DemoteAvailable)
}

func (p *Protocol) handleTargets() {
	ts := p.engine.TurnState()
	var sb strings.Builder
	sb.WriteString("targets")
	for _, c := range ts.LegalTargets {
		sb.WriteByte(' ')
		sb.WriteString(c.String())
	}
	p.println(sb.String())
}

func (p *Protocol) handleHelp() {
	p.println("commands: new | click <x> <y> | mode <move|promote|attack|demote> | end |")
	p.println("          d | state | buttons | targets | layout | message |")
	p.println("          setup <layout> [red|blue] [moves] | quit")
}
