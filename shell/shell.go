// Package shell is the interactive front end to the solvers.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/bullseye/board"
	"github.com/domino14/bullseye/config"
	"github.com/domino14/bullseye/distribution"
	"github.com/domino14/bullseye/game"
	"github.com/domino14/bullseye/metrics"
	"github.com/domino14/bullseye/montecarlo"
	"github.com/domino14/bullseye/random"
	"github.com/domino14/bullseye/solver"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errSimming           = errors.New("a simulation is running, please do a `sim stop` first")
)

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

type ShellController struct {
	l          *readline.Instance
	out        io.Writer
	config     *config.Config
	execPath   string
	gitVersion string

	metrics *metrics.Recorder
	stream  *random.Stream

	def       board.Definition
	normal    *distribution.Normal
	game      *game.Game
	minThrows *solver.MinThrows
	maxPoints *solver.MaxPoints
	heatMaps  map[heatMapKey]*solver.HeatMap

	simmer    *montecarlo.Simulator
	simCancel context.CancelFunc
	simDone   chan struct{}
	simMu     sync.Mutex
	lastSim   *montecarlo.Summary
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func NewShellController(cfg *config.Config, execPath, gitVersion string) (*ShellController, error) {
	sc, err := newShellController(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}
	sc.execPath = execPath
	sc.gitVersion = gitVersion

	history := cfg.GetString(config.ConfigHistoryFile)
	if history == "" {
		history = "/tmp/dartsolver-readline.tmp"
	}
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mdarts>\033[0m ",
		HistoryFile:     history,
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
		AutoComplete:        NewShellCompleter(sc),
	})
	if err != nil {
		return nil, err
	}
	sc.l = l
	sc.out = l.Stderr()
	return sc, nil
}

// newShellController builds everything but the line reader.
func newShellController(cfg *config.Config, out io.Writer) (*ShellController, error) {
	sc := &ShellController{
		out:     out,
		config:  cfg,
		metrics: metrics.NewRecorder(),
		stream:  cfg.Stream(),
	}
	def, err := cfg.Board()
	if err != nil {
		return nil, err
	}
	sc.def = def
	if err := sc.resetNormal(); err != nil {
		return nil, err
	}
	if err := sc.rebuild(); err != nil {
		return nil, err
	}
	return sc, nil
}

// resetNormal replaces the landing model with the configured one,
// dropping any observed points.
func (sc *ShellController) resetNormal() error {
	n, err := distribution.NewNormal(sc.config.Mean(), sc.config.Covariance(),
		distribution.WithStream(sc.stream))
	if err != nil {
		return err
	}
	sc.normal = n
	return nil
}

// rebuild recreates the game, its caches and every solver from the current
// board, landing model and settings.
func (sc *ShellController) rebuild() error {
	if sc.simRunning() {
		return errSimming
	}
	method, err := sc.config.Integration()
	if err != nil {
		return err
	}
	dist, err := config.WrapNormal(sc.normal, method, sc.config.GetInt(config.ConfigMCSamples))
	if err != nil {
		return err
	}
	g, err := sc.config.Game(sc.def, dist, sc.metrics)
	if err != nil {
		return err
	}
	opts, err := sc.config.SolverOptions(sc.stream, sc.metrics)
	if err != nil {
		return err
	}
	mt, err := solver.NewMinThrows(g, opts...)
	if err != nil {
		return err
	}
	mp, err := solver.NewMaxPoints(g, opts...)
	if err != nil {
		return err
	}
	sim, err := montecarlo.NewSimulator(g, mt)
	if err != nil {
		return err
	}
	sim.SetMetrics(sc.metrics)
	sim.SetMaxThrows(sc.config.GetInt(config.ConfigSimMaxThrows))
	if t := sc.config.GetInt(config.ConfigThreads); t > 0 {
		sim.SetThreads(t)
	}

	sc.game, sc.minThrows, sc.maxPoints, sc.simmer = g, mt, mp, sim
	sc.heatMaps = make(map[heatMapKey]*solver.HeatMap)
	log.Debug().Str("board", sc.def.Name).Str("rules", g.Rules().Name()).
		Str("integration", method).Msg("rebuilt-game")
	return nil
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := CmdOptions{}
	// handle options

	lastWasOption := false
	lastOption := ""
	for idx := 1; idx < len(fields); idx++ {
		f := fields[idx]
		// negative numbers are arguments, not options
		if strings.HasPrefix(f, "-") && !isNumber(f) {
			if lastWasOption {
				return nil, errWrongOptionSyntax
			}
			lastWasOption = true
			lastOption = f[1:]
			continue
		}
		if lastWasOption {
			lastWasOption = false
			options[lastOption] = append(options[lastOption], f)
		} else {
			args = append(args, f)
		}
	}
	if lastWasOption {
		return nil, errWrongOptionSyntax
	}
	return &shellcmd{
		cmd:     cmd,
		args:    args,
		options: options,
	}, nil
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func (sc *ShellController) standardModeSwitch(line string) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "exit":
		// the loop handles exit itself; a single command just returns
		return nil, nil
	case "help":
		return sc.help(cmd)
	case "board":
		return sc.board(cmd)
	case "rules":
		return sc.rules(cmd)
	case "dist":
		return sc.dist(cmd)
	case "solve":
		return sc.solve(cmd)
	case "aim":
		return sc.aim(cmd)
	case "maxpoints":
		return sc.maxpoints(cmd)
	case "heatmap":
		return sc.heatmap(cmd)
	case "sim":
		return sc.sim(cmd)
	case "export":
		return sc.export(cmd)
	case "metrics":
		return sc.showMetrics(cmd)
	case "set":
		return sc.set(cmd)
	default:
		msg := fmt.Sprintf("command %v not found", strconv.Quote(cmd.cmd))
		log.Info().Msg(msg)
		return nil, errors.New(msg)
	}
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" {
			sig <- syscall.SIGINT
			break
		}
		resp, err := sc.standardModeSwitch(line)
		if err != nil {
			sc.showError(err)
		} else if resp != nil {
			sc.showMessage(resp.message)
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}

// Execute runs a single command line and waits for any simulation it
// started to finish.
func (sc *ShellController) Execute(line string) {
	resp, err := sc.standardModeSwitch(strings.TrimSpace(line))
	if err != nil {
		sc.showError(err)
		return
	}
	if resp != nil {
		sc.showMessage(resp.message)
	}
	sc.waitForSim()
}

func (sc *ShellController) Cleanup() {
	sc.simMu.Lock()
	cancel := sc.simCancel
	sc.simMu.Unlock()
	if cancel != nil {
		cancel()
	}
	sc.waitForSim()
	log.Info().Msg("shell cleaned up")
}
