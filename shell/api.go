package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/domino14/bullseye/board"
	"github.com/domino14/bullseye/config"
	"github.com/domino14/bullseye/distribution"
	"github.com/domino14/bullseye/game"
	"github.com/domino14/bullseye/geometry"
	"github.com/domino14/bullseye/random"
	"github.com/domino14/bullseye/solver"
)

type Response struct {
	message string
}

type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) Int(key string) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return 0, errors.New(key + " not found in options")
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) Bool(key string) bool {
	v := c[key]
	if len(v) == 0 {
		return false
	}
	return strings.ToLower(v[0]) == "true"
}

func (c CmdOptions) StringArray(key string) []string {
	return c[key]
}

func msg(message string) *Response {
	return &Response{message: message}
}

func parseState(s string) (game.State, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad state %q: %w", s, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("state must not be negative, got %d", v)
	}
	return game.State(v), nil
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q: %w", a, err)
		}
		out[i] = f
	}
	return out, nil
}

// solverNamed picks the min-throws solver unless the name says otherwise.
func (sc *ShellController) solverNamed(name string) (solver.Solver, error) {
	switch name {
	case "", sc.minThrows.Name(), "minthrows":
		return sc.minThrows, nil
	case sc.maxPoints.Name(), "maxpoints":
		return sc.maxPoints, nil
	}
	return nil, fmt.Errorf("unknown solver %q; use min-throws or max-points", name)
}

func formatResult(st game.State, r solver.Result) string {
	if r.Score >= solver.InfiniteScore {
		return fmt.Sprintf("%6d %12s   %v", st, "unwinnable", r.Aim)
	}
	return fmt.Sprintf("%6d %12.5f   %v", st, r.Score, r.Aim)
}

func (sc *ShellController) describeBoard() string {
	ext := sc.def.Target().Extent()
	kinds := lo.CountValuesBy(sc.def.Beds, func(b board.BedSpec) game.HitKind { return b.Kind })
	return fmt.Sprintf("board %s: %d beds (%d normal, %d double, %d treble), extent %v to %v, rules %s",
		sc.def.Name, len(sc.def.Beds), kinds[game.Normal], kinds[game.Double], kinds[game.Treble],
		ext.Min, ext.Max, sc.game.Rules().Name())
}

func (sc *ShellController) board(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(sc.describeBoard()), nil
	}
	var def board.Definition
	var err error
	updates := map[string]any{}
	switch cmd.args[0] {
	case "standard":
		sub := board.DefaultSubdivisions
		if len(cmd.args) > 1 {
			if sub, err = strconv.Atoi(cmd.args[1]); err != nil {
				return nil, err
			}
		}
		if def, err = board.Standard(sub); err != nil {
			return nil, err
		}
		updates[config.ConfigBoardPath] = ""
		updates[config.ConfigBoardSubdivisions] = sub
	case "ring":
		segments := 16
		if len(cmd.args) > 1 {
			if segments, err = strconv.Atoi(cmd.args[1]); err != nil {
				return nil, err
			}
		}
		if segments < 3 {
			return nil, errors.New("a ring board needs at least 3 segments")
		}
		def = board.Ring(segments)
	case "save":
		if len(cmd.args) < 2 {
			return nil, errors.New("usage: board save <path>")
		}
		if err := board.SaveFile(cmd.args[1], sc.def); err != nil {
			return nil, err
		}
		return msg("saved " + sc.def.Name + " to " + cmd.args[1]), nil
	default:
		if def, err = board.LoadFile(cmd.args[0]); err != nil {
			return nil, err
		}
		updates[config.ConfigBoardPath] = cmd.args[0]
	}

	old := sc.def
	sc.def = def
	if err := sc.rebuild(); err != nil {
		sc.def = old
		return nil, err
	}
	for k, v := range updates {
		sc.config.Set(k, v)
	}
	return msg(sc.describeBoard()), nil
}

func (sc *ShellController) rules(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(sc.game.Rules().Name()), nil
	}
	if err := sc.applySetting(config.ConfigFinishRule, cmd.args[0]); err != nil {
		return nil, err
	}
	return msg("rules set to " + sc.game.Rules().Name()), nil
}

func (sc *ShellController) describeDist() string {
	method, _ := sc.config.Integration()
	var b strings.Builder
	fmt.Fprintf(&b, "%v\n", sc.normal)
	fmt.Fprintf(&b, "integration: %s", method)
	if method == config.IntegrationMonteCarlo {
		fmt.Fprintf(&b, " (%d samples)", sc.config.GetInt(config.ConfigMCSamples))
	}
	fmt.Fprintf(&b, "\nobserved points: %d", len(sc.normal.Points()))
	return b.String()
}

func (sc *ShellController) dist(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(sc.describeDist()), nil
	}
	vals, err := parseFloats(cmd.args[1:])
	if err != nil {
		return nil, err
	}
	switch cmd.args[0] {
	case "set":
		if len(vals) != 3 {
			return nil, errors.New("usage: dist set <sxx> <sxy> <syy>")
		}
		cov := distribution.Covariance{{vals[0], vals[1]}, {vals[1], vals[2]}}
		n, err := distribution.NewNormal(sc.normal.Mean(), cov, distribution.WithStream(sc.stream))
		if err != nil {
			return nil, err
		}
		if err := sc.swapNormal(n); err != nil {
			return nil, err
		}
		sc.config.Set(config.ConfigSigmaXX, vals[0])
		sc.config.Set(config.ConfigSigmaXY, vals[1])
		sc.config.Set(config.ConfigSigmaYY, vals[2])
	case "mean":
		if len(vals) != 2 {
			return nil, errors.New("usage: dist mean <x> <y>")
		}
		mean := geometry.Vec2{X: vals[0], Y: vals[1]}
		n, err := distribution.NewNormal(mean, sc.normal.Covariance(), distribution.WithStream(sc.stream))
		if err != nil {
			return nil, err
		}
		if err := sc.swapNormal(n); err != nil {
			return nil, err
		}
		sc.config.Set(config.ConfigMeanX, vals[0])
		sc.config.Set(config.ConfigMeanY, vals[1])
	case "add":
		if len(vals) != 2 {
			return nil, errors.New("usage: dist add <x> <y>")
		}
		if sc.simRunning() {
			return nil, errSimming
		}
		fitErr := sc.normal.AddPoint(geometry.Vec2{X: vals[0], Y: vals[1]})
		// the old caches were computed under the previous fit
		if err := sc.rebuild(); err != nil {
			return nil, err
		}
		if fitErr != nil {
			return msg(fmt.Sprintf("point kept, previous fit still in effect: %v\n%s",
				fitErr, sc.describeDist())), nil
		}
	case "reset":
		old := sc.normal
		if err := sc.resetNormal(); err != nil {
			return nil, err
		}
		if err := sc.rebuild(); err != nil {
			sc.normal = old
			return nil, err
		}
	default:
		return nil, errors.New("usage: dist [set <sxx> <sxy> <syy> | mean <x> <y> | add <x> <y> | reset]")
	}
	return msg(sc.describeDist()), nil
}

func (sc *ShellController) swapNormal(n *distribution.Normal) error {
	old := sc.normal
	sc.normal = n
	if err := sc.rebuild(); err != nil {
		sc.normal = old
		return err
	}
	return nil
}

func (sc *ShellController) solve(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) < 1 || len(cmd.args) > 2 {
		return nil, errors.New("usage: solve <state> [<end state>] [-solver min-throws|max-points]")
	}
	s, err := sc.solverNamed(cmd.options.String("solver"))
	if err != nil {
		return nil, err
	}
	from, err := parseState(cmd.args[0])
	if err != nil {
		return nil, err
	}
	to := from
	if len(cmd.args) == 2 {
		if to, err = parseState(cmd.args[1]); err != nil {
			return nil, err
		}
	}
	rows, err := solver.Table(context.Background(), s, from, to)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%6s %12s   %s\n", "state", "score", "aim")
	for _, r := range rows {
		b.WriteString(formatResult(r.State, r.Result))
		b.WriteString("\n")
	}
	return msg(strings.TrimRight(b.String(), "\n")), nil
}

func (sc *ShellController) maxpoints(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: maxpoints <state>")
	}
	st, err := parseState(cmd.args[0])
	if err != nil {
		return nil, err
	}
	r, err := sc.maxPoints.Solve(context.Background(), st)
	if err != nil {
		return nil, err
	}
	return msg(fmt.Sprintf("aim %v scores %.4f points on average", r.Aim, r.Score)), nil
}

// aim reports what a single aim point is worth from a state.
func (sc *ShellController) aim(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 3 {
		return nil, errors.New("usage: aim <state> <x> <y>")
	}
	st, err := parseState(cmd.args[0])
	if err != nil {
		return nil, err
	}
	xy, err := parseFloats(cmd.args[1:])
	if err != nil {
		return nil, err
	}
	at := geometry.Vec2{X: xy[0], Y: xy[1]}
	ctx := context.Background()

	throws, err := sc.minThrows.SolveAim(ctx, st, at)
	if err != nil {
		return nil, err
	}
	points, err := sc.maxPoints.SolveAim(ctx, st, at)
	if err != nil {
		return nil, err
	}
	outs, err := sc.game.ThrowOutcomes(at, st)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "aim %v from %d\n", at, st)
	if throws >= solver.InfiniteScore {
		b.WriteString("expected throws: unwinnable\n")
	} else {
		fmt.Fprintf(&b, "expected throws: %.5f\n", throws)
	}
	fmt.Fprintf(&b, "expected points: %.5f\n", points)

	hits := sc.game.OutcomeDistribution(at)
	slices.SortStableFunc(hits, func(a, b game.HitProbability) int {
		switch {
		case a.P > b.P:
			return -1
		case a.P < b.P:
			return 1
		}
		return 0
	})
	b.WriteString("hits:")
	for _, h := range lo.Slice(hits, 0, 8) {
		fmt.Fprintf(&b, " %v %.4f", h.Hit, h.P)
	}
	b.WriteString("\nnext state:")
	for _, o := range outs {
		fmt.Fprintf(&b, " %d %.4f", o.State, o.P)
	}
	return msg(b.String()), nil
}

func (sc *ShellController) export(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 2 {
		return nil, errors.New("usage: export <from> <to> [-file <path>] [-solver min-throws|max-points]")
	}
	s, err := sc.solverNamed(cmd.options.String("solver"))
	if err != nil {
		return nil, err
	}
	from, err := parseState(cmd.args[0])
	if err != nil {
		return nil, err
	}
	to, err := parseState(cmd.args[1])
	if err != nil {
		return nil, err
	}
	rows, err := solver.Table(context.Background(), s, from, to)
	if err != nil {
		return nil, err
	}
	st := solver.Strategy{Solver: s.Name(), Rules: sc.game.Rules().Name(), Rows: rows}

	path := cmd.options.String("file")
	if path == "" {
		var b strings.Builder
		if err := solver.WriteTable(&b, st); err != nil {
			return nil, err
		}
		return msg(strings.TrimRight(b.String(), "\n")), nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := solver.WriteTable(f, st); err != nil {
		return nil, err
	}
	return msg(fmt.Sprintf("exported %d states to %s", len(rows), path)), nil
}

func (sc *ShellController) showMetrics(cmd *shellcmd) (*Response, error) {
	summary, err := sc.metrics.Summary()
	if err != nil {
		return nil, err
	}
	summary += fmt.Sprintf("\ncached aims: %d, solved states: %d",
		sc.game.CachedAims(), sc.minThrows.SolvedStates())
	return msg(summary), nil
}

type settingKind int

const (
	settingString settingKind = iota
	settingInt
	settingFloat
	settingBool
)

type setting struct {
	kind settingKind
	// what has to be redone after the value changes
	board, normal, stream, game bool
}

var settings = map[string]setting{
	config.ConfigDebug:             {kind: settingBool},
	config.ConfigBoardPath:         {kind: settingString, board: true, game: true},
	config.ConfigBoardSubdivisions: {kind: settingInt, board: true, game: true},
	config.ConfigFinishRule:        {kind: settingString, game: true},
	config.ConfigIntegration:       {kind: settingString, game: true},
	config.ConfigMCSamples:         {kind: settingInt, game: true},
	config.ConfigSigmaXX:           {kind: settingFloat, normal: true, game: true},
	config.ConfigSigmaXY:           {kind: settingFloat, normal: true, game: true},
	config.ConfigSigmaYY:           {kind: settingFloat, normal: true, game: true},
	config.ConfigMeanX:             {kind: settingFloat, normal: true, game: true},
	config.ConfigMeanY:             {kind: settingFloat, normal: true, game: true},
	config.ConfigAimSamples:        {kind: settingInt, game: true},
	config.ConfigAimSampler:        {kind: settingString, game: true},
	config.ConfigHeatmapRows:       {kind: settingInt},
	config.ConfigHeatmapCols:       {kind: settingInt},
	config.ConfigThreads:           {kind: settingInt, game: true},
	config.ConfigSeed:              {kind: settingInt, stream: true, normal: true, game: true},
	config.ConfigSimLegs:           {kind: settingInt},
	config.ConfigSimMaxThrows:      {kind: settingInt, game: true},
}

func settingValue(kind settingKind, raw string) (any, error) {
	switch kind {
	case settingInt:
		return strconv.Atoi(raw)
	case settingFloat:
		return strconv.ParseFloat(raw, 64)
	case settingBool:
		return strconv.ParseBool(raw)
	}
	return raw, nil
}

// applySetting stores a new value and redoes whatever depends on it. On
// failure the old value and state are put back.
func (sc *ShellController) applySetting(key, raw string) error {
	st, ok := settings[key]
	if !ok {
		return fmt.Errorf("no such setting: %s", key)
	}
	val, err := settingValue(st.kind, raw)
	if err != nil {
		return fmt.Errorf("bad value for %s: %w", key, err)
	}
	if st.game && sc.simRunning() {
		return errSimming
	}
	prev := sc.config.Get(key)
	oldDef, oldNormal, oldStream := sc.def, sc.normal, sc.stream
	restore := func() {
		sc.config.Set(key, prev)
		sc.def, sc.normal, sc.stream = oldDef, oldNormal, oldStream
	}

	sc.config.Set(key, val)
	if key == config.ConfigDebug {
		if val.(bool) {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	}
	if st.stream {
		sc.stream = random.NewStream(sc.config.GetInt64(config.ConfigSeed))
	}
	if st.board {
		def, err := sc.config.Board()
		if err != nil {
			restore()
			return err
		}
		sc.def = def
	}
	if st.normal {
		if err := sc.resetNormal(); err != nil {
			restore()
			return err
		}
	}
	if st.game {
		if err := sc.rebuild(); err != nil {
			restore()
			return err
		}
	}
	return nil
}

func (sc *ShellController) settingsText() string {
	keys := lo.Keys(settings)
	slices.Sort(keys)
	var b strings.Builder
	b.WriteString("Settings:\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "  %s: %v\n", k, sc.config.Get(k))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(sc.settingsText()), nil
	}
	key := cmd.args[0]
	if _, ok := settings[key]; !ok {
		return nil, fmt.Errorf("no such setting: %s", key)
	}
	if len(cmd.args) == 1 {
		return msg(fmt.Sprintf("%s: %v", key, sc.config.Get(key))), nil
	}
	if err := sc.applySetting(key, cmd.args[1]); err != nil {
		return nil, err
	}
	return msg(fmt.Sprintf("set %s to %v", key, sc.config.Get(key))), nil
}
