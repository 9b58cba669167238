package shell

import (
	"slices"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/samber/lo"

	"github.com/domino14/bullseye/config"
)

// ShellCompleter provides context-aware autocomplete for shell commands
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

// CommandMetadata holds autocomplete information for a command
type CommandMetadata struct {
	Options []string
	Args    []string
}

var commandMetadata = map[string]CommandMetadata{
	"board": {
		Args: []string{"standard", "ring", "save"},
	},
	"rules": {
		Args: []string{"any", "double"},
	},
	"dist": {
		Args: []string{"set", "mean", "add", "reset"},
	},
	"solve": {
		Options: []string{"-solver"},
	},
	"heatmap": {
		Options: []string{"-rows", "-cols", "-solver"},
	},
	"sim": {
		Options: []string{"-legs", "-threads", "-stop", "-tolerance", "-maxthrows", "-bins", "-width"},
		Args:    []string{"stop", "show", "histogram"},
	},
	"export": {
		Options: []string{"-file", "-solver"},
	},
	"help": {
		Args: []string{"board", "rules", "dist", "solve", "aim", "maxpoints", "heatmap", "sim", "export", "set"},
	},
}

var commandNames = []string{
	"help", "board", "rules", "dist", "solve", "aim", "maxpoints", "heatmap",
	"sim", "export", "metrics", "set", "exit",
}

var stopValues = []string{"95", "98", "99"}
var solverValues = []string{"min-throws", "max-points"}

// Do implements the readline.AutoComplete interface
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		// unbalanced quotes; fall back to simple space splitting
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}

		var lastCompleteField string
		if endsWithSpace {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}

		if strings.HasPrefix(lastCompleteField, "-") {
			switch strings.TrimPrefix(lastCompleteField, "-") {
			case "stop":
				completions = stopValues
			case "solver":
				completions = solverValues
			}
		}
		if cmdName == "set" && completions == nil {
			completions = c.settingCompletions(fields, endsWithSpace)
		}

		if completions == nil {
			if metadata, exists := commandMetadata[cmdName]; exists {
				if strings.HasPrefix(prefix, "-") || len(metadata.Args) == 0 {
					completions = metadata.Options
				} else {
					completions = metadata.Args
				}
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			matches = append(matches, []rune(completion[len(prefix):]))
		}
	}
	return matches, len(prefix)
}

// settingCompletions offers setting names for the first argument of set
// and known values for the second.
func (c *ShellCompleter) settingCompletions(fields []string, endsWithSpace bool) []string {
	argIdx := len(fields) - 1
	if endsWithSpace {
		argIdx = len(fields)
	}
	switch argIdx {
	case 1:
		names := lo.Keys(settings)
		slices.Sort(names)
		return names
	case 2:
		switch fields[1] {
		case config.ConfigFinishRule:
			return []string{"any", "double"}
		case config.ConfigIntegration:
			return []string{config.IntegrationQuadrature, config.IntegrationMonteCarlo}
		case config.ConfigAimSampler:
			return []string{config.SamplerGrid, config.SamplerRandom}
		case config.ConfigDebug:
			return []string{"true", "false"}
		}
	}
	return nil
}
