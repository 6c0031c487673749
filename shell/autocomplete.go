package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/samber/lo"

	"github.com/domino14/gomoku/bot"
	"github.com/domino14/gomoku/config"
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
	"go": {
		Options: []string{"-n"},
	},
	"show": {
		Args: []string{"history"},
	},
	"autoplay": {
		Options: []string{"-games", "-threads", "-file", "-opening", "-seeds", "-sync"},
		Args:    append([]string{"stop"}, bot.Tiers()...),
	},
	"tier": {
		Args: bot.Tiers(),
	},
	"experience": {
		Args: []string{"load", "save", "show", "off"},
	},
	"set": {
		Args: []string{
			config.ConfigBoardSize, config.ConfigWinLength, config.ConfigEngineTier,
			config.ConfigTimeBudget, config.ConfigMaxDepth, config.ConfigSearchBreadth,
			config.ConfigCandidateLimit, config.ConfigEvalCandidates, config.ConfigScanMargin,
			config.ConfigTTSizePower, config.ConfigSelfplayGames, config.ConfigSelfplayThreads,
			config.ConfigSelfplayLog,
		},
	},
	"help": {
		Args: []string{"autoplay", "tier", "set"},
	},
}

var commandNames = []string{
	"new", "play", "go", "undo", "show", "threats", "candidates", "tier",
	"autoplay", "autoanalyze", "experience", "set", "help", "exit",
}

// Do implements the readline.AutoComplete interface.
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
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
		if lastCompleteField == "-sync" {
			completions = []string{"true", "false"}
		}
		if cmdName == "set" && len(fields) >= 2 && fields[1] == config.ConfigEngineTier &&
			lastCompleteField == config.ConfigEngineTier {
			completions = bot.Tiers()
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

	matches := lo.FilterMap(completions, func(completion string, _ int) ([]rune, bool) {
		if !strings.HasPrefix(completion, prefix) {
			return nil, false
		}
		return []rune(completion[len(prefix):]), true
	})
	return matches, len(prefix)
}
