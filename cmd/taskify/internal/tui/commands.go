package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/germanamz/taskify/pkg/codeblock"
)

// command is a parsed slash command.
type command struct {
	name string
	args []string
}

// parseCommand splits a "/name arg..." line. Lines not starting with "/"
// are not commands.
func parseCommand(line string) (command, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return command{}, false
	}

	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		return command{name: ""}, true
	}

	return command{name: strings.ToLower(fields[0]), args: fields[1:]}, true
}

const helpText = `Commands:
  /code            list code blocks of the last reply
  /save N [path]   save code block N
  /sub             open a subchat seeded with this conversation
  /back            return to the parent chat
  /clear           clear the current chat
  /help            show this help
  /quit            exit`

// result is what running a command produced.
type result struct {
	output string
	failed bool
	quit   bool
}

// run executes cmd against s. Saved files land in dir unless a path says
// otherwise.
func run(s *Session, cmd command, dir string) result {
	switch cmd.name {
	case "code":
		return result{output: listBlocks(s.Blocks())}

	case "save":
		if len(cmd.args) == 0 {
			return result{output: "usage: /save N [path]", failed: true}
		}
		n, err := strconv.Atoi(cmd.args[0])
		if err != nil {
			return result{output: fmt.Sprintf("invalid block number %q", cmd.args[0]), failed: true}
		}
		path := ""
		if len(cmd.args) > 1 {
			path = cmd.args[1]
		}
		saved, err := s.Save(n, path, dir)
		if err != nil {
			return result{output: err.Error(), failed: true}
		}
		return result{output: "saved " + saved}

	case "sub":
		s.Fork()
		return result{output: fmt.Sprintf("entered subchat (depth %d)", s.Depth())}

	case "back":
		if err := s.Back(); err != nil {
			return result{output: err.Error(), failed: true}
		}
		if s.Depth() == 0 {
			return result{output: "back in the main chat"}
		}
		return result{output: fmt.Sprintf("back in subchat (depth %d)", s.Depth())}

	case "clear":
		s.Clear()
		return result{output: "chat cleared"}

	case "help", "":
		return result{output: helpText}

	case "quit", "exit":
		return result{quit: true}
	}

	return result{output: fmt.Sprintf("unknown command /%s, try /help", cmd.name), failed: true}
}

func listBlocks(blocks []codeblock.Block) string {
	if len(blocks) == 0 {
		return "the last reply has no code blocks"
	}

	var b strings.Builder
	for i, blk := range blocks {
		if i > 0 {
			b.WriteByte('\n')
		}
		lines := strings.Count(blk.Code, "\n") + 1
		fmt.Fprintf(&b, "%d. %s  %s (%d lines)", i+1, codeblock.Filename(blk, i+1), codeblock.DisplayName(blk.Language), lines)
	}
	return b.String()
}
