package domain

import (
	"line-chat/errors"
	"strconv"
	"strings"
)

type Verb string

const (
	Nickname  Verb = "/nickname"
	Private   Verb = "/priv"
	Delay     Verb = "/delay"
	Complaint Verb = "/complaint"
)

// QuitToken ends the session when received as a whole line.
const QuitToken = "quit"

var knownVerbs = map[Verb]struct{}{
	Nickname:  {},
	Private:   {},
	Delay:     {},
	Complaint: {},
}

// Command is a verb with its raw argument string, derived from a single line.
type Command struct {
	Verb Verb
	Args string
}

// IsCommand reports whether the line must go through command parsing.
func IsCommand(line string) bool {
	return strings.HasPrefix(line, "/")
}

// ParseCommand splits a line on its first space.
// A verb outside the known set returns ErrUnknownCommand and a line
// with less than two tokens returns ErrMissingArgument.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimRight(line, "\r\n")
	if !IsCommand(line) {
		return Command{}, errors.ErrNotACommand
	}
	verb, args, _ := strings.Cut(line, " ")
	cmd := Command{Verb: Verb(verb), Args: args}
	if _, ok := knownVerbs[cmd.Verb]; !ok {
		return cmd, errors.ErrUnknownCommand
	}
	if len(strings.Fields(args)) == 0 {
		return cmd, errors.ErrMissingArgument
	}
	return cmd, nil
}

// Target returns the first token of the arguments, usually a nickname.
func (c Command) Target() string {
	fields := strings.Fields(c.Args)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Text returns what follows the first argument token, leading spaces removed.
func (c Command) Text() string {
	args := strings.TrimLeft(c.Args, " ")
	_, rest, found := strings.Cut(args, " ")
	if !found {
		return ""
	}
	return strings.TrimLeft(rest, " ")
}

// Minutes parses the first argument as a non-negative number of minutes.
func (c Command) Minutes() (int, error) {
	minutes, err := strconv.Atoi(c.Target())
	if err != nil || minutes < 0 {
		return 0, errors.ErrInvalidDelay
	}
	return minutes, nil
}
