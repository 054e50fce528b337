package git

import (
	"regexp"
	"strings"
)

var (
	todoPickRe   = regexp.MustCompile(`^p(?:ick)?\s`)
	todoRevertRe = regexp.MustCompile(`^revert\s`)
	todoSHARe    = regexp.MustCompile(`^(?:p(?:ick)?|revert)\s+([a-f0-9]+)`)
)

// parseSequencerTodo classifies a sequencer todo list by its first line and
// returns the commit it acts on. The line is taken as is: a blank or
// indented first line is not a recognized command.
func parseSequencerTodo(content string) (op Operation, sha string, ok bool) {
	line, _, _ := strings.Cut(content, "\n")
	line = strings.TrimRight(line, "\r")
	switch {
	case todoPickRe.MatchString(line):
		op = OperationCherryPick
	case todoRevertRe.MatchString(line):
		op = OperationRevert
	default:
		return "", "", false
	}
	m := todoSHARe.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return op, m[1], true
}
