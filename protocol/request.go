package protocol

import "strings"

// Request is a parsed command line: a case-sensitive verb and its
// whitespace separated arguments.
type Request struct {
	Verb string
	Args []string
}

// ParseRequest splits a command line. It returns false for a blank line.
func ParseRequest(line string) (Request, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Request{}, false
	}
	return Request{Verb: fields[0], Args: fields[1:]}, true
}
