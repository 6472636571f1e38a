package protocol

import "strings"

// Status prefixes of the first response line.
const (
	StatusOK  = "OK"
	StatusErr = "ERR"
)

// Response is one logical server response.
type Response struct {
	ok    bool
	title string   // rest of the status line
	body  []string // following lines, written as is
}

// OK builds a successful response. Body lines follow the status line.
func OK(title string, body ...string) Response {
	return Response{ok: true, title: title, body: body}
}

// Err builds an error response with a single line.
func Err(msg string) Response {
	return Response{title: msg}
}

// IsOK reports whether the response is successful.
func (r Response) IsOK() bool { return r.ok }

// Lines returns the response lines, sentinel excluded.
func (r Response) Lines() []string {
	status := StatusErr
	if r.ok {
		status = StatusOK
	}
	first := status
	if r.title != "" {
		first += " " + r.title
	}
	return append([]string{first}, r.body...)
}

// String returns the response as written on the wire, sentinel excluded.
func (r Response) String() string {
	return strings.Join(r.Lines(), "\n")
}
