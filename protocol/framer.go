package protocol

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// Protocol markers.
const (
	Prompt   = "READY>"
	Sentinel = "END"

	// MaxLineLength is the longest command line accepted, terminator excluded.
	MaxLineLength = 512
)

// ErrLineTooLong is returned by ReadLine when a line exceeds MaxLineLength.
// The offending line has been consumed; the framer is ready for the next one.
var ErrLineTooLong = errors.New("line too long")

// Framer reads command lines and writes framed responses on one connection.
type Framer struct {
	r *bufio.Reader
	w *bufio.Writer
}

// NewFramer returns a Framer reading from r and writing to w.
func NewFramer(r io.Reader, w io.Writer) *Framer {
	return &Framer{
		r: bufio.NewReaderSize(r, MaxLineLength+2),
		w: bufio.NewWriter(w),
	}
}

// ReadLine reads the next line without its terminator. It returns io.EOF
// when the peer closed the connection, including in the middle of a line.
func (f *Framer) ReadLine() (string, error) {
	line, err := f.r.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		if err := f.discardLine(); err != nil {
			return "", err
		}
		return "", ErrLineTooLong
	}
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return "", io.EOF
		}
		return "", err
	}
	s := strings.TrimRight(string(line), "\r\n")
	if len(s) > MaxLineLength {
		return "", ErrLineTooLong
	}
	return s, nil
}

// discardLine skips input up to and including the next newline.
func (f *Framer) discardLine() error {
	for {
		_, err := f.r.ReadSlice('\n')
		switch {
		case err == nil:
			return nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			return io.EOF
		default:
			return err
		}
	}
}

// WritePrompt writes the prompt line.
func (f *Framer) WritePrompt() error {
	return f.writeLines(Prompt)
}

// WriteResponse writes the response lines followed by the sentinel.
func (f *Framer) WriteResponse(r Response) error {
	return f.writeLines(append(r.Lines(), Sentinel)...)
}

func (f *Framer) writeLines(lines ...string) error {
	for _, l := range lines {
		f.w.WriteString(l)
		f.w.WriteByte('\n')
	}
	return f.w.Flush()
}
