package ipc

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNotHandled is returned by Decode for messages the server does not act on.
var ErrNotHandled = errors.New("ipc: message not handled")

const (
	prefixIfExecOpen = `[IfExec_Open("`
	prefixOpen       = `[Open("`
	prefixOpenLine   = `[OpenLine("`
	prefixRaise      = `[Raise]`
	prefixCmdLine    = `[CmdLine({`
	markCWD          = `})CWD({`
	markEnd          = `})]`
)

var quoted = regexp.MustCompile(`"(.*)"`)

// Message is one request sent over an execute frame.
type Message interface {
	// Encode renders the message in its wire form.
	Encode() string
}

// Open asks the running instance to queue a file for opening.
type Open struct {
	Path string
}

// OpenLine asks the running instance to open a file, optionally at a line
// (path[:line]).
type OpenLine struct {
	Path string
}

// Raise asks the running instance to restore and raise its main window.
type Raise struct{}

// CmdLine forwards a complete command line together with the working
// directory it was issued from.
type CmdLine struct {
	Args string
	CWD  string
}

func (m Open) Encode() string     { return prefixOpen + m.Path + `")]` }
func (m OpenLine) Encode() string { return prefixOpenLine + m.Path + `")]` }
func (Raise) Encode() string      { return prefixRaise }

func (m CmdLine) Encode() string {
	return prefixCmdLine + Escape(m.Args) + markCWD + Escape(m.CWD) + markEnd
}

// Escape protects parentheses so the receiver can find the payload ends.
func Escape(s string) string {
	s = strings.ReplaceAll(s, "(", `\(`)
	return strings.ReplaceAll(s, ")", `\)`)
}

// Unescape reverses Escape.
func Unescape(s string) string {
	s = strings.ReplaceAll(s, `\)`, ")")
	return strings.ReplaceAll(s, `\(`, "(")
}

// Decode parses a wire message. Shell-open requests and unknown messages
// yield ErrNotHandled.
func Decode(data string) (Message, error) {
	switch {
	case strings.HasPrefix(data, prefixIfExecOpen):
		// the shell open command is registered as well and handles these
		return nil, fmt.Errorf("%w: %q", ErrNotHandled, data)

	case strings.HasPrefix(data, prefixOpen):
		return Open{Path: quotedPayload(data)}, nil

	case strings.HasPrefix(data, prefixOpenLine):
		return OpenLine{Path: quotedPayload(data)}, nil

	case strings.HasPrefix(data, prefixRaise):
		return Raise{}, nil

	case strings.HasPrefix(data, prefixCmdLine):
		return decodeCmdLine(data), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotHandled, data)
}

func quotedPayload(data string) string {
	m := quoted.FindStringSubmatch(data)
	if m == nil {
		return ""
	}
	return m[1]
}

// decodeCmdLine leaves both fields empty when the CWD marker is missing and
// the CWD empty when the terminator is missing.
func decodeCmdLine(data string) CmdLine {
	var msg CmdLine
	posCWD := strings.Index(data, markCWD)
	if posCWD < 0 {
		return msg
	}
	msg.Args = Unescape(data[len(prefixCmdLine):posCWD])

	start := posCWD + len(markCWD)
	if end := strings.Index(data[start:], markEnd); end >= 0 {
		msg.CWD = Unescape(data[start : start+end])
	}
	return msg
}
