package source

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrMissingDependency marks failures caused by an absent host utility.
var ErrMissingDependency = errors.New("missing dependency")

// Kind classifies a fetch failure.
type Kind int

const (
	// KindTransport covers an unreachable backend or malformed data.
	KindTransport Kind = iota + 1
	// KindMissingDependency is the transport failure raised when a required
	// system command is not installed.
	KindMissingDependency
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindMissingDependency:
		return "missing_dependency"
	default:
		return "unknown"
	}
}

// missingCommandSignatures are substrings that identify an absent command in
// error text coming from exec or from a remote agent.
var missingCommandSignatures = []string{
	"command not found",
	"executable file not found",
}

// FetchError is a classified data source failure. It is never fatal: the
// caller substitutes the fallback dataset and shows Diagnostic.
type FetchError struct {
	Kind    Kind
	Command string // missing command, when known
	Err     error
}

func (e *FetchError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsMissingDependency reports whether the failure is a missing host utility.
func (e *FetchError) IsMissingDependency() bool {
	return e != nil && e.Kind == KindMissingDependency
}

// Diagnostic returns the one-line message shown to the user.
func (e *FetchError) Diagnostic() string {
	if e == nil {
		return ""
	}
	if e.Kind == KindMissingDependency {
		cmd := e.Command
		if cmd == "" {
			cmd = "a required system command"
		}
		return fmt.Sprintf("%s is not installed; showing sample data (install it or pick another source)", cmd)
	}
	msg := firstLine(e.Error())
	if msg == "" {
		msg = "failed to fetch connections"
	}
	return "connection fetch failed: " + msg + "; showing sample data"
}

// Classify wraps err into a FetchError. A nil err yields nil.
func Classify(err error) *FetchError {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	if errors.Is(err, ErrMissingDependency) {
		return &FetchError{Kind: KindMissingDependency, Command: missingCommand(err.Error()), Err: err}
	}
	text := err.Error()
	lower := strings.ToLower(text)
	for _, sig := range missingCommandSignatures {
		if strings.Contains(lower, sig) {
			return &FetchError{Kind: KindMissingDependency, Command: missingCommand(text), Err: err}
		}
	}
	return &FetchError{Kind: KindTransport, Err: err}
}

// missingCommand extracts the command name from texts such as
// "lsof command not found" or `exec: "lsof": executable file not found`.
func missingCommand(text string) string {
	lower := strings.ToLower(text)
	if idx := strings.Index(lower, "command not found"); idx > 0 {
		fields := strings.Fields(strings.TrimSpace(text[:idx]))
		if len(fields) > 0 {
			return strings.Trim(fields[len(fields)-1], `":'`)
		}
	}
	if idx := strings.Index(text, `exec: "`); idx >= 0 {
		rest := text[idx+len(`exec: "`):]
		if end := strings.Index(rest, `"`); end > 0 {
			return rest[:end]
		}
	}
	return ""
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return s
}
