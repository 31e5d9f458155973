package lisp

import (
	"fmt"
	"io"
	"strings"
)

// CallStack records the function calls an error unwound through.  Frames
// are appended as the error propagates outward, so the innermost call sits
// at index zero and the entrypoint comes last.
type CallStack struct {
	Frames []CallFrame
}

// CallFrame is one frame in the CallStack
type CallFrame struct {
	// Name is the symbol the function was called through.
	Name string
	// Args holds the printed forms of the evaluated arguments.
	Args []string
}

// String renders the call recorded by the frame.
func (f *CallFrame) String() string {
	var buf strings.Builder
	buf.WriteString("(")
	buf.WriteString(f.Name)
	for _, arg := range f.Args {
		buf.WriteString(" ")
		buf.WriteString(arg)
	}
	buf.WriteString(")")
	return buf.String()
}

// Push appends a frame to s.
func (s *CallStack) Push(f CallFrame) {
	s.Frames = append(s.Frames, f)
}

// Top returns the innermost CallFrame or nil if none exists.
func (s *CallStack) Top() *CallFrame {
	if s == nil || len(s.Frames) == 0 {
		return nil
	}
	return &s.Frames[0]
}

// DebugPrint prints s
func (s *CallStack) DebugPrint(w io.Writer) (int, error) {
	n, err := fmt.Fprintf(w, "Stack Trace [%d frames -- entrypoint last]:\n", len(s.Frames))
	if err != nil {
		return n, err
	}
	indent := "  "
	for i := range s.Frames {
		height := len(s.Frames) - 1 - i
		_n, err := fmt.Fprintf(w, "%sheight %d: %s\n", indent, height, s.Frames[i].String())
		n += _n
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
