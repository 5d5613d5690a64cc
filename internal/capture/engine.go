// Package capture implements the start/stop span scanner used to lift
// description, table of contents and raw schema regions out of a document.
package capture

import (
	"strings"

	"github.com/dgallion1/reportgest/internal/document"
)

type state int

const (
	stateSeeking state = iota
	stateCapturing
	stateTail
	stateDone
)

func (s state) String() string {
	switch s {
	case stateSeeking:
		return "seeking"
	case stateCapturing:
		return "capturing"
	case stateTail:
		return "tail"
	case stateDone:
		return "done"
	}
	return "unknown"
}

// StartMode controls what happens to the block that opens a span.
type StartMode int

const (
	// StartSkip drops the opening block.
	StartSkip StartMode = iota
	// StartProcess feeds the opening block through the normal capture step.
	StartProcess
)

// Fragment is one rendered block. Item fragments are grouped into a single
// list wrapper.
type Fragment struct {
	HTML string
	Item bool
}

// Rules parametrise one scan. Start and Render are required; every other hook
// is optional.
type Rules struct {
	Start     func(*document.Paragraph) bool
	StartMode StartMode

	// Skip drops a block before any other hook sees it.
	Skip func(*document.Paragraph) bool

	// Stop ends the span; the stopping block is excluded.
	Stop func(*document.Paragraph) bool

	// Section returns the sub-heading to emit for a section marker block.
	Section func(*document.Paragraph) (string, bool)

	// Tail emits the block, then switches to tail scanning. TailEnd ends the
	// span while in the tail state.
	Tail    func(*document.Paragraph) bool
	TailEnd func(*document.Paragraph) bool

	Render func(*document.Paragraph) Fragment

	// Join separates fragments in the output.
	Join string
	// ListOpen and ListClose wrap runs of item fragments. Empty means no
	// wrapping.
	ListOpen  string
	ListClose string
}

// scan holds the transient state of one Run call.
type scan struct {
	rules    *Rules
	state    state
	out      []string
	listOpen bool
}

// Run walks the paragraphs of doc in order and returns the joined fragments of
// the captured span. Tables are not part of any span.
func Run(doc *document.Document, rules Rules) string {
	s := &scan{rules: &rules, state: stateSeeking}
	for _, p := range doc.Paragraphs() {
		s.step(p)
		if s.state == stateDone {
			break
		}
	}
	s.closeList()
	return strings.Join(s.out, rules.Join)
}

func (s *scan) step(p *document.Paragraph) {
	if s.rules.Skip != nil && s.rules.Skip(p) {
		return
	}
	switch s.state {
	case stateSeeking:
		if !s.rules.Start(p) {
			return
		}
		s.state = stateCapturing
		if s.rules.StartMode == StartSkip {
			return
		}
		s.capture(p)
	case stateCapturing:
		s.capture(p)
	case stateTail:
		if s.rules.Tail != nil && s.rules.Tail(p) {
			s.emitTail(p)
			return
		}
		if s.rules.TailEnd != nil && s.rules.TailEnd(p) {
			s.state = stateDone
			return
		}
		s.render(p)
	}
}

func (s *scan) capture(p *document.Paragraph) {
	if s.rules.Stop != nil && s.rules.Stop(p) {
		s.state = stateDone
		return
	}
	if s.rules.Tail != nil && s.rules.Tail(p) {
		s.emitTail(p)
		s.state = stateTail
		return
	}
	if s.rules.Section != nil {
		if heading, ok := s.rules.Section(p); ok {
			s.closeList()
			s.out = append(s.out, "<br>", heading)
			return
		}
	}
	s.render(p)
}

func (s *scan) emitTail(p *document.Paragraph) {
	f := s.rules.Render(p)
	if f.HTML == "" {
		return
	}
	s.closeList()
	s.out = append(s.out, f.HTML)
}

func (s *scan) render(p *document.Paragraph) {
	f := s.rules.Render(p)
	if f.HTML == "" {
		return
	}
	if f.Item && s.rules.ListOpen != "" {
		if !s.listOpen {
			s.out = append(s.out, s.rules.ListOpen)
			s.listOpen = true
		}
		s.out = append(s.out, f.HTML)
		return
	}
	s.closeList()
	s.out = append(s.out, f.HTML)
}

func (s *scan) closeList() {
	if s.listOpen {
		s.out = append(s.out, s.rules.ListClose)
		s.listOpen = false
	}
}
