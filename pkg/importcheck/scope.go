package importcheck

import "slices"

// FrameKind tags one level of lexical or control nesting.
type FrameKind int

// Frame kinds, from outermost to most specific.
const (
	FrameModule FrameKind = iota
	FrameFunction
	FrameClass
	FrameConditionalBlock
	FrameExceptionHandler
	FrameTypeCheckingBlock
)

// String returns the frame kind as a short lowercase label.
func (k FrameKind) String() string {
	switch k {
	case FrameModule:
		return "module"
	case FrameFunction:
		return "function"
	case FrameClass:
		return "class"
	case FrameConditionalBlock:
		return "conditional"
	case FrameExceptionHandler:
		return "exception handler"
	case FrameTypeCheckingBlock:
		return "type-checking block"
	default:
		return "unknown"
	}
}

// HandlerContext describes the exception handler a frame was pushed for:
// how many statements its body holds and which imports the matching try
// block attempts. It feeds the optional-dependency fallback rule.
type HandlerContext struct {
	Statements int
	TryImports []Import
}

// Frame is one entry of the scope stack. Handler is set only for
// FrameExceptionHandler frames.
type Frame struct {
	Kind      FrameKind
	StartLine int
	EndLine   int
	Handler   *HandlerContext
}

// ScopeContext is the stack of scope frames enclosing a point in the source,
// bottom (module) to top (innermost). The bottom frame is always exactly one
// FrameModule; Push and Pop preserve that invariant.
type ScopeContext struct {
	frames []Frame
}

// NewScopeContext returns a stack holding only the module frame.
func NewScopeContext() ScopeContext {
	return ScopeContext{frames: []Frame{{Kind: FrameModule}}}
}

// Push adds a frame on top of the stack.
func (s *ScopeContext) Push(f Frame) {
	s.frames = append(s.frames, f)
}

// Pop removes the top frame. The module frame at the bottom is never removed.
func (s *ScopeContext) Pop() {
	if len(s.frames) > 1 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// Depth returns the number of frames on the stack, the module frame included.
func (s *ScopeContext) Depth() int {
	return len(s.frames)
}

// Top returns the innermost frame.
func (s *ScopeContext) Top() Frame {
	return s.frames[len(s.frames)-1]
}

// ModuleOnly reports whether the module frame is the only frame, which is the
// one position where an import is unconditionally allowed.
func (s *ScopeContext) ModuleOnly() bool {
	return len(s.frames) == 1
}

// Contains reports whether any frame on the stack has the given kind.
func (s *ScopeContext) Contains(kind FrameKind) bool {
	for _, f := range s.frames {
		if f.Kind == kind {
			return true
		}
	}

	return false
}

// InnermostNonModule returns the innermost frame above the module frame.
// The second return is false for a module-only stack.
func (s *ScopeContext) InnermostNonModule() (Frame, bool) {
	if len(s.frames) == 1 {
		return Frame{}, false
	}

	return s.frames[len(s.frames)-1], true
}

// InnermostHandler returns the innermost exception-handler frame, or false
// when no handler frame is on the stack.
func (s *ScopeContext) InnermostHandler() (Frame, bool) {
	for i := len(s.frames) - 1; i > 0; i-- {
		if s.frames[i].Kind == FrameExceptionHandler {
			return s.frames[i], true
		}
	}

	return Frame{}, false
}

// Snapshot returns an independent copy of the stack, safe to retain after the
// walker mutates the original.
func (s *ScopeContext) Snapshot() ScopeContext {
	return ScopeContext{frames: slices.Clone(s.frames)}
}
