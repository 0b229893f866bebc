package dialog

import (
	"context"
	"log/slog"

	"github.com/roomgrabber/roomgrabber/internal/models"
)

// Step is one function in a waterfall's ordered step list. It receives the
// shared options, the prior step's result, and the means to suspend on a
// prompt, delegate to a child dialog, skip ahead, or end the dialog.
type Step func(ctx context.Context, sc *StepContext) (Result, error)

// Waterfall executes an ordered list of steps for one dialog instance,
// threading each step's result into the next across turn boundaries.
type Waterfall struct {
	id    string
	steps []Step
}

// NewWaterfall creates a waterfall dialog from its ordered steps.
func NewWaterfall(id string, steps ...Step) *Waterfall {
	return &Waterfall{id: id, steps: steps}
}

// ID returns the dialog's registration name.
func (w *Waterfall) ID() string { return w.id }

// Begin runs the first step with the dialog's options and no prior result.
func (w *Waterfall) Begin(ctx context.Context, dc *Context, options any) (Result, error) {
	return w.runStep(ctx, dc, 0, nil)
}

// Continue re-runs the current step with the turn's text as its result.
// In practice a suspended waterfall's prompt frame sits above it on the
// stack, so this path only fires when a step suspended without delegating.
func (w *Waterfall) Continue(ctx context.Context, dc *Context) (Result, error) {
	frame := dc.ActiveFrame()
	return w.runStep(ctx, dc, frame.StepIndex, dc.Turn.Activity.TrimmedText())
}

// Resume runs the step the suspended frame recorded, passing the child
// dialog's or prompt's output as the step result.
func (w *Waterfall) Resume(ctx context.Context, dc *Context, result any) (Result, error) {
	frame := dc.ActiveFrame()
	return w.runStep(ctx, dc, frame.StepIndex, result)
}

func (w *Waterfall) runStep(ctx context.Context, dc *Context, index int, result any) (Result, error) {
	if index >= len(w.steps) {
		// Ran off the end of the step list; end with the last result.
		return dc.EndDialog(ctx, result)
	}
	frame := dc.ActiveFrame()
	frame.StepIndex = index
	slog.Debug("dialog.Waterfall.runStep", "dialogID", w.id, "stepIndex", index, "conversation", dc.State.ConversationID)
	sc := &StepContext{
		dc:         dc,
		dialog:     w,
		index:      index,
		frameDepth: len(dc.State.Stack) - 1,
		Result:     result,
	}
	return w.steps[index](ctx, sc)
}

// StepContext is the view a waterfall step has of its dialog instance.
type StepContext struct {
	dc         *Context
	dialog     *Waterfall
	index      int
	frameDepth int

	// Result is the prior step's output: a prompt's accepted value, a child
	// dialog's end result, or the value passed to Next.
	Result any
}

func (sc *StepContext) frame() *models.Frame {
	return &sc.dc.State.Stack[sc.frameDepth]
}

// Context returns the turn context for sending messages.
func (sc *StepContext) Context() *TurnContext { return sc.dc.Turn }

// Options returns the options the dialog was begun with. Values read here
// may have been through a JSON round-trip; use DecodeOptions for typed
// access.
func (sc *StepContext) Options() any { return sc.frame().Options }

// SetOptions replaces the dialog's options record. Steps produce an updated
// record rather than mutating a shared reference, keeping ownership
// unambiguous across the stack boundary.
func (sc *StepContext) SetOptions(options any) { sc.frame().Options = options }

// Values returns the dialog instance's scratch values, persisted with the
// frame.
func (sc *StepContext) Values() map[string]any {
	f := sc.frame()
	if f.Values == nil {
		f.Values = make(map[string]any)
	}
	return f.Values
}

// Next advances synchronously to the following step with the given result,
// with no turn boundary.
func (sc *StepContext) Next(ctx context.Context, result any) (Result, error) {
	return sc.dialog.runStep(ctx, sc.dc, sc.index+1, result)
}

// Prompt suspends the waterfall on the named prompt dialog. The next step
// runs when the prompt yields an accepted value on a later turn.
func (sc *StepContext) Prompt(ctx context.Context, promptID string, options PromptOptions) (Result, error) {
	sc.frame().StepIndex = sc.index + 1
	return sc.dc.BeginDialog(ctx, promptID, options)
}

// BeginDialog suspends the waterfall on a child dialog. The next step runs
// with the child's end result when it pops.
func (sc *StepContext) BeginDialog(ctx context.Context, dialogID string, options any) (Result, error) {
	sc.frame().StepIndex = sc.index + 1
	return sc.dc.BeginDialog(ctx, dialogID, options)
}

// EndDialog ends this waterfall, popping its frame and resuming the parent
// with the given result.
func (sc *StepContext) EndDialog(ctx context.Context, result any) (Result, error) {
	return sc.dc.EndDialog(ctx, result)
}
