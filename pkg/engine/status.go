package engine

import (
	"github.com/bmertz/falpipe/pkg/api"
	"github.com/bmertz/falpipe/pkg/observability"
)

// emit delivers one status event to the sink, best effort. A nil sink
// drops the event; a panicking sink is contained and counted, never
// allowed to abort the invocation.
func emit(sink api.StatusSink, ev api.StatusEvent) {
	if sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			observability.StatusEventsDroppedTotal.Inc()
		}
	}()
	sink(ev)
}

// failedStatusText renders the terminal status line for a post-dispatch
// failure. Result-shape failures use short fixed texts without the raw
// payload; backend call failures carry the rendered error itself.
func failedStatusText(pe *api.PipeError) string {
	switch pe.Code {
	case api.PipeCodeEmptyResult:
		return "Generation failed"
	case api.PipeCodeMissingImageURL:
		return "Error: Image URL missing"
	default:
		return pe.Render()
	}
}
