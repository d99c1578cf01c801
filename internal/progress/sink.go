package progress

import "context"

// Sink consumes events one at a time, in emission order. Implementations
// must honor ctx deadlines.
type Sink interface {
	Consume(ctx context.Context, evt Event) error
	Close(ctx context.Context) error
}

// Emitter publishes individual events; Stream satisfies this interface so
// the pipeline stays agnostic about who is listening.
type Emitter interface {
	Emit(evt Event)
}
