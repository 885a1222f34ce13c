package booth

import (
	"context"
	"log"

	"github.com/etnz/logfmt"
)

type requestIDKey struct{}

// WithRequestID tags ctx so that booth log lines can be matched to the request that caused them
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// logEvent writes a single logfmt line. fields are key, value pairs.
// Never log the candidate of an attempt that has not been finalized together with its nonce.
func logEvent(ctx context.Context, event string, fields ...string) {
	rec := logfmt.Rec().Q("event", event)
	if id := RequestID(ctx); id != "" {
		rec = rec.Q("request_id", id)
	}
	for i := 0; i+1 < len(fields); i += 2 {
		rec = rec.Q(fields[i], fields[i+1])
	}
	log.Println(rec.String())
}
