// Package sink materializes composed documents. All sinks consume the same
// block sequence; only the destination differs. Sink failures are
// environment/system failures, reported disjointly from eligibility outcomes.
package sink

import (
	"context"

	"vaxcert/internal/compose"
)

// Handle references a materialized document. Exactly one field is populated:
// Path for durable artifacts, Content for in-memory previews.
type Handle struct {
	Path    string
	Content []byte
}

// Sink materializes a composed document. Materialize is the only blocking I/O
// point in the pipeline; implementations must release any acquired resources
// on every exit path.
type Sink interface {
	Materialize(ctx context.Context, doc compose.Document) (Handle, error)
}
