package sink

import (
	"context"

	"vaxcert/internal/compose"
	dErrors "vaxcert/pkg/domain-errors"
)

// MemorySink renders the document and hands the bytes straight back, for
// inline previews. Nothing is persisted.
type MemorySink struct{}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Materialize(_ context.Context, doc compose.Document) (Handle, error) {
	content, err := renderHTML(doc)
	if err != nil {
		return Handle{}, dErrors.Wrap(dErrors.CodeInternal, "render document", err)
	}
	return Handle{Content: content}, nil
}
