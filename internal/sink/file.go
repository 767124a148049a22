package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"vaxcert/internal/compose"
	dErrors "vaxcert/pkg/domain-errors"
	pstrings "vaxcert/pkg/platform/strings"
)

// FileSink writes rendered certificates under a fixed directory. Artifact
// names derive from the subject's display name with whitespace runs collapsed
// to underscores: Certificate_<name>.html.
type FileSink struct {
	dir string
}

func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

func (s *FileSink) Materialize(ctx context.Context, doc compose.Document) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return Handle{}, dErrors.Wrap(dErrors.CodeUnavailable, "materialize cancelled", err)
	}

	content, err := renderHTML(doc)
	if err != nil {
		return Handle{}, dErrors.Wrap(dErrors.CodeInternal, "render document", err)
	}

	path := filepath.Join(s.dir, ArtifactName(doc.SubjectName))
	if err := writeFile(path, content); err != nil {
		return Handle{}, dErrors.Wrap(dErrors.CodeUnavailable, "write certificate artifact", err)
	}
	return Handle{Path: path}, nil
}

// writeFile scopes the file handle: acquire, write, and close on every exit
// path, removing the partial artifact when the write fails midway.
func writeFile(path string, content []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// ArtifactName derives the durable file name for a subject's certificate.
func ArtifactName(subjectName string) string {
	name := pstrings.CollapseWhitespace(subjectName, "_")
	if name == "" {
		name = "Unnamed"
	}
	return "Certificate_" + name + ".html"
}
