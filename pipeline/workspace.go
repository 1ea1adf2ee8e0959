package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"blog_pipeline/document"
)

// DocumentName is the base name offered to whoever downloads the result.
const DocumentName = "Generated_Blog_Post"

// Workspace is the private directory of one run. Nothing outside it is
// written, so concurrent runs never collide.
type Workspace struct {
	ID        string
	Dir       string
	ImagesDir string
}

// NewWorkspace creates <root>/blog-<uuid>/images.
func NewWorkspace(root string) (*Workspace, error) {
	if root == "" {
		root = os.TempDir()
	}
	id := uuid.NewString()
	dir := filepath.Join(root, "blog-"+id)
	images := filepath.Join(dir, "images")
	if err := os.MkdirAll(images, 0o755); err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}
	return &Workspace{ID: id, Dir: dir, ImagesDir: images}, nil
}

// ShortID is the first block of the uuid, used in logs and file names.
func (w *Workspace) ShortID() string { return w.ID[:8] }

// DocumentPath is where the rendered document of format f is written.
func (w *Workspace) DocumentPath(f document.Format) string {
	return filepath.Join(w.Dir, fmt.Sprintf("%s-%s%s", DocumentName, w.ShortID(), f.Ext()))
}

// Close removes the workspace and everything in it.
func (w *Workspace) Close() error {
	return os.RemoveAll(w.Dir)
}
