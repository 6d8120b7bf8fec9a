package image

import (
	"strings"

	"github.com/Bangulli/cytomine/internal/domain"
)

// MaxPathLength bounds path and filename lengths.
const MaxPathLength = 4096

// Identity addresses a slide in the retrieval engine's index. The engine locates
// the file by path and filename; the numeric id only correlates results.
type Identity struct {
	id       int64
	path     string
	filename string
}

// New validates and creates an Identity. All three fields are required;
// a zero id counts as missing.
func New(id int64, path, filename string) (Identity, error) {
	path = strings.TrimSpace(path)
	filename = strings.TrimSpace(filename)

	var missing []string
	if id == 0 {
		missing = append(missing, "image_id")
	}
	if path == "" {
		missing = append(missing, "path")
	}
	if filename == "" {
		missing = append(missing, "filename")
	}
	if len(missing) > 0 {
		return Identity{}, domain.InvalidArgument("missing required field(s): %s", strings.Join(missing, ", "))
	}
	if id < 0 {
		return Identity{}, domain.InvalidArgument("image_id must be positive, got %d", id)
	}
	if len(path) > MaxPathLength || len(filename) > MaxPathLength {
		return Identity{}, domain.InvalidArgument("path and filename must not exceed %d chars", MaxPathLength)
	}
	return Identity{id: id, path: path, filename: filename}, nil
}

// ID returns the numeric image id.
func (i *Identity) ID() int64 { return i.id }

// Path returns the storage path.
func (i *Identity) Path() string { return i.path }

// Filename returns the original filename.
func (i *Identity) Filename() string { return i.filename }
