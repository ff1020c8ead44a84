package mcpServer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var ErrPathOutsideRoot = errors.New("path is not a file under the documents root")

// resolveDocumentPath maps a tool supplied path onto a real file under root. Relative paths
// are taken from root; symlinks are followed before the containment check so a link inside
// root cannot point the loader elsewhere.
func resolveDocumentPath(root, path string) (string, error) {
	if root == "" {
		return "", fmt.Errorf("%w: no documents root configured", ErrPathOutsideRoot)
	}
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: empty path", ErrPathOutsideRoot)
	}

	realRoot, err := realPath(root)
	if err != nil {
		return "", fmt.Errorf("documents root %q: %w", root, err)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(realRoot, path)
	}
	target, err := realPath(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideRoot, filepath.Base(path))
	}

	rel, err := filepath.Rel(realRoot, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideRoot, filepath.Base(path))
	}
	if rel == "." {
		return "", fmt.Errorf("%w: the root itself is not a document", ErrPathOutsideRoot)
	}
	return target, nil
}

func realPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
