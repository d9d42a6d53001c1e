package filesvc

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/huitzo/packkit/pkg/huitzo"
)

// Service gives packs file access confined to a sandbox root. Paths are
// interpreted relative to the root; escapes are rejected.
type Service struct {
	root string
}

func New(root string) *Service {
	return &Service{root: filepath.Clean(root)}
}

var _ huitzo.FilesService = (*Service)(nil)

func (s *Service) resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("files: empty path")
	}
	if filepath.IsAbs(path) {
		return "", fmt.Errorf("files: absolute paths are not allowed: %s", path)
	}

	full := filepath.Join(s.root, filepath.Clean(path))
	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("files: path escapes the sandbox: %s", path)
	}
	return full, nil
}

func (s *Service) ReadCSV(ctx context.Context, path string) ([]map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("files: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("files: parse %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	out := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				record[strings.TrimSpace(col)] = row[i]
			}
		}
		out = append(out, record)
	}
	return out, nil
}

func (s *Service) Write(ctx context.Context, path, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	full, err := s.resolve(path)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("files: create dir for %s: %w", path, err)
	}

	// Same tmp+rename discipline as the showcase store.
	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("files: write %s: %w", path, err)
	}
	if err := os.Rename(tmp, full); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("files: finalize %s: %w", path, err)
	}
	return full, nil
}
