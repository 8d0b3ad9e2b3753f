package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/enms-tools/enbfit/baseline"
	"github.com/enms-tools/enbfit/errs"
)

// Extensions recognized by LoadFile and DirSource, in lookup order.
var Extensions = []string{".yaml", ".yml", ".csv"}

// LoadFile reads a baseline file, choosing the decoder by extension. CSV files
// without an #id row take the file name (without extension) as id.
func LoadFile(path string, opts ...baseline.Option) (*baseline.Baseline, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", errs.ErrBaselineNotFound, path)
		}

		return nil, err
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	var b *baseline.Baseline
	switch ext {
	case ".yaml", ".yml":
		b, err = ReadYAML(f, opts...)
	case ".csv":
		b, err = ReadCSV(f, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), opts...)
	default:
		return nil, fmt.Errorf("%w: unsupported extension %q", errs.ErrInvalidFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	return b, nil
}

// DirSource is a baseline.Source reading <dir>/<id>.{yaml,yml,csv}.
// Files are read on every Load, so edits are picked up immediately.
type DirSource struct {
	dir  string
	opts []baseline.Option
	log  *zap.Logger
}

var _ baseline.Source = (*DirSource)(nil)

// NewDirSource returns a source over dir. opts are passed to baseline.New for
// every file loaded.
func NewDirSource(dir string, log *zap.Logger, opts ...baseline.Option) (*DirSource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("baseline directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("baseline directory: %s is not a directory", dir)
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &DirSource{dir: dir, opts: opts, log: log}, nil
}

// Load implements baseline.Source.
func (s *DirSource) Load(ctx context.Context, id string) (*baseline.Baseline, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return nil, fmt.Errorf("%w: %q", errs.ErrBaselineNotFound, id)
	}

	for _, ext := range Extensions {
		path := filepath.Join(s.dir, id+ext)
		b, err := LoadFile(path, s.opts...)
		if errors.Is(err, errs.ErrBaselineNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if b.ID != id {
			s.log.Warn("baseline id differs from file name",
				zap.String("file", path), zap.String("id", b.ID))
		}
		s.log.Debug("loaded baseline", zap.String("file", path), zap.Int("points", b.Len()))

		return b, nil
	}

	return nil, fmt.Errorf("%w: %q in %s", errs.ErrBaselineNotFound, id, s.dir)
}

// IDs lists the baseline ids available in the directory, sorted.
func (s *DirSource) IDs() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !slices.Contains(Extensions, ext) || strings.HasPrefix(name, ".") {
			continue
		}
		id := strings.TrimSuffix(name, filepath.Ext(name))
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	return ids, nil
}
