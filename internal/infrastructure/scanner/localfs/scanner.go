// Package localfs discovers candidate evidence files on local filesystem
// roots. The traversal is read-only: no file is ever moved, renamed or
// modified.
package localfs

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/govreg/doccompass/internal/core/domain"
)

// defaultExtensions is the allow-list of document, spreadsheet and
// presentation formats considered evidence.
var defaultExtensions = map[string]struct{}{
	".doc":  {},
	".docx": {},
	".pdf":  {},
	".rtf":  {},
	".odt":  {},
	".txt":  {},
	".md":   {},
	".xls":  {},
	".xlsx": {},
	".ods":  {},
	".csv":  {},
	".ppt":  {},
	".pptx": {},
	".odp":  {},
}

type Scanner struct {
	logger     *slog.Logger
	extensions map[string]struct{}
	skipDirs   map[string]struct{}
}

type Option func(*Scanner)

// WithExtensions replaces the extension allow-list.
func WithExtensions(exts []string) Option {
	return func(s *Scanner) {
		s.extensions = make(map[string]struct{}, len(exts))
		for _, e := range exts {
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			s.extensions[strings.ToLower(e)] = struct{}{}
		}
	}
}

// WithSkipDirs adds directory names to skip, e.g. the pipeline's own report
// output directory, so generated workbooks never match themselves.
func WithSkipDirs(names []string) Option {
	return func(s *Scanner) {
		for _, n := range names {
			if n != "" {
				s.skipDirs[strings.ToLower(n)] = struct{}{}
			}
		}
	}
}

func New(logger *slog.Logger, opts ...Option) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scanner{
		logger:     logger,
		extensions: defaultExtensions,
		skipDirs:   map[string]struct{}{"reports": {}, "output": {}},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan walks every root recursively and returns the discovered evidence
// files, deduplicated by absolute path and sorted by path for reproducible
// matching order. An unreadable directory is logged and skipped; a scan never
// aborts because of one bad subtree.
func (s *Scanner) Scan(ctx context.Context, roots []string) ([]domain.EvidenceFile, error) {
	byPath := make(map[string]domain.EvidenceFile)

	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		abs, err := filepath.Abs(root)
		if err != nil {
			s.logger.Warn("skipping unresolvable scan root", "root", root, "error", err)
			continue
		}
		s.walkRoot(ctx, abs, byPath)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.EvidenceFile, 0, len(byPath))
	for _, f := range byPath {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (s *Scanner) walkRoot(ctx context.Context, root string, byPath map[string]domain.EvidenceFile) {
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			s.logger.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && s.skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !s.keepFile(d.Name()) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			s.logger.Warn("skipping unstatable file", "path", path, "error", err)
			return nil
		}
		byPath[path] = domain.EvidenceFile{
			Path:       path,
			Name:       d.Name(),
			NameTokens: domain.Tokenize(d.Name()),
			ModifiedAt: info.ModTime().UTC(),
		}
		return nil
	})
	if err != nil && ctx.Err() == nil {
		s.logger.Warn("walk ended early", "root", root, "error", err)
	}
}

func (s *Scanner) skipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	_, skip := s.skipDirs[strings.ToLower(name)]
	return skip
}

func (s *Scanner) keepFile(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
		return false
	}
	_, ok := s.extensions[strings.ToLower(filepath.Ext(name))]
	return ok
}
