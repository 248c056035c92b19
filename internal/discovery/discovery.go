// Package discovery finds JSON input files and derives artifact paths.
package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dbsmedya/jsonconv/internal/logger"
)

// JSONExtension is matched case-insensitively.
const JSONExtension = ".json"

var (
	// ErrInvalidInput means the input path is neither a file nor a directory.
	ErrInvalidInput = errors.New("input is neither a file nor a directory")

	// ErrWrongExtension means a single input file does not end in .json.
	ErrWrongExtension = errors.New("input file must have .json extension")

	// ErrNoJSONFiles means a directory input contained no JSON files.
	ErrNoJSONFiles = errors.New("no JSON files found")
)

// Finder resolves an input path into the ordered list of JSON documents to convert.
type Finder struct {
	logger *logger.Logger
}

// NewFinder creates a Finder. A nil logger discards output.
func NewFinder(log *logger.Logger) *Finder {
	if log == nil {
		log = logger.NewNop()
	}
	return &Finder{logger: log}
}

// Find returns the JSON files for root.
//
//   - file: returned as is when it has the .json extension, ErrWrongExtension otherwise
//   - directory: regular .json files directly inside it, or anywhere below it
//     when recursive is set; ErrNoJSONFiles when none are found
//   - anything else: ErrInvalidInput
//
// Symlinks to regular files count as files. Results are sorted so runs are
// reproducible. A directory that cannot be read is logged and treated as
// empty, except root during a recursive walk.
func (f *Finder) Find(root string, recursive bool) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidInput, root, err)
	}

	switch {
	case info.Mode().IsRegular():
		if !HasJSONExtension(root) {
			return nil, fmt.Errorf("%w: %s", ErrWrongExtension, root)
		}
		return []string{root}, nil
	case info.IsDir():
		var files []string
		if recursive {
			files, err = f.walk(root)
			if err != nil {
				return nil, err
			}
		} else {
			files = f.scan(root)
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("%w in %s", ErrNoJSONFiles, root)
		}
		sort.Strings(files)
		return files, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, root)
	}
}

// scan lists the JSON files directly inside dir.
func (f *Finder) scan(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		f.logger.Warnf("Error reading directory %s: %v", dir, err)
		return nil
	}

	var files []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if HasJSONExtension(entry.Name()) && isRegularFile(path, entry) {
			files = append(files, path)
		}
	}
	return files
}

// walk lists the JSON files anywhere below root.
func (f *Finder) walk(root string) ([]string, error) {
	var files []string
	if err := filepath.WalkDir(root, f.visit(root, &files)); err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return files, nil
}

// visit collects JSON files into files. A subdirectory that cannot be read
// is logged and skipped; only an error on root itself stops the walk.
func (f *Finder) visit(root string, files *[]string) fs.WalkDirFunc {
	return func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path != root && d != nil && d.IsDir() {
				f.logger.Warnf("Error reading directory %s: %v", path, err)
				return fs.SkipDir
			}
			return err
		}
		if HasJSONExtension(d.Name()) && isRegularFile(path, d) {
			*files = append(*files, path)
		}
		return nil
	}
}

// isRegularFile reports whether entry is a regular file, following a
// symlink to its target.
func isRegularFile(path string, entry fs.DirEntry) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// HasJSONExtension reports whether name ends in .json, ignoring case.
func HasJSONExtension(name string) bool {
	return strings.EqualFold(filepath.Ext(name), JSONExtension)
}

// OutputPath returns the artifact path for input: its base name with the
// .json suffix replaced by ext, placed in outputDir when set and next to the
// input otherwise.
func OutputPath(input, outputDir, ext string) string {
	base := filepath.Base(input)
	if HasJSONExtension(base) {
		base = base[:len(base)-len(JSONExtension)]
	}
	name := base + ext

	if outputDir != "" {
		return filepath.Join(outputDir, name)
	}
	return filepath.Join(filepath.Dir(input), name)
}

// EnsureDir creates dir and its parents if missing.
func EnsureDir(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return nil
}
