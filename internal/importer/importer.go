// Package importer turns exported bank statement files into account
// snapshots. It stands in for the scraping client: drop an export into
// the import directory and sync picks it up.
package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/banksync-dev/banksync/internal/model"
)

// Parser converts one institution's export file into account snapshots.
type Parser interface {
	Parse(r io.Reader) ([]model.AccountSnapshot, error)
	Institution() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes an export file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate institution.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Institution())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser institution: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for an institution, or nil.
func (r *Registry) Get(institution string) Parser {
	return r.parsers[strings.ToLower(institution)]
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&PTSBParser{})
	return r
}

// importDir is the subdirectory holding fresh export files.
const importDir = "import"

// processedDir is where consumed export files are moved.
const processedDir = "import/processed"

// Scan returns CSV files waiting in <root>/import/.
func Scan(root string) ([]FileInfo, error) {
	dir := filepath.Join(root, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(root, fileName string) error {
	src := filepath.Join(root, importDir, fileName)
	dstDir := filepath.Join(root, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
