package reporting

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ducminhle1904/mc-portfolio/pkg/config"
)

// maxDirTickers caps how many tickers make it into a directory name
const maxDirTickers = 4

// DefaultPathManager implements path management functionality
type DefaultPathManager struct {
	root string
}

// NewDefaultPathManager creates a path manager rooted at root; empty means "results"
func NewDefaultPathManager(root string) *DefaultPathManager {
	if root == "" {
		root = config.DefaultOutputDir
	}
	return &DefaultPathManager{root: root}
}

// GetDefaultOutputDir returns root/<T1_T2_...>, abbreviated past a few tickers
func (p *DefaultPathManager) GetDefaultOutputDir(tickers []string) string {
	names := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			names = append(names, t)
		}
	}
	if len(names) == 0 {
		return filepath.Join(p.root, "UNKNOWN")
	}
	if len(names) > maxDirTickers {
		names = append(names[:maxDirTickers], "more")
	}
	return filepath.Join(p.root, strings.Join(names, "_"))
}

// EnsureDirectoryExists creates the parent directory of path
func (p *DefaultPathManager) EnsureDirectoryExists(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// DefaultOutputDir is GetDefaultOutputDir under the default root
func DefaultOutputDir(tickers []string) string {
	return NewDefaultPathManager("").GetDefaultOutputDir(tickers)
}
