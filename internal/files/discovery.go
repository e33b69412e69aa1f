package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ReportPrefix starts every KPI report file name
const ReportPrefix = "kpi_report_"

// reportExtensions are the formats a saved report can have
var reportExtensions = map[string]string{
	".csv":  "csv",
	".xlsx": "xlsx",
}

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string    `json:"-"`
	Name    string    `json:"name"`
	Format  string    `json:"format,omitempty"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modified"`
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// FindReports lists KPI report files in dir, newest first.
// A missing directory yields an empty list.
func (d *Discovery) FindReports(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return []FileInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	reports := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), ReportPrefix) {
			continue
		}
		format, ok := reportExtensions[strings.ToLower(filepath.Ext(entry.Name()))]
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		reports = append(reports, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Format:  format,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	// Names embed the timestamp, so they break modification time ties
	sort.Slice(reports, func(i, j int) bool {
		if !reports[i].ModTime.Equal(reports[j].ModTime) {
			return reports[i].ModTime.After(reports[j].ModTime)
		}
		return reports[i].Name > reports[j].Name
	})

	return reports, nil
}

// Stat describes a single file, relative paths resolve against the base path
func (d *Discovery) Stat(path string) (FileInfo, error) {
	fullPath := d.resolve(path)
	info, err := os.Stat(fullPath)
	if err != nil {
		return FileInfo{}, err
	}
	if info.IsDir() {
		return FileInfo{}, fmt.Errorf("%s is a directory", fullPath)
	}
	return FileInfo{
		Path:    fullPath,
		Name:    info.Name(),
		Format:  reportExtensions[strings.ToLower(filepath.Ext(fullPath))],
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}
