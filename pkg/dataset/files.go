package dataset

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ExpandFiles resolves a control-file `files` entry into a sorted list of
// paths. A glob pattern is expanded; a path ending in .txt is read as a
// newline-separated list of files.
func ExpandFiles(pattern string) ([]string, error) {
	if strings.HasSuffix(pattern, ".txt") {
		raw, err := os.ReadFile(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read file list %s", pattern)
		}
		files := make([]string, 0)
		for _, line := range strings.Split(string(raw), "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				files = append(files, line)
			}
		}
		if len(files) == 0 {
			return nil, errors.Errorf("file list %s is empty", pattern)
		}

		return files, nil
	}

	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid file pattern %s", pattern)
	}
	if len(files) == 0 {
		return nil, errors.Errorf("no files match %s", pattern)
	}
	sort.Strings(files)

	return files, nil
}
