package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/roach88/bulletin/internal/harness"
)

// LoadedScenario pairs a parsed scenario with the file it came from.
type LoadedScenario struct {
	Path     string
	Scenario *harness.Scenario
}

// LoadError represents an error that occurred while locating or parsing
// scenario files.
type LoadError struct {
	Code    string
	Path    string
	Message string
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// FindScenarioFiles expands paths into scenario files. A file is taken as
// given; a directory is walked for .yaml and .yml files. When filter is set,
// only files whose base name (without extension) matches the glob are kept.
// The result is sorted.
func FindScenarioFiles(paths []string, filter string) ([]string, error) {
	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("invalid filter pattern: %v", err)}
		}
	}

	var files []string
	keep := func(path string) {
		if !isScenarioFile(path) {
			return
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			if matched, _ := filepath.Match(filter, name); !matched {
				return
			}
		}
		files = append(files, path)
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &LoadError{Code: ErrCodeNotFound, Path: root, Message: "path not found"}
		}
		if err != nil {
			return nil, &LoadError{Code: ErrCodeNotFound, Path: root, Message: err.Error()}
		}
		if !info.IsDir() {
			keep(root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				keep(path)
			}
			return nil
		})
		if err != nil {
			return nil, &LoadError{Code: ErrCodeScanError, Path: root, Message: fmt.Sprintf("error scanning directory: %v", err)}
		}
	}

	slices.Sort(files)
	return slices.Compact(files), nil
}

// LoadScenarios parses every scenario file under paths. Files that fail to
// parse are reported in errs; the others are still returned.
func LoadScenarios(paths []string, filter string) (loaded []LoadedScenario, errs []error) {
	files, err := FindScenarioFiles(paths, filter)
	if err != nil {
		return nil, []error{err}
	}
	if len(files) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no scenario files found in %s", strings.Join(paths, ", "))}}
	}

	names := make(map[string]string)
	for _, file := range files {
		s, err := harness.LoadScenario(file)
		if err != nil {
			errs = append(errs, &LoadError{Code: ErrCodeScenario, Path: file, Message: err.Error()})
			continue
		}
		if prev, dup := names[s.Name]; dup {
			errs = append(errs, &LoadError{Code: ErrCodeScenario, Path: file, Message: fmt.Sprintf("duplicate scenario name %q (also in %s)", s.Name, prev)})
			continue
		}
		names[s.Name] = file
		loaded = append(loaded, LoadedScenario{Path: file, Scenario: s})
	}
	return loaded, errs
}

func isScenarioFile(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".yaml" || ext == ".yml"
}
