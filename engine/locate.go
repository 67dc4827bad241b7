package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/wippyai/fastsheet/errors"
)

// EnvLibraryPath lists extra directories searched for the decoder
// artifact, separated by the platform's list separator.
const EnvLibraryPath = "FASTSHEET_LIBRARY_PATH"

// DefaultName is the artifact base name used when Config.Name is empty.
const DefaultName = "fastsheet"

// Candidates returns the artifact file names tried in each search
// directory, most specific first.
func Candidates(name string) []string {
	if name == "" {
		name = DefaultName
	}
	return []string{
		fmt.Sprintf("%s-%s-%s.wasm", name, runtime.GOOS, runtime.GOARCH),
		name + ".wasm",
	}
}

// SearchPaths returns the directories Locate walks, in order: the
// configured paths, then EnvLibraryPath, then the executable's directory
// and the working directory.
func SearchPaths(cfg *Config) []string {
	var dirs []string
	if cfg != nil {
		dirs = append(dirs, cfg.SearchPaths...)
	}
	if env := os.Getenv(EnvLibraryPath); env != "" {
		dirs = append(dirs, filepath.SplitList(env)...)
	}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	return append(dirs, ".")
}

// Locate finds the decoder artifact for the running platform. A search
// path that names a regular file is taken as the artifact itself.
func Locate(cfg *Config) (string, error) {
	name := ""
	if cfg != nil {
		name = cfg.Name
	}
	names := Candidates(name)
	dirs := SearchPaths(cfg)

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if fi, err := os.Stat(dir); err == nil && fi.Mode().IsRegular() {
			return dir, nil
		}
		for _, n := range names {
			p := filepath.Join(dir, n)
			if fi, err := os.Stat(p); err == nil && fi.Mode().IsRegular() {
				return p, nil
			}
		}
	}

	return "", errors.LibraryLoad(
		fmt.Sprintf("no decoder library %v in %v", names, dirs), nil)
}
