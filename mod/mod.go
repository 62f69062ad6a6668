// Package mod loads the Rust source file lists of crate directories.
package mod

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

const (
	// SrcExt is the extension of Rust source files.
	SrcExt = ".rs"
	// TemplateExt is the extension of template files.
	// A template foo.rs.in is rewritten into foo.rs.
	TemplateExt = ".rs.in"
)

// A Mod contains the source file lists for a single path.
type Mod struct {
	// SrcPath is the source file or directory path as given.
	SrcPath string
	// SrcDir is SrcPath if it is a directory,
	// otherwise the directory containing it.
	SrcDir string
	// SrcFiles contains the .rs file paths in alphabetical order.
	SrcFiles []string
	// TemplateFiles contains the .rs.in file paths in alphabetical order.
	TemplateFiles []string
	// Dirs contains the directories searched, SrcDir first.
	Dirs []string
}

// Load returns a *Mod for srcPath,
// which may be a single source file or a directory.
// Directories are searched recursively,
// skipping hidden directories and target directories.
func Load(fs afero.Fs, srcPath string) (*Mod, error) {
	srcPath = filepath.Clean(srcPath)
	stat, err := fs.Stat(srcPath)
	if err != nil {
		return nil, err
	}
	m := &Mod{SrcPath: srcPath, SrcDir: srcPath}
	if !stat.IsDir() {
		m.SrcDir = filepath.Dir(srcPath)
		m.Dirs = []string{m.SrcDir}
		switch {
		case strings.HasSuffix(srcPath, TemplateExt):
			m.TemplateFiles = []string{srcPath}
		default:
			m.SrcFiles = []string{srcPath}
		}
		return m, nil
	}
	err = afero.Walk(fs, srcPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != srcPath && skipDir(info.Name()) {
				return filepath.SkipDir
			}
			m.Dirs = append(m.Dirs, path)
			return nil
		}
		switch {
		case strings.HasSuffix(path, TemplateExt):
			m.TemplateFiles = append(m.TemplateFiles, path)
		case strings.HasSuffix(path, SrcExt):
			m.SrcFiles = append(m.SrcFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(m.SrcFiles)
	sort.Strings(m.TemplateFiles)
	return m, nil
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "target"
}

// LoadAll loads each of the paths.
func LoadAll(fs afero.Fs, paths []string) ([]*Mod, error) {
	var mods []*Mod
	for _, p := range paths {
		m, err := Load(fs, p)
		if err != nil {
			return nil, err
		}
		mods = append(mods, m)
	}
	return mods, nil
}

// SrcFiles returns the source files of all mods
// in alphabetical order without duplicates.
func SrcFiles(mods []*Mod) []string {
	var files []string
	for _, m := range mods {
		files = append(files, m.SrcFiles...)
	}
	return dedup(files)
}

// TemplateFiles returns the template files of all mods
// in alphabetical order without duplicates.
func TemplateFiles(mods []*Mod) []string {
	var files []string
	for _, m := range mods {
		files = append(files, m.TemplateFiles...)
	}
	return dedup(files)
}

func dedup(files []string) []string {
	sort.Strings(files)
	var i int
	for _, f := range files {
		if i == 0 || f != files[i-1] {
			files[i] = f
			i++
		}
	}
	return files[:i]
}

// OutputPath returns the path of the source file
// that a template file is rewritten into.
func OutputPath(template string) string {
	return strings.TrimSuffix(template, TemplateExt) + SrcExt
}
