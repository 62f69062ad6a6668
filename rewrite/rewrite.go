// Package rewrite expands the unconst invocations in Rust source files.
// Text outside of invocation sites is preserved byte for byte.
package rewrite

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/eaburns/unconst/expand"
	"github.com/eaburns/unconst/mod"
	"github.com/eaburns/unconst/token"
	"github.com/eaburns/unconst/verify"
)

// DefaultName is the default macro and attribute name.
const DefaultName = "unconst_trait_impl"

// Options control how sites are found and expanded.
type Options struct {
	// MacroNames are the function-like macro names to expand.
	// If nil, DefaultName is used.
	MacroNames []string
	// AttrNames are the attribute names to expand.
	// If nil, DefaultName is used.
	AttrNames []string
	// Marker is the trait whose ~const bounds are removed.
	Marker string
	// Debug expands function-like sites to a string constant.
	Debug bool
	// KeepGoing replaces failed sites with compile_error! invocations
	// instead of failing the file.
	KeepGoing bool
	// Verify checks each expansion with the Rust grammar.
	Verify bool
}

func (o Options) macroNames() []string {
	if o.MacroNames == nil {
		return []string{DefaultName}
	}
	return o.MacroNames
}

func (o Options) attrNames() []string {
	if o.AttrNames == nil {
		return []string{DefaultName}
	}
	return o.AttrNames
}

// A Result is the outcome of rewriting a single file.
type Result struct {
	// Path is the path of the file read.
	Path string
	// Sites is the number of invocation sites found.
	Sites int
	// Orig is the original text, and Text is the rewritten text.
	Orig, Text string
	// Changed is whether Text differs from Orig.
	Changed bool
	// Errs are the failed sites that were replaced by compile_error!.
	// It is only non-empty with Options.KeepGoing.
	Errs []*ParseError
}

// A Rewriter rewrites files.
type Rewriter struct {
	// Fs is the filesystem files are read from and written to.
	Fs afero.Fs
	// Log receives progress and failures.
	Log logrus.FieldLogger
	// Opts control expansion.
	Opts Options
	// Jobs is the maximum number of files to rewrite at once.
	// If less than 1, files are rewritten one at a time.
	Jobs int
}

// New returns a new Rewriter.
func New(fs afero.Fs, log logrus.FieldLogger, opts Options) *Rewriter {
	return &Rewriter{Fs: fs, Log: log, Opts: opts, Jobs: 1}
}

// Source rewrites the text of a file.
// The path is used for error messages.
func (rw *Rewriter) Source(ctx context.Context, path, text string) (*Result, error) {
	log := rw.Log.WithField("path", path)
	res := &Result{Path: path, Orig: text, Text: text}
	ts, err := token.Lex(text)
	if err != nil {
		return nil, newParseError(path, text, expand.Range(err), err)
	}
	sites := FindSites(ts, rw.Opts)
	res.Sites = len(sites)
	if len(sites) == 0 {
		log.Debug("no sites")
		return res, nil
	}

	var s strings.Builder
	prev := 0
	for _, site := range sites {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		indent := lineIndent(text, site.Range[0])
		repl, err := rw.expand(ctx, site, indent)
		if err != nil {
			perr := newParseError(path, text, site.Range, err)
			if !rw.Opts.KeepGoing {
				return nil, perr
			}
			log.WithField("loc", perr.Pos()).Warn(perr.Msg())
			res.Errs = append(res.Errs, perr)
			repl = token.Format(expand.CompileError(err), indent)
		}
		log.WithField("kind", site.Kind).Debugf("expanded %s", site.Name)
		s.WriteString(text[prev:site.Range[0]])
		s.WriteString(repl)
		prev = site.Range[1]
	}
	s.WriteString(text[prev:])
	res.Text = s.String()
	res.Changed = res.Text != text
	log.WithField("sites", len(sites)).Info("rewrote")
	return res, nil
}

func (rw *Rewriter) expand(ctx context.Context, site Site, indent string) (string, error) {
	opts := expand.Options{Marker: rw.Opts.Marker}
	var out token.Stream
	var err error
	switch {
	case site.Kind == AttrSite:
		out, err = expand.Attr(site.Args, site.Input, opts)
	case rw.Opts.Debug:
		out, err = expand.Debug(site.Input, opts)
	default:
		out, err = expand.Item(site.Input, opts)
	}
	if err != nil {
		return "", err
	}
	text := token.Format(out, indent)
	if rw.Opts.Verify {
		errs, err := verify.Source(ctx, text)
		if err != nil {
			return "", err
		}
		if len(errs) > 0 {
			return "", token.Errorf(site.Range, fmt.Sprintf("expansion is not valid Rust: %s", errs[0]))
		}
	}
	return text, nil
}

// File rewrites the file at path.
// The file is not written.
func (rw *Rewriter) File(ctx context.Context, path string) (*Result, error) {
	data, err := afero.ReadFile(rw.Fs, path)
	if err != nil {
		return nil, err
	}
	return rw.Source(ctx, path, string(data))
}

// Files returns the .rs files of the paths,
// which may be files or directories.
func (rw *Rewriter) Files(paths []string) ([]string, error) {
	mods, err := mod.LoadAll(rw.Fs, paths)
	if err != nil {
		return nil, err
	}
	return mod.SrcFiles(mods), nil
}

// Run rewrites the files concurrently, at most Jobs at a time.
// The results are in the order of paths.
// The first error cancels the remaining files.
func (rw *Rewriter) Run(ctx context.Context, paths []string) ([]*Result, error) {
	jobs := rw.Jobs
	if jobs < 1 {
		jobs = 1
	}
	results := make([]*Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := rw.File(gctx, path)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Write writes the result's text back to its file if it changed.
func (rw *Rewriter) Write(res *Result) error {
	if !res.Changed {
		return nil
	}
	return rw.writeFile(res.Path, res.Text)
}

// Template rewrites the template file at path, foo.rs.in,
// into the source file foo.rs,
// writing it even if there are no sites.
func (rw *Rewriter) Template(ctx context.Context, path string) (*Result, error) {
	res, err := rw.File(ctx, path)
	if err != nil {
		return nil, err
	}
	out := mod.OutputPath(path)
	if err := rw.writeFile(out, res.Text); err != nil {
		return nil, err
	}
	rw.Log.WithField("path", out).Info("wrote template output")
	return res, nil
}

func (rw *Rewriter) writeFile(path, text string) error {
	var mode os.FileMode = defaultMode
	if stat, err := rw.Fs.Stat(path); err == nil {
		mode = stat.Mode().Perm()
	}
	if err := afero.WriteFile(rw.Fs, path, []byte(text), mode); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

const defaultMode = 0o644

// ChangedPaths returns the sorted paths of the changed results.
func ChangedPaths(results []*Result) []string {
	var paths []string
	for _, res := range results {
		if res != nil && res.Changed {
			paths = append(paths, res.Path)
		}
	}
	sort.Strings(paths)
	return paths
}
