package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/eaburns/unconst/config"
)

type testState struct {
	*globalState
	stdout, stderr *bytes.Buffer
}

func newTestState(t *testing.T, env map[string]string, args ...string) *testState {
	t.Helper()
	var stdout, stderr bytes.Buffer
	mu := &sync.Mutex{}
	gs := &globalState{
		ctx:  context.Background(),
		fs:   afero.NewMemMapFs(),
		args: append([]string{"unconst"}, args...),
		lookupEnv: func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		},
		stdin:  strings.NewReader(""),
		stdout: &consoleWriter{&stdout, false, mu},
		stderr: &consoleWriter{&stderr, false, mu},
		logger: &logrus.Logger{
			Out:       &stderr,
			Formatter: new(logrus.TextFormatter),
			Hooks:     make(logrus.LevelHooks),
			Level:     logrus.InfoLevel,
		},
		flags: globalFlags{logFormat: "text"},
	}
	return &testState{globalState: gs, stdout: &stdout, stderr: &stderr}
}

func (ts *testState) writeFile(t *testing.T, path, text string) {
	t.Helper()
	require.NoError(t, ts.fs.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(ts.fs, path, []byte(text), 0o644))
}

func (ts *testState) readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := afero.ReadFile(ts.fs, path)
	require.NoError(t, err)
	return string(data)
}

func TestExpand(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		stdin string
		want  string
	}{
		{
			name:  "item",
			args:  []string{"expand"},
			stdin: "impl<T: ~const Drop + ~const Clone> const Default for X<T> { fn default() -> Self { X } }",
			want:  "impl<T: Clone> Default for X<T> {\n    fn default() -> Self { X }\n}\n",
		},
		{
			name:  "dash",
			args:  []string{"expand", "-"},
			stdin: "impl const Trait for X {}",
			want:  "impl Trait for X {}\n",
		},
		{
			name:  "marker flag",
			args:  []string{"expand", "--marker", "Destruct"},
			stdin: "impl<T: ~const Destruct> const Trait for X<T> {}",
			want:  "impl<T> Trait for X<T> {}\n",
		},
		{
			name:  "debug string",
			args:  []string{"--debug-string", "expand"},
			stdin: "impl const Trait for X {}",
			want:  "const _: &str = \"impl Trait for X {}\";\n",
		},
		{
			name:  "attribute",
			args:  []string{"expand", "--as-attr", "--attr-args", "ignored", "--debug-string"},
			stdin: "impl const Trait for X {}",
			want:  "impl Trait for X {}\n",
		},
		{
			name:  "keep going",
			args:  []string{"expand", "-k"},
			stdin: "impl Type {}",
			want:  "::core::compile_error! { \"expected trait impl block\" }\n",
		},
		{
			name:  "verify",
			args:  []string{"expand", "--verify"},
			stdin: "impl<T: ~const Drop> const Trait for X<T> where T: Copy { fn f(&self) {} }",
			want:  "impl<T> Trait for X<T> where T: Copy {\n    fn f(&self) {}\n}\n",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ts := newTestState(t, nil, test.args...)
			ts.stdin = strings.NewReader(test.stdin)
			require.Equal(t, 0, execute(ts.globalState), "stderr: %s", ts.stderr)
			assert.Equal(t, test.want, ts.stdout.String())
		})
	}
}

func TestExpandFile(t *testing.T) {
	ts := newTestState(t, nil, "expand", "/in.rs")
	ts.writeFile(t, "/in.rs", "impl<'a, T: ~const Drop> const Trait<'a> for &'a T {}")
	require.Equal(t, 0, execute(ts.globalState), "stderr: %s", ts.stderr)
	assert.Equal(t, "impl<'a, T> Trait<'a> for &'a T {}\n", ts.stdout.String())
}

func TestExpandError(t *testing.T) {
	ts := newTestState(t, nil, "expand")
	ts.stdin = strings.NewReader("impl Type {}")
	assert.Equal(t, 1, execute(ts.globalState))
	assert.Empty(t, ts.stdout.String())
	assert.Contains(t, ts.stderr.String(), "expected trait impl block")
}

func TestExpandVerboseErrorTree(t *testing.T) {
	ts := newTestState(t, nil, "-v", "expand")
	ts.stdin = strings.NewReader("impl Type {}")
	assert.Equal(t, 1, execute(ts.globalState))
	assert.Contains(t, ts.stderr.String(), "Impl")
}

func TestRewrite(t *testing.T) {
	const (
		src  = "unconst_trait_impl! { impl<T: ~const Drop> const Trait for X<T> {} }\n"
		want = "impl<T> Trait for X<T> {}\n"
	)
	t.Run("stdout", func(t *testing.T) {
		ts := newTestState(t, nil, "rewrite", "/crate")
		ts.writeFile(t, "/crate/src/lib.rs", src)
		require.Equal(t, 0, execute(ts.globalState), "stderr: %s", ts.stderr)
		assert.Equal(t, want, ts.stdout.String())
		assert.Equal(t, src, ts.readFile(t, "/crate/src/lib.rs"))
	})
	t.Run("stdin", func(t *testing.T) {
		ts := newTestState(t, nil, "rewrite")
		ts.stdin = strings.NewReader(src)
		require.Equal(t, 0, execute(ts.globalState), "stderr: %s", ts.stderr)
		assert.Equal(t, want, ts.stdout.String())
	})
	t.Run("write and list", func(t *testing.T) {
		ts := newTestState(t, nil, "rewrite", "-w", "-l", "/crate")
		ts.writeFile(t, "/crate/src/lib.rs", src)
		ts.writeFile(t, "/crate/src/other.rs", "fn f() {}\n")
		require.Equal(t, 0, execute(ts.globalState), "stderr: %s", ts.stderr)
		assert.Equal(t, "/crate/src/lib.rs\n", ts.stdout.String())
		assert.Equal(t, want, ts.readFile(t, "/crate/src/lib.rs"))
		assert.Equal(t, "fn f() {}\n", ts.readFile(t, "/crate/src/other.rs"))
	})
	t.Run("diff exit code", func(t *testing.T) {
		ts := newTestState(t, nil, "rewrite", "-d", "--exit-code", "/crate/src/lib.rs")
		ts.writeFile(t, "/crate/src/lib.rs", src)
		assert.Equal(t, 2, execute(ts.globalState))
		out := ts.stdout.String()
		assert.Contains(t, out, "--- /crate/src/lib.rs.orig\n")
		assert.Contains(t, out, "+++ /crate/src/lib.rs\n")
		assert.Contains(t, out, "-"+src)
		assert.Contains(t, out, "+"+want)
	})
	t.Run("unchanged exit code", func(t *testing.T) {
		ts := newTestState(t, nil, "rewrite", "-l", "--exit-code", "/crate")
		ts.writeFile(t, "/crate/src/lib.rs", "fn f() {}\n")
		assert.Equal(t, 0, execute(ts.globalState))
		assert.Empty(t, ts.stdout.String())
	})
	t.Run("write stdin", func(t *testing.T) {
		ts := newTestState(t, nil, "rewrite", "-w")
		assert.Equal(t, 1, execute(ts.globalState))
	})
	t.Run("error", func(t *testing.T) {
		ts := newTestState(t, nil, "rewrite", "-w", "/crate")
		ts.writeFile(t, "/crate/src/lib.rs", "unconst_trait_impl! { impl X {} }\n")
		assert.Equal(t, 1, execute(ts.globalState))
		assert.Contains(t, ts.stderr.String(), "expected trait impl block")
		assert.Equal(t, "unconst_trait_impl! { impl X {} }\n", ts.readFile(t, "/crate/src/lib.rs"))
	})
}

func TestConfig(t *testing.T) {
	const src = "unconst! { impl<T: ~const Destruct> const Trait for X<T> {} }\n"
	const want = "impl<T> Trait for X<T> {}\n"

	t.Run("file", func(t *testing.T) {
		ts := newTestState(t, nil, "rewrite", "/lib.rs")
		ts.writeFile(t, config.DefaultPath, "macro_names: [unconst]\nmarker_trait: Destruct\n")
		ts.writeFile(t, "/lib.rs", src)
		require.Equal(t, 0, execute(ts.globalState), "stderr: %s", ts.stderr)
		assert.Equal(t, want, ts.stdout.String())
	})
	t.Run("named file", func(t *testing.T) {
		ts := newTestState(t, nil, "-c", "/cfg.yaml", "rewrite", "/lib.rs")
		ts.writeFile(t, "/cfg.yaml", "macro_names: [unconst]\nmarker_trait: Destruct\n")
		ts.writeFile(t, "/lib.rs", src)
		require.Equal(t, 0, execute(ts.globalState), "stderr: %s", ts.stderr)
		assert.Equal(t, want, ts.stdout.String())
	})
	t.Run("env", func(t *testing.T) {
		ts := newTestState(t, map[string]string{
			"UNCONST_MACRO_NAMES":  "unconst",
			"UNCONST_MARKER_TRAIT": "Destruct",
		}, "rewrite", "/lib.rs")
		ts.writeFile(t, "/lib.rs", src)
		require.Equal(t, 0, execute(ts.globalState), "stderr: %s", ts.stderr)
		assert.Equal(t, want, ts.stdout.String())
	})
	t.Run("flags override env", func(t *testing.T) {
		ts := newTestState(t, map[string]string{
			"UNCONST_MACRO_NAMES":  "other",
			"UNCONST_MARKER_TRAIT": "Drop",
		}, "--macro", "unconst", "--marker", "Destruct", "rewrite", "/lib.rs")
		ts.writeFile(t, "/lib.rs", src)
		require.Equal(t, 0, execute(ts.globalState), "stderr: %s", ts.stderr)
		assert.Equal(t, want, ts.stdout.String())
	})
	t.Run("missing named file", func(t *testing.T) {
		ts := newTestState(t, nil, "-c", "/missing.yaml", "version")
		assert.Equal(t, 1, execute(ts.globalState))
	})
	t.Run("bad jobs", func(t *testing.T) {
		ts := newTestState(t, nil, "--jobs", "0", "version")
		assert.Equal(t, 1, execute(ts.globalState))
		assert.Contains(t, ts.stderr.String(), "jobs must be positive")
	})
	t.Run("no names", func(t *testing.T) {
		ts := newTestState(t, nil, "--macro", "", "--attr", "", "version")
		assert.Equal(t, 1, execute(ts.globalState))
	})
}

func TestLogFormat(t *testing.T) {
	ts := newTestState(t, nil, "--log-format", "json", "expand")
	ts.stdin = strings.NewReader("impl Type {}")
	assert.Equal(t, 1, execute(ts.globalState))
	var entry map[string]interface{}
	line := strings.SplitN(ts.stderr.String(), "\n", 2)[0]
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "error", entry["level"])

	ts = newTestState(t, nil, "--log-format", "xml", "version")
	assert.Equal(t, 1, execute(ts.globalState))
	assert.Contains(t, ts.stderr.String(), "unsupported log format")
}

func TestDump(t *testing.T) {
	ts := newTestState(t, nil, "dump", "--project", "/lib.rs")
	ts.writeFile(t, "/lib.rs", "fn f() {}\nunconst_trait_impl! { impl<T: ~const Drop> const Trait for X<T> {} }\n")
	require.Equal(t, 0, execute(ts.globalState), "stderr: %s", ts.stderr)
	out := ts.stdout.String()
	assert.True(t, strings.HasPrefix(out, "/lib.rs:2."), "got %q", out)
	assert.Contains(t, out, "Trait")

	ts = newTestState(t, nil, "dump")
	ts.stdin = strings.NewReader("impl const Trait for X {}")
	require.Equal(t, 0, execute(ts.globalState), "stderr: %s", ts.stderr)
	assert.True(t, strings.HasPrefix(ts.stdout.String(), stdinPath+":1.1"), "got %q", ts.stdout)

	ts = newTestState(t, nil, "dump")
	ts.stdin = strings.NewReader("impl Type {}")
	assert.Equal(t, 1, execute(ts.globalState))
}

func TestVersion(t *testing.T) {
	ts := newTestState(t, nil, "version")
	require.Equal(t, 0, execute(ts.globalState))
	assert.True(t, strings.HasPrefix(ts.stdout.String(), "unconst v"+version+" "), "got %q", ts.stdout)

	ts = newTestState(t, nil, "version", "--json")
	require.Equal(t, 0, execute(ts.globalState))
	var details map[string]string
	require.NoError(t, json.Unmarshal(ts.stdout.Bytes(), &details))
	assert.Equal(t, version, details["version"])
}

func TestWatchOnce(t *testing.T) {
	ts := newTestState(t, nil, "watch", "--once", "/crate")
	ts.writeFile(t, "/crate/src/gen.rs.in", "unconst_trait_impl! { impl const G for X {} }\n")
	ts.writeFile(t, "/crate/src/bad.rs.in", "unconst_trait_impl! { impl G {} }\n")
	require.Equal(t, 0, execute(ts.globalState), "stderr: %s", ts.stderr)
	assert.Equal(t, "impl G for X {}\n", ts.readFile(t, "/crate/src/gen.rs"))
	assert.Contains(t, ts.stderr.String(), "expected trait impl block")
	exists, err := afero.Exists(ts.fs, "/crate/src/bad.rs")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestWatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	ts := newTestState(t, nil)
	ts.fs = afero.NewOsFs()
	ts.conf = config.Default()
	c := &cmdWatch{gs: ts.globalState, ready: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.watch(ctx, []string{dir}) }()

	select {
	case <-c.ready:
	case err := <-done:
		t.Fatalf("watch returned early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for watches")
	}

	template := filepath.Join(dir, "gen.rs.in")
	require.NoError(t, os.WriteFile(template, []byte("unconst_trait_impl! { impl const G for X {} }\n"), 0o644))
	out := filepath.Join(dir, "gen.rs")
	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(out)
		return err == nil && string(data) == "impl G for X {}\n"
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
