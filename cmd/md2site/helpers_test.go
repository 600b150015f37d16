package main

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Test Infrastructure
// ---------------------------------------------------------------------------

// testClock returns a fixed time so durations in logs are deterministic.
func testClock() time.Time {
	return time.Date(2016, time.May, 19, 10, 0, 0, 0, time.UTC)
}

// newTestEnv returns an Environment reading vars instead of the process
// environment, with stdout and stderr captured.
func newTestEnv(vars map[string]string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:    testClock,
		Stdout: &stdout,
		Stderr: &stderr,
		Getenv: func(key string) string { return vars[key] },
		Environ: func() []string {
			kv := make([]string, 0, len(vars))
			for k, v := range vars {
				kv = append(kv, k+"="+v)
			}
			sort.Strings(kv)
			return kv
		},
	}
	return env, &stdout, &stderr
}

// writeFile writes content to root/rel, creating parent directories.
func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
	return p
}

func exists(root, rel string) bool {
	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	return err == nil
}

// siteConfig disables the external bundler and static copies so a test
// site only needs the files it writes.
const siteConfig = `bundles:
  command: []
copy: []
`

// newTestSite creates a project with md2site.yaml and one page per
// default collection. Returns the project root and the config path.
func newTestSite(t *testing.T, config string) (string, string) {
	t.Helper()
	root := t.TempDir()
	cfgPath := writeFile(t, root, "md2site.yaml", config)
	writeFile(t, root, "app/index.md", "---\ntitle: Home\n---\n# Welcome\n\nHello.\n")
	writeFile(t, root, "app/blog/first.md", "---\ntitle: First\npublished: 2016-05-19\n---\n## Hello\n")
	return root, cfgPath
}
