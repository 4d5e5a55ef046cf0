package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pbrlib/internal/library"
	"pbrlib/internal/services"
)

type cliEnv struct {
	base       string
	configPath string
	importDir  string
	dataDir    string
}

func setupCLIEnv(t *testing.T) cliEnv {
	t.Helper()
	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Chdir(base)

	env := cliEnv{
		base:       base,
		configPath: filepath.Join(base, "pbrlib.toml"),
		importDir:  filepath.Join(base, "import"),
		dataDir:    filepath.Join(base, "data"),
	}
	if err := os.MkdirAll(filepath.Join(env.importDir, "meta"), 0o755); err != nil {
		t.Fatalf("mkdir import: %v", err)
	}
	body := fmt.Sprintf(`[paths]
import_dir = %q
meta_dir = %q
data_dir = %q
cache_dir = %q

[mixcloud]
api_base_url = "http://127.0.0.1:1"
min_interval_ms = 0

[catalog]
sqlite_enabled = true

[logging]
level = "error"
`, env.importDir, filepath.Join(env.importDir, "meta"), env.dataDir, filepath.Join(env.dataDir, "cache"))
	if err := os.WriteFile(env.configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func (e cliEnv) writeTracklist(t *testing.T, date, rows string) {
	t.Helper()
	body := "order,artist,track,album,duration,tags\n" + rows
	if err := os.WriteFile(filepath.Join(e.importDir, date+".csv"), []byte(body), 0o644); err != nil {
		t.Fatalf("write tracklist: %v", err)
	}
}

func runCLI(t *testing.T, env cliEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestImportThenBrowseShows(t *testing.T) {
	env := setupCLIEnv(t)
	env.writeTracklist(t, "2024-03-01", "1,Artist A,Track X,,180,house\n2,Artist A,Track Y,Album Z,,\n")
	env.writeTracklist(t, "2024-02-01", "1,Artist B,Track Q,,,\n")

	out, _, err := runCLI(t, env, "import")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	requireContains(t, out, "Imported 2 shows")
	requireContains(t, out, "2 added, 0 updated, 0 removed")
	requireContains(t, out, "library.db")

	out, _, err = runCLI(t, env, "shows", "list")
	if err != nil {
		t.Fatalf("shows list: %v", err)
	}
	requireContains(t, out, "2024-03-01")
	requireContains(t, out, "Showing 1-2 of 2")
	if strings.Index(out, "2024-03-01") > strings.Index(out, "2024-02-01") {
		t.Fatalf("expected newest show first:\n%s", out)
	}

	out, _, err = runCLI(t, env, "shows", "get", "2024-03-01", "--json")
	if err != nil {
		t.Fatalf("shows get: %v", err)
	}
	var show library.SnapshotShow
	if err := json.Unmarshal([]byte(out), &show); err != nil {
		t.Fatalf("decode show: %v\n%s", err, out)
	}
	if len(show.Tracks) != 2 || show.Tracks[1].Title != "Track Y" {
		t.Fatalf("unexpected tracks %+v", show.Tracks)
	}

	out, _, err = runCLI(t, env, "shows", "get", "2024-02-01")
	if err != nil {
		t.Fatalf("shows get table: %v", err)
	}
	requireContains(t, out, "Track Q")
	requireContains(t, out, "Artist B")
}

func TestShowsGetUnknownSlug(t *testing.T) {
	env := setupCLIEnv(t)
	env.writeTracklist(t, "2024-03-01", "1,Artist A,Track X,,,\n")
	if _, _, err := runCLI(t, env, "import"); err != nil {
		t.Fatalf("import: %v", err)
	}

	_, _, err := runCLI(t, env, "shows", "get", "missing")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if services.ExitCode(err) != 1 {
		t.Fatalf("expected exit code 1, got %d", services.ExitCode(err))
	}
}

func TestImportNothingToWrite(t *testing.T) {
	env := setupCLIEnv(t)

	out, _, err := runCLI(t, env, "import")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	requireContains(t, out, "nothing to write")
	if _, err := os.Stat(filepath.Join(env.dataDir, "library.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no catalog written, stat err %v", err)
	}
}

func TestImportDeleteRequiresOnly(t *testing.T) {
	env := setupCLIEnv(t)

	_, _, err := runCLI(t, env, "import", "--delete")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if services.ExitCode(err) != 2 {
		t.Fatalf("expected exit code 2, got %d", services.ExitCode(err))
	}
}

func TestImportDeleteRemovesShow(t *testing.T) {
	env := setupCLIEnv(t)
	env.writeTracklist(t, "2024-03-01", "1,Artist A,Track X,,,\n")
	env.writeTracklist(t, "2024-02-01", "1,Artist B,Track Q,,,\n")
	if _, _, err := runCLI(t, env, "import"); err != nil {
		t.Fatalf("import: %v", err)
	}

	out, _, err := runCLI(t, env, "import", "--delete", "--only", "2024-02-01.csv")
	if err != nil {
		t.Fatalf("import --delete: %v", err)
	}
	requireContains(t, out, "1 removed")

	out, _, err = runCLI(t, env, "shows", "list", "--json")
	if err != nil {
		t.Fatalf("shows list: %v", err)
	}
	var shows []library.SnapshotShow
	if err := json.Unmarshal([]byte(out), &shows); err != nil {
		t.Fatalf("decode shows: %v", err)
	}
	if len(shows) != 1 || shows[0].Slug != "2024-03-01" {
		t.Fatalf("expected only 2024-03-01 to remain, got %+v", shows)
	}
}

func TestCacheListAndClear(t *testing.T) {
	env := setupCLIEnv(t)
	cacheDir := filepath.Join(env.dataDir, "cache")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		t.Fatalf("mkdir cache: %v", err)
	}
	for _, name := range []string{"pointbreakradio-2024-03-01-show.json", "pointbreakradio-2024-03-01-embed.html"} {
		if err := os.WriteFile(filepath.Join(cacheDir, name), []byte("{}"), 0o644); err != nil {
			t.Fatalf("write cache entry: %v", err)
		}
	}

	out, _, err := runCLI(t, env, "cache", "list")
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	requireContains(t, out, "pointbreakradio-2024-03-01-show.json")
	requireContains(t, out, "fresh")

	out, _, err = runCLI(t, env, "cache", "clear", "--stale")
	if err != nil {
		t.Fatalf("cache clear --stale: %v", err)
	}
	requireContains(t, out, "Removed 0 stale responses")

	out, _, err = runCLI(t, env, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Removed 2 cached responses")

	out, _, err = runCLI(t, env, "cache", "list")
	if err != nil {
		t.Fatalf("cache list after clear: %v", err)
	}
	requireContains(t, out, "Cache is empty")
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLIEnv(t)

	target := filepath.Join(env.base, "out", "config.toml")
	out, _, err := runCLI(t, env, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	_, _, err = runCLI(t, env, "config", "init", "--path", target)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected refusal to overwrite, got %v", err)
	}
	if _, _, err := runCLI(t, env, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	out, _, err = runCLI(t, env, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	out, _, err = runCLI(t, env, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "# source: "+env.configPath)
	requireContains(t, out, "import_dir")
}

func TestStatusOffline(t *testing.T) {
	env := setupCLIEnv(t)
	env.writeTracklist(t, "2024-03-01", "1,Artist A,Track X,,,\n")
	if _, _, err := runCLI(t, env, "import"); err != nil {
		t.Fatalf("import: %v", err)
	}

	out, _, err := runCLI(t, env, "status", "--offline")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "1 show, 1 track, 1 artist")
	requireContains(t, out, "1 show, 1 show track")
	requireContains(t, out, "not checked (--offline)")
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   *int
		want string
	}{
		{nil, "-"},
		{library.IntPtr(0), "-"},
		{library.IntPtr(185), "3:05"},
		{library.IntPtr(3725), "1:02:05"},
	}
	for _, tc := range cases {
		if got := formatDuration(tc.in); got != tc.want {
			t.Fatalf("formatDuration(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
