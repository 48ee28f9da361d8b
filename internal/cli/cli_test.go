package cli

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/spectra/internal/datasource"
	"github.com/vanderheijden86/spectra/pkg/model"
)

func init() {
	color.NoColor = true
}

// run executes the CLI with an isolated config file and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SPECTRA_THEME", "")
	t.Setenv("SPECTRA_SOURCE", "")
	cfg := filepath.Join(t.TempDir(), "config.yaml")

	var out, logs bytes.Buffer
	root := NewRootCommand(&logs)
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetArgs(append([]string{"--config", cfg}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "spectra ") {
		t.Errorf("version output = %q", out)
	}
}

func TestThemesCommand(t *testing.T) {
	out, err := run(t, "themes")
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"modern", "cyber", "midnight"} {
		if !strings.Contains(out, id) {
			t.Errorf("themes output lacks %q:\n%s", id, out)
		}
	}
	if !strings.Contains(out, "*  modern") {
		t.Errorf("default theme not marked:\n%s", out)
	}
}

func TestNodesCommand(t *testing.T) {
	out, err := run(t, "nodes", "-s", "mock:10", "--seed", "3", "--limit", "4")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// header, rule, 4 rows, blank, footer
	if len(lines) != 8 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[2], "P-100") {
		t.Errorf("first row = %q", lines[2])
	}
	if !strings.Contains(lines[len(lines)-1], "4 of 10 nodes, 2 hubs") {
		t.Errorf("footer = %q", lines[len(lines)-1])
	}
}

func TestNodesJSON(t *testing.T) {
	out, err := run(t, "nodes", "-s", "mock-genes:5", "--seed", "1", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var nodes []model.Node
	if err := json.Unmarshal([]byte(out), &nodes); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	if len(nodes) != 5 || nodes[0].ID != "GENE_0" {
		t.Errorf("nodes = %+v", nodes)
	}
}

func TestNodesUnknownSource(t *testing.T) {
	if _, err := run(t, "nodes", "-s", "nodes.xml"); err == nil {
		t.Error("expected an error for an unknown source type")
	}
}

func TestMockRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"nodes.json", "nodes.jsonl", "nodes.db"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			out, err := run(t, "mock", "topology", "-o", path, "-n", "15", "--seed", "9")
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(out, "15 nodes (3 hubs)") {
				t.Errorf("mock output = %q", out)
			}
			nodes, err := datasource.Open(context.Background(), path, datasource.Options{})
			if err != nil {
				t.Fatal(err)
			}
			if len(nodes) != 15 || model.CountImportant(nodes) != 3 {
				t.Errorf("read back %d nodes, %d hubs", len(nodes), model.CountImportant(nodes))
			}
		})
	}
}

func TestMockTableDatasets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cohort.json")
	if _, err := run(t, "mock", "patients", "-o", path, "-n", "7", "--seed", "2"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var patients []map[string]any
	if err := json.Unmarshal(data, &patients); err != nil {
		t.Fatal(err)
	}
	if len(patients) != 7 {
		t.Errorf("wrote %d patients, want 7", len(patients))
	}

	if _, err := run(t, "mock", "patients", "-o", filepath.Join(dir, "cohort.db")); err == nil {
		t.Error("table dataset accepted a sqlite destination")
	}
	if _, err := run(t, "mock", "nope", "-o", path); err == nil {
		t.Error("unknown dataset accepted")
	}

	t.Setenv("XDG_DATA_HOME", dir)
	if _, err := run(t, "mock", "genes", "-n", "4"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "spectra", "genes.json")); err != nil {
		t.Errorf("default destination not written: %v", err)
	}
}

func TestSnapshotCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	out, err := run(t, "snapshot", "-s", "mock:30", "-o", path,
		"--width", "320", "--height", "200", "--warmup", "5", "-t", "cyber")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "30 nodes, 6 hubs") || !strings.Contains(out, "Cyberpunk") {
		t.Errorf("snapshot output = %q", out)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 200 {
		t.Errorf("image is %dx%d, want 320x200", b.Dx(), b.Dy())
	}
}

func TestConfigSourceAndTheme(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfg, []byte("theme = \"ocean\"\nsource = \"mock:6\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SPECTRA_THEME", "")
	t.Setenv("SPECTRA_SOURCE", "")

	var out, logs bytes.Buffer
	root := NewRootCommand(&logs)
	root.SetOut(&out)
	root.SetArgs([]string{"--config", cfg, "themes"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "*  ocean") {
		t.Errorf("configured theme not marked:\n%s", out.String())
	}

	out.Reset()
	root = NewRootCommand(&logs)
	root.SetOut(&out)
	root.SetArgs([]string{"--config", cfg, "nodes", "--seed", "1"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "of 6 nodes") {
		t.Errorf("configured source not used:\n%s", out.String())
	}
}

func TestUnknownThemeWarns(t *testing.T) {
	var out, logs bytes.Buffer
	root := NewRootCommand(&logs)
	root.SetOut(&out)
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "c.yaml"),
		"snapshot", "-s", "mock:3", "-o", filepath.Join(t.TempDir(), "x.svg"), "-t", "nope", "--warmup", "1"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(logs.String(), "unknown theme") {
		t.Errorf("no warning logged: %q", logs.String())
	}
}

func TestReloadLoopAppliesChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nodes.json")
	if err := datasource.WriteJSON(path, []model.Node{{ID: "a", Value: 0.5}}); err != nil {
		t.Fatal(err)
	}

	var logs bytes.Buffer
	a := &app{logger: newLogger(&logs, log.InfoLevel)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan struct{})
	applied := make(chan []model.Node, 1)
	done := make(chan struct{})
	go func() {
		a.reloadLoop(ctx, path, 0, nil, changes, func(n []model.Node) { applied <- n })
		close(done)
	}()

	changes <- struct{}{}
	got := <-applied
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("applied %+v", got)
	}
	close(changes)
	<-done
}

func TestTableAlignsColouredCells(t *testing.T) {
	var buf bytes.Buffer
	table(&buf, []string{"ID", "X"}, [][]string{
		{"\x1b[35mhub\x1b[0m", "1"},
		{"plain", "2"},
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines", len(lines))
	}
	if !strings.HasSuffix(lines[2], "hub\x1b[0m    1") {
		t.Errorf("coloured row misaligned: %q", lines[2])
	}
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spectra.toml")
	if _, err := run(t, "config", "init", path); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "config", "init", path); err == nil {
		t.Error("init overwrote an existing file without --force")
	}
	if _, err := run(t, "config", "init", path, "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}

	var out, logs bytes.Buffer
	root := NewRootCommand(&logs)
	root.SetOut(&out)
	root.SetArgs([]string{"--config", path, "config", "show"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"theme: modern", "source: mock:50", "127.0.0.1:8000"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("config show lacks %q:\n%s", want, out.String())
		}
	}
}
