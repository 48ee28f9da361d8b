package export

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/spectra/pkg/netcanvas"
	"github.com/vanderheijden86/spectra/pkg/testutil"
	"github.com/vanderheijden86/spectra/pkg/theme"
)

func TestSaveFrameSnapshotPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	nodes := testutil.QuickHubs(40, 4)
	sum, err := SaveFrameSnapshot(FrameSnapshotOptions{
		Path:    path,
		Nodes:   nodes,
		Width:   640,
		Height:  360,
		Warmup:  10,
		Options: netcanvas.Options{Seed: 7},
	})
	if err != nil {
		t.Fatal(err)
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
	if b := img.Bounds(); b.Dx() != 640 || b.Dy() != 360 {
		t.Errorf("image = %dx%d", b.Dx(), b.Dy())
	}

	if sum.Nodes != 40 || sum.Hubs != 4 || sum.Frames != 10 {
		t.Errorf("summary = %+v", sum)
	}
	if sum.MaxDistance != netcanvas.AdaptiveDistance(640) {
		t.Errorf("max distance = %v", sum.MaxDistance)
	}
	if sum.Title != "Network Snapshot" || sum.Theme != theme.Default().Label {
		t.Errorf("title %q theme %q", sum.Title, sum.Theme)
	}
}

func TestSaveFrameSnapshotSVG(t *testing.T) {
	dir := t.TempDir()
	dark, _ := theme.Lookup("dark")
	opts := FrameSnapshotOptions{
		Path:    filepath.Join(dir, "a.svg"),
		Title:   "Tumour network",
		Nodes:   testutil.QuickHubs(30, 3),
		Theme:   dark,
		Width:   800,
		Height:  600,
		Warmup:  5,
		Options: netcanvas.Options{Seed: 42},
	}
	sum, err := SaveFrameSnapshot(opts)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(opts.Path)
	if err != nil {
		t.Fatal(err)
	}
	body := string(data)
	for _, want := range []string{`width="800"`, "Tumour network", "Legend", "data_hash: " + sum.DataHash, "#0b1120"} {
		if !strings.Contains(body, want) {
			t.Errorf("svg missing %q", want)
		}
	}

	// same seed, same picture
	opts.Path = filepath.Join(dir, "b.svg")
	if _, err := SaveFrameSnapshot(opts); err != nil {
		t.Fatal(err)
	}
	again, _ := os.ReadFile(opts.Path)
	if string(again) != body {
		t.Error("seeded snapshots differ")
	}
}

// An empty network draws only the themed background, so the document is
// byte-stable across platforms.
func TestSaveFrameSnapshotGolden(t *testing.T) {
	dark, _ := theme.Lookup("dark")
	path := filepath.Join(t.TempDir(), "empty.svg")
	if _, err := SaveFrameSnapshot(FrameSnapshotOptions{
		Path:      path,
		Theme:     dark,
		Width:     320,
		Height:    180,
		Warmup:    3,
		NoSummary: true,
	}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	testutil.NewGoldenFile(t, "testdata", "empty_dark.svg").Assert(string(data))
}

func TestSaveFrameSnapshotNoSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.svg")
	if _, err := SaveFrameSnapshot(FrameSnapshotOptions{
		Path: path, Nodes: testutil.QuickNodes(5), Width: 200, Height: 100, NoSummary: true,
	}); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "Legend") {
		t.Error("NoSummary snapshot still has a legend")
	}
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		format, path      string
		wantFmt, wantPath string
		wantErr           bool
	}{
		{"", "out.png", "png", "out.png", false},
		{"", "out.SVG", "svg", "out.SVG", false},
		{"", "out", "svg", "out.svg", false},
		{".png", "out.img", "png", "out.img", false},
		{"gif", "out.gif", "", "", true},
		{"png", "", "", "", true},
	}
	for _, tt := range tests {
		f, p, err := resolveFormat(tt.format, tt.path)
		if (err != nil) != tt.wantErr || f != tt.wantFmt || p != tt.wantPath {
			t.Errorf("resolveFormat(%q, %q) = %q, %q, %v", tt.format, tt.path, f, p, err)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdefgh", 5); got != "ab..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abc", 5); got != "abc" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abcdef", 2); got != "ab" {
		t.Errorf("truncate = %q", got)
	}
}
