package datasource

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/spectra/pkg/model"
)

// WriteJSON writes nodes as an indented JSON array.
func WriteJSON(path string, nodes []model.Node) error {
	data, err := json.MarshalIndent(model.NormalizeAll(nodes), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding nodes: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// WriteJSONL writes one node object per line.
func WriteJSONL(path string, nodes []model.Node) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, n := range model.NormalizeAll(nodes) {
		if err := enc.Encode(n); err != nil {
			f.Close()
			return fmt.Errorf("encoding node %s: %w", n.ID, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteValue writes any JSON-encodable dataset, such as the mock engine's
// patient cohort, as indented JSON.
func WriteValue(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	return writeFile(path, append(data, '\n'))
}

// Write stores nodes at dest, choosing the format like Parse does. Mock
// and HTTP destinations are rejected.
func Write(ctx context.Context, dest string, nodes []model.Node) error {
	src, err := Parse(dest)
	if err != nil {
		return err
	}
	switch src.Type {
	case SourceTypeJSON:
		return WriteJSON(src.Location, nodes)
	case SourceTypeJSONL:
		return WriteJSONL(src.Location, nodes)
	case SourceTypeSQLite:
		return WriteSQLite(ctx, src.Location, nodes)
	case SourceTypeRedis:
		return WriteRedis(ctx, src.Location, nodes)
	default:
		return fmt.Errorf("cannot write nodes to %s source", src.Type)
	}
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
