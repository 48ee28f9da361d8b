package datasource

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/spectra/pkg/model"
)

// DefaultMaxLineSize bounds a single JSONL line (10MB).
const DefaultMaxLineSize = 10 * 1024 * 1024

// ReadJSONFile reads a JSON node document from path.
func ReadJSONFile(path string, warn func(string)) ([]model.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open node file: %w", err)
	}
	defer f.Close()
	return DecodeJSON(f, warn)
}

// ReadJSONLFile reads one node object per line from path.
func ReadJSONLFile(path string, warn func(string)) ([]model.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open node file: %w", err)
	}
	defer f.Close()
	return DecodeJSONL(f, warn)
}

// DecodeJSON decodes a node array, an object with a "nodes" array, or an
// analyze response carrying network_data.nodes. Entries that cannot be
// decoded are skipped with a warning.
func DecodeJSON(r io.Reader, warn func(string)) ([]model.Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading nodes: %w", err)
	}
	data = bytes.TrimSpace(stripBOM(data))
	if len(data) == 0 {
		return nil, fmt.Errorf("empty node document")
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing nodes: %w", err)
	}

	entries, err := nodeEntries(doc)
	if err != nil {
		return nil, err
	}
	return decodeEntries(entries, warnOrDiscard(warn)), nil
}

func nodeEntries(doc any) ([]any, error) {
	switch v := doc.(type) {
	case []any:
		return v, nil
	case map[string]any:
		if nodes, ok := v["nodes"].([]any); ok {
			return nodes, nil
		}
		if nd, ok := v["network_data"].(map[string]any); ok {
			if nodes, ok := nd["nodes"].([]any); ok {
				return nodes, nil
			}
		}
		return nil, fmt.Errorf("object has no nodes array")
	default:
		return nil, fmt.Errorf("expected a node array or object, got %T", doc)
	}
}

func decodeEntries(entries []any, warn func(string)) []model.Node {
	nodes := make([]model.Node, 0, len(entries))
	for i, e := range entries {
		obj, ok := e.(map[string]any)
		if !ok {
			warn(fmt.Sprintf("skipping node %d: expected an object, got %T", i, e))
			continue
		}
		nodes = append(nodes, decodeNode(obj, func(msg string) {
			warn(fmt.Sprintf("node %d: %s", i, msg))
		}))
	}
	return nodes
}

// DecodeJSONL decodes one node object per line. Blank lines are ignored;
// malformed lines are skipped with a warning.
func DecodeJSONL(r io.Reader, warn func(string)) ([]model.Node, error) {
	warn = warnOrDiscard(warn)
	reader := bufio.NewReaderSize(r, 64*1024)

	var nodes []model.Node
	lineNum := 0
	for {
		lineNum++
		line, err := readLine(reader)
		if err == io.EOF {
			break
		}
		if err == errLineTooLong {
			warn(fmt.Sprintf("skipping line %d: line too long (exceeds %d bytes)", lineNum, DefaultMaxLineSize))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("error reading nodes stream at line %d: %w", lineNum, err)
		}
		if lineNum == 1 {
			line = stripBOM(line)
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		var obj map[string]any
		if err := json.Unmarshal(line, &obj); err != nil {
			warn(fmt.Sprintf("skipping malformed JSON on line %d: %v", lineNum, err))
			continue
		}
		n := lineNum
		nodes = append(nodes, decodeNode(obj, func(msg string) {
			warn(fmt.Sprintf("line %d: %s", n, msg))
		}))
	}
	return nodes, nil
}

var errLineTooLong = fmt.Errorf("line too long")

func readLine(r *bufio.Reader) ([]byte, error) {
	var buf []byte
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			if err == io.EOF && len(buf) > 0 {
				return buf, nil
			}
			return nil, err
		}
		buf = append(buf, chunk...)
		if len(buf) > DefaultMaxLineSize {
			for isPrefix {
				if _, isPrefix, err = r.ReadLine(); err != nil {
					break
				}
			}
			return nil, errLineTooLong
		}
		if !isPrefix {
			return buf, nil
		}
	}
}

// decodeNode maps the loosely typed fields of the dashboard payloads onto a
// Node. Importance comes from isOncogene, important, hub or a Driver type;
// value from value, val or weight in [0,1], or expression in [0,100].
func decodeNode(obj map[string]any, warn func(string)) model.Node {
	var n model.Node
	n.ID = str(obj, "id", "patient_id", "gene")
	n.Label = str(obj, "label", "name", "title")
	n.Kind = str(obj, "kind", "type")

	for _, key := range []string{"isOncogene", "important", "hub"} {
		if v, ok := obj[key]; ok {
			b, err := toBool(v)
			if err != nil {
				warn(fmt.Sprintf("%s: %v", key, err))
				continue
			}
			n.Important = n.Important || b
		}
	}
	if strings.EqualFold(n.Kind, "driver") {
		n.Important = true
	}

	scale := 1.0
	key, raw, ok := first(obj, "value", "val", "weight")
	if !ok {
		key, raw, ok = first(obj, "expression")
		scale = 100
	}
	if ok {
		f, err := toFloat(raw)
		switch {
		case err != nil:
			warn(fmt.Sprintf("%s: %v", key, err))
		default:
			v := f / scale
			if v < 0 || v > 1 {
				warn(fmt.Sprintf("%s %v out of range, clamped", key, f))
			}
			n.Value = model.ClampUnit(v)
		}
	}
	return n
}

func first(obj map[string]any, keys ...string) (string, any, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return k, v, true
		}
	}
	return "", nil, false
}

func str(obj map[string]any, keys ...string) string {
	_, v, ok := first(obj, keys...)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprint(s)
	}
}

func toFloat(v any) (float64, error) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case json.Number:
		var err error
		if f, err = x.Float64(); err != nil {
			return 0, err
		}
	case string:
		var err error
		if f, err = strconv.ParseFloat(strings.TrimSpace(x), 64); err != nil {
			return 0, fmt.Errorf("not a number: %q", x)
		}
	case bool:
		if x {
			f = 1
		}
	default:
		return 0, fmt.Errorf("not a number: %v", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not finite")
	}
	return f, nil
}

func toBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case float64:
		return x != 0, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		if err != nil {
			return false, fmt.Errorf("not a boolean: %q", x)
		}
		return b, nil
	default:
		return false, fmt.Errorf("not a boolean: %v", v)
	}
}

func stripBOM(b []byte) []byte {
	return bytes.TrimPrefix(b, []byte{0xEF, 0xBB, 0xBF})
}

func warnOrDiscard(warn func(string)) func(string) {
	if warn == nil {
		return func(string) {}
	}
	return warn
}
