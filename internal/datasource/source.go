// Package datasource resolves a source string into the node list the
// canvas renders. Sources are mock generators, JSON and JSONL files,
// SQLite databases, Redis keys and the mock backend's HTTP endpoints.
package datasource

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vanderheijden86/spectra/pkg/metrics"
	"github.com/vanderheijden86/spectra/pkg/mock"
	"github.com/vanderheijden86/spectra/pkg/model"
)

// SourceType identifies where nodes come from.
type SourceType string

const (
	SourceTypeMock     SourceType = "mock"
	SourceTypeProteins SourceType = "mock-proteins"
	SourceTypeGenes    SourceType = "mock-genes"
	SourceTypeJSON     SourceType = "json"
	SourceTypeJSONL    SourceType = "jsonl"
	SourceTypeSQLite   SourceType = "sqlite"
	SourceTypeRedis    SourceType = "redis"
	SourceTypeHTTP     SourceType = "http"
)

// DefaultMockCount is the node count of a bare "mock" source.
const DefaultMockCount = 50

// DefaultRedisKey is read when a redis URL carries no key parameter.
const DefaultRedisKey = "spectra:nodes"

// Source is a parsed source string.
type Source struct {
	Type SourceType `json:"type"`
	// Location is the file path or URL; empty for mock sources.
	Location string `json:"location,omitempty"`
	// Count is the generated node count of mock sources.
	Count int `json:"count,omitempty"`
	// Key is the Redis key.
	Key string `json:"key,omitempty"`
}

// String returns a human-readable description of the source.
func (s Source) String() string {
	switch s.Type {
	case SourceTypeMock, SourceTypeProteins, SourceTypeGenes:
		return fmt.Sprintf("%s (%d nodes)", s.Type, s.Count)
	case SourceTypeRedis:
		return fmt.Sprintf("%s (key %s)", s.Location, s.Key)
	default:
		return fmt.Sprintf("%s (%s)", s.Location, s.Type)
	}
}

// IsFile reports whether the source is a local file that can be watched.
func (s Source) IsFile() bool {
	switch s.Type {
	case SourceTypeJSON, SourceTypeJSONL, SourceTypeSQLite:
		return true
	}
	return false
}

// Parse interprets a source string:
//
//	mock[:n]  mock-proteins[:n]  mock-genes[:n]
//	nodes.json  nodes.jsonl  nodes.db  nodes.sqlite
//	redis://host:6379/0?key=spectra:nodes
//	http://127.0.0.1:8000/api/analyze
func Parse(spec string) (Source, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Source{}, fmt.Errorf("empty source")
	}

	for _, t := range []SourceType{SourceTypeProteins, SourceTypeGenes, SourceTypeMock} {
		prefix := string(t)
		if spec != prefix && !strings.HasPrefix(spec, prefix+":") {
			continue
		}
		count := DefaultMockCount
		if rest := strings.TrimPrefix(spec, prefix); rest != "" {
			n, err := strconv.Atoi(rest[1:])
			if err != nil || n < 0 {
				return Source{}, fmt.Errorf("invalid node count in %q", spec)
			}
			count = n
		}
		return Source{Type: t, Count: count}, nil
	}

	if u, err := url.Parse(spec); err == nil && u.Scheme != "" && u.Host != "" {
		switch u.Scheme {
		case "redis", "rediss":
			key := u.Query().Get("key")
			if key == "" {
				key = DefaultRedisKey
			}
			return Source{Type: SourceTypeRedis, Location: spec, Key: key}, nil
		case "http", "https":
			return Source{Type: SourceTypeHTTP, Location: spec}, nil
		default:
			return Source{}, fmt.Errorf("unsupported source scheme %q", u.Scheme)
		}
	}

	switch strings.ToLower(filepath.Ext(spec)) {
	case ".json":
		return Source{Type: SourceTypeJSON, Location: spec}, nil
	case ".jsonl", ".ndjson":
		return Source{Type: SourceTypeJSONL, Location: spec}, nil
	case ".db", ".sqlite", ".sqlite3":
		return Source{Type: SourceTypeSQLite, Location: spec}, nil
	}
	return Source{}, fmt.Errorf("cannot determine source type of %q", spec)
}

// Options configures loading.
type Options struct {
	// Seed seeds mock sources; zero seeds from the clock.
	Seed int64
	// Client performs HTTP requests; nil uses a client with a 10s timeout.
	Client *http.Client
	// Warn receives per-entry decoding problems. Nil logs them at warn level.
	Warn func(msg string)
}

func (o Options) warn() func(string) {
	if o.Warn != nil {
		return o.Warn
	}
	return func(msg string) { log.Warn(msg) }
}

func (o Options) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// Open parses spec and loads its nodes.
func Open(ctx context.Context, spec string, opts Options) ([]model.Node, error) {
	src, err := Parse(spec)
	if err != nil {
		return nil, err
	}
	return Load(ctx, src, opts)
}

// Load reads the nodes of a parsed source.
func Load(ctx context.Context, src Source, opts Options) ([]model.Node, error) {
	defer metrics.Timer(metrics.SourceLoad)()

	switch src.Type {
	case SourceTypeMock:
		return mock.New(opts.Seed).TopologyNodes(src.Count), nil
	case SourceTypeProteins:
		return mock.ProteinNodes(mock.New(opts.Seed).Proteins(src.Count)), nil
	case SourceTypeGenes:
		return mock.GeneNodes(mock.New(opts.Seed).TopGenes(src.Count)), nil
	case SourceTypeJSON:
		return ReadJSONFile(src.Location, opts.warn())
	case SourceTypeJSONL:
		return ReadJSONLFile(src.Location, opts.warn())
	case SourceTypeSQLite:
		return ReadSQLite(ctx, src.Location, opts.warn())
	case SourceTypeRedis:
		return ReadRedis(ctx, src.Location, opts.warn())
	case SourceTypeHTTP:
		return ReadHTTP(ctx, opts.client(), src.Location, opts.warn())
	default:
		return nil, fmt.Errorf("unknown source type %q", src.Type)
	}
}
