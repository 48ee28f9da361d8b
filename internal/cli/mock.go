package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/spectra/internal/datasource"
	"github.com/vanderheijden86/spectra/pkg/config"
	"github.com/vanderheijden86/spectra/pkg/mock"
	"github.com/vanderheijden86/spectra/pkg/model"
)

// nodeDatasets produce node lists; they can go to any writable source.
var nodeDatasets = map[string]func(e *mock.Engine, n int) []model.Node{
	"topology": func(e *mock.Engine, n int) []model.Node { return e.TopologyNodes(n) },
	"proteins": func(e *mock.Engine, n int) []model.Node { return mock.ProteinNodes(e.Proteins(n)) },
	"genes":    func(e *mock.Engine, n int) []model.Node { return mock.GeneNodes(e.TopGenes(n)) },
}

// tableDatasets produce dashboard tables; they are written as JSON.
var tableDatasets = map[string]func(e *mock.Engine, n int) any{
	"patients":   func(e *mock.Engine, n int) any { return e.Patients(n) },
	"training":   func(e *mock.Engine, n int) any { return mock.TrainingMetrics(n) },
	"analytics":  func(e *mock.Engine, _ int) any { return e.Analytics() },
	"production": func(*mock.Engine, int) any { return mock.ProductionMetrics() },
}

func datasetNames() []string {
	var names []string
	for k := range nodeDatasets {
		names = append(names, k)
	}
	for k := range tableDatasets {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

type mockOpts struct {
	output string
	count  int
	seed   int64
}

func (a *app) newMockCmd() *cobra.Command {
	var opts mockOpts
	cmd := &cobra.Command{
		Use:   "mock <dataset>",
		Short: "Write a generated dataset",
		Long: fmt.Sprintf(`Write a generated dataset.

Datasets: %s.

Node datasets (topology, proteins, genes) are written to .json, .jsonl,
.db/.sqlite files or a redis:// URL and can be read back with --source.
The other datasets are written as JSON.`, strings.Join(datasetNames(), ", ")),
		Example: `  spectra mock topology -o nodes.json -n 80
  spectra mock proteins -o nodes.db
  spectra mock genes -o "redis://localhost:6379/0?key=spectra:genes"
  spectra mock patients -o cohort.json`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: datasetNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMock(cmd.Context(), cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "destination file or redis URL (default: <dataset>.json in the XDG data dir)")
	cmd.Flags().IntVarP(&opts.count, "count", "n", datasource.DefaultMockCount, "number of entries")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "random seed (0 = random)")
	return cmd
}

func (a *app) runMock(ctx context.Context, cmd *cobra.Command, name string, opts mockOpts) error {
	e := mock.New(opts.seed)
	out := cmd.OutOrStdout()
	if opts.output == "" {
		opts.output = filepath.Join(config.DataDir(), name+".json")
	}

	if gen, ok := nodeDatasets[name]; ok {
		nodes := gen(e, opts.count)
		if err := datasource.Write(ctx, opts.output, nodes); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s: %d nodes (%d hubs) → %s\n",
			good.Sprint("✓"), name, len(nodes), model.CountImportant(nodes), opts.output)
		return nil
	}
	if gen, ok := tableDatasets[name]; ok {
		src, err := datasource.Parse(opts.output)
		if err != nil {
			return err
		}
		if src.Type != datasource.SourceTypeJSON {
			return fmt.Errorf("%s is written as JSON; use a .json destination", name)
		}
		if err := datasource.WriteValue(src.Location, gen(e, opts.count)); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s → %s\n", good.Sprint("✓"), name, opts.output)
		return nil
	}
	return fmt.Errorf("unknown dataset %q (want one of %s)", name, strings.Join(datasetNames(), ", "))
}
