package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/ab-network/subspace-core/clientdb"
	applog "github.com/ab-network/subspace-core/log"
	"github.com/ab-network/subspace-core/metrics"
	"github.com/ab-network/subspace-core/slotworker"
)

// chainSpec is what buildSpec produces and run/chainInfo consume: the
// consensus constants a node needs before it can assemble its first
// block. It is deliberately small — peer discovery, genesis allocations,
// and execution-side state are out of scope here.
type chainSpec struct {
	SlotDuration         uint64 `json:"slotDuration"`
	EraDuration          uint64 `json:"eraDuration"`
	BlockAuthoringDelay  uint64 `json:"blockAuthoringDelay"`
	InitialSolutionRange uint64 `json:"initialSolutionRange"`
}

func defaultChainSpec() chainSpec {
	return chainSpec{
		SlotDuration:         1000,
		EraDuration:          2016,
		BlockAuthoringDelay:  4,
		InitialSolutionRange: 1 << 32,
	}
}

func (s chainSpec) toConsensusConstants() slotworker.ConsensusConstants {
	return slotworker.ConsensusConstants{
		EraDuration:          s.EraDuration,
		BlockAuthoringDelay:  primitivesSlotNumber(s.BlockAuthoringDelay),
		SlotDuration:         s.SlotDuration,
		InitialSolutionRange: s.InitialSolutionRange,
	}
}

func specPath(datadir string) string {
	return filepath.Join(datadir, "spec.json")
}

func loadChainSpec(datadir string) (chainSpec, error) {
	data, err := os.ReadFile(specPath(datadir))
	if err != nil {
		return chainSpec{}, fmt.Errorf("reading chain spec: %w", err)
	}
	var spec chainSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return chainSpec{}, fmt.Errorf("parsing chain spec: %w", err)
	}
	return spec, nil
}

var buildSpecCommand = &cli.Command{
	Name:  "build-spec",
	Usage: "write a chain spec file into the data directory",
	Action: func(c *cli.Context) error {
		datadir := c.String(datadirFlag.Name)
		if err := os.MkdirAll(datadir, 0o755); err != nil {
			return fmt.Errorf("creating datadir: %w", err)
		}
		data, err := json.MarshalIndent(defaultChainSpec(), "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(specPath(datadir), data, 0o644); err != nil {
			return fmt.Errorf("writing chain spec: %w", err)
		}
		fmt.Fprintln(c.App.Writer, "wrote", specPath(datadir))
		return nil
	},
}

var chainInfoCommand = &cli.Command{
	Name:  "chain-info",
	Usage: "print the chain spec this data directory was built with",
	Action: func(c *cli.Context) error {
		spec, err := loadChainSpec(c.String(datadirFlag.Name))
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(spec, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, string(data))
		return nil
	},
}

var wipeCommand = &cli.Command{
	Name:  "wipe",
	Usage: "delete the data directory's clientdb pager files",
	Action: func(c *cli.Context) error {
		datadir := c.String(datadirFlag.Name)
		if datadir == "" || datadir == "/" {
			return errors.New("refusing to wipe an empty or root datadir")
		}
		if err := os.RemoveAll(filepath.Join(datadir, "clientdb")); err != nil {
			return fmt.Errorf("wiping clientdb: %w", err)
		}
		fmt.Fprintln(c.App.Writer, "wiped", filepath.Join(datadir, "clientdb"))
		return nil
	},
}

var revertCommand = &cli.Command{
	Name:      "revert",
	Usage:     "count the client database entries with a sequence number at or above N (entries are not removed)",
	ArgsUsage: "N",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return errors.New("revert requires exactly one argument: the sequence number to revert to")
		}
		var from uint64
		if _, err := fmt.Sscanf(c.Args().Get(0), "%d", &from); err != nil {
			return fmt.Errorf("parsing sequence number: %w", err)
		}
		store, closeStore, err := openPageStore(c.String(datadirFlag.Name))
		if err != nil {
			return err
		}
		defer closeStore()

		// Scans one page per entry: correct for every entry that fits in a
		// single page (true of all current variants) but will skip a
		// multi-page entry rather than reassembling it.
		dropped := 0
		for page := uint64(0); ; page++ {
			p, err := store.ReadPage(page)
			if errors.Is(err, clientdb.ErrPageNotFound) {
				break
			}
			if err != nil {
				return fmt.Errorf("reading page %d: %w", page, err)
			}
			item, err := clientdb.Read([]clientdb.Page{p})
			if err != nil {
				continue
			}
			if item.SequenceNumber >= from {
				dropped++
			}
		}
		fmt.Fprintf(c.App.Writer, "identified %d entries at or above sequence %d (revert is advisory: re-run build-spec/import-blocks to rebuild past this point)\n", dropped, from)
		return nil
	},
}

var checkBlockCommand = &cli.Command{
	Name:      "check-block",
	Usage:     "validate that a page range holds a well-framed client database entry",
	ArgsUsage: "PAGE_START PAGE_COUNT",
	Action: func(c *cli.Context) error {
		if c.NArg() != 2 {
			return errors.New("check-block requires PAGE_START and PAGE_COUNT")
		}
		var start, count uint64
		if _, err := fmt.Sscanf(c.Args().Get(0), "%d", &start); err != nil {
			return fmt.Errorf("parsing PAGE_START: %w", err)
		}
		if _, err := fmt.Sscanf(c.Args().Get(1), "%d", &count); err != nil {
			return fmt.Errorf("parsing PAGE_COUNT: %w", err)
		}

		store, closeStore, err := openPageStore(c.String(datadirFlag.Name))
		if err != nil {
			return err
		}
		defer closeStore()

		pages := make([]clientdb.Page, 0, count)
		for i := uint64(0); i < count; i++ {
			p, err := store.ReadPage(start + i)
			if err != nil {
				return fmt.Errorf("reading page %d: %w", start+i, err)
			}
			pages = append(pages, p)
		}
		item, err := clientdb.Read(pages)
		if err != nil {
			return fmt.Errorf("entry at pages [%d, %d) is corrupt: %w", start, start+count, err)
		}
		fmt.Fprintf(c.App.Writer, "entry at pages [%d, %d): sequence=%d variant=%d body=%dB\n",
			start, start+count, item.SequenceNumber, item.Variant, len(item.Body))
		return nil
	},
}

var exportBlocksCommand = &cli.Command{
	Name:      "export-blocks",
	Usage:     "export client database entries of a given variant to a file, one JSON object per line",
	ArgsUsage: "VARIANT OUTPUT_FILE",
	Action: func(c *cli.Context) error {
		return exportVariant(c, "export-blocks")
	},
}

var exportStateCommand = &cli.Command{
	Name:      "export-state",
	Usage:     "export client database entries of a given variant to a file, one JSON object per line",
	ArgsUsage: "VARIANT OUTPUT_FILE",
	Action: func(c *cli.Context) error {
		return exportVariant(c, "export-state")
	},
}

func exportVariant(c *cli.Context, name string) error {
	if c.NArg() != 2 {
		return fmt.Errorf("%s requires VARIANT and OUTPUT_FILE", name)
	}
	var variant uint64
	if _, err := fmt.Sscanf(c.Args().Get(0), "%d", &variant); err != nil {
		return fmt.Errorf("parsing VARIANT: %w", err)
	}
	out, err := os.Create(c.Args().Get(1))
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	store, closeStore, err := openPageStore(c.String(datadirFlag.Name))
	if err != nil {
		return err
	}
	defer closeStore()

	// Same single-page-per-entry assumption as revert; see its comment.
	enc := json.NewEncoder(out)
	written := 0
	for page := uint64(0); ; page++ {
		p, err := store.ReadPage(page)
		if errors.Is(err, clientdb.ErrPageNotFound) {
			break
		}
		if err != nil {
			return fmt.Errorf("reading page %d: %w", page, err)
		}
		item, err := clientdb.Read([]clientdb.Page{p})
		if err != nil || uint64(item.Variant) != variant {
			continue
		}
		if err := enc.Encode(item); err != nil {
			return fmt.Errorf("writing entry: %w", err)
		}
		written++
	}
	fmt.Fprintf(c.App.Writer, "exported %d entries of variant %d\n", written, variant)
	return nil
}

var importBlocksCommand = &cli.Command{
	Name:      "import-blocks",
	Usage:     "read newline-delimited JSON client database entries and append them to the data directory",
	ArgsUsage: "INPUT_FILE",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return errors.New("import-blocks requires INPUT_FILE")
		}
		in, err := os.Open(c.Args().Get(0))
		if err != nil {
			return fmt.Errorf("opening input file: %w", err)
		}
		defer in.Close()

		store, closeStore, err := openPageStore(c.String(datadirFlag.Name))
		if err != nil {
			return err
		}
		defer closeStore()

		nextPage, err := firstFreePage(store)
		if err != nil {
			return err
		}

		dec := json.NewDecoder(in)
		imported := 0
		for dec.More() {
			var item clientdb.Item
			if err := dec.Decode(&item); err != nil {
				return fmt.Errorf("decoding entry %d: %w", imported, err)
			}
			pages := clientdb.Write(item)
			for _, p := range pages {
				if err := store.WritePage(nextPage, p); err != nil {
					return fmt.Errorf("writing page %d: %w", nextPage, err)
				}
				nextPage++
			}
			imported++
		}
		fmt.Fprintf(c.App.Writer, "imported %d entries\n", imported)
		return nil
	},
}

func firstFreePage(store clientdb.PageStore) (uint64, error) {
	page := uint64(0)
	for {
		_, err := store.ReadPage(page)
		if errors.Is(err, clientdb.ErrPageNotFound) {
			return page, nil
		}
		if err != nil {
			return 0, fmt.Errorf("scanning for free page: %w", err)
		}
		page++
	}
}

func openPageStore(datadir string) (clientdb.PageStore, func(), error) {
	dir := filepath.Join(datadir, "clientdb")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating clientdb directory: %w", err)
	}
	store, err := clientdb.OpenPebblePageStore(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening client database: %w", err)
	}
	return store, func() { store.Close() }, nil
}

// runCommand starts the long-running node process: it opens the client
// database, serves Prometheus metrics, and blocks until interrupted. The
// slot worker itself needs a ChainInfo backed by this pager and a real
// rpcapi farmer connection, neither of which exists as a concrete type
// yet; this command owns only the pieces that are fully self-contained
// today.
var runCommand = &cli.Command{
	Name:  "run",
	Usage: "run a node: serve metrics and keep the client database open",
	Action: func(c *cli.Context) error {
		logger := applog.Default().Module("node")

		spec, err := loadChainSpec(c.String(datadirFlag.Name))
		if err != nil {
			logger.Warn("no chain spec found, run build-spec first", "error", err)
			return err
		}
		constants := spec.toConsensusConstants()
		logger.Info("starting node",
			"eraDuration", constants.EraDuration,
			"slotDuration", constants.SlotDuration,
			"blockAuthoringDelay", constants.BlockAuthoringDelay,
		)

		store, closeStore, err := openPageStore(c.String(datadirFlag.Name))
		if err != nil {
			return err
		}
		defer closeStore()

		registry := metrics.NewRegistry()
		registry.Gauge("subspace_era_duration_slots").Set(int64(constants.EraDuration))
		registry.Gauge("subspace_initial_solution_range").Set(int64(constants.InitialSolutionRange))

		var server *http.Server
		if addr := c.String(metricsAddrFlag.Name); addr != "" {
			exporter := metrics.NewPrometheusExporter(registry, metrics.PrometheusConfig{
				Namespace:     "subspace",
				EnableRuntime: true,
				Path:          "/metrics",
			})
			mux := http.NewServeMux()
			mux.Handle("/metrics", exporter.Handler())
			server = &http.Server{Addr: addr, Handler: mux}
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("metrics server failed", "error", err)
				}
			}()
			logger.Info("serving metrics", "addr", addr)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		<-ctx.Done()

		logger.Info("shutting down")
		if server != nil {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer shutdownCancel()
			_ = server.Shutdown(shutdownCtx)
		}
		_ = store
		return nil
	},
}
