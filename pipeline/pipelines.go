package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/sourcegraph/conc/iter"
	"github.com/vitorbr/olist-analytics/config"
	"github.com/vitorbr/olist-analytics/extract"
	"github.com/vitorbr/olist-analytics/load"
)

// Pipeline wires the Kaggle download side and the DuckDB load side together.
// The Kaggle client is nil in load-only pipelines.
type Pipeline struct {
	DuckDB       *load.DuckDB
	KaggleClient *extract.KaggleClient
	Logger       *slog.Logger
	dataDir      string
}

// DatasetResult summarizes one downloaded dataset.
type DatasetResult struct {
	Ref   string
	Files int
}

func NewPipeline(config *config.Config, logger *slog.Logger) (*Pipeline, error) {
	db, err := load.NewDuckDB(config, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating DB database: %v", err)
	}

	kaggleClient, err := extract.NewKaggleClient(config, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating Kaggle HTTP client: %v", err)
	}

	return &Pipeline{
		DuckDB:       db,
		KaggleClient: kaggleClient,
		Logger:       logger,
		dataDir:      config.Extract.DataDir,
	}, nil
}

// NewLoadPipeline skips the Kaggle client, for runs over already downloaded
// files. It needs no Kaggle credentials.
func NewLoadPipeline(config *config.Config, logger *slog.Logger) (*Pipeline, error) {
	db, err := load.NewDuckDB(config, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating DB database: %v", err)
	}

	return &Pipeline{
		DuckDB:  db,
		Logger:  logger,
		dataDir: config.Extract.DataDir,
	}, nil
}

func (p *Pipeline) Close() {
	p.DuckDB.Close()
}

// IngestDatasets downloads every known Kaggle dataset concurrently, unpacks
// the archives under the data dir, and verifies the expected files arrived.
// Returns the total number of extracted files.
func (p *Pipeline) IngestDatasets() (int, error) {
	if p.KaggleClient == nil {
		return 0, errors.New("pipeline was created without a Kaggle client")
	}

	mapper := iter.Mapper[extract.Dataset, DatasetResult]{
		MaxGoroutines: len(extract.Datasets),
	}

	results, err := mapper.MapErr(extract.Datasets, func(ds *extract.Dataset) (DatasetResult, error) {
		zipData, err := p.KaggleClient.DownloadDataset(ds.Ref)
		if err != nil {
			return DatasetResult{}, fmt.Errorf("error downloading dataset %s: %w", ds.Ref, err)
		}

		destDir := filepath.Join(p.dataDir, ds.Dir)
		files, err := extract.UnzipToDir(zipData, destDir)
		if err != nil {
			return DatasetResult{}, fmt.Errorf("error unpacking dataset %s: %w", ds.Ref, err)
		}

		if missing := extract.VerifyFiles(destDir, ds.ExpectedFiles); len(missing) > 0 {
			return DatasetResult{}, fmt.Errorf(
				"dataset %s is missing expected files: %s", ds.Ref, strings.Join(missing, ", "))
		}

		p.Logger.Info("Extracted dataset", "ref", ds.Ref, "dir", destDir, "files", len(files))
		return DatasetResult{Ref: ds.Ref, Files: len(files)}, nil
	})
	if err != nil {
		return 0, err
	}

	total := 0
	for _, res := range results {
		total += res.Files
	}
	return total, nil
}

// LoadRawTables recreates every raw_ table from the e-commerce CSV files.
func (p *Pipeline) LoadRawTables() ([]load.TableStat, error) {
	dir := filepath.Join(p.dataDir, extract.EcommerceDataset.Dir)

	stats, err := p.DuckDB.LoadAll(dir)
	if err != nil {
		return stats, fmt.Errorf("error loading raw tables from %s: %w", dir, err)
	}

	var totalRows int64
	for _, stat := range stats {
		totalRows += stat.Rows
	}
	p.Logger.Info("Raw layer loaded", "tables", len(stats), "total_rows", totalRows)

	return stats, nil
}

// Run is the full download-then-load sequence.
func (p *Pipeline) Run() ([]load.TableStat, error) {
	if _, err := p.IngestDatasets(); err != nil {
		return nil, err
	}
	return p.LoadRawTables()
}
