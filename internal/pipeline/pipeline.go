// Package pipeline runs one staged snapback scan: drop-list fetch, release
// date selection, availability probing, index-signal probing, value filtering
// and report assembly, in that order. Stages execute strictly one after
// another and probe stages annotate candidates without dropping them.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"snapback/internal/config"
	"snapback/pkg/domain"
	"snapback/pkg/droplist"
	"snapback/pkg/logger"
	"snapback/pkg/metrics"
	"snapback/pkg/report"
	"snapback/pkg/serrors"

	"go.uber.org/zap"
)

// Options configure the value filter applied before report assembly.
type Options struct {
	// MinIndexedPages is the smallest known page estimate a candidate needs to
	// make the report. Candidates with an unknown page estimate pass.
	MinIndexedPages int
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		MinIndexedPages: cfg.Index.MinIndexedPages,
	}
}

// RunOptions are the per-invocation parameters of a scan.
type RunOptions struct {
	// TargetDate is the release date to scan in "YYYY-MM-DD" form. Empty means
	// tomorrow in UTC.
	TargetDate string
	// DryRun skips report persistence; the assembled report is still returned.
	DryRun bool
}

// Result is the outcome of a completed scan. CSVPath and JSONPath are empty
// when nothing was written (dry run, or a run that found nothing to probe).
type Result struct {
	Report   domain.Report
	CSVPath  string
	JSONPath string
	Summary  string
}

// Pipeline wires the scan stages together. A single Pipeline is safe to reuse
// across runs; mutual exclusion between concurrent runs is the scan
// coordinator's concern, not the pipeline's.
type Pipeline struct {
	source  droplist.Source
	prober  Prober
	indexer Indexer
	store   ReportStore
	metrics *metrics.Metrics
	options Options
	now     func() time.Time
}

// New creates a Pipeline from its stage dependencies. metrics may be nil.
func New(source droplist.Source,
	prober Prober,
	indexer Indexer,
	store ReportStore,
	m *metrics.Metrics,
	options Options) *Pipeline {
	return &Pipeline{
		source:  source,
		prober:  prober,
		indexer: indexer,
		store:   store,
		metrics: m,
		options: options,
		now:     time.Now,
	}
}

// Run executes one scan. A run that finds no domains dropping on the target
// date, or none still available, completes successfully without writing
// report files. Only report persistence failures and an invalid target date
// produce an error.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	date := opts.TargetDate
	if date == "" {
		date = droplist.Tomorrow(p.now())
	} else if _, err := time.Parse(domain.DateFormat, date); err != nil {
		return nil, serrors.Wrap(serrors.ErrBadRequest, err, "invalid target date %q", opts.TargetDate)
	}

	ctx = logger.WithFields(ctx, zap.String("targetDate", date))
	logger.Info(ctx, "starting scan", zap.Bool("dryRun", opts.DryRun))

	candidates := p.selectCandidates(ctx, date)
	if len(candidates) == 0 {
		logger.Info(ctx, "no domains dropping on target date")

		return p.finish(ctx, nil, date, false)
	}

	candidates = p.probeAvailability(ctx, candidates)
	if countAvailable(candidates) == 0 {
		logger.Info(ctx, "every dropping domain is still registered")

		return p.finish(ctx, nil, date, false)
	}

	candidates = p.probeIndex(ctx, candidates)

	valuable := report.FilterValuable(candidates, p.options.MinIndexedPages)
	logger.Info(ctx, "value filter applied",
		zap.Int("kept", len(valuable)),
		zap.Int("dropped", len(candidates)-len(valuable)))

	return p.finish(ctx, valuable, date, !opts.DryRun)
}

// selectCandidates fetches both drop lists and keeps the records released on
// date. A failed fetch degrades that namespace to an empty list so the other
// namespace still gets scanned.
func (p *Pipeline) selectCandidates(ctx context.Context, date string) []domain.Candidate {
	defer p.observeStage("fetch", time.Now())

	var records []domain.DropRecord
	for _, tld := range domain.AllTLDs() {
		recs, err := p.source.DropList(ctx, tld)
		if err != nil {
			logger.Warn(ctx, "could not fetch drop list",
				zap.String("tld", string(tld)), zap.Error(err))

			continue
		}

		if p.metrics != nil {
			p.metrics.DropRecordsFetched.WithLabelValues(string(tld)).Add(float64(len(recs)))
		}
		records = append(records, recs...)
	}

	selected := droplist.SelectByDate(records, date)
	logger.Info(ctx, "drop lists fetched",
		zap.Int("records", len(records)),
		zap.Int("dropping", len(selected)))

	return domain.NewCandidates(selected)
}

// probeAvailability annotates every candidate with a DNS verdict, in place.
func (p *Pipeline) probeAvailability(ctx context.Context, candidates []domain.Candidate) []domain.Candidate {
	defer p.observeStage("availability", time.Now())

	candidates = p.prober.ProbeAll(ctx, candidates)

	for _, c := range candidates {
		if p.metrics != nil {
			p.metrics.AvailabilityResults.WithLabelValues(string(c.Available)).Inc()
		}
	}
	logger.Info(ctx, "availability probed",
		zap.Int("available", countAvailable(candidates)),
		zap.Int("total", len(candidates)))

	return candidates
}

// probeIndex runs the index-signal chain over the candidates that are still
// available. Registered and unresolved candidates keep their Unknown index
// verdict and are merged back unchanged.
func (p *Pipeline) probeIndex(ctx context.Context, candidates []domain.Candidate) []domain.Candidate {
	defer p.observeStage("index", time.Now())

	picked := make([]int, 0, len(candidates))
	subset := make([]domain.Candidate, 0, len(candidates))
	for i, c := range candidates {
		if c.Available == domain.AvailabilityAvailable {
			picked = append(picked, i)
			subset = append(subset, c)
		}
	}

	subset = p.indexer.ProbeAll(ctx, subset)
	for j, i := range picked {
		candidates[i] = subset[j]
	}

	indexed := 0
	for _, c := range subset {
		if p.metrics != nil {
			p.metrics.IndexVerdicts.WithLabelValues(string(c.Indexed), c.IndexSource).Inc()
		}
		if c.Indexed == domain.IndexPresent {
			indexed++
		}
	}
	logger.Info(ctx, "index signals probed",
		zap.Int("indexed", indexed),
		zap.Int("probed", len(subset)))

	return candidates
}

// finish assembles the final report and, when write is set, persists it.
func (p *Pipeline) finish(ctx context.Context, valuable []domain.Candidate, date string, write bool) (*Result, error) {
	defer p.observeStage("report", time.Now())

	rep := report.Assemble(valuable, p.now())
	if p.metrics != nil {
		p.metrics.ReportDomains.Set(float64(rep.TotalDomains))
	}

	res := &Result{
		Report:  rep,
		Summary: report.Summary(rep),
	}
	if !write {
		return res, nil
	}

	csvPath, jsonPath, err := p.store.Save(rep, date)
	if err != nil {
		return nil, fmt.Errorf("could not write report: %w", err)
	}
	res.CSVPath, res.JSONPath = csvPath, jsonPath

	logger.Info(ctx, "report written",
		zap.Int("domains", rep.TotalDomains),
		zap.String("csv", csvPath),
		zap.String("json", jsonPath))

	return res, nil
}

func (p *Pipeline) observeStage(stage string, start time.Time) {
	if p.metrics != nil {
		p.metrics.ObserveStage(stage, time.Since(start))
	}
}

func countAvailable(candidates []domain.Candidate) int {
	n := 0
	for _, c := range candidates {
		if c.Available == domain.AvailabilityAvailable {
			n++
		}
	}

	return n
}
