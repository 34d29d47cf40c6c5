package app

import (
	"context"
	"time"

	"goclean/adapters/stats/correlation"
	"goclean/domain/cell"
	"goclean/domain/core"
	"goclean/domain/dataset"
	"goclean/domain/generation"
	"goclean/domain/session"
	"goclean/domain/stats"
	"goclean/internal"
	"goclean/internal/config"
	"goclean/internal/errors"
	"goclean/ports"

	mstats "github.com/montanaflynn/stats"
)

// DomainService orchestrates one cleaning session: correlation discovery,
// statistics pruning, domain generation, estimator-driven weak labeling, and
// persistence of the final batch. The statistics it prepares in Setup stay
// read-only for the rest of the session.
type DomainService struct {
	reader    ports.DatasetReader
	detector  ports.ActiveAttributeSource
	repo      ports.DomainRepository
	estimator ports.Estimator
	rng       ports.RNG
	cfg       config.SessionConfig
	log       *internal.Logger

	// Session state, prepared once by Setup.
	ds          *dataset.Dataset
	analyzer    *correlation.Analyzer
	activeAttrs []string
	total       int
	single      stats.SingleStats
	pair        stats.PairStats
	pruned      stats.PrunedPairStats
	setupDone   bool
}

// Result summarizes one domain-generation run.
type Result struct {
	SessionID  core.SessionID
	Manifest   *session.Manifest
	Records    []cell.DomainRecord
	WeakLabels int
	Elapsed    time.Duration
}

// NewDomainService wires a domain service from its collaborators.
func NewDomainService(reader ports.DatasetReader, detector ports.ActiveAttributeSource, repo ports.DomainRepository, estimator ports.Estimator, rng ports.RNG, cfg config.SessionConfig) *DomainService {
	return &DomainService{
		reader:    reader,
		detector:  detector,
		repo:      repo,
		estimator: estimator,
		rng:       rng,
		cfg:       cfg,
		log:       internal.DefaultLogger,
	}
}

// Setup loads the dataset, discovers correlations, and prepares the pruned
// co-occurrence statistics. Fails fast when the active-attribute set is
// empty.
func (s *DomainService) Setup(ctx context.Context) error {
	tic := time.Now()

	ds, err := s.reader.Read(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to read dataset")
	}
	s.ds = ds

	active, err := s.detector.ActiveAttributes(ctx)
	if err != nil {
		return err
	}
	s.activeAttrs = active

	s.log.Debug("computing attribute correlations...")
	s.analyzer = correlation.NewAnalyzer(ds)

	s.log.Debug("preparing pruned co-occurring statistics...")
	s.total, s.single, s.pair = stats.Collect(ds)
	pruned, _, err := stats.Prune(s.pair, s.single, s.cfg.TopPercentile)
	if err != nil {
		return err
	}
	s.pruned = pruned
	s.setupDone = true
	s.log.Timed("statistics setup", tic)
	return nil
}

// GenerateDomains runs the batch domain-generation pass, refines it through
// the posterior estimator when refinement is requested, and persists the
// final batch.
func (s *DomainService) GenerateDomains(ctx context.Context) (*Result, error) {
	if !s.setupDone {
		return nil, core.ErrNotSetup
	}
	tic := time.Now()
	sessionID := core.NewSessionID()
	manifest := session.NewManifest(sessionID, s.ds, s.manifestParams())
	if err := manifest.Validate(); err != nil {
		return nil, errors.Wrap(err, "failed to build session manifest")
	}
	s.log.Debug("session %s fingerprint=%s", sessionID, manifest.Fingerprint)

	stream, err := s.rng.SeededStream(ctx, "domain", s.cfg.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create random stream")
	}

	gen := generation.NewGenerator(s.ds, s.analyzer, s.single, s.pruned, s.generationConfig(), stream)
	s.log.Debug("generating initial set of un-pruned domain values...")
	records, err := gen.Generate(ctx, s.activeAttrs)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, core.ErrEmptyDomain
	}
	s.describeDomainSizes(records)

	refiner := generation.NewRefiner(s.generationConfig())
	weakLabels := 0
	if refiner.Skip() {
		s.log.Debug("refinement not requested, keeping initial domains")
	} else {
		weakLabels, err = s.refine(ctx, records)
		if err != nil {
			return nil, err
		}
		s.log.Info("number of weak labels assigned from posterior model: %d", weakLabels)
	}

	for i := range records {
		if err := records[i].Validate(); err != nil {
			return nil, errors.Wrap(err, "domain record invariant violated")
		}
	}

	if err := s.repo.StoreDomains(ctx, records); err != nil {
		return nil, errors.Wrap(err, "failed to store domain batch")
	}

	s.log.Timed("domain preparation", tic)
	return &Result{
		SessionID:  sessionID,
		Manifest:   manifest,
		Records:    records,
		WeakLabels: weakLabels,
		Elapsed:    time.Since(tic),
	}, nil
}

// Run performs Setup and GenerateDomains as one call.
func (s *DomainService) Run(ctx context.Context) (*Result, error) {
	if err := s.Setup(ctx); err != nil {
		return nil, err
	}
	return s.GenerateDomains(ctx)
}

// Featurizer builds the co-occurrence featurizer over this session's
// statistics. Valid only after Setup.
func (s *DomainService) Featurizer() (*generation.Featurizer, error) {
	if !s.setupDone {
		return nil, core.ErrNotSetup
	}
	return generation.NewFeaturizer(s.ds, s.single, s.pair, s.analyzer.FeatureChannels()), nil
}

// refine trains the posterior estimator on the initial batch and applies the
// weak-label refinement in place.
func (s *DomainService) refine(ctx context.Context, records []cell.DomainRecord) (int, error) {
	tic := time.Now()
	s.log.Debug("training posterior model for estimating domain value probabilities...")
	if err := s.estimator.Fit(ctx, s.ds, s.activeAttrs, records); err != nil {
		return 0, errors.ExternalServiceError("estimator", err)
	}
	if err := s.estimator.Train(ctx, s.cfg.EstimatorEpochs, s.cfg.EstimatorBatchSize); err != nil {
		return 0, errors.ExternalServiceError("estimator", err)
	}
	preds, err := s.estimator.PredictBatch(ctx)
	if err != nil {
		return 0, errors.ExternalServiceError("estimator", err)
	}
	s.log.Timed("posterior estimation", tic)

	refiner := generation.NewRefiner(s.generationConfig())
	return refiner.Refine(records, preds)
}

func (s *DomainService) manifestParams() session.Params {
	return session.Params{
		Seed:                s.cfg.Seed,
		CorrelationStrength: s.cfg.CorrelationStrength,
		TopPercentile:       s.cfg.TopPercentile,
		DomainThreshold:     s.cfg.DomainThreshold,
		WeakLabelThreshold:  s.cfg.WeakLabelThreshold,
		MaxDomain:           s.cfg.MaxDomain,
		MaxSample:           s.cfg.MaxSample,
	}
}

func (s *DomainService) generationConfig() generation.Config {
	return generation.Config{
		CorrelationStrength: s.cfg.CorrelationStrength,
		MaxSample:           s.cfg.MaxSample,
		DomainThreshold:     s.cfg.DomainThreshold,
		WeakLabelThreshold:  s.cfg.WeakLabelThreshold,
		MaxDomain:           s.cfg.MaxDomain,
	}
}

// describeDomainSizes logs the distribution of domain sizes before
// refinement.
func (s *DomainService) describeDomainSizes(records []cell.DomainRecord) {
	sizes := make([]float64, len(records))
	for i := range records {
		sizes[i] = float64(records[i].DomainSize)
	}
	mean, _ := mstats.Mean(sizes)
	median, _ := mstats.Median(sizes)
	min, _ := mstats.Min(sizes)
	max, _ := mstats.Max(sizes)
	s.log.Debug("domain size before estimator: count=%d mean=%.2f median=%.0f min=%.0f max=%.0f",
		len(sizes), mean, median, min, max)
}
