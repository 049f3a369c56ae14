// Package pipeline wires recognition, normalization, forensic analysis,
// visual comparison and risk aggregation into one decision engine.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/motoforense/motoscan/internal/forensics"
	"github.com/motoforense/motoscan/internal/recognize"
	"github.com/motoforense/motoscan/internal/registry"
	"github.com/motoforense/motoscan/internal/risk"
	"github.com/motoforense/motoscan/internal/store"
	"github.com/motoforense/motoscan/internal/visual"
)

// Config holds configuration for the analysis pipeline and its components.
type Config struct {
	// RegistryPath optionally merges extra prefix records over the
	// builtin table.
	RegistryPath string
	// TemplateDir is the root of reference glyph template sets. Empty
	// disables visual comparison.
	TemplateDir string
	// StorePath is the SQLite database of confirmed frauds and verified
	// reference motors. Empty disables the fraud lookup.
	StorePath string

	Recognizer   recognize.LocalConfig
	Vision       recognize.VisionConfig
	// EnableVision turns the secondary recognizer on. Without it the
	// pipeline runs primary-only and every low-confidence reading is
	// flagged as degraded.
	EnableVision bool
	Orchestrator recognize.OrchestratorConfig

	Forensics  forensics.Config
	Weights    risk.Weights
	Thresholds risk.Thresholds
}

// DefaultConfig returns a pipeline config with component defaults.
func DefaultConfig() Config {
	return Config{
		Recognizer:   recognize.DefaultLocalConfig(),
		Vision:       recognize.DefaultVisionConfig(),
		Orchestrator: recognize.DefaultOrchestratorConfig(),
		Forensics:    forensics.DefaultConfig(),
		Weights:      risk.DefaultWeights(),
		Thresholds:   risk.DefaultThresholds(),
	}
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg       Config
	primary   recognize.Recognizer
	secondary recognize.Recognizer
	logger    *slog.Logger
}

// NewBuilder creates a pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithConfig replaces the whole config at once.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithRegistryPath sets an extra prefix registry file merged over the
// builtin table.
func (b *Builder) WithRegistryPath(path string) *Builder {
	b.cfg.RegistryPath = path
	return b
}

// WithRecognizerModelPath overrides the local recognizer model path.
func (b *Builder) WithRecognizerModelPath(path string) *Builder {
	if path != "" {
		b.cfg.Recognizer.ModelPath = path
	}
	return b
}

// WithTemplateDir sets the glyph template root.
func (b *Builder) WithTemplateDir(dir string) *Builder {
	b.cfg.TemplateDir = dir
	return b
}

// WithStorePath sets the fraud database path.
func (b *Builder) WithStorePath(path string) *Builder {
	b.cfg.StorePath = path
	return b
}

// WithVision enables the secondary recognizer with the given settings.
func (b *Builder) WithVision(cfg recognize.VisionConfig) *Builder {
	b.cfg.Vision = cfg
	b.cfg.EnableVision = cfg.Endpoint != ""
	return b
}

// WithConfidenceThreshold sets the primary-confidence gate below which
// the secondary recognizer runs.
func (b *Builder) WithConfidenceThreshold(th float64) *Builder {
	if th > 0 && th <= 1 {
		b.cfg.Orchestrator.ConfidenceThreshold = th
	}
	return b
}

// WithThreads sets the local recognizer thread count.
func (b *Builder) WithThreads(n int) *Builder {
	if n > 0 {
		b.cfg.Recognizer.NumThreads = n
	}
	return b
}

// WithWeights replaces the scoring penalty table.
func (b *Builder) WithWeights(w risk.Weights) *Builder {
	b.cfg.Weights = w
	return b
}

// WithThresholds replaces the verdict tier boundaries.
func (b *Builder) WithThresholds(t risk.Thresholds) *Builder {
	b.cfg.Thresholds = t
	return b
}

// WithRecognizers injects ready-made recognizers, bypassing model and
// endpoint construction. Used by tests and by callers that manage
// recognizer lifecycle themselves.
func (b *Builder) WithRecognizers(primary, secondary recognize.Recognizer) *Builder {
	b.primary = primary
	b.secondary = secondary
	return b
}

// WithLogger sets the structured logger. Defaults to slog.Default.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// Config returns a copy of the current config.
func (b *Builder) Config() Config { return b.cfg }

// Validate checks that referenced files exist and the scoring policy is
// coherent.
func (b *Builder) Validate() error {
	if b.primary == nil && b.cfg.Recognizer.ModelPath == "" {
		return errors.New("recognizer model path is empty")
	}
	if b.primary == nil {
		if _, err := os.Stat(b.cfg.Recognizer.ModelPath); err != nil {
			return fmt.Errorf("recognizer model not found: %s", b.cfg.Recognizer.ModelPath)
		}
	}
	if b.cfg.RegistryPath != "" {
		if _, err := os.Stat(b.cfg.RegistryPath); err != nil {
			return fmt.Errorf("registry file not found: %s", b.cfg.RegistryPath)
		}
	}
	if err := b.cfg.Weights.Validate(); err != nil {
		return fmt.Errorf("invalid weights: %w", err)
	}
	if err := b.cfg.Thresholds.Validate(); err != nil {
		return fmt.Errorf("invalid thresholds: %w", err)
	}
	return nil
}

// Pipeline wires together recognition, forensics, visual comparison and
// risk scoring. Safe for concurrent use.
type Pipeline struct {
	cfg          Config
	reg          *registry.Registry
	orchestrator *recognize.Orchestrator
	analyzer     *forensics.Analyzer
	comparator   *visual.Comparator
	db           *store.Store
	logger       *slog.Logger

	// closers holds components the pipeline owns and must release.
	closers []func() error
}

// Build initializes the pipeline components.
func (b *Builder) Build() (*Pipeline, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	reg := registry.Default()
	if b.cfg.RegistryPath != "" {
		loaded, err := registry.LoadFile(b.cfg.RegistryPath)
		if err != nil {
			return nil, fmt.Errorf("load prefix registry: %w", err)
		}
		reg = loaded
	}

	p := &Pipeline{
		cfg:      b.cfg,
		reg:      reg,
		analyzer: forensics.NewAnalyzer(b.cfg.Forensics),
		logger:   logger,
	}

	primary := b.primary
	if primary == nil {
		local, err := recognize.NewLocal(b.cfg.Recognizer)
		if err != nil {
			return nil, fmt.Errorf("init local recognizer: %w", err)
		}
		primary = local
		p.closers = append(p.closers, local.Close)
	}

	secondary := b.secondary
	if secondary == nil && b.cfg.EnableVision {
		vision, err := recognize.NewVision(b.cfg.Vision)
		if err != nil {
			return nil, fmt.Errorf("init vision recognizer: %w", err)
		}
		secondary = vision
	}
	p.orchestrator = recognize.NewOrchestrator(primary, secondary, reg, b.cfg.Orchestrator)

	if b.cfg.TemplateDir != "" {
		templates, err := visual.NewTemplateStore(b.cfg.TemplateDir)
		if err != nil {
			return nil, fmt.Errorf("load glyph templates: %w", err)
		}
		p.comparator = visual.NewComparator(templates)
	}

	if b.cfg.StorePath != "" {
		db, err := store.Open(b.cfg.StorePath)
		if err != nil {
			return nil, fmt.Errorf("open fraud store: %w", err)
		}
		p.db = db
		p.closers = append(p.closers, db.Close)
	}

	logger.Info("pipeline ready",
		"prefixes", reg.Len(),
		"vision", secondary != nil,
		"templates", p.comparator != nil,
		"fraud_store", p.db != nil)
	return p, nil
}

// Registry exposes the prefix table, for the prefixes listing surfaces.
func (p *Pipeline) Registry() *registry.Registry { return p.reg }

// Store exposes the fraud database, or nil when not configured.
func (p *Pipeline) Store() *store.Store { return p.db }

// Close releases owned components. Safe to call more than once.
func (p *Pipeline) Close() error {
	var first error
	for _, closeFn := range p.closers {
		if err := closeFn(); err != nil && first == nil {
			first = err
		}
	}
	p.closers = nil
	return first
}
