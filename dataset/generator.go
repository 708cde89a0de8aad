// Package dataset turns profiles and resource pools into an on-disk detector
// dataset:
//
//	<out>/sintetico/{train,val}/{images,labels}/
//
// Every page is generated from its own random stream keyed by the run seed
// and the page's global index, so the output does not depend on the number
// of workers or on scheduling order.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nepomucenoc/synthetic-images-generator/binding"
	"github.com/nepomucenoc/synthetic-images-generator/labels"
	"github.com/nepomucenoc/synthetic-images-generator/layout"
	"github.com/nepomucenoc/synthetic-images-generator/logger"
	"github.com/nepomucenoc/synthetic-images-generator/metrics"
	"github.com/nepomucenoc/synthetic-images-generator/renderer"
)

// Split names, also used as directory names.
const (
	SplitTrain = "train"
	SplitVal   = "val"
)

// RootDirName is the directory created under the output dir.
const RootDirName = "sintetico"

// Options configures one generation run.
type Options struct {
	OutputDir     string
	FontDir       string
	BackgroundDir string
	NumImages     int
	TrainRatio    float64
	Seed          uint64
	Workers       int
	Profile       *Profile
	// DebugDir, when set, receives one layout JSON per page.
	DebugDir string
	RunID    string
	Retry    Backoff
}

// RendererFactory creates one backend per worker. Backends are not shared.
type RendererFactory func() (renderer.Backend, error)

// Report summarizes a run.
type Report struct {
	RunID     string
	Train     int
	Val       int
	Generated int
	Failed    int
	Fragments int
	Overflows int
	Clipped   int
	Canceled  bool
	Errors    []*PageError
}

// Generator drives the layout engine and the renderer over both splits.
type Generator struct {
	opts        Options
	newRenderer RendererFactory
	log         *logger.Logger
	metrics     *metrics.Metrics
}

type splitDirs struct {
	images string
	labels string
}

type job struct {
	split  string
	index  int // 1-based position in the split
	global int // index in [0, NumImages)
	dirs   splitDirs
}

type pageOutcome struct {
	fragments int
	overflows int
	clipped   int
}

// NewGenerator wires a generator. A nil logger discards output and nil
// metrics get a private registry.
func NewGenerator(opts Options, newRenderer RendererFactory, log *logger.Logger, m *metrics.Metrics) *Generator {
	if log == nil {
		log = logger.Nop()
	}
	if m == nil {
		m = metrics.New()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Retry.Attempts == 0 {
		opts.Retry = DefaultBackoff()
	}
	return &Generator{opts: opts, newRenderer: newRenderer, log: log, metrics: m}
}

func (g *Generator) validate() error {
	if g.newRenderer == nil {
		return errors.New("dataset: renderer factory is required")
	}
	if g.opts.Profile == nil {
		return errors.New("dataset: profile is required")
	}
	if g.opts.OutputDir == "" {
		return errors.New("dataset: output dir is required")
	}
	if g.opts.NumImages < 0 {
		return fmt.Errorf("dataset: negative image count %d", g.opts.NumImages)
	}
	return g.opts.Profile.Validate()
}

// Run generates the whole dataset. Page failures are logged, counted and
// reported without stopping the run; configuration errors, empty pools and
// directory creation failures abort it before any page is attempted.
func (g *Generator) Run(ctx context.Context) (*Report, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}
	fontPool, err := ScanFonts(g.opts.FontDir)
	if err != nil {
		return nil, err
	}
	bgPool, err := ScanBackgrounds(g.opts.BackgroundDir)
	if err != nil {
		return nil, err
	}
	train, val, err := Partition(g.opts.NumImages, g.opts.TrainRatio, g.opts.Seed)
	if err != nil {
		return nil, err
	}
	dirs, err := g.prepareDirs()
	if err != nil {
		return nil, err
	}

	jobs := make([]job, 0, len(train)+len(val))
	for i, global := range train {
		jobs = append(jobs, job{split: SplitTrain, index: i + 1, global: global, dirs: dirs[SplitTrain]})
	}
	for i, global := range val {
		jobs = append(jobs, job{split: SplitVal, index: i + 1, global: global, dirs: dirs[SplitVal]})
	}

	report := &Report{RunID: g.opts.RunID, Train: len(train), Val: len(val)}
	g.log.WithFields(map[string]interface{}{
		"run_id":  g.opts.RunID,
		"profile": g.opts.Profile.Name,
		"train":   len(train),
		"val":     len(val),
		"fonts":   fontPool.Len(),
		"bgs":     bgPool.Len(),
		"workers": g.opts.Workers,
	}).Info("generation started")

	var mu sync.Mutex
	jobCh := make(chan job)
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		defer close(jobCh)
		for _, j := range jobs {
			select {
			case jobCh <- j:
			case <-egCtx.Done():
				return nil
			}
		}
		return nil
	})

	for w := 0; w < g.opts.Workers; w++ {
		eg.Go(func() error {
			backend, err := g.newRenderer()
			if err != nil {
				return fmt.Errorf("dataset: create renderer: %w", err)
			}
			for j := range jobCh {
				if egCtx.Err() != nil {
					return nil
				}
				g.metrics.ActiveWorkers.Inc()
				out, err := g.generatePage(egCtx, backend, fontPool, bgPool, j)
				g.metrics.ActiveWorkers.Dec()

				mu.Lock()
				if err != nil {
					pageErr := &PageError{Split: j.split, Index: j.index, Err: err}
					report.Failed++
					report.Errors = append(report.Errors, pageErr)
					mu.Unlock()
					g.metrics.PageDone(j.split, metrics.StatusFailed, 0, 0, 0)
					g.log.WithFields(map[string]interface{}{
						"split": j.split,
						"index": j.index,
					}).WithError(err).Error("page failed")
					continue
				}
				report.Generated++
				report.Fragments += out.fragments
				report.Overflows += out.overflows
				report.Clipped += out.clipped
				mu.Unlock()
				g.metrics.PageDone(j.split, metrics.StatusOK, out.fragments, out.overflows, out.clipped)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return report, err
	}
	if ctx.Err() != nil && report.Generated+report.Failed < len(jobs) {
		report.Canceled = true
		g.log.WithFields(map[string]interface{}{
			"generated": report.Generated,
			"remaining": len(jobs) - report.Generated - report.Failed,
		}).Warn("generation canceled")
		return report, ctx.Err()
	}

	g.log.WithFields(map[string]interface{}{
		"run_id":    g.opts.RunID,
		"generated": report.Generated,
		"failed":    report.Failed,
		"fragments": report.Fragments,
		"overflows": report.Overflows,
		"clipped":   report.Clipped,
	}).Info("generation finished")
	return report, nil
}

func (g *Generator) prepareDirs() (map[string]splitDirs, error) {
	root := filepath.Join(g.opts.OutputDir, RootDirName)
	out := map[string]splitDirs{}
	for _, split := range []string{SplitTrain, SplitVal} {
		d := splitDirs{
			images: filepath.Join(root, split, "images"),
			labels: filepath.Join(root, split, "labels"),
		}
		for _, dir := range []string{d.images, d.labels} {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("dataset: create %s: %w", dir, err)
			}
		}
		out[split] = d
	}
	return out, nil
}

// generatePage lays out, renders and writes a single page. Draws from the
// page's random stream happen in a fixed order: geometry, font, background,
// ruling, then the layout itself.
func (g *Generator) generatePage(ctx context.Context, backend renderer.Backend, fontPool, bgPool *Pool, j job) (pageOutcome, error) {
	profile := g.opts.Profile
	rng := rand.New(rand.NewPCG(g.opts.Seed, uint64(j.global)))

	spec := profile.Ranges.Choose(rng, false)
	fontPath := fontPool.Pick(rng)
	bgPath := bgPool.Pick(rng)
	spec.Ruled = rng.IntN(2) == 0

	start := time.Now()
	font := layout.FontResource{Name: fileStem(fontPath), Src: fontPath}
	result, err := layout.Build(spec, layout.BuildOptions{
		Typesetter: backend,
		Policy:     profile.Layout,
		Vocabulary: profile.Vocabulary,
		Font:       font,
		Background: bgPath,
		Rand:       rng,
	})
	if err != nil {
		return pageOutcome{}, fmt.Errorf("layout: %w", err)
	}
	g.metrics.ObserveStage(metrics.StageLayout, start)

	stem, err := binding.Expand(profile.Names, map[string]any{
		"n":     j.index,
		"index": j.global,
		"split": j.split,
		"bg":    binding.SafeName(fileStem(bgPath)),
		"font":  binding.SafeName(fileStem(fontPath)),
	})
	if err != nil {
		return pageOutcome{}, err
	}

	start = time.Now()
	img, err := backend.Render(result)
	if err != nil {
		return pageOutcome{}, fmt.Errorf("render: %w", err)
	}
	g.metrics.ObserveStage(metrics.StageRender, start)

	start = time.Now()
	imagePath := filepath.Join(j.dirs.images, stem+".png")
	if err := g.write(ctx, imagePath, img); err != nil {
		return pageOutcome{}, err
	}
	recs := labels.Records(result, profile.Labels)
	labelPath := filepath.Join(j.dirs.labels, stem+".txt")
	if err := g.write(ctx, labelPath, labels.Marshal(recs, profile.Labels)); err != nil {
		return pageOutcome{}, err
	}
	g.metrics.ObserveStage(metrics.StageWrite, start)

	if result.Overflows > 0 {
		g.log.WithFields(map[string]interface{}{
			"split":     j.split,
			"index":     j.index,
			"overflows": result.Overflows,
			"width":     spec.Width,
		}).Warn("fragments wider than the usable region")
	}
	if result.Clipped > 0 {
		g.log.WithFields(map[string]interface{}{
			"split":   j.split,
			"index":   j.index,
			"clipped": result.Clipped,
			"height":  spec.Height,
		}).Warn("fragments below the page bottom")
	}
	if g.opts.DebugDir != "" {
		rec := layout.DebugRecord{RunID: g.opts.RunID, Split: j.split, Stem: stem, Index: j.index, Result: result}
		debugPath := filepath.Join(g.opts.DebugDir, j.split, stem+".json")
		if err := layout.WriteDebugJSON(rec, debugPath); err != nil {
			g.log.WithError(err).Warn("write debug layout")
		}
	}
	g.log.Debugw("page generated",
		"split", j.split,
		"stem", stem,
		"fragments", len(result.Fragments),
		"ruled", spec.Ruled,
	)
	return pageOutcome{fragments: len(result.Fragments), overflows: result.Overflows, clipped: result.Clipped}, nil
}

func (g *Generator) write(ctx context.Context, path string, data []byte) error {
	err := g.opts.Retry.Do(ctx, func() error {
		return os.WriteFile(path, data, 0o644)
	}, func(attempt int, err error) {
		g.metrics.WriteRetriesTotal.Inc()
		g.log.Debugw("retrying write", "path", path, "attempt", attempt, "error", err)
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
