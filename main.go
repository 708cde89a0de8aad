package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/nepomucenoc/synthetic-images-generator/config"
	"github.com/nepomucenoc/synthetic-images-generator/dataset"
	"github.com/nepomucenoc/synthetic-images-generator/layout"
	"github.com/nepomucenoc/synthetic-images-generator/logger"
	"github.com/nepomucenoc/synthetic-images-generator/metrics"
	"github.com/nepomucenoc/synthetic-images-generator/renderer"
	canvasrenderer "github.com/nepomucenoc/synthetic-images-generator/renderer/canvas"
)

// cliFlags 保存命令行参数；只有显式给出的参数才会覆盖配置。
type cliFlags struct {
	config       string
	out          string
	fonts        string
	backgrounds  string
	n            int
	ratio        float64
	seed         uint64
	workers      int
	profile      string
	vocabulary   string
	debug        string
	metrics      string
	logLevel     string
	logFormat    string
	listProfiles bool
}

func newFlagSet(name string, handling flag.ErrorHandling) (*flag.FlagSet, *cliFlags) {
	fs := flag.NewFlagSet(name, handling)
	f := &cliFlags{}
	fs.StringVar(&f.config, "config", "", "YAML 配置文件路径")
	fs.StringVar(&f.out, "out", "", "输出目录（其下创建 sintetico/）")
	fs.StringVar(&f.fonts, "fonts", "", "字体目录（.ttf/.otf）")
	fs.StringVar(&f.backgrounds, "backgrounds", "", "背景图片目录（.png/.jpg/.jpeg）")
	fs.IntVar(&f.n, "n", 0, "生成图片总数")
	fs.Float64Var(&f.ratio, "ratio", 0, "训练集比例 [0,1]")
	fs.Uint64Var(&f.seed, "seed", 0, "随机种子")
	fs.IntVar(&f.workers, "workers", 0, "并发 worker 数")
	fs.StringVar(&f.profile, "profile", "", "内置 profile 名称或 profile 文件路径")
	fs.StringVar(&f.vocabulary, "vocabulary", "", "词表文件（每行一个词条）")
	fs.StringVar(&f.debug, "debug", "", "布局调试 JSON 输出目录")
	fs.StringVar(&f.metrics, "metrics", "", "Prometheus textfile 输出路径")
	fs.StringVar(&f.logLevel, "log-level", "", "日志级别 debug/info/warn/error")
	fs.StringVar(&f.logFormat, "log-format", "", "日志格式 console/json")
	fs.BoolVar(&f.listProfiles, "list-profiles", false, "列出内置 profile 后退出")
	return fs, f
}

func main() {
	fs, flags := newFlagSet(os.Args[0], flag.ExitOnError)
	_ = fs.Parse(os.Args[1:])

	if flags.listProfiles {
		for _, name := range dataset.BuiltinProfiles() {
			fmt.Println(name)
		}
		return
	}

	cfg, err := config.Load(flags.config)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if err := applyFlags(fs, flags, cfg); err != nil {
		log.Fatalf("解析命令行参数失败: %v", err)
	}

	lg := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := run(ctx, cfg, lg)
	if err != nil {
		lg.WithError(err).Error("生成数据集失败")
		stop()
		os.Exit(1)
	}
	fmt.Printf("已生成 %d 张图片（训练 %d / 验证 %d，失败 %d，越界片段 %d，越过底部 %d）：%s\n",
		report.Generated, report.Train, report.Val, report.Failed, report.Overflows, report.Clipped, cfg.OutputDir)
	if report.Failed > 0 {
		stop()
		os.Exit(1)
	}
}

// applyFlags 仅覆盖命令行中显式给出的参数，优先级高于配置文件与环境变量。
func applyFlags(fs *flag.FlagSet, f *cliFlags, cfg *config.Config) error {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "out":
			cfg.OutputDir = f.out
		case "fonts":
			cfg.FontDir = f.fonts
		case "backgrounds":
			cfg.BackgroundDir = f.backgrounds
		case "n":
			cfg.NumImages = f.n
		case "ratio":
			cfg.TrainRatio = f.ratio
		case "seed":
			cfg.Seed = f.seed
		case "workers":
			cfg.Workers = f.workers
		case "profile":
			cfg.Profile = f.profile
		case "vocabulary":
			cfg.VocabularyFile = f.vocabulary
		case "debug":
			cfg.DebugDir = f.debug
		case "metrics":
			cfg.MetricsFile = f.metrics
		case "log-level":
			cfg.Log.Level = f.logLevel
		case "log-format":
			cfg.Log.Format = f.logFormat
		}
	})
	return cfg.Validate()
}

// run 串联 profile 加载、渲染器创建与数据集生成。
func run(ctx context.Context, cfg *config.Config, lg *logger.Logger) (*dataset.Report, error) {
	profile, err := dataset.LoadProfile(cfg.Profile)
	if err != nil {
		return nil, fmt.Errorf("加载 profile 失败: %w", err)
	}
	if cfg.VocabularyFile != "" {
		words, err := dataset.LoadVocabulary(cfg.VocabularyFile)
		if err != nil {
			return nil, fmt.Errorf("加载词表失败: %w", err)
		}
		profile.Vocabulary = words
	}

	runID := uuid.NewString()
	runLog := lg.WithFields(map[string]interface{}{"run_id": runID})
	m := metrics.New()

	newRenderer := func() (renderer.Backend, error) {
		return canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
			OnFallback: func(font layout.FontResource, err error) {
				m.FontFallbacksTotal.Inc()
				runLog.WithFields(map[string]interface{}{"font": font.Src}).
					WithError(err).
					Warn("字体加载失败，改用内置字体")
			},
		}), nil
	}

	gen := dataset.NewGenerator(dataset.Options{
		OutputDir:     cfg.OutputDir,
		FontDir:       cfg.FontDir,
		BackgroundDir: cfg.BackgroundDir,
		NumImages:     cfg.NumImages,
		TrainRatio:    cfg.TrainRatio,
		Seed:          cfg.Seed,
		Workers:       cfg.Workers,
		Profile:       profile,
		DebugDir:      cfg.DebugDir,
		RunID:         runID,
		Retry:         dataset.DefaultBackoff(),
	}, newRenderer, runLog, m)

	report, runErr := gen.Run(ctx)
	if cfg.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			runLog.WithError(err).Warn("写入 metrics 文件失败")
		}
	}
	return report, runErr
}
