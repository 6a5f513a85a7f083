// Package app implements the pool-detect command: flag parsing, detector
// selection and writing of the coordinate report and annotated image.
package app

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/ironsheep/pool-detect/internal/config"
	"github.com/ironsheep/pool-detect/internal/detection"
	"github.com/ironsheep/pool-detect/internal/imaging"
	"github.com/ironsheep/pool-detect/internal/render"
	"github.com/ironsheep/pool-detect/internal/report"
)

const name = "pool-detect"

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// BuildInfo is stamped into the binary with ldflags.
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

// App runs one invocation of the command. Zero fields fall back to the
// process defaults.
type App struct {
	Stdout    io.Writer
	Stderr    io.Writer
	LookupEnv func(string) (string, bool)
	Registry  *detection.Registry
	Build     BuildInfo
}

// New returns an App wired to the process streams and environment.
func New(build BuildInfo) *App {
	return &App{
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		LookupEnv: os.LookupEnv,
		Registry:  detection.DefaultRegistry(),
		Build:     build,
	}
}

// Outputs are the files written by a run.
type Outputs struct {
	Coordinates string
	Image       string
	// Mask is only written with --debug by detectors that expose their mask.
	Mask        string
}

// OutputPaths derives the output paths for input under dir. The stem is the
// base name without its last extension; a dotfile such as ".tile" keeps its
// whole name.
func OutputPaths(dir, input, method string) Outputs {
	base := filepath.Base(input)
	stem := base
	if ext := filepath.Ext(base); ext != base {
		stem = strings.TrimSuffix(base, ext)
	}
	return Outputs{
		Coordinates: filepath.Join(dir, fmt.Sprintf("%s_coords_%s.txt", stem, method)),
		Image:       filepath.Join(dir, fmt.Sprintf("%s_result_%s.jpg", stem, method)),
		Mask:        filepath.Join(dir, fmt.Sprintf("%s_mask_%s.png", stem, method)),
	}
}

// segmenter is implemented by detectors that threshold the image into a
// binary mask before tracing.
type segmenter interface {
	Segment(img image.Image) *imaging.Mask
}

// Run executes the command with args (without the program name) and
// returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	a.fillDefaults()

	cfg := config.Default()
	cfg.ApplyEnv(a.LookupEnv)

	var (
		lineColor   string
		showVersion bool
		aliased     bool
	)
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	fs.StringVarP(&cfg.Method, "method", "m", cfg.Method,
		fmt.Sprintf("detection method (%s)", strings.Join(a.Registry.Names(), ", ")))
	fs.StringVarP(&cfg.OutputDir, "output-dir", "o", cfg.OutputDir, "where to save results")
	fs.StringVar(&lineColor, "line-color", "#FF0000", "outline color as #RRGGBB or #RRGGBBAA")
	fs.IntVar(&cfg.Overlay.Thickness, "thickness", cfg.Overlay.Thickness, "outline thickness in pixels")
	fs.BoolVar(&aliased, "aliased", false, "draw outlines without anti-aliasing")
	fs.BoolVar(&cfg.Overlay.Labels, "labels", cfg.Overlay.Labels, "number each pool on the annotated image")
	fs.BoolVar(&cfg.Debug, "debug", false, "enable debug logging")
	fs.BoolVarP(&showVersion, "version", "v", false, "print version information")
	fs.Usage = func() {
		fmt.Fprintf(a.Stderr, "%s - swimming pool detector\n\n", name)
		fmt.Fprintf(a.Stderr, "Usage: %s <image-path> [options]\n\n", name)
		fmt.Fprintln(a.Stderr, "Options:")
		fs.PrintDefaults()
		fmt.Fprintln(a.Stderr)
		fmt.Fprintln(a.Stderr, "Environment variables:")
		fmt.Fprintf(a.Stderr, "  %s=debug    Set the log level\n", config.EnvLogLevel)
		fmt.Fprintf(a.Stderr, "  %s          API key for the llm method\n", config.EnvAPIKey)
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return ExitOK
		}
		return ExitUsage
	}

	if showVersion {
		fmt.Fprintf(a.Stdout, "%s %s\n", name, a.Build.Version)
		fmt.Fprintf(a.Stdout, "  Build time: %s\n", a.Build.BuildTime)
		fmt.Fprintf(a.Stdout, "  Git commit: %s\n", a.Build.GitCommit)
		return ExitOK
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(a.Stderr, "expected exactly one image path, got %d\n", fs.NArg())
		fs.Usage()
		return ExitUsage
	}

	c, err := render.ParseHexColor(lineColor)
	if err != nil {
		fmt.Fprintf(a.Stderr, "invalid --line-color: %v\n", err)
		return ExitUsage
	}
	cfg.Overlay.Color = c
	cfg.Overlay.AntiAlias = !aliased

	log := a.initLogger(cfg)
	log.WithFields(logrus.Fields{
		"version": a.Build.Version,
		"method":  cfg.Method,
	}).Debug("Starting")

	return a.detect(ctx, cfg, fs.Arg(0), log)
}

func (a *App) detect(ctx context.Context, cfg config.Config, input string, log *logrus.Logger) int {
	if st, err := os.Stat(input); err != nil || !st.Mode().IsRegular() {
		fmt.Fprintf(a.Stdout, "Image not found: %s\n", input)
		return ExitFailure
	}

	if !a.Registry.Has(cfg.Method) {
		fmt.Fprintf(a.Stderr, "unknown method %q (available: %s)\n",
			cfg.Method, strings.Join(a.Registry.Names(), ", "))
		return ExitUsage
	}
	detector, err := a.Registry.New(cfg.Method, cfg.DetectorOptions(log))
	if err != nil {
		log.WithError(err).Error("Could not create detector")
		return ExitFailure
	}
	fmt.Fprintf(a.Stdout, "Using detector: %s\n", detector.Name())

	out := OutputPaths(cfg.OutputDir, input, cfg.Method)
	img, polygons := a.findPools(ctx, detector, input, log)
	if cfg.Debug && img != nil {
		a.saveMask(detector, img, out.Mask, log)
	}
	if err := report.WriteCoordinates(out.Coordinates, polygons); err != nil {
		log.WithError(err).Error("Could not save coordinates")
		return ExitFailure
	}

	if len(polygons) == 0 {
		fmt.Fprintln(a.Stdout, "No pool detected.")
		return ExitOK
	}

	annotated := render.Annotate(img, polygons, cfg.Overlay)
	if err := imaging.SaveJPEG(out.Image, annotated, imaging.DefaultJPEGQuality); err != nil {
		log.WithError(err).Error("Could not save annotated image")
		return ExitFailure
	}

	fmt.Fprintln(a.Stdout, "Results saved:")
	fmt.Fprintf(a.Stdout, "  Coordinates -> %s\n", out.Coordinates)
	fmt.Fprintf(a.Stdout, "  Image       -> %s\n", out.Image)
	return ExitOK
}

// findPools loads and analyses the image. Decode and detector failures are
// logged and yield an empty result.
func (a *App) findPools(ctx context.Context, d detection.Detector, input string, log *logrus.Logger) (image.Image, []detection.Polygon) {
	img, err := imaging.Load(input)
	if err != nil {
		var le *imaging.LoadError
		if errors.As(err, &le) {
			log.WithError(le.Err).WithField("path", le.Path).Error("Cannot load image")
		} else {
			log.WithError(err).Error("Cannot load image")
		}
		return nil, nil
	}

	info := imaging.Describe(input, img)
	log.WithFields(logrus.Fields{
		"width":  info.Width,
		"height": info.Height,
		"format": info.Format,
		"bytes":  info.FileSizeBytes,
	}).Debug("Image loaded")

	polygons, err := d.Detect(ctx, img)
	if err != nil {
		log.WithError(err).WithField("method", d.Name()).Error("Detection failed")
		return img, nil
	}
	log.WithField("pools", len(polygons)).Info("Detection finished")
	return img, polygons
}

// saveMask writes the detector's cleaned mask for threshold tuning. Failures
// are logged and do not affect the run.
func (a *App) saveMask(d detection.Detector, img image.Image, path string, log *logrus.Logger) {
	s, ok := d.(segmenter)
	if !ok {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.WithError(err).Warn("Could not create output directory for mask")
		return
	}
	if err := imaging.SavePNG(path, s.Segment(img).Gray()); err != nil {
		log.WithError(err).Warn("Could not save mask")
		return
	}
	log.WithField("path", path).Debug("Mask saved")
}

// initLogger writes text logs to stderr; stdout carries the status lines.
func (a *App) initLogger(cfg config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(a.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	lvl, err := cfg.Level()
	logger.SetLevel(lvl)
	if err != nil {
		logger.WithError(err).Warn("Falling back to info logging")
	}
	if lvl == logrus.DebugLevel {
		logger.Debug("Debug logging enabled")
	}
	return logger
}

func (a *App) fillDefaults() {
	if a.Stdout == nil {
		a.Stdout = os.Stdout
	}
	if a.Stderr == nil {
		a.Stderr = os.Stderr
	}
	if a.LookupEnv == nil {
		a.LookupEnv = os.LookupEnv
	}
	if a.Registry == nil {
		a.Registry = detection.DefaultRegistry()
	}
}
