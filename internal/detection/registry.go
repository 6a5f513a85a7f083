package detection

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Method names accepted by the registry.
const (
	MethodOpenCV = "opencv"
	MethodLLM    = "llm"
	MethodGoCV   = "gocv"
)

// ErrUnknownMethod is returned by Registry.New for unregistered method names.
var ErrUnknownMethod = errors.New("unknown detection method")

// Options carries everything a Factory may need to build a detector.
type Options struct {
	Params Params
	LLM    LLMOptions
	Logger logrus.FieldLogger
}

// Factory builds a detector from options.
type Factory func(opts Options) (Detector, error)

// Registry maps method names to detector factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry with every detector compiled into this
// binary: "opencv" and "llm" always, "gocv" when built with the gocv tag.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(MethodOpenCV, func(opts Options) (Detector, error) {
		return NewColorDetector(opts.Params, opts.Logger), nil
	})
	r.Register(MethodLLM, func(opts Options) (Detector, error) {
		return NewLLMDetector(opts.LLM, opts.Logger)
	})
	registerNative(r)
	return r
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.factories[name]
	return ok
}

// Names returns the registered method names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the detector registered under name.
func (r *Registry) New(name string, opts Options) (Detector, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownMethod, "%q (available: %v)", name, r.Names())
	}
	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}
	d, err := f(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create %s detector", name)
	}
	return d, nil
}
