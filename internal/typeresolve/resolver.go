package typeresolve

import (
	"sync"

	"github.com/psantana5/vaultmod/pkg/logging"
	"github.com/psantana5/vaultmod/pkg/models"
)

// Introspector answers static metadata queries about wrapper types.
// Implementations are expected to be pure: the same wrapper type always
// yields the same answers.
type Introspector interface {
	// PrimitiveInfo returns the explicitly declared target type, if any
	PrimitiveInfo(t models.WrapperType) (models.TargetType, bool)
	// EnumParameter returns the type parameter of a generic enum wrapper
	EnumParameter(t models.WrapperType) (*models.EnumType, bool)
}

// Recorder receives cache hit/miss notifications
type Recorder interface {
	RecordResolution(hit bool)
}

// Resolver maps wrapper types to their target primitive types.
//
// The cache is append-only with no eviction. A Resolver is created once at
// startup and shared for the life of the process; it is safe for concurrent
// use, and each distinct wrapper type is introspected at most once.
type Resolver struct {
	introspector Introspector
	logger       *logging.Logger
	recorder     Recorder

	mu    sync.Mutex
	cache map[models.WrapperType]models.TargetType
}

// Option configures a Resolver
type Option func(*Resolver)

// WithLogger sets the logger used for cold resolutions
func WithLogger(l *logging.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// WithRecorder sets the hit/miss recorder
func WithRecorder(rec Recorder) Option {
	return func(r *Resolver) { r.recorder = rec }
}

// NewResolver creates a resolver over the given introspection service
func NewResolver(in Introspector, opts ...Option) *Resolver {
	r := &Resolver{
		introspector: in,
		logger:       logging.Discard(),
		cache:        make(map[models.WrapperType]models.TargetType),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the target primitive type of a wrapper type.
//
// Lookup order: cache, explicit primitive info, generic enum wrapper
// parameter. Failures are not cached.
func (r *Resolver) Resolve(t models.WrapperType) (models.TargetType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if target, ok := r.cache[t]; ok {
		r.record(true)
		return target, nil
	}
	r.record(false)

	target, ok := r.introspector.PrimitiveInfo(t)
	if !ok {
		enum, isEnumWrapper := r.introspector.EnumParameter(t)
		if !isEnumWrapper || enum == nil {
			return models.TargetType{}, models.NewSchemaError(t, "cannot determine primitive type")
		}
		target = models.EnumTarget(enum)
	}

	r.cache[t] = target
	r.logger.Debug("resolved wrapper type", logging.Fields{
		"wrapper": string(t),
		"target":  target.String(),
	})
	return target, nil
}

// Cached returns the cached target type without introspecting
func (r *Resolver) Cached(t models.WrapperType) (models.TargetType, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	target, ok := r.cache[t]
	return target, ok
}

// Len returns the number of resolved wrapper types
func (r *Resolver) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}

func (r *Resolver) record(hit bool) {
	if r.recorder != nil {
		r.recorder.RecordResolution(hit)
	}
}
