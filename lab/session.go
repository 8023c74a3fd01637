// Package lab holds the point set of one virtual-lab experiment and runs the
// matching routine over it.
//
// A Session replaces the state a front end would keep: the points the student
// has placed, random point generation and the "run" button.
//
//	s, _ := lab.NewSession(lab.KNN, lab.WithSeed(1))
//	for i := 0; i < 20; i++ {
//	    s.AddRandomPoint()
//	}
//	label, err := s.RunKNN(s.RandomQuery(), 3)
package lab

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/YuminosukeSato/mlvlab/core/geom"
	"github.com/YuminosukeSato/mlvlab/pkg/errors"
	"github.com/YuminosukeSato/mlvlab/pkg/log"
)

const (
	// DefaultK is the k offered for k-means and KNN.
	DefaultK = 3
	// DefaultMin and DefaultMax bound random points on both axes.
	DefaultMin = 0.0
	DefaultMax = 10.0
)

// Session is the point set of one experiment. It is safe for concurrent use.
type Session struct {
	id   string
	kind Experiment

	mu     sync.RWMutex
	points []geom.LabeledPoint

	rngMu sync.Mutex
	rng   *rand.Rand

	seed     int64
	seeded   bool
	min, max float64
	defaultK int
	logger   log.Logger

	registerer prometheus.Registerer
	observer   *Observer
}

// Option configures a Session.
type Option func(*Session)

// WithSeed makes random points and k-means initialisation reproducible.
func WithSeed(seed int64) Option {
	return func(s *Session) {
		s.seed = seed
		s.seeded = true
	}
}

// WithBounds sets the range [min, max) random points are drawn from.
func WithBounds(min, max float64) Option {
	return func(s *Session) {
		s.min = min
		s.max = max
	}
}

// WithDefaultK sets the k Run uses when Params.K is zero.
func WithDefaultK(k int) Option {
	return func(s *Session) {
		s.defaultK = k
	}
}

// WithLogger sets the logger. Routines run by the session log through it.
func WithLogger(logger log.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithRegisterer exports run counts and durations to r.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(s *Session) {
		s.registerer = r
	}
}

// NewSession creates an empty session for kind.
func NewSession(kind Experiment, opts ...Option) (*Session, error) {
	s := &Session{
		kind:     kind,
		min:      DefaultMin,
		max:      DefaultMax,
		defaultK: DefaultK,
	}
	for _, opt := range opts {
		opt(s)
	}

	if !kind.valid() {
		return nil, errors.NewValidationError("experiment", "unknown experiment", int(kind))
	}
	if !(s.min < s.max) {
		return nil, errors.NewValidationError("bounds", "min must be below max", []float64{s.min, s.max})
	}
	if s.defaultK < 1 {
		return nil, errors.NewValidationError("k", "must be at least 1", s.defaultK)
	}

	s.observer = NewObserver()
	if s.registerer != nil {
		if err := s.observer.Register(s.registerer); err != nil {
			return nil, err
		}
	}

	if !s.seeded {
		s.seed = time.Now().UnixNano()
	}
	s.rng = rand.New(rand.NewSource(s.seed))
	if s.logger == nil {
		s.logger = log.GetLoggerWithName("lab")
	}
	s.id = uuid.NewString()
	s.logger = s.logger.With(
		log.ExperimentKey, kind.String(),
		log.SessionKey, s.id,
	)
	return s, nil
}

// ID identifies the session in logs.
func (s *Session) ID() string {
	return s.id
}

// Experiment returns the session's experiment.
func (s *Session) Experiment() Experiment {
	return s.kind
}

// DefaultK returns the k used when none is given.
func (s *Session) DefaultK() int {
	return s.defaultK
}

// AddPoint appends an unlabeled point. Labeled experiments store it as class 0.
func (s *Session) AddPoint(x, y float64) {
	s.append(geom.LabeledPoint{X: x, Y: y})
}

// AddLabeledPoint appends a point of class label.
func (s *Session) AddLabeledPoint(x, y float64, label geom.Label) error {
	if !label.Valid() {
		return errors.NewValidationError("label", "must be 0 or 1", int(label))
	}
	s.append(geom.LabeledPoint{X: x, Y: y, Label: label})
	return nil
}

// AddRandomPoint appends a point drawn uniformly from the session bounds and
// returns it. For labeled experiments the label is 1 iff a uniform draw
// exceeds 0.5.
func (s *Session) AddRandomPoint() geom.LabeledPoint {
	s.rngMu.Lock()
	p := geom.LabeledPoint{X: s.uniform(), Y: s.uniform()}
	if s.kind.Labeled() && s.rng.Float64() > 0.5 {
		p.Label = geom.Positive
	}
	s.rngMu.Unlock()

	s.append(p)
	return p
}

// RandomQuery draws a point to classify. It is not added to the session.
func (s *Session) RandomQuery() geom.Point {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return geom.Point{X: s.uniform(), Y: s.uniform()}
}

// uniform requires rngMu.
func (s *Session) uniform() float64 {
	return s.min + s.rng.Float64()*(s.max-s.min)
}

func (s *Session) nextSeed() int64 {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Int63()
}

func (s *Session) append(p geom.LabeledPoint) {
	s.mu.Lock()
	s.points = append(s.points, p)
	s.mu.Unlock()
}

// Clear drops every point.
func (s *Session) Clear() {
	s.mu.Lock()
	s.points = nil
	s.mu.Unlock()
	s.logger.Debug("session cleared")
}

// Len returns the number of points.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}

// LabeledPoints returns a copy of the points with their labels.
func (s *Session) LabeledPoints() []geom.LabeledPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]geom.LabeledPoint(nil), s.points...)
}

// Points returns a copy of the points without labels.
func (s *Session) Points() []geom.Point {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return geom.Points(s.points)
}
