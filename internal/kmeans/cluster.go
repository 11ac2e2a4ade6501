package kmeans

import (
	"fmt"
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// DefaultMaxIterations is used when a non-positive iteration bound is supplied.
const DefaultMaxIterations = 200

// State of a clustering run.
type State int

const (
	StateInitialized State = iota
	StateIterating
	StateConverged
	StateMaxIterReached
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateIterating:
		return "iterating"
	case StateConverged:
		return "converged"
	case StateMaxIterReached:
		return "max_iter_reached"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// EmptyClusterPolicy decides the position of a centroid that lost all its points.
type EmptyClusterPolicy int

const (
	// CollapseToOrigin moves an empty cluster's centroid to the zero vector.
	CollapseToOrigin EmptyClusterPolicy = iota
	// RetainPrevious keeps an empty cluster's centroid where it was.
	RetainPrevious
)

type Trainer struct {
	k             int
	maxIterations int
	emptyPolicy   EmptyClusterPolicy
	logger        *slog.Logger
}

type TrainerOption func(*Trainer)

type Model struct {
	k         int
	data      []Point
	centroids []Point
	iter      int
	state     State
}

// NewTrainer create new Trainer
func NewTrainer(k int, options ...TrainerOption) Trainer {
	t := Trainer{
		k:             k,
		maxIterations: DefaultMaxIterations,
		emptyPolicy:   CollapseToOrigin,
		logger:        slog.Default(),
	}
	for i := range options {
		options[i](&t)
	}
	return t
}

// WithMaxIterations bounds the number of iterations.
// A non-positive value selects DefaultMaxIterations.
func WithMaxIterations(i int) TrainerOption {
	return func(t *Trainer) {
		t.maxIterations = i
	}
}

func WithEmptyClusterPolicy(p EmptyClusterPolicy) TrainerOption {
	return func(t *Trainer) {
		t.emptyPolicy = p
	}
}

func WithLogger(l *slog.Logger) TrainerOption {
	return func(t *Trainer) {
		if l != nil {
			t.logger = l
		}
	}
}

// Fit clusters points starting from the initial centroids.
// Point labels are updated in place; initial is left untouched.
func (t Trainer) Fit(points []Point, initial []Point) (*Model, error) {
	d, err := t.validate(points, initial)
	if err != nil {
		return nil, err
	}
	maxIterations := t.maxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	model := &Model{
		k:         t.k,
		data:      points,
		centroids: make([]Point, t.k),
		state:     StateInitialized,
	}
	for j := range initial {
		model.centroids[j] = Point{components: slices.Clone(initial[j].components), label: j}
	}

	model.state = StateIterating
	for model.iter < maxIterations {
		model.iter++
		changes := assign(points, model.centroids)
		next := update(points, model.centroids, d, t.emptyPolicy)

		done, err := Converged(model.centroids, next)
		if err != nil {
			return nil, err
		}
		t.logger.Debug("Iteration",
			slog.Int("iter", model.iter),
			slog.Int("changes", changes),
			slog.Bool("converged", done))
		if done {
			model.state = StateConverged
			break
		}
		model.centroids = next
	}
	if model.state != StateConverged {
		model.state = StateMaxIterReached
	}

	t.logger.Debug("Clustering finished",
		slog.Int("k", t.k),
		slog.Int("iter", model.iter),
		slog.String("state", model.state.String()))
	return model, nil
}

func (t Trainer) validate(points []Point, initial []Point) (int, error) {
	if t.k <= 1 {
		return 0, fmt.Errorf("%w: k must be greater than 1, got %d", ErrInvalidParameters, t.k)
	}
	if len(points) <= t.k {
		return 0, fmt.Errorf("%w: k must be less than the number of points, got k=%d n=%d", ErrInvalidParameters, t.k, len(points))
	}
	if len(initial) != t.k {
		return 0, fmt.Errorf("%w: got %d initial centroids for k=%d", ErrInvalidParameters, len(initial), t.k)
	}
	d := points[0].Dim()
	if d < 1 {
		return 0, fmt.Errorf("%w: dimension %d", ErrInvalidParameters, d)
	}
	if err := checkDim(points, d, "point"); err != nil {
		return 0, err
	}
	if err := checkDim(initial, d, "centroid"); err != nil {
		return 0, err
	}
	return d, nil
}

func checkDim(set []Point, d int, what string) error {
	for i := range set {
		if set[i].Dim() != d {
			return fmt.Errorf("%w: %s %d has dimension %d, want %d", ErrDimensionMismatch, what, i, set[i].Dim(), d)
		}
	}
	return nil
}

// assign labels every point with its nearest centroid and returns how many labels changed.
// The first centroid at the minimum distance wins.
func assign(points []Point, centroids []Point) int {
	changes := 0
	for i := range points {
		m := EuclideanDistance(points[i].components, centroids[0].components)
		n := 0

		for j := 1; j < len(centroids); j++ {
			if d := EuclideanDistance(points[i].components, centroids[j].components); d < m {
				m = d
				n = j
			}
		}

		if points[i].label != n {
			changes++
		}
		points[i].label = n
	}
	return changes
}

// update computes the mean of every cluster into a new centroid set.
func update(points []Point, previous []Point, d int, policy EmptyClusterPolicy) []Point {
	k := len(previous)
	counts := make([]int, k)
	next := make([]Point, k)
	for j := range next {
		next[j] = Point{components: make([]float64, d), label: j}
	}

	for i := range points {
		n := points[i].label
		floats.Add(next[n].components, points[i].components)
		counts[n]++
	}

	for j, c := range counts {
		if c == 0 {
			if policy == RetainPrevious {
				copy(next[j].components, previous[j].components)
			}
			continue
		}
		floats.Scale(1/float64(c), next[j].components)
	}
	return next
}

// Converged reports whether both centroid sets are exactly equal, component by component.
func Converged(old, next []Point) (bool, error) {
	if len(old) != len(next) {
		return false, fmt.Errorf("%w: centroid sets of size %d and %d", ErrInvalidParameters, len(old), len(next))
	}
	for i := range old {
		if err := sameDim(old[i], next[i]); err != nil {
			return false, err
		}
	}
	for i := range old {
		if !floats.Equal(old[i].components, next[i].components) {
			return false, nil
		}
	}
	return true, nil
}

// InitialCentroids copies the first k points into a new centroid set.
func InitialCentroids(points []Point, k int) ([]Point, error) {
	if k < 1 || k > len(points) {
		return nil, fmt.Errorf("%w: cannot pick %d centroids from %d points", ErrInvalidParameters, k, len(points))
	}
	centroids := make([]Point, k)
	for i := range centroids {
		centroids[i] = Point{components: slices.Clone(points[i].components), label: i}
	}
	return centroids, nil
}

// ValidateParameters checks 1 < k < n, n >= 1, d >= 1 and 1 < maxIter < 1000.
func ValidateParameters(k, n, d, maxIter int) error {
	if !(1 < k && k < n) {
		return fmt.Errorf("%w: invalid number of clusters %d for %d points", ErrInvalidParameters, k, n)
	}
	if n < 1 {
		return fmt.Errorf("%w: invalid number of points %d", ErrInvalidParameters, n)
	}
	if d < 1 {
		return fmt.Errorf("%w: invalid dimension of point %d", ErrInvalidParameters, d)
	}
	if !(1 < maxIter && maxIter < 1000) {
		return fmt.Errorf("%w: invalid maximum iteration %d", ErrInvalidParameters, maxIter)
	}
	return nil
}

// Run clusters n points of dimension d into k clusters and returns the centroids in index order.
// A non-positive maxIter selects DefaultMaxIterations.
func Run(points []Point, initial []Point, k, n, d, maxIter int, options ...TrainerOption) ([]Point, error) {
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	if err := ValidateParameters(k, n, d, maxIter); err != nil {
		return nil, err
	}
	if len(points) != n {
		return nil, fmt.Errorf("%w: got %d points, want %d", ErrInvalidParameters, len(points), n)
	}
	if len(initial) != k {
		return nil, fmt.Errorf("%w: got %d initial centroids, want %d", ErrInvalidParameters, len(initial), k)
	}
	if err := checkDim(points, d, "point"); err != nil {
		return nil, err
	}
	if err := checkDim(initial, d, "centroid"); err != nil {
		return nil, err
	}

	options = append(slices.Clip(options), WithMaxIterations(maxIter))
	m, err := NewTrainer(k, options...).Fit(points, initial)
	if err != nil {
		return nil, err
	}
	return m.Centroids(), nil
}

// Predict returns number of cluster to which the observation would be assigned.
func (m *Model) Predict(p []float64) (int, error) {
	if len(p) != m.centroids[0].Dim() {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(p), m.centroids[0].Dim())
	}
	l := 0
	n := EuclideanDistance(p, m.centroids[0].components)
	for i := 1; i < m.k; i++ {
		if d := EuclideanDistance(p, m.centroids[i].components); d < n {
			n = d
			l = i
		}
	}
	return l, nil
}

// Centroids returns the final centroid set in index order.
func (m *Model) Centroids() []Point {
	return slices.Clone(m.centroids)
}

// Guesses returns mapping from data point indices to cluster numbers.
func (m *Model) Guesses() []int {
	g := make([]int, len(m.data))
	for i := range m.data {
		g[i] = m.data[i].label
	}
	return g
}

// Cluster returns cluster at position i.
func (m *Model) Cluster(i int) []float64 {
	return m.centroids[i].Values()
}

// Iter returns model number of iterations.
func (m *Model) Iter() int {
	return m.iter
}

// State returns the terminal state of the run.
func (m *Model) State() State {
	return m.state
}
