package kmeans

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// Unassigned is the label of a point that has not been through an assignment pass yet.
const Unassigned = -1

// Point is a fixed dimension vector with the index of the cluster it belongs to.
// Centroids are Points too; their label is the cluster index they stand for.
type Point struct {
	components []float64
	label      int
}

// NewPoint create a Point of the given dimension.
// A nil values slice produces the zero vector, otherwise values are copied.
func NewPoint(dimension int, values []float64) (Point, error) {
	if dimension < 1 {
		return Point{}, fmt.Errorf("%w: dimension %d", ErrInvalidParameters, dimension)
	}
	p := Point{label: Unassigned}
	if values == nil {
		p.components = make([]float64, dimension)
		return p, nil
	}
	if len(values) != dimension {
		return Point{}, fmt.Errorf("%w: got %d values for dimension %d", ErrDimensionMismatch, len(values), dimension)
	}
	p.components = slices.Clone(values)
	return p, nil
}

// Dim returns the number of components.
func (p Point) Dim() int {
	return len(p.components)
}

// Label returns the cluster index, or Unassigned.
func (p Point) Label() int {
	return p.label
}

// Values returns a copy of the components.
func (p Point) Values() []float64 {
	return slices.Clone(p.components)
}

func (p Point) String() string {
	return fmt.Sprintf("%v#%d", p.components, p.label)
}

// Add returns the component-wise sum of a and b.
func Add(a, b Point) (Point, error) {
	if err := sameDim(a, b); err != nil {
		return Point{}, err
	}
	s := Point{components: make([]float64, a.Dim()), label: Unassigned}
	floats.AddTo(s.components, a.components, b.components)
	return s, nil
}

// Scale returns v multiplied by s.
func Scale(v Point, s float64) Point {
	r := Point{components: make([]float64, v.Dim()), label: Unassigned}
	floats.ScaleTo(r.components, s, v.components)
	return r
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) (float64, error) {
	if err := sameDim(a, b); err != nil {
		return 0, err
	}
	return EuclideanDistance(a.components, b.components), nil
}

// EuclideanDistance measures distance between two vectors of the same length.
// Lengths are not checked.
func EuclideanDistance(a, b []float64) float64 {
	var (
		s, t float64
	)

	for i := range a {
		t = a[i] - b[i]
		s += t * t
	}

	return math.Sqrt(s)
}

func sameDim(a, b Point) error {
	if a.Dim() != b.Dim() {
		return fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, a.Dim(), b.Dim())
	}
	return nil
}
