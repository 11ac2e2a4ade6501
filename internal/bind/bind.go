// Package bind converts between kmeans points and plain slices or github.com/muesli/clusters values.
package bind

import (
	"fmt"

	"github.com/mawngo/kcluster/internal/kmeans"
	"github.com/muesli/clusters"
)

// Points converts rows into points of dimension d.
func Points(rows [][]float64, d int) ([]kmeans.Point, error) {
	points := make([]kmeans.Point, len(rows))
	for i, row := range rows {
		p, err := kmeans.NewPoint(d, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		points[i] = p
	}
	return points, nil
}

// Rows copies the components of every point.
func Rows(points []kmeans.Point) [][]float64 {
	rows := make([][]float64, len(points))
	for i := range points {
		rows[i] = points[i].Values()
	}
	return rows
}

// Fit runs k-means over plain slices: n points and k initial centroids, all of dimension d.
func Fit(points, centroids [][]float64, k, n, d, maxIter int, options ...kmeans.TrainerOption) ([][]float64, error) {
	if len(points) != n || len(centroids) != k {
		return nil, fmt.Errorf("%w: got %d points and %d centroids, want n=%d k=%d",
			kmeans.ErrInvalidParameters, len(points), len(centroids), n, k)
	}
	ps, err := Points(points, d)
	if err != nil {
		return nil, fmt.Errorf("points: %w", err)
	}
	cs, err := Points(centroids, d)
	if err != nil {
		return nil, fmt.Errorf("centroids: %w", err)
	}

	out, err := kmeans.Run(ps, cs, k, n, d, maxIter, options...)
	if err != nil {
		return nil, err
	}
	return Rows(out), nil
}

// FromObservations converts observations into points. All observations must share one dimension.
func FromObservations(obs clusters.Observations) ([]kmeans.Point, error) {
	if len(obs) == 0 {
		return nil, fmt.Errorf("%w: no observations", kmeans.ErrInvalidParameters)
	}
	d := len(obs[0].Coordinates())
	points := make([]kmeans.Point, len(obs))
	for i, o := range obs {
		p, err := kmeans.NewPoint(d, o.Coordinates())
		if err != nil {
			return nil, fmt.Errorf("observation %d: %w", i, err)
		}
		points[i] = p
	}
	return points, nil
}

// Clusters groups labelled points under their centroids.
func Clusters(points []kmeans.Point, centroids []kmeans.Point) (clusters.Clusters, error) {
	cc := make(clusters.Clusters, len(centroids))
	for j := range centroids {
		cc[j].Center = clusters.Coordinates(centroids[j].Values())
	}
	for i := range points {
		l := points[i].Label()
		if l < 0 || l >= len(cc) {
			return nil, fmt.Errorf("%w: point %d has label %d outside [0, %d)", kmeans.ErrInvalidParameters, i, l, len(cc))
		}
		cc[l].Observations = append(cc[l].Observations, clusters.Coordinates(points[i].Values()))
	}
	return cc, nil
}
