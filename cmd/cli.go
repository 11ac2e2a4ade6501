package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mawngo/kcluster/internal/bind"
	"github.com/mawngo/kcluster/internal/dataset"
	"github.com/mawngo/kcluster/internal/kmeans"
	"github.com/phsym/console-slog"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

func Init() *slog.LevelVar {
	level := &slog.LevelVar{}
	logger := slog.New(
		console.NewHandler(os.Stderr, &console.HandlerOptions{
			Level:      level,
			TimeFormat: time.Kitchen,
		}))
	slog.SetDefault(logger)
	cobra.EnableCommandSorting = false
	return level
}

type CLI struct {
	command *cobra.Command
}

// NewCLI create new CLI instance and set up application config.
func NewCLI() *CLI {
	level := Init()

	f := flags{
		MaxIter:   kmeans.DefaultMaxIterations,
		Precision: 4,
	}

	command := cobra.Command{
		Use:           "kcluster [flags] <file>",
		Short:         "Cluster comma separated points with k-means",
		Long:          "Cluster the points of a comma separated file into k groups.\nThe first k points seed the centroids; final centroids are printed one per line.",
		Args:          cobra.ExactArgs(1),
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			debug, err := cmd.PersistentFlags().GetBool("debug")
			if err != nil {
				return err
			}
			if debug {
				level.Set(slog.LevelDebug)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.OutOrStdout(), args[0], f)
		},
	}

	command.Flags().IntVarP(&f.K, "clusters", "k", f.K, "Number of clusters")
	command.Flags().IntVarP(&f.Points, "points", "n", f.Points, "Expected number of points [0=count rows]")
	command.Flags().IntVar(&f.Dim, "dim", f.Dim, "Expected dimension of points [0=count columns]")
	command.Flags().IntVarP(&f.MaxIter, "iter", "i", f.MaxIter, "Maximum number of iterations [0=default]")
	command.Flags().IntVarP(&f.Precision, "precision", "p", f.Precision, "Number of decimals printed per component")
	command.Flags().BoolVar(&f.RetainEmpty, "retain-empty", f.RetainEmpty, "Keep the previous centroid of an empty cluster instead of moving it to the origin")
	command.Flags().BoolVar(&f.Summary, "summary", f.Summary, "Log the size and center of every cluster")
	command.PersistentFlags().Bool("debug", false, "Enable debug mode")
	_ = command.MarkFlagRequired("clusters")
	command.Flags().SortFlags = false
	return &CLI{&command}
}

type flags struct {
	K           int
	Points      int
	Dim         int
	MaxIter     int
	Precision   int
	RetainEmpty bool
	Summary     bool
}

func run(w io.Writer, path string, f flags) error {
	now := time.Now()
	rows, err := dataset.Load(path)
	if err != nil {
		return err
	}

	n, d := len(rows), 0
	if n > 0 {
		d = len(rows[0])
	}
	if f.Points > 0 && f.Points != n {
		return fmt.Errorf("%w: %s has %d points, expected %d", kmeans.ErrInvalidParameters, path, n, f.Points)
	}
	if f.Dim > 0 && f.Dim != d {
		return fmt.Errorf("%w: %s has %d columns, expected %d", kmeans.ErrDimensionMismatch, path, d, f.Dim)
	}
	maxIter := f.MaxIter
	if maxIter <= 0 {
		maxIter = kmeans.DefaultMaxIterations
	}
	if err := kmeans.ValidateParameters(f.K, n, d, maxIter); err != nil {
		return err
	}

	slog.Info("Clustering",
		slog.String("file", path),
		slog.Int("k", f.K),
		slog.Int("n", n),
		slog.Int("d", d),
		slog.Int("round", maxIter))

	points, err := bind.Points(rows, d)
	if err != nil {
		return err
	}
	initial, err := kmeans.InitialCentroids(points, f.K)
	if err != nil {
		return err
	}

	policy := kmeans.CollapseToOrigin
	if f.RetainEmpty {
		policy = kmeans.RetainPrevious
	}
	m, err := kmeans.NewTrainer(f.K,
		kmeans.WithMaxIterations(maxIter),
		kmeans.WithEmptyClusterPolicy(policy),
		kmeans.WithLogger(slog.Default())).
		Fit(points, initial)
	if err != nil {
		return err
	}

	if f.Summary {
		cc, err := bind.Clusters(points, m.Centroids())
		if err != nil {
			return err
		}
		for j, c := range cc {
			slog.Info("Cluster",
				slog.Int("index", j),
				slog.Int("size", len(c.Observations)),
				slog.Any("center", []float64(c.Center)))
		}
	}

	if err := dataset.Write(w, bind.Rows(m.Centroids()), f.Precision); err != nil {
		return err
	}
	slog.Info("Clustering completed",
		slog.Duration("took", time.Since(now)),
		slog.Int("iter", m.Iter()),
		slog.String("state", m.State().String()))
	return nil
}

func (cli *CLI) Execute() {
	if err := cli.command.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
