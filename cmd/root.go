package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/evodyn-sim/evodyn-sim/geom"
	"github.com/evodyn-sim/evodyn-sim/geom/scenario"
)

var (
	// CLI flags for geometry construction
	spec           string // Compact geometry token, e.g. "r4" or "N"
	size           int    // Requested population size (builders may coerce)
	seed           int64  // Master seed for all random streams
	boundary       string // Lattice boundary condition (periodic, fixed)
	interspecies   bool   // Add a self-loop per node for two-population models
	logLevel       string // Log verbosity level
	scenarioFile   string // YAML scenario file with one or more geometries
	checkConnected bool   // Report whether each constructed graph is connected
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "evodyn-sim",
	Short: "Population topology construction for evolutionary-dynamics simulations",
}

// buildCmd constructs one geometry from flags, or a batch from a scenario file
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Construct a population geometry and report its structure",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		if scenarioFile != "" {
			s, err := scenario.Load(scenarioFile)
			if err != nil {
				logrus.Fatalf("Invalid scenario: %v", err)
			}
			built, err := s.Build()
			if err != nil {
				logrus.Fatalf("Scenario construction failed: %v", err)
			}
			names := make([]string, 0, len(built))
			for name := range built {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				report(name, built[name])
			}
			return
		}

		if spec == "" {
			logrus.Fatalf("Geometry spec not provided. Use --spec or --scenario.")
		}
		b, err := geom.ParseBoundary(boundary)
		if err != nil {
			logrus.Fatalf("Invalid boundary: %v", err)
		}
		rng := geom.NewPartitionedRNG(geom.NewRunKey(seed))
		g, err := geom.Build(geom.Config{
			Spec:         spec,
			Size:         size,
			Boundary:     b,
			Interspecies: interspecies,
		}, rng.ForSubsystem(geom.SubsystemGeometry))
		if err != nil {
			logrus.Fatalf("Construction failed: %v", err)
		}
		report(spec, g)
	},
}

// validateCmd parses and checks a spec or scenario without constructing graphs
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a geometry spec or scenario file without building",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		if scenarioFile != "" {
			if _, err := scenario.Load(scenarioFile); err != nil {
				logrus.Fatalf("Invalid scenario: %v", err)
			}
			fmt.Println("scenario valid")
			return
		}
		if spec == "" {
			logrus.Fatalf("Geometry spec not provided. Use --spec or --scenario.")
		}
		if _, err := geom.ParseSpec(spec); err != nil {
			logrus.Fatalf("Invalid spec: %v", err)
		}
		if _, err := geom.ParseBoundary(boundary); err != nil {
			logrus.Fatalf("Invalid boundary: %v", err)
		}
		fmt.Println("spec valid")
	},
}

func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

func report(name string, g *geom.Geometry) {
	fmt.Printf("%s: kind=%s size=%d directed=%v regular=%v degrees=[%.0f %.2f %.0f] fingerprint=%016x\n",
		name, g.Kind, g.Size, g.Directed, g.Regular, g.MinDegree, g.AvgDegree, g.MaxDegree, g.Fingerprint())
	if checkConnected {
		fmt.Printf("%s: connected=%v\n", name, g.IsConnected())
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	for _, c := range []*cobra.Command{buildCmd, validateCmd} {
		c.Flags().StringVar(&spec, "spec", "", "Geometry spec token (e.g. r4, N, PM;c;d4,s5)")
		c.Flags().StringVar(&boundary, "boundary", "periodic", "Lattice boundary condition (periodic, fixed)")
		c.Flags().StringVar(&scenarioFile, "scenario", "", "YAML scenario file with one or more geometries")
		c.Flags().StringVar(&logLevel, "log", "warning", "Log level (trace, debug, info, warn, error, fatal, panic)")
	}
	buildCmd.Flags().IntVar(&size, "size", 100, "Requested population size")
	buildCmd.Flags().Int64Var(&seed, "seed", 42, "Master seed for random construction")
	buildCmd.Flags().BoolVar(&interspecies, "interspecies", false, "Add a self-loop per node for two-population models")
	buildCmd.Flags().BoolVar(&checkConnected, "check-connected", false, "Report whether each constructed graph is connected")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(validateCmd)
}
