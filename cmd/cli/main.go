package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gocausal/adapters/tabular"
	"gocausal/app"
	"gocausal/domain/causal"
	"gocausal/internal"
	"gocausal/internal/config"
)

func main() {
	godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "gocausal",
		Short: "Causal analysis pipeline over tabular data",
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newDiscoverCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run [data-file]",
		Short: "Run the full pipeline and print the result snapshot as JSON",
		Long: `Run discovery, falsification, identification, estimation and refutation
over a csv or xlsx file, then print the accumulated artifacts.

Example: gocausal run data.csv --treatment price --outcome demand --algorithm pc --seed 42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.toConfig(args[0])
			if err != nil {
				return err
			}
			log := internal.NewDefaultLogger()

			pipeline, err := app.Run(cfg, log)
			if err != nil {
				return err
			}

			out := json.NewEncoder(os.Stdout)
			out.SetIndent("", "  ")
			return out.Encode(map[string]interface{}{
				"run_id":   pipeline.RunID(),
				"snapshot": pipeline.Snapshot(),
			})
		},
	}

	flags.register(cmd)
	return cmd
}

func newDiscoverCmd() *cobra.Command {
	var algorithm string
	var sheet string
	var seed int64

	cmd := &cobra.Command{
		Use:   "discover [data-file]",
		Short: "Discover a causal graph and print its edges",
		Long: `Run structure discovery only and print the directed edges of the
resulting graph.

Example: gocausal discover data.csv --algorithm icalingam`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := tabular.NewDataReader()
			if sheet != "" {
				reader = reader.WithSheet(sheet)
			}
			data, err := reader.Read(args[0])
			if err != nil {
				return err
			}

			cols := data.Columns()
			if len(cols) < 2 {
				return fmt.Errorf("dataset needs at least two columns")
			}
			// Discovery ignores treatment/outcome; any two columns satisfy
			// pipeline construction.
			pipeline, err := app.NewCausalPipeline(data, app.Config{
				Treatment: cols[0],
				Outcome:   cols[1],
				Seed:      seed,
			}, app.WithLogger(internal.NewDefaultLogger()))
			if err != nil {
				return err
			}

			g, err := pipeline.Discover(causal.DiscoveryAlgorithm(algorithm), nil)
			if err != nil {
				return err
			}
			for _, e := range g.Edges() {
				fmt.Printf("%s -> %s\n", e.From, e.To)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&algorithm, "algorithm", "pc", "Discovery algorithm (pc, ges, icalingam)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Excel sheet name")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Random seed for deterministic operations")
	return cmd
}

// runFlags mirrors the environment configuration as command-line flags.
type runFlags struct {
	treatment        string
	outcome          string
	algorithm        string
	sheet            string
	nPermutations    int
	applySuggestions bool
	identifyMethod   string
	estimationMethod string
	refuterMethod    string
	subsetFraction   float64
	seed             int64
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.treatment, "treatment", "", "Treatment column (required)")
	cmd.Flags().StringVar(&f.outcome, "outcome", "", "Outcome column (required)")
	cmd.Flags().StringVar(&f.algorithm, "algorithm", "pc", "Discovery algorithm (pc, ges, icalingam)")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "Excel sheet name")
	cmd.Flags().IntVar(&f.nPermutations, "permutations", 100, "Permutation count for graph falsification")
	cmd.Flags().BoolVar(&f.applySuggestions, "apply-suggestions", true, "Apply suggested graph corrections")
	cmd.Flags().StringVar(&f.identifyMethod, "identify-method", "", "Identification policy (defaults to the backend default)")
	cmd.Flags().StringVar(&f.estimationMethod, "estimation-method", "backdoor.linear_regression", "Estimation method")
	cmd.Flags().StringVar(&f.refuterMethod, "refuter", "ALL", "Refuter method or ALL")
	cmd.Flags().Float64Var(&f.subsetFraction, "subset-fraction", 0.9, "Row fraction for the data-subset refuter")
	cmd.Flags().Int64Var(&f.seed, "seed", 1, "Random seed for deterministic operations")
	cmd.MarkFlagRequired("treatment")
	cmd.MarkFlagRequired("outcome")
}

func (f *runFlags) toConfig(dataPath string) (*config.Config, error) {
	if f.treatment == "" || f.outcome == "" {
		return nil, fmt.Errorf("--treatment and --outcome are required")
	}
	return &config.Config{
		Data: config.DataConfig{Path: dataPath, Sheet: f.sheet},
		Pipeline: config.PipelineConfig{
			Treatment:          f.treatment,
			Outcome:            f.outcome,
			DiscoveryAlgorithm: f.algorithm,
			NPermutations:      f.nPermutations,
			ApplySuggestions:   f.applySuggestions,
			IdentifyMethod:     f.identifyMethod,
			EstimationMethod:   f.estimationMethod,
			RefuterMethod:      f.refuterMethod,
			SubsetFraction:     f.subsetFraction,
			Seed:               f.seed,
		},
	}, nil
}
