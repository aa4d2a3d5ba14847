package cmd

import (
	"crypto/rand"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"

	"github.com/prismql/prism/config"
	"github.com/prismql/prism/execution"
	"github.com/prismql/prism/functions"
	"github.com/prismql/prism/graph"
	"github.com/prismql/prism/logs"
	"github.com/prismql/prism/optimizer"
	"github.com/prismql/prism/outputs/formats"
	"github.com/prismql/prism/plan"
	"github.com/prismql/prism/planfile"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:  "prism",
	Args: cobra.ExactArgs(1),
	Example: `prism plan.yml
prism plan.yml --explain 1
prism plan.yml --optimize=false`,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.Read()
		if err != nil {
			return fmt.Errorf("couldn't read configuration: %w", err)
		}
		logs.InitializeFileLogger()
		defer logs.CloseLogger()

		queryID := ulid.MustNew(ulid.Now(), rand.Reader)
		log.Printf("query %s: running plan file '%s'", queryID, args[0])

		loaded, err := planfile.Load(args[0], functions.FunctionMap())
		if err != nil {
			return fmt.Errorf("couldn't load plan file: %w", err)
		}

		if optimize && !cfg.Optimizer.DisablePushdown {
			if err := optimizer.Optimize(loaded.Root, loaded.Plans, loaded.Exprs); err != nil {
				return fmt.Errorf("couldn't optimize plan: %w", err)
			}
		}

		if explain >= 1 {
			file, err := os.CreateTemp(os.TempDir(), "prism-explain-*.png")
			if err != nil {
				return fmt.Errorf("couldn't create temporary file: %w", err)
			}
			rendered, err := graph.Show(plan.DescribeNode(loaded.Root, loaded.Plans, loaded.Exprs, explain >= 2 || cfg.Explain.WithSchemaInfo))
			if err != nil {
				return fmt.Errorf("couldn't describe plan: %w", err)
			}
			dot := exec.Command("dot", "-Tpng")
			dot.Stdin = strings.NewReader(rendered.String())
			dot.Stdout = file
			dot.Stderr = os.Stderr
			if err := dot.Run(); err != nil {
				return fmt.Errorf("couldn't render graph: %w", err)
			}
			if err := file.Close(); err != nil {
				return fmt.Errorf("couldn't close temporary file: %w", err)
			}
			if err := open.Start(file.Name()); err != nil {
				return fmt.Errorf("couldn't open graph: %w", err)
			}
			return nil
		}

		outSchema, err := plan.ComputeSchema(loaded.Root, loaded.Plans, loaded.Exprs)
		if err != nil {
			return fmt.Errorf("couldn't compute output schema: %w", err)
		}

		executionPlan, err := execution.Materialize(loaded.Root, loaded.Plans, loaded.Exprs, loaded.Env)
		if err != nil {
			return fmt.Errorf("couldn't materialize plan: %w", err)
		}

		formatter := formats.NewTableFormatter(os.Stdout)
		formatter.SetSchema(outSchema)
		if err := executionPlan.Run(
			execution.ExecutionContext{
				Context: ctx,
			},
			func(produceCtx execution.ProduceContext, record execution.Record) error {
				return formatter.Write(record.Values)
			},
		); err != nil {
			return fmt.Errorf("couldn't run plan: %w", err)
		}
		return formatter.Close()
	},
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

var explain int
var optimize bool

func init() {
	rootCmd.Flags().IntVar(&explain, "explain", 0, "Render the plan graph instead of running it.")
	rootCmd.Flags().BoolVar(&optimize, "optimize", true, "Whether prism should optimize the plan.")
}
