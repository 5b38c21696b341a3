// Command numtest checks the native kernels in a directory against reference computations.
package main

import (
	"log"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tcm/plasmon/mat"
	"github.com/tcm/plasmon/numtest"
)

type flags struct {
	config string
	binDir string
	seed   uint64
	passes int
	ops    []string
	kinds  []string
	ledger string
	rerun  string
}

func newCommand() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "numtest",
		Short:         "Compare native linear algebra and FFT kernels against gonum",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := numtest.DefaultConfig()
			if f.config != "" {
				var err error
				if cfg, err = numtest.LoadConfig(f.config); err != nil {
					return errors.Wrap(err, "")
				}
			}
			fs := cmd.Flags()
			if fs.Changed("bin-dir") {
				cfg.BinDir = f.binDir
			}
			if fs.Changed("passes") {
				cfg.Passes = f.passes
			}
			if fs.Changed("op") {
				cfg.Operations = f.ops
			}
			if fs.Changed("kind") {
				cfg.Kinds = f.kinds
			}
			if fs.Changed("ledger") {
				cfg.Ledger = f.ledger
			}

			seed := uint64(time.Now().UnixNano())
			if fs.Changed("seed") {
				seed = f.seed
			}
			return run(cfg, seed, f.rerun)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.config, "config", "", "YAML plan file")
	fs.StringVar(&f.binDir, "bin-dir", "", "directory of the native kernels")
	fs.Uint64Var(&f.seed, "seed", 0, "run seed, drawn from the clock when unset")
	fs.IntVar(&f.passes, "passes", 0, "number of passes over the plan")
	fs.StringSliceVar(&f.ops, "op", nil, "operations to run")
	fs.StringSliceVar(&f.kinds, "kind", nil, "element kinds to run")
	fs.StringVar(&f.ledger, "ledger", "", "sqlite database recording every trial")
	fs.StringVar(&f.rerun, "rerun", "", "id of a run in the ledger whose seed is reused")
	cmd.MarkFlagsMutuallyExclusive("seed", "rerun")
	return cmd
}

// run executes the plan of cfg. A non-empty rerun replaces seed with the seed of that run in the ledger.
func run(cfg numtest.Config, seed uint64, rerun string) error {
	plan, err := cfg.Plan()
	if err != nil {
		return errors.Wrap(err, "")
	}

	opts := numtest.Options{
		Invoker:   &numtest.Exec{Dir: plan.BinDir},
		Tolerance: plan.Tolerance,
		Dims:      plan.Dims,
		Log:       log.Default(),
	}
	if plan.Ledger != "" {
		ledger, err := numtest.OpenLedger(plan.Ledger)
		if err != nil {
			return errors.Wrap(err, "")
		}
		defer ledger.Close()
		opts.Ledger = ledger

		if rerun != "" {
			if seed, err = ledger.Seed(rerun); err != nil {
				return errors.Wrap(err, "")
			}
			log.Printf("rerunning %s", rerun)
		}
	}
	if rerun != "" && opts.Ledger == nil {
		return errors.Errorf("--rerun %s needs a ledger", rerun)
	}
	d, err := numtest.New(opts)
	if err != nil {
		return errors.Wrap(err, "")
	}

	log.Printf("seed %d", seed)
	trials, err := d.Run(plan.Passes, plan.Operations, plan.Kinds, seed)
	if err != nil {
		return errors.Wrap(err, "")
	}

	var skipped int
	worst := make(map[mat.Kind]float64)
	for _, t := range trials {
		if t.Skipped {
			skipped++
			continue
		}
		worst[t.Kind] = max(worst[t.Kind], t.MaxErr)
	}
	for _, k := range plan.Kinds {
		log.Printf("%s worst error %g", k, worst[k])
	}
	log.Printf("success: %d trials, %d skipped", len(trials), skipped)
	return nil
}

func main() {
	log.SetFlags(log.Lmicroseconds | log.Llongfile | log.LstdFlags)

	if err := newCommand().Execute(); err != nil {
		log.Fatalf("%+v", err)
	}
}
