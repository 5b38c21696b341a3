// Command generate builds a tight-binding sample and writes Hamiltonian.<suffix>.dat and Coordinates.<suffix>.dat.
package main

import (
	"log"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tcm/plasmon"
)

type flags struct {
	sampleType      string
	latticeConstant float64
	hoppingValue    float64
	width           int
	start           int
	depth           int
	outputDir       string
}

func newCommand() *cobra.Command {
	var f flags
	types := make([]string, 0, len(plasmon.SampleTypes))
	for _, t := range plasmon.SampleTypes {
		types = append(types, string(t))
	}

	cmd := &cobra.Command{
		Use:           "generate",
		Short:         "Generate the Hamiltonian and site coordinates of a lattice sample",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := plasmon.ParseSampleType(f.sampleType); err != nil {
				return errors.Wrap(err, "choose from "+strings.Join(types, ", "))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			p := plasmon.Params{
				Type:            plasmon.SampleType(f.sampleType),
				LatticeConstant: f.latticeConstant,
				HoppingValue:    f.hoppingValue,
			}
			if cmd.Flags().Changed("width") {
				p.Width = &f.width
			}
			if cmd.Flags().Changed("start") {
				p.Start = &f.start
			}
			if cmd.Flags().Changed("depth") {
				p.Depth = &f.depth
			}
			return run(p, f.outputDir)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.sampleType, "type", "", "sample type, one of "+strings.Join(types, ", "))
	fs.Float64Var(&f.latticeConstant, "lattice-constant", 0, "lattice constant")
	fs.Float64Var(&f.hoppingValue, "hopping-value", 0, "nearest neighbour hopping")
	fs.IntVar(&f.width, "width", 0, "width of the triangle, square or periodic sheet")
	fs.IntVar(&f.start, "start", 0, "side of the Sierpinski carpet seed")
	fs.IntVar(&f.depth, "depth", 0, "recursion depth of the Sierpinski carpet")
	fs.StringVar(&f.outputDir, "output-dir", ".", "output directory")
	for _, name := range []string{"type", "lattice-constant", "hopping-value"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
	return cmd
}

func run(p plasmon.Params, outputDir string) error {
	if err := p.Validate(); err != nil {
		return errors.Wrap(err, "")
	}
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return errors.Wrap(err, "")
	}

	log.Printf("building sample %s %s", p.Type, p.Suffix())
	sys, err := plasmon.Build(p)
	if err != nil {
		return errors.Wrap(err, "")
	}
	log.Printf("%d sites %d hoppings", len(sys.Coordinates), len(sys.Hoppings.Data))

	hPath, cPath, err := plasmon.Save(outputDir, p, sys)
	if err != nil {
		return errors.Wrap(err, "")
	}
	log.Printf("wrote %s %s", hPath, cPath)
	return nil
}

func main() {
	log.SetFlags(log.Lmicroseconds | log.Llongfile | log.LstdFlags)

	if err := newCommand().Execute(); err != nil {
		log.Fatalf("%+v", err)
	}
}
