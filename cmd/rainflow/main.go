package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/ja7ad/rainflow/pkg/class"
	"github.com/ja7ad/rainflow/pkg/export"
	"github.com/ja7ad/rainflow/pkg/genseries"
	"github.com/ja7ad/rainflow/pkg/rainflow"
	"github.com/ja7ad/rainflow/pkg/rainflowcfg"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "rainflow",
		Short: "Streaming rainflow cycle counter for fatigue analysis",
		Long: `rainflow extracts closed hysteresis cycles from a load/stress time series
and summarizes them as a rainflow matrix, range-pair and level-crossing
histograms, and a scalar pseudo-damage estimate under a configured Wohler
(S-N) curve.

* GitHub: https://github.com/ja7ad/rainflow`,
	}

	root.AddCommand(newCountCmd())
	root.AddCommand(newGenCmd())

	if err := root.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

type countOpts struct {
	input      string
	configPath string

	classOffset float64
	classWidth  float64
	classCount  int
	hysteresis  float64

	method   string
	residual string

	csvPath  string
	jsonPath string
	htmlPath string
}

func newCountCmd() *cobra.Command {
	var o countOpts

	cmd := &cobra.Command{
		Use:   "count [file]",
		Short: "Feed a value series and report closed cycles",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				o.input = args[0]
			}
			return runCount(o)
		},
	}

	cmd.Flags().StringVar(&o.configPath, "config", "", "load engine configuration from a YAML file (overrides the flags below)")
	cmd.Flags().Float64Var(&o.classOffset, "class-offset", 0, "class discretizer offset")
	cmd.Flags().Float64Var(&o.classWidth, "class-width", 1, "class discretizer width (> 0)")
	cmd.Flags().IntVar(&o.classCount, "class-count", 64, "number of classes (1 < n <= 512)")
	cmd.Flags().Float64Var(&o.hysteresis, "hysteresis", 1, "hysteresis threshold (>= 0)")
	cmd.Flags().StringVar(&o.method, "method", "4ptm", "cycle-extraction method: none|4ptm|hcm")
	cmd.Flags().StringVar(&o.residual, "residual", "halfcycles", "residual finalization: none|ignore|discard|halfcycles|fullcycles|clormann_seeger|din45667|repeated")
	cmd.Flags().StringVar(&o.csvPath, "csv", "", "write the rainflow matrix to a CSV file")
	cmd.Flags().StringVar(&o.jsonPath, "json", "", "write the full result to a JSON file")
	cmd.Flags().StringVar(&o.htmlPath, "html", "", "write an HTML summary report")

	return cmd
}

func runCount(o countOpts) error {
	var (
		cfg      rainflow.Config
		residual rainflow.ResidualMethod
		err      error
	)
	if o.configPath != "" {
		cfg, residual, err = rainflowcfg.Load(o.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	} else {
		method, merr := parseMethodFlag(o.method)
		if merr != nil {
			return merr
		}
		res, rerr := parseResidualFlag(o.residual)
		if rerr != nil {
			return rerr
		}
		cfg = rainflow.Config{
			Class: class.Params{
				Offset: o.classOffset,
				Width:  o.classWidth,
				Count:  o.classCount,
			},
			Hysteresis: o.hysteresis,
			Flags:      rainflow.FlagCountAll,
			Method:     method,
		}
		residual = res
	}

	values, err := readValues(o.input)
	if err != nil {
		return fmt.Errorf("read series: %w", err)
	}

	e, err := rainflow.New(cfg)
	if err != nil {
		return fmt.Errorf("new engine: %w", err)
	}
	if err := e.Feed(values); err != nil {
		return fmt.Errorf("feed: %w", err)
	}
	if err := e.Finalize(residual); err != nil {
		return fmt.Errorf("finalize: %w", err)
	}

	printSummary(e)

	res := toExportResult(e, cfg.Class.Count)
	if o.csvPath != "" {
		if err := export.WriteCSV(o.csvPath, res); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	if o.jsonPath != "" {
		if err := export.WriteJSON(o.jsonPath, res); err != nil {
			return fmt.Errorf("write json: %w", err)
		}
	}
	if o.htmlPath != "" {
		if err := export.WriteHTML(o.htmlPath, res); err != nil {
			return fmt.Errorf("write html: %w", err)
		}
	}
	return nil
}

func printSummary(e *rainflow.Engine) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CLOSED CYCLES\tPSEUDO-DAMAGE\tRESIDUE LEN")
	fmt.Fprintf(tw, "%d\t%.6e\t%d\n", e.ClosedCycleCount(), e.Damage(), len(e.Residue()))
	tw.Flush()
}

func toExportResult(e *rainflow.Engine, classCount int) export.Result {
	residue := e.Residue()
	values := make([]float64, len(residue))
	for i, tp := range residue {
		values[i] = tp.Value
	}
	return export.Result{
		ClassCount:    classCount,
		Matrix:        e.Matrix(),
		RangePair:     e.RangePair(),
		LevelCrossing: e.LevelCrossing(),
		Damage:        e.Damage(),
		DamageHistory: e.DamageHistory(),
		ClosedCycles:  e.ClosedCycleCount(),
		ResidueValues: values,
	}
}

func readValues(path string) ([]float64, error) {
	var r *os.File
	if path == "" || path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var values []float64
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, field := range strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' }) {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("parse value %q: %w", field, err)
			}
			values = append(values, v)
		}
	}
	return values, sc.Err()
}

func parseMethodFlag(s string) (rainflow.Method, error) {
	switch s {
	case "none":
		return rainflow.MethodNone, nil
	case "4ptm":
		return rainflow.MethodFourPoint, nil
	case "hcm":
		return rainflow.MethodHCM, nil
	default:
		return 0, fmt.Errorf("unknown --method %q", s)
	}
}

func parseResidualFlag(s string) (rainflow.ResidualMethod, error) {
	switch s {
	case "none":
		return rainflow.ResidualNone, nil
	case "ignore":
		return rainflow.ResidualIgnore, nil
	case "discard":
		return rainflow.ResidualDiscard, nil
	case "halfcycles":
		return rainflow.ResidualHalfCycles, nil
	case "fullcycles":
		return rainflow.ResidualFullCycles, nil
	case "clormann_seeger":
		return rainflow.ResidualClormannSeeger, nil
	case "din45667":
		return rainflow.ResidualRPDIN45667, nil
	case "repeated":
		return rainflow.ResidualRepeated, nil
	default:
		return 0, fmt.Errorf("unknown --residual %q", s)
	}
}

type genOpts struct {
	seed      int64
	length    int
	mean      float64
	amplitude float64
	period    float64
	noiseStd  float64
	output    string
}

func newGenCmd() *cobra.Command {
	var o genOpts

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a deterministic synthetic load series",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(o)
		},
	}

	cmd.Flags().Int64Var(&o.seed, "seed", 1, "PRNG seed")
	cmd.Flags().IntVar(&o.length, "length", 1000, "number of samples to generate")
	cmd.Flags().Float64Var(&o.mean, "mean", 0, "series mean")
	cmd.Flags().Float64Var(&o.amplitude, "amplitude", 10, "carrier sine amplitude")
	cmd.Flags().Float64Var(&o.period, "period", 50, "carrier period, in samples")
	cmd.Flags().Float64Var(&o.noiseStd, "noise-std", 2, "additive Gaussian noise standard deviation")
	cmd.Flags().StringVar(&o.output, "output", "-", "output file (- for stdout)")

	return cmd
}

func runGen(o genOpts) error {
	values := genseries.Generate(genseries.Params{
		Seed:      o.seed,
		Length:    o.length,
		Mean:      o.mean,
		Amplitude: o.amplitude,
		Period:    o.period,
		NoiseStd:  o.noiseStd,
	})

	w := os.Stdout
	if o.output != "-" && o.output != "" {
		f, err := os.Create(o.output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	for _, v := range values {
		if _, err := fmt.Fprintf(w, "%.10g\n", v); err != nil {
			return err
		}
	}
	return nil
}
