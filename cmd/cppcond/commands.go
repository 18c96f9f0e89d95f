package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/duke-git/lancet/v2/maputil"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fwessels/cppcond"
	"github.com/fwessels/cppcond/internal/config"
	"github.com/fwessels/cppcond/internal/logger"
	"github.com/fwessels/cppcond/internal/preprocessor"
)

// options holds the persistent flags and what PersistentPreRunE derives
// from them.
type options struct {
	configPath string
	defines    []string
	undefs     []string
	trace      bool
	logLevel   string
	noColor    bool

	cfg *config.Config
	env cppcond.Macros
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:   "cppcond",
		Short: "Evaluate C preprocessor conditional expressions",
		Long: `cppcond evaluates the expressions of #if and #elif directives against
a table of macro values, and can filter source files down to the lines of
their active conditional branches.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: o.setup,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetVersionTemplate("cppcond version {{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "YAML file with macros and log settings")
	pf.StringArrayVarP(&o.defines, "define", "D", nil, "define a macro, NAME or NAME=EXPR (repeatable)")
	pf.StringArrayVarP(&o.undefs, "undefine", "U", nil, "remove a macro (repeatable)")
	pf.BoolVar(&o.trace, "trace", false, "log every evaluation step at debug level")
	pf.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error")
	pf.BoolVar(&o.noColor, "no-color", false, "disable coloured output")

	root.AddCommand(newEvalCmd(o), newFilterCmd(o), newMacrosCmd(o), newVersionCmd())
	return root
}

func (o *options) setup(cmd *cobra.Command, _ []string) error {
	if o.noColor {
		color.NoColor = true
	}

	cfg, err := config.NewLoader().
		WithConfigPath(o.configPath).
		WithDefines(o.defines).
		WithUndefs(o.undefs).
		Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("trace") {
		cfg.Trace = o.trace
	}
	switch {
	case o.logLevel != "":
		cfg.Log.Level = o.logLevel
	case cfg.Trace:
		cfg.Log.Level = "debug"
	}

	lc := cfg.Logger()
	if lc.Output == "" || lc.Output == "stderr" {
		lc.Writer = cmd.ErrOrStderr()
	}
	log, err := logger.New(lc)
	if err != nil {
		return err
	}

	env, err := cfg.Environment()
	if err != nil {
		return err
	}
	log.Debug("macros loaded", zap.Int("count", len(env)), zap.String("config", o.configPath))

	o.cfg, o.env, o.log = cfg, env, log
	return nil
}

func (o *options) evaluator() *cppcond.Evaluator {
	return cppcond.New(cppcond.WithLogger(o.log), cppcond.WithTrace(o.cfg.Trace))
}

func colorValue(v cppcond.Value) string {
	if v.Truthy() {
		return color.GreenString("%s", v)
	}
	return color.RedString("%s", v)
}

func newEvalCmd(o *options) *cobra.Command {
	var exitStatus bool
	cmd := &cobra.Command{
		Use:   "eval EXPR...",
		Short: "Evaluate expressions and print their values",
		Example: `  cppcond eval '1 + 2 * 3'
  cppcond eval -D DEBUG -D LEVEL=3 'defined(DEBUG) && LEVEL > 2'
  cppcond eval --exit-status 'defined(__linux__)' && echo linux`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ev := o.evaluator()
			out := cmd.OutOrStdout()

			var last cppcond.Value
			for _, expr := range args {
				v, err := ev.Evaluate(expr, o.env)
				if err != nil {
					return fmt.Errorf("%s: %w", expr, err)
				}
				fmt.Fprintf(out, "%s => %s\n", expr, colorValue(v))
				last = v
			}
			if exitStatus && !last.Truthy() {
				return &exitError{code: 1}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&exitStatus, "exit-status", false, "exit with status 1 when the last expression is false")
	return cmd
}

func newFilterCmd(o *options) *cobra.Command {
	var report, keep bool
	cmd := &cobra.Command{
		Use:   "filter FILE...",
		Short: "Print the lines of active conditional branches",
		Long: `filter reads each FILE ("-" for standard input) and writes it with the
lines of inactive #if/#ifdef branches and all conditional directives
replaced by empty lines, so line numbers stay the same.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := preprocessor.NewPreprocessor(o.env)
			p.Logger = o.log
			p.Trace = o.cfg.Trace
			p.KeepDirectives = keep

			for _, name := range args {
				if err := filterFile(cmd, p, name); err != nil {
					return err
				}
			}
			if report {
				printReport(cmd.ErrOrStderr(), p.Branches)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&report, "report", false, "print every conditional directive and its decision to stderr")
	cmd.Flags().BoolVar(&keep, "keep-directives", false, "keep conditional directive lines in the output")
	return cmd
}

func filterFile(cmd *cobra.Command, p *preprocessor.Preprocessor, name string) error {
	if name == "-" {
		return p.Process("<stdin>", cmd.InOrStdin(), cmd.OutOrStdout())
	}
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return p.Process(name, f, cmd.OutOrStdout())
}

func printReport(w io.Writer, branches []preprocessor.Branch) {
	for _, b := range branches {
		decision := color.RedString("skipped")
		if b.Taken {
			decision = color.GreenString("taken")
		}
		directive := "#" + b.Directive
		if b.Expr != "" {
			directive += " " + b.Expr
		}
		fmt.Fprintf(w, "%s:%d: %s => %s\n", b.File, b.Line, directive, decision)
	}
}

func newMacrosCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "macros",
		Short: "List the resolved macro table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names := maputil.Keys(o.env)
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", name, o.env[name])
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "cppcond version %s\n", version)
			return nil
		},
	}
}
