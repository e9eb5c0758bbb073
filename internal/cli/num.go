package cli

import (
	"fmt"
	"io"
	"regexp"
	"strconv"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/treebbb/msurf/num"
)

var scaledRaw bool

// limbDump prints struct fields rather than the String form.
var limbDump = spew.ConfigState{Indent: "  ", DisableMethods: true}

// negativeOperand matches arguments such as -2.25 or -.5, which pflag
// would otherwise read as a run of shorthand flags.
var negativeOperand = regexp.MustCompile(`^-\.?[0-9]`)

var wideCmd = &cobra.Command{
	Use:   "wide",
	Short: "Unsigned 512-bit integer arithmetic",
}

var scaledCmd = &cobra.Command{
	Use:   "scaled",
	Short: "Signed fixed-point arithmetic with 64 fraction bits",
	Long: `Signed fixed-point arithmetic with 64 fraction bits. Arguments are
decimal reals converted from float64, or raw magnitudes (value * 2**64)
with --raw.`,
}

func init() {
	rootCmd.AddCommand(wideCmd)
	wideCmd.AddCommand(
		wideOpCmd("add", "Add two integers", func(z *num.Wide, x, y num.Wide) error { return z.Add(x, y) }),
		wideOpCmd("mul", "Multiply two integers", func(z *num.Wide, x, y num.Wide) error { return z.Mul(x, y) }),
		&cobra.Command{
			Use:   "parse <n>",
			Short: "Show the limbs of an integer",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				w, err := num.WideFromString(args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s\n0x%x\n", w, w)
				for i := 0; i < w.Len(); i++ {
					fmt.Fprintf(out, "limb %d: 0x%016x\n", i, w.Limb(i))
				}
				return nil
			},
		},
	)

	rootCmd.AddCommand(scaledCmd)
	scaledCmd.PersistentFlags().BoolVar(&scaledRaw, "raw", false, "arguments are raw magnitudes")
	scaledCmd.AddCommand(
		scaledOpCmd("add", "Add two values", num.Scaled.Add),
		scaledOpCmd("sub", "Subtract two values", num.Scaled.Sub),
		scaledOpCmd("mul", "Multiply two values", num.Scaled.MulScaled),
		signedOperands(&cobra.Command{
			Use:   "inspect <x>",
			Short: "Dump the limbs and wire form of a value",
			RunE: func(cmd *cobra.Command, _ []string) error {
				x, err := parseScaled(cmd.Flags().Arg(0))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				printScaled(out, x)
				fmt.Fprint(out, limbDump.Sdump(x))
				return nil
			},
		}, 1),
	)
}

// signedOperands makes cmd accept n operands that may be negative. Flag
// parsing moves to PreRunE, where a "--" is placed ahead of the first
// negative operand. RunE must read its operands from cmd.Flags().Args().
func signedOperands(cmd *cobra.Command, n int) *cobra.Command {
	cmd.DisableFlagParsing = true
	cmd.Args = cobra.ArbitraryArgs
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		// InheritedFlags merges the persistent flags of the parents into
		// cmd.Flags().
		cmd.InheritedFlags()
		flags := cmd.Flags()
		if err := flags.Parse(markOperands(args)); err != nil {
			return err
		}
		if help, _ := flags.GetBool("help"); help {
			return pflag.ErrHelp
		}
		// The root hook ran before the flags were parsed.
		rootCmd.PersistentPreRun(cmd, flags.Args())
		return cobra.ExactArgs(n)(cmd, flags.Args())
	}
	return cmd
}

func markOperands(args []string) []string {
	for i, a := range args {
		if a == "--" {
			break
		}
		if negativeOperand.MatchString(a) {
			marked := make([]string, 0, len(args)+1)
			marked = append(marked, args[:i]...)
			marked = append(marked, "--")
			return append(marked, args[i:]...)
		}
	}
	return args
}

func wideOpCmd(name, short string, op func(z *num.Wide, x, y num.Wide) error) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <x> <y>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := num.WideFromString(args[0])
			if err != nil {
				return err
			}
			y, err := num.WideFromString(args[1])
			if err != nil {
				return err
			}
			var z num.Wide
			if err := op(&z, x, y); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), z)
			return nil
		},
	}
}

func scaledOpCmd(name, short string, op func(x, y num.Scaled) (num.Scaled, error)) *cobra.Command {
	return signedOperands(&cobra.Command{
		Use:   name + " <x> <y>",
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			args := cmd.Flags().Args()
			x, err := parseScaled(args[0])
			if err != nil {
				return err
			}
			y, err := parseScaled(args[1])
			if err != nil {
				return err
			}
			z, err := op(x, y)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			printScaled(cmd.OutOrStdout(), z)
			return nil
		},
	}, 2)
}

func parseScaled(s string) (num.Scaled, error) {
	if scaledRaw {
		return num.ScaledFromString(s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return num.Scaled{}, err
	}
	return num.ScaledFromFloat64(f)
}

func printScaled(w io.Writer, x num.Scaled) {
	fmt.Fprintf(w, "value: %s\nraw: %s\n", x.AsBigFloat().Text('g', 40), x)
	if q, err := x.Q64(); err == nil {
		fmt.Fprintf(w, "wire: hi=0x%016x lo=0x%016x\n", q.Hi, q.Lo)
	} else {
		fmt.Fprintf(w, "wire: %v\n", err)
	}
}
