package main

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/warp/budget-rules/budget"
	"github.com/warp/budget-rules/factory"
	"github.com/warp/budget-rules/generic"
)

// =============================================================================
// COUNT
// =============================================================================

func (a *app) countCmd() *cobra.Command {
	var (
		start, end, period, amount string
		from, to                   string
		every                      int
	)

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count how often a rule fires in a date range",
		Long: `Count how often a rule fires between --from and --to (inclusive).

Without --period the rule is a one-off and counts once if its dates touch
the range. Without --start a repeating rule is anchored on --from.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw := map[string]any{"amount": amount, "repeat_n": every}
			if start != "" {
				raw["start_date"] = start
			}
			if end != "" {
				raw["end_date"] = end
			}
			if period != "" {
				raw["period"] = period
			}
			rule, err := factory.CleanRule(raw)
			if err != nil {
				return fmt.Errorf("invalid rule: %w", err)
			}

			begin, err := generic.ParseDate(from)
			if err != nil {
				return fmt.Errorf("invalid --from: %w", err)
			}
			until, err := generic.ParseDate(to)
			if err != nil {
				return fmt.Errorf("invalid --to: %w", err)
			}

			n, err := rule.CountOccurrencesBetween(begin, until)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "rule:        %s\n", rule)
			fmt.Fprintf(out, "range:       %s..%s\n", begin, until)
			fmt.Fprintf(out, "occurrences: %d\n", n)
			fmt.Fprintf(out, "amount:      %s\n", rule.Amount().Mul(decimal.NewFromInt(int64(n))))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&start, "start", "", "rule start date (YYYY-MM-DD)")
	flags.StringVar(&end, "end", "", "rule end date (YYYY-MM-DD)")
	flags.StringVar(&period, "period", "", "recurrence period (day, week, month, year)")
	flags.IntVar(&every, "every", 1, "fire every N periods")
	flags.StringVar(&amount, "amount", "0", "amount per occurrence")
	flags.StringVar(&from, "from", "", "range start (YYYY-MM-DD)")
	flags.StringVar(&to, "to", "", "range end (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// =============================================================================
// VALIDATE
// =============================================================================

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <budget.json>",
		Short: "Validate a budget document",
		Long: `Parse a budget document and run every business rule over it:
group references, currencies, inverted rules, overlapping rules and
duplicate names. Exits non-zero when any problem is found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read budget: %w", err)
			}
			b, categories, err := factory.ParseBudget(data)
			if err != nil {
				return fmt.Errorf("invalid budget: %w", err)
			}

			report := budget.ValidateBudget(b, categories)
			out := cmd.OutOrStdout()
			if report.OK() {
				fmt.Fprintf(out, "%s: %d categories, no problems\n", b.Name, len(categories))
				return nil
			}
			for _, e := range report.Errors() {
				fmt.Fprintf(out, "%s: %s\n", e.Field, e.Message)
			}
			return fmt.Errorf("%s: %d problems", b.Name, len(report.Errors()))
		},
	}
}

// =============================================================================
// VERSION
// =============================================================================

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
