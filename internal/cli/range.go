package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/stall-admin/internal/daterange"
)

// ErrInvalidRange is returned by "range validate" for a rejected range.
var ErrInvalidRange = errors.New("invalid range")

type rangeOutput struct {
	Preset    daterange.Preset `json:"preset,omitempty"`
	Label     string           `json:"label,omitempty"`
	StartDate string           `json:"startDate"`
	EndDate   string           `json:"endDate"`
	Timestamp *boundsOutput    `json:"timestampBounds,omitempty"`
}

type boundsOutput struct {
	Gte string `json:"gte,omitempty"`
	Lte string `json:"lte,omitempty"`
}

func newRangeCommand(flags *globalFlags, opts Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "range <preset>",
		Short:     "Resolve a date preset in the civil timezone",
		ValidArgs: presetNames(),
		Args:      cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := flags.calendar(opts)
			if err != nil {
				return err
			}
			p, ok := daterange.ParsePreset(args[0])
			if !ok || p == daterange.Custom {
				return fmt.Errorf("unknown preset %q (one of %s)", args[0], strings.Join(presetNames(), ", "))
			}
			return printJSON(cmd, describe(cal, p, cal.Resolve(p)))
		},
	}
	cmd.AddCommand(newRangeValidateCommand(flags, opts), newRangeDetectCommand(flags, opts))
	return cmd
}

func newRangeValidateCommand(flags *globalFlags, opts Options) *cobra.Command {
	var (
		r        daterange.Range
		validate daterange.ValidateOptions
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a custom date range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cal, err := flags.calendar(opts)
			if err != nil {
				return err
			}
			v := cal.Validate(r, validate)
			if err := printJSON(cmd, v); err != nil {
				return err
			}
			if !v.Valid {
				return fmt.Errorf("%w: %s", ErrInvalidRange, v.Reason)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&r.StartDate, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&r.EndDate, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&validate.MaxDays, "max-days", 0, "maximum inclusive span, 0 for none")
	cmd.Flags().BoolVar(&validate.AllowFuture, "allow-future", false, "accept dates after today")
	return cmd
}

func newRangeDetectCommand(flags *globalFlags, opts Options) *cobra.Command {
	var r daterange.Range
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Name the preset that produces a range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cal, err := flags.calendar(opts)
			if err != nil {
				return err
			}
			return printJSON(cmd, describe(cal, cal.Detect(r), r))
		},
	}
	cmd.Flags().StringVar(&r.StartDate, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&r.EndDate, "end", "", "end date (YYYY-MM-DD)")
	return cmd
}

func describe(cal *daterange.Calendar, p daterange.Preset, r daterange.Range) rangeOutput {
	out := rangeOutput{Preset: p, StartDate: r.StartDate, EndDate: r.EndDate}
	if p != "" {
		out.Label = p.Label()
	}
	if lower, upper, err := cal.Bounds(r, daterange.TimestampColumn); err == nil && (lower != "" || upper != "") {
		out.Timestamp = &boundsOutput{Gte: lower, Lte: upper}
	}
	return out
}

func presetNames() []string {
	presets := daterange.Presets()
	names := make([]string, 0, len(presets))
	for _, p := range presets {
		names = append(names, string(p))
	}
	return names
}
