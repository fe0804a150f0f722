// Package cli implements the stallctl operator commands.
package cli

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/stall-admin/internal/daterange"
	"github.com/spec-kit/stall-admin/pkg/adminclient"
)

// Options carries what commands need from the process. Zero values fall
// back to the real environment.
type Options struct {
	Out io.Writer
	Now func() time.Time
}

type globalFlags struct {
	apiURL      string
	supabaseURL string
	token       string
	timezone    string
	timeout     time.Duration
}

// NewRootCommand builds the stallctl command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "stallctl",
		Short:         "Operate the stall admin gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(opts.Out)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.apiURL, "api-url", os.Getenv("ADMIN_API_URL"), "admin gateway base URL")
	pf.StringVar(&flags.supabaseURL, "supabase-url", os.Getenv("SUPABASE_URL"), "project URL used to derive the gateway URL")
	pf.StringVar(&flags.token, "token", os.Getenv("STALLCTL_TOKEN"), "access token of the signed-in operator")
	pf.StringVar(&flags.timezone, "timezone", envOr("CIVIL_TIMEZONE", daterange.DefaultTimezone), "civil timezone for date ranges")
	pf.DurationVar(&flags.timeout, "timeout", 15*time.Second, "request timeout")

	root.AddCommand(
		newStaffCommand(flags),
		newRangeCommand(flags, opts),
		newMigrateCommand(),
	)
	return root
}

func (f *globalFlags) client() *adminclient.Client {
	return adminclient.New(adminclient.Config{
		BaseURL:     f.apiURL,
		SupabaseURL: f.supabaseURL,
		Token:       adminclient.StaticToken(f.token),
		Timeout:     f.timeout,
	})
}

func (f *globalFlags) calendar(opts Options) (*daterange.Calendar, error) {
	var calOpts []daterange.Option
	if opts.Now != nil {
		calOpts = append(calOpts, daterange.WithClock(opts.Now))
	}
	return daterange.LoadCalendar(f.timezone, calOpts...)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
