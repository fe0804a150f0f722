package cli

import (
	"github.com/spf13/cobra"

	"github.com/spec-kit/stall-admin/pkg/adminclient"
)

func newStaffCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "staff",
		Short: "Manage staff accounts",
	}
	cmd.AddCommand(
		newStaffCreateCommand(flags),
		&cobra.Command{
			Use:   "resend-invite <email>",
			Short: "Resend the signup confirmation email",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := flags.client().ResendStaffInvite(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, res)
			},
		},
		&cobra.Command{
			Use:   "delete <user-id>",
			Short: "Delete a staff account",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := flags.client().DeleteStaffAccount(cmd.Context(), args[0]); err != nil {
					return err
				}
				cmd.Printf("deleted %s\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "auth-status <user-id>",
			Short: "Show confirmation and last sign-in timestamps",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := flags.client().FetchUserAuthStatus(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, res)
			},
		},
	)
	return cmd
}

func newStaffCreateCommand(flags *globalFlags) *cobra.Command {
	var (
		req     adminclient.CreateStaffRequest
		contact string
		stall   string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an unconfirmed staff account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if contact != "" {
				req.ContactNumber = &contact
			}
			if stall != "" {
				req.StallID = &stall
			}
			res, err := flags.client().CreateStaffAccount(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "staff email")
	cmd.Flags().StringVar(&req.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&req.FullName, "full-name", "", "display name")
	cmd.Flags().StringVar(&contact, "contact", "", "contact number")
	cmd.Flags().StringVar(&stall, "stall", "", "assigned stall id")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("full-name")
	return cmd
}
