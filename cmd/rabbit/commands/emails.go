package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/rabbitz-io/rabbit/pkg/rabbit"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewEmailsCommand creates the emails command group.
func NewEmailsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emails",
		Short: "Manage email addresses",
		Long:  "List, add, and remove secondary email addresses",
	}

	cmd.AddCommand(newEmailsListCommand())
	cmd.AddCommand(newEmailsAddCommand())
	cmd.AddCommand(newEmailsDeleteCommand())

	return cmd
}

func newEmailsListCommand() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List email addresses",
		Long:  "List the authenticated user's email addresses, or another user's with --user",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			var emails []rabbit.Email
			if user != "" {
				emails, err = client.Emails().ListUserEmails(ctx, resolveUserRef(user))
			} else {
				emails, err = client.Emails().ListEmails(ctx)
			}

			if err != nil {
				return fmt.Errorf("failed to list emails: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				return StandardJSONRenderer(emails)
			case OutputFormatYAML:
				return StandardYAMLRenderer(emails)
			default:
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("ID", "Email", "Confirmed")

				for _, email := range emails {
					_ = table.Append(
						strconv.FormatInt(email.ID, 10),
						email.Email,
						formatTime(email.ConfirmedAt),
					)
				}

				if err := table.Render(); err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "list emails of this user ID or username (admin only)")

	return cmd
}

func newEmailsAddCommand() *cobra.Command {
	var (
		user             string
		skipConfirmation bool
	)

	cmd := &cobra.Command{
		Use:   "add EMAIL",
		Short: "Add an email address",
		Long:  "Add a secondary email address to the authenticated user, or to another user with --user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			var email *rabbit.Email
			if user != "" {
				email, err = client.Emails().AddUserEmail(ctx, resolveUserRef(user), args[0], skipConfirmation)
			} else {
				email, err = client.Emails().AddEmail(ctx, args[0])
			}

			if err != nil {
				return fmt.Errorf("failed to add email: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully added email '%s' with ID %d\n", email.Email, email.ID)

			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "add the email to this user ID or username (admin only)")
	cmd.Flags().BoolVar(&skipConfirmation, "skip-confirmation", false, "skip the confirmation mail (admin only)")

	return cmd
}

func newEmailsDeleteCommand() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "delete EMAIL_ID",
		Short: "Delete an email address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			emailID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid email ID %q: %w", args[0], err)
			}

			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			if user != "" {
				err = client.Emails().DeleteUserEmail(ctx, resolveUserRef(user), emailID)
			} else {
				err = client.Emails().DeleteEmail(ctx, emailID)
			}

			if err != nil {
				return fmt.Errorf("failed to delete email: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully deleted email %d\n", emailID)

			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "delete the email from this user ID or username (admin only)")

	return cmd
}
