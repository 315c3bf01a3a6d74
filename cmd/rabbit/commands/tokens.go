package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/rabbitz-io/rabbit/pkg/rabbit"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewTokensCommand creates the tokens command group for impersonation
// tokens. Every subcommand requires administrator access.
func NewTokensCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "Manage impersonation tokens",
		Long:  "List, create, and revoke impersonation tokens on behalf of other users",
	}

	cmd.AddCommand(newTokensListCommand())
	cmd.AddCommand(newTokensGetCommand())
	cmd.AddCommand(newTokensCreateCommand())
	cmd.AddCommand(newTokensRevokeCommand())

	return cmd
}

func newTokensListCommand() *cobra.Command {
	var state string

	cmd := &cobra.Command{
		Use:   "list USER_ID_OR_USERNAME",
		Short: "List impersonation tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			tokens, err := client.ImpersonationTokens().List(context.Background(),
				resolveUserRef(args[0]), rabbit.ImpersonationState(state))
			if err != nil {
				return fmt.Errorf("failed to list impersonation tokens: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				return StandardJSONRenderer(tokens)
			case OutputFormatYAML:
				return StandardYAMLRenderer(tokens)
			default:
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("ID", "Name", "Active", "Scopes", "Expires")

				for _, token := range tokens {
					_ = table.Append(
						strconv.FormatInt(token.ID, 10),
						token.Name,
						strconv.FormatBool(token.Active),
						formatScopes(token.Scopes),
						formatDate(token.ExpiresAt),
					)
				}

				if err := table.Render(); err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&state, "state", "", "filter by state (all, active, inactive)")

	return cmd
}

func formatScopes(scopes []rabbit.TokenScope) string {
	parts := make([]string, 0, len(scopes))
	for _, scope := range scopes {
		parts = append(parts, string(scope))
	}

	return strings.Join(parts, ", ")
}

func newTokensGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get USER_ID_OR_USERNAME TOKEN_ID",
		Short: "Get impersonation token details",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokenID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid token ID %q: %w", args[1], err)
			}

			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			token, err := client.ImpersonationTokens().Get(context.Background(), resolveUserRef(args[0]), tokenID)
			if err != nil {
				return fmt.Errorf("failed to get impersonation token: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				return StandardJSONRenderer(token)
			case OutputFormatYAML:
				return StandardYAMLRenderer(token)
			default:
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Property", "Value")
				_ = table.Append("ID", strconv.FormatInt(token.ID, 10))
				_ = table.Append("Name", token.Name)
				_ = table.Append("Active", strconv.FormatBool(token.Active))
				_ = table.Append("Revoked", strconv.FormatBool(token.Revoked))
				_ = table.Append("Scopes", formatScopes(token.Scopes))
				_ = table.Append("Expires", formatDate(token.ExpiresAt))
				_ = table.Append("Created", formatTime(token.CreatedAt))

				if err := table.Render(); err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}
			}

			return nil
		},
	}
}

func newTokensCreateCommand() *cobra.Command {
	var (
		name      string
		scopes    []string
		expiresAt string
	)

	cmd := &cobra.Command{
		Use:   "create USER_ID_OR_USERNAME",
		Short: "Create an impersonation token",
		Long:  "Create an impersonation token for a user. The token value is only shown once.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			var expiry *time.Time

			if expiresAt != "" {
				parsed, err := time.Parse("2006-01-02", expiresAt)
				if err != nil {
					return fmt.Errorf("invalid expiry date %q: %w", expiresAt, err)
				}

				expiry = &parsed
			}

			tokenScopes := make([]rabbit.TokenScope, 0, len(scopes))
			for _, scope := range scopes {
				tokenScopes = append(tokenScopes, rabbit.TokenScope(scope))
			}

			token, err := client.ImpersonationTokens().Create(context.Background(),
				resolveUserRef(args[0]), name, expiry, tokenScopes)
			if err != nil {
				return fmt.Errorf("failed to create impersonation token: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully created token '%s' with ID %d\n", token.Name, token.ID)
			_, _ = fmt.Fprintf(os.Stdout, "Token (shown once): %s\n", token.Token)

			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "token name (required)")
	cmd.Flags().StringSliceVar(&scopes, "scope", nil, "token scope, repeatable (api, read_user)")
	cmd.Flags().StringVar(&expiresAt, "expires-at", "", "expiry date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newTokensRevokeCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "revoke USER_ID_OR_USERNAME TOKEN_ID",
		Short: "Revoke an impersonation token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokenID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid token ID %q: %w", args[1], err)
			}

			if !force {
				_, _ = fmt.Fprintf(os.Stdout, "Really revoke token %d of user '%s'? (y/N): ", tokenID, args[0])

				var response string

				_, _ = fmt.Scanln(&response)
				if response != "y" && response != "Y" {
					_, _ = os.Stdout.WriteString("Cancelled\n")

					return nil
				}
			}

			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			err = client.ImpersonationTokens().Revoke(context.Background(), resolveUserRef(args[0]), tokenID)
			if err != nil {
				return fmt.Errorf("failed to revoke impersonation token: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully revoked token %d\n", tokenID)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "revoke without confirmation")

	return cmd
}
