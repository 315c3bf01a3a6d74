package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/rabbitz-io/rabbit/pkg/rabbit"
	"github.com/rabbitz-io/rabbit/pkg/rabbitclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		apiEndpoint string
		token       string
		tokenType   string
		secretToken string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to a rabbit server",
		Long:  "Verify credentials against a server and store them in the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiEndpoint == "" {
				apiEndpoint = viper.GetString("api")
			}

			if apiEndpoint == "" {
				reader := bufio.NewReader(os.Stdin)
				fmt.Print("API endpoint: ")
				apiEndpoint, _ = reader.ReadString('\n')
				apiEndpoint = strings.TrimSpace(apiEndpoint)
			}

			if apiEndpoint == "" {
				return rabbit.ErrBaseURLRequired
			}

			if token == "" {
				fmt.Print("Token: ")

				byteToken, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read token: %w", err)
				}

				token = string(byteToken)

				fmt.Println()
			}

			if token == "" {
				return rabbit.ErrTokenRequired
			}

			config := &rabbit.Config{
				BaseURL:     apiEndpoint,
				TokenType:   rabbit.TokenType(tokenType),
				Token:       token,
				SecretToken: secretToken,
			}

			client, err := rabbitclient.New(config)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			// Verify the credential before persisting it
			user, err := client.Users().Current(context.Background())
			if err != nil {
				return fmt.Errorf("failed to authenticate: %w", err)
			}

			cliConfig := loadConfig()
			cliConfig.API = apiEndpoint
			cliConfig.Token = token
			cliConfig.TokenType = tokenType
			cliConfig.SecretToken = secretToken
			cliConfig.Username = user.Username

			if err := saveConfig(cliConfig); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(os.Stdout, "Logged in to %s as '%s'\n", apiEndpoint, user.Username)

			return nil
		},
	}

	cmd.Flags().StringVar(&apiEndpoint, "api-endpoint", "", "API endpoint URL")
	cmd.Flags().StringVar(&token, "with-token", "", "authentication token (prompted when omitted)")
	cmd.Flags().StringVar(&tokenType, "token-type", "", "token type (private, access)")
	cmd.Flags().StringVar(&secretToken, "secret-token", "", "expected X-Rabbit-Token response header value")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout from the current server",
		Long:  "Remove the stored credential from the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			if config.Token == "" {
				_, _ = os.Stdout.WriteString("Not logged in\n")

				return nil
			}

			config.Token = ""
			config.SecretToken = ""
			config.Username = ""

			if err := saveConfig(config); err != nil {
				return err
			}

			_, _ = os.Stdout.WriteString("Logged out\n")

			return nil
		},
	}
}
