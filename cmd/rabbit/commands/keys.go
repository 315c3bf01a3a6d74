package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/rabbitz-io/rabbit/pkg/rabbit"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewKeysCommand creates the keys command group.
func NewKeysCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage SSH keys",
		Long:  "List, add, and remove SSH keys",
	}

	cmd.AddCommand(newKeysListCommand())
	cmd.AddCommand(newKeysGetCommand())
	cmd.AddCommand(newKeysAddCommand())
	cmd.AddCommand(newKeysDeleteCommand())

	return cmd
}

func newKeysListCommand() *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List SSH keys",
		Long:  "List the authenticated user's SSH keys, or another user's with --user",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			var keys []rabbit.SSHKey
			if userID > 0 {
				keys, err = client.SSHKeys().ListUserKeys(ctx, userID)
			} else {
				keys, err = client.SSHKeys().ListKeys(ctx)
			}

			if err != nil {
				return fmt.Errorf("failed to list SSH keys: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				return StandardJSONRenderer(keys)
			case OutputFormatYAML:
				return StandardYAMLRenderer(keys)
			default:
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("ID", "Title", "Fingerprint", "Created")

				for _, key := range keys {
					_ = table.Append(
						strconv.FormatInt(key.ID, 10),
						key.Title,
						truncateKey(key.Key),
						formatTime(key.CreatedAt),
					)
				}

				if err := table.Render(); err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}
			}

			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "list keys of this user ID (admin only)")

	return cmd
}

// truncateKey shortens a public key to its type and trailing bytes for
// single-line table display.
func truncateKey(key string) string {
	const tail = 16

	fields := strings.Fields(key)
	if len(fields) < 2 {
		return key
	}

	material := fields[1]
	if len(material) > tail {
		material = "..." + material[len(material)-tail:]
	}

	return fields[0] + " " + material
}

func newKeysGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY_ID",
		Short: "Get SSH key details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid key ID %q: %w", args[0], err)
			}

			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			key, err := client.SSHKeys().GetKey(context.Background(), keyID)
			if err != nil {
				return fmt.Errorf("failed to get SSH key: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				return StandardJSONRenderer(key)
			case OutputFormatYAML:
				return StandardYAMLRenderer(key)
			default:
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Property", "Value")
				_ = table.Append("ID", strconv.FormatInt(key.ID, 10))
				_ = table.Append("Title", key.Title)
				_ = table.Append("Key", key.Key)
				_ = table.Append("Created", formatTime(key.CreatedAt))

				if err := table.Render(); err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}
			}

			return nil
		},
	}
}

func newKeysAddCommand() *cobra.Command {
	var (
		title   string
		key     string
		keyFile string
		userID  int64
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an SSH key",
		Long:  "Add an SSH key to the authenticated user, or to another user with --user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" && keyFile != "" {
				data, err := os.ReadFile(keyFile) // #nosec G304 -- path supplied by the operator
				if err != nil {
					return fmt.Errorf("failed to read key file: %w", err)
				}

				key = strings.TrimSpace(string(data))
			}

			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			var added *rabbit.SSHKey
			if userID > 0 {
				added, err = client.SSHKeys().AddUserKey(ctx, userID, title, key)
			} else {
				added, err = client.SSHKeys().AddKey(ctx, title, key)
			}

			if err != nil {
				return fmt.Errorf("failed to add SSH key: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully added SSH key '%s' with ID %d\n", added.Title, added.ID)

			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "key title (required)")
	cmd.Flags().StringVar(&key, "key", "", "public key material")
	cmd.Flags().StringVar(&keyFile, "key-file", "", "read the public key from this file")
	cmd.Flags().Int64Var(&userID, "user", 0, "add the key to this user ID (admin only)")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newKeysDeleteCommand() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "delete KEY_ID",
		Short: "Delete an SSH key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid key ID %q: %w", args[0], err)
			}

			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			if user != "" {
				err = client.SSHKeys().DeleteUserKey(ctx, resolveUserRef(user), keyID)
			} else {
				err = client.SSHKeys().DeleteKey(ctx, keyID)
			}

			if err != nil {
				return fmt.Errorf("failed to delete SSH key: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully deleted SSH key %d\n", keyID)

			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "delete the key from this user ID or username (admin only)")

	return cmd
}
