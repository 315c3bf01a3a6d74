package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewAttributesCommand creates the attributes command group for user custom
// attributes. Every subcommand requires administrator access.
func NewAttributesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attributes",
		Short: "Manage custom attributes",
		Long:  "List, set, and remove custom attributes on user accounts",
	}

	cmd.AddCommand(newAttributesListCommand())
	cmd.AddCommand(newAttributesGetCommand())
	cmd.AddCommand(newAttributesSetCommand())
	cmd.AddCommand(newAttributesDeleteCommand())

	return cmd
}

func newAttributesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list USER_ID_OR_USERNAME",
		Short: "List custom attributes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			attributes, err := client.CustomAttributes().List(context.Background(), resolveUserRef(args[0]))
			if err != nil {
				return fmt.Errorf("failed to list custom attributes: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				return StandardJSONRenderer(attributes)
			case OutputFormatYAML:
				return StandardYAMLRenderer(attributes)
			default:
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Key", "Value")

				for _, attribute := range attributes {
					_ = table.Append(attribute.Key, attribute.Value)
				}

				if err := table.Render(); err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}
			}

			return nil
		},
	}
}

func newAttributesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get USER_ID_OR_USERNAME KEY",
		Short: "Get a custom attribute",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			attribute, err := client.CustomAttributes().Get(context.Background(), resolveUserRef(args[0]), args[1])
			if err != nil {
				return fmt.Errorf("failed to get custom attribute: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				return StandardJSONRenderer(attribute)
			case OutputFormatYAML:
				return StandardYAMLRenderer(attribute)
			default:
				_, _ = fmt.Fprintf(os.Stdout, "%s=%s\n", attribute.Key, attribute.Value)
			}

			return nil
		},
	}
}

func newAttributesSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set USER_ID_OR_USERNAME KEY VALUE",
		Short: "Set a custom attribute",
		Long:  "Create or replace a custom attribute on a user",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			attribute, err := client.CustomAttributes().Set(context.Background(),
				resolveUserRef(args[0]), args[1], args[2])
			if err != nil {
				return fmt.Errorf("failed to set custom attribute: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully set attribute '%s' on user '%s'\n", attribute.Key, args[0])

			return nil
		},
	}
}

func newAttributesDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete USER_ID_OR_USERNAME KEY",
		Short: "Delete a custom attribute",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			err = client.CustomAttributes().Delete(context.Background(), resolveUserRef(args[0]), args[1])
			if err != nil {
				return fmt.Errorf("failed to delete custom attribute: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully deleted attribute '%s' from user '%s'\n", args[1], args[0])

			return nil
		},
	}
}
