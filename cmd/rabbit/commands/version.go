package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, date string) *cobra.Command {
	var server bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display CLI build information, and the server version with --server",
		RunE: func(cmd *cobra.Command, args []string) error {
			type VersionInfo struct {
				Version        string `json:"version"                   yaml:"version"`
				Commit         string `json:"commit"                    yaml:"commit"`
				Built          string `json:"built"                     yaml:"built"`
				ServerVersion  string `json:"server_version,omitempty"  yaml:"server_version,omitempty"`
				ServerRevision string `json:"server_revision,omitempty" yaml:"server_revision,omitempty"`
			}

			versionInfo := VersionInfo{
				Version: version,
				Commit:  commit,
				Built:   date,
			}

			if server {
				client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
				if err != nil {
					return err
				}

				serverVersion, err := client.Version(context.Background())
				if err != nil {
					return fmt.Errorf("failed to get server version: %w", err)
				}

				versionInfo.ServerVersion = serverVersion.Version
				versionInfo.ServerRevision = serverVersion.Revision
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				return StandardJSONRenderer(versionInfo)
			case OutputFormatYAML:
				return StandardYAMLRenderer(versionInfo)
			default:
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Property", "Value")
				_ = table.Append("Version", version)
				_ = table.Append("Commit", commit)
				_ = table.Append("Built", date)

				if server {
					_ = table.Append("Server Version", versionInfo.ServerVersion)
					_ = table.Append("Server Revision", versionInfo.ServerRevision)
				}

				if err := table.Render(); err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&server, "server", false, "also fetch the server version")

	return cmd
}
