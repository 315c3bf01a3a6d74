package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/rabbitz-io/rabbit/internal/constants"
	"github.com/rabbitz-io/rabbit/pkg/rabbit"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewUsersCommand creates the users command group.
func NewUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users",
		Long:  "List, view, create, and manage user accounts",
	}

	cmd.AddCommand(newUsersListCommand())
	cmd.AddCommand(newUsersGetCommand())
	cmd.AddCommand(newUsersFindCommand())
	cmd.AddCommand(newUsersCreateCommand())
	cmd.AddCommand(newUsersDeleteCommand())
	cmd.AddCommand(newUsersBlockCommand(true))
	cmd.AddCommand(newUsersBlockCommand(false))
	cmd.AddCommand(newUsersAvatarCommand())
	cmd.AddCommand(newUsersCurrentCommand())

	return cmd
}

func newUsersListCommand() *cobra.Command {
	var (
		allPages bool
		perPage  int
		search   string
		username string
		active   bool
		blocked  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Long:  "List user accounts on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()
			opts := &rabbit.ListUsersOptions{
				PerPage:  perPage,
				Search:   search,
				Username: username,
				Active:   active,
				Blocked:  blocked,
			}

			pager, err := client.Users().Pager(ctx, opts)
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}

			var users []rabbit.User

			if allPages {
				users, err = pager.All()
				if err != nil {
					return fmt.Errorf("failed to list users: %w", err)
				}
			} else {
				pageSize := perPage
				if pageSize <= 0 {
					pageSize = constants.DefaultPerPage
				}

				// Stop at one page worth of items so the pager never
				// fetches page two.
				for pager.HasNext() && len(users) < pageSize {
					user, err := pager.Next()
					if errors.Is(err, rabbit.ErrPagerExhausted) {
						break
					}

					if err != nil {
						return fmt.Errorf("failed to list users: %w", err)
					}

					users = append(users, user)
				}
			}

			return renderUsers(users, pager.TotalPages(), allPages)
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "results per page")
	cmd.Flags().StringVar(&search, "search", "", "search by name, username, or email")
	cmd.Flags().StringVar(&username, "username", "", "filter by exact username")
	cmd.Flags().BoolVar(&active, "active", false, "only active users")
	cmd.Flags().BoolVar(&blocked, "blocked", false, "only blocked users")

	return cmd
}

func renderUsers(users []rabbit.User, totalPages int, allPages bool) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(users)
	case OutputFormatYAML:
		return StandardYAMLRenderer(users)
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("ID", "Username", "Name", "Email", "State", "Created")

		for _, user := range users {
			_ = table.Append(
				strconv.FormatInt(user.ID, 10),
				user.Username,
				user.Name,
				user.Email,
				user.State,
				formatTime(user.CreatedAt),
			)
		}

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		if !allPages && totalPages > 1 {
			_, _ = fmt.Fprintf(os.Stdout, "\nShowing page 1 of %d. Use --all to fetch all pages.\n", totalPages)
		}
	}

	return nil
}

func newUsersGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get USER_ID_OR_USERNAME",
		Short: "Get user details",
		Long:  "Display detailed information about a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			var user *rabbit.User
			if id, parseErr := strconv.ParseInt(args[0], 10, 64); parseErr == nil && id > 0 {
				user, err = client.Users().Get(ctx, id)
			} else {
				user, err = client.Users().GetByUsername(ctx, args[0])
			}

			if err != nil {
				return fmt.Errorf("failed to get user: %w", err)
			}

			return renderUser(user)
		},
	}

	return cmd
}

func renderUser(user *rabbit.User) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(user)
	case OutputFormatYAML:
		return StandardYAMLRenderer(user)
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Property", "Value")
		_ = table.Append("ID", strconv.FormatInt(user.ID, 10))
		_ = table.Append("Username", user.Username)
		_ = table.Append("Name", user.Name)
		_ = table.Append("Email", user.Email)
		_ = table.Append("State", user.State)

		if user.Bio != "" {
			_ = table.Append("Bio", user.Bio)
		}

		if user.Location != "" {
			_ = table.Append("Location", user.Location)
		}

		if user.Organization != "" {
			_ = table.Append("Organization", user.Organization)
		}

		if user.Provider != "" {
			_ = table.Append("Provider", user.Provider)
			_ = table.Append("Extern UID", user.ExternUID)
		}

		_ = table.Append("Admin", strconv.FormatBool(user.IsAdmin))
		_ = table.Append("Created", formatTime(user.CreatedAt))
		_ = table.Append("Last Activity", formatDate(user.LastActivityOn))

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}
	}

	return nil
}

func newUsersFindCommand() *cobra.Command {
	var (
		page    int
		perPage int
	)

	cmd := &cobra.Command{
		Use:   "find QUERY",
		Short: "Search users",
		Long:  "Search users by name, username, or email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			users, err := client.Users().Find(context.Background(), args[0], page, perPage)
			if err != nil {
				return fmt.Errorf("failed to search users: %w", err)
			}

			return renderUsers(users, 0, true)
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "page to fetch")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "results per page")

	return cmd
}

func newUsersCreateCommand() *cobra.Command {
	var (
		email         string
		username      string
		name          string
		password      string
		resetPassword bool
		admin         bool
		external      bool
		projectsLimit int
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Long:  "Create a new user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			user := &rabbit.User{
				Email:         email,
				Username:      username,
				Name:          name,
				IsAdmin:       admin,
				External:      external,
				ProjectsLimit: projectsLimit,
			}

			created, err := client.Users().Create(context.Background(), user, password, resetPassword)
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully created user '%s' with ID %d\n", created.Username, created.ID)

			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address (required)")
	cmd.Flags().StringVar(&username, "username", "", "username (required)")
	cmd.Flags().StringVar(&name, "name", "", "display name (required)")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	cmd.Flags().BoolVar(&resetPassword, "reset-password", false, "send a password reset link instead of setting a password")
	cmd.Flags().BoolVar(&admin, "admin", false, "grant administrator access")
	cmd.Flags().BoolVar(&external, "external", false, "mark the user as external")
	cmd.Flags().IntVar(&projectsLimit, "projects-limit", 0, "maximum number of owned projects")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newUsersDeleteCommand() *cobra.Command {
	var (
		force      bool
		hardDelete bool
	)

	cmd := &cobra.Command{
		Use:   "delete USER_ID_OR_USERNAME",
		Short: "Delete a user",
		Long:  "Delete a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				_, _ = fmt.Fprintf(os.Stdout, "Really delete user '%s'? (y/N): ", args[0])

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

			err = client.Users().Delete(context.Background(), resolveUserRef(args[0]), hardDelete)
			if err != nil {
				return fmt.Errorf("failed to delete user: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully deleted user '%s'\n", args[0])

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "force deletion without confirmation")
	cmd.Flags().BoolVar(&hardDelete, "hard", false, "also remove contributions owned by the user")

	return cmd
}

func newUsersBlockCommand(block bool) *cobra.Command {
	use, short, verb := "block", "Block a user", "blocked"
	if !block {
		use, short, verb = "unblock", "Unblock a user", "unblocked"
	}

	return &cobra.Command{
		Use:   use + " USER_ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user ID %q: %w", args[0], err)
			}

			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			if block {
				err = client.Users().Block(context.Background(), userID)
			} else {
				err = client.Users().Unblock(context.Background(), userID)
			}

			if err != nil {
				return fmt.Errorf("failed to %s user: %w", use, err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully %s user %d\n", verb, userID)

			return nil
		},
	}
}

func newUsersAvatarCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "avatar USER_ID_OR_USERNAME IMAGE_FILE",
		Short: "Set a user's avatar",
		Long:  "Upload an image file as a user's avatar",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := os.Open(args[1]) // #nosec G304 -- path supplied by the operator
			if err != nil {
				return fmt.Errorf("failed to open image file: %w", err)
			}
			defer func() { _ = image.Close() }()

			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			user, err := client.Users().SetAvatar(context.Background(), resolveUserRef(args[0]), args[1], image)
			if err != nil {
				return fmt.Errorf("failed to set avatar: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully set avatar for user '%s'\n", user.Username)

			return nil
		},
	}
}

func newUsersCurrentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the authenticated user",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClientWithAPI(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			user, err := client.Users().Current(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get current user: %w", err)
			}

			return renderUser(user)
		},
	}
}
