package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Default values of the persistent flags
const (
	DefaultServer = "http://localhost:8080"
	DefaultDB     = "portfolio-client.db"
)

// Opener builds a Cli for a server URL and a local session database. The
// returned func releases what the Cli holds.
type Opener func(server, db string) (*Cli, func() error, error)

// NewRootCommand builds the command tree. The Cli is opened once before a
// subcommand runs and closed after it returns.
func NewRootCommand(version string, open Opener) *cobra.Command {
	var (
		server  string
		db      string
		c       *Cli
		closeFn func() error
	)

	root := &cobra.Command{
		Use:           "portfolio",
		Short:         "Manage portfolio content from the command line",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			c, closeFn, err = open(server, db)
			if err != nil {
				return fmt.Errorf("failed to open session store: %w", err)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if closeFn == nil {
				return nil
			}
			return closeFn()
		},
	}
	root.PersistentFlags().StringVar(&server, "server", DefaultServer, "Server URL")
	root.PersistentFlags().StringVar(&db, "db", DefaultDB, "Path to local session database")

	cli := func() *Cli { return c }
	root.AddCommand(
		loginCmd(cli),
		&cobra.Command{
			Use:   "logout",
			Short: "End the session on the server and locally",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return cli().runLogout(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show server health and the local session",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return cli().runStatus(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Write seed content for every missing kind",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return cli().runInit(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "reload",
			Short: "Reload content from the backend",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return cli().runReload(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "get [kind]",
			Short: "Print the content snapshot or one kind of it",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				kind := ""
				if len(args) == 1 {
					kind = args[0]
				}
				return cli().runGet(cmd.Context(), kind)
			},
		},
		payloadCmd(cli, "set <kind>", "Merge a JSON patch into a singleton", cobra.ExactArgs(1),
			func(c *Cli, cmd *cobra.Command, args []string, p Payload) error {
				return c.runSet(cmd.Context(), args[0], p)
			}),
		payloadCmd(cli, "add <kind>", "Append a row to a collection", cobra.ExactArgs(1),
			func(c *Cli, cmd *cobra.Command, args []string, p Payload) error {
				return c.runAdd(cmd.Context(), args[0], p)
			}),
		payloadCmd(cli, "update <kind> <id>", "Merge a JSON patch into a collection row", cobra.ExactArgs(2),
			func(c *Cli, cmd *cobra.Command, args []string, p Payload) error {
				return c.runUpdate(cmd.Context(), args[0], args[1], p)
			}),
		&cobra.Command{
			Use:   "delete <kind> <id>",
			Short: "Delete a collection row",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return cli().runDelete(cmd.Context(), args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "reorder <kind> <id>...",
			Short: "Set the display order of a collection",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return cli().runReorder(cmd.Context(), args[0], args[1:])
			},
		},
		uploadCmd(cli),
		&cobra.Command{
			Use:   "delete-upload <path>",
			Short: "Delete a stored file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return cli().runDeleteUpload(cmd.Context(), args[0])
			},
		},
	)

	return root
}

func loginCmd(cli func() *Cli) *cobra.Command {
	var (
		email     string
		passwords Passwords
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as the portfolio administrator",
		Long: `Log in and store the session locally.

The password is read from, in order: the PORTFOLIO_PASSWORD environment
variable, --password-file, --password, an interactive prompt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli().runLogin(cmd.Context(), email, passwords)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Administrator email")
	cmd.Flags().StringVar(&passwords.FromFile, "password-file", "", "Read the password from a file")
	cmd.Flags().StringVar(&passwords.FromArgs, "password", "", "Password (visible in process list)")
	return cmd
}

func payloadCmd(
	cli func() *Cli,
	use, short string,
	args cobra.PositionalArgs,
	run func(c *Cli, cmd *cobra.Command, args []string, p Payload) error,
) *cobra.Command {
	var p Payload
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			p.stdin = cmd.InOrStdin()
			return run(cli(), cmd, args, p)
		},
	}
	cmd.Flags().StringVarP(&p.Data, "data", "d", "", "JSON payload")
	cmd.Flags().StringVarP(&p.File, "file", "f", "", "Read the JSON payload from a file, - for stdin")
	return cmd
}

func uploadCmd(cli func() *Cli) *cobra.Command {
	var folder, objectPath string
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an image or document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli().runUpload(cmd.Context(), args[0], folder, objectPath)
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "Store under this folder with a generated name")
	cmd.Flags().StringVar(&objectPath, "path", "", "Store at this exact path")
	cmd.MarkFlagsMutuallyExclusive("folder", "path")
	return cmd
}
