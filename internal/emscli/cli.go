// Package emscli wires the employeems commands: writing a starter .env,
// running the servers and exporting the directory from the command line.
package emscli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/phillip-england/employeems/internal/apistub"
	"github.com/phillip-england/employeems/internal/clientapp"
	"github.com/phillip-england/employeems/internal/config"
	"github.com/phillip-england/employeems/internal/envutil"
)

var ErrUsage = errors.New("usage")

// Execute runs the command line in args and returns ErrUsage for bad
// invocations so callers can print help and exit 2.
func Execute(args []string) error {
	root := NewRootCommand(os.Stdout)
	root.SetArgs(args)
	return root.Execute()
}

func NewRootCommand(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "employeems",
		Short:         "Employee management web client",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return usageError("missing command")
		},
	}
	root.SetOut(out)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err.Error())
	})
	root.AddCommand(newSetupCommand(), newRunCommand(), newExportCommand())
	return root
}

func PrintUsage(w io.Writer) {
	root := NewRootCommand(w)
	root.SetOut(w)
	_ = root.Usage()
}

func usageError(msg string) error {
	return errors.Wrap(ErrUsage, msg)
}

func newSetupCommand() *cobra.Command {
	var (
		envPath    string
		apiBaseURL string
		adminEmail string
		adminPass  string
		force      bool
	)
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Write a starter .env file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			values := map[string]string{
				"CLIENT_ADDR":         ":3000",
				"STUB_ADDR":           ":8080",
				"API_BASE_URL":        strings.TrimRight(apiBaseURL, "/"),
				"PAGE_SIZE":           "3",
				"DRAFT_STORE":         config.DraftStoreMemory,
				"STUB_ADMIN_EMAIL":    adminEmail,
				"STUB_ADMIN_PASSWORD": adminPass,
			}
			if err := envutil.WriteDotEnv(envPath, values, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", envPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&envPath, "env-file", ".env", "path to .env file")
	cmd.Flags().StringVar(&apiBaseURL, "api-base-url", "http://localhost:8080", "employee API base URL")
	cmd.Flags().StringVar(&adminEmail, "admin-email", "admin@example.com", "manager account seeded into the local API")
	cmd.Flags().StringVar(&adminPass, "admin-password", "admin12345", "password of the seeded manager account")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing env file")
	return cmd
}

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "run client|stub|all",
		Short:     "Run the web client, the local API, or both",
		ValidArgs: []string{"client", "stub", "all"},
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageError("missing run target: client | stub | all")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.DefaultEnvFiles...)
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			switch args[0] {
			case "client":
				return ignoreCanceled(clientapp.Run(ctx, cfg))
			case "stub":
				return ignoreCanceled(apistub.Run(ctx, cfg))
			case "all":
				return runAll(ctx, cfg)
			default:
				return usageError(fmt.Sprintf("unknown run target %q", args[0]))
			}
		},
	}
}

func runAll(ctx context.Context, cfg *config.Configuration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errCh := make(chan error, 2)

	go func() { errCh <- ignoreCanceled(apistub.Run(ctx, cfg)) }()
	go func() {
		time.Sleep(300 * time.Millisecond)
		errCh <- ignoreCanceled(clientapp.Run(ctx, cfg))
	}()

	var first error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil && first == nil {
			first = err
			cancel()
		}
	}
	return first
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
