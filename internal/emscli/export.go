package emscli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"github.com/phillip-england/employeems/internal/apiclient"
	"github.com/phillip-england/employeems/internal/config"
	"github.com/phillip-england/employeems/internal/employee"
	"github.com/phillip-england/employeems/internal/spreadsheet"
)

type exportOptions struct {
	email    string
	password string
	out      string
	query    string
}

func newExportCommand() *cobra.Command {
	var opts exportOptions
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the employee directory as .xlsx or .json.xz",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.email == "" || opts.password == "" {
				return usageError("--email and --password are required")
			}
			cfg, err := config.Load(config.DefaultEnvFiles...)
			if err != nil {
				return err
			}
			client := apiclient.New(cfg.APIBaseURL, apiclient.WithTimeout(cfg.APITimeout))
			n, err := runExport(cmd.Context(), client, opts, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d employees to %s\n", n, opts.out)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.email, "email", "", "account email")
	cmd.Flags().StringVar(&opts.password, "password", "", "account password")
	cmd.Flags().StringVar(&opts.out, "out", "employees.xlsx", "output file, .xlsx or .json.xz")
	cmd.Flags().StringVar(&opts.query, "query", "", "only export employees matching this search")
	return cmd
}

func runExport(ctx context.Context, client *apiclient.Client, opts exportOptions, now time.Time) (int, error) {
	write, err := exporter(opts.out)
	if err != nil {
		return 0, err
	}

	login, err := client.Users().Login(ctx, apiclient.Credentials{Email: opts.email, Password: opts.password})
	if err != nil {
		return 0, errors.Wrap(err, "login")
	}
	session, ok := login.(apiclient.Success[json.RawMessage])
	if !ok || session.Token == "" {
		return 0, errors.Errorf("login: %s", apiclient.MessageOr(login, "Login failed"))
	}

	employees := client.Employees().Bound(session.Token)
	var outcome apiclient.Outcome[[]employee.Employee]
	if strings.TrimSpace(opts.query) == "" {
		outcome, err = employees.List(ctx)
	} else {
		outcome, err = employees.Search(ctx, opts.query)
	}
	if err != nil {
		return 0, errors.Wrap(err, "list employees")
	}
	list, ok := outcome.(apiclient.Success[[]employee.Employee])
	if !ok {
		return 0, errors.Errorf("list employees: %s", apiclient.MessageOr(outcome, apiclient.FallbackMessage))
	}

	f, err := os.Create(opts.out)
	if err != nil {
		return 0, errors.Wrap(err, "create output")
	}
	if err := write(f, list.Data, now); err != nil {
		_ = f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, errors.Wrap(err, "close output")
	}
	return len(list.Data), nil
}

type exportFunc func(w io.Writer, employees []employee.Employee, now time.Time) error

func exporter(path string) (exportFunc, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".xlsx"):
		return func(w io.Writer, employees []employee.Employee, _ time.Time) error {
			return spreadsheet.ExportEmployees(w, employees)
		}, nil
	case strings.HasSuffix(lower, ".json.xz"):
		return spreadsheet.WriteArchive, nil
	default:
		return nil, usageError("--out must end in .xlsx or .json.xz")
	}
}
