package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/rentledger/internal/domain"
	"github.com/iho/rentledger/internal/infrastructure/auth"
	"github.com/iho/rentledger/internal/infrastructure/config"
	"github.com/iho/rentledger/internal/infrastructure/logger"
	"github.com/iho/rentledger/internal/infrastructure/postgres"
)

var errInconsistent = errors.New("ledger is inconsistent")

func newLedgerCmd(opts *options) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	ledgerCmd.AddCommand(&cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := newAPIClient(opts).do(cmd.Context(), http.MethodGet, "/api/v1/admin/ledger/consistency", nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch status {
			case http.StatusOK:
				fmt.Fprintln(out, "Consistency check PASSED")
				return printJSON(out, body)
			case http.StatusConflict:
				fmt.Fprintln(out, "Consistency check FAILED")
				if err := printJSON(out, body); err != nil {
					return err
				}
				return errInconsistent
			default:
				return fmt.Errorf("consistency check failed (status %d): %s", status, truncate(string(body), 200))
			}
		},
	})

	return ledgerCmd
}

func newAdminCmd(opts *options) *cobra.Command {
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrator operations",
	}

	adminCmd.AddCommand(&cobra.Command{
		Use:   "reconcile",
		Short: "Credit every paid listing that was never credited",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := newAPIClient(opts).do(cmd.Context(), http.MethodPost, "/api/v1/admin/reconcile-credits", nil)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("reconciliation failed (status %d): %s", status, truncate(string(body), 200))
			}

			var report struct {
				Processed int `json:"processed"`
				Credited  int `json:"credited"`
				Skipped   int `json:"skipped"`
				Errors    int `json:"errors"`
			}
			if err := json.Unmarshal(body, &report); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "processed=%d credited=%d skipped=%d errors=%d\n",
				report.Processed, report.Credited, report.Skipped, report.Errors)
			return nil
		},
	})

	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and change system settings",
	}

	settingsCmd.AddCommand(
		&cobra.Command{
			Use:   "get KEY",
			Short: "Show a system setting",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return settingRequest(cmd, opts, http.MethodGet, args[0], nil)
			},
		},
		&cobra.Command{
			Use:   "set KEY VALUE",
			Short: "Change a system setting",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return settingRequest(cmd, opts, http.MethodPut, args[0], map[string]string{"value": args[1]})
			},
		},
	)

	adminCmd.AddCommand(settingsCmd)
	return adminCmd
}

func settingRequest(cmd *cobra.Command, opts *options, method, key string, payload any) error {
	path := "/api/v1/admin/settings/" + url.PathEscape(key)

	status, body, err := newAPIClient(opts).do(cmd.Context(), method, path, payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("setting request failed (status %d): %s", status, truncate(string(body), 200))
	}

	return printJSON(cmd.OutOrStdout(), body)
}

func newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	migrator := func() (*postgres.Migrator, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		lg := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console"})
		return postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, lg), nil
	}

	var steps int
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := migrator()
			if err != nil {
				return err
			}
			return m.Down(steps)
		},
	}
	downCmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := migrator()
			if err != nil {
				return err
			}
			return m.Up()
		},
	}, downCmd)

	return migrateCmd
}

func newTokenCmd() *cobra.Command {
	var (
		secret string
		userID string
		email  string
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("a signing secret is required (--secret or $JWT_SECRET)")
			}

			token, err := auth.NewJWTManager(secret, ttl).Generate(&domain.User{
				ID:    userID,
				Email: email,
				Role:  domain.Role(role),
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "HMAC signing secret")
	cmd.Flags().StringVar(&userID, "user", "", "User ID placed in the token")
	cmd.Flags().StringVar(&email, "email", "", "Email placed in the token")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleOwner), "Role: owner or admin")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
