package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"github.com/smarterbot/smartermcp/internal/adapter/github"
	"github.com/smarterbot/smartermcp/internal/adapter/postgres"
	"github.com/smarterbot/smartermcp/internal/config"
	"github.com/smarterbot/smartermcp/internal/domain/credential"
	"github.com/smarterbot/smartermcp/internal/service"
)

// runAdmin dispatches admin subcommands (issue-token, list-tenants, check-updates).
func runAdmin(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" {
		printAdminHelp()
		return nil
	}

	switch args[0] {
	case "issue-token":
		return runAdminIssueToken(args[1:])
	case "list-tenants":
		return runAdminListTenants(args[1:])
	case "check-updates":
		return runAdminCheckUpdates(args[1:])
	default:
		printAdminHelp()
		return fmt.Errorf("unknown admin command: %s", args[0])
	}
}

func printAdminHelp() {
	fmt.Fprintf(os.Stderr, `Usage: smartermcp admin <command> [options]

Commands:
  issue-token      Issue a tenant credential
  list-tenants     List all registered tenants
  check-updates    Check tracked services for newer releases
  help             Show this help message

Examples:
  smartermcp admin issue-token --tenant acme --user ops@acme.cl
  smartermcp admin issue-token --tenant acme --user ops@acme.cl --permissions odoo:read,odoo:write
  smartermcp admin list-tenants
  smartermcp admin check-updates
`)
}

func runAdminIssueToken(args []string) error {
	fs := flag.NewFlagSet("issue-token", flag.ContinueOnError)
	tenantName := fs.String("tenant", "", "tenant name (required)")
	userID := fs.String("user", "", "user identifier (required)")
	permissions := fs.String("permissions", "", "comma-separated permission list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *tenantName == "" {
		return fmt.Errorf("--tenant is required")
	}
	if *userID == "" {
		return fmt.Errorf("--user is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.Auth.JWTSecret == "" {
		secret, err := promptSecret("Signing secret: ")
		if err != nil {
			return fmt.Errorf("read secret: %w", err)
		}
		if secret == "" {
			return fmt.Errorf("signing secret must not be empty")
		}
		cfg.Auth.JWTSecret = secret
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	gate := service.NewTenantGate(postgres.NewStore(pool))
	status, err := gate.CheckActive(ctx, *tenantName)
	if err != nil {
		return fmt.Errorf("tenant lookup: %w", err)
	}
	if !status.Found {
		return fmt.Errorf("tenant %q not found", *tenantName)
	}
	if !status.Active {
		return fmt.Errorf("tenant %q has no active subscription", *tenantName)
	}

	perms := []string{credential.PermOdooExecute}
	if *permissions != "" {
		perms = strings.Split(*permissions, ",")
	}

	token, err := service.NewTokenService(cfg.Auth).Issue(*tenantName, *userID, perms)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "Token issued for tenant %s (expires in %s)\n", *tenantName, cfg.Auth.TokenExpiry)
	return nil
}

func runAdminListTenants(args []string) error {
	fs := flag.NewFlagSet("list-tenants", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	tenants, err := postgres.NewStore(pool).ListTenants(ctx)
	if err != nil {
		return fmt.Errorf("list tenants: %w", err)
	}

	if len(tenants) == 0 {
		fmt.Println("No tenants found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tSTATUS\tPLAN\tCREATED")
	for i := range tenants {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			tenants[i].ID, tenants[i].Name, tenants[i].Status,
			tenants[i].Plan, tenants[i].CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func runAdminCheckUpdates(args []string) error {
	fs := flag.NewFlagSet("check-updates", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	releases := github.NewClient(cfg.Updates.FetchTimeout)
	releases.SetToken(os.Getenv("GITHUB_TOKEN"))

	infos := service.NewUpdateService(cfg.Updates, releases, nil).CheckAll(context.Background())
	if len(infos) == 0 {
		fmt.Println("No services tracked.")
		return nil
	}

	names := make([]string, 0, len(infos))
	for name := range infos {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SERVICE\tCURRENT\tLATEST\tUPDATE\tERROR")
	for _, name := range names {
		info := infos[name]
		latest := info.LatestVersion
		if latest == "" {
			latest = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n",
			info.Service, info.CurrentVersion, latest, info.HasUpdate, info.Error)
	}
	return w.Flush()
}

// promptSecret reads a secret from the terminal without echoing.
func promptSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin)) //nolint:unconvert // int conversion needed on some platforms
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
