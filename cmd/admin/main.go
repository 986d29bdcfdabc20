package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/niksmo/ecom-admin/config"
	"github.com/niksmo/ecom-admin/internal/app"
	"github.com/niksmo/ecom-admin/internal/core/domain"
	"github.com/niksmo/ecom-admin/pkg/sigctx"
)

const closeTimeout = 5 * time.Second

const usage = `usage: admin <command> [args] [--config path]

commands:
  login --email <email> [--password <password>]
  logout
  whoami
  change-password --current <password> --new <password>
  list <kind> [--search s] [--status s] [--category id] [--payment-status s]
              [--refund-status s] [--sort-by f] [--sort-order asc|desc]
              [--page n] [--limit n]
  watch <kind>              search terms are read from stdin, one per line
  stats <kind>
  options                   active category options
  create <kind> --file <path>
  update <kind> <id> --file <path>
  delete <kind> <id>
  toggle <kind> <id>
  order-status <id> <status>
  refund-approve <id> [--notes s]
  refund-reject <id> --reason s
  upload <file> [--folder s]

kinds: product, category, banner, order, admin (superadmins only)
admin accounts have no toggle; set "isActive" through update
`

func main() {
	if len(os.Args) < 2 || os.Args[1] == "-h" || os.Args[1] == "--help" {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	name, args := os.Args[1], os.Args[2:]

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", name, usage)
		os.Exit(2)
	}

	sigCtx, stop := sigctx.NotifyContext(context.Background())
	defer stop()

	cfg := config.Load()
	dashboard := app.NewDashboard(sigCtx, cfg)
	dashboard.OnAuthFailure(func() {
		fmt.Fprintln(os.Stderr, "session is over, sign in again with: admin login")
	})

	err := cmd(sigCtx, stop, dashboard, args)

	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	dashboard.Close(ctx)

	if err != nil {
		fmt.Fprintln(os.Stderr, describe(err))
		os.Exit(1)
	}
}

// describe renders err the way the dashboard shows it to the admin.
func describe(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		msg := "invalid input:"
		for _, k := range ve.Fields.Keys() {
			msg += fmt.Sprintf("\n  %s: %s", k, ve.Fields[k])
		}
		return msg
	}
	if errors.Is(err, errUsage) {
		return err.Error() + "\n\n" + usage
	}
	if msg := domain.PublicMessage(err); msg != domain.GenericErrorMessage {
		return msg
	}
	return err.Error()
}
