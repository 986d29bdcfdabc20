package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/niksmo/ecom-admin/internal/app"
	"github.com/niksmo/ecom-admin/internal/core/domain"
	"github.com/niksmo/ecom-admin/internal/core/service"
	"github.com/spf13/pflag"
)

const passwordEnvName = "ECOM_ADMIN_PASSWORD"

var errUsage = errors.New("bad usage")

type command func(
	ctx context.Context, stop context.CancelFunc, d *app.Dashboard, args []string,
) error

var commands = map[string]command{
	"login":           login,
	"logout":          logout,
	"whoami":          whoami,
	"change-password": changePassword,
	"list":            list,
	"watch":           watch,
	"stats":           stats,
	"options":         options,
	"create":          create,
	"update":          update,
	"delete":          remove,
	"toggle":          toggle,
	"order-status":    orderStatus,
	"refund-approve":  refundApprove,
	"refund-reject":   refundReject,
	"upload":          upload,
}

// newFlagSet knows --config so that the flag config.Load reads is not
// rejected here.
func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "config file")
	return fs
}

// parse returns exactly n positional args.
func parse(fs *pflag.FlagSet, args []string, n int) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", fs.Name(), errUsage, err)
	}
	if fs.NArg() != n {
		return nil, fmt.Errorf("%s: %w: want %d args, got %d", fs.Name(), errUsage, n, fs.NArg())
	}
	return fs.Args(), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResult(r app.Result) error {
	if !r.OK {
		if len(r.FieldErrors) != 0 {
			return &domain.ValidationError{Fields: r.FieldErrors}
		}
		return errors.New(r.Message)
	}
	if r.Item == nil {
		return nil
	}
	return printJSON(r.Item)
}

func login(ctx context.Context, _ context.CancelFunc, d *app.Dashboard, args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "admin email")
	password := fs.String("password", "", "password, defaults to "+passwordEnvName)
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}
	if *password == "" {
		*password = os.Getenv(passwordEnvName)
	}

	err := d.Auth().Login(ctx, domain.Credentials{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s\n", d.Session().AdminName())
	return nil
}

func logout(_ context.Context, _ context.CancelFunc, d *app.Dashboard, args []string) error {
	if _, err := parse(newFlagSet("logout"), args, 0); err != nil {
		return err
	}
	d.Auth().Logout()
	return nil
}

func whoami(ctx context.Context, _ context.CancelFunc, d *app.Dashboard, args []string) error {
	if _, err := parse(newFlagSet("whoami"), args, 0); err != nil {
		return err
	}
	admin, err := d.Auth().Profile(ctx)
	if err != nil {
		return err
	}
	return printJSON(admin)
}

func changePassword(ctx context.Context, _ context.CancelFunc, d *app.Dashboard, args []string) error {
	fs := newFlagSet("change-password")
	current := fs.String("current", "", "current password")
	next := fs.String("new", "", "new password")
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}
	if err := d.Auth().ChangePassword(ctx, *current, *next); err != nil {
		return err
	}
	fmt.Println("password changed")
	return nil
}

type listFlags struct {
	change domain.QueryChange
}

func bindListFlags(fs *pflag.FlagSet) func() listFlags {
	search := fs.String("search", "", "free text search")
	status := fs.String("status", "", "status filter")
	category := fs.String("category", "", "category id (products)")
	payment := fs.String("payment-status", "", "payment status (orders)")
	refund := fs.String("refund-status", "", "refund status (orders)")
	sortBy := fs.String("sort-by", "", "sort field (orders)")
	sortOrder := fs.String("sort-order", "", "asc or desc (orders)")
	page := fs.Int("page", 0, "page number")
	limit := fs.Int("limit", 0, "page size")

	return func() listFlags {
		var lf listFlags
		patch := &lf.change.Filters
		set := func(name string, dst **string, v string) {
			if fs.Changed(name) {
				*dst = domain.StringPtr(v)
			}
		}
		set("search", &patch.Search, *search)
		set("status", &patch.Status, *status)
		set("category", &patch.Category, *category)
		set("payment-status", &patch.PaymentStatus, *payment)
		set("refund-status", &patch.RefundStatus, *refund)
		set("sort-by", &patch.SortBy, *sortBy)
		set("sort-order", &patch.SortOrder, *sortOrder)
		lf.change.Page, lf.change.Limit = *page, *limit
		return lf
	}
}

// apply fetches the list once, with every setting changed, then the
// stats.
func (lf listFlags) apply(ctx context.Context, l app.List) {
	if !l.Navigate(ctx, lf.change) {
		l.Refresh(ctx)
	}
	l.RefreshStats(ctx)
}

func list(ctx context.Context, _ context.CancelFunc, d *app.Dashboard, args []string) error {
	fs := newFlagSet("list")
	flags := bindListFlags(fs)
	pos, err := parse(fs, args, 1)
	if err != nil {
		return err
	}
	l, err := d.List(domain.ResourceKind(pos[0]))
	if err != nil {
		return err
	}

	flags().apply(ctx, l)
	if err := printJSON(l.Snapshot()); err != nil {
		return err
	}
	if msg := l.LoadError(); msg != "" {
		return errors.New(msg)
	}
	return nil
}

// watch prints every list change. Each stdin line is a search keystroke
// burst; only the last term of a burst is fetched.
func watch(ctx context.Context, stop context.CancelFunc, d *app.Dashboard, args []string) error {
	fs := newFlagSet("watch")
	flags := bindListFlags(fs)
	pos, err := parse(fs, args, 1)
	if err != nil {
		return err
	}
	l, err := d.List(domain.ResourceKind(pos[0]))
	if err != nil {
		return err
	}

	unsubscribe := l.Subscribe(func(s any) { _ = printJSON(s) })
	defer unsubscribe()

	d.Run(stop)
	flags().apply(ctx, l)

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- strings.TrimSpace(sc.Text())
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case term, ok := <-lines:
			if !ok {
				l.FlushSearch(ctx)
				<-ctx.Done()
				return nil
			}
			l.SetSearch(term)
		}
	}
}

func stats(ctx context.Context, _ context.CancelFunc, d *app.Dashboard, args []string) error {
	pos, err := parse(newFlagSet("stats"), args, 1)
	if err != nil {
		return err
	}
	s, err := d.Stats(ctx, domain.ResourceKind(pos[0]))
	if err != nil {
		return err
	}
	return printJSON(s)
}

func options(ctx context.Context, _ context.CancelFunc, d *app.Dashboard, args []string) error {
	if _, err := parse(newFlagSet("options"), args, 0); err != nil {
		return err
	}
	refs, err := d.CategoryOptions(ctx)
	if err != nil {
		return err
	}
	return printJSON(refs)
}

func create(ctx context.Context, _ context.CancelFunc, d *app.Dashboard, args []string) error {
	fs := newFlagSet("create")
	file := fs.String("file", "", "JSON form payload")
	pos, err := parse(fs, args, 1)
	if err != nil {
		return err
	}
	ed, raw, err := editorAndPayload(d, pos[0], *file)
	if err != nil {
		return err
	}
	r, err := ed.Create(ctx, raw)
	if err != nil {
		return err
	}
	return printResult(r)
}

func update(ctx context.Context, _ context.CancelFunc, d *app.Dashboard, args []string) error {
	fs := newFlagSet("update")
	file := fs.String("file", "", "JSON form payload")
	pos, err := parse(fs, args, 2)
	if err != nil {
		return err
	}
	ed, raw, err := editorAndPayload(d, pos[0], *file)
	if err != nil {
		return err
	}
	r, err := ed.Update(ctx, pos[1], raw)
	if err != nil {
		return err
	}
	return printResult(r)
}

func editorAndPayload(d *app.Dashboard, kind, file string) (app.Editor, []byte, error) {
	if file == "" {
		return nil, nil, fmt.Errorf("%w: --file is required", errUsage)
	}
	ed, err := d.Editor(domain.ResourceKind(kind))
	if err != nil {
		return nil, nil, err
	}
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, nil, err
	}
	return ed, raw, nil
}

func remove(ctx context.Context, _ context.CancelFunc, d *app.Dashboard, args []string) error {
	pos, err := parse(newFlagSet("delete"), args, 2)
	if err != nil {
		return err
	}
	ed, err := d.Editor(domain.ResourceKind(pos[0]))
	if err != nil {
		return err
	}
	return printResult(ed.Remove(ctx, pos[1]))
}

func toggle(ctx context.Context, _ context.CancelFunc, d *app.Dashboard, args []string) error {
	pos, err := parse(newFlagSet("toggle"), args, 2)
	if err != nil {
		return err
	}
	ed, err := d.Editor(domain.ResourceKind(pos[0]))
	if err != nil {
		return err
	}
	return printResult(ed.ToggleActive(ctx, pos[1]))
}

func printOrderOutcome(o service.Outcome[domain.Order]) error {
	r := app.Result{OK: o.OK, FieldErrors: o.FieldErrors, Message: o.Message}
	if o.OK {
		r.Item = o.Item
	}
	return printResult(r)
}

func orderStatus(ctx context.Context, _ context.CancelFunc, d *app.Dashboard, args []string) error {
	pos, err := parse(newFlagSet("order-status"), args, 2)
	if err != nil {
		return err
	}
	return printOrderOutcome(d.Orders().UpdateStatus(ctx, pos[0], domain.OrderStatus(pos[1])))
}

func refundApprove(ctx context.Context, _ context.CancelFunc, d *app.Dashboard, args []string) error {
	fs := newFlagSet("refund-approve")
	notes := fs.String("notes", "", "admin notes")
	pos, err := parse(fs, args, 1)
	if err != nil {
		return err
	}
	return printOrderOutcome(d.Orders().ApproveRefund(ctx, pos[0], *notes))
}

func refundReject(ctx context.Context, _ context.CancelFunc, d *app.Dashboard, args []string) error {
	fs := newFlagSet("refund-reject")
	reason := fs.String("reason", "", "rejection reason")
	pos, err := parse(fs, args, 1)
	if err != nil {
		return err
	}
	return printOrderOutcome(d.Orders().RejectRefund(ctx, pos[0], *reason))
}

func upload(ctx context.Context, _ context.CancelFunc, d *app.Dashboard, args []string) error {
	fs := newFlagSet("upload")
	folder := fs.String("folder", "", "upload folder")
	pos, err := parse(fs, args, 1)
	if err != nil {
		return err
	}
	u, err := d.Upload(ctx, pos[0], *folder)
	if err != nil {
		return err
	}
	fmt.Println(u)
	return nil
}
