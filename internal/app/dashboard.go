package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/niksmo/ecom-admin/config"
	"github.com/niksmo/ecom-admin/internal/adapter/apiclient"
	"github.com/niksmo/ecom-admin/internal/adapter/cache"
	"github.com/niksmo/ecom-admin/internal/adapter/httphandler"
	"github.com/niksmo/ecom-admin/internal/adapter/kafka"
	"github.com/niksmo/ecom-admin/internal/adapter/metrics"
	"github.com/niksmo/ecom-admin/internal/adapter/notify"
	"github.com/niksmo/ecom-admin/internal/adapter/session"
	"github.com/niksmo/ecom-admin/internal/core/domain"
	"github.com/niksmo/ecom-admin/internal/core/port"
	"github.com/niksmo/ecom-admin/internal/core/service"
	"github.com/niksmo/ecom-admin/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
	"golang.org/x/sync/errgroup"
)

const toastsKept = 20

var ErrUnknownKind = errors.New("unknown resource kind")

type lists struct {
	products   *service.Controller[domain.Product]
	categories *service.Controller[domain.Category]
	banners    *service.Controller[domain.Banner]
	orders     *service.Controller[domain.Order]
	admins     *service.Controller[domain.Admin]
}

type editors struct {
	products   *service.Mutations[domain.Product, domain.ProductInput]
	categories *service.Mutations[domain.Category, domain.CategoryInput]
	banners    *service.Mutations[domain.Banner, domain.BannerInput]
	orders     *service.OrderActions
	admins     *service.Mutations[domain.Admin, domain.AdminInput]
}

// Dashboard wires the admin dashboard: session, API client, one list and
// one mutation flow per resource kind, and the optional side adapters.
type Dashboard struct {
	ctx context.Context
	cfg config.Config

	session *service.Session
	auth    *service.Auth
	client  *apiclient.Client
	toasts  *notify.Toasts
	metrics *metrics.ListMetrics

	categoryOptions port.CategoryOptionsLister
	categoryCache   *cache.CategoryOptionsCache
	producer        *kafka.ActivityProducer

	stats   map[domain.ResourceKind]port.StatsFetcher
	lists   lists
	editors editors

	httpServer *httphandler.HTTPServer
}

func NewDashboard(ctx context.Context, cfg config.Config) *Dashboard {
	d := &Dashboard{ctx: ctx, cfg: cfg}

	initLogger(cfg.LogLevel)
	d.initSession()
	d.initAPIClient()
	d.initSideAdapters()
	d.initLists()
	d.initEditors()
	d.initHTTPServer()

	return d
}

func (d *Dashboard) initSession() {
	const op = "Dashboard.initSession"

	vault := session.NewKeyringVault(
		d.cfg.Session.KeyringService, d.cfg.Session.KeyringUser,
	)
	s, err := service.NewSession(service.VaultOpt(vault))
	if err != nil {
		fallDown(op, err)
	}
	if err := s.Restore(); err != nil {
		slog.Warn("failed to restore session", "op", op, "err", err)
	}
	d.session = s
}

func (d *Dashboard) initAPIClient() {
	const op = "Dashboard.initAPIClient"

	opts := []apiclient.Opt{apiclient.TimeoutOpt(d.cfg.API.Timeout)}
	tlsCfg, err := tlsConfig(d.cfg.API.CAFile, "", "")
	if err != nil {
		fallDown(op, err)
	}
	if tlsCfg != nil {
		opts = append(opts, apiclient.TLSConfigOpt(tlsCfg))
	}

	client, err := apiclient.New(d.cfg.API.BaseURL, d.session, opts...)
	if err != nil {
		fallDown(op, err)
	}
	d.client = client
	d.auth = service.NewAuth(d.session, client)
}

func (d *Dashboard) initSideAdapters() {
	const op = "Dashboard.initSideAdapters"

	d.toasts = notify.New(slog.Default().With("op", "Dashboard"), toastsKept)
	d.metrics = metrics.NewListMetrics()

	d.categoryOptions = d.client
	if addr := d.cfg.Cache.RedisAddr; addr != "" {
		rc, err := cache.NewRedisClient(d.ctx, addr, d.cfg.Cache.RedisDB)
		if err != nil {
			slog.Warn("category options cache is disabled", "op", op, "err", err)
		} else {
			d.categoryCache = cache.NewCategoryOptionsCache(
				rc, d.client, d.cfg.Cache.CategoryTTL,
			)
			d.categoryOptions = d.categoryCache
		}
	}

	if d.cfg.ActivityEnabled() {
		p, err := d.newActivityProducer()
		if err != nil {
			fallDown(op, err)
		}
		d.producer = &p
	}
}

func (d *Dashboard) newActivityProducer() (kafka.ActivityProducer, error) {
	broker := d.cfg.Broker
	topic := broker.Topics.AdminActivity

	srClient, err := sr.NewClient(sr.URLs(broker.SchemaRegistryURLs...))
	if err != nil {
		return kafka.ActivityProducer{}, err
	}
	serde, err := schema.NewSerdeAdminActivityV1(
		d.ctx,
		schema.SubjectOpt(topic+"-value"),
		schema.SchemaIdentifierOpt(schema.NewRegistry(srClient)),
	)
	if err != nil {
		return kafka.ActivityProducer{}, err
	}

	tlsCfg, err := tlsConfig(broker.TLS.CAFile, broker.TLS.CertFile, broker.TLS.KeyFile)
	if err != nil {
		return kafka.ActivityProducer{}, err
	}
	return kafka.NewActivityProducer(
		kafka.ProducerClientOpt(d.ctx, broker.SeedBrokers, topic, tlsCfg),
		kafka.ProducerEncoderOpt(serde),
	)
}

func (d *Dashboard) initLists() {
	const op = "Dashboard.initLists"

	products, categories, banners := d.client.Products(), d.client.Categories(), d.client.Banners()
	admins := d.client.Admins()
	d.stats = map[domain.ResourceKind]port.StatsFetcher{
		domain.ResourceProduct:  products,
		domain.ResourceCategory: categories,
		domain.ResourceBanner:   banners,
		domain.ResourceAdmin:    admins,
	}

	var err error
	d.lists.products, err = newController[domain.Product](
		d, domain.ResourceProduct, products, service.StatsOpt(products),
	)
	if err != nil {
		fallDown(op, err)
	}
	d.lists.categories, err = newController[domain.Category](
		d, domain.ResourceCategory, categories, service.StatsOpt(categories),
	)
	if err != nil {
		fallDown(op, err)
	}
	d.lists.banners, err = newController[domain.Banner](
		d, domain.ResourceBanner, banners, service.StatsOpt(banners),
	)
	if err != nil {
		fallDown(op, err)
	}
	d.lists.orders, err = newController[domain.Order](
		d, domain.ResourceOrder, d.client.Orders(),
	)
	if err != nil {
		fallDown(op, err)
	}
	d.lists.admins, err = newController[domain.Admin](
		d, domain.ResourceAdmin, admins, service.StatsOpt(admins),
	)
	if err != nil {
		fallDown(op, err)
	}
}

func newController[T domain.Entity](
	d *Dashboard,
	kind domain.ResourceKind,
	lister port.ResourceLister[T],
	opts ...service.ControllerOpt,
) (*service.Controller[T], error) {
	store := service.NewStore[T](kind, domain.NewQuery(d.cfg.List.DefaultLimit))
	opts = append(opts,
		service.MetricsOpt(d.metrics),
		service.DebounceOpt(d.cfg.List.Debounce),
		service.MaxLimitOpt(d.cfg.List.MaxLimit),
	)
	return service.NewController(d.ctx, store, lister, opts...)
}

func (d *Dashboard) mutationOpts(extra ...service.MutationOpt) []service.MutationOpt {
	opts := []service.MutationOpt{service.ActorOpt(d.session.AdminName)}
	if d.producer != nil {
		opts = append(opts, service.PublisherOpt(d.producer))
	}
	return append(opts, extra...)
}

func (d *Dashboard) initEditors() {
	const op = "Dashboard.initEditors"

	v := service.NewValidator()
	var err error

	d.editors.products, err = service.NewMutations(
		domain.ResourceProduct, "Product",
		d.lists.products.Store(), d.client.Products(), v.Product,
		d.lists.products, d.toasts, d.mutationOpts()...,
	)
	if err != nil {
		fallDown(op, err)
	}

	var categoryOpts []service.MutationOpt
	if d.categoryCache != nil {
		categoryOpts = append(categoryOpts,
			service.AfterMutationOpt(d.categoryCache.InvalidateCategoryOptions),
		)
	}
	d.editors.categories, err = service.NewMutations(
		domain.ResourceCategory, "Category",
		d.lists.categories.Store(), d.client.Categories(), v.Category,
		d.lists.categories, d.toasts, d.mutationOpts(categoryOpts...)...,
	)
	if err != nil {
		fallDown(op, err)
	}

	d.editors.banners, err = service.NewMutations(
		domain.ResourceBanner, "Banner",
		d.lists.banners.Store(), d.client.Banners(), v.Banner,
		d.lists.banners, d.toasts, d.mutationOpts()...,
	)
	if err != nil {
		fallDown(op, err)
	}

	d.editors.admins, err = service.NewMutations(
		domain.ResourceAdmin, "Admin",
		d.lists.admins.Store(), d.client.Admins(), v.Admin,
		d.lists.admins, d.toasts, d.mutationOpts()...,
	)
	if err != nil {
		fallDown(op, err)
	}

	d.editors.orders, err = service.NewOrderActions(
		d.lists.orders.Store(), d.client.Orders(), v,
		d.lists.orders, d.toasts, d.mutationOpts()...,
	)
	if err != nil {
		fallDown(op, err)
	}
}

func (d *Dashboard) initHTTPServer() {
	if d.cfg.MetricsAddr == "" {
		return
	}
	mux := httphandler.NewMux(d.metrics.Handler())
	httphandler.RegisterList(mux, d.lists.products.Store())
	httphandler.RegisterList(mux, d.lists.categories.Store())
	httphandler.RegisterList(mux, d.lists.banners.Store())
	httphandler.RegisterList(mux, d.lists.orders.Store())
	httphandler.RegisterList(mux, d.lists.admins.Store())
	httphandler.RegisterToasts(mux, d.toasts)

	s := httphandler.NewHTTPServer(d.cfg.MetricsAddr, mux)
	d.httpServer = &s
}

func (d *Dashboard) Auth() *service.Auth {
	return d.auth
}

func (d *Dashboard) Session() *service.Session {
	return d.session
}

func (d *Dashboard) Toasts() *notify.Toasts {
	return d.toasts
}

// OnAuthFailure registers the redirect to the sign-in flow.
func (d *Dashboard) OnAuthFailure(fn func()) {
	d.session.OnAuthFailure(fn)
}

func (d *Dashboard) List(kind domain.ResourceKind) (List, error) {
	switch kind {
	case domain.ResourceProduct:
		return newList(kind, d.lists.products), nil
	case domain.ResourceCategory:
		return newList(kind, d.lists.categories), nil
	case domain.ResourceBanner:
		return newList(kind, d.lists.banners), nil
	case domain.ResourceOrder:
		return newList(kind, d.lists.orders), nil
	case domain.ResourceAdmin:
		return newList(kind, d.lists.admins), nil
	}
	return List{}, fmt.Errorf("%q: %w", kind, ErrUnknownKind)
}

// Editor returns the form flow of kind. Orders have none, see Orders.
func (d *Dashboard) Editor(kind domain.ResourceKind) (Editor, error) {
	switch kind {
	case domain.ResourceProduct:
		return newEditor(d.editors.products, d.lists.products.Store(), prepareProduct), nil
	case domain.ResourceCategory:
		return newEditor(d.editors.categories, d.lists.categories.Store(), prepareCategory), nil
	case domain.ResourceBanner:
		return newEditor(d.editors.banners, d.lists.banners.Store(), nil), nil
	case domain.ResourceAdmin:
		return newEditor(d.editors.admins, d.lists.admins.Store(), prepareAdmin), nil
	}
	return nil, fmt.Errorf("%q: %w", kind, ErrUnknownKind)
}

func (d *Dashboard) Orders() *service.OrderActions {
	return d.editors.orders
}

func (d *Dashboard) Stats(ctx context.Context, kind domain.ResourceKind) (domain.Stats, error) {
	f, ok := d.stats[kind]
	if !ok {
		return domain.Stats{}, fmt.Errorf("%q: %w", kind, ErrUnknownKind)
	}
	return f.Stats(ctx)
}

// CategoryOptions lists the options of the product category filter.
func (d *Dashboard) CategoryOptions(ctx context.Context) ([]domain.CategoryRef, error) {
	return d.categoryOptions.ActiveCategories(ctx)
}

func (d *Dashboard) Upload(ctx context.Context, path, folder string) (string, error) {
	const op = "Dashboard.Upload"

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	u, err := d.client.UploadImage(ctx, path, f, folder)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// Bootstrap loads every list with its stats and the category options
// concurrently, the way the dashboard pages mount. List failures land on
// their own stores; only the category options error is returned. The
// admin list is loaded for superadmins only.
func (d *Dashboard) Bootstrap(ctx context.Context) error {
	lists := d.controllers()
	if !d.session.State().Admin.IsSuperAdmin() {
		lists = lists[:len(lists)-1]
	}

	var g errgroup.Group
	for _, c := range lists {
		g.Go(func() error {
			c.Load(ctx)
			return nil
		})
	}
	g.Go(func() error {
		_, err := d.categoryOptions.ActiveCategories(ctx)
		return err
	})
	return g.Wait()
}

// controllers lists every list controller, admins last.
func (d *Dashboard) controllers() []ListController {
	return []ListController{
		d.lists.products, d.lists.categories, d.lists.banners,
		d.lists.orders, d.lists.admins,
	}
}

func (d *Dashboard) Run(stopFn context.CancelFunc) {
	if d.httpServer != nil {
		go d.httpServer.Run(stopFn)
		slog.Info("status server is running", "addr", d.httpServer.Addr())
	}
	slog.Info("dashboard is running")
}

func (d *Dashboard) Close(ctx context.Context) {
	slog.Info("dashboard is closing...")

	if d.httpServer != nil {
		d.httpServer.Close(ctx)
	}
	for _, c := range d.controllers() {
		c.Close()
	}
	if d.producer != nil {
		d.producer.Close()
	}
	if d.categoryCache != nil {
		d.categoryCache.Close()
	}

	slog.Info("dashboard is closed")
}
