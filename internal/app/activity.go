package app

import (
	"context"
	"log/slog"

	"github.com/niksmo/ecom-admin/config"
	"github.com/niksmo/ecom-admin/internal/adapter/httphandler"
	"github.com/niksmo/ecom-admin/internal/adapter/kafka"
	"github.com/niksmo/ecom-admin/internal/adapter/storage"
	"github.com/niksmo/ecom-admin/internal/core/service"
	"github.com/niksmo/ecom-admin/pkg/schema"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/twmb/franz-go/pkg/sr"
)

const defaultActivityAddr = ":9091"

// Activity runs the admin activity pipeline: the consumer saving events
// to the database, the per-resource counter and its status endpoints.
type Activity struct {
	ctx context.Context
	cfg config.Config

	sqldb      storage.SQLDB
	repository storage.ActivityRepository
	serde      schema.Serde
	service    service.ActivityService
	consumer   kafka.ActivityConsumer
	view       kafka.ActivityCountsView
	httpServer httphandler.HTTPServer
}

func NewActivity(ctx context.Context, cfg config.Config) *Activity {
	a := &Activity{ctx: ctx, cfg: cfg}

	initLogger(cfg.LogLevel)
	a.initSerde()
	a.initStorage()
	a.initCoreService()
	a.initConsumer()
	a.initHTTPServer()

	return a
}

func (a *Activity) initSerde() {
	const op = "Activity.initSerde"

	srClient, err := sr.NewClient(sr.URLs(a.cfg.Broker.SchemaRegistryURLs...))
	if err != nil {
		fallDown(op, err)
	}

	subject := a.cfg.Broker.Topics.AdminActivity + "-value"
	serde, err := schema.NewSerdeAdminActivityV1(
		a.ctx,
		schema.SubjectOpt(subject),
		schema.SchemaIdentifierOpt(schema.NewRegistry(srClient)),
	)
	if err != nil {
		fallDown(op, err)
	}
	a.serde = serde
}

func (a *Activity) initStorage() {
	const op = "Activity.initStorage"

	db, err := storage.NewSQLDB(a.ctx, a.cfg.SQLDB)
	if err != nil {
		fallDown(op, err)
	}
	a.sqldb = db
	a.repository = storage.NewActivityRepository(db)
}

func (a *Activity) initCoreService() {
	const op = "Activity.initCoreService"

	broker := a.cfg.Broker
	counterProc, err := kafka.NewActivityCounterProc(
		broker.SeedBrokers,
		broker.Topics.AdminActivity,
		broker.Consumers.ActivityCounterGroup,
		a.serde,
	)
	if err != nil {
		fallDown(op, err)
	}
	a.service = service.NewActivityService(a.repository, counterProc)

	view, err := kafka.NewActivityCountsView(
		broker.SeedBrokers, broker.Consumers.ActivityCounterGroup,
	)
	if err != nil {
		fallDown(op, err)
	}
	a.view = view
}

func (a *Activity) initConsumer() {
	const op = "Activity.initConsumer"

	broker := a.cfg.Broker
	tlsCfg, err := tlsConfig(broker.TLS.CAFile, broker.TLS.CertFile, broker.TLS.KeyFile)
	if err != nil {
		fallDown(op, err)
	}

	consumer, err := kafka.NewActivityConsumer(
		kafka.ConsumerClientOpt(
			broker.SeedBrokers,
			broker.Topics.AdminActivity,
			broker.Consumers.ActivitySaverGroup,
			tlsCfg,
		),
		kafka.ConsumerDecoderOpt(a.serde),
		kafka.ActivityConsumerSaverOpt(a.service),
	)
	if err != nil {
		fallDown(op, err)
	}
	a.consumer = consumer
}

func (a *Activity) initHTTPServer() {
	mux := httphandler.NewMux(promhttp.Handler())
	httphandler.RegisterActivityCounts(mux, a.view)
	httphandler.RegisterActivityLog(mux, a.repository, storage.ErrNotFound)

	addr := a.cfg.MetricsAddr
	if addr == "" {
		addr = defaultActivityAddr
	}
	a.httpServer = httphandler.NewHTTPServer(addr, mux)
}

func (a *Activity) Run(stopFn context.CancelFunc) {
	a.service.Run(a.ctx, stopFn)
	go a.view.Run(a.ctx)
	go a.consumer.Run(a.ctx)
	go a.httpServer.Run(stopFn)

	slog.Info("activity pipeline is running", "addr", a.httpServer.Addr())
}

func (a *Activity) Close(ctx context.Context) {
	slog.Info("activity pipeline is closing...")

	a.httpServer.Close(ctx)
	a.consumer.Close()
	a.service.Close()
	a.sqldb.Close()

	slog.Info("activity pipeline is closed")
}
