package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/niksmo/ecom-admin/internal/core/domain"
	"github.com/niksmo/ecom-admin/internal/core/port"
	"github.com/niksmo/ecom-admin/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

const slowDownDelay = time.Second

type ConsumerOpt func(*consumerOpts) error

func ConsumerClientOpt(
	seedBrokers []string, topic, group string, tlsConfig *tls.Config,
) ConsumerOpt {
	return func(co *consumerOpts) error {
		kopts := []kgo.Opt{
			kgo.SeedBrokers(seedBrokers...),
			kgo.ConsumeTopics(topic),
			kgo.ConsumerGroup(group),
			kgo.DisableAutoCommit(),
		}
		if tlsConfig != nil {
			kopts = append(kopts, kgo.DialTLSConfig(tlsConfig))
		}
		cl, err := kgo.NewClient(kopts...)
		if err != nil {
			return err
		}
		co.cl = cl
		return nil
	}
}

// ConsumerWithClientOpt uses an already built client.
func ConsumerWithClientOpt(cl ConsumerClient) ConsumerOpt {
	return func(co *consumerOpts) error {
		if cl == nil {
			return errors.New("consumer client is nil")
		}
		co.cl = cl
		return nil
	}
}

func ConsumerDecoderOpt(decoder Decoder) ConsumerOpt {
	return func(co *consumerOpts) error {
		if decoder == nil {
			return errors.New("decoder is nil")
		}
		co.decoder = decoder
		return nil
	}
}

func ActivityConsumerSaverOpt(s port.ActivitySaver) ConsumerOpt {
	return func(co *consumerOpts) error {
		if s == nil {
			return errors.New("activity saver is nil")
		}
		co.activitySaver = s
		return nil
	}
}

type consumerOpts struct {
	cl            ConsumerClient
	decoder       Decoder
	activitySaver port.ActivitySaver
}

func (co *consumerOpts) apply(opts ...ConsumerOpt) error {
	for _, opt := range opts {
		if err := opt(co); err != nil {
			return err
		}
	}
	if co.cl == nil || co.decoder == nil || co.activitySaver == nil {
		return ErrTooFewOpts
	}
	return nil
}

type consumerParent interface {
	processFetches(context.Context, kgo.Fetches) error
}

// A consumer is used for composition.
//
// Fetching records from kafka broker, committing them after the parent
// processed the batch and closing underlying [kgo.Client].
type consumer struct {
	opPrefix string
	parent   consumerParent
	cl       ConsumerClient
	delay    time.Duration
}

func (c consumer) run(ctx context.Context) {
	const op = "run"
	log := slog.With("op", makeOp(c.opPrefix, op))

	log.Info("running")

	for {
		select {
		case <-ctx.Done():
			return
		default:
			err := c.consume(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					continue
				}
				log.Error("failed to consume", "err", err)
				c.slowDown(ctx)
			}
		}
	}
}

func (c consumer) consume(ctx context.Context) error {
	const op = "consume"

	fetches, err := c.pollFetches(ctx)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}

	if fetches.Empty() {
		return nil
	}

	err = c.parent.processFetches(ctx, fetches)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}

	err = c.commit(ctx)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}
	return nil
}

func (c consumer) pollFetches(ctx context.Context) (kgo.Fetches, error) {
	const op = "pollFetches"

	fetches := c.cl.PollFetches(ctx)
	if err := fetches.Err0(); err != nil {
		return nil, opErr(err, c.opPrefix, op)
	}

	err := c.handleFetchesErrs(fetches)
	if err != nil {
		return nil, opErr(err, c.opPrefix, op)
	}

	return fetches, nil
}

func (c consumer) handleFetchesErrs(fetches kgo.Fetches) error {
	var errsMessages []string
	fetches.EachError(func(t string, p int32, err error) {
		if err != nil {
			errMsg := fmt.Sprintf(
				"topic %q partition %d: %q", t, p, err,
			)
			errsMessages = append(errsMessages, errMsg)
		}
	})

	if len(errsMessages) != 0 {
		return errors.New(strings.Join(errsMessages, "; "))
	}
	return nil
}

func (c consumer) slowDown(ctx context.Context) {
	t := time.NewTimer(c.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (c consumer) commit(ctx context.Context) error {
	const op = "commit"

	err := ctx.Err()
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}

	err = c.cl.CommitUncommittedOffsets(ctx)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}
	return nil
}

func (c consumer) close() {
	const op = "close"
	log := slog.With("op", makeOp(c.opPrefix, op))

	log.Info("closing consumer...")
	c.cl.Close()
	log.Info("consumer is closed")
}

// An ActivityConsumer consumes the admin activity stream
// then sends batches to the core service for save.
type ActivityConsumer struct {
	opPrefix string
	consumer consumer
	saver    port.ActivitySaver
	decoder  Decoder
}

func NewActivityConsumer(opts ...ConsumerOpt) (ac ActivityConsumer, err error) {
	const op = "NewActivityConsumer"

	var options consumerOpts
	if err := options.apply(opts...); err != nil {
		return ac, opErr(err, op)
	}

	opPrefix := "ActivityConsumer"

	ac.opPrefix = opPrefix
	ac.saver = options.activitySaver
	ac.decoder = options.decoder

	ac.consumer = consumer{
		opPrefix: opPrefix,
		parent:   ac,
		cl:       options.cl,
		delay:    slowDownDelay,
	}

	return ac, nil
}

func (c ActivityConsumer) Run(ctx context.Context) {
	c.consumer.run(ctx)
}

func (c ActivityConsumer) Close() {
	c.consumer.close()
}

func (c ActivityConsumer) processFetches(
	ctx context.Context, fetches kgo.Fetches,
) error {
	const op = "processFetches"

	values := c.toDomain(fetches)
	if len(values) == 0 {
		return nil
	}

	err := c.saver.SaveActivity(ctx, values)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}
	return nil
}

// toDomain skips records that fail to decode; they are logged and
// committed with the rest of the batch.
func (c ActivityConsumer) toDomain(
	fetches kgo.Fetches,
) (vs []domain.Activity) {
	const op = "toDomain"
	log := slog.With("op", makeOp(c.opPrefix, op))

	fetches.EachRecord(func(r *kgo.Record) {
		v, err := c.decodeRecValue(r)
		if err != nil {
			log.Error(
				"failed to decode value",
				"err", opErr(err, c.opPrefix, op),
				"offset", r.Offset,
			)
			return
		}
		vs = append(vs, v)
	})
	return vs
}

func (c ActivityConsumer) decodeRecValue(
	r *kgo.Record,
) (domain.Activity, error) {
	var s schema.AdminActivityV1
	err := c.decoder.Decode(r.Value, &s)
	if err != nil {
		return domain.Activity{}, err
	}
	return schemaV1ToActivity(s), nil
}
