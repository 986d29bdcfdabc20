package kafka

import (
	"context"
	"log/slog"

	"github.com/niksmo/ecom-admin/internal/core/domain"
	"github.com/niksmo/ecom-admin/internal/core/port"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.ActivityPublisher = ActivityProducer{}

// A producer is used for composition.
//
// Producing records to kafka broker and closing underlying [kgo.Client].
type producer struct {
	opPrefix string
	cl       ProducerClient
}

func (p producer) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

func (p producer) produce(
	ctx context.Context, rs ...*kgo.Record,
) error {
	const op = "produce"
	res := p.cl.ProduceSync(ctx, rs...)
	if err := res.FirstErr(); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

// An ActivityProducer publishes [domain.Activity] keyed by resource kind,
// so the events of one kind stay ordered within a partition.
type ActivityProducer struct {
	producer producer
	encoder  Encoder
	opPrefix string
}

func NewActivityProducer(
	opts ...ProducerOpt,
) (ActivityProducer, error) {
	const op = "NewActivityProducer"

	if len(opts) != 2 {
		panic(opErr(ErrTooFewOpts, op)) // develop mistake
	}

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return ActivityProducer{}, opErr(err, op)
		}
	}

	opPrefix := "ActivityProducer"
	return ActivityProducer{
		producer: producer{opPrefix: opPrefix, cl: options.cl},
		encoder:  options.encoder,
		opPrefix: opPrefix,
	}, nil
}

func (p ActivityProducer) Close() {
	p.producer.close()
}

func (p ActivityProducer) Publish(ctx context.Context, v domain.Activity) error {
	const op = "Publish"

	if err := ctx.Err(); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	r, err := p.createRecord(v)
	if err != nil {
		return opErr(err, p.opPrefix, op)
	}

	if err := p.producer.produce(ctx, r); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

func (p ActivityProducer) createRecord(v domain.Activity) (*kgo.Record, error) {
	const op = "createRecord"

	s := activityToSchemaV1(v)
	b, err := p.encoder.Encode(s)
	if err != nil {
		return nil, opErr(err, p.opPrefix, op)
	}
	return &kgo.Record{
		Key:       []byte(s.Resource),
		Value:     b,
		Timestamp: s.OccurredAt,
		Headers:   []kgo.RecordHeader{{Key: "event_id", Value: []byte(s.EventID)}},
	}, nil
}
