package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/lovoo/goka"
	"github.com/niksmo/ecom-admin/internal/core/domain"
	"github.com/niksmo/ecom-admin/internal/core/port"
	"github.com/niksmo/ecom-admin/pkg/schema"
)

var _ port.ActivityCounterProcessor = (*ActivityCounterProcessor)(nil)

// A processor is used for composition.
//
// Running and closing the underlying [goka.Processor]
type processor struct {
	opPrefix string
	gp       *goka.Processor
}

func (p *processor) run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	const op = "run"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer wg.Done()

	go p.runProc(ctx, stopFn)

	log.Info("preparing...")
	p.waitForReady(ctx)
	log.Info("running")
}

func (p *processor) runProc(ctx context.Context, stopFn context.CancelFunc) {
	const op = "runProc"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer stopFn()

	err := p.gp.Run(ctx)
	if err != nil {
		log.Error("stopped", "err", err)
		return
	}
	log.Info("stopped")
}

func (p *processor) waitForReady(ctx context.Context) {
	const op = "waitForReady"
	log := slog.With("op", makeOp(p.opPrefix, op))

	err := p.gp.WaitForReadyContext(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error("fall down while preparing", "err", err)
	}
}

func (p *processor) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))

	log.Info("closing processor...")
	p.gp.Stop()
	log.Info("processor is closed")
}

// An activityEventCodec used for serde [schema.AdminActivityV1]
type activityEventCodec struct {
	serde Serde
}

func (c activityEventCodec) Encode(v any) ([]byte, error) {
	const op = "activityEventCodec.Encode"
	if _, ok := v.(schema.AdminActivityV1); !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return c.serde.Encode(v)
}

func (c activityEventCodec) Decode(data []byte) (any, error) {
	const op = "activityEventCodec.Decode"
	var s schema.AdminActivityV1
	err := c.serde.Decode(data, &s)
	if err != nil {
		return nil, opErr(err, op)
	}
	return s, nil
}

// countsValue is the group table value: the tally of one resource kind.
type countsValue struct {
	Total    int64            `json:"total"`
	ByAction map[string]int64 `json:"byAction"`
}

func (v countsValue) toDomain() domain.ActivityCounts {
	out := domain.ActivityCounts{
		Total:    v.Total,
		ByAction: make(map[domain.Action]int64, len(v.ByAction)),
	}
	for a, n := range v.ByAction {
		out.ByAction[domain.Action(a)] = n
	}
	return out
}

// A countsCodec used for serde [countsValue]
type countsCodec struct{}

func (countsCodec) Encode(v any) ([]byte, error) {
	const op = "countsCodec.Encode"
	cv, ok := v.(countsValue)
	if !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return json.Marshal(cv)
}

func (countsCodec) Decode(data []byte) (any, error) {
	const op = "countsCodec.Decode"
	var cv countsValue
	if err := json.Unmarshal(data, &cv); err != nil {
		return nil, opErr(err, op)
	}
	return cv, nil
}

// An ActivityCounterProcessor counts activity events per resource kind
// into a group table.
type ActivityCounterProcessor struct {
	opPrefix string
	proc     processor
}

func NewActivityCounterProc(
	seedBrokers []string,
	inputStream string,
	group string,
	activitySerde Serde,
) (*ActivityCounterProcessor, error) {
	const op = "NewActivityCounterProc"

	p := &ActivityCounterProcessor{opPrefix: "ActivityCounterProcessor"}

	gg := goka.DefineGroup(goka.Group(group),
		goka.Input(
			goka.Stream(inputStream),
			activityEventCodec{activitySerde},
			p.processFn,
		),
		goka.Persist(countsCodec{}),
	)

	gp, err := goka.NewProcessor(seedBrokers, gg, withNonlogProcOpt())
	if err != nil {
		return nil, opErr(err, op)
	}

	p.proc = processor{opPrefix: p.opPrefix, gp: gp}
	return p, nil
}

func (p *ActivityCounterProcessor) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	p.proc.run(ctx, stopFn, wg)
}

func (p *ActivityCounterProcessor) Close() {
	p.proc.close()
}

func (p *ActivityCounterProcessor) processFn(ctx goka.Context, msg any) {
	const op = "processFn"

	event, ok := msg.(schema.AdminActivityV1)
	if !ok {
		return
	}

	cur, _ := ctx.Value().(countsValue)
	next := countActivity(cur, event)
	ctx.SetValue(next)

	slog.Debug("activity counted",
		"op", makeOp(p.opPrefix, op),
		"resource", event.Resource,
		"action", event.Action,
		"total", next.Total,
	)
}

func countActivity(cur countsValue, event schema.AdminActivityV1) countsValue {
	next := countsValue{
		Total:    cur.Total + 1,
		ByAction: make(map[string]int64, len(cur.ByAction)+1),
	}
	for a, n := range cur.ByAction {
		next.ByAction[a] = n
	}
	next.ByAction[event.Action]++
	return next
}
