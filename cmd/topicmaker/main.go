package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lovoo/goka"
	"github.com/niksmo/ecom-admin/config"
	"github.com/niksmo/ecom-admin/internal/adapter"
	"github.com/niksmo/ecom-admin/pkg/sigctx"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	partitions        = 3
	replicationFactor = 3
	activityRetention = "2592000000" // 30 days
	deletePolicy      = "delete"
	compactPolicy     = "compact"
)

func main() {
	sigCtx, stop := sigctx.NotifyContext(context.Background())
	defer stop()

	cfg := config.Load()

	cl, err := createClient(cfg)
	if err != nil {
		printFail(err)
		return
	}
	defer cl.Close()

	activityTopic := cfg.Broker.Topics.AdminActivity
	countsTable := toGroupTable(cfg.Broker.Consumers.ActivityCounterGroup)

	printStart(activityTopic, countsTable)
	defer printComplete(time.Now())

	err = makeTopics(
		sigCtx, cl,
		map[string]*string{
			"cleanup.policy": kadm.StringPtr(deletePolicy),
			"retention.ms":   kadm.StringPtr(activityRetention),
		},
		activityTopic,
	)
	if err != nil {
		printFail(err)
		return
	}

	// the counter processor keeps its state here
	err = makeTopics(
		sigCtx, cl,
		map[string]*string{"cleanup.policy": kadm.StringPtr(compactPolicy)},
		countsTable,
	)
	if err != nil {
		printFail(err)
		return
	}
}

func createClient(cfg config.Config) (*kadm.Client, error) {
	opts := []kgo.Opt{kgo.SeedBrokers(cfg.Broker.SeedBrokers...)}

	if tls := cfg.Broker.TLS; tls.CAFile != "" {
		tlsConfig, err := adapter.MakeTLSConfig(tls.CAFile, tls.CertFile, tls.KeyFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, kgo.DialTLSConfig(tlsConfig))
	}
	return kadm.NewOptClient(opts...)
}

func makeTopics(
	ctx context.Context,
	cl *kadm.Client,
	topicConfig map[string]*string,
	topics ...string,
) error {
	topicConfig["min.insync.replicas"] = kadm.StringPtr("1")

	responses, err := cl.CreateTopics(
		ctx, partitions, replicationFactor, topicConfig, topics...,
	)
	if err != nil {
		return err
	}

	var errs []error
	for _, res := range responses.Sorted() {
		if res.Err != nil {
			if errors.Is(res.Err, kerr.TopicAlreadyExists) {
				fmt.Printf("topic: %q already exists\n", res.Topic)
			} else {
				errs = append(errs, fmt.Errorf("%s: %w", res.Topic, res.Err))
			}
			continue
		}
		fmt.Printf("topic: %q successfully created\n", res.Topic)
	}
	return errors.Join(errs...)
}

func printStart(topics ...string) {
	fmt.Println("initializing topics...")
	for _, t := range topics {
		fmt.Printf("\t- %q\n", t)
	}
	fmt.Println()
}

func printComplete(start time.Time) {
	fmt.Printf("\ncomplete in %s\n", time.Since(start))
}

func printFail(err error) {
	fmt.Printf("failed to create topics: \n%s\n", err)
}

func toGroupTable(group string) string {
	return string(goka.GroupTable(goka.Group(group)))
}
