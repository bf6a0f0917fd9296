// Package consumer connects the work queue to the ingestion pipeline.
package consumer

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/atende-ai/atende/internal/ingestion_service/service"
	"github.com/atende-ai/atende/internal/queue"
	"github.com/atende-ai/atende/pkg/logger"
)

// Consumer runs a pool of workers that pull processing messages off the
// queue and feed them to the Processor.
type Consumer struct {
	queue       queue.Queue
	processor   *service.Processor
	concurrency int
	log         *logger.Logger
}

// NewConsumer creates a Consumer with the given worker count.
func NewConsumer(q queue.Queue, p *service.Processor, concurrency int, log *logger.Logger) *Consumer {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Consumer{queue: q, processor: p, concurrency: concurrency, log: log}
}

// Run blocks until the context is cancelled or a worker returns a transport
// error. Processing failures are recorded on the document and do not stop
// the workers.
func (c *Consumer) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < c.concurrency; i++ {
		g.Go(func() error {
			return c.queue.Consume(gctx, func(mctx context.Context, msg queue.Message) error {
				return c.processor.Process(mctx, msg.DocumentID)
			})
		})
	}
	c.log.Info("Ingestion workers started")
	return g.Wait()
}
