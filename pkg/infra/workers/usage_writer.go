package workers

import (
	"context"
	"log/slog"

	ledger_entities "github.com/nexuspay/nexuspay/pkg/domain/ledger/entities"
	ledger_in "github.com/nexuspay/nexuspay/pkg/domain/ledger/ports/in"
	"github.com/nexuspay/nexuspay/pkg/infra/metrics"
)

// usageQueueCapacity bounds how many APIKeyUsage rows can be buffered before
// the writer starts dropping the oldest one to make room for the newest
// (§4.1): usage accounting is best-effort, never worth blocking a request on.
const usageQueueCapacity = 2048

// UsageWriter is the single consumer of APIKeyUsage rows queued by
// RequireAPIKey. Enqueue never blocks: a full queue drops its oldest entry
// and records the drop in APIKeyUsageQueueDropped.
type UsageWriter struct {
	ledger ledger_in.Recorder
	queue  chan *ledger_entities.APIKeyUsage
}

func NewUsageWriter(ledger ledger_in.Recorder) *UsageWriter {
	return &UsageWriter{
		ledger: ledger,
		queue:  make(chan *ledger_entities.APIKeyUsage, usageQueueCapacity),
	}
}

// Enqueue is safe to call from any goroutine. On a full queue it drops the
// oldest queued row rather than the newest, since the newest carries the
// freshest lastUsedAt/usageCount signal.
func (w *UsageWriter) Enqueue(u *ledger_entities.APIKeyUsage) {
	select {
	case w.queue <- u:
		return
	default:
	}

	select {
	case <-w.queue:
		metrics.APIKeyUsageQueueDropped.Inc()
	default:
	}

	select {
	case w.queue <- u:
	default:
		metrics.APIKeyUsageQueueDropped.Inc()
	}
}

func (w *UsageWriter) Run(ctx context.Context) {
	slog.InfoContext(ctx, "api key usage writer started", "capacity", usageQueueCapacity)
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "api key usage writer stopped")
			return
		case u := <-w.queue:
			w.ledger.RecordAPIKeyUsage(ctx, u)
		}
	}
}
