package orchestrator

import (
	"context"
	"log/slog"

	"github.com/shaiso/pairalign/internal/domain"
	"github.com/shaiso/pairalign/internal/telemetry"
)

// recorder отражает ход run в журнале, событиях и метриках.
// Реализует process.Hook.
//
// Ошибки журнала и публикации не влияют на результат run.
type recorder struct {
	// ctx без отмены: финальный статус пишется и после SIGINT
	ctx       context.Context
	journal   Journal
	publisher EventPublisher
	metrics   *telemetry.Metrics
	logger    *slog.Logger
}

func newRecorder(ctx context.Context, journal Journal, publisher EventPublisher, metrics *telemetry.Metrics, logger *slog.Logger) *recorder {
	return &recorder{
		ctx:       context.WithoutCancel(ctx),
		journal:   journal,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

func (r *recorder) runChanged(run *domain.Run) {
	if r.journal != nil {
		if err := r.journal.RecordRun(r.ctx, run); err != nil {
			r.logger.Warn("failed to record run", "status", run.Status, "error", err)
		}
	}
	if r.publisher != nil {
		if err := r.publisher.PublishRunEvent(r.ctx, run); err != nil {
			r.logger.Warn("failed to publish run event", "status", run.Status, "error", err)
		}
	}
}

// Started реализует process.Hook.
func (r *recorder) Started(inv *domain.Invocation) {
	r.logger.Info("command issued",
		"pass", inv.Pass,
		"lane", inv.Lane,
		"command", inv.CommandLine(),
	)
	r.recordInvocation(inv)
}

// Finished реализует process.Hook.
func (r *recorder) Finished(inv *domain.Invocation, err error) {
	r.metrics.ObserveInvocation(inv.Tool, string(inv.Pass), string(inv.Status), inv.Duration())

	if err != nil {
		r.logger.Error("command failed",
			"pass", inv.Pass,
			"lane", inv.Lane,
			"duration", inv.Duration(),
			"error", err,
		)
	} else {
		r.logger.Debug("command finished",
			"pass", inv.Pass,
			"lane", inv.Lane,
			"duration", inv.Duration(),
		)
	}
	r.recordInvocation(inv)
}

func (r *recorder) recordInvocation(inv *domain.Invocation) {
	if r.journal == nil {
		return
	}
	if err := r.journal.RecordInvocation(r.ctx, inv); err != nil {
		r.logger.Warn("failed to record invocation", "pass", inv.Pass, "lane", inv.Lane, "error", err)
	}
}
