package service

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook-api/internal/models"
	"github.com/noah-isme/sma-gradebook-api/pkg/jobs"
)

const alertJobType = "at_risk_alert"

const defaultAlertTemplate = `Academic alert: {{.StudentName}} ({{.GradeLevel}}{{.Section}}) has a general average of {{printf "%.2f" .GeneralAverage}} in period {{.PeriodID}}, below the threshold of {{printf "%.2f" .Threshold}}. Category: {{.Category}}.`

// Notifier delivers a rendered alert message.
type Notifier interface {
	Notify(ctx context.Context, alert models.AtRiskAlert, message string) error
}

// LogNotifier writes alerts to the log instead of sending them.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier constructs LogNotifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs the message.
func (n *LogNotifier) Notify(_ context.Context, alert models.AtRiskAlert, message string) error {
	n.logger.Info("at-risk alert",
		zap.String("student_id", alert.StudentID),
		zap.String("period_id", alert.PeriodID),
		zap.Float64("general_average", alert.GeneralAverage),
		zap.String("message", message),
	)
	return nil
}

// AlertConfig configures alert dispatch.
type AlertConfig struct {
	Enabled    bool
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
	Template   string
}

// AlertService queues at-risk alerts and renders them for a Notifier.
type AlertService struct {
	notifier Notifier
	tmpl     *template.Template
	queue    *jobs.Queue
	metrics  *MetricsService
	logger   *zap.Logger
	enabled  bool
}

// NewAlertService constructs AlertService with its own worker queue.
func NewAlertService(notifier Notifier, cfg AlertConfig, metrics *MetricsService, logger *zap.Logger) (*AlertService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	text := cfg.Template
	if text == "" {
		text = defaultAlertTemplate
	}
	tmpl, err := template.New("alert").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse alert template: %w", err)
	}
	s := &AlertService{notifier: notifier, tmpl: tmpl, metrics: metrics, logger: logger, enabled: cfg.Enabled && notifier != nil}
	s.queue = jobs.NewQueue("alerts", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s, nil
}

// Start launches the dispatch workers.
func (s *AlertService) Start(ctx context.Context) {
	if s == nil || !s.enabled {
		return
	}
	s.queue.Start(ctx)
}

// Stop waits for the workers to exit.
func (s *AlertService) Stop() {
	if s == nil {
		return
	}
	s.queue.Stop()
}

// Stats exposes queue counters.
func (s *AlertService) Stats() jobs.Stats {
	if s == nil {
		return jobs.Stats{}
	}
	return s.queue.Stats()
}

// Publish queues an alert. It is a no-op when alerts are disabled.
func (s *AlertService) Publish(alert models.AtRiskAlert) error {
	if s == nil || !s.enabled {
		return nil
	}
	if alert.RaisedAt.IsZero() {
		alert.RaisedAt = time.Now().UTC()
	}
	if err := s.queue.Enqueue(jobs.Job{Type: alertJobType, Payload: alert}); err != nil {
		s.metrics.RecordAlert("dropped")
		return err
	}
	return nil
}

// Render formats the alert message.
func (s *AlertService) Render(alert models.AtRiskAlert) (string, error) {
	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, alert); err != nil {
		return "", fmt.Errorf("render alert: %w", err)
	}
	return buf.String(), nil
}

func (s *AlertService) handle(ctx context.Context, job jobs.Job) error {
	alert, ok := job.Payload.(models.AtRiskAlert)
	if !ok {
		s.logger.Error("unexpected alert payload", zap.String("job_id", job.ID), zap.String("type", fmt.Sprintf("%T", job.Payload)))
		return nil
	}
	message, err := s.Render(alert)
	if err != nil {
		s.metrics.RecordAlert("failed")
		s.logger.Error("alert render failed", zap.String("student_id", alert.StudentID), zap.Error(err))
		return nil
	}
	if err := s.notifier.Notify(ctx, alert, message); err != nil {
		s.metrics.RecordAlert("retry")
		return err
	}
	s.metrics.RecordAlert("sent")
	return nil
}
