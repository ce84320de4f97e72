package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/events-factory/mededafrica-abstract-submission-sub000/config"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/emaillogs"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/internal/models"
	"github.com/events-factory/mededafrica-abstract-submission-sub000/pkg/queue"
)

// Sender delivers one rendered email. Split out so tests can run the
// processor without an SMTP server.
type Sender interface {
	Send(to, subject, bodyHTML string) error
}

// SMTPSender delivers mail over plain SMTP with auth.
type SMTPSender struct {
	cfg config.EmailConfig
}

func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(to, subject, bodyHTML string) error {
	addr := s.cfg.SMTPHost + ":" + strconv.Itoa(s.cfg.SMTPPort)
	msg := []byte("From: " + s.cfg.FromName + " <" + s.cfg.FromAddress + ">\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n" +
		"\r\n" + bodyHTML)

	var auth smtp.Auth
	if s.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	}
	if err := smtp.SendMail(addr, auth, s.cfg.FromAddress, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// EmailProcessor drains the email queue: every job is logged to
// email_logs, delivered, and marked sent or failed. Failures go back
// through the queue's retry/DLQ path.
type EmailProcessor struct {
	queue  *queue.Queue
	logs   *emaillogs.Repository
	sender Sender
	logger *zap.Logger
}

func NewEmailProcessor(q *queue.Queue, logs *emaillogs.Repository, sender Sender, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{queue: q, logs: logs, sender: sender, logger: logger}
}

// Process executes one email job.
func (p *EmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeEmail {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if payload.RecipientEmail == "" {
		p.logger.Warn("email job without recipient dropped", zap.String("job_id", job.ID))
		return nil
	}

	log := &models.EmailLog{
		DelegateID:     payload.DelegateID,
		EmailType:      payload.EmailType,
		RecipientEmail: payload.RecipientEmail,
		Subject:        payload.Subject,
	}
	if err := p.logs.Create(ctx, log); err != nil {
		return err
	}

	if err := p.sender.Send(payload.RecipientEmail, payload.Subject, payload.BodyHTML); err != nil {
		if logErr := p.logs.MarkFailed(ctx, log.ID, err.Error()); logErr != nil {
			p.logger.Error("mark email failed errored", zap.Error(logErr))
		}
		return err
	}
	if err := p.logs.MarkSent(ctx, log.ID); err != nil {
		p.logger.Error("mark email sent errored", zap.Error(err))
	}

	p.logger.Info("email delivered",
		zap.String("email_type", payload.EmailType),
		zap.String("recipient", payload.RecipientEmail),
	)
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *EmailProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
