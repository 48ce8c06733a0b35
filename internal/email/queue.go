package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/smtp"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vslbak/gymflow-web/internal/logger"
	"github.com/vslbak/gymflow-web/internal/metrics"
)

const (
	QueueKey       = "emails"
	FailedQueueKey = "emails:failed"
	MaxAttempts    = 3
	popTimeout     = 2 * time.Second
)

type SMTPConfig struct {
	From     string
	FromName string
	Host     string
	Port     string
	User     string
	Pass     string
}

// Queue stores jobs in a Redis list and delivers them over SMTP from a
// background worker.
type Queue struct {
	redis      *redis.Client
	smtp       SMTPConfig
	retryDelay time.Duration
	deliver    func(Job) error
}

func NewQueue(rdb *redis.Client, cfg SMTPConfig) *Queue {
	q := &Queue{
		redis:      rdb,
		smtp:       cfg,
		retryDelay: 5 * time.Second,
	}
	q.deliver = q.sendSMTP
	return q
}

func (q *Queue) Enqueue(ctx context.Context, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal email job: %w", err)
	}
	if err := q.redis.LPush(ctx, QueueKey, data).Err(); err != nil {
		return err
	}
	logger.Infof("Email queued: %s to %s", job.Subject, job.To)
	return nil
}

// Start runs the worker until ctx is cancelled.
func (q *Queue) Start(ctx context.Context) {
	logger.Info("Email worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Email worker stopped")
			return
		default:
			q.processNext(ctx)
		}
	}
}

func (q *Queue) processNext(ctx context.Context) {
	result, err := q.redis.BRPop(ctx, popTimeout, QueueKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			logger.Warn("Email queue pop failed", "error", err)
		}
		return
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad email data: %v", err)
		return
	}

	job.Tries++
	logger.Debugf("Sending email to %s (attempt %d)", job.To, job.Tries)
	if err := q.deliver(job); err != nil {
		logger.Errorf("Failed to send email to %s: %v", job.To, err)

		if job.Tries < MaxAttempts {
			if q.retryDelay > 0 {
				time.Sleep(q.retryDelay)
			}
			data, _ := json.Marshal(job)
			q.redis.LPush(context.Background(), QueueKey, data)
			return
		}
		q.saveFailed(job, err)
		return
	}

	metrics.RecordEmail(job.Kind, "sent")
	logger.Infof("Email sent to %s", job.To)
}

func (q *Queue) sendSMTP(job Job) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", q.smtp.FromName, q.smtp.From)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if q.smtp.User != "" && q.smtp.Pass != "" {
		auth = smtp.PlainAuth("", q.smtp.User, q.smtp.Pass, q.smtp.Host)
	}

	addr := q.smtp.Host + ":" + q.smtp.Port
	return smtp.SendMail(addr, auth, q.smtp.From, []string{job.To}, []byte(message))
}

func (q *Queue) saveFailed(job Job, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	q.redis.LPush(context.Background(), FailedQueueKey, data)
	metrics.RecordEmail(job.Kind, "failed")
	logger.Errorf("Email to %s failed after %d attempts", job.To, MaxAttempts)
}

func (q *Queue) Len(ctx context.Context) int64 {
	length, _ := q.redis.LLen(ctx, QueueKey).Result()
	return length
}

func (q *Queue) Close() error {
	return q.redis.Close()
}
