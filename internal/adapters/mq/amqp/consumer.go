// Package amqp feeds recommendation jobs from a RabbitMQ queue into the
// service.
package amqp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	rabbit "github.com/streadway/amqp"

	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/domain/types"
	"github.com/okian/skillmatch/pkg/logger"
	"github.com/okian/skillmatch/pkg/metrics"
)

// Message outcomes.
const (
	OutcomeAccepted = "accepted"
	OutcomeRequeued = "requeued"
	OutcomeRejected = "rejected"
)

const (
	defaultPrefetch     = 16
	defaultRequeueDelay = 100 * time.Millisecond
	defaultTopN         = 10
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Submitter accepts jobs. created is false when the job id already existed.
type Submitter interface {
	SubmitJob(ctx context.Context, req model.JobRequest) (job types.Job, created bool, err error)
}

// payload is the wire shape of a job message.
type payload struct {
	JobID      string      `json:"job_id" validate:"omitempty,max=128,printascii"`
	TaskSkills *string     `json:"task_skills"`
	TopN       *model.TopN `json:"top_n"`
}

// Decode parses a job message. top_n may be an integer or a numeric string;
// a missing top_n takes defaultTopN.
func Decode(body []byte, defaultTopN int) (model.JobRequest, error) {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return model.JobRequest{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if p.TaskSkills == nil {
		return model.JobRequest{}, fmt.Errorf("%w: task_skills is required", ErrMalformed)
	}
	if err := validate.Struct(p); err != nil {
		return model.JobRequest{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	return model.JobRequest{JobID: p.JobID, TaskSkills: *p.TaskSkills, TopN: p.TopN.Or(defaultTopN)}, nil
}

// Consumer reads job messages with manual acknowledgement.
type Consumer struct {
	url          string
	queue        string
	submitter    Submitter
	retryable    func(error) bool
	prefetch     int
	requeueDelay time.Duration
	defaultTopN  int
	logger       logger.Logger

	conn *rabbit.Connection
	ch   *rabbit.Channel
	done chan struct{}
}

// NewConsumer creates a consumer for queue on the broker at url.
func NewConsumer(url, queue string, submitter Submitter, opts ...Option) *Consumer {
	c := &Consumer{
		url:          url,
		queue:        queue,
		submitter:    submitter,
		retryable:    func(error) bool { return false },
		prefetch:     defaultPrefetch,
		requeueDelay: defaultRequeueDelay,
		defaultTopN:  defaultTopN,
		logger:       logger.Nop(),
		done:         make(chan struct{}),
	}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Start connects, declares the durable queue and consumes in the background
// until ctx is canceled or the broker closes the channel.
func (c *Consumer) Start(ctx context.Context) error {
	conn, err := rabbit.Dial(c.url)
	if err != nil {
		return fmt.Errorf("%w: dial: %w", ErrBroker, err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("%w: channel: %w", ErrBroker, err)
	}
	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		_ = conn.Close()
		return fmt.Errorf("%w: qos: %w", ErrBroker, err)
	}
	if _, err := ch.QueueDeclare(
		c.queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		_ = conn.Close()
		return fmt.Errorf("%w: declare %s: %w", ErrBroker, c.queue, err)
	}
	msgs, err := ch.Consume(
		c.queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("%w: consume %s: %w", ErrBroker, c.queue, err)
	}

	c.conn, c.ch = conn, ch
	c.logger.Info(ctx, "consuming job messages", logger.String("queue", c.queue))
	go c.run(ctx, msgs)
	return nil
}

func (c *Consumer) run(ctx context.Context, msgs <-chan rabbit.Delivery) {
	defer close(c.done)
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-msgs:
			if !ok {
				c.logger.Warn(ctx, "delivery channel closed", logger.String("queue", c.queue))
				return
			}
			c.Handle(ctx, d)
		}
	}
}

// Handle submits one delivery and settles it. It returns the outcome.
func (c *Consumer) Handle(ctx context.Context, d rabbit.Delivery) string {
	req, err := Decode(d.Body, c.defaultTopN)
	if err != nil {
		c.logger.Warn(ctx, "rejecting malformed job message", logger.Error(err))
		return c.settle(ctx, d, OutcomeRejected)
	}

	job, created, err := c.submitter.SubmitJob(ctx, req)
	switch {
	case err == nil:
		c.logger.Debug(ctx, "job message accepted",
			logger.String("job_id", job.ID),
			logger.Bool("created", created))
		return c.settle(ctx, d, OutcomeAccepted)
	case c.retryable(err):
		c.logger.Warn(ctx, "requeueing job message", logger.String("job_id", req.JobID), logger.Error(err))
		select {
		case <-time.After(c.requeueDelay):
		case <-ctx.Done():
		}
		return c.settle(ctx, d, OutcomeRequeued)
	default:
		c.logger.Warn(ctx, "rejecting job message", logger.String("job_id", req.JobID), logger.Error(err))
		return c.settle(ctx, d, OutcomeRejected)
	}
}

func (c *Consumer) settle(ctx context.Context, d rabbit.Delivery, outcome string) string {
	var err error
	switch outcome {
	case OutcomeAccepted:
		err = d.Ack(false)
	case OutcomeRequeued:
		err = d.Nack(false, true)
	default:
		err = d.Reject(false)
	}
	if err != nil {
		metrics.RecordErrorByComponent("amqp", "settle_failed")
		c.logger.Error(ctx, "failed to settle delivery", logger.String("outcome", outcome), logger.Error(err))
	}
	metrics.RecordAMQPMessage(outcome)
	return outcome
}

// Close stops the consumer and closes the broker connection.
func (c *Consumer) Close() error {
	if c.conn == nil {
		return nil
	}
	if err := c.ch.Close(); err != nil && !errors.Is(err, rabbit.ErrClosed) {
		c.logger.Warn(context.Background(), "closing channel", logger.Error(err))
	}
	if err := c.conn.Close(); err != nil && !errors.Is(err, rabbit.ErrClosed) {
		return fmt.Errorf("%w: close: %w", ErrBroker, err)
	}
	return nil
}

// Done is closed once the consume loop exits.
func (c *Consumer) Done() <-chan struct{} { return c.done }
