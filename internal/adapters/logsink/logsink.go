// Package logsink forwards health failures to an external log aggregator.
package logsink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"

	"passin/internal/domain"
)

// Config selects the sink and its destination.
type Config struct {
	Provider  string
	LogGroup  string
	LogStream string
}

type cloudWatchAPI interface {
	PutLogEvents(ctx context.Context, params *cloudwatchlogs.PutLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error)
}

// New returns a LogSink. Provider "cloudwatch" uses CloudWatch Logs; anything else only logs locally.
func New(cfg Config, awsCfg aws.Config, logger *slog.Logger) domain.LogSink {
	switch cfg.Provider {
	case "cloudwatch":
		return &cloudWatchSink{
			client:    cloudwatchlogs.NewFromConfig(awsCfg),
			logGroup:  cfg.LogGroup,
			logStream: cfg.LogStream,
			logger:    logger,
			now:       time.Now,
		}
	case "noop", "":
		return &noopSink{logger: logger}
	default:
		logger.Warn("unknown log sink provider, using noop", "provider", cfg.Provider)
		return &noopSink{logger: logger}
	}
}

type cloudWatchSink struct {
	client    cloudWatchAPI
	logGroup  string
	logStream string
	logger    *slog.Logger
	now       func() time.Time
}

func (c *cloudWatchSink) Send(ctx context.Context, entry *domain.ErrorLog) error {
	msg, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal error log: %w", err)
	}
	_, err = c.client.PutLogEvents(ctx, &cloudwatchlogs.PutLogEventsInput{
		LogGroupName:  aws.String(c.logGroup),
		LogStreamName: aws.String(c.logStream),
		LogEvents: []types.InputLogEvent{{
			Message:   aws.String(string(msg)),
			Timestamp: aws.Int64(c.now().UnixMilli()),
		}},
	})
	if err != nil {
		return fmt.Errorf("could not send log to CloudWatch: %w", err)
	}
	c.logger.InfoContext(ctx, "log sent to CloudWatch", "group", c.logGroup, "stream", c.logStream)
	return nil
}

type noopSink struct {
	logger *slog.Logger
}

func (n *noopSink) Send(ctx context.Context, entry *domain.ErrorLog) error {
	n.logger.WarnContext(ctx, "error log would be forwarded (noop)",
		"status_code", entry.StatusCode, "message", entry.Message)
	return nil
}
