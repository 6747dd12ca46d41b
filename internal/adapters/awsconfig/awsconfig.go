// Package awsconfig builds the aws.Config shared by the SES, S3 and CloudWatch Logs adapters.
package awsconfig

import (
	"crypto/tls"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// Config holds the static AWS credentials and transport options.
type Config struct {
	Region             string
	AccessKeyID        string
	SecretAccessKey    string
	InsecureSkipVerify bool
}

// New returns an aws.Config with static credentials. When no key is configured the SDK's
// default credential chain resolution is left in place (nil Credentials).
func New(cfg Config, logger *slog.Logger) aws.Config {
	if cfg.InsecureSkipVerify {
		logger.Warn("TLS certificate verification is disabled for AWS clients. Use only in development.")
	}
	awsCfg := aws.Config{
		Region: cfg.Region,
		HTTPClient: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: cfg.InsecureSkipVerify,
					MinVersion:         tls.VersionTLS12,
				},
			},
		},
	}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		)
	}
	return awsCfg
}
