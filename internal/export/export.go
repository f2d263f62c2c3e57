// Package export writes run reports to a local directory or an S3 bucket.
package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Exporter stores a named report document.
type Exporter interface {
	Export(ctx context.Context, name string, data []byte) (string, error)
}

// DirExporter writes reports into a local directory.
type DirExporter struct {
	Dir string
}

// Export writes data to Dir/name, creating Dir if needed, and returns the
// file path.
func (e DirExporter) Export(_ context.Context, name string, data []byte) (string, error) {
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir %s: %w", e.Dir, err)
	}
	p := filepath.Join(e.Dir, name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", p, err)
	}
	return p, nil
}

// PutObjectAPI is the subset of the S3 client used for exports.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Exporter uploads reports to Bucket under Prefix.
type S3Exporter struct {
	Client PutObjectAPI
	Bucket string
	Prefix string
}

// NewS3Exporter builds an S3Exporter from the default AWS credential chain
// (environment, shared config, instance role).
func NewS3Exporter(ctx context.Context, bucket, prefix string) (*S3Exporter, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &S3Exporter{Client: s3.NewFromConfig(cfg), Bucket: bucket, Prefix: prefix}, nil
}

// Export uploads data as Prefix/name and returns its s3:// URL.
func (e *S3Exporter) Export(ctx context.Context, name string, data []byte) (string, error) {
	key := name
	if e.Prefix != "" {
		key = path.Join(e.Prefix, name)
	}
	_, err := e.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(name)),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", e.Bucket, key, err)
	}
	return "s3://" + e.Bucket + "/" + key, nil
}

// Target is a parsed export destination.
type Target struct {
	Bucket string // non-empty for S3 targets
	Prefix string
	Dir    string
}

// IsS3 reports whether the target is an S3 location.
func (t Target) IsS3() bool { return t.Bucket != "" }

// ParseTarget accepts "s3://bucket[/prefix]" or a local directory path.
func ParseTarget(s string) (Target, error) {
	if s == "" {
		return Target{}, fmt.Errorf("empty export target")
	}
	rest, ok := strings.CutPrefix(s, "s3://")
	if !ok {
		return Target{Dir: s}, nil
	}
	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return Target{}, fmt.Errorf("invalid s3 target %q: missing bucket", s)
	}
	return Target{Bucket: bucket, Prefix: strings.Trim(prefix, "/")}, nil
}

// New returns the Exporter for target.
func New(ctx context.Context, target string) (Exporter, error) {
	t, err := ParseTarget(target)
	if err != nil {
		return nil, err
	}
	if t.IsS3() {
		return NewS3Exporter(ctx, t.Bucket, t.Prefix)
	}
	return DirExporter{Dir: t.Dir}, nil
}

func contentType(name string) string {
	switch filepath.Ext(name) {
	case ".json":
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}
