package s3blob

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Archiver uploads the local bet trail to object storage so the CSV survives
// the host the session ran on.
type Archiver struct {
	client *Client
	prefix string
	logger *slog.Logger
}

// NewArchiver creates an Archiver uploading under the given key prefix.
func NewArchiver(client *Client, prefix string, logger *slog.Logger) *Archiver {
	return &Archiver{
		client: client,
		prefix: prefix,
		logger: logger.With(slog.String("component", "archiver")),
	}
}

// ArchiveBetLog uploads the CSV at localPath to a timestamped object key. A
// missing file is not an error; sessions that placed no bets write nothing.
func (a *Archiver) ArchiveBetLog(ctx context.Context, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		if os.IsNotExist(err) {
			a.logger.Info("no bet log to archive", slog.String("path", localPath))
			return nil
		}
		return fmt.Errorf("s3blob: open bet log %s: %w", localPath, err)
	}
	defer f.Close()

	key := path.Join(a.prefix, time.Now().UTC().Format("2006/01/02"), fmt.Sprintf("bet_log_%d.csv", time.Now().UTC().Unix()))

	uploader := manager.NewUploader(a.client.S3())
	_, err = uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.client.Bucket()),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return fmt.Errorf("s3blob: upload bet log to %s: %w", key, err)
	}

	a.logger.Info("bet log archived", slog.String("key", key))
	return nil
}
