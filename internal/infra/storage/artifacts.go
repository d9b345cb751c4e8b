// Package storage publishes finished GIF artifacts. The local public
// directory is the serving path; an object-storage mirror can be enabled
// for durability.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

type Config struct {
	PublicDir string
	BaseURL   string

	// Mirror settings; an empty endpoint disables mirroring.
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOUseSSL    bool
	MinIOBucket    string
}

type ArtifactStore struct {
	publicDir string
	baseURL   string
	mirror    *miniogo.Client
	bucket    string
	logger    *zap.Logger
}

func NewArtifactStore(cfg Config, logger *zap.Logger) (*ArtifactStore, error) {
	store := &ArtifactStore{
		publicDir: cfg.PublicDir,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		bucket:    cfg.MinIOBucket,
		logger:    logger,
	}

	if cfg.MinIOEndpoint != "" {
		client, err := miniogo.New(cfg.MinIOEndpoint, &miniogo.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
			Secure: cfg.MinIOUseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("create minio client: %w", err)
		}
		store.mirror = client
	}

	return store, nil
}

// EnsureReady creates the public directory and, when mirroring is enabled,
// the target bucket.
func (s *ArtifactStore) EnsureReady(ctx context.Context) error {
	if err := os.MkdirAll(s.publicDir, 0o755); err != nil {
		return fmt.Errorf("create public dir: %w", err)
	}
	if s.mirror == nil {
		return nil
	}

	exists, err := s.mirror.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.mirror.MakeBucket(ctx, s.bucket, miniogo.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

// Publish copies the artifact into the public directory under key and
// returns its public URL. The destination is overwritten if present, which
// keeps redelivered jobs idempotent. Mirroring is best-effort: a mirror
// failure is logged, not propagated, since the local copy is what serves.
func (s *ArtifactStore) Publish(ctx context.Context, localPath string, key string) (string, error) {
	dest := filepath.Join(s.publicDir, key)
	if err := copyFile(localPath, dest); err != nil {
		return "", fmt.Errorf("publish artifact: %w", err)
	}

	if s.mirror != nil {
		_, err := s.mirror.FPutObject(ctx, s.bucket, key, dest, miniogo.PutObjectOptions{
			ContentType: "image/gif",
		})
		if err != nil {
			s.logger.Warn("artifact mirror upload failed",
				zap.String("key", key), zap.Error(err))
		}
	}

	return s.baseURL + "/" + key, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
