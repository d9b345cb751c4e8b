// Package download streams remote videos to local scratch storage,
// enforcing the type and size policy before and during the transfer.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/syamcode/thumbnail-generator/internal/domain/entity"
	"go.uber.org/zap"
)

// videoExtensions maps common container extensions to MIME types for the
// fallback when a server declares no usable Content-Type.
var videoExtensions = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".webm": "video/webm",
	".ogg":  "video/ogg",
	".ogv":  "video/ogg",
	".mov":  "video/quicktime",
}

type Config struct {
	AllowedTypes []string
	MaxBytes     int64
}

type Fetcher struct {
	client       *http.Client
	allowedTypes map[string]struct{}
	maxBytes     int64
	logger       *zap.Logger
}

func NewFetcher(cfg Config, logger *zap.Logger) *Fetcher {
	allowed := make(map[string]struct{}, len(cfg.AllowedTypes))
	for _, t := range cfg.AllowedTypes {
		allowed[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	return &Fetcher{
		client:       &http.Client{},
		allowedTypes: allowed,
		maxBytes:     cfg.MaxBytes,
		logger:       logger,
	}
}

// Fetch validates rawURL, probes the remote metadata, and streams the body
// to destPath. On success exactly one file exists at destPath; on any
// failure no partial file is left behind.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, destPath string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", entity.ErrInvalidURL, rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: scheme %q", entity.ErrInvalidURL, u.Scheme)
	}

	declaredType, declaredLength, err := f.probeMetadata(ctx, u)
	if err != nil {
		return "", err
	}

	if err := f.checkContentType(declaredType, u); err != nil {
		return "", err
	}
	if declaredLength > 0 && declaredLength > f.maxBytes {
		return "", fmt.Errorf("%w: declared %d bytes, limit %d", entity.ErrTooLarge, declaredLength, f.maxBytes)
	}

	return f.stream(ctx, u, destPath)
}

// probeMetadata issues a HEAD request for the declared content type and
// length. A failed probe is not fatal by itself: some servers reject HEAD,
// and the extension fallback plus the streaming byte cap still apply.
func (f *Fetcher) probeMetadata(ctx context.Context, u *url.URL) (string, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u.String(), nil)
	if err != nil {
		return "", 0, fmt.Errorf("build probe request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("metadata probe failed, relying on fallback checks",
			zap.String("url", u.String()), zap.Error(err))
		return "", 0, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", 0, nil
	}
	return resp.Header.Get("Content-Type"), resp.ContentLength, nil
}

// checkContentType accepts the declared type when it is on the allow-list,
// otherwise falls back to inferring a type from the URL's file extension.
func (f *Fetcher) checkContentType(declared string, u *url.URL) error {
	if declared != "" {
		if mediaType, _, err := mime.ParseMediaType(declared); err == nil {
			if _, ok := f.allowedTypes[strings.ToLower(mediaType)]; ok {
				return nil
			}
		}
	}

	ext := strings.ToLower(path.Ext(u.Path))
	if inferred, ok := videoExtensions[ext]; ok {
		if _, allowed := f.allowedTypes[inferred]; allowed {
			return nil
		}
	}

	return fmt.Errorf("%w: declared %q, extension %q", entity.ErrUnsupportedType, declared, path.Ext(u.Path))
}

// stream downloads the body, aborting hard if the byte count crosses the
// configured ceiling. Servers may lie about or omit Content-Length, so the
// pre-check above is never trusted on its own.
func (f *Fetcher) stream(ctx context.Context, u *url.URL, destPath string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", u.String(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("download %s: unexpected status %d", u.String(), resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", entity.ErrWriteFailed, err)
	}

	dst, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", entity.ErrWriteFailed, err)
	}

	written, err := io.Copy(dst, io.LimitReader(resp.Body, f.maxBytes+1))
	closeErr := dst.Close()

	switch {
	case err != nil:
		f.removePartial(destPath)
		return "", fmt.Errorf("%w: %v", entity.ErrWriteFailed, err)
	case closeErr != nil:
		f.removePartial(destPath)
		return "", fmt.Errorf("%w: %v", entity.ErrWriteFailed, closeErr)
	case written > f.maxBytes:
		f.removePartial(destPath)
		return "", fmt.Errorf("%w: body exceeds %d bytes", entity.ErrTooLarge, f.maxBytes)
	}

	f.logger.Info("video fetched",
		zap.String("url", u.String()),
		zap.String("dest", destPath),
		zap.Int64("bytes", written),
	)
	return destPath, nil
}

// removePartial is best-effort cleanup; failure is logged, never propagated.
func (f *Fetcher) removePartial(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		f.logger.Warn("could not remove partial download", zap.String("path", path), zap.Error(err))
	}
}
