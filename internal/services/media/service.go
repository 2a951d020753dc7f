package media

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

type URLSigner interface {
	Available() bool
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Config struct {
	PublicBaseURL   string
	DefaultImageURL string
	PresignTTL      time.Duration
}

// Service turns stored image keys into absolute URLs for cards and
// profiles.
type Service struct {
	signer URLSigner
	cfg    Config
	logger *zap.Logger
}

func NewService(signer URLSigner, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	return &Service{signer: signer, cfg: cfg, logger: logger}
}

// ImageURL resolves one key. Empty keys fall back to the default asset,
// absolute URLs pass through, anything else is presigned when storage is
// available or joined onto the public base URL.
func (s *Service) ImageURL(ctx context.Context, key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return s.cfg.DefaultImageURL
	}
	lower := strings.ToLower(key)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return key
	}

	objectKey := strings.TrimLeft(key, "/")
	if s.signer != nil && s.signer.Available() {
		signed, err := s.signer.PresignGet(ctx, objectKey, s.cfg.PresignTTL)
		if err == nil {
			return signed
		}
		s.logger.Warn("presign image failed", zap.String("key", objectKey), zap.Error(err))
	}

	if s.cfg.PublicBaseURL != "" {
		return s.cfg.PublicBaseURL + "/" + objectKey
	}
	return s.cfg.DefaultImageURL
}

// GalleryURLs resolves every non-empty key and drops the blanks.
func (s *Service) GalleryURLs(ctx context.Context, keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if strings.TrimSpace(key) == "" {
			continue
		}
		out = append(out, s.ImageURL(ctx, key))
	}
	return out
}
