package media

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeSigner struct {
	available bool
	err       error
	calls     []string
}

func (f *fakeSigner) Available() bool { return f.available }

func (f *fakeSigner) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	f.calls = append(f.calls, key)
	if f.err != nil {
		return "", f.err
	}
	return "https://s3.local/bucket/" + key + "?sig=1", nil
}

func TestImageURL(t *testing.T) {
	cfg := Config{
		PublicBaseURL:   "https://cdn.example.com/",
		DefaultImageURL: "https://cdn.example.com/default.png",
		PresignTTL:      time.Minute,
	}

	tests := []struct {
		name   string
		signer *fakeSigner
		key    string
		want   string
	}{
		{name: "empty key uses default", signer: &fakeSigner{available: true}, key: " ", want: cfg.DefaultImageURL},
		{name: "absolute url passes through", signer: &fakeSigner{available: true}, key: "HTTPS://img.example.com/a.jpg", want: "HTTPS://img.example.com/a.jpg"},
		{name: "presigned when storage available", signer: &fakeSigner{available: true}, key: "/users/u1/a.jpg", want: "https://s3.local/bucket/users/u1/a.jpg?sig=1"},
		{name: "public base when storage missing", signer: &fakeSigner{}, key: "users/u1/a.jpg", want: "https://cdn.example.com/users/u1/a.jpg"},
		{name: "public base when presign fails", signer: &fakeSigner{available: true, err: errors.New("down")}, key: "a.jpg", want: "https://cdn.example.com/a.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.signer, cfg, nil)
			if got := svc.ImageURL(context.Background(), tt.key); got != tt.want {
				t.Fatalf("unexpected url: got %q want %q", got, tt.want)
			}
		})
	}
}

func TestImageURLDefaultWithoutBase(t *testing.T) {
	svc := NewService(nil, Config{DefaultImageURL: "https://d/x.png"}, nil)
	if got := svc.ImageURL(context.Background(), "k.jpg"); got != "https://d/x.png" {
		t.Fatalf("unexpected url: %q", got)
	}
}

func TestGalleryURLsSkipsBlanks(t *testing.T) {
	svc := NewService(&fakeSigner{}, Config{PublicBaseURL: "https://cdn"}, nil)
	got := svc.GalleryURLs(context.Background(), []string{"a.jpg", "", "  ", "b.jpg"})
	if len(got) != 2 || got[0] != "https://cdn/a.jpg" || got[1] != "https://cdn/b.jpg" {
		t.Fatalf("unexpected gallery urls: %v", got)
	}
}

func TestS3StorageWithoutClientIsUnavailable(t *testing.T) {
	storage := NewS3Storage(nil, " media ")
	if storage.Available() {
		t.Fatalf("storage without client must be unavailable")
	}
	if err := storage.EnsureBucket(context.Background()); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("unexpected ensure error: %v", err)
	}
	if _, err := storage.PresignGet(context.Background(), "a.jpg", time.Minute); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("unexpected presign error: %v", err)
	}
}
