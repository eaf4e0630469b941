package diary

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
)

const (
	placeholderBase = "https://dummyimage.com/600x400/"
	driveImageBase  = "https://lh3.googleusercontent.com/d/"
	dataImagePrefix = "data:image/png;base64,"
)

// ErrInvalidImage is returned for image references that cannot be used.
var ErrInvalidImage = errors.New("invalid image url")

// PlaceholderImage returns a generated image URL showing the restaurant
// name on a background of the given 6-digit hex color.
func PlaceholderImage(restaurant, hexColor string) string {
	return placeholderBase + hexColor + "/FFFFFF?text=" + url.QueryEscape(restaurant)
}

// RandomColor returns a random 6-digit hex color.
func RandomColor() string {
	return fmt.Sprintf("%06x", rand.IntN(0x1000000))
}

// ValidateImageURL accepts http(s) URLs and inline PNG data URIs.
func ValidateImageURL(raw string) error {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return fmt.Errorf("%w: empty", ErrInvalidImage)
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
		if _, err := url.ParseRequestURI(raw); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
		return nil
	case strings.HasPrefix(raw, dataImagePrefix):
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidImage, raw)
}

var driveFileID = regexp.MustCompile(`/d/([^/]+)`)

// DriveImageURL converts a Google Drive share link into a direct image URL.
func DriveImageURL(shareURL string) (string, error) {
	path, _, _ := strings.Cut(strings.TrimSpace(shareURL), "?")
	m := driveFileID.FindStringSubmatch(path)
	if m == nil || m[1] == "" {
		return "", fmt.Errorf("%w: not a Google Drive file link", ErrInvalidImage)
	}
	return driveImageBase + m[1], nil
}

// ImageLoader checks that an image reference can be displayed.
type ImageLoader func(ctx context.Context, ref string) error

// CheckImage is an ImageLoader. Data URIs must decode; remote URLs must
// answer a HEAD request with a 2xx image response.
func CheckImage(client *http.Client) ImageLoader {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context, ref string) error {
		if err := ValidateImageURL(ref); err != nil {
			return err
		}
		if strings.HasPrefix(ref, dataImagePrefix) {
			if _, err := base64.StdEncoding.DecodeString(ref[len(dataImagePrefix):]); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidImage, err)
			}
			return nil
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, ref, nil)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("load image: %w", err)
		}
		resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("load image: status %d", resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
			return fmt.Errorf("load image: content type %q", ct)
		}
		return nil
	}
}

// ImageSlot holds the image chosen for the meal being edited. Loads may
// complete out of order; only the most recent attempt is applied.
type ImageSlot struct {
	mu       sync.Mutex
	seq      uint64
	current  string
	notifier Notifier
}

// NewImageSlot returns an empty slot. Failures are reported to n.
func NewImageSlot(n Notifier) *ImageSlot {
	if n == nil {
		n = nopNotifier{}
	}
	return &ImageSlot{notifier: n}
}

// Begin starts a load attempt and returns its token.
func (s *ImageSlot) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// Complete finishes the attempt identified by token. It reports whether
// the result was applied; superseded attempts are dropped. A failed
// attempt clears the slot and notifies the user.
func (s *ImageSlot) Complete(token uint64, ref string, err error) bool {
	s.mu.Lock()
	if token != s.seq {
		s.mu.Unlock()
		return false
	}
	if err != nil {
		s.current = ""
		s.mu.Unlock()
		s.notifier.Notify("Image failed to load, choose another image or URL")
		return true
	}
	s.current = ref
	s.mu.Unlock()
	return true
}

// Load runs loader for ref and completes the attempt with its result.
func (s *ImageSlot) Load(ctx context.Context, ref string, loader ImageLoader) error {
	token := s.Begin()
	err := loader(ctx, ref)
	s.Complete(token, ref, err)
	return err
}

// Set stores ref without loading it.
func (s *ImageSlot) Set(ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.current = ref
}

// Current returns the applied image reference, or "".
func (s *ImageSlot) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Reset clears the slot and cancels pending attempts.
func (s *ImageSlot) Reset() {
	s.Set("")
}
