// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/desertthunder/cratedex/internal/services"
)

// MockService is a test double for [services.Service]
type MockService struct {
	User       *services.SpotifyUser
	Page       *services.SpotifyPaginatedTracks
	Features   []*services.SpotifyAudioFeatures
	AuthErr    error
	RequestErr error
}

func (m *MockService) Authenticate(ctx context.Context, credentials map[string]string) error {
	return m.AuthErr
}

func (m *MockService) CurrentUser(ctx context.Context) (*services.SpotifyUser, error) {
	if m.RequestErr != nil {
		return nil, m.RequestErr
	}
	if m.User == nil {
		return &services.SpotifyUser{ID: "mock-user"}, nil
	}
	return m.User, nil
}

func (m *MockService) SavedTracks(ctx context.Context, limit, offset int) (*services.SpotifyPaginatedTracks, error) {
	if m.RequestErr != nil {
		return nil, m.RequestErr
	}
	if m.Page == nil {
		return &services.SpotifyPaginatedTracks{}, nil
	}
	return m.Page, nil
}

func (m *MockService) SavedTracksNext(ctx context.Context, prev *services.SpotifyPaginatedTracks) (*services.SpotifyPaginatedTracks, error) {
	if m.RequestErr != nil {
		return nil, m.RequestErr
	}
	return &services.SpotifyPaginatedTracks{}, nil
}

func (m *MockService) AudioFeatures(ctx context.Context, trackIDs []string) ([]*services.SpotifyAudioFeatures, error) {
	if m.RequestErr != nil {
		return nil, m.RequestErr
	}
	return m.Features, nil
}

func (m *MockService) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("File %s does not contain %q", path, substr)
	}
}
