package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	pkgerrors "github.com/nikolchaa/resuma/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncer_Sync(t *testing.T) {
	modified := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	var requests int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "resuma-test", r.UserAgent())
		if since := r.Header.Get("If-Modified-Since"); since != "" {
			if ts, err := http.ParseTime(since); err == nil && !ts.Before(modified) {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
		w.Header().Set("Last-Modified", modified.Format(http.TimeFormat))
		_, _ = w.Write([]byte(sampleCatalog))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "nested", "catalog.yaml")
	s := NewSyncer(srv.Client(), "resuma-test")

	updated, err := s.Sync(context.Background(), srv.URL, path)
	require.NoError(t, err)
	assert.True(t, updated)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(modified))

	cat, err := LoadFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, cat.Entries())

	updated, err = s.Sync(context.Background(), srv.URL, path)
	require.NoError(t, err)
	assert.False(t, updated)
	assert.Equal(t, 2, requests)
}

func TestSyncer_SyncErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{
			name:    "not found",
			handler: func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) },
			wantErr: pkgerrors.ErrNetwork,
		},
		{
			name: "invalid catalog",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("entries:\n  - name: broken\n"))
			},
			wantErr: pkgerrors.ErrConfigValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			path := filepath.Join(t.TempDir(), "catalog.yaml")
			_, err := NewSyncer(nil, "").Sync(context.Background(), srv.URL, path)
			require.ErrorIs(t, err, tt.wantErr)
			assert.NoFileExists(t, path)
		})
	}
}
