package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"musicbot/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileLinkService(t *testing.T) *FileLinkService {
	t.Helper()
	service, err := NewFileLinkService(config.Config{
		FileLinkSecret: "test-secret",
		FileLinkTTLMin: 5,
		PublicDir:      t.TempDir(),
	})
	require.NoError(t, err)
	return service
}

func TestFileLinkService_PublishAndResolve(t *testing.T) {
	service := newTestFileLinkService(t)
	source := filepath.Join(t.TempDir(), "track.mp3")
	require.NoError(t, os.WriteFile(source, []byte("audio"), 0o644))

	token, err := service.Publish("job-1", source, "Song - Band.mp3")
	require.NoError(t, err)

	path, claims, err := service.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, "job-1", claims.JobID)
	assert.Equal(t, "Song - Band.mp3", claims.File)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "audio", string(data))

	_, err = os.Stat(source)
	assert.NoError(t, err, "source must be left in place")
}

func TestFileLinkService_Parse(t *testing.T) {
	service := newTestFileLinkService(t)

	jobToken, err := service.Sign("job-1", "")
	require.NoError(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, FileClaims{
		JobID: "job-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    fileLinkIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	expiredToken, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, FileClaims{
		JobID: "job-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    fileLinkIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	foreignToken, err := foreign.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{name: "job token", token: jobToken},
		{name: "expired", token: expiredToken, wantErr: true},
		{name: "wrong secret", token: foreignToken, wantErr: true},
		{name: "garbage", token: "not-a-token", wantErr: true},
		{name: "tampered", token: jobToken + "x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.Parse(tt.token)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFileLink)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "job-1", claims.JobID)
		})
	}
}

func TestFileLinkService_ResolveRejectsJobTokens(t *testing.T) {
	service := newTestFileLinkService(t)

	token, err := service.Sign("job-1", "")
	require.NoError(t, err)

	_, _, err = service.Resolve(token)
	assert.ErrorIs(t, err, ErrInvalidFileLink)

	traversal, err := service.Sign("job-1", "../secret")
	require.NoError(t, err)

	_, _, err = service.Resolve(traversal)
	assert.ErrorIs(t, err, ErrInvalidFileLink)
}

func TestFileLinkService_DefaultTTL(t *testing.T) {
	service, err := NewFileLinkService(config.Config{})
	require.NoError(t, err)
	assert.Equal(t, time.Hour, service.TTL())
}
