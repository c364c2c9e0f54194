package middleware

import (
	"context"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tabsplit/internal/auth"
)

type ping struct{}

func TestRequireSession(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	token, err := jwtManager.Generate("session-1")
	require.NoError(t, err)

	var seen string
	handler := RequireSession(jwtManager)(func(ctx context.Context, _ connect.AnyRequest) (connect.AnyResponse, error) {
		seen = GetSessionID(ctx)
		return connect.NewResponse(&ping{}), nil
	})

	tests := map[string]struct {
		header  string
		wantErr bool
	}{
		"valid token":    {header: "Bearer " + token},
		"missing header": {header: "", wantErr: true},
		"wrong scheme":   {header: "Basic " + token, wantErr: true},
		"empty token":    {header: "Bearer ", wantErr: true},
		"forged token":   {header: "Bearer not.a.jwt", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			seen = ""
			req := connect.NewRequest(&ping{})
			if tt.header != "" {
				req.Header().Set("Authorization", tt.header)
			}

			_, err := handler(context.Background(), req)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
				assert.Empty(t, seen)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "session-1", seen)
		})
	}
}

func TestGetSessionIDMissing(t *testing.T) {
	assert.Empty(t, GetSessionID(context.Background()))
	assert.Equal(t, "abc", GetSessionID(WithSessionID(context.Background(), "abc")))
}
