package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/settleup/internal/api"
	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/storage/sqlite"
)

func setupAuthServer(t *testing.T) api.AuthServiceClient {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("0123456789abcdef0123456789abcdef", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	svc := NewAuthService(authenticator, jwtManager, store, discardLogger())

	mux := http.NewServeMux()
	mux.Handle(api.NewAuthServiceHandler(svc, connect.WithInterceptors(middleware.OptionalAuth(jwtManager))))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return api.NewAuthServiceClient(server.Client(), server.URL)
}

func TestAuthService(t *testing.T) {
	client := setupAuthServer(t)
	ctx := context.Background()

	registered, err := client.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:       "alice@example.com",
		DisplayName: "Alice",
		Password:    "correct-horse",
	}))
	require.NoError(t, err)
	assert.NotEmpty(t, registered.Msg.Token)
	assert.Equal(t, "Alice", registered.Msg.User.DisplayName)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := client.Register(ctx, connect.NewRequest(&api.RegisterRequest{
			Email: "alice@example.com", DisplayName: "Other", Password: "correct-horse",
		}))
		requireCode(t, connect.CodeAlreadyExists, err)
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := client.Register(ctx, connect.NewRequest(&api.RegisterRequest{
			Email: "bob@example.com", DisplayName: "Bob", Password: "short",
		}))
		requireCode(t, connect.CodeInvalidArgument, err)
	})

	t.Run("missing display name", func(t *testing.T) {
		_, err := client.Register(ctx, connect.NewRequest(&api.RegisterRequest{
			Email: "bob@example.com", Password: "correct-horse",
		}))
		requireCode(t, connect.CodeInvalidArgument, err)
	})

	t.Run("login", func(t *testing.T) {
		resp, err := client.Login(ctx, connect.NewRequest(&api.LoginRequest{
			Email: "alice@example.com", Password: "correct-horse",
		}))
		require.NoError(t, err)
		assert.Equal(t, registered.Msg.User.ID, resp.Msg.User.ID)

		_, err = client.Login(ctx, connect.NewRequest(&api.LoginRequest{
			Email: "alice@example.com", Password: "wrong-horse",
		}))
		requireCode(t, connect.CodeUnauthenticated, err)
	})

	t.Run("current user", func(t *testing.T) {
		req := connect.NewRequest(&api.GetCurrentUserRequest{})
		req.Header().Set("Authorization", "Bearer "+registered.Msg.Token)
		resp, err := client.GetCurrentUser(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, registered.Msg.User, resp.Msg.User)

		_, err = client.GetCurrentUser(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
		requireCode(t, connect.CodeUnauthenticated, err)
	})
}
