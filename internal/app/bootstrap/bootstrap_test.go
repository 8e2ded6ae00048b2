package bootstrap

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/wolfman30/mindcare/internal/api"
	"github.com/wolfman30/mindcare/internal/cache"
	appconfig "github.com/wolfman30/mindcare/internal/config"
	"github.com/wolfman30/mindcare/internal/fakebackend"
	"github.com/wolfman30/mindcare/pkg/logging"
)

func TestBuildRedisClientDisabled(t *testing.T) {
	if client := BuildRedisClient(context.Background(), nil, logging.Discard(), true); client != nil {
		t.Fatalf("expected nil client for nil config")
	}
	if client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: "  "}, logging.Discard(), true); client != nil {
		t.Fatalf("expected nil client for blank address")
	}
}

func TestBuildRedisClientVerifies(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	cfg := &appconfig.Config{RedisAddr: mr.Addr()}

	client := BuildRedisClient(context.Background(), cfg, logging.Discard(), true)
	if client == nil {
		t.Fatalf("expected client for reachable redis")
	}
	_ = client.Close()

	mr.Close()
	if client := BuildRedisClient(context.Background(), cfg, logging.Discard(), true); client != nil {
		t.Fatalf("expected nil client when ping fails")
	}
}

func TestBuildBackend(t *testing.T) {
	if _, err := BuildBackend(nil, nil, nil, logging.Discard()); err == nil {
		t.Fatalf("expected error for nil api client")
	}

	apiClient := api.NewClient("http://localhost:0/api", logging.Discard())
	backend, err := BuildBackend(apiClient, nil, &appconfig.Config{}, logging.Discard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if backend != apiClient {
		t.Fatalf("expected the api client without redis")
	}

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(mr.Close)
	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logging.Discard(), false)
	t.Cleanup(func() { _ = client.Close() })

	backend, err = BuildBackend(apiClient, client, &appconfig.Config{DirectoryCacheTTL: time.Minute}, logging.Discard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := backend.(*cache.Directory); !ok {
		t.Fatalf("expected cached directory, got %T", backend)
	}
}

func TestBuildFakeBackendRequiresConfig(t *testing.T) {
	if _, err := BuildFakeBackend(nil, logging.Discard()); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestBuildFakeBackendAdminAndSeed(t *testing.T) {
	cfg := &appconfig.Config{
		FakeBackendSecret:        "test-secret",
		FakeBackendSeed:          true,
		FakeBackendAdminEmail:    "root@mindcare.test",
		FakeBackendAdminPassword: "root-pass",
		FakeBackendAdminName:     "Root",
	}
	srv, err := BuildFakeBackend(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	ctx := context.Background()

	admin := api.NewClient(ts.URL+"/api", logging.Discard())
	user, err := admin.Login(ctx, "root@mindcare.test", "root-pass")
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if user.Role != api.RoleAdmin {
		t.Fatalf("expected admin role, got %s", user.Role)
	}

	counselor := api.NewClient(ts.URL+"/api", logging.Discard())
	if _, err := counselor.Login(ctx, "rivera@mindcare.test", fakebackend.DemoPassword); err != nil {
		t.Fatalf("seeded counselor login: %v", err)
	}
}
