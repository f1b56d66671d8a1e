package server

import (
	"context"
	"testing"
	"time"

	"github.com/johnsonjew/learning-journal/internal/server/config"
	"github.com/stretchr/testify/require"
)

func testConfig(dsn string) *config.Config {
	return &config.Config{
		EndpointAddr:            "127.0.0.1:0",
		DatabaseDSN:             dsn,
		SecretKey:               "secret",
		SessionValidityDuration: time.Hour,
		AdminUserName:           "admin",
		AdminPasswordHash:       "$2a$04$invalidbutunused",
	}
}

func TestNewApp_UnsupportedDSN(t *testing.T) {
	_, err := NewApp(context.Background(), testConfig("mysql://localhost/db"))
	require.Error(t, err)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig("file:app_run?mode=memory&cache=shared"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after context cancel")
	}
}
