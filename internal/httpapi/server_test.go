// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RoleGate Contributors

package httpapi_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/rolegate/rolegate/internal/httpapi"
)

func TestServer_ServesAndStopsCleanly(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	f := newFixture(t, nil)
	server := httpapi.NewServer("127.0.0.1:0", f.handler, slog.New(slog.DiscardHandler))

	errCh, err := server.Start()
	require.NoError(t, err)
	require.NotEmpty(t, server.Addr())

	client := &http.Client{Transport: &http.Transport{}}
	resp, err := client.Get("http://" + server.Addr() + "/healthz")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	client.CloseIdleConnections()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var decoded map[string]string
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "ok", decoded["status"])

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, server.Stop(ctx))

	select {
	case err, ok := <-errCh:
		if ok {
			assert.NoError(t, err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("error channel not closed after stop")
	}
}

func TestServer_DoubleStartFails(t *testing.T) {
	server := httpapi.NewServer("127.0.0.1:0", http.NotFoundHandler(), slog.New(slog.DiscardHandler))

	_, err := server.Start()
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Stop(context.Background()) })

	_, err = server.Start()
	assert.Error(t, err)
}

func TestServer_ListenFailure(t *testing.T) {
	first := httpapi.NewServer("127.0.0.1:0", http.NotFoundHandler(), slog.New(slog.DiscardHandler))
	_, err := first.Start()
	require.NoError(t, err)
	t.Cleanup(func() { _ = first.Stop(context.Background()) })

	second := httpapi.NewServer(first.Addr(), http.NotFoundHandler(), slog.New(slog.DiscardHandler))
	_, err = second.Start()
	require.Error(t, err)
	assert.Empty(t, second.Addr())
	assert.NoError(t, second.Stop(context.Background()))
}

func TestServer_StopBeforeStart(t *testing.T) {
	server := httpapi.NewServer("127.0.0.1:0", http.NotFoundHandler(), nil)
	assert.NoError(t, server.Stop(context.Background()))
}
