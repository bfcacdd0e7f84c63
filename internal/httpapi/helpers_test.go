// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 RoleGate Contributors

package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/rolegate/rolegate/internal/auth"
	"github.com/rolegate/rolegate/internal/auth/memory"
	"github.com/rolegate/rolegate/internal/httpapi"
)

const testSecret = "httpapi-test-secret"

// fixture is a fully wired API over an in-memory store seeded with the
// default accounts.
type fixture struct {
	api     *httpapi.API
	handler http.Handler
	users   *memory.UserRepository
	tokens  *auth.TokenService
	metrics *countingRecorder
	logs    *bytes.Buffer
}

// failer is the subset of testing.TB and ginkgo's GinkgoT() used here.
type failer interface {
	Helper()
	Fatalf(format string, args ...any)
}

func newFixture(t failer, clock func() time.Time) *fixture {
	t.Helper()

	users := memory.NewUserRepository()
	hasher, err := auth.NewArgon2idHasherWithParams(auth.Argon2Params{Time: 1, Memory: 1024, Threads: 1})
	if err != nil {
		t.Fatalf("hasher: %v", err)
	}
	opts := []auth.TokenOption{}
	if clock != nil {
		opts = append(opts, auth.WithClock(clock))
	}
	tokens, err := auth.NewTokenService(testSecret, opts...)
	if err != nil {
		t.Fatalf("token service: %v", err)
	}

	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(logs, nil))

	if _, err := auth.SeedAccounts(context.Background(), users, hasher, auth.DefaultAccounts(), logger); err != nil {
		t.Fatalf("seed: %v", err)
	}

	svc, err := auth.NewAuthServiceWithLogger(users, hasher, tokens, logger)
	if err != nil {
		t.Fatalf("service: %v", err)
	}

	metrics := newCountingRecorder()
	api, err := httpapi.New(httpapi.Options{
		Auth:    svc,
		Metrics: metrics,
		Logger:  logger,
	})
	if err != nil {
		t.Fatalf("api: %v", err)
	}

	return &fixture{
		api:     api,
		handler: api.Handler(),
		users:   users,
		tokens:  tokens,
		metrics: metrics,
		logs:    logs,
	}
}

type response struct {
	status int
	body   map[string]any
	raw    string
	header http.Header
}

func (f *fixture) do(method, path, token string, body any) response {
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			data, _ := json.Marshal(b)
			reader = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	resp := response{status: rec.Code, raw: rec.Body.String(), header: rec.Header()}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp.body)
	return resp
}

func (f *fixture) login(username, password string) response {
	return f.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
}

func (f *fixture) tokenFor(t failer, username, password string) string {
	t.Helper()
	resp := f.login(username, password)
	if resp.status != http.StatusOK {
		t.Fatalf("login %s: status %d: %s", username, resp.status, resp.raw)
	}
	token, _ := resp.body["token"].(string)
	return token
}

// countingRecorder counts metric events so tests can assert on them.
type countingRecorder struct {
	logins         map[string]int
	registrations  map[string]int
	authorizations map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		logins:         map[string]int{},
		registrations:  map[string]int{},
		authorizations: map[string]int{},
	}
}

func (r *countingRecorder) RecordLogin(outcome string)        { r.logins[outcome]++ }
func (r *countingRecorder) RecordRegistration(outcome string) { r.registrations[outcome]++ }
func (r *countingRecorder) RecordAuthorization(resource, decision string) {
	r.authorizations[resource+"/"+decision]++
}
