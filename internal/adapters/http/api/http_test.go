package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/touchgest/internal/adapters/http/api"
	"github.com/okian/touchgest/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

type mockStats struct {
	stats types.Stats
	calls int
}

func (m *mockStats) GetStats() types.Stats {
	m.calls++
	return m.stats
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		provider := &mockStats{stats: types.Stats{
			Phase:         types.PhaseRecognizing,
			Bounds:        &types.Bounds{MaxX: 990, MaxY: 600},
			Rules:         3,
			Gestures:      7,
			QueueCapacity: 64,
		}}
		server := api.NewServer(provider)
		mux := http.NewServeMux()

		Convey("When registering routes", func() {
			server.Register(context.Background(), mux)

			Convey("Then the health endpoint serves metrics", func() {
				req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "touchgest_rules_loaded")
			})

			Convey("And the stats endpoint serves the snapshot", func() {
				req := httptest.NewRequest(http.MethodGet, "/stats", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")

				var got types.Stats
				So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
				So(got.Phase, ShouldEqual, types.PhaseRecognizing)
				So(got.Rules, ShouldEqual, 3)
				So(got.Gestures, ShouldEqual, 7)
				So(got.Bounds, ShouldNotBeNil)
				So(got.Bounds.MaxX, ShouldEqual, 990)
				So(provider.calls, ShouldEqual, 1)
			})

			Convey("And unknown paths are not found", func() {
				req := httptest.NewRequest(http.MethodGet, "/events", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestStatsHandler_HandleStats(t *testing.T) {
	Convey("Given a stats handler", t, func() {
		provider := &mockStats{}
		handler := api.NewStatsHandler(provider)

		Convey("When handling a non-GET request", func() {
			req := httptest.NewRequest(http.MethodPost, "/stats", nil)
			w := httptest.NewRecorder()
			handler.HandleStats(w, req)

			Convey("Then it should return method not allowed", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
				So(w.Body.String(), ShouldContainSubstring, "method_not_allowed")
				So(provider.calls, ShouldEqual, 0)
			})
		})

		Convey("When no provider is configured", func() {
			handler := api.NewStatsHandler(nil)
			req := httptest.NewRequest(http.MethodGet, "/stats", nil)
			w := httptest.NewRecorder()
			handler.HandleStats(w, req)

			Convey("Then it should return service unavailable", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(w.Body.String(), ShouldContainSubstring, api.ErrNoStats.Error())
			})
		})
	})
}

func TestHealthHandler_HandleHealth(t *testing.T) {
	Convey("Given a health handler", t, func() {
		handler := api.NewHealthHandler()

		Convey("When handling a DELETE request", func() {
			req := httptest.NewRequest(http.MethodDelete, "/healthz", nil)
			w := httptest.NewRecorder()
			handler.HandleHealth(w, req)

			Convey("Then it should return method not allowed", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestMetricsMiddleware(t *testing.T) {
	Convey("Given a handler wrapped by the metrics middleware", t, func() {
		var called bool
		h := api.MetricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
			called = true
			w.WriteHeader(http.StatusTeapot)
			_, _ = w.Write([]byte("short and stout"))
		}, "teapot")

		Convey("When it is served", func() {
			w := httptest.NewRecorder()
			h(w, httptest.NewRequest(http.MethodGet, "/teapot", nil))

			Convey("Then the wrapped handler's response passes through", func() {
				So(called, ShouldBeTrue)
				So(w.Code, ShouldEqual, http.StatusTeapot)
				So(w.Body.String(), ShouldEqual, "short and stout")
			})
		})
	})
}

func TestListenAndServe(t *testing.T) {
	Convey("Given a status server on a free port", t, func() {
		srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux(), ReadHeaderTimeout: time.Second}
		ctx, cancel := context.WithCancel(context.Background())

		Convey("When the context is cancelled", func() {
			done := make(chan error, 1)
			go func() { done <- api.ListenAndServe(ctx, srv) }()
			cancel()

			Convey("Then it shuts down cleanly", func() {
				select {
				case err := <-done:
					So(err, ShouldBeNil)
				case <-time.After(5 * time.Second):
					So("timeout", ShouldBeEmpty)
				}
			})
		})
		cancel()
	})

	Convey("Given an address that is already taken", t, func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		So(err, ShouldBeNil)
		defer func() { _ = ln.Close() }()

		srv := &http.Server{Addr: ln.Addr().String(), ReadHeaderTimeout: time.Second}

		Convey("Then the listen error is wrapped with ErrServe", func() {
			err := api.ListenAndServe(context.Background(), srv)
			So(errors.Is(err, api.ErrServe), ShouldBeTrue)
		})
	})
}
