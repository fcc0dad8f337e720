/*-
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package api exposes node rates over HTTP, a websocket stream and the
// Prometheus exposition format.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	httpx "github.com/mfreeman451/ictmon/pkg/http"
	"github.com/mfreeman451/ictmon/pkg/models"
	"github.com/mfreeman451/ictmon/pkg/registry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/netutil"
)

const (
	defaultMaxConns       = 64
	defaultStreamInterval = time.Second
	readHeaderTimeout     = 5 * time.Second
	writeWait             = 5 * time.Second
)

// Config controls the HTTP server.
type Config struct {
	ListenAddr     string
	MaxConns       int
	StreamInterval time.Duration
	Windows        models.WindowSpec
	StartedAt      time.Time
}

// Server is the HTTP API.
type Server struct {
	config   Config
	source   Source
	gatherer prometheus.Gatherer
	router   *mux.Router
	upgrader websocket.Upgrader
	logger   logrus.FieldLogger
	now      func() time.Time
}

// NewServer creates the API server. gatherer backs /metrics; nil disables it.
func NewServer(config Config, source Source, gatherer prometheus.Gatherer, logger logrus.FieldLogger) *Server {
	if config.MaxConns <= 0 {
		config.MaxConns = defaultMaxConns
	}

	if config.StreamInterval <= 0 {
		config.StreamInterval = defaultStreamInterval
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	s := &Server{
		config:   config,
		source:   source,
		gatherer: gatherer,
		router:   mux.NewRouter(),
		logger:   logger,
		now:      time.Now,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(httpx.CommonMiddleware, httpx.LoggingMiddleware(s.logger))

	s.router.HandleFunc("/api/status", s.getSystemStatus).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/api/nodes", s.getNodes).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/api/nodes/{name}", s.getNode).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/api/nodes/{name}/history", s.getNodeHistory).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/api/stream", s.stream).Methods(http.MethodGet)

	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) getSystemStatus(w http.ResponseWriter, _ *http.Request) {
	snaps := s.source.Snapshots()

	connected := 0

	for _, n := range snaps {
		if n.Connected {
			connected++
		}
	}

	status := models.SystemStatus{
		TotalNodes:     len(snaps),
		ConnectedNodes: connected,
		StartedAt:      s.config.StartedAt,
		Uptime:         s.now().Sub(s.config.StartedAt).Truncate(time.Second).String(),
		ShortHorizon:   s.config.Windows.ShortHorizon.String(),
		LongHorizon:    s.config.Windows.LongHorizon.String(),
	}

	s.writeJSON(w, status)
}

func (s *Server) getNodes(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.source.Snapshots())
}

func (s *Server) getNode(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	for _, n := range s.source.Snapshots() {
		if n.Name == name {
			s.writeJSON(w, n)

			return
		}
	}

	http.Error(w, "Node not found", http.StatusNotFound)
}

func (s *Server) getNodeHistory(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	history, err := s.source.History(name)
	if err != nil {
		if errors.Is(err, registry.ErrNodeNotFound) {
			http.Error(w, "Node not found", http.StatusNotFound)

			return
		}

		s.logger.WithError(err).WithField("node", name).Error("Failed to read history")
		http.Error(w, "Internal server error", http.StatusInternalServerError)

		return
	}

	s.writeJSON(w, history)
}

func (s *Server) stream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Debug("Websocket upgrade failed")

		return
	}
	defer conn.Close()

	// the client never sends; reading detects when it goes away
	gone := make(chan struct{})

	go func() {
		defer close(gone)

		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.config.StreamInterval)
	defer ticker.Stop()

	for {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))

		if err := conn.WriteJSON(s.source.Snapshots()); err != nil {
			s.logger.WithError(err).Debug("Stream client write failed")

			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-gone:
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("Error encoding response")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// ListenAndServe serves until ctx is cancelled, capping concurrent
// connections at MaxConns.
func (s *Server) ListenAndServe(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddr, err)
	}

	return s.Serve(ctx, lis)
}

// Serve serves on lis until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	stop := context.AfterFunc(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeWait)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	})
	defer stop()

	s.logger.WithField("address", lis.Addr().String()).Info("HTTP API listening")

	err := srv.Serve(netutil.LimitListener(lis, s.config.MaxConns))
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}
