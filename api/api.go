// Copyright (c) 2025 The stakepoint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api assembles the HTTP surface of a stakepoint instance.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/stakepoint/stakepoint/api/rewards"
	"github.com/stakepoint/stakepoint/api/stakes"
	"github.com/stakepoint/stakepoint/api/utils"
	"github.com/stakepoint/stakepoint/eventdb"
	"github.com/stakepoint/stakepoint/ledger"
	"github.com/stakepoint/stakepoint/metrics"
	"github.com/stakepoint/stakepoint/token"
)

// Options configures the API surface.
type Options struct {
	AllowedOrigins string
	EnableMetrics  bool
}

// New returns the api handler.
func New(l *ledger.Ledger, tok *token.Token, events *eventdb.EventDB, opts Options) http.HandlerFunc {
	router := mux.NewRouter()

	stakes.New(l, events).Mount(router, "/stakes")
	if tok != nil {
		rewards.New(tok).Mount(router, "/rewards")
	}

	router.Path("/health").Methods(http.MethodGet).HandlerFunc(
		utils.WrapHandlerFunc(func(w http.ResponseWriter, _ *http.Request) error {
			return utils.WriteJSON(w, map[string]bool{"healthy": true})
		}))

	if opts.EnableMetrics {
		router.Path("/metrics").Handler(metrics.HTTPHandler())
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)

	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
		handlers.AllowedMethods([]string{"GET", "POST"}),
	)(handler)

	return handler.ServeHTTP
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		started := time.Now()
		next.ServeHTTP(w, req)

		path := req.URL.Path
		if route := mux.CurrentRoute(req); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}
		metrics.ObserveHTTP(path, req.Method, time.Since(started).Seconds())
	})
}
