// Copyright (c) 2025 The stakepoint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stakepoint/stakepoint/ledger"
	"github.com/stakepoint/stakepoint/lvldb"
	"github.com/stakepoint/stakepoint/state"
	"github.com/stakepoint/stakepoint/token"
	"github.com/stakepoint/stakepoint/vault"
)

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	db, err := lvldb.NewMem()
	assert.NoError(t, err)
	st := state.New(db)
	tok := token.New(st)
	l := ledger.New(st, vault.New(st), token.NewIssuer(tok))

	ts := httptest.NewServer(New(l, tok, nil, opts))
	t.Cleanup(ts.Close)
	return ts
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, Options{AllowedOrigins: "*"})

	res, err := http.Get(ts.URL + "/health")
	assert.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var body map[string]bool
	assert.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.True(t, body["healthy"])
}

func TestCORSHeader(t *testing.T) {
	ts := newTestServer(t, Options{AllowedOrigins: "*"})

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	assert.NoError(t, err)
	req.Header.Set("Origin", "https://example.com")
	res, err := http.DefaultClient.Do(req)
	assert.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, Options{AllowedOrigins: "*", EnableMetrics: true})

	res, err := http.Get(ts.URL + "/metrics")
	assert.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t, Options{AllowedOrigins: "*"})

	res, err := http.Get(ts.URL + "/nope")
	assert.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
