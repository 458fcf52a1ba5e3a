// Copyright (c) 2025 The stakepoint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/stakepoint/stakepoint/lvldb"
	"github.com/stakepoint/stakepoint/stakepoint"
	"github.com/stakepoint/stakepoint/state"
	"github.com/stakepoint/stakepoint/token"
)

func newTestServer(t *testing.T) (*httptest.Server, *token.Token) {
	db, err := lvldb.NewMem()
	assert.NoError(t, err)
	tok := token.New(state.New(db))

	router := mux.NewRouter()
	New(tok).Mount(router, "/rewards")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts, tok
}

func TestGetToken(t *testing.T) {
	ts, tok := newTestServer(t)

	res, err := http.Get(ts.URL + "/rewards/token")
	assert.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	assert.NoError(t, tok.RegisterMetadata(token.Metadata{Name: "Reward Token", Symbol: "REWARD", URI: "https://example.com/reward.json"}))

	res, err = http.Get(ts.URL + "/rewards/token")
	assert.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var info TokenInfo
	assert.NoError(t, json.NewDecoder(res.Body).Decode(&info))
	assert.Equal(t, "REWARD", info.Symbol)
	assert.Equal(t, tok.MintAuthority(), info.Authority)
	assert.Equal(t, uint64(0), info.TotalSupply)
}

func TestGetBalance(t *testing.T) {
	ts, tok := newTestServer(t)
	alice := stakepoint.BytesToAddress([]byte("alice"))
	holding, _ := stakepoint.DeriveAccount(alice, stakepoint.RewardHoldingLabel)
	assert.NoError(t, tok.Mint(tok.MintAuthority(), alice, holding, 9))

	res, err := http.Get(ts.URL + "/rewards/" + alice.String() + "/balance")
	assert.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var bal Balance
	assert.NoError(t, json.NewDecoder(res.Body).Decode(&bal))
	assert.Equal(t, alice, bal.Owner)
	assert.Equal(t, uint64(9), bal.Balance)
}

func TestGetBalanceBadOwner(t *testing.T) {
	ts, _ := newTestServer(t)
	res, err := http.Get(ts.URL + "/rewards/nonsense/balance")
	assert.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}
