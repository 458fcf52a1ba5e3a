// Copyright (c) 2025 The stakepoint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package rewards exposes read-only views of the reward token.
package rewards

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/stakepoint/stakepoint/api/utils"
	"github.com/stakepoint/stakepoint/stakepoint"
	"github.com/stakepoint/stakepoint/token"
)

type Rewards struct {
	token *token.Token
}

// New creates the rewards endpoint group.
func New(tok *token.Token) *Rewards {
	return &Rewards{tok}
}

// TokenInfo describes the reward token.
type TokenInfo struct {
	Name        string             `json:"name"`
	Symbol      string             `json:"symbol"`
	URI         string             `json:"uri"`
	Authority   stakepoint.Address `json:"authority"`
	TotalSupply uint64             `json:"totalSupply"`
}

// Balance is one owner's reward holding.
type Balance struct {
	Owner   stakepoint.Address `json:"owner"`
	Balance uint64             `json:"balance"`
}

func (r *Rewards) handleGetToken(w http.ResponseWriter, _ *http.Request) error {
	meta, err := r.token.Metadata()
	if err != nil {
		return err
	}
	if meta == nil {
		return utils.NotFound(errors.New("reward token not registered"))
	}
	supply, err := r.token.TotalSupply()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &TokenInfo{
		Name:        meta.Name,
		Symbol:      meta.Symbol,
		URI:         meta.URI,
		Authority:   r.token.MintAuthority(),
		TotalSupply: supply,
	})
}

func (r *Rewards) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	owner, err := stakepoint.ParseAddress(mux.Vars(req)["owner"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "owner"))
	}
	bal, err := r.token.BalanceOf(*owner)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Balance{Owner: *owner, Balance: bal})
}

// Mount mounts the endpoints to the path prefix.
func (r *Rewards) Mount(router *mux.Router, pathPrefix string) {
	sub := router.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/token").
		Methods(http.MethodGet).
		HandlerFunc(utils.WrapHandlerFunc(r.handleGetToken))
	sub.Path("/{owner}/balance").
		Methods(http.MethodGet).
		HandlerFunc(utils.WrapHandlerFunc(r.handleGetBalance))
}
