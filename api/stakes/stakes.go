// Copyright (c) 2025 The stakepoint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stakes exposes the stake account operations over HTTP.
// Mutating endpoints carry a recoverable signature over the canonical
// operation digest; the recovered signer is the proven caller identity
// handed to the ledger. Reads are open projections.
package stakes

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/stakepoint/stakepoint/api/utils"
	"github.com/stakepoint/stakepoint/auth"
	"github.com/stakepoint/stakepoint/eventdb"
	"github.com/stakepoint/stakepoint/ledger"
	"github.com/stakepoint/stakepoint/stakepoint"
	"github.com/stakepoint/stakepoint/token"
	"github.com/stakepoint/stakepoint/vault"
)

// logger resolves lazily so the handler installed at startup is used.
func logger() *slog.Logger {
	return slog.Default().With("pkg", "api")
}

// signatures older or newer than this are rejected
const signatureFreshness = 5 * time.Minute

const (
	maxHistoryLimit     = 100
	defaultHistoryLimit = 20
)

type Stakes struct {
	ledger *ledger.Ledger
	events *eventdb.EventDB
	now    func() int64
}

// New creates the stakes endpoint group. events may be nil to disable
// history.
func New(l *ledger.Ledger, events *eventdb.EventDB) *Stakes {
	return &Stakes{
		ledger: l,
		events: events,
		now:    func() int64 { return time.Now().Unix() },
	}
}

func (s *Stakes) handleCreate(w http.ResponseWriter, req *http.Request) error {
	var body CreateRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	caller, err := s.provenCaller("create", body.Owner, 0, body.Timestamp, body.Signature)
	if err != nil {
		return err
	}
	if caller != body.Owner {
		return utils.Forbidden(ledger.ErrUnauthorized)
	}

	now := s.now()
	if err := s.ledger.Create(body.Owner, now); err != nil {
		return convertLedgerError(err)
	}
	s.appendEvent(&eventdb.Event{Time: now, Kind: "create", Owner: body.Owner})
	w.WriteHeader(http.StatusCreated)
	return nil
}

func (s *Stakes) handleGet(w http.ResponseWriter, req *http.Request) error {
	owner, err := ownerVar(req)
	if err != nil {
		return err
	}
	proj, err := s.ledger.GetPoints(owner, owner, s.now())
	if err != nil {
		return convertLedgerError(err)
	}
	return utils.WriteJSON(w, convertProjection(owner, proj))
}

func (s *Stakes) handleStake(w http.ResponseWriter, req *http.Request) error {
	owner, body, caller, err := s.parseOp(req, "stake")
	if err != nil {
		return err
	}
	now := s.now()
	if err := s.ledger.Stake(caller, owner, body.Amount, now); err != nil {
		return convertLedgerError(err)
	}
	s.appendEvent(&eventdb.Event{Time: now, Kind: "stake", Owner: owner, Amount: body.Amount})
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (s *Stakes) handleUnstake(w http.ResponseWriter, req *http.Request) error {
	owner, body, caller, err := s.parseOp(req, "unstake")
	if err != nil {
		return err
	}
	now := s.now()
	if err := s.ledger.Unstake(caller, owner, body.Amount, now); err != nil {
		return convertLedgerError(err)
	}
	s.appendEvent(&eventdb.Event{Time: now, Kind: "unstake", Owner: owner, Amount: body.Amount})
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (s *Stakes) handleClaim(w http.ResponseWriter, req *http.Request) error {
	owner, _, caller, err := s.parseOp(req, "claim")
	if err != nil {
		return err
	}
	now := s.now()
	claimed, err := s.ledger.ClaimPoints(caller, owner, now)
	if err != nil {
		return convertLedgerError(err)
	}
	s.appendEvent(&eventdb.Event{Time: now, Kind: "claim", Owner: owner, Points: claimed})
	return utils.WriteJSON(w, &ClaimResult{Claimed: claimed})
}

func (s *Stakes) handleHistory(w http.ResponseWriter, req *http.Request) error {
	owner, err := ownerVar(req)
	if err != nil {
		return err
	}
	if s.events == nil {
		return utils.NotFound(errors.New("history disabled"))
	}
	offset, limit, err := pagingParams(req)
	if err != nil {
		return err
	}
	events, err := s.events.QueryByOwner(owner, offset, limit)
	if err != nil {
		return err
	}
	converted := make([]*Event, 0, len(events))
	for _, ev := range events {
		converted = append(converted, convertEvent(ev))
	}
	return utils.WriteJSON(w, converted)
}

// parseOp decodes the request body of a mutating per-account endpoint
// and recovers the proven caller from its signature.
func (s *Stakes) parseOp(req *http.Request, kind string) (stakepoint.Address, *OpRequest, stakepoint.Address, error) {
	owner, err := ownerVar(req)
	if err != nil {
		return stakepoint.Address{}, nil, stakepoint.Address{}, err
	}
	var body OpRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return stakepoint.Address{}, nil, stakepoint.Address{}, utils.BadRequest(errors.WithMessage(err, "body"))
	}
	caller, err := s.provenCaller(kind, owner, body.Amount, body.Timestamp, body.Signature)
	if err != nil {
		return stakepoint.Address{}, nil, stakepoint.Address{}, err
	}
	return owner, &body, caller, nil
}

func (s *Stakes) provenCaller(kind string, owner stakepoint.Address, amount uint64, timestamp int64, sig []byte) (stakepoint.Address, error) {
	age := time.Duration(s.now()-timestamp) * time.Second
	if age > signatureFreshness || age < -signatureFreshness {
		return stakepoint.Address{}, utils.BadRequest(errors.New("signature timestamp out of window"))
	}
	digest := auth.OperationDigest(kind, owner, amount, timestamp)
	caller, err := auth.Recover(digest, sig)
	if err != nil {
		return stakepoint.Address{}, utils.BadRequest(errors.WithMessage(err, "signature"))
	}
	return caller, nil
}

func (s *Stakes) appendEvent(ev *eventdb.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Append(ev); err != nil {
		// history is advisory, the operation already committed
		logger().Warn("failed to append op event", "err", err)
	}
}

func ownerVar(req *http.Request) (stakepoint.Address, error) {
	owner, err := stakepoint.ParseAddress(mux.Vars(req)["owner"])
	if err != nil {
		return stakepoint.Address{}, utils.BadRequest(errors.WithMessage(err, "owner"))
	}
	return *owner, nil
}

func pagingParams(req *http.Request) (offset, limit uint64, err error) {
	query := req.URL.Query()
	limit = defaultHistoryLimit
	if v := query.Get("offset"); v != "" {
		if offset, err = strconv.ParseUint(v, 10, 64); err != nil {
			return 0, 0, utils.BadRequest(errors.WithMessage(err, "offset"))
		}
	}
	if v := query.Get("limit"); v != "" {
		if limit, err = strconv.ParseUint(v, 10, 64); err != nil {
			return 0, 0, utils.BadRequest(errors.WithMessage(err, "limit"))
		}
		if limit > maxHistoryLimit {
			limit = maxHistoryLimit
		}
	}
	return offset, limit, nil
}

// convertLedgerError maps stable ledger error kinds onto http statuses.
func convertLedgerError(err error) error {
	switch err {
	case ledger.ErrUnauthorized:
		return utils.Forbidden(err)
	case ledger.ErrAccountNotFound:
		return utils.NotFound(err)
	case ledger.ErrAccountExists:
		return utils.Conflict(err)
	case ledger.ErrInvalidAmount,
		ledger.ErrInvalidTimestamp,
		ledger.ErrInsufficientStake,
		ledger.ErrOverflow,
		ledger.ErrUnderflow,
		vault.ErrInsufficientFunds,
		vault.ErrProofMismatch,
		vault.ErrBalanceOverflow,
		token.ErrInvalidMintAuthority,
		token.ErrInvalidTokenAccount,
		token.ErrSupplyOverflow:
		return utils.BadRequest(err)
	}
	return err
}

// Mount mounts the endpoints to the path prefix.
func (s *Stakes) Mount(router *mux.Router, pathPrefix string) {
	sub := router.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		HandlerFunc(utils.WrapHandlerFunc(s.handleCreate))
	sub.Path("/{owner}").
		Methods(http.MethodGet).
		HandlerFunc(utils.WrapHandlerFunc(s.handleGet))
	sub.Path("/{owner}/deposits").
		Methods(http.MethodPost).
		HandlerFunc(utils.WrapHandlerFunc(s.handleStake))
	sub.Path("/{owner}/withdrawals").
		Methods(http.MethodPost).
		HandlerFunc(utils.WrapHandlerFunc(s.handleUnstake))
	sub.Path("/{owner}/claims").
		Methods(http.MethodPost).
		HandlerFunc(utils.WrapHandlerFunc(s.handleClaim))
	sub.Path("/{owner}/history").
		Methods(http.MethodGet).
		HandlerFunc(utils.WrapHandlerFunc(s.handleHistory))
}
