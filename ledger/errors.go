// Copyright (c) 2025 The stakepoint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import "errors"

// Stable error kinds of the ledger. Every operation fails with exactly
// one of these (or a collaborator's kind), and callers branch on the
// kind, not on the message.
var (
	ErrUnauthorized      = errors.New("unauthorized access")
	ErrInvalidTimestamp  = errors.New("invalid timestamp")
	ErrOverflow          = errors.New("arithmetic overflow")
	ErrUnderflow         = errors.New("arithmetic underflow")
	ErrInvalidAmount     = errors.New("amount must be greater than 0")
	ErrInsufficientStake = errors.New("insufficient stake amount")
	ErrAccountExists     = errors.New("stake account already exists")
	ErrAccountNotFound   = errors.New("stake account not found")
)
