// Copyright (c) 2025 The stakepoint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package auth is the proof-of-identity boundary: operations are signed
// with the caller's secp256k1 key, and the recovered signer address is
// the proven identity handed to the ledger.
package auth

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/stakepoint/stakepoint/stakepoint"
)

// OperationDigest computes the canonical signing digest of an
// operation.
func OperationDigest(kind string, owner stakepoint.Address, amount uint64, timestamp int64) stakepoint.Bytes32 {
	data, _ := rlp.EncodeToBytes([]any{kind, owner.Bytes(), amount, uint64(timestamp)})
	return stakepoint.Keccak256(data)
}

// Sign signs the digest, returning a 65-byte recoverable signature.
func Sign(digest stakepoint.Bytes32, priv *ecdsa.PrivateKey) ([]byte, error) {
	return crypto.Sign(digest.Bytes(), priv)
}

// Recover returns the identity that produced sig over digest.
func Recover(digest stakepoint.Bytes32, sig []byte) (stakepoint.Address, error) {
	pub, err := crypto.SigToPub(digest.Bytes(), sig)
	if err != nil {
		return stakepoint.Address{}, err
	}
	return stakepoint.PubkeyToAddress(pub), nil
}
