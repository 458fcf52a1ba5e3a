// Copyright (c) 2025 The stakepoint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakepoint

// DeriveAccount deterministically derives the address of the account
// controlled by (owner, label), together with the nonce that produced
// it. The nonce is searched downward from 255 until the derived digest
// falls outside the reserved range (leading zero byte), so re-deriving
// with the returned nonce always reproduces the same address. The nonce
// is retained in ledger records so the record itself can later present
// an authorization proof for outbound transfers.
func DeriveAccount(owner Address, label []byte) (Address, uint8) {
	for i := 255; i >= 0; i-- {
		nonce := uint8(i)
		h := Keccak256(label, owner.Bytes(), []byte{nonce})
		if h[0] != 0 {
			return BytesToAddress(h[12:]), nonce
		}
	}
	// 256 consecutive digests with a leading zero byte; not reachable.
	panic("account derivation exhausted")
}

// VerifyDerived reports whether addr is the address derived from
// (owner, label) with the given nonce.
func VerifyDerived(addr, owner Address, label []byte, nonce uint8) bool {
	h := Keccak256(label, owner.Bytes(), []byte{nonce})
	if h[0] == 0 {
		return false
	}
	return BytesToAddress(h[12:]) == addr
}
