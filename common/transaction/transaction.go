// Copyright 2022-2026 The Kortana Authors
// This file is part of the Kortana library.
//
// The Kortana library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The Kortana library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the Kortana library. If not, see <http://www.gnu.org/licenses/>.

// Package transaction defines the canonical transaction shape every ingress
// wire format normalizes into, and the RLP codec that serializes it.
package transaction

import (
	"sync"

	"github.com/holiman/uint256"

	"github.com/kortanachain/kortana/common/crypto"
	"github.com/kortanachain/kortana/common/encoding"
	"github.com/kortanachain/kortana/common/types"
	kerrors "github.com/kortanachain/kortana/pkg/errors"
)

// VMType selects which execution engine a transaction's Data targets.
type VMType uint8

const (
	// VMTypeNone marks a plain value transfer with no execution payload.
	VMTypeNone VMType = 0
	// VMTypeEVM routes Data through the EVM-subset interpreter.
	VMTypeEVM VMType = 1
	// VMTypeQuorlin routes Data through the auxiliary stack VM.
	VMTypeQuorlin VMType = 2
)

// Transaction is the canonical, wire-format-independent transaction every
// ingress decoder (native, legacy Ethereum, EIP-1559 typed) normalizes into.
type Transaction struct {
	Nonce    uint64
	From     types.Address
	To       types.Address // types.ZeroAddress signals contract deployment
	Value    *uint256.Int
	GasLimit uint64
	GasPrice *uint256.Int
	// GasTipCap is non-nil only for transactions ingested from the
	// EIP-1559 typed envelope, where GasPrice holds the fee cap and
	// GasTipCap the priority fee; the fee market resolves the two into
	// an effective gas price at inclusion time.
	GasTipCap *uint256.Int
	Data      []byte
	VMType    VMType
	ChainID   uint64

	R, S [32]byte
	V    byte

	cachedHash *types.Hash
	mu         sync.Mutex
}

// Hash returns the transaction's canonical hash: Keccak-256 of its RLP
// encoding excluding the signature. Computed once and memoized. It is not a
// hash of the raw ingress bytes: the decoders keep no hash of the payload
// they were given, so a wallet-computed Keccak-256 of the raw bytes differs
// from this value.
func (tx *Transaction) Hash() types.Hash {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.cachedHash != nil {
		return *tx.cachedHash
	}
	h := crypto.Keccak256(tx.signingPayload())
	tx.cachedHash = &h
	return h
}

// SigningHash returns the digest that was actually signed: the same
// Keccak-256 domain as Hash, computed over the unsigned payload.
func (tx *Transaction) SigningHash() types.Hash {
	return crypto.Keccak256(tx.signingPayload())
}

func (tx *Transaction) signingPayload() []byte {
	var body []byte
	body = encoding.EncodeUint64(body, tx.ChainID)
	body = encoding.EncodeUint64(body, tx.Nonce)
	body = encoding.EncodeBytes(body, tx.To.Bytes())
	body = encoding.EncodeBytes(body, tx.Value.Bytes())
	body = encoding.EncodeUint64(body, tx.GasLimit)
	body = encoding.EncodeBytes(body, tx.GasPrice.Bytes())
	body = encoding.EncodeBytes(body, tx.Data)
	body = encoding.EncodeUint64(body, uint64(tx.VMType))
	return encoding.EncodeList(nil, body)
}

// Sign signs the transaction's SigningHash with priv, populating From, R,
// S, and V, and recomputing the cached hash.
func (tx *Transaction) Sign(priv *crypto.PrivateKey) error {
	digest := tx.SigningHash()
	r, s, v, err := priv.Sign(digest)
	if err != nil {
		return err
	}
	tx.From = priv.Address()
	tx.R, tx.S, tx.V = r, s, v
	tx.mu.Lock()
	tx.cachedHash = nil
	tx.mu.Unlock()
	return nil
}

// RecoverSender recomputes the sender address from the signature over
// SigningHash. It does not compare the result with tx.From or set it.
func (tx *Transaction) RecoverSender() (types.Address, error) {
	digest := tx.SigningHash()
	sender, err := crypto.RecoverSender(digest, tx.R, tx.S, tx.V)
	if err != nil {
		return types.Address{}, kerrors.Wrap(err, "recover sender")
	}
	return sender, nil
}

// IntrinsicGas returns the minimum gas a transaction of this shape must
// supply: the base call/deployment cost plus a per-byte payload surcharge.
func (tx *Transaction) IntrinsicGas(callCost, deployCost, nonZeroByteCost, zeroByteCost uint64) uint64 {
	cost := callCost
	if tx.To.IsZero() {
		cost = deployCost
	}
	for _, b := range tx.Data {
		if b == 0 {
			cost += zeroByteCost
		} else {
			cost += nonZeroByteCost
		}
	}
	return cost
}

// IsDeployment reports whether this transaction targets the reserved
// all-zero address, signaling contract deployment.
func (tx *Transaction) IsDeployment() bool {
	return tx.To.IsZero()
}

// EncodeRLP serializes the transaction in its native 10-element RLP list
// form: [chain_id, nonce, to, value, gas_limit, gas_price, data, vm_type, v, r||s].
func (tx *Transaction) EncodeRLP() []byte {
	var body []byte
	body = encoding.EncodeUint64(body, tx.ChainID)
	body = encoding.EncodeUint64(body, tx.Nonce)
	body = encoding.EncodeBytes(body, tx.To.Bytes())
	body = encoding.EncodeBytes(body, tx.Value.Bytes())
	body = encoding.EncodeUint64(body, tx.GasLimit)
	body = encoding.EncodeBytes(body, tx.GasPrice.Bytes())
	body = encoding.EncodeBytes(body, tx.Data)
	body = encoding.EncodeUint64(body, uint64(tx.VMType))
	body = encoding.EncodeUint64(body, uint64(tx.V))
	var sig [64]byte
	copy(sig[:32], tx.R[:])
	copy(sig[32:], tx.S[:])
	body = encoding.EncodeBytes(body, sig[:])
	return encoding.EncodeList(nil, body)
}
