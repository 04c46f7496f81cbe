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

package transaction

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/kortanachain/kortana/common/encoding"
	"github.com/kortanachain/kortana/common/types"
	kerrors "github.com/kortanachain/kortana/pkg/errors"
)

// All three decoders recover the sender against the same canonical
// signing payload (Transaction.SigningHash), not each wire format's own
// native preimage. A gateway bridging real Ethereum clients would need to
// reconstruct each format's exact historical signing hash instead; this
// node accepts the three envelope shapes as framing only and treats the
// signature as covering the normalized fields.

// typedEnvelopePrefix is the EIP-1559 typed-transaction marker byte.
const typedEnvelopePrefix = 0x02

// DecodeTransaction normalizes any of the three accepted ingress wire
// formats — native 10-element RLP, legacy 9-element Ethereum RLP, or
// EIP-1559 typed — into a canonical Transaction with its sender recovered.
func DecodeTransaction(raw []byte, defaultChainID uint64) (*Transaction, error) {
	if len(raw) == 0 {
		return nil, kerrors.Wrap(kerrors.ErrMalformedTransaction, "empty payload")
	}

	if raw[0] == typedEnvelopePrefix {
		return decodeTyped(raw[1:])
	}

	val, rest, err := encoding.Decode(raw)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrMalformedTransaction, err.Error())
	}
	if len(rest) != 0 {
		return nil, kerrors.Wrap(kerrors.ErrMalformedTransaction, "trailing bytes after transaction")
	}
	if !val.IsList {
		return nil, kerrors.Wrap(kerrors.ErrUnsupportedTxEnvelope, "expected an RLP list")
	}

	switch len(val.List) {
	case 10:
		return decodeNative(val.List)
	case 9:
		return decodeLegacy(val.List, defaultChainID)
	default:
		return nil, fmt.Errorf("%w: list of %d elements", kerrors.ErrUnsupportedTxEnvelope, len(val.List))
	}
}

// decodeNative parses the node's own 10-element wire format:
// [chain_id, nonce, to, value, gas_limit, gas_price, data, vm_type, v, r||s].
func decodeNative(items []encoding.Value) (*Transaction, error) {
	chainID, err := items[0].Uint64()
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrMalformedTransaction, "chain_id: "+err.Error())
	}
	nonce, err := items[1].Uint64()
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrMalformedTransaction, "nonce: "+err.Error())
	}
	to, err := addressFromItem(items[2])
	if err != nil {
		return nil, err
	}
	value := uint256.NewInt(0).SetBytes(items[3].Bytes)
	gasLimit, err := items[4].Uint64()
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrMalformedTransaction, "gas_limit: "+err.Error())
	}
	gasPrice := uint256.NewInt(0).SetBytes(items[5].Bytes)
	data := items[6].Bytes
	vmTypeRaw, err := items[7].Uint64()
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrMalformedTransaction, "vm_type: "+err.Error())
	}
	v, err := items[8].Uint64()
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrMalformedTransaction, "v: "+err.Error())
	}
	if len(items[9].Bytes) != 64 {
		return nil, kerrors.Wrap(kerrors.ErrMalformedTransaction, "signature must be 64 bytes")
	}

	tx := &Transaction{
		Nonce:    nonce,
		To:       to,
		Value:    value,
		GasLimit: gasLimit,
		GasPrice: gasPrice,
		Data:     append([]byte(nil), data...),
		VMType:   VMType(vmTypeRaw),
		ChainID:  chainID,
		V:        byte(v),
	}
	copy(tx.R[:], items[9].Bytes[:32])
	copy(tx.S[:], items[9].Bytes[32:])

	sender, err := tx.RecoverSender()
	if err != nil {
		return nil, err
	}
	tx.From = sender
	return tx, nil
}

// decodeLegacy parses a legacy Ethereum 9-element transaction:
// [nonce, gas_price, gas_limit, to, value, data, v, r, s], deriving the
// chain ID from v per EIP-155 when v encodes it, and falling back to
// defaultChainID for the unprotected v in {27, 28}.
func decodeLegacy(items []encoding.Value, defaultChainID uint64) (*Transaction, error) {
	nonce, err := items[0].Uint64()
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrMalformedTransaction, "nonce: "+err.Error())
	}
	gasPrice := uint256.NewInt(0).SetBytes(items[1].Bytes)
	gasLimit, err := items[2].Uint64()
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrMalformedTransaction, "gas_limit: "+err.Error())
	}
	to, err := addressFromItem(items[3])
	if err != nil {
		return nil, err
	}
	value := uint256.NewInt(0).SetBytes(items[4].Bytes)
	data := items[5].Bytes
	vRaw, err := items[6].Uint64()
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrMalformedTransaction, "v: "+err.Error())
	}

	chainID := defaultChainID
	var recID byte
	switch {
	case vRaw == 27 || vRaw == 28:
		recID = byte(vRaw - 27)
	case vRaw >= 35:
		chainID = (vRaw - 35) / 2
		recID = byte((vRaw - 35) % 2)
	default:
		return nil, kerrors.Wrap(kerrors.ErrMalformedTransaction, "unrecognized legacy v value")
	}

	tx := &Transaction{
		Nonce:    nonce,
		To:       to,
		Value:    value,
		GasLimit: gasLimit,
		GasPrice: gasPrice,
		Data:     append([]byte(nil), data...),
		VMType:   VMTypeEVM,
		ChainID:  chainID,
		V:        recID,
	}
	copy(tx.R[:], rightAlign32(items[7].Bytes))
	copy(tx.S[:], rightAlign32(items[8].Bytes))

	sender, err := tx.RecoverSender()
	if err != nil {
		return nil, err
	}
	tx.From = sender
	return tx, nil
}

// decodeTyped parses the body of an EIP-1559 typed transaction (the bytes
// following the 0x02 envelope marker):
// [chain_id, nonce, max_priority_fee, max_fee, gas_limit, to, value, data, access_list, v, r, s].
// The access list is accepted but not interpreted — access-list gas
// discounting is out of scope for the EVM subset this node implements.
func decodeTyped(raw []byte) (*Transaction, error) {
	val, rest, err := encoding.Decode(raw)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrMalformedTransaction, err.Error())
	}
	if len(rest) != 0 {
		return nil, kerrors.Wrap(kerrors.ErrMalformedTransaction, "trailing bytes after typed transaction")
	}
	if !val.IsList || len(val.List) != 12 {
		return nil, kerrors.Wrap(kerrors.ErrUnsupportedTxEnvelope, "malformed typed transaction envelope")
	}
	items := val.List

	chainID, err := items[0].Uint64()
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrMalformedTransaction, "chain_id: "+err.Error())
	}
	nonce, err := items[1].Uint64()
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrMalformedTransaction, "nonce: "+err.Error())
	}
	tipCap := uint256.NewInt(0).SetBytes(items[2].Bytes)
	feeCap := uint256.NewInt(0).SetBytes(items[3].Bytes)
	gasLimit, err := items[4].Uint64()
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrMalformedTransaction, "gas_limit: "+err.Error())
	}
	to, err := addressFromItem(items[5])
	if err != nil {
		return nil, err
	}
	value := uint256.NewInt(0).SetBytes(items[6].Bytes)
	data := items[7].Bytes
	// items[8] is the access list; intentionally unread.
	v, err := items[9].Uint64()
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrMalformedTransaction, "v: "+err.Error())
	}

	tx := &Transaction{
		Nonce:     nonce,
		To:        to,
		Value:     value,
		GasLimit:  gasLimit,
		GasPrice:  feeCap,
		GasTipCap: tipCap,
		Data:      append([]byte(nil), data...),
		VMType:    VMTypeEVM,
		ChainID:   chainID,
		V:         byte(v),
	}
	copy(tx.R[:], rightAlign32(items[10].Bytes))
	copy(tx.S[:], rightAlign32(items[11].Bytes))

	sender, err := tx.RecoverSender()
	if err != nil {
		return nil, err
	}
	tx.From = sender
	return tx, nil
}

func addressFromItem(v encoding.Value) (types.Address, error) {
	if len(v.Bytes) == 0 {
		return types.ZeroAddress, nil
	}
	switch len(v.Bytes) {
	case types.AddressCoreLength:
		var core [types.AddressCoreLength]byte
		copy(core[:], v.Bytes)
		return types.AddressFromEVM(core), nil
	case types.AddressLength:
		var b [types.AddressLength]byte
		copy(b[:], v.Bytes)
		return types.AddressFromBytes(b)
	default:
		return types.Address{}, fmt.Errorf("%w: address field has %d bytes", kerrors.ErrMalformedTransaction, len(v.Bytes))
	}
}

func rightAlign32(b []byte) []byte {
	var out [32]byte
	if len(b) > 32 {
		b = b[len(b)-32:]
	}
	copy(out[32-len(b):], b)
	return out[:]
}
