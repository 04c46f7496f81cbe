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

package state

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/kortanachain/kortana/common/account"
	"github.com/kortanachain/kortana/common/encoding"
	"github.com/kortanachain/kortana/common/types"
)

// encodeAccount serializes a StateAccount for storage as a trie leaf value.
func encodeAccount(acc *account.StateAccount) []byte {
	var body []byte
	body = encoding.EncodeUint64(body, acc.Nonce)
	body = encoding.EncodeBytes(body, acc.Balance.Bytes())
	isContract := uint64(0)
	if acc.IsContract {
		isContract = 1
	}
	body = encoding.EncodeUint64(body, isContract)
	body = encoding.EncodeBytes(body, acc.CodeHash.Bytes())
	body = encoding.EncodeBytes(body, acc.StorageRoot.Bytes())
	return encoding.EncodeList(nil, body)
}

func decodeAccount(raw []byte) (*account.StateAccount, error) {
	val, rest, err := encoding.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("state: decode account: %w", err)
	}
	if len(rest) != 0 || !val.IsList || len(val.List) != 5 {
		return nil, fmt.Errorf("state: malformed account encoding")
	}

	nonce, err := val.List[0].Uint64()
	if err != nil {
		return nil, err
	}
	balance := uint256.NewInt(0).SetBytes(val.List[1].Bytes)
	isContractRaw, err := val.List[2].Uint64()
	if err != nil {
		return nil, err
	}

	return &account.StateAccount{
		Nonce:       nonce,
		Balance:     balance,
		IsContract:  isContractRaw != 0,
		CodeHash:    types.BytesToHash(val.List[3].Bytes),
		StorageRoot: types.BytesToHash(val.List[4].Bytes),
	}, nil
}
