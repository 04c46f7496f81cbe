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

// Package crypto wraps the node's two hash domains, secp256k1 signing, and
// address derivation. Keccak-256 is the canonical transaction-hash domain;
// SHA3-256 is the separate trie/address domain. The two are never used
// interchangeably for the same artifact.
package crypto

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"golang.org/x/crypto/sha3"

	"github.com/kortanachain/kortana/common/types"
	kerrors "github.com/kortanachain/kortana/pkg/errors"
)

// Keccak256 hashes the concatenation of data with the legacy Keccak-256
// variant. This is the canonical transaction-hash domain.
func Keccak256(data ...[]byte) types.Hash {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	var out types.Hash
	h.Sum(out[:0])
	return out
}

// SHA3_256 hashes the concatenation of data with standard SHA3-256. This is
// the trie node and address derivation domain.
func SHA3_256(data ...[]byte) types.Hash {
	h := sha3.New256()
	for _, d := range data {
		h.Write(d)
	}
	var out types.Hash
	h.Sum(out[:0])
	return out
}

// PrivateKey is a secp256k1 signing key.
type PrivateKey struct {
	key *btcec.PrivateKey
}

// GenerateKey creates a new random signing key.
func GenerateKey() (*PrivateKey, error) {
	key, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromBytes loads a 32-byte scalar as a signing key.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("crypto: private key must be 32 bytes, got %d", len(b))
	}
	key, _ := btcec.PrivKeyFromBytes(b)
	return &PrivateKey{key: key}, nil
}

// Bytes returns the 32-byte scalar encoding of the private key.
func (pk *PrivateKey) Bytes() []byte {
	return pk.key.Serialize()
}

// PublicKey returns the uncompressed public key bytes used for address
// derivation.
func (pk *PrivateKey) PublicKey() []byte {
	return pk.key.PubKey().SerializeUncompressed()
}

// Address derives this key's checksummed Kortana address.
func (pk *PrivateKey) Address() types.Address {
	return types.AddressFromPubkey(pk.PublicKey())
}

// Sign produces a deterministic, low-S ECDSA signature (r, s, v) over a
// 32-byte digest. v is the recovery id in {0, 1}.
func (pk *PrivateKey) Sign(digest types.Hash) (r, s [32]byte, v byte, err error) {
	sig, err := btcecdsa.SignCompact(pk.key, digest[:], false)
	if err != nil {
		return r, s, 0, err
	}
	// btcec's compact format is [recovery_byte || r || s]; recovery_byte
	// already folds in the 27 offset used by bitcoin-style recovery.
	recID := sig[0]
	if recID >= 27 {
		recID -= 27
	}
	copy(r[:], sig[1:33])
	copy(s[:], sig[33:65])
	return r, s, recID, nil
}

// RecoverPubkey recovers the uncompressed public key that produced the
// given signature over digest.
func RecoverPubkey(digest types.Hash, r, s [32]byte, v byte) ([]byte, error) {
	compact := make([]byte, 65)
	compact[0] = v + 27
	copy(compact[1:33], r[:])
	copy(compact[33:65], s[:])

	pub, _, err := btcecdsa.RecoverCompact(compact, digest[:])
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrSenderRecovery, err.Error())
	}
	return pub.SerializeUncompressed(), nil
}

// RecoverSender recovers the checksummed address of the account that
// produced the given signature over digest.
func RecoverSender(digest types.Hash, r, s [32]byte, v byte) (types.Address, error) {
	pub, err := RecoverPubkey(digest, r, s, v)
	if err != nil {
		return types.Address{}, err
	}
	return types.AddressFromPubkey(pub), nil
}

// VerifySignature reports whether (r, s) is a valid ECDSA signature over
// digest for the given uncompressed public key.
func VerifySignature(pubkey []byte, digest types.Hash, r, s [32]byte) bool {
	pub, err := btcec.ParsePubKey(pubkey)
	if err != nil {
		return false
	}
	sig := signatureFromRS(r, s)
	return sig.Verify(digest[:], pub)
}

func signatureFromRS(r, s [32]byte) *btcecdsa.Signature {
	var rs, ss btcec.ModNScalar
	rs.SetByteSlice(r[:])
	ss.SetByteSlice(s[:])
	return btcecdsa.NewSignature(&rs, &ss)
}

// DeriveContractAddress computes the address of a contract deployed by
// `from` using the nonce carried on the deploying transaction itself (not
// a freshly re-read post-increment account nonce).
func DeriveContractAddress(from types.Address, nonce uint64) types.Address {
	var nonceBytes [8]byte
	putUint64(nonceBytes[:], nonce)
	digest := SHA3_256(from.Bytes(), nonceBytes[:])
	var core [types.AddressCoreLength]byte
	copy(core[:], digest[:types.AddressCoreLength])
	return types.AddressFromEVM(core)
}

func putUint64(b []byte, v uint64) {
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
}
