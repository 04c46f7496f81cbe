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

package crypto

import "github.com/kortanachain/kortana/common/types"

// GenerateVRFSeed derives a per-slot randomness beacon from a validator's
// private key and the epoch seed.
//
// This is a testnet placeholder, not a verifiable random function: it is a
// deterministic hash rather than an elliptic-curve VRF, so it provides no
// unpredictability guarantee against a validator that knows its own key in
// advance. A production deployment must replace this with a real VRF
// (e.g. ECVRF-EDWARDS25519-SHA512) before the leader schedule can be
// trusted against a validator predicting or grinding its own slots.
func GenerateVRFSeed(priv *PrivateKey, epochSeed []byte, slot uint64) types.Hash {
	var slotBytes [8]byte
	putUint64(slotBytes[:], slot)
	return SHA3_256(priv.Bytes(), epochSeed, slotBytes[:])
}

// VerifyVRF is the matching placeholder verifier. It always reports true:
// there is no way to check the seed against a public key without a real
// VRF construction. Callers must not treat this as a security boundary.
func VerifyVRF(pubkey []byte, epochSeed []byte, slot uint64, seed types.Hash) bool {
	return true
}
