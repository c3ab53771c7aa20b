// Copyright 2026 xultaeculcis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package blake

import (
	"encoding/base64"

	"golang.org/x/crypto/blake2b"
)

const blake2bDigestLength = 64

type Blake2bDigest [blake2bDigestLength]byte

// Sum returns the BLAKE2b-512 digest of data.
func Sum(data []byte) Blake2bDigest {
	return Blake2bDigest(blake2b.Sum512(data))
}

// URLSafe is the digest as stored in object metadata.
func (d Blake2bDigest) URLSafe() string {
	return base64.URLEncoding.EncodeToString(d[:])
}
