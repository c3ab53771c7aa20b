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
	"bytes"
	"encoding/base64"
	"strings"
	"testing"
)

func TestSum(t *testing.T) {
	a := Sum([]byte("M31_scope1_HO_120.zip"))
	b := Sum([]byte("M31_scope1_HO_120.zip"))
	c := Sum([]byte("M31_scope1_LRGB_120.zip"))
	if a != b {
		t.Fatal("digest is not deterministic")
	}
	if a == c {
		t.Fatal("different inputs produced the same digest")
	}

	encoded := a.URLSafe()
	decoded, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(decoded, a[:]) {
		t.Fatal("URL-safe form did not decode back to the same digest")
	}
	if strings.ContainsAny(encoded, "+/") {
		t.Fatalf("%q is not URL-safe", encoded)
	}
}
