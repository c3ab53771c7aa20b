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

package keystore

import "testing"

func TestKeyStore(t *testing.T) {
	ks := NewKeyStore("/surveys/m31/")
	if ks.Prefix != "surveys/m31" {
		t.Fatalf("Prefix=%q", ks.Prefix)
	}
	if got := ks.ObjectKey("night1/light_001.fits"); got != "surveys/m31/night1/light_001.fits" {
		t.Fatalf("ObjectKey()=%q", got)
	}
	if got := ks.ListPrefix(); got != "surveys/m31/" {
		t.Fatalf("ListPrefix()=%q", got)
	}

	cases := []struct {
		key string
		rel string
		ok  bool
	}{
		{key: "surveys/m31/night1/light_001.fits", rel: "night1/light_001.fits", ok: true},
		{key: "surveys/m31b/light_001.fits", ok: false},
		{key: "surveys/m31/", ok: false},
		{key: "other/light_001.fits", ok: false},
	}
	for _, tc := range cases {
		rel, ok := ks.RelativePath(tc.key)
		if rel != tc.rel || ok != tc.ok {
			t.Errorf("RelativePath(%q)=%q,%v want %q,%v", tc.key, rel, ok, tc.rel, tc.ok)
		}
	}
}

func TestKeyStoreWithoutPrefix(t *testing.T) {
	ks := NewKeyStore("/")
	if got := ks.ObjectKey("a/b.fits"); got != "a/b.fits" {
		t.Fatalf("ObjectKey()=%q", got)
	}
	if rel, ok := ks.RelativePath("a/b.fits"); !ok || rel != "a/b.fits" {
		t.Fatalf("RelativePath()=%q,%v", rel, ok)
	}
}
