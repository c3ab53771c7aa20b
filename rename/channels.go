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

package rename

import "strings"

type Channel struct {
	Pattern string
	Code    string
}

// ChannelIndex maps entry-name fragments to channel codes. Its order is the
// order codes appear in a new archive name.
var ChannelIndex = []Channel{
	{Pattern: "_ha_", Code: "H"},
	{Pattern: "_halpha_", Code: "H"},
	{Pattern: "_sii_", Code: "S"},
	{Pattern: "_oiii_", Code: "O"},
	{Pattern: "_luminance_", Code: "L"},
	{Pattern: "_lum_", Code: "L"},
	{Pattern: "_red_", Code: "R"},
	{Pattern: "_green_", Code: "G"},
	{Pattern: "_blue_", Code: "B"},
}

// ChannelCombination returns the concatenated codes of every pattern found in
// any of the entry names, compared case-insensitively.
func ChannelCombination(entryNames []string) string {
	found := make(map[string]bool, len(ChannelIndex))
	for _, name := range entryNames {
		lower := strings.ToLower(name)
		for _, ch := range ChannelIndex {
			if strings.Contains(lower, ch.Pattern) {
				found[ch.Pattern] = true
			}
		}
	}
	var b strings.Builder
	for _, ch := range ChannelIndex {
		if found[ch.Pattern] {
			b.WriteString(ch.Code)
		}
	}
	return b.String()
}
