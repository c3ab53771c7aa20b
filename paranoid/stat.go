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

package paranoid

import "os"

type fingerprint struct {
	identity identity
	size     int64
	mtime    int64
}

func (fp *fingerprint) fromInfo(info os.FileInfo) {
	fp.identity = identityFromInfo(info)
	fp.size = info.Size()
	fp.mtime = info.ModTime().UnixNano()
}
