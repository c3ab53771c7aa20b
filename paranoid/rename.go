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

// RenameNoReplace renames the file after verifying it was not modified since
// it was fingerprinted. It fails with an error satisfying
// errors.Is(err, os.ErrExist) when dst is already present.
func (f File) RenameNoReplace(dst string) error {
	if err := f.Check(); err != nil {
		return err
	}
	return renameNoReplace(f.name, dst)
}

func linkAndRemove(src, dst string) error {
	if err := os.Link(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}
