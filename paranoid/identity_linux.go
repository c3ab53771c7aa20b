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

//go:build linux

package paranoid

import (
	"os"
	"syscall"
)

type identity struct {
	device uint64
	inode  uint64
}

func identityFromInfo(info os.FileInfo) identity {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		panic("paranoid: unsupported FileInfo.Sys()")
	}
	return identity{
		device: uint64(stat.Dev),
		inode:  stat.Ino,
	}
}
