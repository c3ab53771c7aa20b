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


package zipcheck

import (
	"bytes"
	"compress/bzip2"
	"encoding/binary"
	"fmt"
	"hash"
	"hash/crc32"
	"io"

	kzip "github.com/klauspost/compress/zip"
	"github.com/ulikunitz/xz/lzma"
)

const (
	methodBzip2 = 12
	methodLZMA  = 14
)

// lzmaPropsLen is the size of the properties block of the LZMA1 coder:
// one lc/lp/pb byte followed by the little-endian dictionary size.
const lzmaPropsLen = 5

func bzip2Decompressor(r io.Reader) io.ReadCloser {
	return io.NopCloser(bzip2.NewReader(r))
}

// openLZMA decodes an LZMA entry. The entry data starts with a two byte
// encoder version and a two byte properties length ahead of the properties
// and the raw stream. The stream may or may not end with an end marker, so
// the entry's uncompressed size is put into the classic LZMA header handed
// to the decoder.
func openLZMA(f *kzip.File) (io.ReadCloser, error) {
	raw, err := f.OpenRaw()
	if err != nil {
		return nil, err
	}
	var prefix [4]byte
	if _, err := io.ReadFull(raw, prefix[:]); err != nil {
		return nil, fmt.Errorf("%w: lzma prefix: %v", kzip.ErrFormat, err)
	}
	if propsLen := binary.LittleEndian.Uint16(prefix[2:]); propsLen != lzmaPropsLen {
		return nil, fmt.Errorf("%w: lzma properties length %d", kzip.ErrFormat, propsLen)
	}
	header := make([]byte, lzma.HeaderLen)
	if _, err := io.ReadFull(raw, header[:lzmaPropsLen]); err != nil {
		return nil, fmt.Errorf("%w: lzma properties: %v", kzip.ErrFormat, err)
	}
	binary.LittleEndian.PutUint64(header[lzmaPropsLen:], f.UncompressedSize64)
	r, err := lzma.NewReader(io.MultiReader(bytes.NewReader(header), raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kzip.ErrFormat, err)
	}
	return &checksumReader{r: r, f: f, hash: crc32.NewIEEE()}, nil
}

// checksumReader verifies size and CRC-32 of an entry decoded outside the
// zip reader.
type checksumReader struct {
	r     io.Reader
	f     *kzip.File
	hash  hash.Hash32
	nread uint64
	err   error
}

func (c *checksumReader) Read(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.r.Read(p)
	c.hash.Write(p[:n])
	c.nread += uint64(n)
	if c.nread > c.f.UncompressedSize64 {
		err = kzip.ErrFormat
	} else if err == io.EOF {
		if c.nread != c.f.UncompressedSize64 {
			err = io.ErrUnexpectedEOF
		} else if c.hash.Sum32() != c.f.CRC32 {
			err = kzip.ErrChecksum
		}
	}
	c.err = err
	return n, err
}

func (c *checksumReader) Close() error {
	return nil
}
