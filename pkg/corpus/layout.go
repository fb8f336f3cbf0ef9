/*
Copyright 2025 The llm-d Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package corpus

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	idsSuffix     = ".memmap"
	lengthsSuffix = ".lengths.msgpack"
)

// IDsPath returns the path of the id file of the store under prefix.
func IDsPath(prefix string) string {
	return prefix + idsSuffix
}

// LengthsPath returns the path of the lengths file of the store under prefix.
func LengthsPath(prefix string) string {
	return prefix + lengthsSuffix
}

// Exists reports whether both files of the store under prefix exist.
func Exists(prefix string) bool {
	return fileExists(IDsPath(prefix)) && fileExists(LengthsPath(prefix))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// lengthsFile is decoded from the msgpack array [width, [len0, len1, ...]].
type lengthsFile struct {
	_msgpack struct{} `msgpack:",as_array"` //nolint:unused // msgpack encoding directive

	Width   int
	Lengths []int64
}

// writeLengths encodes every length as a fixed-size msgpack int of the id
// width, so the file decodes into lengthsFile whatever the width.
func writeLengths(path string, width int, lengths []int64) error {
	return writeAtomic(path, func(w io.Writer) error {
		enc := msgpack.NewEncoder(w)
		if err := enc.EncodeArrayLen(2); err != nil {
			return err
		}
		if err := enc.EncodeInt(int64(width)); err != nil {
			return err
		}
		if err := enc.EncodeArrayLen(len(lengths)); err != nil {
			return err
		}
		for i, n := range lengths {
			if err := encodeLength(enc, n, width); err != nil {
				return fmt.Errorf("line %d: %w", i, err)
			}
		}
		return nil
	})
}

func encodeLength(enc *msgpack.Encoder, n int64, width int) error {
	if err := checkWidth(n, width); err != nil {
		return err
	}
	switch width {
	case 2:
		return enc.EncodeInt16(int16(n)) // #nosec G115 -- range checked
	case 4:
		return enc.EncodeInt32(int32(n)) // #nosec G115 -- range checked
	default:
		return enc.EncodeInt64(n)
	}
}

func readLengths(path string) (int, []int64, error) {
	f, err := os.Open(path) //nolint:gosec // store path from configuration
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return 0, nil, fmt.Errorf("failed to open lengths file: %w", err)
	}
	defer f.Close()

	var file lengthsFile
	if err := msgpack.NewDecoder(bufio.NewReader(f)).Decode(&file); err != nil {
		return 0, nil, fmt.Errorf("%w: failed to decode %s: %w", ErrIntegrity, path, err)
	}
	if err := validateWidth(file.Width); err != nil {
		return 0, nil, fmt.Errorf("%w: %s: %w", ErrIntegrity, path, err)
	}
	for i, n := range file.Lengths {
		if n < 0 {
			return 0, nil, fmt.Errorf("%w: %s: negative length at line %d", ErrIntegrity, path, i)
		}
	}

	return file.Width, file.Lengths, nil
}

// writeAtomic writes path through a temporary file of the same directory,
// renamed into place once synced.
func writeAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()

	bw := bufio.NewWriter(tmp)
	if err := write(bw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return commitTemp(tmp, bw, path)
}

// commitTemp flushes, syncs and closes tmp, then renames it to path.
func commitTemp(tmp *os.File, bw *bufio.Writer, path string) error {
	tmpPath := tmp.Name()
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}

// checkWidth fails with ErrIDOverflow when n does not fit a signed integer of
// width bytes.
func checkWidth(n int64, width int) error {
	switch {
	case width == 2 && (n < math.MinInt16 || n > math.MaxInt16),
		width == 4 && (n < math.MinInt32 || n > math.MaxInt32):
		return fmt.Errorf("%w: %d does not fit %d bytes", ErrIDOverflow, n, width)
	}
	return nil
}

// putID encodes id into buf with the given width.
func putID(buf []byte, id int64, width int) error {
	if err := checkWidth(id, width); err != nil {
		return err
	}
	switch width {
	case 2:
		binary.NativeEndian.PutUint16(buf, uint16(int16(id))) // #nosec G115 -- range checked
	case 4:
		binary.NativeEndian.PutUint32(buf, uint32(int32(id))) // #nosec G115 -- range checked
	default:
		binary.NativeEndian.PutUint64(buf, uint64(id)) // #nosec G115 -- two's complement
	}
	return nil
}

// getID decodes an id of the given width from buf.
func getID(buf []byte, width int) int64 {
	switch width {
	case 2:
		return int64(int16(binary.NativeEndian.Uint16(buf))) // #nosec G115
	case 4:
		return int64(int32(binary.NativeEndian.Uint32(buf))) // #nosec G115
	default:
		return int64(binary.NativeEndian.Uint64(buf)) // #nosec G115
	}
}
