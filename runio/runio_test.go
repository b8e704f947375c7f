package runio

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"gotest.tools/v3/assert"
)

const testBufferSize = 4 << 10

func TestWriteReadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "0")
	values := []uint32{0, 1, 42, 1 << 16, 1<<32 - 1}

	w, err := NewWriter(path, testBufferSize)
	assert.NilError(t, err)
	assert.NilError(t, w.PutAll(values))
	assert.NilError(t, w.Close())

	fi, err := os.Stat(path)
	assert.NilError(t, err)
	assert.Equal(t, int64(len(values)*RecordSize), fi.Size())

	r, err := NewReader(path, testBufferSize)
	assert.NilError(t, err)
	defer r.Close()

	for _, want := range values {
		got, err := r.Next()
		assert.NilError(t, err)
		assert.Equal(t, want, got)
	}

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReaderLittleEndianEncoding(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "0")
	assert.NilError(t, os.WriteFile(path, []byte{0x78, 0x56, 0x34, 0x12}, 0644))

	r, err := NewReader(path, testBufferSize)
	assert.NilError(t, err)
	defer r.Close()

	got, err := r.Next()
	assert.NilError(t, err)
	assert.Equal(t, uint32(0x12345678), got)
}

func TestReaderPartialRecord(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "0")
	assert.NilError(t, os.WriteFile(path, []byte{1, 0, 0, 0, 2, 0}, 0644))

	r, err := NewReader(path, testBufferSize)
	assert.NilError(t, err)
	defer r.Close()

	got, err := r.Next()
	assert.NilError(t, err)
	assert.Equal(t, uint32(1), got)

	_, err = r.Next()
	assert.Assert(t, errors.Is(err, ErrPartialRecord))
}

func TestReaderEmptyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "0")
	assert.NilError(t, os.WriteFile(path, nil, 0644))

	r, err := NewReader(path, testBufferSize)
	assert.NilError(t, err)
	defer r.Close()

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReadRecords(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name     string
		input    []byte
		dstLen   int
		expected []uint32
		err      error
	}{
		{
			name:     "fills destination",
			input:    []byte{1, 0, 0, 0, 2, 0, 0, 0, 3, 0, 0, 0},
			dstLen:   2,
			expected: []uint32{1, 2},
		},
		{
			name:     "short read at clean boundary",
			input:    []byte{1, 0, 0, 0, 2, 0, 0, 0},
			dstLen:   4,
			expected: []uint32{1, 2},
		},
		{
			name:     "empty input",
			input:    nil,
			dstLen:   4,
			expected: nil,
		},
		{
			name:     "partial trailing record",
			input:    []byte{1, 0, 0, 0, 2, 0},
			dstLen:   4,
			expected: []uint32{1},
			err:      ErrPartialRecord,
		},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dst := make([]uint32, tc.dstLen)
			n, err := ReadRecords(bytes.NewReader(tc.input), dst)

			if tc.err != nil {
				assert.Assert(t, errors.Is(err, tc.err))
			} else {
				assert.NilError(t, err)
			}

			assert.Equal(t, len(tc.expected), n)
			for i, want := range tc.expected {
				assert.Equal(t, want, dst[i])
			}
		})
	}
}

func TestIsRunName(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name     string
		expected bool
	}{
		{name: "0", expected: true},
		{name: "17", expected: true},
		{name: "_0", expected: true},
		{name: "_123", expected: true},
		{name: "", expected: false},
		{name: "_", expected: false},
		{name: "-1", expected: false},
		{name: "12a", expected: false},
		{name: "output", expected: false},
		{name: "__0", expected: false},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, IsRunName(tc.name))
		})
	}
}

func TestScan(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"0", "1", "_2", "notarun", ".hidden"} {
		assert.NilError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	assert.NilError(t, os.Mkdir(filepath.Join(dir, "3"), 0755))
	assert.NilError(t, os.WriteFile(filepath.Join(dir, "3", "4"), nil, 0644))

	names, err := Scan(dir)
	assert.NilError(t, err)

	sort.Strings(names)
	assert.DeepEqual(t, []string{"0", "1", "_2"}, names)
}
