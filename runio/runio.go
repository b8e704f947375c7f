// Package runio reads and writes run files: contiguous sequences of
// little-endian 32-bit unsigned integers stored in non-decreasing order.
package runio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"os"
)

// RecordSize is the encoded size of a single record in bytes.
const RecordSize = 4

// ErrPartialRecord is returned when a stream ends in the middle of a record.
var ErrPartialRecord = errors.New("partial record")

// Reader is a buffered reader over a single run file.
type Reader struct {
	f   *os.File
	br  *bufio.Reader
	buf [RecordSize]byte
}

// NewReader opens the run file at path for reading. bufferSize is the size of
// the read buffer in bytes; it must be uniform across all concurrently open
// streams so that the budget arithmetic holds.
func NewReader(path string, bufferSize int) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	return &Reader{
		f:  f,
		br: bufio.NewReaderSize(f, bufferSize),
	}, nil
}

// Next returns the next record. It returns io.EOF when the run ends cleanly
// at a record boundary and ErrPartialRecord when the file ends mid-record.
func (r *Reader) Next() (uint32, error) {
	if _, err := io.ReadFull(r.br, r.buf[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return 0, ErrPartialRecord
		}
		return 0, err
	}
	return binary.LittleEndian.Uint32(r.buf[:]), nil
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}

// Name returns the path the reader was opened with.
func (r *Reader) Name() string {
	return r.f.Name()
}

// ReadRecords fills dst with records read from r. It returns the number of
// records read, which is less than len(dst) only if the stream ended. A
// stream ending mid-record returns ErrPartialRecord.
func ReadRecords(r io.Reader, dst []uint32) (int, error) {
	var buf [RecordSize]byte

	for i := range dst {
		_, err := io.ReadFull(r, buf[:])
		if err == io.EOF {
			return i, nil
		}
		if err == io.ErrUnexpectedEOF {
			return i, ErrPartialRecord
		}
		if err != nil {
			return i, err
		}
		dst[i] = binary.LittleEndian.Uint32(buf[:])
	}
	return len(dst), nil
}

// Writer is a buffered writer producing a single run file.
type Writer struct {
	f   *os.File
	bw  *bufio.Writer
	buf [RecordSize]byte
}

// NewWriter creates (or truncates) the run file at path for writing.
func NewWriter(path string, bufferSize int) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	return &Writer{
		f:  f,
		bw: bufio.NewWriterSize(f, bufferSize),
	}, nil
}

// Put appends a single record to the run.
func (w *Writer) Put(v uint32) error {
	binary.LittleEndian.PutUint32(w.buf[:], v)
	_, err := w.bw.Write(w.buf[:])
	return err
}

// PutAll appends all given records to the run.
func (w *Writer) PutAll(values []uint32) error {
	for _, v := range values {
		if err := w.Put(v); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes buffered records and closes the file.
func (w *Writer) Close() error {
	ferr := w.bw.Flush()
	cerr := w.f.Close()
	if ferr != nil {
		return ferr
	}
	return cerr
}

// Name returns the path the writer was opened with.
func (w *Writer) Name() string {
	return w.f.Name()
}
