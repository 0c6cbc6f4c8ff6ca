package termindex

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/geoprefix/internal/hash"
)

const (
	// Magic identifies snapshot files (ASCII "GPTI").
	Magic uint32 = 0x47505449
	// Version is the current snapshot format version.
	Version uint16 = 1

	headerSize = 24
	maxPayload = 1 << 34

	// lz4 cannot expand a block by more than about 255x.
	maxLZ4Ratio = 255
)

var (
	ErrInvalidMagic       = errors.New("termindex: invalid snapshot magic")
	ErrUnsupportedVersion = errors.New("termindex: unsupported snapshot version")
	ErrCorrupt            = errors.New("termindex: corrupt snapshot")
)

// ChecksumMismatchError is returned when the snapshot payload fails CRC32C verification.
type ChecksumMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected 0x%08x, got 0x%08x", e.Expected, e.Actual)
}

// Unwrap makes checksum failures match ErrCorrupt.
func (e *ChecksumMismatchError) Unwrap() error { return ErrCorrupt }

// WriteSnapshot writes the index and an opaque meta block to w.
func (ix *Index) WriteSnapshot(w io.Writer, meta []byte, c Compression) (int64, error) {
	payload, err := ix.encode(meta)
	if err != nil {
		return 0, err
	}

	body, err := compress(c, payload)
	if errors.Is(err, errIncompressible) {
		c, body = CompressionNone, payload
	} else if err != nil {
		return 0, err
	}

	var hdr [headerSize]byte
	binary.LittleEndian.PutUint32(hdr[0:], Magic)
	binary.LittleEndian.PutUint16(hdr[4:], Version)
	hdr[6] = byte(c)
	binary.LittleEndian.PutUint64(hdr[8:], uint64(len(payload)))
	binary.LittleEndian.PutUint64(hdr[16:], uint64(len(body)))

	var trailer [4]byte
	binary.LittleEndian.PutUint32(trailer[:], hash.CRC32C(payload))

	var total int64
	for _, part := range [][]byte{hdr[:], body, trailer[:]} {
		n, err := w.Write(part)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// ReadSnapshot reads an index written by WriteSnapshot and returns it with its meta block.
func ReadSnapshot(r io.Reader) (*Index, []byte, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, nil, fmt.Errorf("%w: header: %w", ErrCorrupt, err)
	}
	if m := binary.LittleEndian.Uint32(hdr[0:]); m != Magic {
		return nil, nil, fmt.Errorf("%w: 0x%08x", ErrInvalidMagic, m)
	}
	if v := binary.LittleEndian.Uint16(hdr[4:]); v != Version {
		return nil, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	c := Compression(hdr[6])
	size := binary.LittleEndian.Uint64(hdr[8:])
	bodyLen := binary.LittleEndian.Uint64(hdr[16:])
	if err := checkSizes(c, size, bodyLen); err != nil {
		return nil, nil, err
	}
	if lr, ok := r.(interface{ Len() int }); ok && uint64(lr.Len()) < bodyLen+4 {
		return nil, nil, fmt.Errorf("%w: body: %d bytes left, header claims %d", ErrCorrupt, lr.Len(), bodyLen)
	}

	// The buffer grows with the bytes actually read, never with the header's claim.
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(io.LimitReader(r, int64(bodyLen))); err != nil {
		return nil, nil, fmt.Errorf("%w: body: %w", ErrCorrupt, err)
	}
	if uint64(buf.Len()) != bodyLen {
		return nil, nil, fmt.Errorf("%w: body: %w", ErrCorrupt, io.ErrUnexpectedEOF)
	}
	body := buf.Bytes()
	var trailer [4]byte
	if _, err := io.ReadFull(r, trailer[:]); err != nil {
		return nil, nil, fmt.Errorf("%w: trailer: %w", ErrCorrupt, err)
	}

	payload, err := decompress(c, body, int(size))
	if err != nil {
		return nil, nil, err
	}
	expected := binary.LittleEndian.Uint32(trailer[:])
	if actual := hash.CRC32C(payload); actual != expected {
		return nil, nil, &ChecksumMismatchError{Expected: expected, Actual: actual}
	}

	return decode(payload)
}

// checkSizes rejects headers whose payload size cannot follow from the body size.
func checkSizes(c Compression, size, bodyLen uint64) error {
	if size > maxPayload || bodyLen > maxPayload {
		return fmt.Errorf("%w: payload too large", ErrCorrupt)
	}
	switch c {
	case CompressionNone:
		if size != bodyLen {
			return fmt.Errorf("%w: payload size %d, body %d", ErrCorrupt, size, bodyLen)
		}
	case CompressionLZ4:
		if size > bodyLen*maxLZ4Ratio+16 {
			return fmt.Errorf("%w: lz4 payload size %d exceeds bound for body %d", ErrCorrupt, size, bodyLen)
		}
	}
	return nil
}

func (ix *Index) encode(meta []byte) ([]byte, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	buf := make([]byte, 0, 1024)
	buf = appendBytes(buf, meta)

	buf = binary.AppendUvarint(buf, uint64(len(ix.names)))
	for _, name := range ix.names {
		buf = appendBytes(buf, []byte(name))
	}

	buf = binary.AppendUvarint(buf, uint64(len(ix.dict)))
	for _, term := range ix.dict {
		data, err := ix.postings[term].ToBytes()
		if err != nil {
			return nil, fmt.Errorf("encode posting %q: %w", term, err)
		}
		buf = appendBytes(buf, []byte(term))
		buf = appendBytes(buf, data)
	}
	return buf, nil
}

func decode(payload []byte) (*Index, []byte, error) {
	d := decoder{buf: payload}
	meta := d.bytes()

	ix := New()
	n := d.uvarint()
	if n > uint64(len(payload)) {
		return nil, nil, fmt.Errorf("%w: document count %d", ErrCorrupt, n)
	}
	ix.names = make([]string, n)
	for i := range ix.names {
		name := string(d.bytes())
		ix.names[i] = name
		if name != "" {
			ix.ids[name] = uint32(i)
			ix.live.Add(uint32(i))
		}
	}

	n = d.uvarint()
	if n > uint64(len(payload)) {
		return nil, nil, fmt.Errorf("%w: term count %d", ErrCorrupt, n)
	}
	ix.dict = make([]string, 0, n)
	for range n {
		term := string(d.bytes())
		data := d.bytes()
		if d.err != nil {
			break
		}
		bm := roaring.New()
		if err := bm.UnmarshalBinary(data); err != nil {
			return nil, nil, fmt.Errorf("%w: posting %q: %w", ErrCorrupt, term, err)
		}
		if len(ix.dict) > 0 && ix.dict[len(ix.dict)-1] >= term {
			return nil, nil, fmt.Errorf("%w: dictionary out of order at %q", ErrCorrupt, term)
		}
		ix.dict = append(ix.dict, term)
		ix.postings[term] = bm

		it := bm.Iterator()
		for it.HasNext() {
			doc := it.Next()
			if int(doc) >= len(ix.names) || ix.names[doc] == "" {
				return nil, nil, fmt.Errorf("%w: posting %q references unknown document %d", ErrCorrupt, term, doc)
			}
			ix.docTerms[doc] = append(ix.docTerms[doc], term)
		}
	}
	if d.err != nil {
		return nil, nil, d.err
	}
	if len(meta) == 0 {
		meta = nil
	}
	return ix, meta, nil
}

func appendBytes(buf, b []byte) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(b)))
	return append(buf, b...)
}

type decoder struct {
	buf []byte
	err error
}

func (d *decoder) uvarint() uint64 {
	if d.err != nil {
		return 0
	}
	v, n := binary.Uvarint(d.buf)
	if n <= 0 {
		d.err = fmt.Errorf("%w: bad varint", ErrCorrupt)
		return 0
	}
	d.buf = d.buf[n:]
	return v
}

func (d *decoder) bytes() []byte {
	n := d.uvarint()
	if d.err != nil {
		return nil
	}
	if n > uint64(len(d.buf)) {
		d.err = fmt.Errorf("%w: truncated payload", ErrCorrupt)
		return nil
	}
	b := d.buf[:n:n]
	d.buf = d.buf[n:]
	return b
}
