package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
)

// Frame layout: 4-byte little-endian payload length, 4-byte little-endian
// CRC32 (IEEE) of the payload, then the payload itself.
const frameHeaderSize = 8

var ErrFrameCorrupt = errors.New("wire: frame checksum mismatch")

// Frame wraps payload with the length and checksum header.
func Frame(payload []byte) []byte {
	out := make([]byte, frameHeaderSize+len(payload))
	binary.LittleEndian.PutUint32(out[0:4], uint32(len(payload)))
	binary.LittleEndian.PutUint32(out[4:8], crc32.ChecksumIEEE(payload))
	copy(out[frameHeaderSize:], payload)
	return out
}

// ReadFrame reads one frame from r and returns its payload. io.EOF at a
// frame boundary is returned untouched; a short header or body inside a
// frame surfaces as io.ErrUnexpectedEOF.
func ReadFrame(r io.Reader) ([]byte, error) {
	var hdr [frameHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("wire: truncated frame header: %w", err)
		}
		return nil, err
	}
	n := binary.LittleEndian.Uint32(hdr[0:4])
	want := binary.LittleEndian.Uint32(hdr[4:8])

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("wire: truncated frame body: %w", io.ErrUnexpectedEOF)
		}
		return nil, err
	}
	if crc32.ChecksumIEEE(payload) != want {
		return nil, ErrFrameCorrupt
	}
	return payload, nil
}
