package audit

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
)

type ReplayHandler func(*Record) error

// Replay walks every record in the trail, oldest segment first, and hands
// each to fn. Sequence numbers must be strictly increasing across segment
// boundaries. Returns the last sequence seen.
func Replay(dir string, fn ReplayHandler) (lastSeq uint64, err error) {
	paths, err := segmentPaths(dir)
	if err != nil {
		return 0, err
	}

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return lastSeq, err
		}

		for {
			rec, err := readRecord(f)
			if err != nil {
				if err == io.EOF {
					break
				}
				f.Close()
				return lastSeq, fmt.Errorf("audit: %s: %w", path, err)
			}

			if rec.Seq <= lastSeq {
				f.Close()
				return lastSeq, fmt.Errorf("audit: %s: non-monotonic seq %d after %d", path, rec.Seq, lastSeq)
			}
			lastSeq = rec.Seq

			if err := fn(rec); err != nil {
				f.Close()
				return lastSeq, err
			}
		}
		f.Close()
	}
	return lastSeq, nil
}

func readRecord(r io.Reader) (*Record, error) {
	header := make([]byte, frameHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	l := binary.BigEndian.Uint32(header[17:21])
	body := make([]byte, l+4)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}

	payload := body[:l]
	crc := binary.BigEndian.Uint32(body[l:])
	if crc32.ChecksumIEEE(append(header, payload...)) != crc {
		return nil, fmt.Errorf("crc mismatch")
	}

	return &Record{
		Kind: header[0],
		Seq:  binary.BigEndian.Uint64(header[1:9]),
		Time: int64(binary.BigEndian.Uint64(header[9:17])),
		Data: payload,
	}, nil
}
