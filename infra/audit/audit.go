// Package audit keeps the append-only audit trail: one framed record per
// order event, in emission order, across size-rotated segment files. The
// trail is for offline inspection and reconciliation only; nothing reads it
// back into the engine.
package audit

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"sort"
	"time"
)

type Config struct {
	Dir         string
	SegmentSize int64
}

const defaultSegmentSize = 64 << 20

// Record is one audit frame. Kind mirrors the event kind byte; Data carries
// the encoded event record.
type Record struct {
	Kind byte
	Seq  uint64
	Time int64
	Data []byte
}

func NewRecord(kind byte, seq uint64, data []byte) *Record {
	return &Record{
		Kind: kind,
		Seq:  seq,
		Time: time.Now().UnixNano(),
		Data: data,
	}
}

// Log is the segmented writer. Single-writer; the engine observer is the
// only appender.
type Log struct {
	dir      string
	segSize  int64
	current  *segment
	segIndex int
}

// Open resumes appending to the highest existing segment, or starts
// segment zero in an empty directory.
func Open(cfg Config) (*Log, error) {
	if cfg.SegmentSize <= 0 {
		cfg.SegmentSize = defaultSegmentSize
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, err
	}

	index := 0
	if paths, err := segmentPaths(cfg.Dir); err != nil {
		return nil, err
	} else if len(paths) > 0 {
		if _, err := fmt.Sscanf(filepath.Base(paths[len(paths)-1]), segmentPattern, &index); err != nil {
			return nil, fmt.Errorf("audit: bad segment name %q: %w", paths[len(paths)-1], err)
		}
	}

	seg, err := openSegment(cfg.Dir, index)
	if err != nil {
		return nil, err
	}
	return &Log{
		dir:      cfg.Dir,
		segSize:  cfg.SegmentSize,
		current:  seg,
		segIndex: index,
	}, nil
}

func (l *Log) Close() error {
	return l.current.close()
}

// Append writes one frame, rotating first when the frame would push the
// segment past its size cap. A frame larger than the cap still goes into a
// segment of its own rather than being refused. This also covers Open
// resuming a segment already at the cap.
//
// Frame:
// [kind:1][seq:8][time:8][len:4][payload][crc:4]
func (l *Log) Append(r *Record) error {
	payloadLen := uint32(len(r.Data))
	buf := make([]byte, frameHeaderSize+payloadLen+4)

	buf[0] = r.Kind
	binary.BigEndian.PutUint64(buf[1:9], r.Seq)
	binary.BigEndian.PutUint64(buf[9:17], uint64(r.Time))
	binary.BigEndian.PutUint32(buf[17:21], payloadLen)
	copy(buf[frameHeaderSize:], r.Data)

	crc := crc32.ChecksumIEEE(buf[:frameHeaderSize+payloadLen])
	binary.BigEndian.PutUint32(buf[frameHeaderSize+payloadLen:], crc)

	if l.current.offset > 0 && l.current.offset+int64(len(buf)) > l.segSize {
		if err := l.rotate(); err != nil {
			return err
		}
	}
	return l.current.append(buf)
}

func (l *Log) rotate() error {
	_ = l.current.close()
	l.segIndex++

	seg, err := openSegment(l.dir, l.segIndex)
	if err != nil {
		return err
	}
	l.current = seg
	return nil
}

func segmentPaths(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "audit-*.log"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}
