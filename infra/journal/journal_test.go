package journal

import (
	"bytes"
	"testing"
)

func openTemp(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestAppendAndScan(t *testing.T) {
	j := openTemp(t)

	payloads := [][]byte{[]byte("a"), []byte("bb"), []byte("ccc")}
	for i, p := range payloads {
		if err := j.Append(uint64(i+1), p); err != nil {
			t.Fatalf("Append %d: %v", i+1, err)
		}
	}

	var got []*Entry
	if err := j.ScanPending(func(e *Entry) bool {
		got = append(got, e)
		return true
	}); err != nil {
		t.Fatalf("ScanPending: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("pending count = %d, want 3", len(got))
	}
	for i, e := range got {
		if e.Seq != uint64(i+1) {
			t.Errorf("entry %d seq = %d", i, e.Seq)
		}
		if e.State != StateNew {
			t.Errorf("entry %d state = %v", i, e.State)
		}
		if !bytes.Equal(e.Payload, payloads[i]) {
			t.Errorf("entry %d payload = %q, want %q", i, e.Payload, payloads[i])
		}
	}
}

func TestStateTransitions(t *testing.T) {
	j := openTemp(t)
	if err := j.Append(1, []byte("x")); err != nil {
		t.Fatal(err)
	}

	if err := j.MarkSent(1); err != nil {
		t.Fatalf("MarkSent: %v", err)
	}
	var pending []*Entry
	j.ScanPending(func(e *Entry) bool { pending = append(pending, e); return true })
	if len(pending) != 1 || pending[0].State != StateSent {
		t.Fatalf("after MarkSent: %+v", pending)
	}
	if pending[0].Retries != 1 || pending[0].LastAttempt.IsZero() {
		t.Errorf("attempt not stamped: %+v", pending[0])
	}

	if err := j.MarkAcked(1); err != nil {
		t.Fatalf("MarkAcked: %v", err)
	}
	pending = nil
	j.ScanPending(func(e *Entry) bool { pending = append(pending, e); return true })
	if len(pending) != 0 {
		t.Errorf("acked entry still pending: %+v", pending)
	}
}

func TestScanEarlyStop(t *testing.T) {
	j := openTemp(t)
	for seq := uint64(1); seq <= 5; seq++ {
		if err := j.Append(seq, []byte("p")); err != nil {
			t.Fatal(err)
		}
	}
	var n int
	j.ScanPending(func(e *Entry) bool {
		n++
		return n < 2
	})
	if n != 2 {
		t.Errorf("visited %d entries, want 2", n)
	}
}

func TestPrune(t *testing.T) {
	j := openTemp(t)
	for seq := uint64(1); seq <= 4; seq++ {
		if err := j.Append(seq, []byte("p")); err != nil {
			t.Fatal(err)
		}
	}
	j.MarkSent(1)
	j.MarkAcked(1)
	j.MarkSent(2)
	j.MarkAcked(2)
	j.MarkSent(3) // sent but not acked, must survive

	if err := j.Prune(3); err != nil {
		t.Fatalf("Prune: %v", err)
	}

	last, err := j.LastSeq()
	if err != nil {
		t.Fatal(err)
	}
	if last != 4 {
		t.Errorf("LastSeq = %d, want 4", last)
	}
	var seqs []uint64
	j.ScanPending(func(e *Entry) bool { seqs = append(seqs, e.Seq); return true })
	if len(seqs) != 2 || seqs[0] != 3 || seqs[1] != 4 {
		t.Errorf("pending after prune = %v, want [3 4]", seqs)
	}
}

func TestLastSeqAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	j, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	for seq := uint64(1); seq <= 7; seq++ {
		if err := j.Append(seq, []byte("p")); err != nil {
			t.Fatal(err)
		}
	}
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}

	j, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer j.Close()
	last, err := j.LastSeq()
	if err != nil {
		t.Fatal(err)
	}
	if last != 7 {
		t.Errorf("LastSeq after reopen = %d, want 7", last)
	}
}

func TestLastSeqEmpty(t *testing.T) {
	j := openTemp(t)
	last, err := j.LastSeq()
	if err != nil {
		t.Fatal(err)
	}
	if last != 0 {
		t.Errorf("LastSeq on empty journal = %d, want 0", last)
	}
}
