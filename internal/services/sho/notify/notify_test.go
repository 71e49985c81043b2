package notify

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/louisbranch/sho/internal/services/sho/storage"
)

func TestSubject(t *testing.T) {
	tests := []struct {
		gameID string
		kind   storage.Kind
		want   string
	}{
		{gameID: "abc", kind: storage.KindMoved, want: "sho.games.abc.moved"},
		{gameID: "a.b", kind: storage.KindPaRa, want: "sho.games.a_b.pa_ra"},
		{gameID: "x*>", kind: storage.KindWon, want: "sho.games.x__.won"},
	}
	for _, tt := range tests {
		if got := Subject(tt.gameID, tt.kind); got != tt.want {
			t.Fatalf("subject(%q) = %q, want %q", tt.gameID, got, tt.want)
		}
	}
}

type fakeConn struct {
	subjects []string
	payloads [][]byte
	flushed  bool
	closed   bool
	err      error
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func (f *fakeConn) FlushTimeout(time.Duration) error {
	f.flushed = true
	return nil
}

func (f *fakeConn) Close() { f.closed = true }

func TestNATSPublish(t *testing.T) {
	conn := &fakeConn{}
	pub := newNATS(conn, 0)
	entry := storage.Entry{GameID: "g1", Seq: 3, Kind: storage.KindRolled, Seat: 2, Die1: 4, Die2: 5, Pool: []int{9}, Phase: "MOVING"}

	if err := pub.Publish(context.Background(), entry); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !reflect.DeepEqual(conn.subjects, []string{"sho.games.g1.rolled"}) {
		t.Fatalf("subjects = %v", conn.subjects)
	}
	var decoded storage.Entry
	if err := json.Unmarshal(conn.payloads[0], &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded.Seq != 3 || decoded.Die2 != 5 || !reflect.DeepEqual(decoded.Pool, []int{9}) {
		t.Fatalf("decoded = %+v", decoded)
	}

	if err := pub.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !conn.flushed || !conn.closed {
		t.Fatal("expected flush and close")
	}
}

func TestNATSPublishErrors(t *testing.T) {
	pub := newNATS(&fakeConn{err: errors.New("nats: connection closed")}, time.Second)
	if err := pub.Publish(context.Background(), storage.Entry{GameID: "g"}); err == nil {
		t.Fatal("expected publish error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := newNATS(&fakeConn{}, time.Second).Publish(ctx, storage.Entry{GameID: "g"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context canceled", err)
	}
}

func TestMemory(t *testing.T) {
	var mem Memory
	_ = mem.Publish(context.Background(), storage.Entry{Kind: storage.KindStarted})
	_ = mem.Publish(context.Background(), storage.Entry{Kind: storage.KindRolled})
	if !reflect.DeepEqual(mem.Kinds(), []storage.Kind{storage.KindStarted, storage.KindRolled}) {
		t.Fatalf("kinds = %v", mem.Kinds())
	}
	var nop Publisher = Nop{}
	if err := nop.Publish(context.Background(), storage.Entry{}); err != nil {
		t.Fatalf("nop publish: %v", err)
	}
}
