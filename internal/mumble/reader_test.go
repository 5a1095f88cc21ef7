package mumble

import (
	"log/slog"
	"testing"
	"time"
)

type fakeBackend struct {
	alive bool
	data  []byte
	err   error
}

func (f *fakeBackend) Probe() bool           { return f.alive }
func (f *fakeBackend) Read() ([]byte, error) { return f.data, f.err }
func (f *fakeBackend) Close() error          { return nil }

func TestReader_EmitsSentinelOnceWhenNotAlive(t *testing.T) {
	r := NewReader(slog.New(slog.DiscardHandler), "JokolayTest")
	r.backend = &fakeBackend{alive: false}

	first := r.Tick(time.Now())
	rec, ok := first.(*Record)
	if !ok || rec.Alive || rec.Changes != ChangeAll {
		t.Fatalf("expected a dead sentinel on first not-alive tick, got %v", first)
	}

	if second := r.Tick(time.Now()); second != nil {
		t.Fatalf("expected no further emissions while not alive, got %v", second)
	}
}

func TestReader_SkipsUninitializedFrames(t *testing.T) {
	r := NewReader(slog.New(slog.DiscardHandler), "JokolayTest")
	raw := buildControlBlockFixture(t, 0, 15, `{"name":"","fov":0,"uisz":0,"race":0}`)
	r.backend = &fakeBackend{alive: true, data: raw}

	if got := r.Tick(time.Now()); got != nil {
		t.Fatalf("expected a zero ui_tick frame to be skipped, got %v", got)
	}
}

func TestReader_DecodesLiveFrame(t *testing.T) {
	r := NewReader(slog.New(slog.DiscardHandler), "JokolayTest")
	raw := buildControlBlockFixture(t, 10, 15, `{"name":"Foo.1000","fov":1.0,"uisz":1,"race":0}`)
	raw[offContext+ctxClientPosX] = 1 // non-zero client pos so the frame isn't treated as uninitialized
	r.backend = &fakeBackend{alive: true, data: raw}

	got, ok := r.Tick(time.Now()).(*Record)
	if !ok {
		t.Fatalf("expected a decoded *Record")
	}
	if !got.Alive || got.MapID != 15 {
		t.Fatalf("got %+v, want Alive=true MapID=15", got)
	}
	if got.Changes != ChangeAll {
		t.Errorf("expected the first live frame to report ChangeAll, got %b", got.Changes)
	}
}
