package mumble

import (
	"encoding/binary"
	"math"
	"testing"

	"golang.org/x/text/encoding/unicode"
)

func putF32(buf []byte, off int, v float32) {
	binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v))
}

func buildControlBlockFixture(t *testing.T, uiTick, mapID uint32, identityJSON string) []byte {
	t.Helper()
	buf := make([]byte, minControlBlockSize)

	binary.LittleEndian.PutUint32(buf[offUITick:offUITick+4], uiTick)
	putF32(buf, offAvatarPos, 1)
	putF32(buf, offAvatarPos+4, 2)
	putF32(buf, offAvatarPos+8, 3)

	encoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	idBytes, err := encoder.Bytes([]byte(identityJSON))
	if err != nil {
		t.Fatalf("encode identity: %v", err)
	}
	copy(buf[offIdentity:offIdentity+identityLen], idBytes)

	ctx := buf[offContext : offContext+contextLen]
	ctx[ctxServerAddress] = 2 // IPv4 marker
	copy(ctx[ctxServerAddress+4:ctxServerAddress+8], []byte{192, 168, 0, 1})
	binary.LittleEndian.PutUint32(ctx[ctxMapID:ctxMapID+4], mapID)
	ctx[ctxMountIndex] = 5

	return buf
}

func TestDecodeControlBlock_RejectsShortBuffer(t *testing.T) {
	if _, err := decodeControlBlock(make([]byte, 10)); err == nil {
		t.Fatal("expected an error for a too-short control block")
	}
}

func TestDecodeControlBlock_FieldsAndIdentity(t *testing.T) {
	raw := buildControlBlockFixture(t, 42, 15, `{"name":"Foo.1000","fov":1.0,"uisz":1,"race":0}`)
	rec, err := decodeControlBlock(raw)
	if err != nil {
		t.Fatalf("decodeControlBlock: %v", err)
	}
	if rec.UITick != 42 {
		t.Errorf("UITick = %d, want 42", rec.UITick)
	}
	if rec.MapID != 15 {
		t.Errorf("MapID = %d, want 15", rec.MapID)
	}
	if rec.Identity.Name != "Foo.1000" {
		t.Errorf("Identity.Name = %q, want Foo.1000", rec.Identity.Name)
	}
	if rec.Mount != 5 {
		t.Errorf("Mount = %d, want 5", rec.Mount)
	}
	ip, ok := rec.ServerIPv4()
	if !ok {
		t.Fatal("expected an IPv4 server address")
	}
	if ip != [4]byte{192, 168, 0, 1} {
		t.Errorf("ServerIPv4 = %v, want 192.168.0.1", ip)
	}
}

func TestComputeChanges_NilPriorYieldsAll(t *testing.T) {
	cur := &Record{UITick: 1}
	if computeChanges(nil, cur) != ChangeAll {
		t.Error("expected ChangeAll with no prior record")
	}
}

func TestComputeChanges_MapChangeWithAdvancedTick(t *testing.T) {
	prev := &Record{UITick: 1, MapID: 10}
	cur := &Record{UITick: 2, MapID: 11}
	got := computeChanges(prev, cur)
	want := ChangeMap | ChangeUiTick
	if got != want {
		t.Errorf("changes = %b, want %b", got, want)
	}
}

func TestComputeChanges_MapChangeOnlyWithoutAdvancedTick(t *testing.T) {
	prev := &Record{UITick: 1, MapID: 10}
	cur := &Record{UITick: 1, MapID: 11}
	if got := computeChanges(prev, cur); got != ChangeMap {
		t.Errorf("changes = %b, want ChangeMap only", got)
	}
}

func TestComputeChanges_TickOnly(t *testing.T) {
	prev := &Record{UITick: 1, MapID: 10}
	cur := &Record{UITick: 2, MapID: 10}
	if got := computeChanges(prev, cur); got != ChangeUiTick {
		t.Errorf("changes = %b, want ChangeUiTick only", got)
	}
}
