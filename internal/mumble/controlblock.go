package mumble

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/jokolay/jokolay/internal/geom"
)

// Control block layout (spec §6 "Game-state shared memory"): a
// LinkedMem-shaped header (uiVersion, uiTick, avatar/camera vectors, the
// wide-char name field we don't need, an identity JSON field) followed by a
// context block with the game-specific fields.
const (
	offUITick      = 4
	offAvatarPos   = 8
	offAvatarFront = 20
	offCameraPos   = 556
	offCameraFront = 568
	offIdentity    = 592
	identityLen    = 512 // 256 wchar_t, UTF-16LE

	offContextLen = 1104
	offContext    = 1108
	contextLen    = 256

	minControlBlockSize = offContext + contextLen
)

// Context sub-offsets, relative to offContext.
const (
	ctxServerAddress   = 0
	ctxMapID           = 28
	ctxMapType         = 32
	ctxShardID         = 36
	ctxInstance        = 40
	ctxBuildID         = 44
	ctxUIState         = 48
	ctxCompassWidth    = 52
	ctxCompassHeight   = 54
	ctxCompassRotation = 56
	ctxPlayerX         = 60
	ctxPlayerY         = 64
	ctxMapCenterX      = 68
	ctxMapCenterY      = 72
	ctxMapScale        = 76
	ctxDPI             = 80
	ctxDPIScaling      = 84
	ctxClientPosX      = 88
	ctxClientPosY      = 92
	ctxClientSizeW     = 96
	ctxClientSizeH     = 100
	ctxProcessID       = 104
	ctxMountIndex      = 108
)

func f32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func decodeVec3(b []byte) geom.Vec3 {
	return geom.Vec3{X: f32(b[0:4]), Y: f32(b[4:8]), Z: f32(b[8:12])}
}

// decodeControlBlock parses a raw shared-memory snapshot into a Record
// (spec §4.3 step 2/4, §6). Alive and Changes are left to the caller, which
// knows the prior sample.
func decodeControlBlock(raw []byte) (*Record, error) {
	if len(raw) < minControlBlockSize {
		return nil, fmt.Errorf("mumble: control block too short (%d bytes, need at least %d)", len(raw), minControlBlockSize)
	}

	rec := &Record{
		UITick:      binary.LittleEndian.Uint32(raw[offUITick : offUITick+4]),
		PlayerPos:   decodeVec3(raw[offAvatarPos:]),
		AvatarFront: decodeVec3(raw[offAvatarFront:]),
		CamPos:      decodeVec3(raw[offCameraPos:]),
		CameraFront: decodeVec3(raw[offCameraFront:]),
	}

	identity, err := decodeIdentity(raw[offIdentity : offIdentity+identityLen])
	if err != nil {
		return nil, err
	}
	rec.Identity = identity

	ctx := raw[offContext : offContext+contextLen]
	copy(rec.ServerAddress[:], ctx[ctxServerAddress:ctxServerAddress+28])
	rec.MapID = binary.LittleEndian.Uint32(ctx[ctxMapID : ctxMapID+4])
	rec.MapType = binary.LittleEndian.Uint32(ctx[ctxMapType : ctxMapType+4])
	rec.ShardID = binary.LittleEndian.Uint32(ctx[ctxShardID : ctxShardID+4])
	rec.Instance = binary.LittleEndian.Uint32(ctx[ctxInstance : ctxInstance+4])
	rec.BuildID = binary.LittleEndian.Uint32(ctx[ctxBuildID : ctxBuildID+4])
	rec.UIState = binary.LittleEndian.Uint32(ctx[ctxUIState : ctxUIState+4])
	rec.CompassWidth = uint32(binary.LittleEndian.Uint16(ctx[ctxCompassWidth : ctxCompassWidth+2]))
	rec.CompassHeight = uint32(binary.LittleEndian.Uint16(ctx[ctxCompassHeight : ctxCompassHeight+2]))
	rec.CompassRotation = f32(ctx[ctxCompassRotation : ctxCompassRotation+4])
	rec.PlayerMapPos = geom.Vec2{X: f32(ctx[ctxPlayerX : ctxPlayerX+4]), Y: f32(ctx[ctxPlayerY : ctxPlayerY+4])}
	rec.MapCenter = geom.Vec2{X: f32(ctx[ctxMapCenterX : ctxMapCenterX+4]), Y: f32(ctx[ctxMapCenterY : ctxMapCenterY+4])}
	rec.MapScale = f32(ctx[ctxMapScale : ctxMapScale+4])
	rec.DPI = binary.LittleEndian.Uint32(ctx[ctxDPI : ctxDPI+4])
	rec.DPIScaling = f32(ctx[ctxDPIScaling : ctxDPIScaling+4])
	rec.ClientPos = geom.Vec2{X: f32(ctx[ctxClientPosX : ctxClientPosX+4]), Y: f32(ctx[ctxClientPosY : ctxClientPosY+4])}
	rec.ClientSize = geom.Vec2{X: f32(ctx[ctxClientSizeW : ctxClientSizeW+4]), Y: f32(ctx[ctxClientSizeH : ctxClientSizeH+4])}
	rec.ProcessID = binary.LittleEndian.Uint32(ctx[ctxProcessID : ctxProcessID+4])
	rec.Mount = uint32(ctx[ctxMountIndex])

	return rec, nil
}
