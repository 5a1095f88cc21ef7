package mumble

import (
	"encoding/json"
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

// decodeIdentity decodes the control block's UTF-16LE, null-terminated
// "identity" field into an Identity (spec §4.3 step 4, §6). Using
// golang.org/x/text instead of a hand-rolled UTF-16 loop (see DESIGN.md).
func decodeIdentity(raw []byte) (Identity, error) {
	for i := 0; i+1 < len(raw); i += 2 {
		if raw[i] == 0 && raw[i+1] == 0 {
			raw = raw[:i]
			break
		}
	}
	if len(raw) == 0 {
		return Identity{}, nil
	}

	decoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	utf8Bytes, err := decoder.Bytes(raw)
	if err != nil {
		return Identity{}, fmt.Errorf("mumble: decode identity utf-16: %w", err)
	}

	var id Identity
	if err := json.Unmarshal(utf8Bytes, &id); err != nil {
		return Identity{}, fmt.Errorf("mumble: unmarshal identity json: %w", err)
	}
	return id, nil
}
