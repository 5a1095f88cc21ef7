package config

import "time"

// Duration wraps time.Duration so BurntSushi/toml can decode a duration
// string ("16ms", "2s") via encoding.TextUnmarshaler, the same pattern
// pkg/config/config.go's Duration fields rely on.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}
