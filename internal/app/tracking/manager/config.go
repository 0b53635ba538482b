package manager

import (
	"time"

	"github.com/light-bringer/changeproxy/internal/pkg/config"
)

// Config controls what the manager proxies and how.
type Config struct {
	// TrackChanges gives new collection and map proxies a change tracker.
	TrackChanges bool
	// AssertAllowedType makes proxies check element, key and value types.
	AssertAllowedType bool
	// DelayCollectionLoading hands out delayed lists and sets.
	DelayCollectionLoading bool
	// Unproxyable kinds are refused with proxy.ErrUnsupported.
	Unproxyable []Kind
	// LoadTimeout bounds implicit delayed loads.
	LoadTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{TrackChanges: true}
}

// ConfigFrom converts loaded settings, validating the kind names.
func ConfigFrom(c config.Config) (Config, error) {
	out := Config{
		TrackChanges:           c.TrackChanges,
		AssertAllowedType:      c.AssertAllowedType,
		DelayCollectionLoading: c.DelayCollectionLoading,
		LoadTimeout:            c.LoadTimeout,
	}
	for _, name := range c.Unproxyable {
		k, err := ParseKind(name)
		if err != nil {
			return Config{}, err
		}
		out.Unproxyable = append(out.Unproxyable, k)
	}
	return out, nil
}
