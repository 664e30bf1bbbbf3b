package options

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/magiconair/properties"
	"github.com/spf13/viper"
)

// propertiesCodec lets viper read and write Java-style .properties files.
type propertiesCodec struct{}

func (propertiesCodec) Encode(v map[string]any) ([]byte, error) {
	p := properties.NewProperties()
	p.DisableExpansion = true

	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, _, err := p.Set(k, fmt.Sprint(v[k])); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := p.Write(&buf, properties.UTF8); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (propertiesCodec) Decode(b []byte, v map[string]any) error {
	l := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := l.LoadBytes(b)
	if err != nil {
		return err
	}

	for _, k := range p.Keys() {
		v[k], _ = p.Get(k)
	}
	return nil
}

// newViper returns a viper instance that understands .properties files.
func newViper() *viper.Viper {
	registry := viper.NewCodecRegistry()
	_ = registry.RegisterCodec("properties", propertiesCodec{})
	return viper.NewWithOptions(viper.WithCodecRegistry(registry))
}
