package config

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// LogLevels represents hierarchical log level configuration.
// Keys are logger names (e.g., "core.schema", "api") and values are log levels.
type LogLevels map[string]string

// LogLevelsDecodeHook skips decoding for LogLevels.
// viper turns dotted keys into nested maps, which would fail to decode into a
// flat map; the field is filled afterwards by flattenLevels.
func LogLevelsDecodeHook() mapstructure.DecodeHookFunc {
	return func(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(LogLevels{}) {
			return data, nil
		}
		return make(LogLevels), nil
	}
}

// flattenLevels rebuilds dotted names from viper's nested representation.
// A key that is both a leaf and a parent ("api" and "api.graphql") is kept as both.
func flattenLevels(raw interface{}) LogLevels {
	out := make(LogLevels)
	var walk func(prefix string, v interface{})
	walk = func(prefix string, v interface{}) {
		switch val := v.(type) {
		case map[string]interface{}:
			for k, child := range val {
				walk(join(prefix, k), child)
			}
		case map[interface{}]interface{}:
			for k, child := range val {
				walk(join(prefix, fmt.Sprint(k)), child)
			}
		case nil:
		default:
			if prefix != "" {
				out[prefix] = fmt.Sprint(val)
			}
		}
	}
	walk("", raw)
	return out
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
