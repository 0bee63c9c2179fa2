package config

import (
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// GetDefaults returns the default value of every known key.
func GetDefaults() map[string]interface{} {
	defaults := make(map[string]interface{}, len(keySchemas))
	for _, s := range keySchemas {
		defaults[s.Key] = s.Default
	}
	return defaults
}

// GetDefaultConfigTemplate returns the JSON written by `stackgen config init`,
// with keys in KnownKeyOrder.
func GetDefaultConfigTemplate() string {
	defaults := GetDefaults()
	doc := []byte("{}")
	for _, key := range KnownKeyOrder {
		doc, _ = sjson.SetBytes(doc, key, defaults[key])
	}
	return string(pretty.Pretty(doc))
}
