package runner

import (
	"encoding/json"
	"fmt"
)

// Sanitize makes a script return value safe to persist and transmit as plain
// data: the value is serialized and re-parsed so only structural data
// survives. Values that cannot be serialized fall back to their string
// representation. A nil top-level value passes through unchanged, denoting
// "no result".
func Sanitize(value interface{}) interface{} {
	if value == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	var ret interface{}
	if err := json.Unmarshal(data, &ret); err != nil {
		return string(data)
	}
	return ret
}
