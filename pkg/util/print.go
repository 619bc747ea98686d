package util

import (
	"encoding/json"
	"fmt"

	"github.com/TylerBrock/colorjson"
)

// Recast round-trips from through JSON into to.
func Recast(from, to any) error {
	switch v := from.(type) {
	case []byte:
		return json.Unmarshal(v, to)
	default:
		buf, err := json.Marshal(from)
		if err != nil {
			return err
		}

		return json.Unmarshal(buf, to)
	}
}

// PrintJSON pretty-prints obj to stdout. Troubleshooting helper only.
func PrintJSON(obj any) {
	var mapData map[string]any
	if err := Recast(obj, &mapData); err != nil {
		return
	}

	f := colorjson.NewFormatter()
	f.Indent = 4
	s, _ := f.Marshal(mapData)
	fmt.Println(string(s))
}
