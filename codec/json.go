package codec

import "encoding/json"

// JSON is the standard-library JSON codec, kept so snapshots stay readable by
// tools that only know encoding/json.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (JSON) Name() string                       { return "json" }

// Default encodes settings of newly written snapshots.
var Default Codec = GoJSON{}
