package render

import (
	"bytes"
	"encoding/json"
)

// Envelope encodes a view as a JSON object tagged with its kind:
// {"view": "<kind>", ...fields}. A simulation's chart is nested the same way
// under "chart".
func Envelope(v View) (json.RawMessage, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	if sv, ok := v.(SimulationView); ok && sv.Chart != nil {
		chart, err := Envelope(sv.Chart)
		if err != nil {
			return nil, err
		}
		body = withField(body, "chart", chart, false)
	}

	kind, _ := json.Marshal(v.Kind())
	return withField(body, "view", kind, true), nil
}

// withField splices "key": value into an encoded JSON object, first or last.
func withField(obj []byte, key string, value []byte, first bool) []byte {
	k, _ := json.Marshal(key)
	var field bytes.Buffer
	field.Write(k)
	field.WriteByte(':')
	field.Write(value)

	inner := bytes.TrimSpace(obj)
	inner = inner[1 : len(inner)-1]

	var out bytes.Buffer
	out.WriteByte('{')
	switch {
	case len(inner) == 0:
		out.Write(field.Bytes())
	case first:
		out.Write(field.Bytes())
		out.WriteByte(',')
		out.Write(inner)
	default:
		out.Write(inner)
		out.WriteByte(',')
		out.Write(field.Bytes())
	}
	out.WriteByte('}')
	return out.Bytes()
}
