package client

import (
	"bytes"
	"strings"

	"github.com/goccy/go-json"
)

// serverDetail extracts the human-readable detail from an error body.
// FastAPI sends {"detail": "..."} for handled errors and
// {"detail": [{"msg": "..."}, ...]} for validation errors; list items are
// joined with "; ". Bodies that are not JSON yield "".
func serverDetail(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return ""
	}
	var env struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	if d := detailText(env.Detail); d != "" {
		return d
	}
	return strings.TrimSpace(env.Message)
}

func detailText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return strings.TrimSpace(s)
		}
	case '[':
		var items []json.RawMessage
		if json.Unmarshal(raw, &items) != nil {
			return ""
		}
		parts := make([]string, 0, len(items))
		for _, it := range items {
			if s := detailText(it); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	case '{':
		var obj struct {
			Msg     string `json:"msg"`
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &obj) == nil {
			if obj.Msg != "" {
				return strings.TrimSpace(obj.Msg)
			}
			return strings.TrimSpace(obj.Message)
		}
	}
	return ""
}
