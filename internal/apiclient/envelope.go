package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Fields that wrap a list when the payload is an object rather than an array.
var listFields = []string{"data", "requests", "vendors", "users", "admins", "orders", "posts", "items", "reviews"}

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// payload strips the {message, data} envelope, including the doubly nested
// {data: {data: ...}} shape. Bodies without an envelope are returned as is.
func payload(body []byte) json.RawMessage {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return body
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil || len(env.Data) == 0 || isNull(env.Data) {
		return body
	}
	inner := bytes.TrimSpace(env.Data)
	if len(inner) > 0 && inner[0] == '{' {
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(inner, &nested); err == nil && len(nested) == 1 {
			if d, ok := nested["data"]; ok && !isNull(d) {
				return bytes.TrimSpace(d)
			}
		}
	}
	return inner
}

// decodeList accepts an array payload or an object that carries the array
// under one of listFields.
func decodeList(body []byte, out any) error {
	p := payload(body)
	if len(p) == 0 || isNull(p) {
		return json.Unmarshal([]byte("[]"), out)
	}
	if p[0] == '[' {
		return json.Unmarshal(p, out)
	}
	if p[0] != '{' {
		return errors.New("unexpected list payload")
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(p, &obj); err != nil {
		return err
	}
	for _, f := range listFields {
		if v, ok := obj[f]; ok {
			v = bytes.TrimSpace(v)
			if len(v) > 0 && v[0] == '[' {
				return json.Unmarshal(v, out)
			}
		}
	}
	return json.Unmarshal([]byte("[]"), out)
}

func decodeObject(body []byte, out any) error {
	p := payload(body)
	if len(p) == 0 || isNull(p) {
		return nil
	}
	return json.Unmarshal(p, out)
}

func isNull(b json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(b), []byte("null"))
}

func errorMessage(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		return env.Message
	}
	var alt struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &alt); err == nil && alt.Error != "" {
		return alt.Error
	}
	return ""
}
