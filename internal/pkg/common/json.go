package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// ErrTrailingJSON 文件後仍有多餘資料
var ErrTrailingJSON = errors.New("unexpected extra JSON data")

// ParseJSON 解析 JSON 字符串
func ParseJSON(data string, v any) error {
	return decode(strings.NewReader(data), v, false)
}

// ParseJSONBytes 解析 JSON 位元組
func ParseJSONBytes(data []byte, v any) error {
	return decode(bytes.NewReader(data), v, false)
}

// ParseJSONBytesStrict 同 ParseJSONBytes，但拒絕未知欄位
func ParseJSONBytesStrict(data []byte, v any) error {
	return decode(bytes.NewReader(data), v, true)
}

func decode(r io.Reader, v any, strict bool) error {
	dec := json.NewDecoder(r)
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return ErrTrailingJSON
	}
	return nil
}

// ToJSON 序列化為 JSON 字符串
func ToJSON(v any) (string, error) {
	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
