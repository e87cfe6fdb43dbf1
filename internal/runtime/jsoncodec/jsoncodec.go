// Package jsoncodec wraps the JSON codec used throughout fieldflow. The rest
// of the module treats it as a black box: bytes in, typed values out, with
// decode failures reported as plain errors that callers classify.
package jsoncodec

import (
	"io"

	"github.com/bytedance/sonic"
)

var defaultConfig = sonic.ConfigStd

func Marshal(v any) ([]byte, error) {
	return defaultConfig.Marshal(v)
}

func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return defaultConfig.MarshalIndent(v, prefix, indent)
}

func Unmarshal(data []byte, v any) error {
	return defaultConfig.Unmarshal(data, v)
}

func Encode(w io.Writer, v any) error {
	enc := defaultConfig.NewEncoder(w)
	return enc.Encode(v)
}

func Decode(r io.Reader, v any) error {
	dec := defaultConfig.NewDecoder(r)
	return dec.Decode(v)
}

// FieldString reads a single top-level string field out of a JSON document
// without decoding the rest of it. The union dispatcher uses this to pull the
// discriminator while leaving the payload untouched.
func FieldString(data []byte, key string) (string, error) {
	node, err := sonic.Get(data, key)
	if err != nil {
		return "", err
	}
	return node.String()
}

// FieldRaw returns the raw bytes of a single top-level field of a JSON
// document, leaving them undecoded. The returned span stays valid as long as
// data does.
func FieldRaw(data []byte, key string) ([]byte, error) {
	node, err := sonic.Get(data, key)
	if err != nil {
		return nil, err
	}
	raw, err := node.Raw()
	if err != nil {
		return nil, err
	}
	return []byte(raw), nil
}
