package fingerprint

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"nhtk-schedule/internal/scrapers/nhtk"
)

// Lessons returns the fingerprint of a lesson list, it is what gets stored
// as data_hash next to every synced row.
func Lessons(lessons []nhtk.Lesson) (string, error) {
	raw, err := json.Marshal(lessons)
	if err != nil {
		return "", fmt.Errorf("encode lessons: %w", err)
	}
	return JSON(raw)
}

// JSON returns the md5 hex digest of the canonical form of a json value.
func JSON(raw []byte) (string, error) {
	canonical, err := Canonicalize(raw)
	if err != nil {
		return "", err
	}
	sum := md5.Sum(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Canonicalize re-encodes a json value with the keys of every object sorted
// and no insignificant whitespace. Array order is kept and numbers are
// written exactly as they appeared.
func Canonicalize(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var value any
	err := dec.Decode(&value)
	if err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	buff := bytes.NewBuffer(nil)
	enc := json.NewEncoder(buff)
	enc.SetEscapeHTML(false)
	err = enc.Encode(value)
	if err != nil {
		return nil, fmt.Errorf("encode canonical json: %w", err)
	}
	return bytes.TrimSuffix(buff.Bytes(), []byte("\n")), nil
}
