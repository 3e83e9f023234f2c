package fileio

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/dataveil/dataveil/core"
)

// loadJSON reads either a JSON array of objects or JSONL (one object per
// line). Column order follows first appearance across records; values keep
// their textual form (json.Number avoids float round-tripping).
func loadJSON(path string) (*core.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	records, err := decodeJSONRecords(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	var names []string
	seen := map[string]bool{}
	for _, rec := range records {
		for _, key := range rec.order {
			if !seen[key] {
				seen[key] = true
				names = append(names, key)
			}
		}
	}

	rows := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, len(names))
		for j, name := range names {
			row[j] = rec.values[name]
		}
		rows[i] = row
	}
	return core.NewDataset(names, rows), nil
}

// jsonRecord keeps both the values and the key order of one object.
type jsonRecord struct {
	order  []string
	values map[string]string
}

func decodeJSONRecords(data []byte) ([]jsonRecord, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return decodeArray(trimmed)
	}
	return decodeLines(data)
}

func decodeArray(data []byte) ([]jsonRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	// Consume the opening bracket, then stream the objects.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	var records []jsonRecord
	for dec.More() {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		rec, err := decodeObject(raw)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func decodeLines(data []byte) ([]jsonRecord, error) {
	var records []jsonRecord
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		rec, err := decodeObject(line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, scanner.Err()
}

// decodeObject parses one JSON object token by token so key order is
// preserved, which a plain map decode would scramble.
func decodeObject(data []byte) (jsonRecord, error) {
	rec := jsonRecord{values: map[string]string{}}
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return rec, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return rec, fmt.Errorf("expected a JSON object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return rec, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return rec, fmt.Errorf("unexpected object key %v", keyTok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return rec, err
		}
		rec.order = append(rec.order, key)
		rec.values[key] = jsonScalar(value)
	}
	return rec, nil
}

// jsonScalar renders a JSON value as the string the pipeline works with:
// strings unquoted, numbers verbatim, null as "".
func jsonScalar(msg json.RawMessage) string {
	var v any
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return string(msg)
	}
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return string(msg)
	}
}
