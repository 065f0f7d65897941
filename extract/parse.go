package extract

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// parseTableReply decodes a table-shaped reply and enforces the exact
// field set on every row. The service is instructed to wrap rows in
// {"rows": [...]}; a bare top-level array is tolerated.
func parseTableReply(raw string, fields []string) ([][]string, error) {
	arr, err := replyArray(raw, "rows")
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(arr))
	for i, elem := range arr {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(elem, &obj); err != nil {
			return nil, fmt.Errorf("row %d is not an object: %w", i, err)
		}
		if err := checkFieldSet(obj, fields, i); err != nil {
			return nil, err
		}
		row := make([]string, len(fields))
		for j, f := range fields {
			v, err := scalarString(obj[f])
			if err != nil {
				return nil, fmt.Errorf("row %d field %q: %w", i, f, err)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseObjectReply decodes a flat string-pair object into two-column
// rows. encoding/json maps forget key order, so the object is walked
// with a token decoder to preserve the on-page order the service was
// told to keep.
func parseObjectReply(raw string) ([][]string, error) {
	dec := json.NewDecoder(strings.NewReader(stripFences(raw)))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("reply is not JSON: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("reply is not a JSON object")
	}

	var rows [][]string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading object key: %w", err)
		}
		key := keyTok.(string)

		valTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading value for %q: %w", key, err)
		}
		val, err := tokenString(valTok)
		if err != nil {
			return nil, fmt.Errorf("value for %q: %w", key, err)
		}
		rows = append(rows, []string{key, val})
	}
	return rows, nil
}

// parseListReply decodes a list-shaped reply into its string values.
func parseListReply(raw string) ([]string, error) {
	arr, err := replyArray(raw, "values")
	if err != nil {
		return nil, err
	}
	values := make([]string, 0, len(arr))
	for i, elem := range arr {
		var s string
		if err := json.Unmarshal(elem, &s); err != nil {
			return nil, fmt.Errorf("element %d is not a string: %w", i, err)
		}
		values = append(values, s)
	}
	return values, nil
}

// replyArray extracts the JSON array from a reply that is either a bare
// array or an object carrying the array under the expected key (the
// service's JSON mode forces a top-level object). An object with a
// single array value under any key is also accepted.
func replyArray(raw, key string) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(stripFences(raw))

	if strings.HasPrefix(trimmed, "[") {
		var arr []json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &arr); err != nil {
			return nil, fmt.Errorf("reply array: %w", err)
		}
		return arr, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return nil, fmt.Errorf("reply is neither array nor object: %w", err)
	}
	if inner, ok := obj[key]; ok {
		var arr []json.RawMessage
		if err := json.Unmarshal(inner, &arr); err != nil {
			return nil, fmt.Errorf("value of %q is not an array: %w", key, err)
		}
		return arr, nil
	}
	if len(obj) == 1 {
		for _, inner := range obj {
			var arr []json.RawMessage
			if err := json.Unmarshal(inner, &arr); err == nil {
				return arr, nil
			}
		}
	}
	return nil, fmt.Errorf("reply object has no %q array", key)
}

// checkFieldSet enforces the exact-key contract on a table row.
func checkFieldSet(obj map[string]json.RawMessage, fields []string, row int) error {
	var missing, extra []string
	for _, f := range fields {
		if _, ok := obj[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(obj) != len(fields) || len(missing) > 0 {
		want := make(map[string]bool, len(fields))
		for _, f := range fields {
			want[f] = true
		}
		for k := range obj {
			if !want[k] {
				extra = append(extra, k)
			}
		}
		sort.Strings(extra)
		return fmt.Errorf("row %d field set mismatch: missing %v, unexpected %v", row, missing, extra)
	}
	return nil
}

// scalarString renders a JSON scalar as its string value. Numbers keep
// their literal form; objects and arrays are rejected.
func scalarString(rawVal json.RawMessage) (string, error) {
	dec := json.NewDecoder(strings.NewReader(string(rawVal)))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	return tokenString(tok)
}

func tokenString(tok json.Token) (string, error) {
	switch v := tok.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return fmt.Sprintf("%t", v), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected a scalar, got %T", tok)
	}
}

// stripFences removes a surrounding markdown code fence, which some
// models emit even when told not to.
func stripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
