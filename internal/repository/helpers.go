package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// extractRecordID normalizes the id field of a SurrealDB row to the
// "table:id" string form used throughout the models.
func extractRecordID(id interface{}) string {
	switch v := id.(type) {
	case string:
		return v
	case models.RecordID:
		return v.String()
	case *models.RecordID:
		if v == nil {
			return ""
		}
		return v.String()
	case map[string]interface{}:
		// Raw {"tb": ..., "id": ...} shape from unparsed frames
		tb, tbOK := v["tb"].(string)
		inner, idOK := v["id"].(string)
		if tbOK && idOK {
			return fmt.Sprintf("%s:%s", tb, inner)
		}
		return ""
	}

	// Last resort: round-trip through JSON into a RecordID
	raw, err := json.Marshal(id)
	if err != nil {
		return ""
	}
	var rid models.RecordID
	if json.Unmarshal(raw, &rid) != nil {
		return ""
	}
	return rid.String()
}

// extractQueryResults unwraps the rows of the first statement in a query
// response, tolerating both framed ({"status","result"}) and bare arrays.
func extractQueryResults(result interface{}) ([]interface{}, bool) {
	frames, ok := result.([]interface{})
	if !ok || len(frames) == 0 {
		return nil, false
	}
	if frame, ok := frames[0].(map[string]interface{}); ok {
		if rows, ok := frame["result"].([]interface{}); ok {
			return rows, true
		}
	}
	return frames, true
}

// asRow converts a single query result into a row map
func asRow(result interface{}) (map[string]interface{}, bool) {
	row, ok := result.(map[string]interface{})
	return row, ok
}

func getString(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

// getStringPtr treats empty strings as absent, matching how optional text
// columns come back from the store.
func getStringPtr(m map[string]interface{}, key string) *string {
	if s, ok := m[key].(string); ok && s != "" {
		return &s
	}
	return nil
}

// getInt tolerates the numeric types the CBOR decoder may hand back
func getInt(m map[string]interface{}, key string) int {
	switch n := m[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	case float32:
		return int(n)
	default:
		return 0
	}
}

func getFloat(m map[string]interface{}, key string) float64 {
	switch n := m[key].(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

func getBool(m map[string]interface{}, key string) bool {
	b, _ := m[key].(bool)
	return b
}

// getTime extracts a required time value from a row
func getTime(m map[string]interface{}, key string) time.Time {
	if t := getTimePtr(m, key); t != nil {
		return *t
	}
	return time.Time{}
}

// getTimePtr extracts an optional time value from a row, accepting both
// decoded datetimes and RFC 3339 strings.
func getTimePtr(m map[string]interface{}, key string) *time.Time {
	switch v := m[key].(type) {
	case time.Time:
		return &v
	case models.CustomDateTime:
		t := v.Time
		return &t
	case *models.CustomDateTime:
		if v == nil {
			return nil
		}
		t := v.Time
		return &t
	case string:
		for _, layout := range []string{time.RFC3339, time.RFC3339Nano} {
			if t, err := time.Parse(layout, v); err == nil {
				return &t
			}
		}
	}
	return nil
}

// getRow extracts a nested object from a row
func getRow(m map[string]interface{}, key string) map[string]interface{} {
	nested, _ := m[key].(map[string]interface{})
	return nested
}

// getCount extracts the count from a SELECT count() row
func getCount(result interface{}) int {
	row, ok := asRow(result)
	if !ok {
		return 0
	}
	return getInt(row, "count")
}
