package warehouse

import (
	"encoding/json"
	"strings"

	"github.com/stratusops/stratus/internal/fault"
)

// Field is one column of a table schema. Type is the canonical warehouse
// type name after validation.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// sqlTypes maps accepted spellings (legacy and standard SQL, matched
// case-insensitively) to the canonical type name.
var sqlTypes = map[string]string{
	"STRING":     "STRING",
	"BYTES":      "BYTES",
	"INTEGER":    "INTEGER",
	"INT64":      "INTEGER",
	"FLOAT":      "FLOAT",
	"FLOAT64":    "FLOAT",
	"BOOLEAN":    "BOOLEAN",
	"BOOL":       "BOOLEAN",
	"TIMESTAMP":  "TIMESTAMP",
	"DATE":       "DATE",
	"TIME":       "TIME",
	"DATETIME":   "DATETIME",
	"NUMERIC":    "NUMERIC",
	"BIGNUMERIC": "BIGNUMERIC",
	"GEOGRAPHY":  "GEOGRAPHY",
	"JSON":       "JSON",
	"STRUCT":     "RECORD",
	"RECORD":     "RECORD",
}

// ParseSchema parses a {"fields":[{"name","type"}]} document into a
// validated field list.
func ParseSchema(body []byte) ([]Field, error) {
	var in struct {
		Fields []Field `json:"fields"`
	}
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, fault.BadRequestf("Failed to parse JSON: %v", err)
	}
	if len(in.Fields) == 0 {
		return nil, fault.BadRequestf("Failed to parse JSON: missing \"fields\" array")
	}
	out := make([]Field, 0, len(in.Fields))
	for _, f := range in.Fields {
		if f.Name == "" {
			return nil, fault.BadRequestf("Failed to parse JSON: field with empty name")
		}
		canonical, ok := sqlTypes[strings.ToUpper(f.Type)]
		if !ok {
			return nil, fault.BadRequestf("Failed to parse JSON: unknown field type %q", f.Type)
		}
		out = append(out, Field{Name: f.Name, Type: canonical})
	}
	return out, nil
}
