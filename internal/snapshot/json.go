package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// Dump renders scope as pretty-printed JSON: `encoding/json` does the
// struct marshal, `sjson` stamps a provenance field the Scope struct itself
// has no business carrying, and `pretty` indents the result for `json/dump`
// (spec.md §4.7 — the dump is meant to be read, not just round-tripped).
func Dump(scope *Scope) (string, error) {
	data, err := json.Marshal(scope)
	if err != nil {
		return "", err
	}
	data, err = sjson.SetBytes(data, "generator", "geomserver")
	if err != nil {
		return "", err
	}
	return string(pretty.Pretty(data)), nil
}

// Load parses data into a Scope. `gjson` does a cheap pre-check of the
// version field before paying for a full unmarshal, so a version mismatch
// is reported as CorruptedData rather than a confusing field-shape error
// from `encoding/json`.
func Load(data []byte) (*Scope, error) {
	if !gjson.ValidBytes(data) {
		return nil, &JSONParseError{Err: fmt.Errorf("not valid JSON")}
	}

	versionResult := gjson.GetBytes(data, "version")
	if !versionResult.Exists() {
		return nil, &CorruptedDataError{Msg: "missing version field"}
	}
	if versionResult.Int() != int64(CurrentVersion) {
		return nil, &CorruptedDataError{Msg: fmt.Sprintf("unsupported snapshot version %d", versionResult.Int())}
	}

	var scope Scope
	if err := json.Unmarshal(data, &scope); err != nil {
		return nil, &JSONParseError{Err: err}
	}
	return &scope, nil
}
