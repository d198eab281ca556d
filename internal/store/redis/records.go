package redis

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/tidwall/gjson"

	"github.com/MrSnakeDoc/linemark/internal/domain"
)

// ErrMalformed is returned when a whole persisted key cannot be parsed.
var ErrMalformed = errors.New("malformed persisted collection")

// RecordError describes one persisted record that failed validation.
type RecordError struct {
	Index int
	Err   error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e RecordError) Unwrap() error { return e.Err }

var (
	bookmarkStrings  = []string{"id", "filePath", "fileName", "lineText", "fullText"}
	bookmarkOptional = []string{"customName", "directoryId"}
)

// DecodeBookmarks parses a persisted bookmark array. Records with a missing
// or mistyped field are skipped and reported; unknown fields are ignored.
// A payload that is not a JSON array fails as a whole with ErrMalformed.
func DecodeBookmarks(data []byte) ([]domain.Bookmark, []RecordError, error) {
	records, err := parseArray(data)
	if err != nil {
		return nil, nil, err
	}

	out := make([]domain.Bookmark, 0, len(records))
	var skipped []RecordError
	for i, r := range records {
		if err := validateBookmark(r); err != nil {
			skipped = append(skipped, RecordError{Index: i, Err: err})
			continue
		}
		var b domain.Bookmark
		if err := json.Unmarshal([]byte(r.Raw), &b); err != nil {
			skipped = append(skipped, RecordError{Index: i, Err: err})
			continue
		}
		out = append(out, b)
	}
	return out, skipped, nil
}

// DecodeDirectories parses a persisted directory array, see DecodeBookmarks.
func DecodeDirectories(data []byte) ([]domain.Directory, []RecordError, error) {
	records, err := parseArray(data)
	if err != nil {
		return nil, nil, err
	}

	out := make([]domain.Directory, 0, len(records))
	var skipped []RecordError
	for i, r := range records {
		if err := validateDirectory(r); err != nil {
			skipped = append(skipped, RecordError{Index: i, Err: err})
			continue
		}
		var d domain.Directory
		if err := json.Unmarshal([]byte(r.Raw), &d); err != nil {
			skipped = append(skipped, RecordError{Index: i, Err: err})
			continue
		}
		out = append(out, d)
	}
	return out, skipped, nil
}

func parseArray(data []byte) ([]gjson.Result, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformed)
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected an array", ErrMalformed)
	}
	return root.Array(), nil
}

func validateBookmark(r gjson.Result) error {
	if !r.IsObject() {
		return errors.New("not an object")
	}
	for _, field := range bookmarkStrings {
		if err := requireType(r, field, gjson.String); err != nil {
			return err
		}
	}
	if err := requireType(r, "lineNumber", gjson.Number); err != nil {
		return err
	}
	if n := r.Get("lineNumber").Float(); n != math.Trunc(n) || n < 0 {
		return fmt.Errorf("field %q must be a non-negative integer", "lineNumber")
	}
	if err := optionalType(r, "order", gjson.Number); err != nil {
		return err
	}
	for _, field := range bookmarkOptional {
		if err := optionalType(r, field, gjson.String); err != nil {
			return err
		}
	}
	return nil
}

func validateDirectory(r gjson.Result) error {
	if !r.IsObject() {
		return errors.New("not an object")
	}
	if err := requireType(r, "id", gjson.String); err != nil {
		return err
	}
	if err := requireType(r, "name", gjson.String); err != nil {
		return err
	}
	return optionalType(r, "order", gjson.Number)
}

func requireType(r gjson.Result, field string, want gjson.Type) error {
	v := r.Get(field)
	if !v.Exists() {
		return fmt.Errorf("missing field %q", field)
	}
	if v.Type != want {
		return fmt.Errorf("field %q must be %s, got %s", field, typeName(want), typeName(v.Type))
	}
	return nil
}

// optionalType accepts an absent or null field.
func optionalType(r gjson.Result, field string, want gjson.Type) error {
	v := r.Get(field)
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	if v.Type != want {
		return fmt.Errorf("field %q must be %s, got %s", field, typeName(want), typeName(v.Type))
	}
	return nil
}

func typeName(t gjson.Type) string {
	switch t {
	case gjson.String:
		return "a string"
	case gjson.Number:
		return "a number"
	case gjson.True, gjson.False:
		return "a boolean"
	case gjson.Null:
		return "null"
	case gjson.JSON:
		return "an object or array"
	default:
		return "nothing"
	}
}
