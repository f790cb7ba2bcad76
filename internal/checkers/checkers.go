// Package checkers provides quicktest checkers shared by the package tests.
package checkers

import (
	"encoding/json"
	"fmt"

	qt "github.com/frankban/quicktest"
	"github.com/yalp/jsonpath"
)

// JSONPathEquals returns a checker that parses the obtained value (a string
// or []byte holding JSON) and compares the value found at path with the
// expected one using qt.DeepEquals. JSON numbers are float64.
//
//	c.Assert(text, checkers.JSONPathEquals("$.rolled"), true)
func JSONPathEquals(path string) qt.Checker {
	return &jsonPathChecker{path: path}
}

type jsonPathChecker struct {
	path string
}

func (c *jsonPathChecker) ArgNames() []string {
	return []string{"got", "want"}
}

func (c *jsonPathChecker) Check(got any, args []any, note func(key string, value any)) error {
	var raw []byte
	switch v := got.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		note("got type", fmt.Sprintf("%T", got))
		return qt.BadCheckf("obtained value is not a string or []byte")
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		note("document", string(raw))
		return fmt.Errorf("cannot parse JSON: %w", err)
	}
	value, err := jsonpath.Read(doc, c.path)
	if err != nil {
		note("document", string(raw))
		return fmt.Errorf("cannot read %s: %w", c.path, err)
	}
	note("path", c.path)
	return qt.DeepEquals.Check(value, args, note)
}
