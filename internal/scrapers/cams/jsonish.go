package cams

import (
	"encoding/json"
	"regexp"
	"strings"
)

// The login endpoint answers with a javascript literal wrapped in parentheses,
// ex. `({'loginStatus':'false','strError':'bad creds','lastLogin':new Date('01/15/2024')})`.
// It is turned into JSON by a fixed sequence of textual rewrites.

type jsonishStep struct {
	name  string
	apply func(string) (string, error)
}

func stripWrapper(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return "", parseErrorf("jsonish: %q is too short to have a wrapper", s)
	}
	return s[1 : len(s)-1], nil
}

// apostrophes inside string values are rewritten too, the portal does not
// send any in the fields that are read.
func singleToDoubleQuotes(s string) (string, error) {
	return strings.ReplaceAll(s, "'", `"`), nil
}

var dateConstructorRegex = regexp.MustCompile(`new Date\(("[^"]*")\)`)

func unwrapDateConstructor(s string) (string, error) {
	return dateConstructorRegex.ReplaceAllString(s, "$1"), nil
}

func unquoteFalse(s string) (string, error) {
	return strings.ReplaceAll(s, `"false"`, "false"), nil
}

var jsonishSteps = []jsonishStep{
	{name: "strip-wrapper", apply: stripWrapper},
	{name: "single-to-double-quotes", apply: singleToDoubleQuotes},
	{name: "unwrap-date-constructor", apply: unwrapDateConstructor},
	{name: "unquote-false", apply: unquoteFalse},
}

// NormalizeJsonish rewrites a jsonish login response into strict JSON.
func NormalizeJsonish(s string) (string, error) {
	var err error
	for _, step := range jsonishSteps {
		s, err = step.apply(s)
		if err != nil {
			return "", err
		}
	}
	if !json.Valid([]byte(s)) {
		return "", parseErrorf("jsonish: normalized response is not valid json: %q", s)
	}
	return s, nil
}

// truthy is a json value interpreted with loose truthiness, since the portal
// sends booleans both bare and quoted.
type truthy bool

func (t *truthy) UnmarshalJSON(data []byte) error {
	var value any
	err := json.Unmarshal(data, &value)
	if err != nil {
		return err
	}
	switch v := value.(type) {
	case bool:
		*t = truthy(v)
	case string:
		*t = truthy(v != "" && v != "false")
	case float64:
		*t = truthy(v != 0)
	default:
		*t = false
	}
	return nil
}

type loginResponse struct {
	LoginStatus truthy `json:"loginStatus"`
	StrError    string `json:"strError"`
}

func decodeLoginResponse(body string) (loginResponse, error) {
	normalized, err := NormalizeJsonish(body)
	if err != nil {
		return loginResponse{}, err
	}
	var res loginResponse
	err = json.Unmarshal([]byte(normalized), &res)
	if err != nil {
		return loginResponse{}, parseErrorf("login response: %s", err.Error())
	}
	return res, nil
}
