package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// TopN is a result count that accepts a JSON integer or a numeric string.
type TopN int

// UnmarshalJSON implements json.Unmarshaler.
func (t *TopN) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*t = TopN(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("top_n must be an integer, got %s", b)
	}
	n, err := ParseTopN(s)
	if err != nil {
		return err
	}
	*t = TopN(n)
	return nil
}

// ParseTopN parses a decimal top_n, ignoring surrounding spaces.
func ParseTopN(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("top_n must be an integer, got %q", s)
	}
	return n, nil
}

// Or returns def for an absent value.
func (t *TopN) Or(def int) int {
	if t == nil {
		return def
	}
	return int(*t)
}
