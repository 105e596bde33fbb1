package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Contract is a credit agreement as served by GET /contracts.
type Contract struct {
	ID      string  `json:"id"`
	Bank    string  `json:"bank"`
	Balance float64 `json:"balance"`
	CET     float64 `json:"cet"`
	DueDate Date    `json:"dueDate"`
}

// UnmarshalJSON accepts numeric ids as well as strings.
func (c *Contract) UnmarshalJSON(data []byte) error {
	type plain Contract
	var raw struct {
		plain
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Contract(raw.plain)
	c.ID = strings.Trim(string(bytes.TrimSpace(raw.ID)), `"`)
	if c.ID == "null" {
		c.ID = ""
	}
	return nil
}

// ContractInput is the body of POST /contracts and PUT /contracts/{id}.
// EmpresaID and Numero only matter on create.
type ContractInput struct {
	EmpresaID string  `json:"empresa_id,omitempty"`
	Numero    string  `json:"numero,omitempty"`
	Bank      string  `json:"bank"`
	Balance   float64 `json:"balance"`
	CET       float64 `json:"cet"`
	DueDate   Date    `json:"dueDate"`
}

// Extrato is an uploaded statement and its processing status.
type Extrato struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// Date is a calendar day, serialised as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses YYYY-MM-DD. A full RFC 3339 timestamp is cut to its day.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(time.DateOnly) && s[len(time.DateOnly)] == 'T' {
		s = s[:len(time.DateOnly)]
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("date %q: expected YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

// After reports whether d falls on a later day than other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		if string(bytes.TrimSpace(data)) == "null" {
			*d = Date{}
			return nil
		}
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
