package importer

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// legacyID accepts both "abc" and 123 for record ids.
type legacyID string

func (id *legacyID) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = legacyID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = legacyID(n.String())
	return nil
}

type legacyUser struct {
	ID        legacyID `json:"id"`
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	Name      string   `json:"name"`
	FullName  string   `json:"fullName"`
	CreatedAt string   `json:"createdAt"`
	UpdatedAt string   `json:"updatedAt"`
}

type legacyPayment struct {
	ID        legacyID        `json:"id"`
	Email     string          `json:"email"`
	Package   string          `json:"package"`
	Service   string          `json:"service"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	QRCodeURL string          `json:"qrCodeUrl"`
	CreatedAt string          `json:"createdAt"`
	UpdatedAt string          `json:"updatedAt"`
}

type legacyContact struct {
	ID          legacyID `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Topic       string   `json:"topic"`
	Subject     string   `json:"subject"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Notes       string   `json:"notes"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

// parseTime reads an ISO-8601 timestamp or a unix-millisecond string and
// falls back to def.
func parseTime(s string, def time.Time) time.Time {
	if s == "" {
		return def
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms)
	}
	return def
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
