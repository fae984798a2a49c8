package core

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Role is the access tier stored on a user record.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleNew      Role = "new" // applicant who has not started yet
	RoleHR       Role = "hr"
	RoleUnknown  Role = "unknown"
)

// KnownRoles lists every role that has an explicit menu decision in MenuFor.
var KnownRoles = []Role{RoleEmployee, RoleNew, RoleHR}

// Canonical record keys. These are the names the formatter matches against and
// the names the router is told to normalise personal-info fields to.
const (
	KeyName                  = "name"
	KeyEmail                 = "email"
	KeyRole                  = "role"
	KeyPosition              = "position"
	KeyDepartment            = "department"
	KeyJoinDate              = "joinDate"
	KeyBaseSalary            = "baseSalary"
	KeyBonus                 = "bonus"
	KeyAnnualLeaveDays       = "annualLeaveDays"
	KeySickLeaveDays         = "sickLeaveDays"
	KeyUploadedDocuments     = "uploadedDocuments"
	KeyResubmissionRequested = "resubmissionRequested"
)

// UserRecord is one person's semi-structured HR record. Every attribute except
// ID is optional; nil pointers, invalid NullDecimals and nil maps mean "not on
// the record".
type UserRecord struct {
	ID                    string              `json:"id"`
	Name                  *string             `json:"name,omitempty"`
	Email                 *string             `json:"email,omitempty"`
	Role                  *Role               `json:"role,omitempty"`
	Position              *string             `json:"position,omitempty"`
	Department            *string             `json:"department,omitempty"`
	JoinDate              *time.Time          `json:"joinDate,omitempty"`
	BaseSalary            decimal.NullDecimal `json:"baseSalary"`
	Bonus                 decimal.NullDecimal `json:"bonus"`
	AnnualLeaveDays       *int                `json:"annualLeaveDays,omitempty"`
	SickLeaveDays         *int                `json:"sickLeaveDays,omitempty"`
	UploadedDocuments     map[string]bool     `json:"uploadedDocuments,omitempty"`
	ResubmissionRequested map[string]bool     `json:"resubmissionRequested,omitempty"`
	Extra                 map[string]string   `json:"extra,omitempty"`
}

// Field is one present attribute of a record, keyed by its record key.
type Field struct {
	Key   string
	Value string
}

// RoleOrUnknown returns the caller's role, or RoleUnknown when none is stored.
func (u *UserRecord) RoleOrUnknown() Role {
	if u.Role == nil || *u.Role == "" {
		return RoleUnknown
	}
	return *u.Role
}

// DisplayName returns the stored name or fallback when the record has none.
func (u *UserRecord) DisplayName(fallback string) string {
	if u.Name == nil || *u.Name == "" {
		return fallback
	}
	return *u.Name
}

// Fields lists every present attribute in a stable order: the canonical keys
// first, then Extra keys sorted lexicographically.
func (u *UserRecord) Fields() []Field {
	var out []Field
	addString := func(key string, v *string) {
		if v != nil {
			out = append(out, Field{Key: key, Value: *v})
		}
	}
	addInt := func(key string, v *int) {
		if v != nil {
			out = append(out, Field{Key: key, Value: strconv.Itoa(*v)})
		}
	}
	addMoney := func(key string, v decimal.NullDecimal) {
		if v.Valid {
			out = append(out, Field{Key: key, Value: FormatCurrency(v.Decimal)})
		}
	}

	addString(KeyName, u.Name)
	addString(KeyEmail, u.Email)
	if u.Role != nil {
		out = append(out, Field{Key: KeyRole, Value: string(*u.Role)})
	}
	addString(KeyPosition, u.Position)
	addString(KeyDepartment, u.Department)
	if u.JoinDate != nil {
		out = append(out, Field{Key: KeyJoinDate, Value: u.JoinDate.Format("2006-01-02")})
	}
	addMoney(KeyBaseSalary, u.BaseSalary)
	addMoney(KeyBonus, u.Bonus)
	addInt(KeyAnnualLeaveDays, u.AnnualLeaveDays)
	addInt(KeySickLeaveDays, u.SickLeaveDays)
	if u.UploadedDocuments != nil {
		out = append(out, Field{Key: KeyUploadedDocuments, Value: formatFlags(u.UploadedDocuments)})
	}
	if u.ResubmissionRequested != nil {
		out = append(out, Field{Key: KeyResubmissionRequested, Value: formatFlags(u.ResubmissionRequested)})
	}

	extraKeys := make([]string, 0, len(u.Extra))
	for k := range u.Extra {
		extraKeys = append(extraKeys, k)
	}
	sort.Strings(extraKeys)
	for _, k := range extraKeys {
		out = append(out, Field{Key: k, Value: u.Extra[k]})
	}
	return out
}

func formatFlags(m map[string]bool) string {
	keys := sortedKeys(m)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %t", k, m[k]))
	}
	return strings.Join(parts, ", ")
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RecordStore is the external user record collaborator. Get and Find return
// (nil, nil) when nothing matches; any other error means the store is unavailable.
type RecordStore interface {
	// Get returns the record with the given internal id.
	Get(ctx context.Context, id string) (*UserRecord, error)

	// Find returns the first record whose field exactly equals value.
	Find(ctx context.Context, field, value string) (*UserRecord, error)

	// Count returns how many records have field exactly equal to value.
	Count(ctx context.Context, field, value string) (int, error)
}
