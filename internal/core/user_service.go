package core

import (
	"context"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Records is the read-only access layer the dispatcher uses over a RecordStore.
// Every store failure comes back as ErrStoreUnavailable.
type Records struct {
	store RecordStore
}

// NewRecords wraps store.
func NewRecords(store RecordStore) *Records {
	return &Records{store: store}
}

// FetchByID returns the record with internal id, or nil when there is none.
func (r *Records) FetchByID(ctx context.Context, id string) (*UserRecord, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}
	rec, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, storeUnavailable(err)
	}
	return rec, nil
}

// FetchByIdentifier finds a user by exact email first and falls back to an
// exact match on the title-cased name. When several records share a name the
// store decides which one is first.
func (r *Records) FetchByIdentifier(ctx context.Context, identifier string) (*UserRecord, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, nil
	}

	rec, err := r.store.Find(ctx, KeyEmail, identifier)
	if err != nil {
		return nil, storeUnavailable(err)
	}
	if rec != nil {
		return rec, nil
	}

	rec, err = r.store.Find(ctx, KeyName, TitleCase(identifier))
	if err != nil {
		return nil, storeUnavailable(err)
	}
	return rec, nil
}

// CountByRole returns the number of records with role.
func (r *Records) CountByRole(ctx context.Context, role Role) (int, error) {
	n, err := r.store.Count(ctx, KeyRole, string(role))
	if err != nil {
		return 0, storeUnavailable(err)
	}
	return n, nil
}

// TitleCase upper-cases the first letter of every run of letters and
// lower-cases the rest: "salma ali" becomes "Salma Ali" and "o'brien"
// becomes "O'Brien".
func TitleCase(s string) string {
	caser := cases.Title(language.Und)
	var b strings.Builder
	b.Grow(len(s))
	start := -1
	for i, r := range s {
		if unicode.IsLetter(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			b.WriteString(caser.String(s[start:i]))
			start = -1
		}
		b.WriteRune(r)
	}
	if start >= 0 {
		b.WriteString(caser.String(s[start:]))
	}
	return b.String()
}
