package core

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// MemoryStore is an in-process RecordStore. Find returns matches in insertion order.
type MemoryStore struct {
	mu      sync.RWMutex
	order   []string
	records map[string]UserRecord
}

// NewMemoryStore returns a store holding records.
func NewMemoryStore(records ...UserRecord) *MemoryStore {
	s := &MemoryStore{records: make(map[string]UserRecord)}
	for _, r := range records {
		s.Put(r)
	}
	return s
}

// Put inserts or replaces a record.
func (s *MemoryStore) Put(rec UserRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[rec.ID]; !exists {
		s.order = append(s.order, rec.ID)
	}
	s.records[rec.ID] = rec
}

// All returns every record in insertion order.
func (s *MemoryStore) All() []UserRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]UserRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id])
	}
	return out
}

func (s *MemoryStore) Get(_ context.Context, id string) (*UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *MemoryStore) Find(_ context.Context, field, value string) (*UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		rec := s.records[id]
		v, ok, err := searchableValue(&rec, field)
		if err != nil {
			return nil, err
		}
		if ok && v == value {
			return &rec, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) Count(_ context.Context, field, value string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, rec := range s.records {
		v, ok, err := searchableValue(&rec, field)
		if err != nil {
			return 0, err
		}
		if ok && v == value {
			n++
		}
	}
	return n, nil
}

func searchableValue(rec *UserRecord, field string) (string, bool, error) {
	deref := func(p *string) (string, bool, error) {
		if p == nil {
			return "", false, nil
		}
		return *p, true, nil
	}
	switch field {
	case KeyName:
		return deref(rec.Name)
	case KeyEmail:
		return deref(rec.Email)
	case KeyPosition:
		return deref(rec.Position)
	case KeyDepartment:
		return deref(rec.Department)
	case KeyRole:
		if rec.Role == nil {
			return "", false, nil
		}
		return string(*rec.Role), true, nil
	default:
		return "", false, fmt.Errorf("field %q is not searchable", field)
	}
}

// seedRecord is the on-disk shape of a seed file entry. Money is written as a
// string or number and parsed into decimals.
type seedRecord struct {
	ID                    string            `yaml:"id"`
	Name                  *string           `yaml:"name"`
	Email                 *string           `yaml:"email"`
	Role                  *string           `yaml:"role"`
	Position              *string           `yaml:"position"`
	Department            *string           `yaml:"department"`
	JoinDate              *string           `yaml:"joinDate"`
	BaseSalary            *string           `yaml:"baseSalary"`
	Bonus                 *string           `yaml:"bonus"`
	AnnualLeaveDays       *int              `yaml:"annualLeaveDays"`
	SickLeaveDays         *int              `yaml:"sickLeaveDays"`
	UploadedDocuments     map[string]bool   `yaml:"uploadedDocuments"`
	ResubmissionRequested map[string]bool   `yaml:"resubmissionRequested"`
	Extra                 map[string]string `yaml:"extra"`
}

// LoadSeedFile reads a YAML (or JSON) list of users into a MemoryStore.
func LoadSeedFile(path string) (*MemoryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes seed data into a MemoryStore.
func ParseSeed(data []byte) (*MemoryStore, error) {
	var seeds []seedRecord
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	store := NewMemoryStore()
	for i, sr := range seeds {
		if sr.ID == "" {
			return nil, fmt.Errorf("seed entry %d has no id", i)
		}
		rec := UserRecord{
			ID:                    sr.ID,
			Name:                  sr.Name,
			Email:                 sr.Email,
			Position:              sr.Position,
			Department:            sr.Department,
			AnnualLeaveDays:       sr.AnnualLeaveDays,
			SickLeaveDays:         sr.SickLeaveDays,
			UploadedDocuments:     sr.UploadedDocuments,
			ResubmissionRequested: sr.ResubmissionRequested,
			Extra:                 sr.Extra,
		}
		if sr.Role != nil {
			r := Role(*sr.Role)
			rec.Role = &r
		}
		if sr.JoinDate != nil {
			t, err := time.Parse("2006-01-02", *sr.JoinDate)
			if err != nil {
				return nil, fmt.Errorf("seed %s joinDate: %w", sr.ID, err)
			}
			rec.JoinDate = &t
		}
		salary, err := parseNullDecimal(sr.BaseSalary)
		if err != nil {
			return nil, fmt.Errorf("seed %s baseSalary: %w", sr.ID, err)
		}
		bonus, err := parseNullDecimal(sr.Bonus)
		if err != nil {
			return nil, fmt.Errorf("seed %s bonus: %w", sr.ID, err)
		}
		rec.BaseSalary, rec.Bonus = salary, bonus
		store.Put(rec)
	}
	return store, nil
}

// compile-time interface check
var _ RecordStore = (*MemoryStore)(nil)

// NullMoney is a convenience for building records in code.
func NullMoney(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}
