package models_test

import (
	"testing"

	"github.com/garnizeh/buddyup/internal/models"
)

func TestJSONList_ScanValue(t *testing.T) {
	var skills models.JSONList[string]
	if err := skills.Scan(`["go","sql"]`); err != nil {
		t.Fatalf("scan string: %v", err)
	}
	if len(skills) != 2 || skills[1] != "sql" {
		t.Fatalf("unexpected skills %v", skills)
	}

	if err := skills.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if skills == nil || len(skills) != 0 {
		t.Fatalf("expected empty non-nil list after NULL, got %#v", skills)
	}

	var nilList models.JSONList[models.SocialLink]
	v, err := nilList.Value()
	if err != nil || v != "[]" {
		t.Fatalf("nil list should persist as [], got %v (%v)", v, err)
	}

	var links models.JSONList[models.SocialLink]
	if err := links.Scan([]byte(`[{"platform":"github","url":"https://github.com/x"}]`)); err != nil {
		t.Fatalf("scan bytes: %v", err)
	}
	if links[0].Platform != "github" {
		t.Fatalf("unexpected link %+v", links[0])
	}

	if err := links.Scan(42); err == nil {
		t.Fatalf("expected error scanning int")
	}
}

func TestJSONMap_ScanValue(t *testing.T) {
	var m models.JSONMap
	v, err := m.Value()
	if err != nil || v != nil {
		t.Fatalf("nil map should persist as NULL, got %v (%v)", v, err)
	}

	if err := m.Scan(`{"remote":true,"budget":100}`); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if m["remote"] != true {
		t.Fatalf("unexpected map %v", m)
	}

	if err := m.Scan(nil); err != nil || m != nil {
		t.Fatalf("scan NULL should reset map, got %v (%v)", m, err)
	}
}
