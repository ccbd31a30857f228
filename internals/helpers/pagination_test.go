package helper

import "testing"

func TestNormalize(t *testing.T) {
	p := Params{Page: 0, PerPage: 1000, SortOrder: "DESC "}.Normalize(DefaultOpts)
	if p.Page != 1 || p.PerPage != DefaultOpts.MaxPerPage || p.SortOrder != "desc" {
		t.Fatalf("normalized = %+v", p)
	}
	p = Params{}.Normalize(DefaultOpts)
	if p.PerPage != DefaultOpts.DefaultPerPage || p.SortOrder != "asc" {
		t.Fatalf("defaults = %+v", p)
	}
	if p.Offset() != 0 || (Params{Page: 3, PerPage: 10}).Offset() != 20 {
		t.Fatalf("offset wrong")
	}
}

func TestSafeOrder(t *testing.T) {
	allowed := map[string]string{"id": "blood_bank_id", "name": "blood_bank_name"}
	got, err := Params{SortBy: "name", SortOrder: "desc"}.SafeOrder(allowed, "id")
	if err != nil || got != "blood_bank_name DESC" {
		t.Fatalf("SafeOrder = %q, %v", got, err)
	}
	got, _ = Params{SortBy: "1; DROP TABLE users"}.SafeOrder(allowed, "id")
	if got != "blood_bank_id ASC" {
		t.Fatalf("unknown key should fall back, got %q", got)
	}
	if _, err := (Params{}).SafeOrder(allowed, "missing"); err == nil {
		t.Fatalf("missing default key accepted")
	}
}

func TestBuildMeta(t *testing.T) {
	m := BuildMeta(45, Params{Page: 2, PerPage: 20})
	if m.TotalPages != 3 || !m.HasNext || !m.HasPrev {
		t.Fatalf("meta = %+v", m)
	}
	if m := BuildMeta(0, Params{Page: 1, PerPage: 20}); m.TotalPages != 0 || m.HasNext {
		t.Fatalf("empty meta = %+v", m)
	}
}
