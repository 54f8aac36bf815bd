package directory

import (
	"context"
	"testing"
)

func seedStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	employees := []Employee{
		{EmployeeID: "E1001", FullName: "Zahid Hasan", Designation: "Senior Officer", Department: "Retail Banking", Division: "Retail & SME Banking", Email: "zahid.hasan@ebl.com", Mobile: "+880171111111", IPPhone: "4201"},
		{EmployeeID: "E1002", FullName: "Farah Nasrin", Designation: "Division Head", Department: "Retail Banking", Division: "Retail & SME Banking", Email: "farah.nasrin@ebl.com", Mobile: "+880171222222", IPPhone: "4202"},
		{EmployeeID: "E1003", FullName: "Kamrul Islam", Designation: "Branch Manager", Department: "Operations", Division: "Operations", Email: "kamrul.islam@ebl.com", Mobile: "+880171333333", IPPhone: "4203"},
	}
	for _, e := range employees {
		if err := s.Upsert(context.Background(), e); err != nil {
			t.Fatalf("seed upsert: %v", err)
		}
	}
	return s
}

func TestSearchExactFullName(t *testing.T) {
	s := seedStore(t)
	got, err := s.Search(context.Background(), "Zahid Hasan", DefaultLimit)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].EmployeeID != "E1001" {
		t.Fatalf("expected exact match on E1001, got %+v", got)
	}
}

func TestSearchByEmployeeID(t *testing.T) {
	s := seedStore(t)
	got, err := s.Search(context.Background(), "E1002", DefaultLimit)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].EmployeeID != "E1002" {
		t.Fatalf("expected E1002, got %+v", got)
	}
}

func TestSearchByEmail(t *testing.T) {
	s := seedStore(t)
	got, err := s.Search(context.Background(), "kamrul.islam@ebl.com", DefaultLimit)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].EmployeeID != "E1003" {
		t.Fatalf("expected E1003, got %+v", got)
	}
}

func TestSearchByMobile(t *testing.T) {
	s := seedStore(t)
	got, err := s.Search(context.Background(), "880171222222", DefaultLimit)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].EmployeeID != "E1002" {
		t.Fatalf("expected E1002, got %+v", got)
	}
}

func TestSearchByDesignationKeyword(t *testing.T) {
	s := seedStore(t)
	got, err := s.Search(context.Background(), "branch manager", DefaultLimit)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].EmployeeID != "E1003" {
		t.Fatalf("expected E1003, got %+v", got)
	}
}

func TestSearchByFirstName(t *testing.T) {
	s := seedStore(t)
	got, err := s.Search(context.Background(), "farah", DefaultLimit)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].EmployeeID != "E1002" {
		t.Fatalf("expected E1002, got %+v", got)
	}
}

func TestSearchNoMatch(t *testing.T) {
	s := seedStore(t)
	got, err := s.Search(context.Background(), "nonexistent person xyz", DefaultLimit)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no matches, got %+v", got)
	}
}

func TestSearchEmptyTerm(t *testing.T) {
	s := seedStore(t)
	got, err := s.Search(context.Background(), "   ", DefaultLimit)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no matches for blank term, got %+v", got)
	}
}
