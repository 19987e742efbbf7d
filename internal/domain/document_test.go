package domain

import "testing"

func TestBackfillSettings(t *testing.T) {
	doc := Document{}
	if !BackfillSettings(&doc) {
		t.Fatal("expected backfill to report a change on empty document")
	}
	if len(doc.Settings.Categories) != len(DefaultCategories) {
		t.Fatalf("expected %d categories, got %d", len(DefaultCategories), len(doc.Settings.Categories))
	}
	if BackfillSettings(&doc) {
		t.Fatal("expected second backfill to be a no-op")
	}
}

func TestBackfillSettingsKeepsEmptySlices(t *testing.T) {
	// Пустой, но не-nil список — осознанный выбор администратора.
	doc := Document{Settings: Settings{Categories: []string{}, MenuRows: [][]string{}}}
	if BackfillSettings(&doc) {
		t.Fatal("expected no backfill for explicitly empty settings")
	}
	if len(doc.Settings.Categories) != 0 {
		t.Fatalf("expected categories untouched, got %v", doc.Settings.Categories)
	}
}

func TestCopyMenuRowsIsDeep(t *testing.T) {
	rows := CopyMenuRows(DefaultMenuRows)
	rows[0][0] = "mutated"
	if DefaultMenuRows[0][0] == "mutated" {
		t.Fatal("copy shares memory with the source")
	}
}

func TestProductUpdateApply(t *testing.T) {
	p := Product{ID: 1, Name: "old", Category: "cat", PriceMinor: 1000, Description: "d", PhotoRef: "ph"}
	name := "new"
	price := int64(2000)
	upd := ProductUpdate{Name: &name, PriceMinor: &price}
	upd.Apply(&p)

	if p.Name != "new" || p.PriceMinor != 2000 {
		t.Fatalf("expected updated name and price, got %+v", p)
	}
	if p.Category != "cat" || p.Description != "d" || p.PhotoRef != "ph" {
		t.Fatalf("expected untouched fields preserved, got %+v", p)
	}
}

func TestParseOrderStatus(t *testing.T) {
	s, err := ParseOrderStatus("  Shipped ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != OrderStatusShipped {
		t.Fatalf("expected shipped, got %q", s)
	}

	if _, err := ParseOrderStatus("done"); err != ErrStatusInvalid {
		t.Fatalf("expected ErrStatusInvalid, got %v", err)
	}
}

func TestValidateTotal(t *testing.T) {
	items := []OrderItem{
		{Qty: 2, PriceMinor: 1000},
		{Qty: 1, PriceMinor: 3000},
	}

	if err := ValidateTotal(Order{TotalMinor: 5000}, items); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateTotal(Order{TotalMinor: 4999}, items); err != ErrTotalMismatch {
		t.Fatalf("expected ErrTotalMismatch, got %v", err)
	}
	if err := ValidateTotal(Order{TotalMinor: 0}, []OrderItem{{Qty: 0, PriceMinor: 10}}); err != ErrQtyInvalid {
		t.Fatalf("expected ErrQtyInvalid, got %v", err)
	}
}

func TestIsValidOrderStatus(t *testing.T) {
	for _, s := range AllowedStatuses {
		if !IsValidOrderStatus(s) {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	for _, s := range []OrderStatus{"", "new", "PAID", "done"} {
		if IsValidOrderStatus(s) {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}
