package rules

import (
	"testing"

	"bilancio/internal/core"
)

func active(kind core.RuleKind, pattern, category string) core.Rule {
	return core.Rule{Name: pattern, Kind: kind, Pattern: pattern, Category: category, Active: true}
}

func TestClassifySubstring(t *testing.T) {
	e := NewEngine([]core.Rule{
		active(core.KindSubstring, "taxi", "Transport"),
		active(core.KindSubstring, "uber", "Transport"),
	})

	cat, ok := e.Classify("Taxi to the airport", "alice")
	if !ok || cat != "Transport" {
		t.Fatalf("Classify = %q, %v; want Transport, true", cat, ok)
	}
	// Pattern may match the payer label too.
	cat, ok = e.Classify("monthly ride", "Uber BV")
	if !ok || cat != "Transport" {
		t.Fatalf("Classify on payer = %q, %v; want Transport, true", cat, ok)
	}
	if _, ok := e.Classify("groceries", "alice"); ok {
		t.Fatal("Classify matched with no applicable rule")
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	e := NewEngine([]core.Rule{
		active(core.KindSubstring, "food", "Groceries"),
		active(core.KindSubstring, "fast food", "Restaurants"),
	})
	// Both patterns match; snapshot order decides.
	cat, ok := e.Classify("fast food drive-in", "bob")
	if !ok || cat != "Groceries" {
		t.Fatalf("Classify = %q, %v; want Groceries (first rule in order)", cat, ok)
	}

	reversed := NewEngine([]core.Rule{
		active(core.KindSubstring, "fast food", "Restaurants"),
		active(core.KindSubstring, "food", "Groceries"),
	})
	cat, ok = reversed.Classify("fast food drive-in", "bob")
	if !ok || cat != "Restaurants" {
		t.Fatalf("Classify = %q, %v; want Restaurants (first rule in order)", cat, ok)
	}
}

func TestClassifyRegex(t *testing.T) {
	e := NewEngine([]core.Rule{
		active(core.KindRegex, `sncf|trenitalia`, "Train"),
	})
	cat, ok := e.Classify("SNCF Paris-Lyon", "alice")
	if !ok || cat != "Train" {
		t.Fatalf("Classify = %q, %v; want Train", cat, ok)
	}
}

func TestClassifyRegexIsCaseSensitive(t *testing.T) {
	// The haystack is lower-cased, so an upper-case pattern cannot
	// match unless it opts into case folding itself.
	e := NewEngine([]core.Rule{
		active(core.KindRegex, `SNCF`, "Train"),
		active(core.KindRegex, `(?i)SNCF`, "TrainFolded"),
	})
	cat, ok := e.Classify("sncf ticket", "alice")
	if !ok || cat != "TrainFolded" {
		t.Fatalf("Classify = %q, %v; want TrainFolded", cat, ok)
	}
}

func TestClassifyMalformedRegexSkipped(t *testing.T) {
	e := NewEngine([]core.Rule{
		active(core.KindRegex, `([unclosed`, "Broken"),
		active(core.KindSubstring, "rent", "Housing"),
	})
	// The broken rule is a non-match for every input; later rules
	// still apply.
	cat, ok := e.Classify("rent march", "alice")
	if !ok || cat != "Housing" {
		t.Fatalf("Classify = %q, %v; want Housing", cat, ok)
	}
}

func TestClassifySkipsInactiveAndDeleted(t *testing.T) {
	inactive := active(core.KindSubstring, "taxi", "Transport")
	inactive.Active = false
	deleted := active(core.KindSubstring, "taxi", "Transport")
	deleted.Deleted = true

	e := NewEngine([]core.Rule{inactive, deleted})
	if _, ok := e.Classify("taxi", "alice"); ok {
		t.Fatal("inactive or deleted rule matched")
	}
}
