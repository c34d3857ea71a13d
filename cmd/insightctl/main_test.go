package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/radiusdt/vector-insights/internal/models"
	"github.com/radiusdt/vector-insights/internal/segments"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	if err := newApp(&out).Run(append([]string{"insightctl"}, args...)); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out.String()
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNameCommand(t *testing.T) {
	got := run(t, "name", "--entity", "Summer Sale", "--budget", "120", "--strategy", "manual_cpc", "--date", "2024-07-04")
	if strings.TrimSpace(got) != "07/04 Summer Sale | $120 | Manual CPC" {
		t.Fatalf("unexpected name %q", got)
	}
}

func TestMapCommand(t *testing.T) {
	if got := strings.TrimSpace(run(t, "map", "--type", "pause_negative_roi")); got != `{"action_type":"pause","parameters":{}}` {
		t.Fatalf("unexpected action %s", got)
	}
	if got := strings.TrimSpace(run(t, "map", "--type", "switch_to_abo")); got != "null" {
		t.Fatalf("expected null for a manual suggestion, got %s", got)
	}
}

func TestSummaryCommand(t *testing.T) {
	path := writeFile(t, "entities.json", `[
		{"id":"a","spend":100,"conversion_value":150},
		{"id":"b","spend":200,"conversion_value":250},
		{"id":"c","spend":300}
	]`)
	var totals map[string]any
	if err := json.Unmarshal([]byte(run(t, "summary", "--input", path)), &totals); err != nil {
		t.Fatal(err)
	}
	if totals["profit_known"].(bool) || totals["entities"].(float64) != 3 {
		t.Fatalf("unexpected totals %v", totals)
	}
}

func TestSegmentsCommand(t *testing.T) {
	path := writeFile(t, "entity.json", `{"id":"ad-set-1","spend":1000,"conversions":40,"conversion_value":3000}`)
	var res segments.Resolution
	if err := json.Unmarshal([]byte(run(t, "--pretty", "segments", "--input", path, "--platform", "google")), &res); err != nil {
		t.Fatal(err)
	}
	placements, ok := res.Get(models.DimPlacements)
	if !ok || len(placements.Records) != 3 || placements.Records[0].Label != "Search Network" {
		t.Fatalf("unexpected placements %+v", placements)
	}
	if *placements.Records[0].SuggestedBidAdjustment != 30 {
		t.Fatalf("expected +30 for Search Network, got %d", *placements.Records[0].SuggestedBidAdjustment)
	}
}

func TestBuildCommandRejectsEmptySelection(t *testing.T) {
	path := writeFile(t, "build.json", `{"entity":{"entity_name":"X","platform":"tiktok","current_budget":10},"choices":{"build_type":"new_campaign","budget_mode":"match"}}`)
	var out bytes.Buffer
	if err := newApp(&out).Run([]string{"insightctl", "build", "--input", path}); err == nil {
		t.Fatal("expected an error for an empty selection")
	}
}
