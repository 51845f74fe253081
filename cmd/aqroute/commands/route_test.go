// ABOUTME: Tests for the offline route command
// ABOUTME: Verifies classification output in both text and JSON form

package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testGeoTable = `{"cities": [{"name": "武汉市", "code": "420100"}]}`

func routeFixture(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	geoPath := filepath.Join(dir, "geo_mapping.json")
	if err := os.WriteFile(geoPath, []byte(testGeoTable), 0o644); err != nil {
		t.Fatal(err)
	}
	// No routing.yaml on disk, the built-in defaults apply
	return filepath.Join(dir, "routing.yaml"), geoPath
}

func TestRouteCmd_StructuredJSON(t *testing.T) {
	cfgPath, geoPath := routeFixture(t)

	cmd := NewRootCmd()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs([]string{"route", "--routing", cfgPath, "--geo", geoPath, "--json",
		"生成武汉市上周的空气质量周报"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var out routeReport
	if err := json.Unmarshal(output.Bytes(), &out); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, output.String())
	}
	if out.Decision.Target != "structured_api" {
		t.Errorf("target = %s, want structured_api", out.Decision.Target)
	}
	if out.Parameters == nil {
		t.Fatal("structured question should include extracted parameters")
	}
	if !out.Complete {
		t.Error("question with location and time should be complete")
	}
}

func TestRouteCmd_GeneralText(t *testing.T) {
	cfgPath, geoPath := routeFixture(t)

	cmd := NewRootCmd()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs([]string{"route", "--routing", cfgPath, "--geo", geoPath,
		"全省空气质量排名前十的城市"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	got := output.String()
	if !strings.Contains(got, "general_query") {
		t.Errorf("output should name the general target:\n%s", got)
	}
	if strings.Contains(got, "Location:") {
		t.Errorf("general question should not extract parameters:\n%s", got)
	}
}

func TestRouteCmd_EmptyQuestion(t *testing.T) {
	cfgPath, geoPath := routeFixture(t)

	cmd := NewRootCmd()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs([]string{"route", "--routing", cfgPath, "--geo", geoPath, "  "})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error for a blank question")
	}
}
