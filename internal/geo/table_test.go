// ABOUTME: Tests for geo table parsing and hot reload store
// ABOUTME: Verifies level assignment, validation, and snapshot swapping

package geo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ecosense/aqroute/internal/models"
)

const sampleTable = `{
  "cities": [
    {"name": "武汉市", "code": "420100"}
  ],
  "districts": [
    {"name": "武昌区", "code": "420106", "parent_code": "420100"}
  ],
  "stations": [
    {"name": "东湖梨园站", "code": "1001A", "parent_code": "420106"},
    {"name": "沉湖七壕站", "code": "1002A", "parent_code": "420100"}
  ]
}`

func writeTable(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "geo_mapping.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseTable(t *testing.T) {
	table, err := ParseTable([]byte(sampleTable))
	if err != nil {
		t.Fatalf("ParseTable() failed: %v", err)
	}
	if table.Len() != 4 {
		t.Errorf("Len() = %d, want 4", table.Len())
	}

	byLevel := map[models.GeoLevel]int{}
	for _, e := range table.Entries() {
		byLevel[e.Level]++
	}
	if byLevel[models.LevelCity] != 1 || byLevel[models.LevelDistrict] != 1 || byLevel[models.LevelStation] != 2 {
		t.Errorf("level counts = %v, want 1 city, 1 district, 2 stations", byLevel)
	}
}

func TestParseTable_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"broken json", `{"cities": [`},
		{"missing code", `{"cities": [{"name": "武汉市"}]}`},
		{"empty table", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTable([]byte(tt.contents)); err == nil {
				t.Error("ParseTable() should fail")
			}
		})
	}
}

func TestStore_Reload(t *testing.T) {
	path := writeTable(t, sampleTable)
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}
	if store.Get().Len() != 4 {
		t.Errorf("Len() = %d, want 4", store.Get().Len())
	}

	bigger := `{"cities": [{"name": "武汉市", "code": "420100"}, {"name": "黄石市", "code": "420200"}]}`
	if err := os.WriteFile(path, []byte(bigger), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := store.Reload(); err != nil {
		t.Fatalf("Reload() failed: %v", err)
	}
	if store.Get().Len() != 2 {
		t.Errorf("after reload Len() = %d, want 2", store.Get().Len())
	}
	if store.Version() != 2 {
		t.Errorf("Version = %d, want 2", store.Version())
	}
}

func TestStore_ReloadKeepsSnapshotOnError(t *testing.T) {
	path := writeTable(t, sampleTable)
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := store.Reload(); err == nil {
		t.Fatal("Reload() of broken table should fail")
	}
	if store.Get().Len() != 4 {
		t.Errorf("failed reload should keep old snapshot, Len() = %d", store.Get().Len())
	}
}
