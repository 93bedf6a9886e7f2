package persist

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/kozaktomas/face-attendance/internal/embedding"
	"github.com/kozaktomas/face-attendance/internal/ledger"
	"github.com/kozaktomas/face-attendance/internal/registry"
)

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	dir := t.TempDir()
	return New(
		filepath.Join(dir, "faces.json"),
		filepath.Join(dir, "Attendance.csv"),
		filepath.Join(dir, "employ_details.csv"),
		nil,
	)
}

func TestIdentitiesRoundtrip(t *testing.T) {
	a := newTestAdapter(t)

	want := map[string]registry.Identity{
		"Alice": {
			Name:      "Alice",
			Contact:   "555-0100",
			EmployID:  "E1",
			Embedding: embedding.Vector{0.25, -0.5, 1},
		},
		"Bob": {
			Name:      "Bob",
			Contact:   "555-0200",
			EmployID:  "E2",
			Embedding: embedding.Vector{1, 2, 3},
		},
	}

	if err := a.SaveIdentities(want); err != nil {
		t.Fatalf("SaveIdentities() error = %v", err)
	}

	got := a.LoadIdentities()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LoadIdentities() = %+v, want %+v", got, want)
	}
}

func TestLoadIdentitiesMissingFile(t *testing.T) {
	a := newTestAdapter(t)

	got := a.LoadIdentities()
	if len(got) != 0 {
		t.Errorf("LoadIdentities() on missing file = %v, want empty", got)
	}
}

func TestLoadIdentitiesCorruptFile(t *testing.T) {
	a := newTestAdapter(t)
	if err := os.WriteFile(a.registryPath, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := a.LoadIdentities()
	if len(got) != 0 {
		t.Errorf("LoadIdentities() on corrupt file = %v, want empty", got)
	}
}

func TestSaveIdentitiesIsPrettyPrinted(t *testing.T) {
	a := newTestAdapter(t)
	ids := map[string]registry.Identity{
		"Alice": {Name: "Alice", Embedding: embedding.Vector{0.5}},
	}
	if err := a.SaveIdentities(ids); err != nil {
		t.Fatalf("SaveIdentities() error = %v", err)
	}

	data, err := os.ReadFile(a.registryPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\n    \"Alice\"") {
		t.Errorf("registry document not indented:\n%s", data)
	}
	if !strings.Contains(string(data), `"employ_id"`) {
		t.Errorf("registry document missing employ_id field:\n%s", data)
	}
}

func TestLedgerRoundtrip(t *testing.T) {
	a := newTestAdapter(t)

	l := ledger.New()
	l.Record("Alice", "555-0100", "E1", time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC))
	l.Record("Alice", "555-0100", "E1", time.Date(2024, 1, 10, 17, 0, 0, 0, time.UTC))
	l.Record("Bob", "555-0200", "E2", time.Date(2024, 1, 11, 8, 30, 0, 0, time.UTC))

	if err := a.SaveLedger(l); err != nil {
		t.Fatalf("SaveLedger() error = %v", err)
	}

	got := a.LoadLedger()
	if !reflect.DeepEqual(got.Columns, l.Columns) {
		t.Errorf("Columns = %v, want %v", got.Columns, l.Columns)
	}
	if len(got.Rows) != 2 {
		t.Fatalf("Rows = %d, want 2", len(got.Rows))
	}

	alice, ok := got.RowFor("Alice")
	if !ok {
		t.Fatalf("Alice row missing after roundtrip")
	}
	if alice[ledger.InColumn("2024-01-10")] != "09:00:00" ||
		alice[ledger.OutColumn("2024-01-10")] != "17:00:00" {
		t.Errorf("Alice row = %v", alice)
	}
	// Bob never appeared on 2024-01-10; the shared columns stay empty.
	bob, _ := got.RowFor("Bob")
	if bob[ledger.InColumn("2024-01-10")] != "" {
		t.Errorf("Bob has an IN time on a day he was absent: %v", bob)
	}
}

func TestLoadLedgerMissingFile(t *testing.T) {
	a := newTestAdapter(t)

	got := a.LoadLedger()
	if !reflect.DeepEqual(got.Columns, ledger.PrefixColumns()) {
		t.Errorf("Columns = %v, want prefix only", got.Columns)
	}
	if len(got.Rows) != 0 {
		t.Errorf("Rows = %d, want 0", len(got.Rows))
	}
}

func TestEnsureLedgerFile(t *testing.T) {
	a := newTestAdapter(t)

	if err := a.EnsureLedgerFile(); err != nil {
		t.Fatalf("EnsureLedgerFile() error = %v", err)
	}

	data, err := os.ReadFile(a.ledgerPath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) != "Name,Contact Number,Employ ID" {
		t.Errorf("fresh ledger file = %q", data)
	}

	// A second call must not clobber existing content.
	l := ledger.New()
	l.Record("Alice", "555-0100", "E1", time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC))
	if err := a.SaveLedger(l); err != nil {
		t.Fatal(err)
	}
	if err := a.EnsureLedgerFile(); err != nil {
		t.Fatalf("EnsureLedgerFile() second call error = %v", err)
	}
	if got := a.LoadLedger(); len(got.Rows) != 1 {
		t.Errorf("EnsureLedgerFile() clobbered existing ledger")
	}
}

func TestAppendAudit(t *testing.T) {
	a := newTestAdapter(t)

	if err := a.AppendAudit("Alice", "555-0100", "E1"); err != nil {
		t.Fatalf("AppendAudit() error = %v", err)
	}
	if err := a.AppendAudit("Bob", "555-0200", "E2"); err != nil {
		t.Fatalf("AppendAudit() error = %v", err)
	}

	f, err := os.Open(a.auditPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	want := [][]string{
		{"Name", "Contact Number", "Employ ID"},
		{"Alice", "555-0100", "E1"},
		{"Bob", "555-0200", "E2"},
	}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("audit log = %v, want %v (header written exactly once)", records, want)
	}
}

func TestSaveIdentitiesFailureSurfaces(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	// Registry path nested under a regular file cannot be created.
	a := New(filepath.Join(blocker, "faces.json"), filepath.Join(dir, "l.csv"), filepath.Join(dir, "a.csv"), nil)
	err := a.SaveIdentities(map[string]registry.Identity{})
	if err == nil {
		t.Errorf("SaveIdentities() expected error for unwritable path")
	}
}
