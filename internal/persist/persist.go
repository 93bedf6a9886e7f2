// Package persist reads and writes the three durable documents: the JSON
// identity registry, the CSV attendance ledger, and the append-only CSV
// enrollment audit log. Loads degrade to empty documents when a file is
// missing or unreadable; saves are full overwrites through a temp file and
// rename, so a crash never leaves a partially written document behind.
package persist

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/renameio"
	"github.com/kozaktomas/face-attendance/internal/embedding"
	"github.com/kozaktomas/face-attendance/internal/ledger"
	"github.com/kozaktomas/face-attendance/internal/registry"
)

// Adapter persists the registry and ledger at fixed file paths.
type Adapter struct {
	registryPath string
	ledgerPath   string
	auditPath    string
	logger       *slog.Logger
}

// identityRecord is the on-disk shape of one registry entry. Field names
// match the historical document format.
type identityRecord struct {
	Contact  string    `json:"contact"`
	EmployID string    `json:"employ_id"`
	Encoding []float64 `json:"encoding"`
}

// New creates an adapter for the given document paths.
func New(registryPath, ledgerPath, auditPath string, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		registryPath: registryPath,
		ledgerPath:   ledgerPath,
		auditPath:    auditPath,
		logger:       logger,
	}
}

// LoadIdentities reads the registry document. A missing or corrupt file
// yields an empty registry, never an error.
func (a *Adapter) LoadIdentities() map[string]registry.Identity {
	data, err := os.ReadFile(a.registryPath)
	if err != nil {
		if !os.IsNotExist(err) {
			a.logger.Warn("could not read registry, starting empty",
				"path", a.registryPath, "error", err)
		}
		return map[string]registry.Identity{}
	}

	var records map[string]identityRecord
	if err := json.Unmarshal(data, &records); err != nil {
		a.logger.Warn("could not decode registry, starting empty",
			"path", a.registryPath, "error", err)
		return map[string]registry.Identity{}
	}

	identities := make(map[string]registry.Identity, len(records))
	for name, rec := range records {
		identities[name] = registry.Identity{
			Name:      name,
			Contact:   rec.Contact,
			EmployID:  rec.EmployID,
			Embedding: embedding.Vector(rec.Encoding),
		}
	}
	return identities
}

// SaveIdentities overwrites the registry document atomically.
func (a *Adapter) SaveIdentities(identities map[string]registry.Identity) error {
	records := make(map[string]identityRecord, len(identities))
	for name, id := range identities {
		records[name] = identityRecord{
			Contact:  id.Contact,
			EmployID: id.EmployID,
			Encoding: id.Embedding,
		}
	}

	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}

	if err := renameio.WriteFile(a.registryPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}
	return nil
}

// LoadLedger reads the ledger document. A missing or unreadable file yields
// a fresh ledger with just the prefix columns.
func (a *Adapter) LoadLedger() *ledger.Ledger {
	f, err := os.Open(a.ledgerPath)
	if err != nil {
		if !os.IsNotExist(err) {
			a.logger.Warn("could not read ledger, starting fresh",
				"path", a.ledgerPath, "error", err)
		}
		return ledger.New()
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // header may be longer than old rows

	records, err := r.ReadAll()
	if err != nil || len(records) == 0 {
		if err != nil {
			a.logger.Warn("could not decode ledger, starting fresh",
				"path", a.ledgerPath, "error", err)
		}
		return ledger.New()
	}

	l := &ledger.Ledger{
		Columns: records[0],
		Rows:    make([]ledger.Row, 0, len(records)-1),
	}
	for _, rec := range records[1:] {
		row := make(ledger.Row, len(l.Columns))
		for i, col := range l.Columns {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		l.Rows = append(l.Rows, row)
	}
	return l
}

// SaveLedger overwrites the ledger document atomically: header row with the
// current column order, then one row per identity with history. A full
// rewrite is required because the column set grows and rows are keyed by
// name, not by append position.
func (a *Adapter) SaveLedger(l *ledger.Ledger) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(l.Columns); err != nil {
		return fmt.Errorf("failed to encode ledger header: %w", err)
	}
	for _, row := range l.Rows {
		rec := make([]string, len(l.Columns))
		for i, col := range l.Columns {
			rec[i] = row[col]
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("failed to encode ledger row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}

	if err := renameio.WriteFile(a.ledgerPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	return nil
}

// EnsureLedgerFile creates the ledger document with just the prefix columns
// if it does not exist yet.
func (a *Adapter) EnsureLedgerFile() error {
	if _, err := os.Stat(a.ledgerPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat ledger: %w", err)
	}
	return a.SaveLedger(ledger.New())
}

// AppendAudit appends one enrollment row to the audit log, writing the
// header first if the file is empty. The audit log is a secondary
// human-readable record; it is never read back by the core.
func (a *Adapter) AppendAudit(name, contact, employID string) error {
	f, err := os.OpenFile(a.auditPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat audit log: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(ledger.PrefixColumns()); err != nil {
			return fmt.Errorf("failed to write audit header: %w", err)
		}
	}
	if err := w.Write([]string{name, contact, employID}); err != nil {
		return fmt.Errorf("failed to write audit row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
