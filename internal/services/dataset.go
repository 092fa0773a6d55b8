// Package services owns the process-wide "currently loaded dataset" state.
// The core computations (normalize, aggregate, insights) are pure; this
// service sequences them per load and publishes immutable snapshots,
// replaced wholesale and never mutated in place.
package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"sig-dashboard/internal/analytics"
	"sig-dashboard/internal/errors"
	"sig-dashboard/internal/ingest"
	"sig-dashboard/internal/models"
	"sig-dashboard/internal/normalize"
)

const (
	maxLoadEvents = 50
	maxCityRows   = 20
)

// Snapshot is one fully computed dataset: the filtered working record plus
// its derived KPI bundle and insight list. A snapshot is never modified
// after publication.
type Snapshot struct {
	ID       uuid.UUID         `json:"id"`
	Name     string            `json:"name"`
	Source   string            `json:"source"`
	LoadedAt time.Time         `json:"loaded_at"`
	Record   *models.Record    `json:"-"`
	KPIs     *models.KPIBundle `json:"kpis"`
	Insights []models.Insight  `json:"insights"`
}

// LoadEvent is one entry of the bounded load log.
type LoadEvent struct {
	ID       uuid.UUID `json:"id"`
	Source   string    `json:"source"`
	Name     string    `json:"name"`
	Rows     int       `json:"rows"`
	Status   string    `json:"status"`
	Detail   string    `json:"detail,omitempty"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Filter restricts a query to a date range (inclusive, zero means
// unbounded) and a state list (empty means all).
type Filter struct {
	From   time.Time
	To     time.Time
	States []string
}

func (f Filter) empty() bool {
	return f.From.IsZero() && f.To.IsZero() && len(f.States) == 0
}

// Dataset guards the current snapshot. Consumers always read a consistent
// state because mutation happens only by full replacement under the lock;
// a failed load leaves the previous snapshot intact.
type Dataset struct {
	mu      sync.RWMutex
	current *Snapshot
	events  []LoadEvent
	logger  *slog.Logger
}

func NewDataset(logger *slog.Logger) *Dataset {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dataset{logger: logger}
}

// LoadCSV parses delimited text from r and replaces the current dataset on
// success.
func (d *Dataset) LoadCSV(ctx context.Context, r io.Reader, name string) (*Snapshot, error) {
	table, err := ingest.Parse(ctx, r)
	if err != nil {
		appErr := errors.BadRequestWrap(err, "could not read the file as delimited text")
		d.recordEvent("upload", name, 0, "rejected", appErr.Message)
		return nil, appErr
	}
	return d.load(table, name, "upload")
}

// LoadFile loads a CSV from disk, used for the startup data source.
func (d *Dataset) LoadFile(ctx context.Context, path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return d.LoadCSV(ctx, f, path)
}

// LoadSample generates and loads the seeded demonstration dataset.
func (d *Dataset) LoadSample(records int, seed int64) (*Snapshot, error) {
	return d.load(ingest.SampleTable(records, seed), "Empresa de Exemplo", "sample")
}

func (d *Dataset) load(table *ingest.Table, name, source string) (*Snapshot, error) {
	rec := normalize.Table(table.Headers, table.Rows)

	if missing := rec.Columns.Missing(); len(missing) > 0 {
		appErr := errors.Validation("missing required columns: " + strings.Join(missing, ", "))
		d.recordEvent(source, name, len(table.Rows), "rejected", appErr.Message)
		return nil, appErr
	}

	working := rec.DropInvalidDates()

	kpis, err := analytics.ComputeKPIs(working)
	if err != nil {
		d.logger.Error("kpi aggregation failed", "source", source, "error", err)
		appErr := errors.UnprocessableWrap(err, "KPIs unavailable for this dataset")
		d.recordEvent(source, name, len(working.Rows), "failed", appErr.Message)
		return nil, appErr
	}

	snap := &Snapshot{
		ID:       uuid.New(),
		Name:     name,
		Source:   source,
		LoadedAt: time.Now().UTC(),
		Record:   working,
		KPIs:     kpis,
		Insights: analytics.Generate(kpis, working),
	}

	d.mu.Lock()
	d.current = snap
	d.appendEventLocked(LoadEvent{
		ID:       snap.ID,
		Source:   source,
		Name:     name,
		Rows:     len(working.Rows),
		Status:   "loaded",
		LoadedAt: snap.LoadedAt,
	})
	d.mu.Unlock()

	d.logger.Info("dataset loaded",
		"source", source,
		"rows", len(working.Rows),
		"orders", kpis.TotalOrders,
		"insights", len(snap.Insights),
	)
	return snap, nil
}

// Reset clears the current dataset.
func (d *Dataset) Reset() {
	d.mu.Lock()
	d.current = nil
	d.appendEventLocked(LoadEvent{
		ID:       uuid.New(),
		Source:   "reset",
		Status:   "cleared",
		LoadedAt: time.Now().UTC(),
	})
	d.mu.Unlock()
	d.logger.Info("dataset reset")
}

func (d *Dataset) recordEvent(source, name string, rows int, status, detail string) {
	d.mu.Lock()
	d.appendEventLocked(LoadEvent{
		ID:       uuid.New(),
		Source:   source,
		Name:     name,
		Rows:     rows,
		Status:   status,
		Detail:   detail,
		LoadedAt: time.Now().UTC(),
	})
	d.mu.Unlock()
}

func (d *Dataset) appendEventLocked(ev LoadEvent) {
	d.events = append(d.events, ev)
	if len(d.events) > maxLoadEvents {
		d.events = d.events[len(d.events)-maxLoadEvents:]
	}
}

// Snapshot returns the current snapshot, or nil when nothing is loaded.
func (d *Dataset) Snapshot() *Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.current
}

func (d *Dataset) Loaded() bool {
	return d.Snapshot() != nil
}

// Query recomputes KPIs and insights over a filtered copy of the current
// record. An empty filter returns the precomputed snapshot results.
func (d *Dataset) Query(f Filter) (*models.KPIBundle, []models.Insight, error) {
	snap := d.Snapshot()
	if snap == nil {
		return nil, nil, errors.NotFound("no dataset loaded")
	}
	if f.empty() {
		return snap.KPIs, snap.Insights, nil
	}

	filtered := snap.Record.Filter(f.From, f.To, f.States)
	kpis, err := analytics.ComputeKPIs(filtered)
	if err != nil {
		d.logger.Error("filtered kpi aggregation failed", "error", err)
		return nil, nil, errors.UnprocessableWrap(err, "KPIs unavailable for this filter")
	}
	return kpis, analytics.Generate(kpis, filtered), nil
}

// Breakdown accessors return nil when no dataset is loaded or the grouping
// column is absent; both are valid empty states, not errors.

func (d *Dataset) StateRevenue() []models.StateRevenue {
	if snap := d.Snapshot(); snap != nil {
		return analytics.RevenueByState(snap.Record)
	}
	return nil
}

func (d *Dataset) CityRevenue() []models.CityRevenue {
	if snap := d.Snapshot(); snap != nil {
		return analytics.RevenueByCity(snap.Record, maxCityRows)
	}
	return nil
}

func (d *Dataset) CategoryRevenue() []models.CategoryRevenue {
	if snap := d.Snapshot(); snap != nil {
		return analytics.RevenueByCategory(snap.Record)
	}
	return nil
}

func (d *Dataset) PaymentBreakdown() []models.PaymentShare {
	if snap := d.Snapshot(); snap != nil {
		return analytics.PaymentBreakdown(snap.Record)
	}
	return nil
}

// Events returns a copy of the load log, newest last.
func (d *Dataset) Events() []LoadEvent {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]LoadEvent, len(d.events))
	copy(out, d.events)
	return out
}

// Stats summarizes the loaded dataset for the admin endpoint.
func (d *Dataset) Stats() map[string]any {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stats := map[string]any{
		"loaded": d.current != nil,
		"events": len(d.events),
	}
	if d.current != nil {
		stats["dataset_id"] = d.current.ID.String()
		stats["name"] = d.current.Name
		stats["source"] = d.current.Source
		stats["rows"] = len(d.current.Record.Rows)
		stats["months"] = len(d.current.KPIs.Monthly)
		stats["insights"] = len(d.current.Insights)
		stats["loaded_at"] = d.current.LoadedAt
	}
	return stats
}
