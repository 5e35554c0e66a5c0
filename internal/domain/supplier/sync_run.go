package supplier

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ComunidadDecidida/mayoristas/internal/domain/shared"
)

// SyncStatus represents the lifecycle state of a sync run
type SyncStatus string

const (
	SyncStatusRunning SyncStatus = "running"
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusError   SyncStatus = "error"
)

// IsValid checks if the status is a known one
func (s SyncStatus) IsValid() bool {
	switch s {
	case SyncStatusRunning, SyncStatusSuccess, SyncStatusError:
		return true
	}
	return false
}

// IsTerminal reports whether the run reached a final state
func (s SyncStatus) IsTerminal() bool {
	return s == SyncStatusSuccess || s == SyncStatusError
}

// Source selects which suppliers a run targets
type Source string

const (
	SourceSyscom        Source = "syscom"
	SourceTecnosinergia Source = "tecnosinergia"
	SourceAll           Source = "all"
)

// IsValid checks if the source is known
func (s Source) IsValid() bool {
	switch s {
	case SourceSyscom, SourceTecnosinergia, SourceAll:
		return true
	}
	return false
}

// Codes expands the source into the concrete supplier codes it targets
func (s Source) Codes() []Code {
	switch s {
	case SourceSyscom:
		return []Code{CodeSyscom}
	case SourceTecnosinergia:
		return []Code{CodeTecnosinergia}
	case SourceAll:
		return AllCodes()
	}
	return nil
}

// SelectionMode determines how the category set for a run is resolved
type SelectionMode string

const (
	// SelectionAll syncs every category the supplier reports
	SelectionAll SelectionMode = "all"
	// SelectionSelected syncs only an explicit category list
	SelectionSelected SelectionMode = "selected"
)

// CategorySelection is the category set requested for a run
type CategorySelection struct {
	Mode SelectionMode `json:"mode"`
	IDs  []string      `json:"ids,omitempty"`
}

// Filters restrict which collected records are normalized and written
type Filters struct {
	OnlyWithStock bool     `json:"only_with_stock"`
	MinStock      int      `json:"min_stock"`
	MinPrice      *float64 `json:"min_price,omitempty"`
	MaxPrice      *float64 `json:"max_price,omitempty"`
}

// DefaultFilters returns the filters applied when a caller passes none:
// only records with strictly positive stock survive
func DefaultFilters() Filters {
	return Filters{OnlyWithStock: true, MinStock: 1}
}

// Value implements driver.Valuer for jsonb storage
func (f Filters) Value() (driver.Value, error) {
	return json.Marshal(f)
}

// Scan implements sql.Scanner
func (f *Filters) Scan(value any) error {
	return scanJSON(value, f)
}

// SyncError is one recoverable failure recorded during a run, scoped to
// the unit of work it happened in (category, page or batch)
type SyncError struct {
	Context string `json:"context"`
	Message string `json:"message"`
}

// SyncErrorList is the append-ordered error list of a run
type SyncErrorList []SyncError

// Value implements driver.Valuer for jsonb storage
func (l SyncErrorList) Value() (driver.Value, error) {
	if l == nil {
		l = SyncErrorList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner
func (l *SyncErrorList) Scan(value any) error {
	return scanJSON(value, l)
}

// StringList is a jsonb-backed string slice
type StringList []string

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner
func (l *StringList) Scan(value any) error {
	return scanJSON(value, l)
}

func scanJSON(value, dest any) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	}
	return fmt.Errorf("cannot scan %T as json", value)
}

// SyncRun is one synchronization pass against a single supplier. It is
// persisted so operators can inspect run history, but it carries no
// product state itself.
type SyncRun struct {
	shared.BaseEntity
	Supplier            Code          `gorm:"type:varchar(20);not null;index"`
	Status              SyncStatus    `gorm:"type:varchar(10);not null;default:'running'"`
	SelectionMode       SelectionMode `gorm:"type:varchar(10);not null;default:'all'"`
	CategoriesRequested StringList    `gorm:"type:jsonb"`
	Filters             Filters       `gorm:"type:jsonb"`
	ProductsCollected   int           `gorm:"not null;default:0"`
	ProductsWithStock   int           `gorm:"not null;default:0"`
	ProductsSynced      int           `gorm:"not null;default:0"`
	Errors              SyncErrorList `gorm:"type:jsonb"`
	StartedAt           time.Time     `gorm:"not null"`
	FinishedAt          *time.Time
}

// TableName returns the table name for GORM
func (SyncRun) TableName() string {
	return "sync_runs"
}

// NewSyncRun starts a run in the running state
func NewSyncRun(code Code, selection CategorySelection, filters Filters) *SyncRun {
	return &SyncRun{
		BaseEntity:          shared.NewBaseEntity(),
		Supplier:            code,
		Status:              SyncStatusRunning,
		SelectionMode:       selection.Mode,
		CategoriesRequested: StringList(selection.IDs),
		Filters:             filters,
		Errors:              SyncErrorList{},
		StartedAt:           time.Now(),
	}
}

// RecordError appends a scoped recoverable error. It never changes the
// run status; only Complete and Fail decide that.
func (r *SyncRun) RecordError(context, message string) {
	r.Errors = append(r.Errors, SyncError{Context: context, Message: message})
}

// Complete finishes the run. Partial per-unit failures do not fail the
// run; the status is error only when nothing was collected and at least
// one error occurred (zero net progress).
func (r *SyncRun) Complete() {
	now := time.Now()
	r.FinishedAt = &now
	if r.ProductsCollected == 0 && len(r.Errors) > 0 {
		r.Status = SyncStatusError
		return
	}
	r.Status = SyncStatusSuccess
}

// Fail terminates the run with a fatal error (auth rejection, empty
// required selection, timeout before any progress)
func (r *SyncRun) Fail(context, message string) {
	now := time.Now()
	r.FinishedAt = &now
	r.RecordError(context, message)
	r.Status = SyncStatusError
}

// Duration returns how long the run took, zero while still running
func (r *SyncRun) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
