package report

import (
	"sort"
	"time"

	"github.com/Rank127/datascrub-pro-sub004/internal/broker"
	"github.com/Rank127/datascrub-pro-sub004/internal/model"
)

// ScanSummary is the renderable view of one finished scan: the run record,
// the user's exposures grouped by consolidation parent, severity counts,
// and the scanner health table. Writers render it without touching storage.
type ScanSummary struct {
	// UserID identifies the profile owner.
	UserID string `json:"user_id"`

	// ScanType is the scan type that ran.
	ScanType model.ScanType `json:"scan_type"`

	// Status is the run's terminal status.
	Status model.ScanStatus `json:"status"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the wall-clock run time.
	Duration time.Duration `json:"duration_ms"`

	// SourcesChecked is how many scanners executed.
	SourcesChecked int `json:"sources_checked"`

	// NewExposures is how many exposures the run created.
	NewExposures int `json:"new_exposures"`

	// CriticalCount through InfoCount break the user's exposures down by
	// severity. They cover all exposures, not only this run's.
	CriticalCount int `json:"critical_count"`
	HighCount     int `json:"high_count"`
	MediumCount   int `json:"medium_count"`
	LowCount      int `json:"low_count"`
	InfoCount     int `json:"info_count"`

	// Groups holds the user's exposures grouped by consolidation parent,
	// sorted by parent id. Grouping by parent shows the user how many
	// listings one opt-out will clear.
	Groups []ExposureGroup `json:"groups,omitempty"`

	// Scanners is the per-scanner health table for this run.
	Scanners []ScannerHealth `json:"scanners,omitempty"`
}

// ExposureGroup is the user's exposures at one consolidation family.
type ExposureGroup struct {
	// Parent is the family's root source id.
	Parent string `json:"parent"`

	// DisplayName is the parent's human-readable name.
	DisplayName string `json:"display_name"`

	// Exposures are the family's exposure entries.
	Exposures []ExposureEntry `json:"exposures"`
}

// ExposureEntry is one exposure as shown in a report.
type ExposureEntry struct {
	SourceName     string               `json:"source_name"`
	DataPreview    string               `json:"data_preview"`
	Severity       model.Severity       `json:"severity"`
	Status         model.ExposureStatus `json:"status"`
	Score          float64              `json:"confidence_score"`
	ManualAction   bool                 `json:"manual_action"`
	Recommendation string               `json:"recommendation"`
}

// ScannerHealth is one scanner's outcome in the health table.
type ScannerHealth struct {
	Name         string              `json:"name"`
	Type         model.ScannerType   `json:"type"`
	Status       model.OutcomeStatus `json:"status"`
	ResponseTime time.Duration       `json:"response_time_ms"`
	ResultCount  int                 `json:"result_count"`
	ErrorDetail  string              `json:"error_detail,omitempty"`
}

// TotalExposures returns the total exposure count across all severities.
func (s *ScanSummary) TotalExposures() int {
	return s.CriticalCount + s.HighCount + s.MediumCount + s.LowCount + s.InfoCount
}

// HasExposures reports whether any exposures exist for the user.
func (s *ScanSummary) HasExposures() bool {
	return s.TotalExposures() > 0
}

// FailedScanners returns how many scanners ended BLOCKED or ERROR.
func (s *ScanSummary) FailedScanners() int {
	failed := 0
	for _, sc := range s.Scanners {
		if sc.Status.Failed() {
			failed++
		}
	}
	return failed
}

// NewScanSummary assembles the renderable summary for one run.
func NewScanSummary(run *model.ScanRun, exposures []*model.Exposure, outcomes []model.ScannerOutcome, directory *broker.Directory) *ScanSummary {
	s := &ScanSummary{
		UserID:         run.UserID,
		ScanType:       run.Type,
		Status:         run.Status,
		StartedAt:      run.StartedAt,
		SourcesChecked: run.SourcesChecked,
		NewExposures:   run.ExposuresFound,
	}
	if !run.FinishedAt.IsZero() {
		s.Duration = run.FinishedAt.Sub(run.StartedAt)
	}

	for _, e := range exposures {
		switch e.Severity {
		case model.SeverityCritical:
			s.CriticalCount++
		case model.SeverityHigh:
			s.HighCount++
		case model.SeverityMedium:
			s.MediumCount++
		case model.SeverityLow:
			s.LowCount++
		default:
			s.InfoCount++
		}
	}

	s.Groups = groupExposures(exposures, directory)

	s.Scanners = make([]ScannerHealth, len(outcomes))
	for i, out := range outcomes {
		s.Scanners[i] = ScannerHealth{
			Name:         out.ScannerName,
			Type:         out.ScannerType,
			Status:       out.Status,
			ResponseTime: out.ResponseTime,
			ResultCount:  out.ResultCount,
			ErrorDetail:  out.ErrorDetail,
		}
	}
	return s
}

// groupExposures buckets exposures by consolidation parent, sorted by
// parent id with each group's entries in severity order, worst first.
func groupExposures(exposures []*model.Exposure, directory *broker.Directory) []ExposureGroup {
	byParent := make(map[string][]ExposureEntry)
	for _, e := range exposures {
		parent := directory.UltimateParent(e.Source)
		byParent[parent] = append(byParent[parent], ExposureEntry{
			SourceName:     e.SourceName,
			DataPreview:    e.DataPreview,
			Severity:       e.Severity,
			Status:         e.Status,
			Score:          e.Confidence.Score,
			ManualAction:   e.RequiresManualAction,
			Recommendation: model.InfoForDataType(e.DataType).Recommendation,
		})
	}

	parents := make([]string, 0, len(byParent))
	for parent := range byParent {
		parents = append(parents, parent)
	}
	sort.Strings(parents)

	groups := make([]ExposureGroup, 0, len(parents))
	for _, parent := range parents {
		entries := byParent[parent]
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Severity > entries[j].Severity
		})
		groups = append(groups, ExposureGroup{
			Parent:      parent,
			DisplayName: directory.DisplayName(parent),
			Exposures:   entries,
		})
	}
	return groups
}
