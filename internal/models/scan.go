package models

import "encoding/json"

// Scan is the header of a StackHawk scan. The document it was decoded
// from is kept and re-emitted verbatim by MarshalJSON.
type Scan struct {
	ID          string
	Status      string
	StartedAt   string
	CompletedAt string

	raw json.RawMessage
}

type scanDoc struct {
	ID          FlexString `json:"id"`
	ScanID      FlexString `json:"scanId"`
	Status      FlexString `json:"status"`
	StartedAt   FlexString `json:"startedAt"`
	CompletedAt FlexString `json:"completedAt"`
	UpdatedAt   FlexString `json:"updatedAt"`
}

// UnmarshalJSON implements json.Unmarshaler
func (s *Scan) UnmarshalJSON(data []byte) error {
	var doc scanDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	s.ID = doc.ID.String()
	if s.ID == "" {
		s.ID = doc.ScanID.String()
	}
	s.Status = doc.Status.String()
	s.StartedAt = doc.StartedAt.String()
	s.CompletedAt = doc.CompletedAt.String()
	if s.CompletedAt == "" {
		s.CompletedAt = doc.UpdatedAt.String()
	}
	s.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON implements json.Marshaler
func (s Scan) MarshalJSON() ([]byte, error) {
	if len(s.raw) > 0 {
		return s.raw, nil
	}
	return json.Marshal(struct {
		ID          string `json:"id"`
		Status      string `json:"status"`
		StartedAt   string `json:"startedAt"`
		CompletedAt string `json:"completedAt"`
	}{s.ID, s.Status, s.StartedAt, s.CompletedAt})
}

// ScanFinding is one DAST finding of a StackHawk scan
type ScanFinding struct {
	ID          string
	Title       string
	Description string
	Severity    string // as reported; see Level for the normalized value
	URL         string
	CWE         string

	raw json.RawMessage
}

type scanFindingDoc struct {
	ID          FlexString `json:"id"`
	PluginID    FlexString `json:"pluginId"`
	Title       FlexString `json:"title"`
	Name        FlexString `json:"name"`
	FindingName FlexString `json:"findingName"`
	Description FlexString `json:"description"`
	Message     FlexString `json:"message"`
	Severity    FlexString `json:"severity"`
	URL         FlexString `json:"url"`
	RequestURL  FlexString `json:"requestUrl"`
	CWE         FlexString `json:"cwe"`
}

// UnmarshalJSON implements json.Unmarshaler
func (f *ScanFinding) UnmarshalJSON(data []byte) error {
	var doc scanFindingDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	f.ID = firstNonEmpty(doc.ID, doc.PluginID)
	f.Title = firstNonEmpty(doc.Title, doc.Name, doc.FindingName)
	f.Description = firstNonEmpty(doc.Description, doc.Message)
	f.Severity = doc.Severity.String()
	f.URL = firstNonEmpty(doc.URL, doc.RequestURL)
	f.CWE = doc.CWE.String()
	f.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON implements json.Marshaler
func (f ScanFinding) MarshalJSON() ([]byte, error) {
	if len(f.raw) > 0 {
		return f.raw, nil
	}
	return json.Marshal(struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Severity    string `json:"severity"`
		URL         string `json:"url"`
		CWE         string `json:"cwe"`
	}{f.ID, f.Title, f.Description, f.Severity, f.URL, f.CWE})
}

// Level returns the normalized severity, or false when the reported
// value is outside the closed set
func (f ScanFinding) Level() (Severity, bool) {
	sev, err := ParseSeverity(f.Severity)
	if err != nil {
		return "", false
	}
	return sev, true
}

// ScanResult pairs a scan header with its findings. It is built once per
// run and not modified afterwards.
type ScanResult struct {
	Scan     *Scan
	Findings []ScanFinding
}

// SeverityCounts tallies findings by normalized severity. Findings with an
// unrecognized severity are counted under their reported value, or
// "UNKNOWN" when none was reported.
func (r ScanResult) SeverityCounts() map[string]int {
	counts := make(map[string]int)
	for _, f := range r.Findings {
		key := "UNKNOWN"
		if sev, ok := f.Level(); ok {
			key = sev.String()
		} else if f.Severity != "" {
			key = f.Severity
		}
		counts[key]++
	}
	return counts
}

func firstNonEmpty(values ...FlexString) string {
	for _, v := range values {
		if v != "" {
			return string(v)
		}
	}
	return ""
}
