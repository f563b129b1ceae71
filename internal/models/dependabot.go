package models

// DependabotAlert is one entry of the GitHub Dependabot alerts API.
// Sub-records the API may omit or send as null are pointers.
type DependabotAlert struct {
	Number                *int                   `json:"number"`
	State                 string                 `json:"state"`
	Dependency            *AlertDependency       `json:"dependency"`
	SecurityAdvisory      *SecurityAdvisory      `json:"security_advisory"`
	SecurityVulnerability *SecurityVulnerability `json:"security_vulnerability"`
	UpdatedAt             string                 `json:"updated_at"`
	HTMLURL               string                 `json:"html_url"`
}

// AlertDependency describes the vulnerable dependency and where it is declared
type AlertDependency struct {
	Package      *AlertPackage `json:"package"`
	ManifestPath string        `json:"manifest_path"`
	Scope        string        `json:"scope"`
	Relationship string        `json:"relationship"`
}

// AlertPackage identifies a package within its ecosystem
type AlertPackage struct {
	Ecosystem string `json:"ecosystem"`
	Name      string `json:"name"`
}

// SecurityAdvisory is the GHSA advisory behind an alert
type SecurityAdvisory struct {
	GHSAID      string  `json:"ghsa_id"`
	CVEID       *string `json:"cve_id"`
	Summary     string  `json:"summary"`
	Severity    string  `json:"severity"`
	CVSS        *CVSS   `json:"cvss"`
	PublishedAt string  `json:"published_at"`
}

// CVSS holds the advisory's CVSS score and vector
type CVSS struct {
	Score        *float64 `json:"score"`
	VectorString *string  `json:"vector_string"`
}

// SecurityVulnerability is the affected version range of the package
type SecurityVulnerability struct {
	Severity               string          `json:"severity"`
	VulnerableVersionRange string          `json:"vulnerable_version_range"`
	FirstPatchedVersion    *PatchedVersion `json:"first_patched_version"`
}

// PatchedVersion is the first release that fixes the vulnerability
type PatchedVersion struct {
	Identifier string `json:"identifier"`
}

// PackageName returns the dependency package name, or "" when absent
func (a DependabotAlert) PackageName() string {
	if a.Dependency == nil || a.Dependency.Package == nil {
		return ""
	}
	return a.Dependency.Package.Name
}

// Ecosystem returns the dependency ecosystem, or "" when absent
func (a DependabotAlert) Ecosystem() string {
	if a.Dependency == nil || a.Dependency.Package == nil {
		return ""
	}
	return a.Dependency.Package.Ecosystem
}

// VulnerabilitySeverity returns the severity reported for the vulnerable range
func (a DependabotAlert) VulnerabilitySeverity() string {
	if a.SecurityVulnerability == nil {
		return ""
	}
	return a.SecurityVulnerability.Severity
}
