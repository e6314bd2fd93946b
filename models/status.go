package models

// Status is the publication state shared by projects and certificates.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// DefaultStatus is assigned to new rows when the payload omits a status.
const DefaultStatus = StatusPublished

var (
	ProjectStatuses     = []Status{StatusDraft, StatusPublished, StatusArchived}
	CertificateStatuses = []Status{StatusPublished, StatusArchived}
)

// ParseStatus matches raw exactly against allowed; "Archived" is not "archived".
func ParseStatus(raw string, allowed []Status) (Status, bool) {
	for _, s := range allowed {
		if string(s) == raw {
			return s, true
		}
	}
	return "", false
}

func StatusNames(allowed []Status) []string {
	names := make([]string, len(allowed))
	for i, s := range allowed {
		names[i] = string(s)
	}
	return names
}
