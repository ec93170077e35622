package model

import "strings"

// Record is implemented by every entity held in a collection view.
type Record interface {
	RecordID() string
}

type Status string

const (
	StatusDraft           Status = "draft"
	StatusPendingApproval Status = "pending_approval"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
)

// Statuses lists the closed status set in display order.
func Statuses() []Status {
	return []Status{StatusPendingApproval, StatusApproved, StatusRejected, StatusDraft}
}

func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	for _, st := range Statuses() {
		if string(st) == s {
			return st, nil
		}
	}
	return "", &ValidationError{Field: "status", Reason: "unknown status " + quote(s)}
}

func (s Status) Label() string {
	switch s {
	case StatusDraft:
		return "Draft"
	case StatusPendingApproval:
		return "Pending approval"
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	default:
		return string(s)
	}
}

// PriorityLevels lists the accepted priority_level values, lowest first.
func PriorityLevels() []string {
	return []string{"low", "medium", "high", "critical"}
}

// DiagramTypes lists the accepted diagram types.
func DiagramTypes() []string {
	return []string{"architecture", "sequence", "flowchart", "erd", "other"}
}

// Domain is a knowledge domain (DomainInfo on the wire).
type Domain struct {
	ID            string `json:"id" yaml:"id"`
	Name          string `json:"name" yaml:"name"`
	Description   string `json:"description,omitempty" yaml:"description,omitempty"`
	Category      string `json:"category,omitempty" yaml:"category,omitempty"`
	Region        string `json:"region,omitempty" yaml:"region,omitempty"`
	PriorityLevel string `json:"priority_level,omitempty" yaml:"priority_level,omitempty"`
	Status        Status `json:"status,omitempty" yaml:"status,omitempty"`
	OwnerID       string `json:"owner_id,omitempty" yaml:"owner_id,omitempty"`
	CreatedAt     string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

func (d Domain) RecordID() string { return d.ID }

// Diagram is a saved diagram (SavedDiagram on the wire).
type Diagram struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Content     string `json:"content,omitempty" yaml:"content,omitempty"`
	CreatedBy   string `json:"created_by,omitempty" yaml:"created_by,omitempty"`
	Status      Status `json:"status,omitempty" yaml:"status,omitempty"`
	CreatedAt   string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

func (d Diagram) RecordID() string { return d.ID }

// PendingItem is an entry in the current user's approval queue.
type PendingItem struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	ItemType    string   `json:"item_type,omitempty" yaml:"item_type,omitempty"`
	Status      Status   `json:"status,omitempty" yaml:"status,omitempty"`
	Priority    string   `json:"priority,omitempty" yaml:"priority,omitempty"`
	OwnerID     string   `json:"owner_id,omitempty" yaml:"owner_id,omitempty"`
	TargetIDs   []string `json:"target_ids,omitempty" yaml:"target_ids,omitempty"`
	CreatedAt   string   `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt   string   `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

func (p PendingItem) RecordID() string { return p.ID }

// CatalogStats is the counters block of the catalog dashboard.
type CatalogStats struct {
	TotalDomains     int `json:"totalDomains" yaml:"totalDomains"`
	TotalSystems     int `json:"totalSystems" yaml:"totalSystems"`
	TotalDiagrams    int `json:"totalDiagrams" yaml:"totalDiagrams"`
	PendingApprovals int `json:"pendingApprovals" yaml:"pendingApprovals"`
	ApprovedItems    int `json:"approvedItems" yaml:"approvedItems"`
}

type Activity struct {
	ID        string `json:"id" yaml:"id"`
	Action    string `json:"action" yaml:"action"`
	Target    string `json:"target,omitempty" yaml:"target,omitempty"`
	ActorID   string `json:"actor_id,omitempty" yaml:"actor_id,omitempty"`
	Timestamp string `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
}

func (a Activity) RecordID() string { return a.ID }

type PopularResource struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	Kind  string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Views int    `json:"views" yaml:"views"`
}

func (p PopularResource) RecordID() string { return p.ID }

// CatalogOverview is the full catalog-stats response.
type CatalogOverview struct {
	Stats            CatalogStats      `json:"stats" yaml:"stats"`
	RecentActivities []Activity        `json:"recentActivities" yaml:"recentActivities"`
	PopularResources []PopularResource `json:"popularResources" yaml:"popularResources"`
}

func quote(s string) string { return "\"" + s + "\"" }
