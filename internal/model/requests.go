package model

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// ValidationError is a client-side rejection raised before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func required(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return &ValidationError{Field: field, Reason: "required"}
	}
	return nil
}

func oneOf(field, v string, allowed []string) error {
	if v == "" || slices.Contains(allowed, v) {
		return nil
	}
	return &ValidationError{Field: field, Reason: fmt.Sprintf("%q is not one of %s", v, strings.Join(allowed, ", "))}
}

type CreateDomainRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Category      string `json:"category,omitempty"`
	Region        string `json:"region,omitempty"`
	PriorityLevel string `json:"priority_level,omitempty"`
	OwnerID       string `json:"owner_id"`
}

func (r CreateDomainRequest) Validate() error {
	if err := required("name", r.Name); err != nil {
		return err
	}
	if err := required("description", r.Description); err != nil {
		return err
	}
	if err := required("owner_id", r.OwnerID); err != nil {
		return err
	}
	return oneOf("priority_level", r.PriorityLevel, PriorityLevels())
}

// UpdateDomainRequest carries only the fields being changed.
type UpdateDomainRequest struct {
	ID            string  `json:"-"`
	Name          *string `json:"name,omitempty"`
	Description   *string `json:"description,omitempty"`
	Category      *string `json:"category,omitempty"`
	Region        *string `json:"region,omitempty"`
	PriorityLevel *string `json:"priority_level,omitempty"`
	Status        *Status `json:"status,omitempty"`
}

func (r UpdateDomainRequest) Validate() error {
	if err := required("id", r.ID); err != nil {
		return err
	}
	if r.Name == nil && r.Description == nil && r.Category == nil && r.Region == nil && r.PriorityLevel == nil && r.Status == nil {
		return &ValidationError{Reason: "nothing to update"}
	}
	if r.Name != nil {
		if err := required("name", *r.Name); err != nil {
			return err
		}
	}
	if r.PriorityLevel != nil {
		if err := oneOf("priority_level", *r.PriorityLevel, PriorityLevels()); err != nil {
			return err
		}
	}
	if r.Status != nil {
		if _, err := ParseStatus(string(*r.Status)); err != nil {
			return err
		}
	}
	return nil
}

type CreateDiagramRequest struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Content     string `json:"content"`
	CreatedBy   string `json:"created_by"`
}

func (r CreateDiagramRequest) Validate() error {
	if err := required("name", r.Name); err != nil {
		return err
	}
	if err := required("type", r.Type); err != nil {
		return err
	}
	if err := oneOf("type", r.Type, DiagramTypes()); err != nil {
		return err
	}
	if err := required("content", r.Content); err != nil {
		return err
	}
	return required("created_by", r.CreatedBy)
}

type CreateApprovalRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ItemType    string   `json:"item_type"`
	Priority    string   `json:"priority,omitempty"`
	RequesterID string   `json:"requester_id"`
	TargetIDs   []string `json:"target_ids"`
}

func (r CreateApprovalRequest) Validate() error {
	if err := required("title", r.Title); err != nil {
		return err
	}
	if err := required("item_type", r.ItemType); err != nil {
		return err
	}
	if err := required("requester_id", r.RequesterID); err != nil {
		return err
	}
	if len(r.TargetIDs) == 0 {
		return &ValidationError{Field: "target_ids", Reason: "at least one target is required"}
	}
	for _, id := range r.TargetIDs {
		if strings.TrimSpace(id) == "" {
			return &ValidationError{Field: "target_ids", Reason: "empty target id"}
		}
	}
	return oneOf("priority", r.Priority, PriorityLevels())
}

var githubRepoURL = regexp.MustCompile(`^https://github\.com/[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+?(\.git)?/?$`)

// ValidateGitHubURL accepts https repository URLs only.
func ValidateGitHubURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return &ValidationError{Field: "source.url", Reason: "required"}
	}
	if !githubRepoURL.MatchString(raw) {
		return &ValidationError{Field: "source.url", Reason: "must look like https://github.com/<owner>/<repo>"}
	}
	return nil
}

type ExtractionSource struct {
	Type   string `json:"type"`
	URL    string `json:"url"`
	Branch string `json:"branch,omitempty"`
}

type ExtractionOptions struct {
	IncludeCode     bool `json:"includeCode"`
	IncludeDocs     bool `json:"includeDocs"`
	IncludeDiagrams bool `json:"includeDiagrams"`
}

type ExtractionSystem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	DomainID    string `json:"domainId,omitempty"`
	OwnerID     string `json:"ownerId,omitempty"`
}

type ApprovalStrategy string

const (
	ApprovalStrategyManual ApprovalStrategy = "manual"
	ApprovalStrategyAuto   ApprovalStrategy = "auto"
)

type ExtractionRequest struct {
	Source           ExtractionSource  `json:"source"`
	Options          ExtractionOptions `json:"options"`
	System           ExtractionSystem  `json:"system"`
	ApprovalStrategy ApprovalStrategy  `json:"approvalStrategy"`
}

// ValidateSource checks the fields entered on the source-config step.
func (r ExtractionRequest) ValidateSource() error {
	return ValidateGitHubURL(r.Source.URL)
}

// ValidateSystem checks the fields entered on the system-info step.
func (r ExtractionRequest) ValidateSystem() error {
	if err := required("system.name", r.System.Name); err != nil {
		return err
	}
	return required("system.description", r.System.Description)
}

func (r ExtractionRequest) Validate() error {
	if err := r.ValidateSource(); err != nil {
		return err
	}
	if err := r.ValidateSystem(); err != nil {
		return err
	}
	switch r.ApprovalStrategy {
	case ApprovalStrategyManual, ApprovalStrategyAuto:
		return nil
	default:
		return &ValidationError{Field: "approvalStrategy", Reason: fmt.Sprintf("%q is not one of manual, auto", r.ApprovalStrategy)}
	}
}
