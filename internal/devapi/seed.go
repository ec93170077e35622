package devapi

import (
	"context"

	"catalog-cli/internal/model"
)

// Seed fills an empty store with a small sample catalog owned by ownerID.
// It is a no-op when domains already exist.
func (s *Store) Seed(ctx context.Context, ownerID string) error {
	n, err := s.count(ctx, `SELECT COUNT(*) FROM domains`)
	if err != nil || n > 0 {
		return err
	}

	domains := []model.CreateDomainRequest{
		{Name: "KB은행", Description: "Retail banking core", Category: "banking", Region: "kr", PriorityLevel: "high", OwnerID: ownerID},
		{Name: "Card Payments", Description: "Card issuing and acquiring flows", Category: "payments", Region: "eu", PriorityLevel: "critical", OwnerID: ownerID},
		{Name: "Customer Onboarding", Description: "KYC and account opening", Category: "banking", Region: "us", PriorityLevel: "medium", OwnerID: ownerID},
		{Name: "General Ledger", Description: "Double-entry bookkeeping", Category: "finance", PriorityLevel: "low", OwnerID: ownerID},
	}
	var firstDomain string
	for i, d := range domains {
		created, err := s.CreateDomain(ctx, d)
		if err != nil {
			return err
		}
		if i == 0 {
			firstDomain = created.ID
		}
	}

	diagrams := []model.CreateDiagramRequest{
		{Name: "Payments context map", Type: "architecture", Description: "Bounded contexts around card payments", Content: "graph TD; Issuer-->Scheme; Scheme-->Acquirer", CreatedBy: ownerID},
		{Name: "Onboarding sequence", Type: "sequence", Description: "KYC happy path", Content: "sequenceDiagram\n  User->>App: sign up\n  App->>KYC: verify", CreatedBy: ownerID},
	}
	for _, d := range diagrams {
		if _, err := s.CreateDiagram(ctx, d); err != nil {
			return err
		}
	}

	approvals := []struct {
		req    model.CreateApprovalRequest
		status model.Status
	}{
		{model.CreateApprovalRequest{Title: "Publish KB은행 domain", Description: "First review", ItemType: "domain", Priority: "high", RequesterID: ownerID, TargetIDs: []string{firstDomain}}, model.StatusPendingApproval},
		{model.CreateApprovalRequest{Title: "Ledger glossary", ItemType: "document", RequesterID: ownerID, TargetIDs: []string{"doc-ledger"}}, model.StatusApproved},
		{model.CreateApprovalRequest{Title: "Legacy card diagram", ItemType: "diagram", RequesterID: ownerID, TargetIDs: []string{"dgm-legacy"}}, model.StatusRejected},
		{model.CreateApprovalRequest{Title: "Onboarding runbook", ItemType: "document", RequesterID: ownerID, TargetIDs: []string{"doc-onboarding"}}, model.StatusDraft},
	}
	for _, a := range approvals {
		p, err := s.CreateApproval(ctx, a.req)
		if err != nil {
			return err
		}
		if a.status != p.Status {
			if err := s.SetApprovalStatus(ctx, p.ID, a.status); err != nil {
				return err
			}
		}
	}
	return nil
}
