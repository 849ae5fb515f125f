package access

import (
	"context"

	accessDomain "accessgate/internal/domain/access"
	catalogDomain "accessgate/internal/domain/catalog"
	directoryDomain "accessgate/internal/domain/directory"
	apperrors "accessgate/internal/shared/errors"
	"accessgate/internal/shared/logger"
)

// CatalogSource serves the current catalog snapshot. Refresh pulls the latest
// documents from remote storage and never fails the caller; Documents may
// return an error only when no catalog data is readable at all.
type CatalogSource interface {
	Refresh(ctx context.Context)
	Documents(ctx context.Context) ([]*catalogDomain.Document, error)
}

// EvaluateResult is the outcome of evaluating one request. Decision is nil
// when no rule matched and the request stays pending for manual review.
type EvaluateResult struct {
	Request  *accessDomain.Request
	Decision *accessDomain.Decision
}

// EvaluateUseCase loads a pending request, runs the decision engine against
// the freshest available catalog, and persists the resolution.
type EvaluateUseCase struct {
	requestRepo accessDomain.Repository
	groupRepo   directoryDomain.GroupRepository
	userRepo    directoryDomain.UserRepository
	catalog     CatalogSource
	engine      *DecisionEngine
	logger      logger.Interface
}

// NewEvaluateUseCase creates an evaluate use case.
func NewEvaluateUseCase(
	requestRepo accessDomain.Repository,
	groupRepo directoryDomain.GroupRepository,
	userRepo directoryDomain.UserRepository,
	catalog CatalogSource,
	engine *DecisionEngine,
	logger logger.Interface,
) *EvaluateUseCase {
	return &EvaluateUseCase{
		requestRepo: requestRepo,
		groupRepo:   groupRepo,
		userRepo:    userRepo,
		catalog:     catalog,
		engine:      engine,
		logger:      logger,
	}
}

// Execute evaluates the request with the given ID. Ownership requests are
// rejected outright; membership requests run through the rule chain. A
// deferred outcome leaves the request pending.
func (uc *EvaluateUseCase) Execute(ctx context.Context, requestID uint) (*EvaluateResult, error) {
	request, err := uc.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !request.IsPending() {
		return nil, apperrors.NewConflictError("request already resolved")
	}

	if request.RequestOwnership() {
		if err := request.Reject(ReasonOwnershipRejected); err != nil {
			return nil, err
		}
		if err := uc.requestRepo.Update(ctx, request); err != nil {
			return nil, err
		}
		uc.logger.Infow("rejected ownership request", "request_id", request.ID())
		return &EvaluateResult{
			Request: request,
			Decision: &accessDomain.Decision{
				Approved: false,
				Reason:   ReasonOwnershipRejected,
			},
		}, nil
	}

	group, err := uc.groupRepo.GetByID(ctx, request.GroupID())
	if err != nil {
		return nil, err
	}
	requester, err := uc.userRepo.GetByID(ctx, request.RequesterID())
	if err != nil {
		return nil, err
	}

	// A catalog outage only disables the catalog-backed rules; the name,
	// tag, and self-owner rules still apply.
	uc.catalog.Refresh(ctx)
	docs, err := uc.catalog.Documents(ctx)
	if err != nil {
		uc.logger.Warnw("catalog unavailable, evaluating without catalog rules", "error", err)
		docs = nil
	}

	decision, err := uc.engine.Evaluate(ctx, request, group, requester, docs)
	if err != nil {
		return nil, err
	}
	if decision == nil {
		uc.logger.Infow("request deferred to manual review",
			"request_id", request.ID(), "group_name", group.Name())
		return &EvaluateResult{Request: request}, nil
	}

	if err := request.Approve(decision.Reason); err != nil {
		return nil, err
	}
	if err := uc.requestRepo.Update(ctx, request); err != nil {
		return nil, err
	}

	uc.logger.Infow("request auto-approved",
		"request_id", request.ID(),
		"group_name", group.Name(),
		"requester", requester.Identity(),
		"reason", decision.Reason,
	)
	return &EvaluateResult{Request: request, Decision: decision}, nil
}
