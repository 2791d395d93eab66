// Package services contains the business logic of tasklane-engine.
// Services enforce project membership and access levels; repositories
// below them only move data.
package services

import (
	"context"
	"errors"

	"github.com/tasklane-io/tasklane-engine/pkg/apperrors"
	"github.com/tasklane-io/tasklane-engine/pkg/models"
	"github.com/tasklane-io/tasklane-engine/pkg/repositories"
)

// requireAccess checks that the user holds at least the required access
// level in the project. Access levels are monotonic, so a manager passes
// an editor check and an editor passes a reader check. A missing
// membership maps to ErrForbidden; callers establish 404-vs-403 by
// looking the project up first.
func requireAccess(ctx context.Context, memberships repositories.MembershipRepository, projectID, userID int64, required models.AccessLevel) error {
	membership, err := memberships.Get(ctx, projectID, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.ErrForbidden
	}
	if err != nil {
		return err
	}

	if !membership.AccessLevel.AtLeast(required) {
		return apperrors.ErrForbidden
	}

	return nil
}
