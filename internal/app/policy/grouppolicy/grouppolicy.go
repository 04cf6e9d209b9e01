// Package grouppolicy decides who may post in and manage groups and
// channels.
//
// Posting rules:
//   - Plain groups: any member of the group may post
//   - Channels: only project admins and superadmins may post
//   - Non-members of the group can never post, channel or not
package grouppolicy

import (
	"context"

	"github.com/thiraviyalingesh/company-chat/internal/app/policy/accesspolicy"
	"github.com/thiraviyalingesh/company-chat/internal/app/system/authz"
	"github.com/thiraviyalingesh/company-chat/internal/domain/models"
)

// CanPostInGroup reports whether the user may post to the group.
func CanPostInGroup(ctx context.Context, resolver *accesspolicy.Resolver, access authz.AccessContext, group *models.Group) (bool, error) {
	if group == nil {
		return false, nil
	}
	if access.IsSuperAdmin() {
		return true, nil
	}

	if group.IsChannel {
		role, err := resolver.RoleInProject(ctx, access, group.ProjectID)
		if err != nil {
			return false, err
		}
		return role == authz.RoleProjectAdmin, nil
	}

	// Plain group: membership in the group itself is what matters.
	return group.HasMember(access.UserID), nil
}

// CanReadGroup reports whether the user may list the group's messages:
// group members plus project admins and superadmins.
func CanReadGroup(ctx context.Context, resolver *accesspolicy.Resolver, access authz.AccessContext, group *models.Group) (bool, error) {
	if group == nil {
		return false, nil
	}
	if group.HasMember(access.UserID) {
		return true, nil
	}
	role, err := resolver.RoleInProject(ctx, access, group.ProjectID)
	if err != nil {
		return false, err
	}
	return role == authz.RoleProjectAdmin, nil
}

// CanManageGroup reports whether the user may modify the group (add or
// remove members, delete it): project admins and superadmins.
func CanManageGroup(ctx context.Context, resolver *accesspolicy.Resolver, access authz.AccessContext, group *models.Group) (bool, error) {
	if group == nil {
		return false, nil
	}
	return resolver.CanManageProject(ctx, access, group.ProjectID)
}
