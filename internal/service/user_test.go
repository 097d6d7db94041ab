package service_test

import (
	"context"
	"testing"

	"lexfirm-api/internal/domain"
	"lexfirm-api/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminEnv(t *testing.T) *env {
	t.Helper()
	e := newEnv(t)
	e.addFirm("f1", 10, 100)
	e.addUser("admin", "admin@example.com", nil)
	e.addMembership("admin", "f1", "role_firm_admin")
	return e
}

func TestUserService_CreateUserWithRole(t *testing.T) {
	e := adminEnv(t)
	ctx := context.Background()

	member, err := e.users.CreateUserWithRole(ctx, "admin", "f1", &domain.CreateUserRequest{
		Name:   "Dana",
		Email:  "dana@example.com",
		RoleID: "role_lawyer",
	})
	require.NoError(t, err)

	assert.Equal(t, "Dana", member.User.Name)
	assert.Equal(t, domain.RoleLawyer.String(), member.Role.Name)
	assert.Equal(t, domain.MembershipActive, member.Status)
	assert.True(t, member.User.MustChangePassword, "new accounts must rotate the placeholder password")
	assert.NotEmpty(t, e.st.users[member.User.ID].PasswordHash)
}

func TestUserService_CreateUserDuplicateEmail(t *testing.T) {
	e := adminEnv(t)
	ctx := context.Background()

	req := &domain.CreateUserRequest{Name: "Dana", Email: "dup@example.com", RoleID: "role_lawyer"}

	_, err := e.users.CreateUserWithRole(ctx, "admin", "f1", req)
	require.NoError(t, err)

	_, err = e.users.CreateUserWithRole(ctx, "admin", "f1", req)
	assert.ErrorIs(t, err, service.ErrEmailConflict)

	// Exactly one identity exists for the email.
	count := 0
	for _, u := range e.st.users {
		if u.Email == "dup@example.com" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

// An email taken in one firm is rejected everywhere, and the rejected
// onboarding leaves no half-created rows behind in the second firm.
func TestUserService_CreateUserDuplicateEmailAcrossFirms(t *testing.T) {
	e := adminEnv(t)
	ctx := context.Background()

	e.addFirm("f2", 10, 100)
	e.addUser("admin2", "admin2@example.com", nil)
	e.addMembership("admin2", "f2", "role_firm_admin")

	_, err := e.users.CreateUserWithRole(ctx, "admin", "f1", &domain.CreateUserRequest{
		Name: "Dana", Email: "shared@example.com", RoleID: "role_lawyer",
	})
	require.NoError(t, err)

	_, err = e.users.CreateUserWithRole(ctx, "admin2", "f2", &domain.CreateUserRequest{
		Name: "Dana Again", Email: "shared@example.com", RoleID: "role_lawyer",
	})
	assert.ErrorIs(t, err, service.ErrEmailConflict)

	f2Members := 0
	for _, m := range e.st.memberships {
		if m.FirmID == "f2" {
			f2Members++
		}
	}
	assert.Equal(t, 1, f2Members, "only the admin belongs to the second firm")
}

func TestUserService_CreateUserUnknownRole(t *testing.T) {
	e := adminEnv(t)

	_, err := e.users.CreateUserWithRole(context.Background(), "admin", "f1", &domain.CreateUserRequest{
		Name: "Dana", Email: "dana@example.com", RoleID: "missing-role",
	})
	assert.ErrorIs(t, err, service.ErrRoleNotFound)
}

func TestUserService_CreateUserSeatLimit(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// max_users=2, and the admin already occupies one seat.
	e.addFirm("f1", 2, 100)
	e.addUser("admin", "admin@example.com", nil)
	e.addMembership("admin", "f1", "role_firm_admin")

	_, err := e.users.CreateUserWithRole(ctx, "admin", "f1", &domain.CreateUserRequest{
		Name: "Second", Email: "second@example.com", RoleID: "role_lawyer",
	})
	require.NoError(t, err)

	_, err = e.users.CreateUserWithRole(ctx, "admin", "f1", &domain.CreateUserRequest{
		Name: "Third", Email: "third@example.com", RoleID: "role_lawyer",
	})
	assert.ErrorIs(t, err, service.ErrSeatLimitReached)
}

func TestUserService_NonAdminCannotManageMembers(t *testing.T) {
	e := adminEnv(t)
	ctx := context.Background()

	e.addUser("lw", "lw@example.com", nil)
	e.addMembership("lw", "f1", "role_lawyer")
	e.addLawyer("l1", "f1", strPtr("lw"))

	_, err := e.users.CreateUserWithRole(ctx, "lw", "f1", &domain.CreateUserRequest{
		Name: "X", Email: "x@example.com", RoleID: "role_client",
	})
	assert.ErrorIs(t, err, service.ErrUnauthorized)

	_, _, err = e.users.ListUsersByFirm(ctx, "lw", "f1")
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestUserService_OutsiderIsNotFirmMember(t *testing.T) {
	e := adminEnv(t)

	e.addUser("stranger", "stranger@example.com", nil)

	_, _, err := e.users.ListUsersByFirm(context.Background(), "stranger", "f1")
	assert.ErrorIs(t, err, service.ErrNotFirmMember)
}

func TestUserService_SuperAdminBypassesMembership(t *testing.T) {
	e := adminEnv(t)

	e.addUser("root", "root@example.com", strPtr("role_super_admin"))

	_, members, err := e.users.ListUsersByFirm(context.Background(), "root", "f1")
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestUserService_UpdateMembershipStatusAndRole(t *testing.T) {
	e := adminEnv(t)
	ctx := context.Background()

	e.addUser("u1", "u1@example.com", nil)
	e.addMembership("u1", "f1", "role_lawyer")

	inactive := domain.MembershipInactive
	clientRole := "role_client"
	member, err := e.users.UpdateUserByFirm(ctx, "admin", "f1", "u1", &domain.UpdateUserRequest{
		Status: &inactive,
		RoleID: &clientRole,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MembershipInactive, member.Status)
	assert.Equal(t, domain.RoleClient.String(), member.Role.Name)
}

func TestUserService_UpdateUnknownMember(t *testing.T) {
	e := adminEnv(t)

	inactive := domain.MembershipInactive
	_, err := e.users.UpdateUserByFirm(context.Background(), "admin", "f1", "ghost", &domain.UpdateUserRequest{
		Status: &inactive,
	})
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

// Removing the last membership reclaims the identity; removing one of
// several leaves the user and the other memberships intact.
func TestUserService_DeleteUserMembershipCleanup(t *testing.T) {
	e := adminEnv(t)
	ctx := context.Background()

	e.addFirm("f2", 10, 100)
	e.addUser("admin2", "admin2@example.com", nil)
	e.addMembership("admin2", "f2", "role_firm_admin")

	// u1 belongs to both firms.
	e.addUser("u1", "u1@example.com", nil)
	e.addMembership("u1", "f1", "role_lawyer")
	e.addMembership("u1", "f2", "role_lawyer")

	require.NoError(t, e.users.DeleteUserByFirm(ctx, "admin", "f1", "u1"))

	_, stillExists := e.st.users["u1"]
	assert.True(t, stillExists, "user with another membership must survive")
	_, f2Membership := e.st.memberships[membershipKey("u1", "f2")]
	assert.True(t, f2Membership)

	require.NoError(t, e.users.DeleteUserByFirm(ctx, "admin2", "f2", "u1"))

	_, stillExists = e.st.users["u1"]
	assert.False(t, stillExists, "last membership removal reclaims the identity")
}

func TestUserService_DeleteNeverRemovesSuperAdminIdentity(t *testing.T) {
	e := adminEnv(t)
	ctx := context.Background()

	// A Super Admin who also happens to hold a membership in f1.
	e.addUser("root", "root@example.com", strPtr("role_super_admin"))
	e.addMembership("root", "f1", "role_firm_admin")

	require.NoError(t, e.users.DeleteUserByFirm(ctx, "admin", "f1", "root"))

	_, stillExists := e.st.users["root"]
	assert.True(t, stillExists, "direct-role identities are never reclaimed")
}

func TestUserService_ListUsersIncludesRolePermissions(t *testing.T) {
	e := adminEnv(t)
	ctx := context.Background()

	role, err := e.roles.CreateRole(ctx, &domain.CreateRoleRequest{
		Name: "Paralegal", Permissions: []string{"read_case"},
	})
	require.NoError(t, err)

	e.addUser("u1", "u1@example.com", nil)
	e.addMembership("u1", "f1", role.Role.ID)

	firm, members, err := e.users.ListUsersByFirm(ctx, "admin", "f1")
	require.NoError(t, err)
	require.Len(t, members, 2)

	// The roster carries the firm itself alongside its members.
	require.NotNil(t, firm)
	assert.Equal(t, "f1", firm.ID)
	assert.Equal(t, "Firm f1", firm.Name)

	for _, m := range members {
		if m.User.ID == "u1" {
			assert.Equal(t, []string{"read_case"}, m.Permissions)
		}
	}
}
