package repo_test

import (
	"context"
	"os"
	"testing"

	"lexfirm-api/internal/database"
	"lexfirm-api/internal/domain"
	"lexfirm-api/internal/repo"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestPool connects to the database named by DATABASE_URL or skips the
// test. These integration tests require the seed migration (system roles and
// the permission catalog) to be applied.
//
// Run with: DATABASE_URL=... go test -v ./internal/repo
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	pool, err := database.NewPool(context.Background(), databaseURL)
	require.NoError(t, err, "failed to connect to database")
	t.Cleanup(pool.Close)

	return pool
}

func seedFirm(t *testing.T, pool *pgxpool.Pool, firmID string) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		INSERT INTO firms (id, name, subdomain)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, firmID, "Test Firm "+firmID, "test-"+firmID)
	require.NoError(t, err)
}

func seedUser(t *testing.T, pool *pgxpool.Pool, userID, email string) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		INSERT INTO users (id, name, email, password_hash)
		VALUES ($1, $2, $3, 'x')
		ON CONFLICT (id) DO NOTHING
	`, userID, "Test User", email)
	require.NoError(t, err)
}

func TestMembershipRepository_RoleLookupAndRemove(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()

	firmID := "itest-firm-" + uuid.NewString()[:8]
	userID := "itest-user-" + uuid.NewString()[:8]

	cleanup := func() {
		_, _ = pool.Exec(ctx, `DELETE FROM user_firms WHERE firm_id = $1`, firmID)
		_, _ = pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
		_, _ = pool.Exec(ctx, `DELETE FROM firms WHERE id = $1`, firmID)
	}
	cleanup()
	defer cleanup()

	seedFirm(t, pool, firmID)
	seedUser(t, pool, userID, userID+"@example.com")

	memberships := repo.NewMembershipRepository(pool)

	// Not a member yet.
	_, err := memberships.GetMemberRole(ctx, userID, firmID)
	assert.ErrorIs(t, err, repo.ErrMembershipNotFound)

	// Bind with the seeded Lawyer role.
	err = memberships.Create(ctx, &domain.UserFirm{
		ID:     uuid.NewString(),
		UserID: userID,
		FirmID: firmID,
		RoleID: "role_lawyer",
		Status: domain.MembershipActive,
	})
	require.NoError(t, err)

	role, err := memberships.GetMemberRole(ctx, userID, firmID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleLawyer.String(), role.Name)

	// A second binding for the same pair conflicts.
	err = memberships.Create(ctx, &domain.UserFirm{
		ID:     uuid.NewString(),
		UserID: userID,
		FirmID: firmID,
		RoleID: "role_client",
		Status: domain.MembershipActive,
	})
	assert.ErrorIs(t, err, repo.ErrMembershipExists)

	// Removing the last membership reclaims the role-less user row.
	userDeleted, err := memberships.Remove(ctx, userID, firmID)
	require.NoError(t, err)
	assert.True(t, userDeleted, "user with no remaining memberships should be deleted")

	users := repo.NewUserRepository(pool)
	_, err = users.Get(ctx, userID)
	assert.ErrorIs(t, err, repo.ErrUserNotFound)
}

func TestMembershipRepository_RemoveKeepsMultiFirmUser(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()

	firmA := "itest-firma-" + uuid.NewString()[:8]
	firmB := "itest-firmb-" + uuid.NewString()[:8]
	userID := "itest-user-" + uuid.NewString()[:8]

	cleanup := func() {
		_, _ = pool.Exec(ctx, `DELETE FROM user_firms WHERE user_id = $1`, userID)
		_, _ = pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
		_, _ = pool.Exec(ctx, `DELETE FROM firms WHERE id IN ($1, $2)`, firmA, firmB)
	}
	cleanup()
	defer cleanup()

	seedFirm(t, pool, firmA)
	seedFirm(t, pool, firmB)
	seedUser(t, pool, userID, userID+"@example.com")

	memberships := repo.NewMembershipRepository(pool)

	for _, firmID := range []string{firmA, firmB} {
		err := memberships.Create(ctx, &domain.UserFirm{
			ID:     uuid.NewString(),
			UserID: userID,
			FirmID: firmID,
			RoleID: "role_lawyer",
			Status: domain.MembershipActive,
		})
		require.NoError(t, err)
	}

	// Leaving one firm keeps the shared identity alive for the other.
	userDeleted, err := memberships.Remove(ctx, userID, firmA)
	require.NoError(t, err)
	assert.False(t, userDeleted)

	role, err := memberships.GetMemberRole(ctx, userID, firmB)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleLawyer.String(), role.Name)
}

// Reclaiming a member's identity must not be blocked by documents they
// uploaded; the rows survive with the uploader reference cleared.
func TestMembershipRepository_RemoveUserWhoUploadedDocuments(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()

	firmID := "itest-firm-" + uuid.NewString()[:8]
	userID := "itest-user-" + uuid.NewString()[:8]
	clientID := "itest-client-" + uuid.NewString()[:8]
	caseID := "itest-case-" + uuid.NewString()[:8]
	docID := "itest-doc-" + uuid.NewString()[:8]

	cleanup := func() {
		_, _ = pool.Exec(ctx, `DELETE FROM case_documents WHERE id = $1`, docID)
		_, _ = pool.Exec(ctx, `DELETE FROM cases WHERE id = $1`, caseID)
		_, _ = pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, clientID)
		_, _ = pool.Exec(ctx, `DELETE FROM user_firms WHERE firm_id = $1`, firmID)
		_, _ = pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
		_, _ = pool.Exec(ctx, `DELETE FROM firms WHERE id = $1`, firmID)
	}
	cleanup()
	defer cleanup()

	seedFirm(t, pool, firmID)
	seedUser(t, pool, userID, userID+"@example.com")

	memberships := repo.NewMembershipRepository(pool)
	require.NoError(t, memberships.Create(ctx, &domain.UserFirm{
		ID:     uuid.NewString(),
		UserID: userID,
		FirmID: firmID,
		RoleID: "role_lawyer",
		Status: domain.MembershipActive,
	}))

	_, err := pool.Exec(ctx, `
		INSERT INTO clients (id, full_name, firm_id)
		VALUES ($1, 'Doc Client', $2)
	`, clientID, firmID)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `
		INSERT INTO cases (id, title, case_number, firm_id, client_id)
		VALUES ($1, 'Doc Case', $2, $3, $4)
	`, caseID, caseID, firmID, clientID)
	require.NoError(t, err)

	documents := repo.NewDocumentRepository(pool)
	require.NoError(t, documents.Add(ctx, &domain.CaseDocument{
		ID:             docID,
		FileName:       "brief.pdf",
		FilePath:       "documents/" + docID,
		UploadedByID:   userID,
		UploadedByType: domain.RoleLawyer.String(),
		CaseID:         caseID,
	}))

	userDeleted, err := memberships.Remove(ctx, userID, firmID)
	require.NoError(t, err)
	assert.True(t, userDeleted)

	doc, err := documents.Get(ctx, caseID, docID)
	require.NoError(t, err)
	assert.Empty(t, doc.UploadedByID, "uploader reference is cleared with the identity")
	assert.Equal(t, domain.RoleLawyer.String(), doc.UploadedByType)
}

func TestRoleRepository_FirmScopedRoleListing(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()

	firmID := "itest-firm-" + uuid.NewString()[:8]
	userA := "itest-usera-" + uuid.NewString()[:8]
	userB := "itest-userb-" + uuid.NewString()[:8]

	cleanup := func() {
		_, _ = pool.Exec(ctx, `DELETE FROM user_firms WHERE firm_id = $1`, firmID)
		_, _ = pool.Exec(ctx, `DELETE FROM users WHERE id IN ($1, $2)`, userA, userB)
		_, _ = pool.Exec(ctx, `DELETE FROM firms WHERE id = $1`, firmID)
	}
	cleanup()
	defer cleanup()

	seedFirm(t, pool, firmID)
	seedUser(t, pool, userA, userA+"@example.com")
	seedUser(t, pool, userB, userB+"@example.com")

	memberships := repo.NewMembershipRepository(pool)
	roles := repo.NewRoleRepository(pool)

	// Two lawyers and one admin: the listing must deduplicate and the
	// exclusion list must hide the system roles.
	for _, m := range []struct{ user, role string }{
		{userA, "role_lawyer"},
		{userB, "role_firm_admin"},
	} {
		err := memberships.Create(ctx, &domain.UserFirm{
			ID:     uuid.NewString(),
			UserID: m.user,
			FirmID: firmID,
			RoleID: m.role,
			Status: domain.MembershipActive,
		})
		require.NoError(t, err)
	}

	listed, err := roles.ListFirmRoles(ctx, firmID, []string{string(domain.RoleSuperAdmin), string(domain.RoleFirmAdmin)})
	require.NoError(t, err)

	names := make([]string, 0, len(listed))
	for _, role := range listed {
		names = append(names, role.Name)
	}
	assert.Equal(t, []string{string(domain.RoleLawyer)}, names)

	bound, err := roles.RoleBoundToFirm(ctx, firmID, "role_lawyer")
	require.NoError(t, err)
	assert.True(t, bound)

	bound, err = roles.RoleBoundToFirm(ctx, firmID, "role_client")
	require.NoError(t, err)
	assert.False(t, bound)
}

func TestRoleRepository_PermissionGrantIsIdempotent(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()

	roles := repo.NewRoleRepository(pool)

	role := &domain.Role{ID: "itest-role-" + uuid.NewString()[:8], Name: "Itest " + uuid.NewString()[:8]}

	cleanup := func() {
		_, _ = pool.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, role.ID)
		_, _ = pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, role.ID)
	}
	cleanup()
	defer cleanup()

	require.NoError(t, roles.CreateRole(ctx, role))

	perm, err := roles.GetPermissionByName(ctx, "create_case")
	require.NoError(t, err)

	// Granting twice leaves exactly one entry.
	require.NoError(t, roles.AddRolePermission(ctx, role.ID, perm.ID))
	require.NoError(t, roles.AddRolePermission(ctx, role.ID, perm.ID))

	names, err := roles.ListRolePermissionNames(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"create_case"}, names)

	_, err = roles.GetPermissionByName(ctx, "no_such_permission")
	assert.ErrorIs(t, err, repo.ErrPermissionNotFound)
}
