package service_test

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"lexfirm-api/internal/domain"
	"lexfirm-api/internal/observability/logger"
	"lexfirm-api/internal/repo"
	"lexfirm-api/internal/service"

	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory stand-in for every repository, mirroring the
// firm-scoping and sentinel-error behavior of internal/repo so services can
// be exercised without a database.
type fakeStore struct {
	mu sync.Mutex

	firms       map[string]domain.Firm
	users       map[string]domain.User
	memberships map[string]domain.UserFirm // key: userID|firmID
	roles       map[string]domain.Role
	permsByName map[string]domain.Permission
	rolePerms   map[string]map[string]bool // roleID -> permID set
	clients     map[string]domain.Client
	lawyers     map[string]domain.Lawyer
	cases       map[string]domain.Case
	documents   map[string]domain.CaseDocument
}

func newFakeStore() *fakeStore {
	st := &fakeStore{
		firms:       make(map[string]domain.Firm),
		users:       make(map[string]domain.User),
		memberships: make(map[string]domain.UserFirm),
		roles:       make(map[string]domain.Role),
		permsByName: make(map[string]domain.Permission),
		rolePerms:   make(map[string]map[string]bool),
		clients:     make(map[string]domain.Client),
		lawyers:     make(map[string]domain.Lawyer),
		cases:       make(map[string]domain.Case),
		documents:   make(map[string]domain.CaseDocument),
	}

	// Mirror the seed migration: system roles and the permission catalog.
	for id, name := range map[string]string{
		"role_super_admin": domain.RoleSuperAdmin.String(),
		"role_firm_admin":  domain.RoleFirmAdmin.String(),
		"role_lawyer":      domain.RoleLawyer.String(),
		"role_client":      domain.RoleClient.String(),
	} {
		st.roles[id] = domain.Role{ID: id, Name: name}
	}
	for _, name := range []string{
		"create_case", "read_case", "update_case", "delete_case",
		"create_case_document", "read_case_document", "delete_case_document",
		"manage_clients", "manage_lawyers", "manage_users",
	} {
		st.permsByName[name] = domain.Permission{ID: "perm_" + name, Name: name}
	}

	return st
}

func membershipKey(userID, firmID string) string { return userID + "|" + firmID }

// --- FirmStore ---

func (st *fakeStore) Get(ctx context.Context, firmID string) (*domain.Firm, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	f, ok := st.firms[firmID]
	if !ok {
		return nil, repo.ErrFirmNotFound
	}
	return &f, nil
}

// --- UserStore ---
// GetUser avoids clashing with FirmStore.Get; the UserStore interface is
// satisfied through the userView wrapper below.

type userView struct{ st *fakeStore }

func (v userView) Get(ctx context.Context, userID string) (*domain.User, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	u, ok := v.st.users[userID]
	if !ok {
		return nil, repo.ErrUserNotFound
	}
	return &u, nil
}

// CreateWithMembership writes either both rows or, on any conflict, neither,
// matching the transactional production implementation.
func (v userView) CreateWithMembership(ctx context.Context, user *domain.User, m *domain.UserFirm) error {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	for _, u := range v.st.users {
		if u.Email == user.Email {
			return repo.ErrEmailConflict
		}
	}
	if _, ok := v.st.memberships[membershipKey(m.UserID, m.FirmID)]; ok {
		return repo.ErrMembershipExists
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	m.CreatedAt, m.UpdatedAt = now, now
	v.st.users[user.ID] = *user
	v.st.memberships[membershipKey(m.UserID, m.FirmID)] = *m
	return nil
}

func (v userView) EmailExists(ctx context.Context, email string) (bool, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	for _, u := range v.st.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (v userView) GetDirectRoleName(ctx context.Context, userID string) (string, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	u, ok := v.st.users[userID]
	if !ok {
		return "", repo.ErrUserNotFound
	}
	if u.RoleID == nil {
		return "", nil
	}
	return v.st.roles[*u.RoleID].Name, nil
}

// --- MembershipStore ---

type membershipView struct{ st *fakeStore }

func (v membershipView) GetMembership(ctx context.Context, userID, firmID string) (*domain.UserFirm, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	m, ok := v.st.memberships[membershipKey(userID, firmID)]
	if !ok {
		return nil, repo.ErrMembershipNotFound
	}
	return &m, nil
}

func (v membershipView) GetMemberRole(ctx context.Context, userID, firmID string) (*domain.Role, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	m, ok := v.st.memberships[membershipKey(userID, firmID)]
	if !ok {
		return nil, repo.ErrMembershipNotFound
	}
	role := v.st.roles[m.RoleID]
	return &role, nil
}

func (v membershipView) ListFirmMembers(ctx context.Context, firmID string) ([]domain.FirmMember, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	var members []domain.FirmMember
	for _, m := range v.st.memberships {
		if m.FirmID != firmID {
			continue
		}
		members = append(members, domain.FirmMember{
			User:   v.st.users[m.UserID],
			Role:   v.st.roles[m.RoleID],
			Status: m.Status,
		})
	}
	return members, nil
}

func (v membershipView) Update(ctx context.Context, userID, firmID string, status *domain.MembershipStatus, roleID *string) error {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	key := membershipKey(userID, firmID)
	m, ok := v.st.memberships[key]
	if !ok {
		return repo.ErrMembershipNotFound
	}
	if status != nil {
		m.Status = *status
	}
	if roleID != nil {
		m.RoleID = *roleID
	}
	m.UpdatedAt = time.Now()
	v.st.memberships[key] = m
	return nil
}

func (v membershipView) Remove(ctx context.Context, userID, firmID string) (bool, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	key := membershipKey(userID, firmID)
	if _, ok := v.st.memberships[key]; !ok {
		return false, repo.ErrMembershipNotFound
	}
	delete(v.st.memberships, key)

	for _, m := range v.st.memberships {
		if m.UserID == userID {
			return false, nil
		}
	}
	if u, ok := v.st.users[userID]; ok && u.RoleID == nil {
		delete(v.st.users, userID)
		// Mirror the schema's ON DELETE SET NULL on case_documents.uploaded_by_id.
		for id, d := range v.st.documents {
			if d.UploadedByID == userID {
				d.UploadedByID = ""
				v.st.documents[id] = d
			}
		}
		return true, nil
	}
	return false, nil
}

func (v membershipView) CountByFirm(ctx context.Context, firmID string) (int, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	count := 0
	for _, m := range v.st.memberships {
		if m.FirmID == firmID {
			count++
		}
	}
	return count, nil
}

// --- RoleStore ---

type roleView struct{ st *fakeStore }

func (v roleView) GetRole(ctx context.Context, roleID string) (*domain.Role, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	r, ok := v.st.roles[roleID]
	if !ok {
		return nil, repo.ErrRoleNotFound
	}
	return &r, nil
}

func (v roleView) CreateRole(ctx context.Context, role *domain.Role) error {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	for _, r := range v.st.roles {
		if r.Name == role.Name {
			return repo.ErrRoleNameConflict
		}
	}
	role.CreatedAt = time.Now()
	v.st.roles[role.ID] = *role
	return nil
}

func (v roleView) ListPermissions(ctx context.Context) ([]domain.Permission, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	var perms []domain.Permission
	for _, p := range v.st.permsByName {
		perms = append(perms, p)
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i].Name < perms[j].Name })
	return perms, nil
}

func (v roleView) GetPermissionByName(ctx context.Context, name string) (*domain.Permission, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	p, ok := v.st.permsByName[name]
	if !ok {
		return nil, repo.ErrPermissionNotFound
	}
	return &p, nil
}

func (v roleView) ListRolePermissionNames(ctx context.Context, roleID string) ([]string, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	names := []string{}
	for _, p := range v.st.permsByName {
		if v.st.rolePerms[roleID][p.ID] {
			names = append(names, p.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (v roleView) AddRolePermission(ctx context.Context, roleID, permissionID string) error {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	if v.st.rolePerms[roleID] == nil {
		v.st.rolePerms[roleID] = make(map[string]bool)
	}
	v.st.rolePerms[roleID][permissionID] = true
	return nil
}

func (v roleView) RemoveRolePermission(ctx context.Context, roleID, permissionID string) error {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	delete(v.st.rolePerms[roleID], permissionID)
	return nil
}

func (v roleView) ListFirmRoles(ctx context.Context, firmID string, excludeNames []string) ([]domain.Role, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	excluded := make(map[string]bool, len(excludeNames))
	for _, name := range excludeNames {
		excluded[name] = true
	}
	seen := make(map[string]bool)
	var roles []domain.Role
	for _, m := range v.st.memberships {
		if m.FirmID != firmID || seen[m.RoleID] {
			continue
		}
		seen[m.RoleID] = true
		r := v.st.roles[m.RoleID]
		if excluded[r.Name] {
			continue
		}
		roles = append(roles, r)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
	return roles, nil
}

func (v roleView) RoleBoundToFirm(ctx context.Context, firmID, roleID string) (bool, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	for _, m := range v.st.memberships {
		if m.FirmID == firmID && m.RoleID == roleID {
			return true, nil
		}
	}
	return false, nil
}

// --- ClientStore ---

type clientView struct{ st *fakeStore }

func (v clientView) Create(ctx context.Context, client *domain.Client) error {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	client.CreatedAt = time.Now()
	client.UpdatedAt = client.CreatedAt
	v.st.clients[client.ID] = *client
	return nil
}

func (v clientView) Get(ctx context.Context, firmID, clientID string) (*domain.Client, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	c, ok := v.st.clients[clientID]
	if !ok || c.FirmID != firmID {
		return nil, repo.ErrClientNotFound
	}
	return &c, nil
}

func (v clientView) GetByUser(ctx context.Context, firmID, userID string) (*domain.Client, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	for _, c := range v.st.clients {
		if c.FirmID == firmID && c.UserID != nil && *c.UserID == userID {
			return &c, nil
		}
	}
	return nil, repo.ErrClientNotFound
}

func (v clientView) List(ctx context.Context, firmID string) ([]domain.Client, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	var clients []domain.Client
	for _, c := range v.st.clients {
		if c.FirmID == firmID {
			clients = append(clients, c)
		}
	}
	return clients, nil
}

func (v clientView) ExistsInFirm(ctx context.Context, firmID, clientID string) (bool, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	c, ok := v.st.clients[clientID]
	return ok && c.FirmID == firmID, nil
}

func (v clientView) Update(ctx context.Context, firmID, clientID string, req *domain.UpdateClientRequest) (*domain.Client, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	c, ok := v.st.clients[clientID]
	if !ok || c.FirmID != firmID {
		return nil, repo.ErrClientNotFound
	}
	if req.FullName != nil {
		c.FullName = *req.FullName
	}
	if req.Email != nil {
		c.Email = req.Email
	}
	if req.Phone != nil {
		c.Phone = req.Phone
	}
	if req.ClientType != nil {
		c.ClientType = *req.ClientType
	}
	if req.Status != nil {
		c.Status = *req.Status
	}
	c.UpdatedAt = time.Now()
	v.st.clients[clientID] = c
	return &c, nil
}

func (v clientView) Delete(ctx context.Context, firmID, clientID string) error {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	c, ok := v.st.clients[clientID]
	if !ok || c.FirmID != firmID {
		return repo.ErrClientNotFound
	}
	for _, cs := range v.st.cases {
		if cs.ClientID == clientID {
			return repo.ErrClientInUse
		}
	}
	delete(v.st.clients, clientID)
	return nil
}

// --- LawyerStore ---

type lawyerView struct{ st *fakeStore }

func (v lawyerView) Create(ctx context.Context, lawyer *domain.Lawyer) error {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	lawyer.CreatedAt = time.Now()
	lawyer.UpdatedAt = lawyer.CreatedAt
	v.st.lawyers[lawyer.ID] = *lawyer
	return nil
}

func (v lawyerView) Get(ctx context.Context, firmID, lawyerID string) (*domain.Lawyer, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	l, ok := v.st.lawyers[lawyerID]
	if !ok || l.FirmID != firmID {
		return nil, repo.ErrLawyerNotFound
	}
	return &l, nil
}

func (v lawyerView) GetByUser(ctx context.Context, firmID, userID string) (*domain.Lawyer, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	for _, l := range v.st.lawyers {
		if l.FirmID == firmID && l.UserID != nil && *l.UserID == userID {
			return &l, nil
		}
	}
	return nil, repo.ErrLawyerNotFound
}

func (v lawyerView) List(ctx context.Context, firmID string) ([]domain.Lawyer, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	var lawyers []domain.Lawyer
	for _, l := range v.st.lawyers {
		if l.FirmID == firmID {
			lawyers = append(lawyers, l)
		}
	}
	return lawyers, nil
}

func (v lawyerView) FilterIDsInFirm(ctx context.Context, firmID string, ids []string) ([]string, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	var kept []string
	for _, id := range ids {
		if l, ok := v.st.lawyers[id]; ok && l.FirmID == firmID {
			kept = append(kept, id)
		}
	}
	return kept, nil
}

func (v lawyerView) Update(ctx context.Context, firmID, lawyerID string, req *domain.UpdateLawyerRequest) (*domain.Lawyer, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	l, ok := v.st.lawyers[lawyerID]
	if !ok || l.FirmID != firmID {
		return nil, repo.ErrLawyerNotFound
	}
	if req.Name != nil {
		l.Name = *req.Name
	}
	if req.Email != nil {
		l.Email = req.Email
	}
	if req.Phone != nil {
		l.Phone = req.Phone
	}
	if req.Specialization != nil {
		l.Specialization = req.Specialization
	}
	l.UpdatedAt = time.Now()
	v.st.lawyers[lawyerID] = l
	return &l, nil
}

func (v lawyerView) Delete(ctx context.Context, firmID, lawyerID string) error {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	l, ok := v.st.lawyers[lawyerID]
	if !ok || l.FirmID != firmID {
		return repo.ErrLawyerNotFound
	}
	delete(v.st.lawyers, lawyerID)
	for id, c := range v.st.cases {
		var kept []string
		for _, lid := range c.LawyerIDs {
			if lid != lawyerID {
				kept = append(kept, lid)
			}
		}
		c.LawyerIDs = kept
		v.st.cases[id] = c
	}
	return nil
}

// --- CaseStore ---

type caseView struct{ st *fakeStore }

func (v caseView) Create(ctx context.Context, c *domain.Case) error {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	for _, existing := range v.st.cases {
		if existing.FirmID == c.FirmID && existing.CaseNumber == c.CaseNumber {
			return repo.ErrCaseNumberConflict
		}
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	v.st.cases[c.ID] = *c
	return nil
}

func (v caseView) Get(ctx context.Context, firmID, caseID string) (*domain.Case, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	c, ok := v.st.cases[caseID]
	if !ok || c.FirmID != firmID {
		return nil, repo.ErrCaseNotFound
	}
	c.Documents = nil
	for _, d := range v.st.documents {
		if d.CaseID == caseID {
			c.Documents = append(c.Documents, d)
		}
	}
	return &c, nil
}

func (v caseView) List(ctx context.Context, firmID string) ([]domain.Case, error) {
	return v.filter(func(c domain.Case) bool { return c.FirmID == firmID })
}

func (v caseView) ListByClient(ctx context.Context, firmID, clientID string) ([]domain.Case, error) {
	return v.filter(func(c domain.Case) bool { return c.FirmID == firmID && c.ClientID == clientID })
}

func (v caseView) ListByLawyer(ctx context.Context, firmID, lawyerID string) ([]domain.Case, error) {
	return v.filter(func(c domain.Case) bool {
		if c.FirmID != firmID {
			return false
		}
		for _, id := range c.LawyerIDs {
			if id == lawyerID {
				return true
			}
		}
		return false
	})
}

func (v caseView) filter(keep func(domain.Case) bool) ([]domain.Case, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	var cases []domain.Case
	for _, c := range v.st.cases {
		if keep(c) {
			cases = append(cases, c)
		}
	}
	return cases, nil
}

func (v caseView) UpdateStatus(ctx context.Context, firmID, caseID string, status domain.CaseStatus, closedAt *time.Time) error {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	c, ok := v.st.cases[caseID]
	if !ok || c.FirmID != firmID {
		return repo.ErrCaseNotFound
	}
	c.Status = status
	c.ClosedAt = closedAt
	c.UpdatedAt = time.Now()
	v.st.cases[caseID] = c
	return nil
}

func (v caseView) Update(ctx context.Context, firmID, caseID string, upd *repo.CaseUpdate) ([]string, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	c, ok := v.st.cases[caseID]
	if !ok || c.FirmID != firmID {
		return nil, repo.ErrCaseNotFound
	}
	if upd.CaseNumber != nil {
		for id, other := range v.st.cases {
			if id != caseID && other.FirmID == firmID && other.CaseNumber == *upd.CaseNumber {
				return nil, repo.ErrCaseNumberConflict
			}
		}
		c.CaseNumber = *upd.CaseNumber
	}
	if upd.Title != nil {
		c.Title = *upd.Title
	}
	if upd.CaseType != nil {
		c.CaseType = upd.CaseType
	}
	if upd.Description != nil {
		c.Description = upd.Description
	}
	if upd.Status != nil {
		c.Status = *upd.Status
	}
	if upd.ClientID != nil {
		c.ClientID = *upd.ClientID
	}
	if upd.SetClosedAt {
		c.ClosedAt = upd.ClosedAt
	}
	if upd.SetLawyers != nil {
		c.LawyerIDs = append([]string(nil), (*upd.SetLawyers)...)
	}

	var removed []string
	for _, docID := range upd.RemoveDocumentIDs {
		if d, ok := v.st.documents[docID]; ok && d.CaseID == caseID {
			removed = append(removed, d.FilePath)
			delete(v.st.documents, docID)
		}
	}
	for _, d := range upd.AddDocuments {
		d.CreatedAt = time.Now()
		v.st.documents[d.ID] = d
	}

	c.UpdatedAt = time.Now()
	v.st.cases[caseID] = c
	return removed, nil
}

func (v caseView) Delete(ctx context.Context, firmID, caseID string) ([]string, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	c, ok := v.st.cases[caseID]
	if !ok || c.FirmID != firmID {
		return nil, repo.ErrCaseNotFound
	}
	var paths []string
	for id, d := range v.st.documents {
		if d.CaseID == caseID {
			paths = append(paths, d.FilePath)
			delete(v.st.documents, id)
		}
	}
	delete(v.st.cases, caseID)
	return paths, nil
}

func (v caseView) CountByFirm(ctx context.Context, firmID string) (int, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	count := 0
	for _, c := range v.st.cases {
		if c.FirmID == firmID {
			count++
		}
	}
	return count, nil
}

// --- DocumentStore ---

type documentView struct{ st *fakeStore }

func (v documentView) Add(ctx context.Context, doc *domain.CaseDocument) error {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	doc.CreatedAt = time.Now()
	v.st.documents[doc.ID] = *doc
	return nil
}

func (v documentView) ListByCase(ctx context.Context, caseID string) ([]domain.CaseDocument, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	var docs []domain.CaseDocument
	for _, d := range v.st.documents {
		if d.CaseID == caseID {
			docs = append(docs, d)
		}
	}
	return docs, nil
}

func (v documentView) Get(ctx context.Context, caseID, documentID string) (*domain.CaseDocument, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	d, ok := v.st.documents[documentID]
	if !ok || d.CaseID != caseID {
		return nil, repo.ErrDocumentNotFound
	}
	return &d, nil
}

func (v documentView) Delete(ctx context.Context, caseID, documentID string) (string, error) {
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	d, ok := v.st.documents[documentID]
	if !ok || d.CaseID != caseID {
		return "", repo.ErrDocumentNotFound
	}
	delete(v.st.documents, documentID)
	return d.FilePath, nil
}

// --- blob store ---

type fakeBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: make(map[string][]byte)}
}

func (s *fakeBlobStore) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data
	return nil
}

func (s *fakeBlobStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeBlobStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

func (s *fakeBlobStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}

// --- test environment ---

// env wires every service over one fakeStore, mirroring the production
// constructor graph in cmd/lexfirm-api.
type env struct {
	st    *fakeStore
	blobs *fakeBlobStore

	gate    *service.AccessGate
	roles   *service.RoleService
	users   *service.UserService
	cases   *service.CaseService
	clients *service.ClientService
	lawyers *service.LawyerService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	log, err := logger.New("lexfirm-api-test", "error")
	require.NoError(t, err)

	st := newFakeStore()
	blobs := newFakeBlobStore()

	usersV := userView{st}
	memsV := membershipView{st}
	rolesV := roleView{st}
	clientsV := clientView{st}
	lawyersV := lawyerView{st}
	casesV := caseView{st}
	docsV := documentView{st}

	gate := service.NewAccessGate(usersV, memsV, rolesV, lawyersV, clientsV, log)

	return &env{
		st:      st,
		blobs:   blobs,
		gate:    gate,
		roles:   service.NewRoleService(rolesV, log),
		users:   service.NewUserService(st, usersV, memsV, rolesV, gate, log),
		cases:   service.NewCaseService(st, casesV, clientsV, lawyersV, docsV, blobs, gate, log),
		clients: service.NewClientService(clientsV, gate, log),
		lawyers: service.NewLawyerService(lawyersV, gate, log),
	}
}

// Seed helpers keep individual tests short.

func (e *env) addFirm(id string, maxUsers, maxCases int) {
	e.st.firms[id] = domain.Firm{
		ID: id, Name: "Firm " + id, Subdomain: id,
		Plan: "basic", Status: domain.FirmActive,
		MaxUsers: maxUsers, MaxCases: maxCases,
	}
}

func (e *env) addUser(id, email string, directRoleID *string) {
	e.st.users[id] = domain.User{ID: id, Name: "User " + id, Email: email, RoleID: directRoleID}
}

func (e *env) addMembership(userID, firmID, roleID string) {
	e.st.memberships[membershipKey(userID, firmID)] = domain.UserFirm{
		ID: userID + firmID, UserID: userID, FirmID: firmID,
		RoleID: roleID, Status: domain.MembershipActive,
	}
}

func (e *env) addLawyer(id, firmID string, userID *string) {
	e.st.lawyers[id] = domain.Lawyer{ID: id, Name: "Lawyer " + id, FirmID: firmID, UserID: userID}
}

func (e *env) addClient(id, firmID string, userID *string) {
	e.st.clients[id] = domain.Client{ID: id, FullName: "Client " + id, ClientType: "individual", Status: "active", FirmID: firmID, UserID: userID}
}

func (e *env) addCase(id, firmID, clientID, caseNumber string, lawyerIDs ...string) {
	e.st.cases[id] = domain.Case{
		ID: id, Title: "Case " + id, CaseNumber: caseNumber,
		Status: domain.CaseOpen, FirmID: firmID, ClientID: clientID,
		OpenedAt: time.Now(), LawyerIDs: lawyerIDs,
	}
}

func strPtr(s string) *string { return &s }
