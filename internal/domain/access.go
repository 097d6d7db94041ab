package domain

// =====================================================
// Case Access Scope
// =====================================================
// The access gate translates (caller, active firm) into an AccessScope once
// per request; case and document operations consult the scope instead of
// branching on role-name strings.

type scopeKind int

const (
	scopeAdmin scopeKind = iota
	scopeLawyer
	scopeClient
	scopeMember
)

// AccessScope is a closed variant describing which slice of the active firm's
// cases the caller may touch.
//
//   - admin:  Firm Admin or Super Admin; every case in the firm.
//   - lawyer: only cases whose assignment set contains the caller's lawyer id.
//   - client: only cases owned by the caller's client record.
//   - member: any other role; no case visibility, but the role's permission
//     set may still grant specific write operations.
type AccessScope struct {
	kind     scopeKind
	lawyerID string
	clientID string
	perms    map[string]bool
}

// AdminScope grants full access within the active firm.
func AdminScope() AccessScope {
	return AccessScope{kind: scopeAdmin}
}

// LawyerScope restricts access to cases assigned to the given lawyer profile.
func LawyerScope(lawyerID string) AccessScope {
	return AccessScope{kind: scopeLawyer, lawyerID: lawyerID}
}

// ClientScope restricts access to cases owned by the given client record.
func ClientScope(clientID string) AccessScope {
	return AccessScope{kind: scopeClient, clientID: clientID}
}

// MemberScope carries only the role's permission names.
func MemberScope(permissions []string) AccessScope {
	perms := make(map[string]bool, len(permissions))
	for _, p := range permissions {
		perms[p] = true
	}
	return AccessScope{kind: scopeMember, perms: perms}
}

// IsAdmin reports whether the scope has unrestricted firm access.
func (s AccessScope) IsAdmin() bool {
	return s.kind == scopeAdmin
}

// IsLawyer reports whether the scope belongs to a lawyer profile.
func (s AccessScope) IsLawyer() bool {
	return s.kind == scopeLawyer
}

// IsClient reports whether the scope belongs to a client record.
func (s AccessScope) IsClient() bool {
	return s.kind == scopeClient
}

// LawyerID returns the lawyer profile id for lawyer scopes.
func (s AccessScope) LawyerID() string {
	return s.lawyerID
}

// ClientID returns the client record id for client scopes.
func (s AccessScope) ClientID() string {
	return s.clientID
}

// HasPermission reports whether the scope's role carries the named
// permission. Admin scopes hold every permission implicitly.
func (s AccessScope) HasPermission(name string) bool {
	if s.kind == scopeAdmin {
		return true
	}
	return s.perms[name]
}

// CanReadCase applies the role-visibility contract: admins see every case in
// the firm, lawyers only assigned cases, clients only their own cases, and
// all other roles nothing.
func (s AccessScope) CanReadCase(c *Case) bool {
	switch s.kind {
	case scopeAdmin:
		return true
	case scopeLawyer:
		return c.IsAssigned(s.lawyerID)
	case scopeClient:
		return c.ClientID == s.clientID
	default:
		return false
	}
}

// CanAddCaseDocuments reports whether the caller may upload documents under
// the case: admins, assigned lawyers, the owning client, and member roles
// holding create_case_document.
func (s AccessScope) CanAddCaseDocuments(c *Case) bool {
	switch s.kind {
	case scopeAdmin:
		return true
	case scopeLawyer:
		return c.IsAssigned(s.lawyerID)
	case scopeClient:
		return c.ClientID == s.clientID
	default:
		return s.perms["create_case_document"]
	}
}

// CanDeleteCaseDocuments is the destructive counterpart: the same admin,
// lawyer and client rules, but member roles need delete_case_document.
// Upload rights alone never grant removal.
func (s AccessScope) CanDeleteCaseDocuments(c *Case) bool {
	switch s.kind {
	case scopeAdmin:
		return true
	case scopeLawyer:
		return c.IsAssigned(s.lawyerID)
	case scopeClient:
		return c.ClientID == s.clientID
	default:
		return s.perms["delete_case_document"]
	}
}
