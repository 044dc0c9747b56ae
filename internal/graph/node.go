// Package graph implements the lock-free grantee graph: the eager
// recompute engine behind the public Catalog. Nothing in this package
// performs I/O or synchronization; callers (the root package's decorators)
// are responsible for both, per the concurrency contract of the model this
// package implements.
package graph

import (
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/catalogdb/grantee/types"
)

// node is a single principal in the grantee graph: a User (a leaf with no
// downstream) or a Role (may additionally carry downstream grantees).
// Grantee and Role are modeled as a tagged variant rather than two distinct
// types, since the two differ in exactly one behavior — whether recompute
// propagates downstream — and the hierarchy is only ever two levels deep.
type node struct {
	name string
	kind types.PrincipalKind

	roles     map[*node]struct{} // upstream: roles granted to this node
	grantees  map[*node]struct{} // downstream: only meaningful when kind == RoleKind
	direct    map[types.DBObjectKey]types.DBObject
	effective map[types.DBObjectKey]types.DBObject
}

func newNode(name string, kind types.PrincipalKind) *node {
	n := &node{
		name:      name,
		kind:      kind,
		roles:     make(map[*node]struct{}),
		direct:    make(map[types.DBObjectKey]types.DBObject),
		effective: make(map[types.DBObjectKey]types.DBObject),
	}
	if kind == types.RoleKind {
		n.grantees = make(map[*node]struct{})
	}
	return n
}

func (n *node) isRole() bool {
	return n.kind == types.RoleKind
}

// grantPrivileges merges object's privileges into this node's direct and
// effective records, creating either if absent, then recomputes.
func (n *node) grantPrivileges(object types.DBObject) {
	key := object.Key

	if d, ok := n.direct[key]; ok {
		d.GrantPrivileges(object)
		n.direct[key] = d
	} else {
		n.direct[key] = seedFrom(object)
	}

	if e, ok := n.effective[key]; ok {
		e.GrantPrivileges(object)
		n.effective[key] = e
	} else {
		n.effective[key] = seedFrom(object)
	}

	n.recompute()
}

func seedFrom(object types.DBObject) types.DBObject {
	seed := types.NewDBObject(object.Key, types.NoPrivileges)
	seed.Name = object.Name
	seed.Owner = object.Owner
	seed.GrantPrivileges(object)
	return seed
}

// revokePrivileges subtracts object's privileges from the direct record,
// and (lossily, see recompute) from the effective record, then recomputes.
// It returns the still-live direct record, or nil if the record was fully
// removed.
func (n *node) revokePrivileges(object types.DBObject) (*types.DBObject, error) {
	key := object.Key

	d, ok := n.direct[key]
	if !ok || !d.HasAnyPrivileges() {
		return nil, errors.Wrapf(types.ErrNoPrivileges, "grantee %q has no privileges on %s", n.name, key)
	}

	d.RevokePrivileges(object)
	removed := !d.HasAnyPrivileges()
	if removed {
		delete(n.direct, key)
	} else {
		n.direct[key] = d
	}

	if e, ok := n.effective[key]; ok && e.HasAnyPrivileges() {
		e.RevokePrivileges(object)
		if e.HasAnyPrivileges() {
			n.effective[key] = e
		} else {
			delete(n.effective, key)
		}
	}

	n.recompute()

	if removed {
		return nil, nil
	}
	live := n.direct[key]
	return &live, nil
}

// grantRole adds role to n's upstream roles after a cycle check, and
// symmetrically adds n to role's downstream grantees.
func (n *node) grantRole(role *node) error {
	if _, ok := n.roles[role]; ok {
		return errors.Wrapf(types.ErrAlreadyGranted, "role %q already granted to %q", role.name, n.name)
	}
	if err := n.checkCycles(role); err != nil {
		return err
	}

	n.roles[role] = struct{}{}
	role.grantees[n] = struct{}{}
	n.recompute()
	return nil
}

// revokeRole removes both edges between n and role. Idempotent: absent
// edges are not an error.
func (n *node) revokeRole(role *node) {
	delete(n.roles, role)
	if role.grantees != nil {
		delete(role.grantees, n)
	}
	n.recompute()
}

// checkCycles reports ErrCycleDetected if granting newRole to n would close
// a cycle: that is, if newRole is already reachable from n by following
// downstream (grantees) edges. Traversal is an explicit worklist so no
// recursion depth is tied to caller stack size.
func (n *node) checkCycles(newRole *node) error {
	visited := map[*node]struct{}{}
	worklist := []*node{n}

	for len(worklist) > 0 {
		cur := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		if _, ok := visited[cur]; ok {
			continue
		}
		visited[cur] = struct{}{}

		if cur == newRole {
			return errors.Wrapf(types.ErrCycleDetected, "granting role %q to %q creates a cycle", newRole.name, n.name)
		}
		if cur.isRole() {
			for g := range cur.grantees {
				worklist = append(worklist, g)
			}
		}
	}
	return nil
}

// recompute is the central routine: clear effective, re-seed from direct,
// union in every upstream role's effective contribution, drop empty
// entries, and (for a role) propagate by recomputing every downstream
// grantee. Eager and synchronous: by the time it returns, the invariant
// holds for this node and every node reachable downstream from it.
func (n *node) recompute() {
	for k, e := range n.effective {
		e.ResetPrivileges()
		n.effective[k] = e
	}

	for k, d := range n.direct {
		if e, ok := n.effective[k]; ok {
			e.UpdatePrivileges(d)
			n.effective[k] = e
		}
		// else: direct recorded but effective entry missing. Lossy by
		// design, matching the source this graph is ported from: the
		// contribution is restored as soon as an upstream role supplies
		// the same key, or on the next recompute after this key gains an
		// effective entry some other way. See the design notes for the
		// alternative (always create unconditionally) this module does
		// not take.
	}

	for r := range n.roles {
		for k, rd := range r.effective {
			if e, ok := n.effective[k]; ok {
				e.UpdatePrivileges(rd)
				n.effective[k] = e
			} else {
				n.effective[k] = rd
			}
		}
	}

	for k, e := range n.effective {
		if !e.HasAnyPrivileges() {
			delete(n.effective, k)
		}
	}

	if n.isRole() {
		for g := range n.grantees {
			g.recompute()
		}
	}
}

// checkPrivileges reports whether effective privileges dominate req,
// promoting from the exact key to database-wide and then global wildcards,
// stopping at the first level that dominates.
func (n *node) checkPrivileges(req types.DBObject) bool {
	key := req.Key

	if e, ok := n.effective[key]; ok && e.Privileges.HasAll(req.Privileges) {
		return true
	}
	if key.ObjectID != types.Wildcard {
		if e, ok := n.effective[key.DatabaseWide()]; ok && e.Privileges.HasAll(req.Privileges) {
			return true
		}
	}
	if key.DBID != types.Wildcard {
		if e, ok := n.effective[key.Global()]; ok && e.Privileges.HasAll(req.Privileges) {
			return true
		}
	}
	return false
}

// hasAnyPrivileges is checkPrivileges's weaker sibling: it asks only
// whether any bit is set at any promoted key, not whether the requested set
// is dominated, and can be restricted to direct-only records.
func (n *node) hasAnyPrivileges(req types.DBObject, onlyDirect bool) bool {
	m := n.effective
	if onlyDirect {
		m = n.direct
	}

	key := req.Key
	if e, ok := m[key]; ok && e.HasAnyPrivileges() {
		return true
	}
	if key.ObjectID != types.Wildcard {
		if e, ok := m[key.DatabaseWide()]; ok && e.HasAnyPrivileges() {
			return true
		}
	}
	if key.DBID != types.Wildcard {
		if e, ok := m[key.Global()]; ok && e.HasAnyPrivileges() {
			return true
		}
	}
	return false
}

func (n *node) hasAnyPrivilegesOnDB(dbID int32, onlyDirect bool) bool {
	m := n.effective
	if onlyDirect {
		m = n.direct
	}
	for k, o := range m {
		if k.DBID == dbID && o.HasAnyPrivileges() {
			return true
		}
	}
	return false
}

// getPrivileges finds the exact-key record; it never promotes to a
// wildcard key the way checkPrivileges/hasAnyPrivileges do.
func (n *node) getPrivileges(key types.DBObjectKey, onlyDirect bool) (types.DBObject, error) {
	m := n.effective
	if onlyDirect {
		m = n.direct
	}
	o, ok := m[key]
	if !ok {
		return types.DBObject{}, errors.Wrapf(types.ErrNoPrivileges, "grantee %q has no privileges on %s", n.name, key)
	}
	return o, nil
}

// getRoles returns role names visible from n: direct roles only, or (if
// onlyDirect is false) the transitive closure via upstream edges, sorted.
func (n *node) getRoles(onlyDirect bool) []string {
	if onlyDirect {
		names := make([]string, 0, len(n.roles))
		for r := range n.roles {
			names = append(names, r.name)
		}
		sort.Strings(names)
		return names
	}

	seen := map[string]struct{}{}
	worklist := []*node{n}
	for len(worklist) > 0 {
		cur := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for r := range cur.roles {
			if _, ok := seen[r.name]; !ok {
				seen[r.name] = struct{}{}
				worklist = append(worklist, r)
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// hasRole reports whether role is reachable from n, directly or (if
// onlyDirect is false) transitively via upstream edges.
func (n *node) hasRole(role *node, onlyDirect bool) bool {
	if onlyDirect {
		_, ok := n.roles[role]
		return ok
	}

	visited := map[*node]struct{}{}
	worklist := []*node{n}
	for len(worklist) > 0 {
		cur := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if cur == role {
			return true
		}
		if _, ok := visited[cur]; ok {
			continue
		}
		visited[cur] = struct{}{}
		for r := range cur.roles {
			worklist = append(worklist, r)
		}
	}
	return false
}

func (n *node) purgeDatabase(dbID int32) {
	for k := range n.direct {
		if k.DBID == dbID {
			delete(n.direct, k)
		}
	}
	for k := range n.effective {
		if k.DBID == dbID {
			delete(n.effective, k)
		}
	}
}

// revokeAllOnDatabase purges every record scoped to dbID from direct and
// effective, recomputes, and — for a role — cascades the same purge to
// every downstream grantee (each of which purges its own records for dbID,
// not merely the cached contribution from this role, then recomputes and
// cascades further in turn).
func (n *node) revokeAllOnDatabase(dbID int32) {
	n.purgeDatabase(dbID)
	n.recompute()
	if n.isRole() {
		for g := range n.grantees {
			g.revokeAllOnDatabase(dbID)
		}
	}
}

// renameDBObject rewrites the Name field of any record matching object.Key,
// in both maps, and — for a role — cascades to every downstream grantee so
// the rename is visible everywhere the record is cached.
func (n *node) renameDBObject(object types.DBObject) {
	if d, ok := n.direct[object.Key]; ok {
		d.SetName(object.Name)
		n.direct[object.Key] = d
	}
	if e, ok := n.effective[object.Key]; ok {
		e.SetName(object.Name)
		n.effective[object.Key] = e
	}
	if n.isRole() {
		for g := range n.grantees {
			g.renameDBObject(object)
		}
	}
}

func ownedByAny(owner int32, ids []int32) bool {
	for _, id := range ids {
		if owner == id {
			return true
		}
	}
	return false
}

// reassignObjectOwners reassigns ownership, within dbID, of every
// object-scoped (non-wildcard ObjectID) record currently owned by one of
// oldOwnerIDs to newOwnerID. Privilege bits are unaffected. No cascade: a
// cached copy of the record on a downstream grantee is not retroactively
// touched, matching the source this is ported from.
func (n *node) reassignObjectOwners(oldOwnerIDs []int32, newOwnerID, dbID int32) {
	for k, o := range n.effective {
		if k.ObjectID != types.Wildcard && k.DBID == dbID && ownedByAny(o.Owner, oldOwnerIDs) {
			o.SetOwner(newOwnerID)
			n.effective[k] = o
		}
	}
	for k, o := range n.direct {
		if k.ObjectID != types.Wildcard && k.DBID == dbID && ownedByAny(o.Owner, oldOwnerIDs) {
			o.SetOwner(newOwnerID)
			n.direct[k] = o
		}
	}
}

// reassignObjectOwner reassigns ownership of the record matching key
// exactly to newOwnerID, in both maps.
func (n *node) reassignObjectOwner(key types.DBObjectKey, newOwnerID int32) {
	if o, ok := n.effective[key]; ok {
		o.SetOwner(newOwnerID)
		n.effective[key] = o
	}
	if o, ok := n.direct[key]; ok {
		o.SetOwner(newOwnerID)
		n.direct[key] = o
	}
}

// detach severs every edge touching n: removes n from every upstream role's
// downstream set, and (if n is a role) revokes n from every downstream
// grantee first, which triggers each grantee's recompute.
func (n *node) detach() {
	if n.isRole() {
		for g := range n.grantees {
			g.revokeRole(n)
		}
	}
	for r := range n.roles {
		delete(r.grantees, n)
	}
}
