package order

import "bridge-be/internal/user"

// Viewer is the identity a role-scoped query runs as.
type Viewer struct {
	ID   string
	Name string
	Role user.Role
}

func (v Viewer) IsAdmin() bool {
	return v.Role == user.RoleAdmin
}

// VisibleTo reports whether v may see o. Admins see everything; agents only
// see orders they created or that are assigned to them.
func VisibleTo(o Order, v Viewer) bool {
	if v.IsAdmin() {
		return true
	}
	if v.ID == "" {
		return false
	}
	return o.AgentID == v.ID || o.AssignedTo == v.ID
}

func FilterVisible(orders []Order, v Viewer) []Order {
	if v.IsAdmin() {
		return orders
	}
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if VisibleTo(o, v) {
			out = append(out, o)
		}
	}
	return out
}
