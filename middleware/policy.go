package middleware

import "github.com/kevinaaaquil/library/backend/models"

// Policy names the roles allowed through a route group.
type Policy struct {
	Name  string
	Roles []string
}

var (
	Members = Policy{Name: "Members", Roles: []string{models.RoleAdmin, models.RoleLibrarian, models.RoleReader}}
	Staff   = Policy{Name: "Staff", Roles: []string{models.RoleAdmin, models.RoleLibrarian}}
	Admins  = Policy{Name: "Admins", Roles: []string{models.RoleAdmin}}
)

func (p Policy) Allows(roles []string) bool {
	for _, have := range roles {
		for _, want := range p.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}
