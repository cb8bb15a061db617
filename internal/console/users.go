// filepath: internal/console/users.go
package console

import (
	"context"

	"scmdash/internal/listview"
	"scmdash/internal/models"
)

// UserStats summarizes the users page.
type UserStats struct {
	Total    int
	Active   int
	Inactive int
	Locked   int
	Admins   int
}

// Role and status options of the users page.
var (
	UserRoles    = []string{listview.All, models.RoleAdmin, models.RoleDeveloper, models.RoleReadOnly}
	UserStatuses = []string{listview.All, models.UserActive, models.UserInactive, models.UserLocked}
)

// UsersPage is the SCM users list.
type UsersPage struct {
	*listview.Controller[models.User, UserStats]
	backend Backend
}

// NewUsersPage builds the users page over b.
func NewUsersPage(b Backend) *UsersPage {
	return &UsersPage{
		backend: b,
		Controller: listview.New(listview.Config[models.User, UserStats]{
			Name:     "users",
			PageSize: 5,
			Rules: listview.Rules[models.User]{
				Tabs: []listview.Tab[models.User]{{Key: "all", Label: "All Users"}},
				Filters: []listview.FilterDef[models.User]{
					listview.Equals("role", "Role", func(u models.User) string { return u.Role }),
					listview.Equals("status", "Status", func(u models.User) string { return u.Status }),
					listview.Equals("group", "Group", func(u models.User) string { return u.Group }),
				},
				Searchable: func(u models.User) []string {
					return []string{u.Username, u.FullName, u.Email, u.Group}
				},
			},
			ID: userID,
			Fetch: func(ctx context.Context) ([]models.User, error) {
				return b.ListUsers(ctx, models.UserFilter{})
			},
			Stats:    userStats,
			Describe: describe,
		}),
	}
}

func userStats(users []models.User, _ listview.Sides) UserStats {
	s := UserStats{Total: len(users)}
	for _, u := range users {
		switch u.Status {
		case models.UserActive:
			s.Active++
		case models.UserInactive:
			s.Inactive++
		case models.UserLocked:
			s.Locked++
		}
		if u.Role == models.RoleAdmin {
			s.Admins++
		}
	}
	return s
}

// GroupOptions lists All followed by every group in use.
func (p *UsersPage) GroupOptions() []string {
	items := p.Items()
	groups := make([]string, 0, len(items))
	for _, u := range items {
		groups = append(groups, u.Group)
	}
	return listview.DistinctOptions(groups)
}

func (p *UsersPage) Create(ctx context.Context, payload models.UserPayload) (models.User, error) {
	return p.Mutate(ctx, listview.Mutation[models.User]{
		Op:       listview.OpCreate,
		Fallback: "Failed to create user",
		Call: func(ctx context.Context) (models.User, error) {
			return echo(p.backend.CreateUser(ctx, payload))
		},
	})
}

func (p *UsersPage) Update(ctx context.Context, id int64, payload models.UserPayload) (models.User, error) {
	return p.Mutate(ctx, listview.Mutation[models.User]{
		Op:       listview.OpUpdate,
		Fallback: "Failed to update user",
		Call: func(ctx context.Context) (models.User, error) {
			return echo(p.backend.UpdateUser(ctx, id, payload))
		},
	})
}

// SetStatus activates, deactivates or locks a user.
func (p *UsersPage) SetStatus(ctx context.Context, id int64, status string) (models.User, error) {
	return p.Mutate(ctx, listview.Mutation[models.User]{
		Op:       listview.OpUpdate,
		Fallback: "Failed to update user status",
		Call: func(ctx context.Context) (models.User, error) {
			return echo(p.backend.UpdateUserStatus(ctx, id, status))
		},
	})
}

func (p *UsersPage) Delete(ctx context.Context, id int64) error {
	_, err := p.Mutate(ctx, listview.Mutation[models.User]{
		Op:       listview.OpDelete,
		ID:       id,
		Fallback: "Failed to delete user",
		Call: func(ctx context.Context) (models.User, error) {
			return models.User{}, p.backend.DeleteUser(ctx, id)
		},
	})
	return err
}
