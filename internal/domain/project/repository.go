package project

import "context"

// Repository defines persistence for projects
type Repository interface {
	// FindAll returns every project ordered by id
	FindAll(ctx context.Context) ([]Project, error)

	// FindByID returns shared.ErrNotFound when the project does not exist
	FindByID(ctx context.Context, id int) (*Project, error)

	// Create inserts the project and sets its ID
	Create(ctx context.Context, p *Project) error

	// Search matches name or description, case-insensitively
	Search(ctx context.Context, query string) ([]Project, error)

	// FindByMember returns projects linked to a team the user belongs to
	FindByMember(ctx context.Context, userID int) ([]Project, error)

	// FindIDByName returns the id of the first project whose name contains name
	FindIDByName(ctx context.Context, name string) (id int, found bool, err error)
}
