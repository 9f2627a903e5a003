package identity

import "context"

// UserRepository defines persistence for users
type UserRepository interface {
	// FindAll returns every user ordered by id
	FindAll(ctx context.Context) ([]User, error)

	// FindByID returns shared.ErrNotFound when the user does not exist
	FindByID(ctx context.Context, id int) (*User, error)

	// FindByCognitoID returns shared.ErrNotFound when no user has the subject
	FindByCognitoID(ctx context.Context, cognitoID string) (*User, error)

	// FindByTeam returns the members of a team
	FindByTeam(ctx context.Context, teamID int) ([]User, error)

	// FindByProject returns users whose team is linked to the project
	FindByProject(ctx context.Context, projectID int) ([]User, error)

	// Search matches username, case-insensitively
	Search(ctx context.Context, query string) ([]User, error)

	// FindIDByName returns the id of the first user whose username contains name
	FindIDByName(ctx context.Context, name string) (id int, found bool, err error)
}

// TeamRepository defines persistence for teams
type TeamRepository interface {
	// FindAllWithLeads returns every team with owner and manager usernames
	FindAllWithLeads(ctx context.Context) ([]TeamWithLeads, error)

	// FindIDByName returns the id of the first team whose name contains name
	FindIDByName(ctx context.Context, name string) (id int, found bool, err error)
}
