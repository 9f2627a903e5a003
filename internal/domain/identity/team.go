package identity

// Team groups users. Owner and manager are optional user references.
type Team struct {
	ID                   int
	TeamName             string
	ProductOwnerUserID   *int
	ProjectManagerUserID *int
}

// TeamWithLeads is a team with its owner and manager usernames resolved
type TeamWithLeads struct {
	Team
	ProductOwnerUsername   *string
	ProjectManagerUsername *string
}
