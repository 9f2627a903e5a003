package models

// All returns every model in dependency order, for AutoMigrate
func All() []any {
	return []any{
		&TeamModel{},
		&UserModel{},
		&ProjectModel{},
		&ProjectTeamModel{},
		&TaskModel{},
		&CommentModel{},
		&AttachmentModel{},
	}
}
