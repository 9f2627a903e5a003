// Package models contains GORM persistence models for the project-management
// schema. Domain entities stay free of ORM tags; each model maps to and from
// its entity with ToDomain/FromDomain.
//
// Tables:
//   - projects, project_teams
//   - users, teams
//   - tasks, comments, attachments
package models
