package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
)

// ToolKind enumerates the functions the model can call
type ToolKind int

const (
	ToolSearchEntity ToolKind = iota
	ToolUserTasks
	ToolAllTasks
	ToolUserProjects
	ToolProjectTasks
	ToolProjectTeamMembers
	ToolTeamMembers
	ToolProjectTimeline
	ToolTasksByUser
	ToolTaskStatistics
	ToolProjectProgress
	ToolUserWorkload
)

// Identifier parameter names
const (
	paramUserID    = "userId"
	paramProjectID = "projectId"
	paramTeamID    = "teamId"
)

type toolHandler struct {
	kind        ToolKind
	name        string
	description string

	// idParam is empty for tools that take no identifier
	idParam       string
	idDescription string
	entity        EntityType

	execute func(ctx context.Context, ds DataSource, id int) (any, error)
}

// registry is ordered the way tools are declared to the model
var registry = []toolHandler{
	{
		kind:        ToolSearchEntity,
		name:        "searchEntity",
		description: "Search for a user, team, project, or task by name and return its ID.",
	},
	{
		kind:          ToolUserTasks,
		name:          "getUserTasks",
		description:   "Get the list of tasks for the specified user in the project.",
		idParam:       paramUserID,
		idDescription: "The ID of the user whose tasks to fetch",
		entity:        EntityUser,
		execute: func(ctx context.Context, ds DataSource, id int) (any, error) {
			return ds.UserTasks(ctx, id)
		},
	},
	{
		kind:        ToolAllTasks,
		name:        "getAllTasks",
		description: "Get the list of all tasks in the project.",
		execute: func(ctx context.Context, ds DataSource, _ int) (any, error) {
			return ds.AllTasks(ctx)
		},
	},
	{
		kind:          ToolUserProjects,
		name:          "getUserProject",
		description:   "Get the list of projects for the specified user.",
		idParam:       paramUserID,
		idDescription: "The ID of the user whose projects to fetch",
		entity:        EntityUser,
		execute: func(ctx context.Context, ds DataSource, id int) (any, error) {
			return ds.UserProjects(ctx, id)
		},
	},
	{
		kind:          ToolProjectTasks,
		name:          "getProjectTasks",
		description:   "Get the list of tasks for the specified project.",
		idParam:       paramProjectID,
		idDescription: "The ID of the project whose tasks to fetch",
		entity:        EntityProject,
		execute: func(ctx context.Context, ds DataSource, id int) (any, error) {
			return ds.ProjectTasks(ctx, id)
		},
	},
	{
		kind:          ToolProjectTeamMembers,
		name:          "getProjectTeamMembers",
		description:   "Get the list of team members for the specified project.",
		idParam:       paramProjectID,
		idDescription: "The ID of the project whose team members to fetch",
		entity:        EntityProject,
		execute: func(ctx context.Context, ds DataSource, id int) (any, error) {
			return ds.ProjectTeamMembers(ctx, id)
		},
	},
	{
		kind:          ToolTeamMembers,
		name:          "getTeamMembers",
		description:   "Get the list of members in the specified team.",
		idParam:       paramTeamID,
		idDescription: "The ID of the team whose members to fetch",
		entity:        EntityTeam,
		execute: func(ctx context.Context, ds DataSource, id int) (any, error) {
			return ds.TeamMembers(ctx, id)
		},
	},
	{
		kind:          ToolProjectTimeline,
		name:          "getProjectTimeline",
		description:   "Get the timeline of tasks for the specified project.",
		idParam:       paramProjectID,
		idDescription: "The ID of the project whose timeline to fetch",
		entity:        EntityProject,
		execute: func(ctx context.Context, ds DataSource, id int) (any, error) {
			return ds.ProjectTimeline(ctx, id)
		},
	},
	{
		kind:          ToolTasksByUser,
		name:          "getTasksByUser",
		description:   "Get the list of tasks assigned to the specified user.",
		idParam:       paramUserID,
		idDescription: "The ID of the user whose assigned tasks to fetch",
		entity:        EntityUser,
		execute: func(ctx context.Context, ds DataSource, id int) (any, error) {
			return ds.TasksAssignedTo(ctx, id)
		},
	},
	{
		kind:        ToolTaskStatistics,
		name:        "getTaskStatistics",
		description: "Get insights on task completion rates, overdue tasks, and user workload.",
		execute: func(ctx context.Context, ds DataSource, _ int) (any, error) {
			return ds.TaskStatistics(ctx)
		},
	},
	{
		kind:          ToolProjectProgress,
		name:          "getProjectProgress",
		description:   "Get a summary of project progress based on completed and pending tasks.",
		idParam:       paramProjectID,
		idDescription: "The ID of the project to get progress for",
		entity:        EntityProject,
		execute: func(ctx context.Context, ds DataSource, id int) (any, error) {
			return ds.ProjectProgress(ctx, id)
		},
	},
	{
		kind:          ToolUserWorkload,
		name:          "getUserWorkload",
		description:   "Get a summary of tasks assigned to a user, including their status and priority.",
		idParam:       paramUserID,
		idDescription: "The ID of the user whose workload to retrieve",
		entity:        EntityUser,
		execute: func(ctx context.Context, ds DataSource, id int) (any, error) {
			return ds.UserWorkload(ctx, id)
		},
	},
}

var handlersByName = func() map[string]*toolHandler {
	m := make(map[string]*toolHandler, len(registry))
	for i := range registry {
		m[registry[i].name] = &registry[i]
	}
	return m
}()

// String returns the function name declared to the model
func (k ToolKind) String() string {
	for i := range registry {
		if registry[i].kind == k {
			return registry[i].name
		}
	}
	return "unknown"
}

// lookupTool returns the handler for name. searchEntity is unknown when
// name resolution is disabled.
func lookupTool(name string, policy Policy) (*toolHandler, error) {
	h, ok := handlersByName[name]
	if !ok || (h.kind == ToolSearchEntity && !policy.ResolveEntityNames) {
		return nil, &UnknownToolError{Name: name}
	}
	return h, nil
}

type schemaProperty struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Enum        []string `json:"enum,omitempty"`
}

type objectSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]schemaProperty `json:"properties"`
	Required   []string                  `json:"required"`
}

func (h *toolHandler) schema() objectSchema {
	s := objectSchema{Type: "object", Properties: map[string]schemaProperty{}, Required: []string{}}
	switch {
	case h.kind == ToolSearchEntity:
		s.Properties["entityType"] = schemaProperty{
			Type:        "string",
			Description: "The type of entity to search for",
			Enum:        []string{string(EntityUser), string(EntityTeam), string(EntityProject), string(EntityTask)},
		}
		s.Properties["name"] = schemaProperty{Type: "string", Description: "The name of the entity to search for"}
		s.Required = []string{"entityType", "name"}
	case h.idParam != "":
		s.Properties[h.idParam] = schemaProperty{Type: "number", Description: h.idDescription}
		s.Required = []string{h.idParam}
	}
	return s
}

// ToolDefinitions returns the functions declared to the model under policy
func ToolDefinitions(policy Policy) []ToolDefinition {
	defs := make([]ToolDefinition, 0, len(registry))
	for i := range registry {
		h := &registry[i]
		if h.kind == ToolSearchEntity && !policy.ResolveEntityNames {
			continue
		}
		params, _ := json.Marshal(h.schema())
		defs = append(defs, ToolDefinition{Name: h.name, Description: h.description, Parameters: params})
	}
	return defs
}

// toolArgs are the decoded top-level arguments of a tool call
type toolArgs map[string]json.RawMessage

func parseToolArgs(tool, raw string) (toolArgs, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return toolArgs{}, nil
	}
	var args toolArgs
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, &InvalidArgumentsError{Tool: tool, Reason: err.Error()}
	}
	if args == nil {
		args = toolArgs{}
	}
	return args, nil
}

// stringArg returns a string argument; absent or non-string values are ""
func (a toolArgs) stringArg(key string) string {
	var s string
	if raw, ok := a[key]; ok {
		_ = json.Unmarshal(raw, &s)
	}
	return s
}

// identifier is the decoded id parameter: either a numeric id or a name
// that still has to be resolved
type identifier struct {
	id   int
	name string
}

func (i identifier) needsResolution() bool { return i.name != "" }

// parseIdentifier accepts a JSON integer, a numeric string or a
// non-numeric string
func parseIdentifier(tool, param string, args toolArgs) (identifier, error) {
	raw, ok := args[param]
	if !ok || len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return identifier{}, &InvalidArgumentsError{Tool: tool, Reason: "missing " + param}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return identifier{}, &InvalidArgumentsError{Tool: tool, Reason: err.Error()}
	}

	switch val := v.(type) {
	case json.Number:
		n, err := strconv.Atoi(val.String())
		if err != nil {
			f, ferr := val.Float64()
			if ferr != nil || f != float64(int(f)) {
				return identifier{}, &InvalidArgumentsError{Tool: tool, Reason: param + " must be an integer"}
			}
			n = int(f)
		}
		return identifier{id: n}, nil
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return identifier{}, &InvalidArgumentsError{Tool: tool, Reason: "empty " + param}
		}
		if n, err := strconv.Atoi(s); err == nil {
			return identifier{id: n}, nil
		}
		return identifier{name: s}, nil
	default:
		return identifier{}, &InvalidArgumentsError{Tool: tool, Reason: param + " must be a number or a name"}
	}
}
