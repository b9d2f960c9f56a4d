package workboard

import (
	"context"
	"fmt"

	"workboardmcp/server/internal/modules"
)

const workboardVersion = "v1"

// WorkBoardModule implements the Module interface for the WorkBoard OKR API
type WorkBoardModule struct{}

// New creates a new WorkBoardModule instance
func New() *WorkBoardModule {
	return &WorkBoardModule{}
}

const moduleDescription = "WorkBoard OKR API - Read objectives and key results, record check-ins, manage users and teams"

// Name returns the module name
func (m *WorkBoardModule) Name() string {
	return "workboard"
}

// Description returns the module description
func (m *WorkBoardModule) Description() string {
	return moduleDescription
}

// APIVersion returns the WorkBoard API version
func (m *WorkBoardModule) APIVersion() string {
	return workboardVersion
}

// Tools returns all available tools
func (m *WorkBoardModule) Tools() []modules.Tool {
	return toolDefinitions
}

// ExecuteTool executes a tool by name and returns JSON response
func (m *WorkBoardModule) ExecuteTool(ctx context.Context, name string, params map[string]any) (string, error) {
	handler, ok := toolHandlers[name]
	if !ok {
		return "", fmt.Errorf("unknown tool: %s", name)
	}
	return handler(ctx, params)
}

// ToCompact converts JSON result to compact format.
// Implements modules.CompactConverter interface.
func (m *WorkBoardModule) ToCompact(toolName string, jsonResult string) string {
	return formatCompact(toolName, jsonResult)
}

var toJSON = modules.ToJSON

// =============================================================================
// Tool Definitions
// =============================================================================

var toolDefinitions = []modules.Tool{
	// Objectives
	{
		ID:          "workboard:get_my_objectives",
		Name:        "get_my_objectives",
		Description: "Get the current user's objectives (OKRs) with their key results. Discovers objectives from the user's key results so the result is not capped; pass objective_ids to fetch specific ones.",
		Annotations: modules.AnnotateReadOnly,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"objective_ids": {
					Type:        "array",
					Description: "Specific objective IDs to fetch (skips discovery)",
					Items:       &modules.Property{Type: "number", Description: "Objective ID"},
				},
				"include_prior_years": {Type: "boolean", Description: "Include objectives from prior years (default: current year only)"},
				"format":              {Type: "string", Description: "Output format: 'compact' (default) or 'json'"},
			},
		},
	},
	{
		ID:          "workboard:get_objectives",
		Name:        "get_objectives",
		Description: "List objectives associated with a user. The API caps this list at 15 items; a warning is attached when the list is truncated.",
		Annotations: modules.AnnotateReadOnly,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"user_id": {Type: "number", Description: "User ID"},
				"format":  {Type: "string", Description: "Output format: 'compact' (default) or 'json'"},
			},
			Required: []string{"user_id"},
		},
	},
	{
		ID:          "workboard:get_objective_details",
		Name:        "get_objective_details",
		Description: "Get a single objective with its key results.",
		Annotations: modules.AnnotateReadOnly,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"user_id":      {Type: "number", Description: "User ID the objective is read as"},
				"objective_id": {Type: "number", Description: "Objective ID"},
				"format":       {Type: "string", Description: "Output format: 'compact' (default) or 'json'"},
			},
			Required: []string{"user_id", "objective_id"},
		},
	},
	{
		ID:          "workboard:create_objective",
		Name:        "create_objective",
		Description: "Create a new objective, optionally with key results.",
		Annotations: modules.AnnotateCreate,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"name":        {Type: "string", Description: "Objective name"},
				"owner":       {Type: "string", Description: "Owner user ID"},
				"start_date":  {Type: "string", Description: "Start date (YYYY-MM-DD)"},
				"target_date": {Type: "string", Description: "Target date (YYYY-MM-DD)"},
				"narrative":   {Type: "string", Description: "Objective narrative"},
				"goal_type":   {Type: "string", Description: "Goal type (default: '1')"},
				"permission":  {Type: "string", Description: "Visibility (default: 'internal,team')"},
				"key_results": {
					Type:        "array",
					Description: "Key results to create with the objective",
					Items:       &modules.Property{Type: "object", Description: "Key result record"},
				},
			},
			Required: []string{"name", "owner", "start_date", "target_date"},
		},
	},
	// Key results
	{
		ID:          "workboard:get_my_key_results",
		Name:        "get_my_key_results",
		Description: "Get the current user's key results (metrics) for the current year.",
		Annotations: modules.AnnotateReadOnly,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"include_prior_years": {Type: "boolean", Description: "Include key results from prior years"},
				"format":              {Type: "string", Description: "Output format: 'compact' (default) or 'json'"},
			},
		},
	},
	{
		ID:          "workboard:get_user_key_results",
		Name:        "get_user_key_results",
		Description: "Get another user's key results for the current year.",
		Annotations: modules.AnnotateReadOnly,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"user_id":             {Type: "number", Description: "User ID"},
				"include_prior_years": {Type: "boolean", Description: "Include key results from prior years"},
				"format":              {Type: "string", Description: "Output format: 'compact' (default) or 'json'"},
			},
			Required: []string{"user_id"},
		},
	},
	{
		ID:          "workboard:update_key_result",
		Name:        "update_key_result",
		Description: "Record a check-in on a key result: set its achieved value with an optional comment. Warns when the new value is lower than the current one.",
		Annotations: modules.AnnotateUpdate,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"metric_id": {Type: "number", Description: "Key result (metric) ID"},
				"value":     {Type: "string", Description: "New achieved value, as a number string"},
				"comment":   {Type: "string", Description: "Check-in comment (max 1000 characters)"},
			},
			Required: []string{"metric_id", "value"},
		},
	},
	// Users
	{
		ID:          "workboard:get_user",
		Name:        "get_user",
		Description: "Get a user's profile. Omit user_id for the current user.",
		Annotations: modules.AnnotateReadOnly,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"user_id": {Type: "number", Description: "User ID (optional, defaults to current user)"},
			},
		},
	},
	{
		ID:          "workboard:list_users",
		Name:        "list_users",
		Description: "List users visible to the current user.",
		Annotations: modules.AnnotateReadOnly,
		InputSchema: modules.InputSchema{
			Type:       "object",
			Properties: map[string]modules.Property{},
		},
	},
	{
		ID:          "workboard:create_user",
		Name:        "create_user",
		Description: "Create a new user.",
		Annotations: modules.AnnotateCreate,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"first_name":  {Type: "string", Description: "First name (1-255 characters)"},
				"last_name":   {Type: "string", Description: "Last name (1-255 characters)"},
				"email":       {Type: "string", Description: "Email address"},
				"designation": {Type: "string", Description: "Job title (optional)"},
			},
			Required: []string{"first_name", "last_name", "email"},
		},
	},
	{
		ID:          "workboard:update_user",
		Name:        "update_user",
		Description: "Update an existing user's profile fields.",
		Annotations: modules.AnnotateUpdate,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"user_id":     {Type: "number", Description: "User ID"},
				"first_name":  {Type: "string", Description: "New first name"},
				"last_name":   {Type: "string", Description: "New last name"},
				"email":       {Type: "string", Description: "New email address"},
				"designation": {Type: "string", Description: "New job title"},
			},
			Required: []string{"user_id"},
		},
	},
	// Teams
	{
		ID:          "workboard:get_teams",
		Name:        "get_teams",
		Description: "List the teams the current user belongs to.",
		Annotations: modules.AnnotateReadOnly,
		InputSchema: modules.InputSchema{
			Type:       "object",
			Properties: map[string]modules.Property{},
		},
	},
	{
		ID:          "workboard:get_team_members",
		Name:        "get_team_members",
		Description: "List the members of a team.",
		Annotations: modules.AnnotateReadOnly,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"team_id": {Type: "number", Description: "Team ID"},
			},
			Required: []string{"team_id"},
		},
	},
}

// =============================================================================
// Tool Handlers
// =============================================================================

type toolHandler func(ctx context.Context, params map[string]any) (string, error)

var toolHandlers = map[string]toolHandler{
	"get_my_objectives":     handleGetMyObjectives,
	"get_objectives":        handleGetObjectives,
	"get_objective_details": handleGetObjectiveDetails,
	"create_objective":      handleCreateObjective,
	"get_my_key_results":    handleGetMyKeyResults,
	"get_user_key_results":  handleGetUserKeyResults,
	"update_key_result":     handleUpdateKeyResult,
	"get_user":              handleGetUser,
	"list_users":            handleListUsers,
	"create_user":           handleCreateUser,
	"update_user":           handleUpdateUser,
	"get_teams":             handleGetTeams,
	"get_team_members":      handleGetTeamMembers,
}
