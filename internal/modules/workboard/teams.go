package workboard

import (
	"context"
	"fmt"
	"strings"
)

// formatTeam reshapes a raw team object for tool output.
func formatTeam(team map[string]any) map[string]any {
	return map[string]any{
		"team_id":       asInt(team["team_id"]),
		"team_name":     asString(team["team_name"]),
		"team_owner_id": team["team_owner"],
		"is_team_owner": asBool(team["is_team_owner"]),
	}
}

// formatTeamMember reshapes a raw team member object for tool output.
func formatTeamMember(member map[string]any) map[string]any {
	first := asString(member["first_name"])
	last := asString(member["last_name"])
	return map[string]any{
		"user_id":    asInt(member["id"]),
		"first_name": first,
		"last_name":  last,
		"full_name":  strings.TrimSpace(first + " " + last),
		"email":      asString(member["email"]),
		"team_role":  asString(member["team_role"]),
	}
}

// handleGetTeams lists the teams the authenticated user belongs to. The teams
// endpoint is shape-inconsistent: the collection may be a bare list, or live
// under teams, data.teams, or data.team, and may itself be a mapping.
func handleGetTeams(ctx context.Context, params map[string]any) (string, error) {
	c, err := getClient()
	if err != nil {
		return "", err
	}

	resp, err := c.Get(ctx, "/team", nil)
	if err != nil {
		return "", err
	}

	var rawTeams []any
	switch r := resp.(type) {
	case []any:
		rawTeams = r
	case map[string]any:
		node := r["teams"]
		if node == nil {
			data := asMap(r["data"])
			if data["teams"] != nil {
				node = data["teams"]
			} else {
				node = data["team"]
			}
		}
		switch n := node.(type) {
		case []any:
			rawTeams = n
		case map[string]any:
			for _, v := range n {
				rawTeams = append(rawTeams, v)
			}
		}
	}

	teams := []map[string]any{}
	for _, v := range rawTeams {
		if t := asMap(v); t != nil {
			teams = append(teams, formatTeam(t))
		}
	}

	return toJSON(map[string]any{"teams": teams})
}

func handleGetTeamMembers(ctx context.Context, params map[string]any) (string, error) {
	teamID, err := validateID(params["team_id"], errInvalidTeamID)
	if err != nil {
		return "", err
	}

	c, err := getClient()
	if err != nil {
		return "", err
	}

	resp, err := c.Get(ctx, fmt.Sprintf("/team/%d/user", teamID), nil)
	if err != nil {
		return "", err
	}

	env := asMap(resp)
	teamData := asMap(asMap(env["data"])["team"])
	if teamData == nil {
		teamData = asMap(env["team"])
	}

	members := []map[string]any{}
	for _, v := range asList(teamData["team_members"]) {
		if m := asMap(v); m != nil {
			members = append(members, formatTeamMember(m))
		}
	}

	return toJSON(map[string]any{
		"team_id":   teamID,
		"team_name": asString(teamData["team_name"]),
		"members":   members,
	})
}
