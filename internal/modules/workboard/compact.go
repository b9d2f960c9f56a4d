package workboard

import (
	"encoding/json"
	"fmt"
	"strings"
)

// =============================================================================
// Compact formatters per tool
// =============================================================================

func formatCompact(toolName, jsonStr string) string {
	switch toolName {
	case "get_my_objectives", "get_objectives":
		return objectivesToTree(jsonStr)
	case "get_objective_details":
		return objectiveDetailToTree(jsonStr)
	case "get_my_key_results", "get_user_key_results":
		return keyResultsToList(jsonStr)
	case "get_teams":
		return teamsToCSV(jsonStr)
	case "get_team_members":
		return membersToCSV(jsonStr)
	default:
		return jsonStr
	}
}

// objectivesToTree renders an objectives result as a tree: each objective a
// top-level bullet with its key results indented beneath it.
func objectivesToTree(jsonStr string) string {
	var result map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return jsonStr
	}

	objectives, ok := result["objectives"].([]any)
	if !ok {
		return jsonStr
	}
	if len(objectives) == 0 {
		if msg := str(result, "message"); msg != "" {
			return "# 0 objectives\n" + msg
		}
		return "# 0 objectives"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %d objectives\n", len(objectives)))
	for _, v := range objectives {
		o, ok := v.(map[string]any)
		if !ok {
			continue
		}
		writeObjectiveTree(&sb, o)
	}
	if warning := str(result, "warning"); warning != "" {
		sb.WriteString("\nWARNING: " + warning + "\n")
	}
	if skipped, ok := result["skipped"].([]any); ok && len(skipped) > 0 {
		sb.WriteString(fmt.Sprintf("\n%d objective(s) skipped:\n", len(skipped)))
		for _, v := range skipped {
			s, ok := v.(map[string]any)
			if !ok {
				continue
			}
			sb.WriteString(fmt.Sprintf("- %v: %s\n", s["id"], str(s, "reason")))
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func objectiveDetailToTree(jsonStr string) string {
	var result map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return jsonStr
	}
	o, ok := result["objective"].(map[string]any)
	if !ok {
		return jsonStr
	}
	var sb strings.Builder
	writeObjectiveTree(&sb, o)
	if team := str(o, "team"); team != "" {
		sb.WriteString("  Team: " + team + "\n")
	}
	if start := str(o, "start_date"); start != "" {
		sb.WriteString(fmt.Sprintf("  Period: %s to %s\n", start, str(o, "target_date")))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func writeObjectiveTree(sb *strings.Builder, o map[string]any) {
	sb.WriteString(fmt.Sprintf("- %s (%s)\n", str(o, "name"), str(o, "progress")))
	krs, _ := o["key_results"].([]any)
	for _, v := range krs {
		kr, ok := v.(map[string]any)
		if !ok {
			continue
		}
		line := fmt.Sprintf("  - %s: %s", str(kr, "name"), str(kr, "progress"))
		if due := str(kr, "target_date"); due != "" {
			line += " (due " + due + ")"
		}
		sb.WriteString(line + "\n")
	}
}

// keyResultsToList renders a key results result as a flat bulleted list.
func keyResultsToList(jsonStr string) string {
	var result map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return jsonStr
	}
	krs, ok := result["key_results"].([]any)
	if !ok {
		return jsonStr
	}
	if len(krs) == 0 {
		return "# 0 key results"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %d key results\n", len(krs)))
	for _, v := range krs {
		kr, ok := v.(map[string]any)
		if !ok {
			continue
		}
		line := fmt.Sprintf("- [%v] %s: %s", kr["id"], str(kr, "name"), str(kr, "progress"))
		if due := str(kr, "target_date"); due != "" {
			line += " (due " + due + ")"
		}
		sb.WriteString(line + "\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// teamsToCSV: team_id,team_name,is_team_owner
func teamsToCSV(jsonStr string) string {
	var result map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return jsonStr
	}
	teams, ok := result["teams"].([]any)
	if !ok {
		return jsonStr
	}
	if len(teams) == 0 {
		return "# 0 teams"
	}
	var sb strings.Builder
	sb.WriteString("```csv\nteam_id,team_name,is_team_owner\n")
	for _, v := range teams {
		t, ok := v.(map[string]any)
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("%d,%s,%v\n",
			intVal(t, "team_id"),
			csvEscape(str(t, "team_name")),
			boolVal(t, "is_team_owner"),
		))
	}
	sb.WriteString("```")
	return sb.String()
}

// membersToCSV: user_id,full_name,email,team_role
func membersToCSV(jsonStr string) string {
	var result map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return jsonStr
	}
	members, ok := result["members"].([]any)
	if !ok {
		return jsonStr
	}
	var sb strings.Builder
	if name := str(result, "team_name"); name != "" {
		sb.WriteString("# " + name + "\n")
	}
	if len(members) == 0 {
		sb.WriteString("0 members")
		return sb.String()
	}
	sb.WriteString("```csv\nuser_id,full_name,email,team_role\n")
	for _, v := range members {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("%d,%s,%s,%s\n",
			intVal(m, "user_id"),
			csvEscape(str(m, "full_name")),
			csvEscape(str(m, "email")),
			csvEscape(str(m, "team_role")),
		))
	}
	sb.WriteString("```")
	return sb.String()
}

// =============================================================================
// Helpers
// =============================================================================

func str(obj map[string]any, key string) string {
	if v, ok := obj[key].(string); ok {
		return v
	}
	return ""
}

func intVal(obj map[string]any, key string) int {
	if v, ok := obj[key].(float64); ok {
		return int(v)
	}
	return 0
}

func boolVal(obj map[string]any, key string) bool {
	if v, ok := obj[key].(bool); ok {
		return v
	}
	return false
}

func csvEscape(s string) string {
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, ",\"\n\r") {
		return "\"" + strings.ReplaceAll(s, "\"", "\"\"") + "\""
	}
	return s
}
