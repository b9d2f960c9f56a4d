package workboard

import (
	"fmt"
	"strconv"
	"time"
)

// Value formatting is pure and never errors: malformed numbers and timestamps
// coerce to zero/empty defaults.

// formatDate renders a Unix timestamp as YYYY-MM-DD in UTC. Non-positive or
// unparseable input yields an empty string, not a sentinel date.
func formatDate(v any) string {
	ts := int64(asFloat(v))
	if ts <= 0 {
		return ""
	}
	return time.Unix(ts, 0).UTC().Format("2006-01-02")
}

// formatMetricProgress renders achieved-vs-target according to the metric's
// unit: Currency as "$X,XXX of $Y,YYY", Number as "X of Y", anything else as
// an implicit percentage "X% of Y%".
func formatMetricProgress(metric map[string]any) string {
	achieved := asFloat(metric["metric_achieve_target"])
	target := asFloat(metric["metric_target"])
	unit := asString(asMap(metric["metric_unit"])["name"])

	switch unit {
	case "Currency":
		return fmt.Sprintf("$%s of $%s", groupThousands(int64(achieved)), groupThousands(int64(target)))
	case "Number":
		return fmt.Sprintf("%d of %d", int64(achieved), int64(target))
	default:
		return fmt.Sprintf("%d%% of %d%%", int64(achieved), int64(target))
	}
}

// formatObjectiveProgress truncates a float-ish progress value to an integer
// percent string.
func formatObjectiveProgress(v any) string {
	return strconv.Itoa(int(asFloat(v))) + "%"
}

// formatKeyResult reshapes a raw metric record for tool output.
func formatKeyResult(metric map[string]any) map[string]any {
	return map[string]any{
		"id":           asInt(metric["metric_id"]),
		"objective_id": asInt(metric["metric_goal_id"]),
		"name":         asString(metric["metric_name"]),
		"progress":     formatMetricProgress(metric),
		"target_date":  formatDate(metric["target_date"]),
		"last_checkin": formatDate(metric["metric_last_update_date"]),
	}
}

// formatObjective reshapes a raw goal record, including its embedded metrics,
// for tool output.
func formatObjective(goal map[string]any) map[string]any {
	keyResults := []map[string]any{}
	for _, v := range asList(goal["goal_metrics"]) {
		if m := asMap(v); m != nil {
			keyResults = append(keyResults, formatKeyResult(m))
		}
	}
	return map[string]any{
		"id":          asInt(goal["goal_id"]),
		"name":        asString(goal["goal_name"]),
		"owner":       asString(goal["goal_owner"]),
		"progress":    formatObjectiveProgress(goal["goal_progress"]),
		"start_date":  formatDate(goal["goal_start_date"]),
		"target_date": formatDate(goal["goal_target_date"]),
		"team":        asString(goal["goal_team_name"]),
		"key_results": keyResults,
	}
}

// groupThousands renders n with comma-grouped digits.
func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		return "-" + s
	}
	return s
}
