package workboard

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"workboardmcp/server/pkg/workboardapi"
)

const skippedReason = "not accessible — may be archived or from a prior year"

// currentUserID resolves the authenticated user's ID from GET /user. The
// backend returns user_id as a string or a number, under data.user, under
// user, or flat at the top level. Returns 0 when it cannot be parsed.
func currentUserID(ctx context.Context, c apiClient) (int, error) {
	resp, err := c.Get(ctx, "/user", nil)
	if err != nil {
		return 0, err
	}
	env := asMap(resp)
	user := asMap(asMap(env["data"])["user"])
	if user == nil {
		user = asMap(env["user"])
	}
	if user == nil {
		user = env
	}
	return asInt(user["user_id"]), nil
}

// metricsFrom extracts the metric collection from a metrics envelope.
func metricsFrom(envelope any) []map[string]any {
	env := asMap(envelope)
	node := asMap(env["data"])["metric"]
	if node == nil {
		node = env["metric"]
	}
	metrics := []map[string]any{}
	for _, v := range asList(node) {
		if m := asMap(v); m != nil {
			metrics = append(metrics, m)
		}
	}
	return metrics
}

// filterCurrentYear keeps metrics whose target date falls in the current UTC
// calendar year. Metrics without a parseable target date are dropped.
func filterCurrentYear(metrics []map[string]any) []map[string]any {
	year := time.Now().UTC().Year()
	kept := []map[string]any{}
	for _, m := range metrics {
		ts := int64(asFloat(m["target_date"]))
		if ts > 0 && time.Unix(ts, 0).UTC().Year() == year {
			kept = append(kept, m)
		}
	}
	return kept
}

// discoverObjectiveIDs collects the distinct parent objective IDs referenced
// by the given metrics, sorted ascending for deterministic output.
func discoverObjectiveIDs(metrics []map[string]any) []int {
	seen := map[int]bool{}
	ids := []int{}
	for _, m := range metrics {
		id := asInt(m["metric_goal_id"])
		if id > 0 && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

type skippedObjective struct {
	ID     int    `json:"id"`
	Reason string `json:"reason"`
}

// fetchObjectiveDetails fetches each objective individually and concurrently.
// Per-id failures never abort sibling fetches: not-found and permission
// errors go to skipped with a canned reason (archived and cross-year
// objectives legitimately 404), other errors carry their own message.
// Results come back sorted ascending by objective ID.
func fetchObjectiveDetails(ctx context.Context, c apiClient, userID int, ids []int) ([]map[string]any, []skippedObjective) {
	type outcome struct {
		id        int
		objective map[string]any
		skip      *skippedObjective
	}

	outcomes := make([]outcome, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i, id int) {
			defer wg.Done()
			resp, err := c.Get(ctx, fmt.Sprintf("/user/%d/goal/%d", userID, id), nil)
			if err != nil {
				reason := skippedReason
				switch err.(type) {
				case *workboardapi.NotFoundError, *workboardapi.PermissionDeniedError:
				default:
					reason = err.Error()
				}
				outcomes[i] = outcome{id: id, skip: &skippedObjective{ID: id, Reason: reason}}
				return
			}
			items, _ := normalizeGoals(resp)
			if len(items) == 0 {
				outcomes[i] = outcome{id: id, skip: &skippedObjective{ID: id, Reason: skippedReason}}
				return
			}
			outcomes[i] = outcome{id: id, objective: formatObjective(items[0])}
		}(i, id)
	}
	wg.Wait()

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].id < outcomes[j].id })

	objectives := []map[string]any{}
	skipped := []skippedObjective{}
	for _, o := range outcomes {
		if o.skip != nil {
			skipped = append(skipped, *o.skip)
		} else {
			objectives = append(objectives, o.objective)
		}
	}
	return objectives, skipped
}

func handleGetObjectives(ctx context.Context, params map[string]any) (string, error) {
	userID, err := validateUserID(params["user_id"])
	if err != nil {
		return "", err
	}

	c, err := getClient()
	if err != nil {
		return "", err
	}

	resp, err := c.Get(ctx, fmt.Sprintf("/user/%d/goal", userID), nil)
	if err != nil {
		return "", err
	}

	items, total := normalizeGoals(resp)
	objectives := make([]map[string]any, 0, len(items))
	for _, g := range items {
		objectives = append(objectives, formatObjective(g))
	}

	result := map[string]any{"objectives": objectives}
	if total > len(items) {
		result["warning"] = capWarning(len(items), total)
	}
	return toJSON(result)
}

// capWarning describes a truncated objective list. The list endpoint caps at
// 15 items regardless of how many exist.
func capWarning(returned, total int) string {
	return fmt.Sprintf(
		"WorkBoard returned %d of %d associated objectives (API hard cap). "+
			"Some owned objectives may be missing. "+
			"For reliable results, provide specific objective IDs.",
		returned, total)
}

func handleGetObjectiveDetails(ctx context.Context, params map[string]any) (string, error) {
	userID, err := validateUserID(params["user_id"])
	if err != nil {
		return "", err
	}
	objectiveID, err := validateObjectiveID(params["objective_id"])
	if err != nil {
		return "", err
	}

	c, err := getClient()
	if err != nil {
		return "", err
	}

	resp, err := c.Get(ctx, fmt.Sprintf("/user/%d/goal/%d", userID, objectiveID), nil)
	if err != nil {
		return "", err
	}

	items, _ := normalizeGoals(resp)
	if len(items) == 0 {
		return "", &workboardapi.NotFoundError{Resource: "Objective", Identifier: fmt.Sprintf("%d", objectiveID)}
	}

	return toJSON(map[string]any{"objective": formatObjective(items[0])})
}

// handleGetMyObjectives resolves the current user's owned objectives.
//
// With explicit objective_ids each one is fetched individually. Without
// them, candidate IDs are discovered by walking up from the user's key
// results, which bypasses the 15-item cap on the objective list endpoint.
// Zero discovered IDs is a definitive empty answer; the capped list endpoint
// is only consulted when the metric collection itself cannot be fetched.
func handleGetMyObjectives(ctx context.Context, params map[string]any) (string, error) {
	c, err := getClient()
	if err != nil {
		return "", err
	}

	userID, err := currentUserID(ctx, c)
	if err != nil {
		return "", err
	}
	if userID == 0 {
		return toJSON(map[string]any{"error": "Could not determine current user ID"})
	}

	if rawIDs, ok := params["objective_ids"].([]any); ok && rawIDs != nil {
		ids := make([]int, 0, len(rawIDs))
		for _, v := range rawIDs {
			id, err := validateObjectiveID(v)
			if err != nil {
				return "", err
			}
			ids = append(ids, id)
		}

		objectives, skipped := fetchObjectiveDetails(ctx, c, userID, ids)
		result := map[string]any{"objectives": objectives, "user_id": userID}
		if len(skipped) > 0 {
			result["skipped"] = skipped
		}
		return toJSON(result)
	}

	resp, err := c.Get(ctx, "/metric", nil)
	if err != nil {
		return legacyOwnedObjectives(ctx, c, userID, err)
	}

	metrics := metricsFrom(resp)
	if !includePriorYears(params) {
		metrics = filterCurrentYear(metrics)
	}
	ids := discoverObjectiveIDs(metrics)
	if len(ids) == 0 {
		return toJSON(map[string]any{
			"objectives": []map[string]any{},
			"user_id":    userID,
			"message":    "No objectives discovered from your key results for the current year.",
		})
	}

	objectives, skipped := fetchObjectiveDetails(ctx, c, userID, ids)
	result := map[string]any{"objectives": objectives, "user_id": userID}
	if len(skipped) > 0 {
		result["skipped"] = skipped
	}
	return toJSON(result)
}

// legacyOwnedObjectives is the degraded path when the metric collection is
// unavailable: the capped list endpoint filtered to owned objectives, with
// owner compared string-normalized since the backend is inconsistent about
// integer vs numeric-string owner fields.
func legacyOwnedObjectives(ctx context.Context, c apiClient, userID int, discoveryErr error) (string, error) {
	resp, err := c.Get(ctx, fmt.Sprintf("/user/%d/goal", userID), nil)
	if err != nil {
		// Neither path worked; surface the original discovery failure.
		return "", discoveryErr
	}

	items, total := normalizeGoals(resp)
	ownerKey := fmt.Sprintf("%d", userID)
	owned := []map[string]any{}
	for _, g := range items {
		if asString(g["goal_owner"]) == ownerKey {
			owned = append(owned, formatObjective(g))
		}
	}

	result := map[string]any{"objectives": owned, "user_id": userID}
	if total > len(items) {
		result["warning"] = capWarning(len(items), total)
	}
	return toJSON(result)
}

// handleCreateObjective creates an objective, optionally with key results.
// The backend expects the record wrapped in a goals array.
func handleCreateObjective(ctx context.Context, params map[string]any) (string, error) {
	name := asString(params["name"])
	owner := asString(params["owner"])
	startDate := asString(params["start_date"])
	targetDate := asString(params["target_date"])
	if name == "" || owner == "" || startDate == "" || targetDate == "" {
		return "", fmt.Errorf("name, owner, start_date and target_date are required")
	}

	record := map[string]any{
		"goal_name":        name,
		"goal_owner":       owner,
		"goal_start_date":  startDate,
		"goal_target_date": targetDate,
		"goal_type":        "1",
		"permission":       "internal,team",
	}
	if v, ok := params["goal_type"].(string); ok && v != "" {
		record["goal_type"] = v
	}
	if v, ok := params["permission"].(string); ok && v != "" {
		record["permission"] = v
	}
	if v, ok := params["narrative"].(string); ok && v != "" {
		record["narrative"] = v
	}
	if krs, ok := params["key_results"].([]any); ok && len(krs) > 0 {
		record["metrics"] = krs
	}

	c, err := getClient()
	if err != nil {
		return "", err
	}

	resp, err := c.Post(ctx, "/goal", map[string]any{"goals": []any{record}})
	if err != nil {
		return "", err
	}

	env := asMap(resp)
	goal := asMap(asMap(env["data"])["goal"])
	if goal == nil {
		return toJSON(map[string]any{"objective": resp})
	}
	return toJSON(map[string]any{"objective": goal})
}
