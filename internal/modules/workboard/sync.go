package workboard

import (
	"context"
	"fmt"
	"strconv"

	"workboardmcp/server/internal/middleware"
	"workboardmcp/server/internal/observability"
)

func handleGetMyKeyResults(ctx context.Context, params map[string]any) (string, error) {
	c, err := getClient()
	if err != nil {
		return "", err
	}

	resp, err := c.Get(ctx, "/metric", nil)
	if err != nil {
		return "", err
	}

	return toJSON(map[string]any{"key_results": keyResultsFrom(resp, includePriorYears(params))})
}

func handleGetUserKeyResults(ctx context.Context, params map[string]any) (string, error) {
	userID, err := validateUserID(params["user_id"])
	if err != nil {
		return "", err
	}

	c, err := getClient()
	if err != nil {
		return "", err
	}

	resp, err := c.Get(ctx, fmt.Sprintf("/user/%d/metric", userID), nil)
	if err != nil {
		return "", err
	}

	return toJSON(map[string]any{
		"user_id":     userID,
		"key_results": keyResultsFrom(resp, includePriorYears(params)),
	})
}

func includePriorYears(params map[string]any) bool {
	v, _ := params["include_prior_years"].(bool)
	return v
}

// keyResultsFrom extracts, optionally year-filters, and formats a metrics
// envelope.
func keyResultsFrom(envelope any, priorYears bool) []map[string]any {
	metrics := metricsFrom(envelope)
	if !priorYears {
		metrics = filterCurrentYear(metrics)
	}
	keyResults := make([]map[string]any, 0, len(metrics))
	for _, m := range metrics {
		keyResults = append(keyResults, formatKeyResult(m))
	}
	return keyResults
}

// handleUpdateKeyResult records a check-in against a key result.
//
// Before writing it reads the metric back and compares the current value
// against the new one. A lower new value is legal (metrics do regress) but
// suspicious enough to flag: the write proceeds and the response carries a
// warning. The read-back is advisory only, so a failure there never blocks
// the check-in.
func handleUpdateKeyResult(ctx context.Context, params map[string]any) (string, error) {
	metricID, err := validateMetricID(params["metric_id"])
	if err != nil {
		return "", err
	}
	value := asString(params["value"])
	if err := validateMetricValue(value); err != nil {
		return "", err
	}
	comment, _ := params["comment"].(string)
	if err := validateComment(comment); err != nil {
		return "", err
	}

	c, err := getClient()
	if err != nil {
		return "", err
	}

	warning := ""
	if current, name, ok := currentMetricValue(ctx, c, metricID); ok {
		newValue, _ := strconv.ParseFloat(value, 64)
		if current > newValue {
			warning = fmt.Sprintf(
				"New value %s is lower than the current value %s for key result %q (metric %d). "+
					"The check-in was recorded anyway; verify this regression is intentional.",
				value, asString(current), name, metricID)
			requestID := middleware.GetRequestID(ctx)
			observability.LogEvent(requestID, "checkin_regression", map[string]any{
				"metric_id":     metricID,
				"current_value": current,
				"new_value":     value,
			})
		}
	}

	body := map[string]any{
		"metric_data": map[string]any{
			"metric_id":             metricID,
			"metric_achieve_target": value,
		},
	}
	if comment != "" {
		body["metric_comment"] = comment
	}

	resp, err := c.Put(ctx, fmt.Sprintf("/metric/%d", metricID), body)
	if err != nil {
		return "", err
	}

	observability.LogCheckIn(middleware.GetRequestID(ctx), metricID, value, comment, warning != "")

	env := asMap(resp)
	metric := asMap(asMap(env["data"])["metric"])
	if metric == nil {
		metric = asMap(env["metric"])
	}

	result := map[string]any{}
	if metric != nil {
		result["key_result"] = formatKeyResult(metric)
	} else {
		result["key_result"] = resp
	}
	if warning != "" {
		result["warning"] = warning
	}
	return toJSON(result)
}

// currentMetricValue looks up a metric's current achieved value and name from
// the metric collection. Failures are logged and reported as a miss.
func currentMetricValue(ctx context.Context, c apiClient, metricID int) (float64, string, bool) {
	resp, err := c.Get(ctx, "/metric", nil)
	if err != nil {
		observability.LogError("checkin read-back", err)
		return 0, "", false
	}
	for _, m := range metricsFrom(resp) {
		if asInt(m["metric_id"]) == metricID {
			return asFloat(m["metric_achieve_target"]), asString(m["metric_name"]), true
		}
	}
	return 0, "", false
}
