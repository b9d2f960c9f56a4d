package workboard

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func metricsEnvelope(metrics ...map[string]any) any {
	list := make([]any, len(metrics))
	for i, m := range metrics {
		list[i] = m
	}
	return map[string]any{"data": map[string]any{"metric": list}}
}

func TestGetMyKeyResultsFiltersCurrentYear(t *testing.T) {
	fake := &fakeAPI{get: func(path string) (any, error) {
		if path != "/metric" {
			return nil, fmt.Errorf("unexpected GET %s", path)
		}
		return metricsEnvelope(
			map[string]any{"metric_id": float64(1), "metric_name": "Fresh", "target_date": currentYearUnix()},
			map[string]any{"metric_id": float64(2), "metric_name": "Stale", "target_date": priorYearUnix()},
			map[string]any{"metric_id": float64(3), "metric_name": "Dateless"},
		), nil
	}}
	withFakeAPI(t, fake)

	out, err := handleGetMyKeyResults(context.Background(), map[string]any{})
	if err != nil {
		t.Fatal(err)
	}

	result := parseResult(t, out)
	krs := result["key_results"].([]any)
	if len(krs) != 1 {
		t.Fatalf("len(key_results) = %d, want 1", len(krs))
	}
	if krs[0].(map[string]any)["name"] != "Fresh" {
		t.Errorf("kept %v, want the current-year metric", krs[0])
	}
}

func TestGetMyKeyResultsIncludePriorYears(t *testing.T) {
	fake := &fakeAPI{get: func(path string) (any, error) {
		return metricsEnvelope(
			map[string]any{"metric_id": float64(1), "target_date": currentYearUnix()},
			map[string]any{"metric_id": float64(2), "target_date": priorYearUnix()},
		), nil
	}}
	withFakeAPI(t, fake)

	out, err := handleGetMyKeyResults(context.Background(), map[string]any{"include_prior_years": true})
	if err != nil {
		t.Fatal(err)
	}

	result := parseResult(t, out)
	if got := len(result["key_results"].([]any)); got != 2 {
		t.Errorf("len(key_results) = %d, want 2", got)
	}
}

func TestGetUserKeyResults(t *testing.T) {
	fake := &fakeAPI{get: func(path string) (any, error) {
		if path != "/user/7/metric" {
			return nil, fmt.Errorf("unexpected GET %s", path)
		}
		return metricsEnvelope(
			map[string]any{"metric_id": float64(5), "metric_name": "Theirs", "target_date": currentYearUnix()},
		), nil
	}}
	withFakeAPI(t, fake)

	out, err := handleGetUserKeyResults(context.Background(), map[string]any{"user_id": float64(7)})
	if err != nil {
		t.Fatal(err)
	}

	result := parseResult(t, out)
	if result["user_id"] != float64(7) {
		t.Errorf("user_id = %v, want 7", result["user_id"])
	}
	if got := len(result["key_results"].([]any)); got != 1 {
		t.Errorf("len(key_results) = %d, want 1", got)
	}
}

func TestUpdateKeyResult(t *testing.T) {
	var gotPath string
	var gotBody any
	fake := &fakeAPI{
		get: func(path string) (any, error) {
			return metricsEnvelope(
				map[string]any{"metric_id": float64(10), "metric_name": "Revenue", "metric_achieve_target": "100"},
			), nil
		},
		put: func(path string, body any) (any, error) {
			gotPath, gotBody = path, body
			return map[string]any{"data": map[string]any{"metric": map[string]any{
				"metric_id": float64(10), "metric_name": "Revenue", "metric_achieve_target": "150",
			}}}, nil
		},
	}
	withFakeAPI(t, fake)

	out, err := handleUpdateKeyResult(context.Background(), map[string]any{
		"metric_id": float64(10),
		"value":     "150",
		"comment":   "good week",
	})
	if err != nil {
		t.Fatal(err)
	}

	if gotPath != "/metric/10" {
		t.Errorf("PUT path = %q, want /metric/10", gotPath)
	}
	body := gotBody.(map[string]any)
	md := body["metric_data"].(map[string]any)
	if md["metric_id"] != 10 || md["metric_achieve_target"] != "150" {
		t.Errorf("metric_data = %v", md)
	}
	if body["metric_comment"] != "good week" {
		t.Errorf("metric_comment = %v", body["metric_comment"])
	}

	result := parseResult(t, out)
	if _, ok := result["warning"]; ok {
		t.Error("unexpected warning for a forward check-in")
	}
	kr := result["key_result"].(map[string]any)
	if kr["id"] != float64(10) {
		t.Errorf("key_result.id = %v, want 10", kr["id"])
	}
}

func TestUpdateKeyResultRegressionWarnsButWrites(t *testing.T) {
	wrote := false
	fake := &fakeAPI{
		get: func(path string) (any, error) {
			return metricsEnvelope(
				map[string]any{"metric_id": float64(10), "metric_name": "Revenue", "metric_achieve_target": "200"},
			), nil
		},
		put: func(path string, body any) (any, error) {
			wrote = true
			return map[string]any{"data": map[string]any{"metric": map[string]any{
				"metric_id": float64(10), "metric_achieve_target": "50",
			}}}, nil
		},
	}
	withFakeAPI(t, fake)

	out, err := handleUpdateKeyResult(context.Background(), map[string]any{
		"metric_id": float64(10),
		"value":     "50",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !wrote {
		t.Fatal("regression must not block the write")
	}

	result := parseResult(t, out)
	warning, _ := result["warning"].(string)
	if warning == "" {
		t.Fatal("expected a regression warning")
	}
	for _, want := range []string{"50", "200", "Revenue", "10"} {
		if !strings.Contains(warning, want) {
			t.Errorf("warning %q missing %q", warning, want)
		}
	}
}

func TestUpdateKeyResultReadBackFailureIsAdvisory(t *testing.T) {
	fake := &fakeAPI{
		get: func(path string) (any, error) {
			return nil, fmt.Errorf("metric endpoint down")
		},
		put: func(path string, body any) (any, error) {
			return map[string]any{"data": map[string]any{"metric": map[string]any{
				"metric_id": float64(10), "metric_achieve_target": "75",
			}}}, nil
		},
	}
	withFakeAPI(t, fake)

	out, err := handleUpdateKeyResult(context.Background(), map[string]any{
		"metric_id": float64(10),
		"value":     "75",
	})
	if err != nil {
		t.Fatalf("read-back failure must not fail the check-in: %v", err)
	}
	result := parseResult(t, out)
	if _, ok := result["warning"]; ok {
		t.Error("no warning expected when read-back is unavailable")
	}
}

func TestUpdateKeyResultOmitsEmptyComment(t *testing.T) {
	var gotBody any
	fake := &fakeAPI{
		get: func(path string) (any, error) { return metricsEnvelope(), nil },
		put: func(path string, body any) (any, error) {
			gotBody = body
			return map[string]any{}, nil
		},
	}
	withFakeAPI(t, fake)

	if _, err := handleUpdateKeyResult(context.Background(), map[string]any{
		"metric_id": float64(10),
		"value":     "5",
	}); err != nil {
		t.Fatal(err)
	}

	if _, ok := gotBody.(map[string]any)["metric_comment"]; ok {
		t.Error("empty comment must be omitted from the body")
	}
}

func TestUpdateKeyResultValidation(t *testing.T) {
	withFakeAPI(t, &fakeAPI{})

	cases := []struct {
		name    string
		params  map[string]any
		wantErr string
	}{
		{
			"bad metric id",
			map[string]any{"metric_id": "ten", "value": "5"},
			errInvalidMetricID.Error(),
		},
		{
			"negative value",
			map[string]any{"metric_id": float64(10), "value": "-5"},
			"value must be a non-negative number",
		},
		{
			"non-numeric value",
			map[string]any{"metric_id": float64(10), "value": "plenty"},
			"value must be a non-negative number",
		},
		{
			"value too long",
			map[string]any{"metric_id": float64(10), "value": strings.Repeat("9", 21)},
			"value must be at most 20 characters",
		},
		{
			"comment too long",
			map[string]any{"metric_id": float64(10), "value": "5", "comment": strings.Repeat("x", 1001)},
			"comment must be at most 1000 characters",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := handleUpdateKeyResult(context.Background(), tc.params)
			if err == nil || err.Error() != tc.wantErr {
				t.Errorf("err = %v, want %q", err, tc.wantErr)
			}
		})
	}
}
