package workboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"workboardmcp/server/pkg/workboardapi"
)

// fakeAPI implements apiClient with per-method hooks and records every call.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	get  func(path string) (any, error)
	post func(path string, body any) (any, error)
	put  func(path string, body any) (any, error)
}

func (f *fakeAPI) record(method, path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, method+" "+path)
}

func (f *fakeAPI) called(method, path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == method+" "+path {
			return true
		}
	}
	return false
}

func (f *fakeAPI) Get(ctx context.Context, path string, params url.Values) (any, error) {
	f.record("GET", path)
	if f.get == nil {
		return nil, fmt.Errorf("unexpected GET %s", path)
	}
	return f.get(path)
}

func (f *fakeAPI) Post(ctx context.Context, path string, body any) (any, error) {
	f.record("POST", path)
	if f.post == nil {
		return nil, fmt.Errorf("unexpected POST %s", path)
	}
	return f.post(path, body)
}

func (f *fakeAPI) Put(ctx context.Context, path string, body any) (any, error) {
	f.record("PUT", path)
	if f.put == nil {
		return nil, fmt.Errorf("unexpected PUT %s", path)
	}
	return f.put(path, body)
}

func withFakeAPI(t *testing.T, f *fakeAPI) {
	t.Helper()
	setClient(f)
	t.Cleanup(ResetClient)
}

func parseResult(t *testing.T, s string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		t.Fatalf("result is not JSON: %v\n%s", err, s)
	}
	return m
}

// currentYearUnix returns a timestamp inside the current UTC year, so
// year-filtering tests hold regardless of when they run.
func currentYearUnix() float64 {
	return float64(time.Date(time.Now().UTC().Year(), 6, 1, 0, 0, 0, 0, time.UTC).Unix())
}

func priorYearUnix() float64 {
	return float64(time.Date(time.Now().UTC().Year()-1, 6, 1, 0, 0, 0, 0, time.UTC).Unix())
}

func userEnvelope(userID string) any {
	return map[string]any{"data": map[string]any{"user": map[string]any{"user_id": userID}}}
}

func goalDetailEnvelope(id float64, name string) any {
	return map[string]any{"data": map[string]any{"goal": map[string]any{
		"goal_id":       id,
		"goal_name":     name,
		"goal_owner":    "42",
		"goal_progress": float64(50),
	}}}
}

func TestGetMyObjectivesDiscovery(t *testing.T) {
	fake := &fakeAPI{get: func(path string) (any, error) {
		switch path {
		case "/user":
			return userEnvelope("42"), nil
		case "/metric":
			return map[string]any{"data": map[string]any{"metric": []any{
				map[string]any{"metric_id": float64(10), "metric_goal_id": "100", "target_date": currentYearUnix()},
				map[string]any{"metric_id": float64(11), "metric_goal_id": "100", "target_date": currentYearUnix()},
				map[string]any{"metric_id": float64(12), "metric_goal_id": "999", "target_date": priorYearUnix()},
			}}}, nil
		case "/user/42/goal/100":
			return goalDetailEnvelope(100, "My OKR"), nil
		}
		return nil, fmt.Errorf("unexpected GET %s", path)
	}}
	withFakeAPI(t, fake)

	out, err := handleGetMyObjectives(context.Background(), map[string]any{})
	if err != nil {
		t.Fatal(err)
	}

	result := parseResult(t, out)
	objectives := result["objectives"].([]any)
	if len(objectives) != 1 {
		t.Fatalf("len(objectives) = %d, want 1", len(objectives))
	}
	obj := objectives[0].(map[string]any)
	if obj["name"] != "My OKR" {
		t.Errorf("name = %v, want My OKR", obj["name"])
	}
	// Objective 999 only has a prior-year metric and must not be fetched
	if fake.called("GET", "/user/42/goal/999") {
		t.Error("prior-year objective was fetched")
	}
}

func TestGetMyObjectivesExplicitIDsSkipsInaccessible(t *testing.T) {
	fake := &fakeAPI{get: func(path string) (any, error) {
		switch path {
		case "/user":
			return userEnvelope("42"), nil
		case "/user/42/goal/1":
			return goalDetailEnvelope(1, "Visible"), nil
		case "/user/42/goal/2":
			return nil, &workboardapi.NotFoundError{Resource: "Objective", Identifier: "2"}
		}
		return nil, fmt.Errorf("unexpected GET %s", path)
	}}
	withFakeAPI(t, fake)

	out, err := handleGetMyObjectives(context.Background(), map[string]any{
		"objective_ids": []any{float64(1), float64(2)},
	})
	if err != nil {
		t.Fatal(err)
	}

	result := parseResult(t, out)
	objectives := result["objectives"].([]any)
	if len(objectives) != 1 {
		t.Fatalf("len(objectives) = %d, want 1", len(objectives))
	}
	skipped := result["skipped"].([]any)
	if len(skipped) != 1 {
		t.Fatalf("len(skipped) = %d, want 1", len(skipped))
	}
	entry := skipped[0].(map[string]any)
	if entry["id"] != float64(2) {
		t.Errorf("skipped id = %v, want 2", entry["id"])
	}
	if !strings.Contains(entry["reason"].(string), "not accessible") {
		t.Errorf("skipped reason = %v", entry["reason"])
	}
	// Explicit IDs never trigger discovery
	if fake.called("GET", "/metric") {
		t.Error("metric discovery ran despite explicit objective_ids")
	}
}

func TestGetMyObjectivesInvalidExplicitID(t *testing.T) {
	fake := &fakeAPI{get: func(path string) (any, error) {
		return userEnvelope("42"), nil
	}}
	withFakeAPI(t, fake)

	_, err := handleGetMyObjectives(context.Background(), map[string]any{
		"objective_ids": []any{float64(-1)},
	})
	if err == nil || err.Error() != errInvalidObjectiveID.Error() {
		t.Errorf("err = %v, want %v", err, errInvalidObjectiveID)
	}
}

func TestGetMyObjectivesNoDiscoveredIDs(t *testing.T) {
	fake := &fakeAPI{get: func(path string) (any, error) {
		switch path {
		case "/user":
			return userEnvelope("42"), nil
		case "/metric":
			return map[string]any{"data": map[string]any{"metric": []any{}}}, nil
		}
		return nil, fmt.Errorf("unexpected GET %s", path)
	}}
	withFakeAPI(t, fake)

	out, err := handleGetMyObjectives(context.Background(), map[string]any{})
	if err != nil {
		t.Fatal(err)
	}

	result := parseResult(t, out)
	if len(result["objectives"].([]any)) != 0 {
		t.Error("expected empty objectives")
	}
	if _, ok := result["message"]; !ok {
		t.Error("expected explanatory message for empty discovery")
	}
	// Empty discovery is definitive; the capped list endpoint stays untouched
	if fake.called("GET", "/user/42/goal") {
		t.Error("fell back to capped list on empty discovery")
	}
}

func TestGetMyObjectivesDegradedFallback(t *testing.T) {
	fake := &fakeAPI{get: func(path string) (any, error) {
		switch path {
		case "/user":
			return userEnvelope("42"), nil
		case "/metric":
			return nil, fmt.Errorf("metric endpoint down")
		case "/user/42/goal":
			return map[string]any{"data": map[string]any{
				"goal": []any{
					map[string]any{"goal_id": float64(1), "goal_name": "Mine", "goal_owner": float64(42)},
					map[string]any{"goal_id": float64(2), "goal_name": "Theirs", "goal_owner": "43"},
				},
			}}, nil
		}
		return nil, fmt.Errorf("unexpected GET %s", path)
	}}
	withFakeAPI(t, fake)

	out, err := handleGetMyObjectives(context.Background(), map[string]any{})
	if err != nil {
		t.Fatal(err)
	}

	result := parseResult(t, out)
	objectives := result["objectives"].([]any)
	if len(objectives) != 1 {
		t.Fatalf("len(objectives) = %d, want 1 (owner-filtered)", len(objectives))
	}
	if objectives[0].(map[string]any)["name"] != "Mine" {
		t.Errorf("got %v, want the owned objective", objectives[0])
	}
}

func TestGetMyObjectivesFlatUserEnvelope(t *testing.T) {
	fake := &fakeAPI{get: func(path string) (any, error) {
		switch path {
		case "/user":
			return map[string]any{"user_id": float64(42), "email": "me@example.com"}, nil
		case "/metric":
			return map[string]any{"data": map[string]any{"metric": []any{
				map[string]any{"metric_id": float64(10), "metric_goal_id": "100", "target_date": currentYearUnix()},
			}}}, nil
		case "/user/42/goal/100":
			return goalDetailEnvelope(100, "Flat"), nil
		}
		return nil, fmt.Errorf("unexpected GET %s", path)
	}}
	withFakeAPI(t, fake)

	out, err := handleGetMyObjectives(context.Background(), map[string]any{})
	if err != nil {
		t.Fatal(err)
	}

	result := parseResult(t, out)
	if result["user_id"] != float64(42) {
		t.Errorf("user_id = %v, want 42", result["user_id"])
	}
	if got := len(result["objectives"].([]any)); got != 1 {
		t.Errorf("len(objectives) = %d, want 1", got)
	}
}

func TestGetMyObjectivesUnresolvableUser(t *testing.T) {
	fake := &fakeAPI{get: func(path string) (any, error) {
		return map[string]any{"data": map[string]any{"user": map[string]any{"user_id": "not-a-number"}}}, nil
	}}
	withFakeAPI(t, fake)

	out, err := handleGetMyObjectives(context.Background(), map[string]any{})
	if err != nil {
		t.Fatal(err)
	}
	result := parseResult(t, out)
	if result["error"] != "Could not determine current user ID" {
		t.Errorf("error = %v", result["error"])
	}
}

func TestGetObjectivesCapWarning(t *testing.T) {
	goals := map[string]any{}
	for i := 0; i < 15; i++ {
		goals[fmt.Sprintf("%d", i)] = map[string]any{"goal_id": float64(i + 1), "goal_name": fmt.Sprintf("G%d", i)}
	}
	fake := &fakeAPI{get: func(path string) (any, error) {
		return map[string]any{"data": map[string]any{"user": map[string]any{"goal": goals}, "goal_count": float64(40)}}, nil
	}}
	withFakeAPI(t, fake)

	out, err := handleGetObjectives(context.Background(), map[string]any{"user_id": float64(42)})
	if err != nil {
		t.Fatal(err)
	}

	result := parseResult(t, out)
	if len(result["objectives"].([]any)) != 15 {
		t.Fatalf("len(objectives) = %d, want 15", len(result["objectives"].([]any)))
	}
	warning, _ := result["warning"].(string)
	if !strings.Contains(warning, "15 of 40") {
		t.Errorf("warning = %q, want the 15-of-40 truncation notice", warning)
	}
}

func TestGetObjectivesNoWarningWhenComplete(t *testing.T) {
	fake := &fakeAPI{get: func(path string) (any, error) {
		return map[string]any{"data": map[string]any{
			"goal":       []any{map[string]any{"goal_id": float64(1), "goal_name": "Only"}},
			"goal_count": float64(1),
		}}, nil
	}}
	withFakeAPI(t, fake)

	out, err := handleGetObjectives(context.Background(), map[string]any{"user_id": float64(42)})
	if err != nil {
		t.Fatal(err)
	}
	result := parseResult(t, out)
	if _, ok := result["warning"]; ok {
		t.Error("unexpected warning for a complete list")
	}
}

func TestGetObjectiveDetails(t *testing.T) {
	fake := &fakeAPI{get: func(path string) (any, error) {
		if path != "/user/42/goal/100" {
			return nil, fmt.Errorf("unexpected GET %s", path)
		}
		return goalDetailEnvelope(100, "Detail"), nil
	}}
	withFakeAPI(t, fake)

	out, err := handleGetObjectiveDetails(context.Background(), map[string]any{
		"user_id":      float64(42),
		"objective_id": float64(100),
	})
	if err != nil {
		t.Fatal(err)
	}

	result := parseResult(t, out)
	obj := result["objective"].(map[string]any)
	if obj["name"] != "Detail" {
		t.Errorf("name = %v, want Detail", obj["name"])
	}
}

func TestGetObjectiveDetailsRejectsBadIDs(t *testing.T) {
	withFakeAPI(t, &fakeAPI{})

	_, err := handleGetObjectiveDetails(context.Background(), map[string]any{
		"user_id":      float64(42),
		"objective_id": "100",
	})
	if err == nil || err.Error() != errInvalidObjectiveID.Error() {
		t.Errorf("err = %v, want %v", err, errInvalidObjectiveID)
	}

	_, err = handleGetObjectiveDetails(context.Background(), map[string]any{
		"user_id":      float64(0),
		"objective_id": float64(100),
	})
	if err == nil || err.Error() != errInvalidUserID.Error() {
		t.Errorf("err = %v, want %v", err, errInvalidUserID)
	}
}

func TestCreateObjective(t *testing.T) {
	var gotBody any
	fake := &fakeAPI{post: func(path string, body any) (any, error) {
		if path != "/goal" {
			return nil, fmt.Errorf("unexpected POST %s", path)
		}
		gotBody = body
		return map[string]any{"data": map[string]any{"goal": map[string]any{
			"goal_id": float64(500), "goal_name": "New objective",
		}}}, nil
	}}
	withFakeAPI(t, fake)

	out, err := handleCreateObjective(context.Background(), map[string]any{
		"name":        "New objective",
		"owner":       "42",
		"start_date":  "2026-01-01",
		"target_date": "2026-12-31",
	})
	if err != nil {
		t.Fatal(err)
	}

	body := gotBody.(map[string]any)
	goals := body["goals"].([]any)
	if len(goals) != 1 {
		t.Fatalf("goals wrapper has %d entries, want 1", len(goals))
	}
	record := goals[0].(map[string]any)
	if record["goal_name"] != "New objective" || record["goal_type"] != "1" {
		t.Errorf("record = %v", record)
	}

	result := parseResult(t, out)
	obj := result["objective"].(map[string]any)
	if obj["goal_name"] != "New objective" {
		t.Errorf("objective = %v", obj)
	}
}

func TestCreateObjectiveRequiresFields(t *testing.T) {
	withFakeAPI(t, &fakeAPI{})
	_, err := handleCreateObjective(context.Background(), map[string]any{"name": "No dates"})
	if err == nil {
		t.Fatal("expected an error for missing required fields")
	}
}

func TestDiscoverObjectiveIDsDedupAndSort(t *testing.T) {
	metrics := []map[string]any{
		{"metric_goal_id": "300"},
		{"metric_goal_id": float64(100)},
		{"metric_goal_id": "300"},
		{"metric_goal_id": float64(200)},
		{"metric_goal_id": float64(0)},
	}
	got := discoverObjectiveIDs(metrics)
	want := []int{100, 200, 300}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
