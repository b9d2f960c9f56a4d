package workboard

import (
	"context"
	"fmt"
	"testing"
)

func TestGetUserSelfAndByID(t *testing.T) {
	fake := &fakeAPI{get: func(path string) (any, error) {
		switch path {
		case "/user":
			return map[string]any{"user_id": "42"}, nil
		case "/user/7":
			return map[string]any{"user_id": "7"}, nil
		}
		return nil, fmt.Errorf("unexpected GET %s", path)
	}}
	withFakeAPI(t, fake)

	out, err := handleGetUser(context.Background(), map[string]any{})
	if err != nil {
		t.Fatal(err)
	}
	if parseResult(t, out)["user"].(map[string]any)["user_id"] != "42" {
		t.Error("self lookup did not hit /user")
	}

	out, err = handleGetUser(context.Background(), map[string]any{"user_id": float64(7)})
	if err != nil {
		t.Fatal(err)
	}
	if parseResult(t, out)["user"].(map[string]any)["user_id"] != "7" {
		t.Error("id lookup did not hit /user/7")
	}

	if _, err := handleGetUser(context.Background(), map[string]any{"user_id": "7"}); err != errInvalidUserID {
		t.Errorf("err = %v, want %v", err, errInvalidUserID)
	}
}

func TestCreateUserPostsValidatedBody(t *testing.T) {
	var gotBody any
	fake := &fakeAPI{post: func(path string, body any) (any, error) {
		if path != "/user" {
			return nil, fmt.Errorf("unexpected POST %s", path)
		}
		gotBody = body
		return map[string]any{"user_id": "99"}, nil
	}}
	withFakeAPI(t, fake)

	out, err := handleCreateUser(context.Background(), map[string]any{
		"first_name": "Alice",
		"last_name":  "Smith",
		"email":      "alice@example.com",
	})
	if err != nil {
		t.Fatal(err)
	}

	body := gotBody.(map[string]any)
	if body["email"] != "alice@example.com" {
		t.Errorf("body = %v", body)
	}
	if _, ok := body["designation"]; ok {
		t.Error("absent designation must be omitted")
	}
	if parseResult(t, out)["user"].(map[string]any)["user_id"] != "99" {
		t.Error("response not wrapped under user")
	}
}

func TestUpdateUserRequiresFields(t *testing.T) {
	fake := &fakeAPI{put: func(path string, body any) (any, error) {
		return map[string]any{"user_id": "7"}, nil
	}}
	withFakeAPI(t, fake)

	out, err := handleUpdateUser(context.Background(), map[string]any{"user_id": float64(7)})
	if err != nil {
		t.Fatal(err)
	}
	if parseResult(t, out)["error"] != "No fields provided for update" {
		t.Errorf("got %s, want the no-fields error", out)
	}

	out, err = handleUpdateUser(context.Background(), map[string]any{
		"user_id":    float64(7),
		"first_name": "Bob",
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := parseResult(t, out)["user"]; !ok {
		t.Error("expected updated user in response")
	}
}
