package workboard

import (
	"context"
	"fmt"
)

func handleGetUser(ctx context.Context, params map[string]any) (string, error) {
	c, err := getClient()
	if err != nil {
		return "", err
	}

	path := "/user"
	if v, ok := params["user_id"]; ok && v != nil {
		userID, err := validateUserID(v)
		if err != nil {
			return "", err
		}
		path = fmt.Sprintf("/user/%d", userID)
	}

	resp, err := c.Get(ctx, path, nil)
	if err != nil {
		return "", err
	}

	return toJSON(map[string]any{"user": resp})
}

func handleListUsers(ctx context.Context, params map[string]any) (string, error) {
	c, err := getClient()
	if err != nil {
		return "", err
	}

	resp, err := c.Get(ctx, "/user", nil)
	if err != nil {
		return "", err
	}

	return toJSON(map[string]any{"users": resp})
}

func handleCreateUser(ctx context.Context, params map[string]any) (string, error) {
	body, err := validateCreateUser(params)
	if err != nil {
		return "", err
	}

	c, err := getClient()
	if err != nil {
		return "", err
	}

	resp, err := c.Post(ctx, "/user", body)
	if err != nil {
		return "", err
	}

	return toJSON(map[string]any{"user": resp})
}

func handleUpdateUser(ctx context.Context, params map[string]any) (string, error) {
	userID, err := validateUserID(params["user_id"])
	if err != nil {
		return "", err
	}

	body, err := validateUpdateUser(params)
	if err != nil {
		return "", err
	}
	if len(body) == 0 {
		return toJSON(map[string]any{"error": "No fields provided for update"})
	}

	c, err := getClient()
	if err != nil {
		return "", err
	}

	resp, err := c.Put(ctx, fmt.Sprintf("/user/%d", userID), body)
	if err != nil {
		return "", err
	}

	return toJSON(map[string]any{"user": resp})
}
