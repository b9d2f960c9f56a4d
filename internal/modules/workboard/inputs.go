package workboard

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
)

// Input validation runs before any backend call. Error messages here are
// user-safe and name the offending field, never backend internals.

var errInvalidUserID = errors.New("Invalid user_id format. Expected positive integer.")
var errInvalidObjectiveID = errors.New("Invalid objective_id format. Expected positive integer.")
var errInvalidMetricID = errors.New("Invalid metric_id format. Expected positive integer.")
var errInvalidTeamID = errors.New("Invalid team_id format. Expected positive integer.")

// validateID coerces a JSON number to a positive integer ID.
func validateID(v any, invalid error) (int, error) {
	f, ok := v.(float64)
	if !ok || f != float64(int(f)) || f <= 0 {
		return 0, invalid
	}
	return int(f), nil
}

func validateUserID(v any) (int, error)      { return validateID(v, errInvalidUserID) }
func validateObjectiveID(v any) (int, error) { return validateID(v, errInvalidObjectiveID) }
func validateMetricID(v any) (int, error)    { return validateID(v, errInvalidMetricID) }

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return errors.New("Invalid email format.")
	}
	return nil
}

func validateName(field, value string) error {
	if value == "" || len(value) > 255 {
		return errors.Errorf("%s must be between 1 and 255 characters", field)
	}
	return nil
}

// validateCreateUser checks the create_user fields and builds the request
// body. Designation is optional and omitted from the body when absent.
func validateCreateUser(params map[string]any) (map[string]any, error) {
	firstName := asString(params["first_name"])
	lastName := asString(params["last_name"])
	email := asString(params["email"])

	if err := validateName("first_name", firstName); err != nil {
		return nil, err
	}
	if err := validateName("last_name", lastName); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	body := map[string]any{
		"first_name": firstName,
		"last_name":  lastName,
		"email":      email,
	}

	if designation, ok := params["designation"].(string); ok {
		if len(designation) > 255 {
			return nil, errors.New("designation must be at most 255 characters")
		}
		body["designation"] = designation
	}

	return body, nil
}

// validateUpdateUser checks the optional update_user fields and builds the
// request body from whichever were provided. An empty body is not an error
// here; the handler reports it.
func validateUpdateUser(params map[string]any) (map[string]any, error) {
	body := map[string]any{}

	if v, ok := params["first_name"].(string); ok {
		if err := validateName("first_name", v); err != nil {
			return nil, err
		}
		body["first_name"] = v
	}
	if v, ok := params["last_name"].(string); ok {
		if err := validateName("last_name", v); err != nil {
			return nil, err
		}
		body["last_name"] = v
	}
	if v, ok := params["email"].(string); ok {
		if err := validateEmail(v); err != nil {
			return nil, err
		}
		body["email"] = v
	}
	if v, ok := params["designation"].(string); ok {
		if len(v) > 255 {
			return nil, errors.New("designation must be at most 255 characters")
		}
		body["designation"] = v
	}

	return body, nil
}

// validateMetricValue checks a check-in value: bounded length and a
// non-negative number. The value stays a string on the wire.
func validateMetricValue(value string) error {
	if len(value) > 20 {
		return errors.New("value must be at most 20 characters")
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || f < 0 {
		return errors.New("value must be a non-negative number")
	}
	return nil
}

func validateComment(comment string) error {
	if len(comment) > 1000 {
		return errors.New("comment must be at most 1000 characters")
	}
	return nil
}
