package jwtauth

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultRoleClaim  = "x-hasura-default-role"
	allowedRolesClaim = "x-hasura-allowed-roles"
	variablePrefix    = "x-hasura-"
)

// ExtractRoleClaims reads the role map out of the given claims namespace.
// The namespace must be an object carrying x-hasura-default-role and
// x-hasura-allowed-roles; every other x-hasura-* entry becomes a session
// variable. Non x-hasura-* entries are ignored.
func ExtractRoleClaims(claims jwt.MapClaims, namespace string) (*RoleClaims, error) {
	ns, ok := claims[namespace].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: missing claims namespace %q", ErrUnauthorized, namespace)
	}

	rc := &RoleClaims{Variables: make(map[string]string)}
	for name, value := range ns {
		lower := strings.ToLower(name)
		switch lower {
		case defaultRoleClaim:
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s must be a string", ErrUnauthorized, defaultRoleClaim)
			}
			rc.DefaultRole = s
		case allowedRolesClaim:
			roles, err := stringSlice(value)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrUnauthorized, allowedRolesClaim, err)
			}
			rc.AllowedRoles = roles
		default:
			if !strings.HasPrefix(lower, variablePrefix) {
				continue
			}
			rc.Variables[lower] = stringify(value)
		}
	}

	if rc.DefaultRole == "" {
		return nil, fmt.Errorf("%w: missing %s claim", ErrUnauthorized, defaultRoleClaim)
	}
	if len(rc.AllowedRoles) == 0 {
		return nil, fmt.Errorf("%w: missing %s claim", ErrUnauthorized, allowedRolesClaim)
	}
	return rc, nil
}

func stringSlice(v any) ([]string, error) {
	switch vv := v.(type) {
	case []string:
		return vv, nil
	case []any:
		out := make([]string, 0, len(vv))
		for _, e := range vv {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("non-string element %v", e)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected array, got %T", v)
}

// stringify renders a claim value the way it would appear as a header:
// strings pass through, scalars are formatted.
func stringify(v any) string {
	switch vv := v.(type) {
	case string:
		return vv
	case bool:
		return strconv.FormatBool(vv)
	case float64:
		return strconv.FormatFloat(vv, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", vv)
	}
}
