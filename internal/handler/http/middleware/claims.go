package middleware

import (
	"context"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

func claim(ctx context.Context, key string) string {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return ""
	}
	v, _ := claims[key].(string)
	return v
}

// EmployeeID is the caller's employee id from the access token.
func EmployeeID(ctx context.Context) string {
	return claim(ctx, "employee_id")
}

func UserID(ctx context.Context) string {
	return claim(ctx, "user_id")
}

func Role(ctx context.Context) jwt.Role {
	return jwt.Role(claim(ctx, "role"))
}
