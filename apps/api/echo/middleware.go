package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const contextTeacherKey = "teacherId"

func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// teacherMiddleware rejects non-teachers and resolves the acting teacher's id
// once per request; handlers read it with contextTeacherID and pass it
// explicitly into services.
func teacherMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if !claims.IsTeacher && !claims.IsAdmin {
				return errHttpForbidden
			}
			ctx.Set(contextTeacherKey, claims.Subject)
			return next(ctx)
		}
	}
}

func contextTeacherID(ctx echo.Context) string {
	id, _ := ctx.Get(contextTeacherKey).(string)
	return id
}
