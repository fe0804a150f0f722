package handlers

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/stall-admin/internal/auth"
	"github.com/spec-kit/stall-admin/internal/events"
	apperrors "github.com/spec-kit/stall-admin/pkg/util"
)

// newValidator reports field names by their query or json tag.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"query", "json"} {
			if name := strings.Split(f.Tag.Get(tag), ",")[0]; name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// decodeJSON reads the body regardless of Content-Type with the app's
// configured decoder. An empty body decodes as an empty object.
func decodeJSON(c *fiber.Ctx, out interface{}) error {
	body := c.Body()
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	if err := c.App().Config().JSONDecoder(body, out); err != nil {
		return apperrors.NewValidationError("Invalid JSON body")
	}
	return nil
}

func queryValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.NewValidationError("Invalid query parameters")
	}
	fe := verrs[0]
	if fe.Tag() == "datetime" {
		return apperrors.NewValidationError("Invalid date format, expected YYYY-MM-DD")
	}
	return apperrors.NewValidationError("Invalid " + fe.Field())
}

// actorFrom describes the authenticated caller for lifecycle events.
func actorFrom(c *fiber.Ctx) events.Actor {
	var actor events.Actor
	if principal, ok := auth.PrincipalFromContext(c); ok {
		actor.UserID = principal.UserID
		if principal.Profile != nil {
			actor.UserName = principal.Profile.FullName
		}
	}
	if ip := c.IP(); ip != "" {
		actor.IPAddress = &ip
	}
	if ua := c.Get(fiber.HeaderUserAgent); ua != "" {
		actor.UserAgent = &ua
	}
	return actor
}
