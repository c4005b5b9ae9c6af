package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// currentUserID returns a string form of the authenticated user id for use
// in rate-limit keys.  Unauthenticated requests map to "anon".  The claim is
// stored by JWTAuth and may arrive as a string or a JSON number depending on
// how the token was minted.
func currentUserID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return fmt.Sprintf("%.0f", v)
	}
	return "anon"
}
