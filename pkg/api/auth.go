package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/Procodx/familyGuardian/pkg/storage"
)

const accessTokenTTL = 24 * time.Hour

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int    `json:"expiresIn"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func (h *Handler) handleLogin(c echo.Context) error {
	r := &loginRequest{}
	if err := c.Bind(r); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid request body"})
	}

	operator, err := h.store.Operators().FindByEmail(r.Email)
	if err == storage.ErrNotFound {
		// Same response as a wrong password, the existence of an account is
		// not disclosed.
		return c.JSON(http.StatusUnauthorized, errorResponse{Message: "invalid credentials"})
	} else if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: err.Error()})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(operator.PasswordHash), []byte(r.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, errorResponse{Message: "invalid credentials"})
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  operator.Email,
		"role": operator.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(accessTokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.cfg.JWTSecret))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: err.Error()})
	}

	log.Infof("api issued access token for operator '%s'", operator.Email)

	return c.JSON(http.StatusOK, loginResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int(accessTokenTTL.Seconds()),
	})
}

// requireOperator guards mutating routes with a bearer token check. Without a
// configured secret the guard is disabled.
func (h *Handler) requireOperator(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.cfg.JWTSecret == "" {
			return next(c)
		}

		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return c.JSON(http.StatusUnauthorized, errorResponse{Message: "missing bearer token"})
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		_, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, echo.NewHTTPError(http.StatusUnauthorized, "unexpected signing method")
			}
			return []byte(h.cfg.JWTSecret), nil
		})
		if err != nil {
			return c.JSON(http.StatusUnauthorized, errorResponse{Message: "invalid token"})
		}

		return next(c)
	}
}
