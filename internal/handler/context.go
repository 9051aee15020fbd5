package handler

import (
	"errors"

	"worktime/internal/middleware"
	"worktime/internal/model"

	"github.com/gin-gonic/gin"
)

// getAuthUser rebuilds the caller from the claims the JWT middleware stored
func getAuthUser(c *gin.Context) (model.User, error) {
	username := c.GetString(middleware.AuthUserKey)
	if username == "" {
		return model.User{}, errors.New("user not found in context")
	}
	role := c.GetString(middleware.AuthRoleKey)
	if role == "" {
		return model.User{}, errors.New("user role not found in context")
	}
	return model.User{
		Username: username,
		DeviceID: c.GetString(middleware.AuthDeviceKey),
		Role:     role,
	}, nil
}
