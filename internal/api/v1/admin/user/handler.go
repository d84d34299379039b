package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wiktoriatopajew/pipa/internal/models"
	"github.com/wiktoriatopajew/pipa/internal/services"
	"github.com/wiktoriatopajew/pipa/internal/utils"
)

type UpdateUserInput struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// ListUsers returns every regular account, sanitized. The admin account is
// never included.
func ListUsers(c *gin.Context) {
	users, err := services.AllNonAdminUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to fetch users"))
		return
	}

	items := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		items = append(items, u.Public())
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Users retrieved successfully", items))
}

// UpdateUser applies selective field updates to an account. Passwords are
// rehashed by the service before storage.
func UpdateUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid user id"))
		return
	}

	var input UpdateUserInput
	if !utils.BindAndValidate(c, &input) {
		return
	}

	updates := map[string]interface{}{}
	if input.Username != nil {
		updates["username"] = *input.Username
	}
	if input.Email != nil {
		updates["email"] = *input.Email
	}
	if input.Password != nil {
		updates["password"] = *input.Password
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "No fields to update"))
		return
	}

	updated, err := services.UpdateUser(uint(id), updates)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "User not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to update user"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("User updated successfully", updated.Public()))
}
