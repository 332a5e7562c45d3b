package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ledger-api/internal/patch"
	"ledger-api/internal/service"
)

type profileRequest struct {
	FullName string  `json:"full_name"`
	Phone    string  `json:"phone"`
	Address  *string `json:"address"`
}

type createUserRequest struct {
	Username         string         `json:"username"`
	Password         string         `json:"password"`
	Email            string         `json:"email"`
	RegistrationDate *string        `json:"registration_date"`
	Profile          profileRequest `json:"profile"`
}

type updateUserRequest struct {
	Password string `json:"password"`
	Email    string `json:"email"`
	Profile  struct {
		Phone   string  `json:"phone"`
		Address *string `json:"address"`
	} `json:"profile"`
}

func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := service.NewUser{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		FullName: req.Profile.FullName,
		Phone:    req.Profile.Phone,
		Address:  req.Profile.Address,
	}
	if req.RegistrationDate != nil && *req.RegistrationDate != "" {
		day, err := time.Parse(dateLayout, *req.RegistrationDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "registration_date must look like 2006-01-02"})
			return
		}
		in.RegisteredAt = &day
	}

	user, err := h.users.Create(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userToResponse(*user))
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	if len(users) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(users[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := parseID(c, "user")
	if !ok {
		return
	}

	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) updateUser(c *gin.Context) {
	id, ok := parseID(c, "user")
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Update(c.Request.Context(), id, service.UserUpdate{
		Password: req.Password,
		Email:    req.Email,
		Phone:    req.Profile.Phone,
		Address:  req.Profile.Address,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) patchUser(c *gin.Context) {
	id, ok := parseID(c, "user")
	if !ok {
		return
	}

	var p patch.UserPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if p.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "patch document names no field"})
		return
	}

	user, err := h.users.Patch(c.Request.Context(), id, p)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) patchProfile(c *gin.Context) {
	id, ok := parseID(c, "user")
	if !ok {
		return
	}

	var p patch.ProfilePatch
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if p.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "patch document names no field"})
		return
	}

	user, err := h.users.PatchProfile(c.Request.Context(), id, p)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := parseID(c, "user")
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}
