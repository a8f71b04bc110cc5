package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/claridapp/clarid/app/models"
	"github.com/claridapp/clarid/app/repository"
	"github.com/claridapp/clarid/internal/pkg/session"
	"github.com/claridapp/clarid/internal/pkg/usercontext"
)

// AuthController handles registration, login and logout with cookie sessions.
type AuthController struct {
	users repository.UserRepository
}

// NewAuthController creates an auth controller from an injected repository.
func NewAuthController(users repository.UserRepository) *AuthController {
	return &AuthController{users: users}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates a new account with the default signup credits and
// starts a session.
func (a *AuthController) HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid request body"})
	}

	user, err := models.CreateUser(req.Name, strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	}

	if _, err := a.users.GetByEmail(user.Email); err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "conflict", "message": "email already registered"})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "registration failed"})
	}

	if err := a.users.Create(user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "registration failed"})
	}

	if err := a.startSession(c, user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "session setup failed"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":      user.ID,
		"email":   user.Email,
		"credits": user.Credits,
		"tier":    user.Tier,
	})
}

// HandleLogin verifies credentials and starts a session.
func (a *AuthController) HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid request body"})
	}

	// notice: in production you should not inform the user
	// with detailed messages about login failures
	user, err := a.users.GetByEmail(req.Email)
	if err != nil || !user.CheckPassword(req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "invalid credentials"})
	}
	if !user.IsActive() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "account disabled"})
	}

	if err := a.startSession(c, user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "session setup failed"})
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := a.users.Update(user); err != nil {
		// Non-fatal; the login itself succeeded.
		_ = err
	}

	return c.JSON(fiber.Map{
		"id":      user.ID,
		"email":   user.Email,
		"credits": user.Credits,
		"tier":    user.Tier,
	})
}

// HandleLogout destroys the session.
func (a *AuthController) HandleLogout(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err == nil {
		_ = sess.Destroy()
	}
	c.Locals(usercontext.KeyFromProtected, false)
	return c.JSON(fiber.Map{"success": true})
}

func (a *AuthController) startSession(c *fiber.Ctx, user *models.User) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return err
	}

	sess.Set(usercontext.AuthKey, true)
	sess.Set(usercontext.KeyUserID, user.ID)
	sess.Set(usercontext.KeyUsername, user.Name)
	if err := sess.Save(); err != nil {
		return err
	}

	_ = session.SetSessionValue(c, "user_email", user.Email)
	_ = session.SetSessionValue(c, "user_tier", user.Tier)
	return nil
}
