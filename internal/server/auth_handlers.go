package server

import (
	"context"
	"time"

	"booklink/internal/mailer"
	"booklink/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// Register handles POST /api/readers/register. New accounts start unapproved
// and cannot use marketplace actions until a moderator approves them.
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	reader := &models.Reader{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     models.RoleUser,
		IsActive: true,
	}
	if err := reader.Validate(); err != nil {
		return models.RespondError(c, err)
	}

	existing, err := s.readerRepo.GetByEmail(c.UserContext(), req.Email)
	if err != nil {
		return models.RespondError(c, err)
	}
	if existing != nil {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewValidationError("An account with this email already exists"))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondError(c, models.NewInternalError(err))
	}
	reader.Password = string(hashedPassword)

	if err := s.readerRepo.Create(c.UserContext(), reader); err != nil {
		return models.RespondError(c, err)
	}

	s.sendWelcome(reader)

	token, err := s.generateToken(reader.ID)
	if err != nil {
		return models.RespondError(c, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"token":   token,
		"reader":  reader,
	})
}

// Login handles POST /api/readers/login.
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	reader, err := s.readerRepo.GetByEmail(c.UserContext(), req.Email)
	if err != nil {
		return models.RespondError(c, err)
	}
	if reader == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthenticatedError("Invalid credentials"))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(reader.Password), []byte(req.Password)); err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthenticatedError("Invalid credentials"))
	}

	token, err := s.generateToken(reader.ID)
	if err != nil {
		return models.RespondError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"reader":  reader,
	})
}

// Me handles GET /api/readers/me.
func (s *Server) Me(c *fiber.Ctx) error {
	reader, err := s.readerRepo.GetByID(c.UserContext(), s.currentReaderID(c))
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    reader,
	})
}

// sendWelcome dispatches the welcome email without blocking registration.
func (s *Server) sendWelcome(reader *models.Reader) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = s.mail.Send(ctx, reader.Email, mailer.TemplateWelcome,
			mailer.Data{"name": reader.Name})
	}()
}
