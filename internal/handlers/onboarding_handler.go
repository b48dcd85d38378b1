package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/peermentor/backend/internal/models"
	"github.com/peermentor/backend/internal/repositories"
)

// OnboardingHandler drives the multi-step onboarding wizard. Each step
// validates its own payload and advances the user's onboarding state;
// steps can be revisited but never skipped ahead.
type OnboardingHandler struct {
	userRepository repositories.UserRepository
}

// NewOnboardingHandler creates a new OnboardingHandler
func NewOnboardingHandler(userRepo repositories.UserRepository) *OnboardingHandler {
	return &OnboardingHandler{userRepository: userRepo}
}

// RegisterOnboardingRoutes registers onboarding wizard routes
func (h *OnboardingHandler) RegisterOnboardingRoutes(g *echo.Group) {
	g.GET("/onboarding", h.GetState)
	g.PUT("/onboarding/role", h.SubmitRole)
	g.PUT("/onboarding/profile", h.SubmitProfile)
	g.PUT("/onboarding/interests", h.SubmitInterests)
	g.POST("/onboarding/complete", h.Complete)
}

// GetState returns the user's current wizard position
func (h *OnboardingHandler) GetState(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"step":     user.OnboardingStep,
			"complete": user.OnboardingComplete,
		},
	})
}

// SubmitRole records the mentor/student choice (step 1)
func (h *OnboardingHandler) SubmitRole(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	var req models.OnboardingRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user.Role = req.Role
	if user.OnboardingStep < models.OnboardingStepProfile {
		user.OnboardingStep = models.OnboardingStepProfile
	}

	if err := h.userRepository.UpdateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"step": user.OnboardingStep}})
}

// SubmitProfile records name, headline and bio (step 2)
func (h *OnboardingHandler) SubmitProfile(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	if user.OnboardingStep < models.OnboardingStepProfile {
		return echo.NewHTTPError(http.StatusConflict, "Role must be chosen first")
	}

	var req models.OnboardingProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user.Name = req.Name
	user.Headline = req.Headline
	user.Bio = req.Bio
	if user.OnboardingStep < models.OnboardingStepInterests {
		user.OnboardingStep = models.OnboardingStepInterests
	}

	if err := h.userRepository.UpdateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"step": user.OnboardingStep}})
}

// SubmitInterests records expertise/interest tags (step 3)
func (h *OnboardingHandler) SubmitInterests(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	if user.OnboardingStep < models.OnboardingStepInterests {
		return echo.NewHTTPError(http.StatusConflict, "Profile step must be completed first")
	}

	var req models.OnboardingInterestsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user.Expertise = req.Expertise
	if user.OnboardingStep < models.OnboardingStepDone {
		user.OnboardingStep = models.OnboardingStepDone
	}

	if err := h.userRepository.UpdateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"step": user.OnboardingStep}})
}

// Complete marks onboarding finished once all steps are done
func (h *OnboardingHandler) Complete(c echo.Context) error {
	user, err := currentUser(c, h.userRepository)
	if err != nil {
		return err
	}

	if user.OnboardingStep < models.OnboardingStepDone {
		return echo.NewHTTPError(http.StatusConflict, "All onboarding steps must be completed first")
	}

	user.OnboardingComplete = true
	if err := h.userRepository.UpdateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"complete": true}})
}
