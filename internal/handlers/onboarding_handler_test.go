package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/peermentor/backend/internal/middleware"
	"github.com/peermentor/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOnboardingTest(step int) (*OnboardingHandler, *fakeUserRepo) {
	userRepo := &fakeUserRepo{byUID: map[string]*models.User{
		"u1": {Name: "User One", FirebaseUID: "u1", OnboardingStep: step},
	}}
	return NewOnboardingHandler(userRepo), userRepo
}

func newJSONContext(method, uid, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if uid != "" {
		c.Set(middleware.ContextKeyFirebaseUID, uid)
	}
	return c, rec
}

func TestOnboardingRoleAdvancesStep(t *testing.T) {
	handler, userRepo := newOnboardingTest(models.OnboardingStepRole)

	c, rec := newJSONContext(http.MethodPut, "u1", `{"role":"mentor"}`)
	require.NoError(t, handler.SubmitRole(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	user := userRepo.byUID["u1"]
	assert.Equal(t, models.RoleMentor, user.Role)
	assert.Equal(t, models.OnboardingStepProfile, user.OnboardingStep)
}

func TestOnboardingRoleRejectsUnknownRole(t *testing.T) {
	handler, _ := newOnboardingTest(models.OnboardingStepRole)

	c, _ := newJSONContext(http.MethodPut, "u1", `{"role":"wizard"}`)
	err := handler.SubmitRole(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestOnboardingProfileRequiresRoleStep(t *testing.T) {
	handler, _ := newOnboardingTest(models.OnboardingStepRole)

	c, _ := newJSONContext(http.MethodPut, "u1", `{"name":"New Name","headline":"Backend mentor"}`)
	err := handler.SubmitProfile(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusConflict, httpErr.Code)
}

func TestOnboardingFullFlow(t *testing.T) {
	handler, userRepo := newOnboardingTest(models.OnboardingStepRole)

	c, _ := newJSONContext(http.MethodPut, "u1", `{"role":"student"}`)
	require.NoError(t, handler.SubmitRole(c))

	c, _ = newJSONContext(http.MethodPut, "u1", `{"name":"Student One","headline":"Learning Go"}`)
	require.NoError(t, handler.SubmitProfile(c))

	c, _ = newJSONContext(http.MethodPut, "u1", `{"expertise":"go, databases"}`)
	require.NoError(t, handler.SubmitInterests(c))

	c, _ = newJSONContext(http.MethodPost, "u1", "")
	require.NoError(t, handler.Complete(c))

	user := userRepo.byUID["u1"]
	assert.Equal(t, models.OnboardingStepDone, user.OnboardingStep)
	assert.True(t, user.OnboardingComplete)
	assert.Equal(t, "Student One", user.Name)
	assert.Equal(t, []string{"go", "databases"}, user.ExpertiseTags())
}

func TestOnboardingCompleteRequiresAllSteps(t *testing.T) {
	handler, _ := newOnboardingTest(models.OnboardingStepInterests)

	c, _ := newJSONContext(http.MethodPost, "u1", "")
	err := handler.Complete(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusConflict, httpErr.Code)
}

func TestOnboardingRevisitingStepDoesNotRegress(t *testing.T) {
	handler, userRepo := newOnboardingTest(models.OnboardingStepDone)

	c, _ := newJSONContext(http.MethodPut, "u1", `{"role":"mentor"}`)
	require.NoError(t, handler.SubmitRole(c))

	user := userRepo.byUID["u1"]
	assert.Equal(t, models.RoleMentor, user.Role)
	assert.Equal(t, models.OnboardingStepDone, user.OnboardingStep)
}
