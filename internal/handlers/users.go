package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"articles-api/internal/events"
	"articles-api/internal/hash"
	"articles-api/internal/logging"
	authmw "articles-api/internal/middleware/auth"
	"articles-api/internal/models"
	"articles-api/internal/token"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type UserHandler struct {
	DB       *gorm.DB
	Tokens   *token.Issuer
	Producer *events.Producer
}

type signupRequest struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Admin    bool   `json:"admin"`
}

func (r signupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Surname, validation.Required),
		validation.Field(&r.Email, validation.Required, is.Email),
		// bcrypt ignores everything past 72 bytes
		validation.Field(&r.Password, validation.Required, validation.Length(0, 72)),
	)
}

// userPatch distinguishes "absent" from "set to zero value": only non-nil
// fields overwrite.
type userPatch struct {
	Name     *string `json:"name"`
	Surname  *string `json:"surname"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Admin    *bool   `json:"admin"`
}

func (r userPatch) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, is.Email),
		validation.Field(&r.Password, validation.Length(0, 72)),
	)
}

func (h *UserHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := req.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	ctx := c.Request().Context()

	var existing models.User
	result := h.DB.WithContext(ctx).Where("email = ?", req.Email).First(&existing)
	if result.Error == nil {
		return echo.NewHTTPError(http.StatusNotAcceptable, "a user with this email is already registered")
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, result.Error.Error())
	}

	user := models.User{
		Name:         req.Name,
		Surname:      req.Surname,
		Email:        req.Email,
		PasswordHash: pwHash,
		Admin:        req.Admin,
	}
	if err := h.DB.WithContext(ctx).Create(&user).Error; err != nil {
		// two signups raced past the existence check
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return echo.NewHTTPError(http.StatusNotAcceptable, "a user with this email is already registered")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, events.TopicUserEvents, user.ID, map[string]any{
		"type":    "user_registered",
		"user_id": user.ID,
		"email":   user.Email,
	})

	return c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email" form:"username"`
		Password string `json:"password" form:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.authenticate(c, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusBadRequest, "incorrect email or password")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	accessToken, err := h.Tokens.Issue(strconv.FormatUint(uint64(user.ID), 10))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, events.TopicUserEvents, user.ID, map[string]any{
		"type":    "user_logged_in",
		"user_id": user.ID,
		"email":   user.Email,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"access_token": accessToken,
		"token_type":   "bearer",
	})
}

// authenticate looks the user up by exact email match and verifies the
// password. Unknown email and wrong password are indistinguishable to the
// caller.
func (h *UserHandler) authenticate(c echo.Context, email, password string) (*models.User, error) {
	var user models.User
	if err := h.DB.WithContext(c.Request().Context()).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (h *UserHandler) Logged(c echo.Context) error {
	return c.JSON(http.StatusOK, authmw.CurrentUser(c))
}

func (h *UserHandler) List(c echo.Context) error {
	var users []models.User
	if err := h.DB.WithContext(c.Request().Context()).Order("id ASC").Find(&users).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var user models.User
	if err := h.DB.WithContext(c.Request().Context()).Preload("Articles").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Update(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var req userPatch
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := req.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()

	var user models.User
	if err := h.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	current := authmw.CurrentUser(c)
	if current.ID != user.ID && !current.Admin {
		return echo.NewHTTPError(http.StatusForbidden, "only the user themself or an admin can update this account")
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Surname != nil {
		user.Surname = *req.Surname
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Admin != nil {
		user.Admin = *req.Admin
	}
	if req.Password != nil {
		pwHash, err := hash.HashPassword(*req.Password)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		user.PasswordHash = pwHash
	}

	if err := h.DB.WithContext(ctx).Save(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return echo.NewHTTPError(http.StatusNotAcceptable, "a user with this email is already registered")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, events.TopicUserEvents, user.ID, map[string]any{
		"type":    "user_updated",
		"user_id": user.ID,
	})

	return c.JSON(http.StatusAccepted, user)
}

func (h *UserHandler) Delete(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	ctx := c.Request().Context()

	var user models.User
	if err := h.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	current := authmw.CurrentUser(c)
	if current.ID != user.ID && !current.Admin {
		return echo.NewHTTPError(http.StatusForbidden, "only the user themself or an admin can delete this account")
	}

	// Select("Articles") deletes the owned articles in the same call, so the
	// cascade holds even on dialects that do not enforce the FK constraint.
	if err := h.DB.WithContext(ctx).Select("Articles").Delete(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, events.TopicUserEvents, user.ID, map[string]any{
		"type":    "user_deleted",
		"user_id": user.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}

func (h *UserHandler) publish(c echo.Context, topic string, key uint, event map[string]any) {
	publish(c, h.Producer, topic, key, event)
}

func publish(c echo.Context, p *events.Producer, topic string, key uint, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, strconv.FormatUint(uint64(key), 10), event); err != nil {
		logging.FromContext(ctx).Error("event publish failed", "topic", topic, "error", err)
	}
}
