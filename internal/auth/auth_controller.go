package auth

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/JayPadhiyar-42/scorepact/config"
	"github.com/JayPadhiyar-42/scorepact/internal/user"
	"github.com/JayPadhiyar-42/scorepact/pkg/responses"
	"github.com/JayPadhiyar-42/scorepact/pkg/token"
	"github.com/JayPadhiyar-42/scorepact/utils"
)

type AuthController struct {
	repo   AuthRepository
	config *config.Config
}

func NewAuthController(repo AuthRepository, cfg *config.Config) *AuthController {
	return &AuthController{repo: repo, config: cfg}
}

// Register godoc
// @Summary      Register a new user
// @Description  Create a new user with username, email and password.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        user  body  RegisterRequest  true  "User registration details"
// @Success      201   {object} AuthResponse
// @Failure      409   {object} map[string]string "User already exists"
// @Router       /auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, err)
		return
	}

	if _, err := ac.repo.GetUserByEmail(req.Email); !errors.Is(err, gorm.ErrRecordNotFound) {
		responses.SendError(c, 409, "User with this email already exists")
		return
	}
	if _, err := ac.repo.GetUserByUsername(req.Username); !errors.Is(err, gorm.ErrRecordNotFound) {
		responses.SendError(c, 409, "User with this username already exists")
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		responses.InternalServerError(c, "failed to hash password")
		return
	}

	u := &user.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashed,
	}
	if err := ac.repo.CreateUser(u); err != nil {
		responses.InternalServerError(c, "failed to create user")
		return
	}
	if err := ac.repo.AssignRoleToUser(u.ID, DefaultUserRole); err != nil {
		log.Printf("[auth] failed to assign default role to user %d: %v", u.ID, err)
	}

	accessToken, err := token.GenerateJWT(u.ID, DefaultUserRole, ac.config.JWT.Secret, ac.config.JWT.ExpiryMinutes)
	if err != nil {
		responses.InternalServerError(c, "failed to generate token")
		return
	}

	responses.SendSuccess(c, 201, "user registered", AuthResponse{AccessToken: accessToken, User: u})
}

// Login godoc
// @Summary      Log in with email and password
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        credentials  body  LoginRequest  true  "Login credentials"
// @Success      200   {object} AuthResponse
// @Failure      401   {object} map[string]string "Invalid credentials"
// @Router       /auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendValidationError(c, err)
		return
	}

	u, err := ac.repo.GetUserByEmail(req.Email)
	if err != nil {
		responses.Unauthorized(c, "invalid email or password")
		return
	}
	if !utils.CheckPassword(u.Password, req.Password) {
		responses.Unauthorized(c, "invalid email or password")
		return
	}

	role := DefaultUserRole
	if len(u.Roles) > 0 {
		role = u.Roles[0].Name
	}
	accessToken, err := token.GenerateJWT(u.ID, role, ac.config.JWT.Secret, ac.config.JWT.ExpiryMinutes)
	if err != nil {
		responses.InternalServerError(c, "failed to generate token")
		return
	}

	responses.SendSuccess(c, 200, "login successful", AuthResponse{AccessToken: accessToken, User: u})
}
