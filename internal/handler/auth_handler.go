package handler

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/akuzmin/shortlinks/internal/config"
	"github.com/akuzmin/shortlinks/internal/models"
	"github.com/akuzmin/shortlinks/internal/repository"
	"github.com/akuzmin/shortlinks/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

const tokenTTL = 24 * time.Hour

type AuthHandler struct {
	users         service.UserService
	jwtSecret     []byte
	secureCookies bool
	googleConfig  *oauth2.Config
	githubConfig  *oauth2.Config
	logger        *zap.Logger
}

func NewAuthHandler(users service.UserService, cfg *config.Config, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		users:         users,
		jwtSecret:     []byte(cfg.Auth.JWTSecret),
		secureCookies: strings.HasPrefix(cfg.App.BaseURL, "https://"),
		googleConfig: &oauth2.Config{
			ClientID:     cfg.OAuth.GoogleClientID,
			ClientSecret: cfg.OAuth.GoogleClientSecret,
			RedirectURL:  cfg.OAuth.GoogleRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		githubConfig: &oauth2.Config{
			ClientID:     cfg.OAuth.GithubClientID,
			ClientSecret: cfg.OAuth.GithubClientSecret,
			RedirectURL:  cfg.OAuth.GithubRedirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		logger: logger,
	}
}

type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SigninRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Signup godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Credentials"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	token, err := h.issueToken(user.ID)
	if err != nil {
		h.logger.Error("Failed to issue token", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to issue token")
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{Token: token, User: user})
}

// Signin godoc
// @Summary Sign in with username and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SigninRequest true "Credentials"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/auth/signin [post]
func (h *AuthHandler) Signin(c *gin.Context) {
	var req SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondAuthError(c, err)
		return
	}

	token, err := h.issueToken(user.ID)
	if err != nil {
		h.logger.Error("Failed to issue token", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to issue token")
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token, User: user})
}

// GoogleLogin перенаправляет на страницу согласия Google
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state := h.setStateCookie(c)
	c.Redirect(http.StatusTemporaryRedirect, h.googleConfig.AuthCodeURL(state))
}

// GoogleCallback обменивает код на токен, забирает профиль и выдаёт JWT
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	token, ok := h.exchange(c, h.googleConfig)
	if !ok {
		return
	}

	resp, err := http.Get("https://www.googleapis.com/oauth2/v2/userinfo?access_token=" + token.AccessToken)
	if err != nil {
		h.logger.Error("Failed to get Google user info", zap.Error(err))
		respondError(c, http.StatusBadGateway, "oauth_error", "Failed to get user info")
		return
	}
	defer resp.Body.Close()

	var googleUser struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&googleUser); err != nil {
		respondError(c, http.StatusBadGateway, "oauth_error", "Failed to decode user info")
		return
	}

	h.finishOAuth(c, &service.OAuthProfile{
		Provider:   models.ProviderGoogle,
		ProviderID: googleUser.ID,
		Username:   googleUser.Name,
		Email:      googleUser.Email,
		Avatar:     googleUser.Picture,
	})
}

// GithubLogin перенаправляет на страницу авторизации GitHub
func (h *AuthHandler) GithubLogin(c *gin.Context) {
	state := h.setStateCookie(c)
	c.Redirect(http.StatusTemporaryRedirect, h.githubConfig.AuthCodeURL(state))
}

// GithubCallback обменивает код, забирает профиль и primary email
func (h *AuthHandler) GithubCallback(c *gin.Context) {
	token, ok := h.exchange(c, h.githubConfig)
	if !ok {
		return
	}

	client := h.githubConfig.Client(c.Request.Context(), token)

	var githubUser struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		AvatarURL string `json:"avatar_url"`
	}
	if !fetchJSON(client, "https://api.github.com/user", &githubUser) {
		respondError(c, http.StatusBadGateway, "oauth_error", "Failed to get user info")
		return
	}

	var emails []struct {
		Email   string `json:"email"`
		Primary bool   `json:"primary"`
	}
	if !fetchJSON(client, "https://api.github.com/user/emails", &emails) || len(emails) == 0 {
		respondError(c, http.StatusBadGateway, "oauth_error", "No email found in GitHub account")
		return
	}
	email := emails[0].Email
	for _, e := range emails {
		if e.Primary {
			email = e.Email
			break
		}
	}

	h.finishOAuth(c, &service.OAuthProfile{
		Provider:   models.ProviderGithub,
		ProviderID: fmt.Sprintf("%d", githubUser.ID),
		Username:   githubUser.Login,
		Email:      email,
		Avatar:     githubUser.AvatarURL,
	})
}

// setStateCookie генерирует anti-CSRF state и кладёт его в cookie.
// Secure выставляется, когда сервис опубликован по https.
func (h *AuthHandler) setStateCookie(c *gin.Context) string {
	state := rand.Text()
	c.SetCookie("oauthstate", state, int(tokenTTL.Seconds()), "/", "", h.secureCookies, true)
	return state
}

// exchange проверяет state и меняет authorization code на access token
func (h *AuthHandler) exchange(c *gin.Context, cfg *oauth2.Config) (*oauth2.Token, bool) {
	state, err := c.Cookie("oauthstate")
	if err != nil || c.Query("state") != state {
		respondError(c, http.StatusBadRequest, "invalid_state", "Invalid OAuth state")
		return nil, false
	}

	code := c.Query("code")
	if code == "" {
		respondError(c, http.StatusBadRequest, "missing_code", "No authorization code provided")
		return nil, false
	}

	token, err := cfg.Exchange(c.Request.Context(), code)
	if err != nil {
		h.logger.Error("OAuth code exchange failed", zap.Error(err))
		respondError(c, http.StatusBadGateway, "oauth_error", "Code exchange failed")
		return nil, false
	}

	return token, true
}

func (h *AuthHandler) finishOAuth(c *gin.Context, profile *service.OAuthProfile) {
	user, err := h.users.UpsertOAuthUser(c.Request.Context(), profile)
	if err != nil {
		h.logger.Error("OAuth upsert failed", zap.String("provider", string(profile.Provider)), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to sign in")
		return
	}

	token, err := h.issueToken(user.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to issue token")
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token, User: user})
}

// issueToken выдаёт HS256 JWT с id пользователя в subject
func (h *AuthHandler) issueToken(userID uuid.UUID) (string, error) {
	claims := &jwt.RegisteredClaims{
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.jwtSecret)
}

func (h *AuthHandler) respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUsernameRequired), errors.Is(err, service.ErrPasswordTooShort):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, repository.ErrUserExists):
		respondError(c, http.StatusConflict, "username_taken", "Username already exists")
	default:
		h.logger.Error("Auth operation failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

func fetchJSON(client *http.Client, url string, out any) bool {
	resp, err := client.Get(url)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}
	return json.NewDecoder(resp.Body).Decode(out) == nil
}
