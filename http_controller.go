package auth

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/loadline/authd/middleware/jwtware"
)

// AuthControllerRoutes holds the paths the controller mounts its handlers on
type AuthControllerRoutes struct {
	Register      string
	Login         string
	Profile       string
	UpdateProfile string
	Data          string
	Health        string
}

// GetDefaultControllerRoutes mirrors the paths of the original deployment
func GetDefaultControllerRoutes() AuthControllerRoutes {
	return AuthControllerRoutes{
		Register:      "/auth/register",
		Login:         "/auth/login",
		Profile:       "/api/profile",
		UpdateProfile: "/api/update-profile",
		Data:          "/api/data",
		Health:        "/health",
	}
}

// AuthController exposes registration, login, and the guarded profile
// endpoints as a JSON API.
type AuthController struct {
	Debug      bool
	Logger     Logger
	Users      Users
	Auther     Authenticator
	HashCost   int
	ContextKey string
	Routes     AuthControllerRoutes

	registerHandler *RegisterUserHandler
	updateHandler   *UpdateProfileHandler
}

// NewAuthController will create a new controller. Users and an
// Authenticator are required.
func NewAuthController(opts ...AuthControllerOption) *AuthController {
	controller := &AuthController{
		Logger:     defLogger{},
		ContextKey: "user",
		Routes:     GetDefaultControllerRoutes(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(controller)
		}
	}

	if controller.Users == nil {
		panic("AUTH: AuthController requires a Users repository")
	}

	if controller.Auther == nil {
		panic("AUTH: AuthController requires an Authenticator")
	}

	controller.registerHandler = NewRegisterUserHandler(controller.Users).
		WithHashCost(controller.HashCost)
	controller.updateHandler = NewUpdateProfileHandler(controller.Users)

	return controller
}

type AuthControllerOption func(*AuthController)

func WithUsers(users Users) AuthControllerOption {
	return func(c *AuthController) {
		c.Users = users
	}
}

func WithAuthenticator(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) {
		c.Auther = auther
	}
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

func WithDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) {
		c.Debug = debug
	}
}

func WithHashCost(cost int) AuthControllerOption {
	return func(c *AuthController) {
		c.HashCost = cost
	}
}

func WithRoutes(routes AuthControllerRoutes) AuthControllerOption {
	return func(c *AuthController) {
		c.Routes = routes
	}
}

// RegisterRequest is the payload for POST /auth/register
type RegisterRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Name     string `json:"name" form:"name"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.Name, validation.Required),
	)
}

// LoginRequest is the payload for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// UpdateProfileRequest is the payload for POST /api/update-profile
type UpdateProfileRequest struct {
	Name string `json:"name" form:"name"`
}

func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
	)
}

// RegisterPost handles new account creation. A duplicate email is rejected
// with a 400 carrying the EMAIL_TAKEN text code.
func (a *AuthController) RegisterPost(c *fiber.Ctx) error {
	start := time.Now()

	payload := RegisterRequest{}
	if err := c.BodyParser(&payload); err != nil {
		a.Logger.Error("RegisterPost body parse error: %v", err)
		return renderError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body").
			WithCode(goerrors.CodeBadRequest), start)
	}

	if err := payload.Validate(); err != nil {
		return renderValidationError(c, err, start)
	}

	if a.Debug {
		a.Logger.Debug("RegisterPost payload: %s", print.MaybePrettyJSON(RegisterRequest{
			Email: payload.Email,
			Name:  payload.Name,
		}))
	}

	var created *User
	msg := RegisterUserMessage{
		Email:    payload.Email,
		Name:     payload.Name,
		Password: payload.Password,
		OnResponse: func(u *User) {
			created = u
		},
	}

	if err := a.registerHandler.Execute(c.UserContext(), msg); err != nil {
		return renderError(c, err, start)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "User registered successfully",
		"userId":       created.ID.String(),
		"email":        created.Email,
		"responseTime": elapsed(start),
	})
}

// LoginPost verifies credentials and issues a bearer token. Unknown users
// and wrong passwords produce the exact same response body and status.
func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	start := time.Now()

	payload := LoginRequest{}
	if err := c.BodyParser(&payload); err != nil {
		a.Logger.Error("LoginPost body parse error: %v", err)
		return renderError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body").
			WithCode(goerrors.CodeBadRequest), start)
	}

	if err := payload.Validate(); err != nil {
		return renderValidationError(c, err, start)
	}

	token, identity, err := a.Auther.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return renderError(c, err, start)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":      "Login successful",
		"token":        token,
		"userId":       identity.ID(),
		"email":        identity.Email(),
		"expiresIn":    int(a.Auther.TokenService().TTL().Seconds()),
		"responseTime": elapsed(start),
	})
}

// ProfileGet returns the stored record for the subject of the verified
// token. The password hash never appears in the response.
func (a *AuthController) ProfileGet(c *fiber.Ctx) error {
	start := time.Now()

	claims, ok := ClaimsFromLocals(c, a.ContextKey)
	if !ok {
		return renderError(c, ErrUnableToMapClaims, start)
	}

	user, err := a.Users.GetByID(c.UserContext(), claims.UserID())
	if err != nil {
		if goerrors.IsNotFound(err) {
			return renderError(c, goerrors.New("user not found", goerrors.CategoryNotFound).
				WithCode(goerrors.CodeNotFound), start)
		}
		a.Logger.Error("ProfileGet lookup error: %v", err)
		return renderError(c, err, start)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user":         user,
		"responseTime": elapsed(start),
	})
}

// UpdateProfilePost changes the display name of the token's subject
func (a *AuthController) UpdateProfilePost(c *fiber.Ctx) error {
	start := time.Now()

	claims, ok := ClaimsFromLocals(c, a.ContextKey)
	if !ok {
		return renderError(c, ErrUnableToMapClaims, start)
	}

	payload := UpdateProfileRequest{}
	if err := c.BodyParser(&payload); err != nil {
		a.Logger.Error("UpdateProfilePost body parse error: %v", err)
		return renderError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body").
			WithCode(goerrors.CodeBadRequest), start)
	}

	if err := payload.Validate(); err != nil {
		return renderValidationError(c, err, start)
	}

	var updated *User
	msg := UpdateProfileMessage{
		UserID: claims.UserID(),
		Name:   payload.Name,
		OnResponse: func(u *User) {
			updated = u
		},
	}

	if err := a.updateHandler.Execute(c.UserContext(), msg); err != nil {
		return renderError(c, err, start)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":      "Profile updated successfully",
		"user":         updated,
		"responseTime": elapsed(start),
	})
}

// DataGet serves a demo payload behind the guard
func (a *AuthController) DataGet(c *fiber.Ctx) error {
	start := time.Now()

	claims, ok := ClaimsFromLocals(c, a.ContextKey)
	if !ok {
		return renderError(c, ErrUnableToMapClaims, start)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Protected data retrieved",
		"data": fiber.Map{
			"sampleData":  []string{"item1", "item2", "item3"},
			"accessLevel": "authenticated",
			"user":        claims.Email(),
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		},
		"responseTime": elapsed(start),
	})
}

// Health reports process liveness plus store connectivity
func (a *AuthController) Health(c *fiber.Ctx) error {
	store := "connected"
	status := "OK"

	if err := a.Users.Ping(c.UserContext()); err != nil {
		a.Logger.Warn("Health store ping failed: %v", err)
		store = "disconnected"
		status = "DEGRADED"
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"store":     store,
	})
}

// Index lists the mounted endpoints
func (a *AuthController) Index(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Auth service",
		"endpoints": fiber.Map{
			"register":      "POST " + a.Routes.Register,
			"login":         "POST " + a.Routes.Login,
			"profile":       "GET " + a.Routes.Profile,
			"updateProfile": "POST " + a.Routes.UpdateProfile,
			"data":          "GET " + a.Routes.Data,
			"health":        "GET " + a.Routes.Health,
		},
	})
}

// RegisterAuthRoutes mounts the controller on the app. The guard protects
// everything under /api; register, login, health, and the index stay open.
func RegisterAuthRoutes(app *fiber.App, controller *AuthController, guard fiber.Handler) {
	routes := controller.Routes

	app.Get("/", controller.Index)
	app.Get(routes.Health, controller.Health)

	app.Post(routes.Register, controller.RegisterPost)
	app.Post(routes.Login, controller.LoginPost)

	app.Get(routes.Profile, guard, controller.ProfileGet)
	app.Post(routes.UpdateProfile, guard, controller.UpdateProfilePost)
	app.Get(routes.Data, guard, controller.DataGet)
}

// ProtectedRoute builds the bearer-token guard from the shared config and
// token service.
func ProtectedRoute(cfg Config, ts TokenService) fiber.Handler {
	return jwtware.New(jwtware.Config{
		ContextKey:     cfg.GetContextKey(),
		TokenLookup:    cfg.GetTokenLookup(),
		AuthScheme:     cfg.GetAuthScheme(),
		TokenValidator: guardValidator{ts: ts},
		ContextEnricher: func(ctx context.Context, claims jwtware.AuthClaims) context.Context {
			if ac, ok := claims.(AuthClaims); ok {
				return WithClaimsContext(ctx, ac)
			}
			return ctx
		},
	})
}

// guardValidator adapts TokenService to the middleware's mirror interface.
// AuthClaims here is a superset of jwtware.AuthClaims so the concrete
// claims value passes through unchanged.
type guardValidator struct {
	ts TokenService
}

func (g guardValidator) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := g.ts.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func renderError(c *fiber.Ctx, err error, start time.Time) error {
	status := HTTPStatus(err)

	message := "Internal server error"
	var rich *goerrors.Error
	if goerrors.As(err, &rich) && status < 500 {
		message = rich.Message
	}

	body := fiber.Map{
		"message":      message,
		"responseTime": elapsed(start),
	}

	if goerrors.As(err, &rich) && rich.TextCode != "" && status < 500 {
		body["code"] = rich.TextCode
	}

	return c.Status(status).JSON(body)
}

func renderValidationError(c *fiber.Ctx, err error, start time.Time) error {
	body := fiber.Map{
		"message":      "Validation failed",
		"responseTime": elapsed(start),
	}

	if fields, ok := err.(validation.Errors); ok {
		body["errors"] = formatValidationErrors(fields)
	} else {
		body["errors"] = err.Error()
	}

	return c.Status(fiber.StatusBadRequest).JSON(body)
}

func formatValidationErrors(errs validation.Errors) map[string]string {
	out := make(map[string]string, len(errs))
	for field, err := range errs {
		out[field] = err.Error()
	}
	return out
}

func elapsed(start time.Time) string {
	return fmt.Sprintf("%dms", time.Since(start).Milliseconds())
}
