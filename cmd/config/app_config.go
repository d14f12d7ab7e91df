package config

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"foodgram/domain"
	"foodgram/internal/api/handlers"
	"foodgram/internal/api/presenters"
	"foodgram/internal/api/routes"
	"foodgram/internal/authz"
	"foodgram/internal/logging"
	"foodgram/internal/middleware"
	"foodgram/internal/utils"
	"foodgram/internal/utils/mailing"
	"foodgram/internal/utils/storage"
	"foodgram/pkg/follow"
	"foodgram/pkg/ingredient"
	"foodgram/pkg/jwt"
	"foodgram/pkg/recipe"
	"foodgram/pkg/tag"
	"foodgram/pkg/user"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")

// Dependencies are the outside-world collaborators of the app. Storage may be
// nil when no object storage is configured.
type Dependencies struct {
	JWTService   jwt.JWTService
	Storage      storage.ObjectStorage
	Mailer       mailing.Mailer
	AccessLog    io.Writer
	RateLimitMax int
}

// LoadDependencies builds Dependencies from the loaded configuration.
func LoadDependencies(ctx context.Context) (Dependencies, error) {
	secret := utils.GetConfig("JWT_SECRET")
	if secret == "" {
		return Dependencies{}, ErrMissingJWTSecret
	}

	tokenStore, err := jwt.NewTokenStore(ctx)
	if err != nil {
		return Dependencies{}, err
	}

	objectStorage, err := storage.New(ctx)
	if err != nil {
		return Dependencies{}, err
	}

	accessLog, err := openAccessLog(utils.GetConfig("ACCESS_LOG_FILE"))
	if err != nil {
		return Dependencies{}, err
	}

	ttl := time.Duration(utils.GetConfigInt("JWT_TTL_MINUTES")) * time.Minute

	return Dependencies{
		JWTService:   jwt.NewJWTService(secret, ttl, tokenStore),
		Storage:      objectStorage,
		Mailer:       mailing.NewMailer(),
		AccessLog:    accessLog,
		RateLimitMax: utils.GetConfigInt("RATE_LIMIT_MAX"),
	}, nil
}

func openAccessLog(path string) (io.Writer, error) {
	switch path {
	case "", "-":
		return os.Stdout, nil
	case "off":
		return io.Discard, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
}

func NewApp(db *gorm.DB, deps Dependencies) (*fiber.App, error) {
	validator := utils.InitValidator()

	enforcer, err := authz.NewEnforcer()
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:      "foodgram",
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: errorHandler,
	})
	middlewares := middleware.NewMiddleware()

	app.Use(recover.New())

	accessLog := deps.AccessLog
	if accessLog == nil {
		accessLog = io.Discard
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: time.DateTime,
		Output:     accessLog,
	}))

	if deps.RateLimitMax > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        deps.RateLimitMax,
			Expiration: 1 * time.Second,
		}))
	}

	mailer := deps.Mailer
	if mailer == nil {
		mailer = mailing.NewMailer()
	}

	// Repository
	userRepository := user.NewUserRepository(db)
	tagRepository := tag.NewTagRepository(db)
	ingredientRepository := ingredient.NewIngredientRepository(db)
	recipeRepository := recipe.NewRecipeRepository(db)
	followRepository := follow.NewFollowRepository(db)

	// Service
	userService := user.NewUserService(userRepository, deps.JWTService, mailer)
	tagService := tag.NewTagService(tagRepository)
	ingredientService := ingredient.NewIngredientService(ingredientRepository)
	recipeService := recipe.NewRecipeService(recipeRepository, tagRepository, ingredientRepository, userRepository, deps.Storage)
	followService := follow.NewFollowService(followRepository, userRepository, recipeRepository)

	// Handler
	routesConfig := routes.Config{
		App:               app,
		UserHandler:       handlers.NewUserHandler(userService, validator),
		FollowHandler:     handlers.NewFollowHandler(followService),
		TagHandler:        handlers.NewTagHandler(tagService, validator),
		IngredientHandler: handlers.NewIngredientHandler(ingredientService, validator),
		RecipeHandler:     handlers.NewRecipeHandler(recipeService, validator),
		Middleware:        middlewares,
		JWTService:        deps.JWTService,
		Enforcer:          enforcer,
	}
	routesConfig.Setup()
	return app, nil
}

// errorHandler renders errors that escape the handlers, such as unmatched
// routes and recovered panics, in the usual envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code == fiber.StatusInternalServerError {
		logging.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("unhandled error")
		return presenters.ErrorResponse(c, code, domain.MessageFailedProcessRequest, errors.New("internal server error"))
	}
	return presenters.ErrorResponse(c, code, err.Error(), err)
}
