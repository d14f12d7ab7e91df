package routes

import (
	"foodgram/internal/api/handlers"
	"foodgram/internal/api/presenters"
	"foodgram/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Config struct {
	App               *fiber.App
	UserHandler       handlers.UserHandler
	FollowHandler     handlers.FollowHandler
	TagHandler        handlers.TagHandler
	IngredientHandler handlers.IngredientHandler
	RecipeHandler     handlers.RecipeHandler
	Middleware        middleware.Middleware
	JWTService        middleware.TokenValidator
	Enforcer          middleware.RouteEnforcer
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.App.Use(c.Middleware.MetricsMiddleware())
	c.App.Use(c.Middleware.AuthMiddleware(c.JWTService))
	c.GuestRoute()
	c.Auth()
	c.User()
	c.Catalog()
	c.Recipe()
}

// gate must sit on the route itself so the enforcer sees the matched pattern.
func (c *Config) gate() fiber.Handler {
	return c.Middleware.Authorize(c.Enforcer)
}

// actionRoute registers POST/DELETE on an action endpoint and answers the
// remaining verbs with 405 once the caller is past the gate.
func (c *Config) actionRoute(r fiber.Router, path string, add, remove fiber.Handler) {
	r.Post(path, c.gate(), add)
	r.Delete(path, c.gate(), remove)
	for _, method := range []string{fiber.MethodGet, fiber.MethodPut, fiber.MethodPatch} {
		r.Add(method, path, c.gate(), presenters.MethodNotAllowed)
	}
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", c.gate(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
	c.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

func (c *Config) Auth() {
	auth := c.App.Group("/api/auth/token")
	{
		auth.Post("/login", c.gate(), c.UserHandler.Login)
		auth.Post("/logout", c.gate(), c.UserHandler.Logout)
	}
}

func (c *Config) User() {
	user := c.App.Group("/api/users")
	// fixed segments before /:id
	{
		user.Get("", c.gate(), c.UserHandler.GetUsers)
		user.Post("", c.gate(), c.UserHandler.Register)
		user.Get("/me", c.gate(), c.UserHandler.Me)
		user.Post("/set_password", c.gate(), c.UserHandler.SetPassword)
		user.Get("/subscriptions", c.gate(), c.FollowHandler.GetSubscriptions)
		user.Get("/:id", c.gate(), c.UserHandler.GetUserByID)
		c.actionRoute(user, "/:id/subscribe", c.FollowHandler.Subscribe, c.FollowHandler.Unsubscribe)
	}
}

func (c *Config) Catalog() {
	tags := c.App.Group("/api/tags")
	{
		tags.Get("", c.gate(), c.TagHandler.GetTags)
		tags.Post("", c.gate(), c.TagHandler.CreateTag)
		tags.Get("/:id", c.gate(), c.TagHandler.GetTagByID)
	}

	ingredients := c.App.Group("/api/ingredients")
	{
		ingredients.Get("", c.gate(), c.IngredientHandler.SearchIngredients)
		ingredients.Post("", c.gate(), c.IngredientHandler.CreateIngredient)
		ingredients.Get("/:id", c.gate(), c.IngredientHandler.GetIngredientByID)
	}
}

func (c *Config) Recipe() {
	recipes := c.App.Group("/api/recipes")
	{
		recipes.Get("", c.gate(), c.RecipeHandler.GetRecipes)
		recipes.Post("", c.gate(), c.RecipeHandler.CreateRecipe)
		recipes.Get("/download_shopping_cart", c.gate(), c.RecipeHandler.DownloadShoppingList)
		recipes.Get("/:id", c.gate(), c.RecipeHandler.GetRecipeDetail)
		recipes.Put("/:id", c.gate(), c.RecipeHandler.UpdateRecipe)
		recipes.Patch("/:id", c.gate(), c.RecipeHandler.UpdateRecipe)
		recipes.Delete("/:id", c.gate(), c.RecipeHandler.DeleteRecipe)
		c.actionRoute(recipes, "/:id/favorite", c.RecipeHandler.AddFavorite, c.RecipeHandler.RemoveFavorite)
		c.actionRoute(recipes, "/:id/shopping_cart", c.RecipeHandler.AddToShoppingCart, c.RecipeHandler.RemoveFromShoppingCart)
	}
}
