package router

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"gtacts/app/controllers"
	"gtacts/app/repository"
	"gtacts/internal/pkg/contacts"
	"gtacts/internal/pkg/database"
	"gtacts/internal/pkg/env"
	"gtacts/internal/pkg/middleware"
	"gtacts/internal/pkg/oauth"
	"gtacts/internal/pkg/session"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// init oauth provider
	oauth.Setup()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	// Wire the credential store and the contacts pipeline
	factory := newRepositoryFactory()
	repository.SetGlobalFactory(factory)
	store := factory.GetCredentialRepository()

	refresher := contacts.NewOAuthRefresher(store,
		env.GetEnv("GOOGLE_KEY", ""),
		env.GetEnv("GOOGLE_SECRET", ""),
	)
	fetcher := contacts.NewFetcher(store, refresher, newNormalizer(),
		contacts.WithFeedURL(env.GetEnv("CONTACTS_FEED_URL", contacts.DefaultFeedURL)),
	)
	controllers.InitializeContactsController(fetcher, contactsCacheTTL())

	h.registerPublicRoutes(app)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

// newRepositoryFactory picks the credential store backend. The memory store
// covers deployments without a database.
func newRepositoryFactory() *repository.Factory {
	if env.GetEnv("CREDENTIAL_STORE", "db") == "memory" || database.GetDB() == nil {
		return repository.NewMemoryFactory()
	}
	return repository.NewFactory(database.GetDB())
}

// newNormalizer picks the feed parser for the deployed feed flavor.
func newNormalizer() contacts.Normalizer {
	if env.GetEnv("CONTACTS_FEED_FORMAT", "json") == "xml" {
		return contacts.NewXMLNormalizer()
	}
	return contacts.NewJSONNormalizer()
}

func contactsCacheTTL() time.Duration {
	seconds, err := strconv.Atoi(env.GetEnv("CONTACTS_CACHE_TTL", "60"))
	if err != nil || seconds < 0 {
		seconds = 60
	}
	return time.Duration(seconds) * time.Second
}
