package app

import (
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/marchal/traiteur/internal/adapters/distance"
	"github.com/marchal/traiteur/internal/adapters/httpserver"
	"github.com/marchal/traiteur/internal/adapters/repo/postgres"
	"github.com/marchal/traiteur/internal/domain"
	"github.com/marchal/traiteur/internal/usecase"
)

type App struct {
	DB          *gorm.DB
	QuoteUC     *usecase.QuoteUC
	CatalogUC   *usecase.CatalogUC
	SettingsUC  *usecase.SettingsUC
	Customers   domain.CustomerRepo
	OAuthConfig *oauth2.Config
}

func NewApp(db *gorm.DB) (*App, error) {
	catalogRepo := postgres.NewCatalogRepo(db)
	settingsRepo := postgres.NewSettingsRepo(db)
	zoneRepo := postgres.NewZoneRepo(db)
	quoteRepo := postgres.NewQuoteRepo(db)
	custRepo := postgres.NewCustomerRepo(db)

	var resolver domain.DistanceResolver
	if base := os.Getenv("DISTANCE_API_URL"); base != "" {
		resolver = distance.NewClient(base, os.Getenv("DISTANCE_API_KEY"))
	}

	validator := &usecase.SelectionValidator{Catalog: catalogRepo}
	pricer := &usecase.PricingEngine{
		Settings: domain.SettingValues{Repo: settingsRepo},
		Zones:    zoneRepo,
		Distance: resolver,
	}

	var oauthCfg *oauth2.Config
	googleID := os.Getenv("GOOGLE_CLIENT_ID")
	googleSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	if googleID != "" && googleSecret != "" {
		oauthCfg = &oauth2.Config{
			ClientID:     googleID,
			ClientSecret: googleSecret,
			RedirectURL:  baseURL + "/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}

	app := &App{
		DB:          db,
		Customers:   custRepo,
		OAuthConfig: oauthCfg,
	}
	app.QuoteUC = &usecase.QuoteUC{Quotes: quoteRepo, Customers: custRepo, Validator: validator, Pricer: pricer}
	app.CatalogUC = &usecase.CatalogUC{Catalog: catalogRepo}
	app.SettingsUC = &usecase.SettingsUC{Settings: settingsRepo, Zones: zoneRepo}

	return app, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.QuoteUC, a.CatalogUC, a.SettingsUC, a.OAuthConfig)
}

func (a *App) MigrateAndSeed() error {
	if err := a.DB.AutoMigrate(
		&domain.Category{}, &domain.Product{}, &domain.Option{}, &domain.SubOption{},
		&domain.SizedVariant{}, &domain.DeliveryZone{}, &domain.Setting{},
		&domain.Quote{}, &domain.QuoteLine{}, &domain.QuoteCounter{}, &domain.Customer{},
	); err != nil {
		return err
	}

	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_quotes_status ON quotes(status)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_quotes_mode ON quotes(mode)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_quote_lines_quote_id ON quote_lines(quote_id)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_products_category_id ON products(category_id)").Error

	if err := seedSettings(a.DB); err != nil {
		return err
	}
	return seedZones(a.DB)
}

// seedSettings inserts every pricing key the engine reads, without touching
// keys an operator already changed.
func seedSettings(db *gorm.DB) error {
	defaults := map[string]string{
		domain.SettingBasePriceRestaurant:     "300",
		domain.SettingBasePriceTrailer:        "400",
		domain.SettingIncludedHoursRestaurant: "2",
		domain.SettingIncludedHoursTrailer:    "3",
		domain.SettingHourlyRateRestaurant:    "50",
		domain.SettingHourlyRateTrailer:       "60",
		domain.SettingGuestThreshold:          "50",
		domain.SettingGuestSupplement:         "150",
		domain.SettingTapRentalPrice:          "80",
		domain.SettingGamesBasePrice:          "120",
	}
	for key, value := range defaults {
		var existing domain.Setting
		err := db.First(&existing, "key = ?", key).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := db.Create(&domain.Setting{Key: key, Value: value}).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedZones(db *gorm.DB) error {
	var count int64
	if err := db.Model(&domain.DeliveryZone{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	zones := []domain.DeliveryZone{
		{ID: uuid.New(), Label: "0-20 km", MinKm: 0, MaxKm: 20, Price: decimal.NewFromInt(40), Position: 0},
		{ID: uuid.New(), Label: "20-50 km", MinKm: 20, MaxKm: 50, Price: decimal.NewFromInt(70), Position: 1},
		{ID: uuid.New(), Label: "50-80 km", MinKm: 50, MaxKm: 80, Price: decimal.NewFromInt(110), Position: 2},
	}
	return db.Create(&zones).Error
}
