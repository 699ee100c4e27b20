package server

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/ecde-votmis-api/internal/handler"
	"github.com/noah-isme/ecde-votmis-api/internal/middleware"
	"github.com/noah-isme/ecde-votmis-api/internal/models"
	"github.com/noah-isme/ecde-votmis-api/internal/service"
	"github.com/noah-isme/ecde-votmis-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/ecde-votmis-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/ecde-votmis-api/pkg/middleware/requestid"
)

// Handlers groups every HTTP handler mounted by the router.
type Handlers struct {
	Persons        *handler.PersonHandler
	Lifecycle      *handler.LifecycleHandler
	Reports        *handler.ReportHandler
	Institutions   *handler.InstitutionHandler
	BankAccounts   *handler.RecordHandler[*models.BankAccount]
	Books          *handler.RecordHandler[*models.Book]
	Infrastructure *handler.RecordHandler[*models.InfrastructureAsset]
	Emergencies    *handler.RecordHandler[*models.Emergency]
	Capitation     *handler.RecordHandler[*models.CapitationReceipt]
	Files          *handler.FileHandler
	Metrics        *handler.MetricsHandler
}

// Options configures the router.
type Options struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
	Logger         *zap.Logger
	MetricsService *service.MetricsService
	Authenticator  middleware.Authenticator
}

var (
	writers = []models.Role{models.RoleInstitutionAdmin, models.RoleDataClerk}
	readers = []models.Role{models.RoleInstitutionAdmin, models.RoleDataClerk, models.RoleTeacher}
)

// NewRouter builds the gin engine with every route mounted.
func NewRouter(opts Options, h Handlers) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(middleware.Metrics(opts.MetricsService))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(opts.APIPrefix)
	api.GET("/files/:token", h.Files.Download)

	secured := api.Group("")
	secured.Use(middleware.Auth(opts.Authenticator))

	institutions := secured.Group("/institutions")
	institutions.GET("", middleware.RequireRoles(), h.Institutions.List)
	institutions.POST("", middleware.RequireRoles(), h.Institutions.Create)
	institutions.GET("/:id", middleware.RequireRoles(readers...), h.Institutions.Get)
	institutions.PUT("/:id", middleware.RequireRoles(models.RoleInstitutionAdmin), h.Institutions.Update)

	scoped := secured.Group("")
	scoped.Use(middleware.RequireInstitution())

	read := scoped.Group("")
	read.Use(middleware.RequireRoles(readers...))
	write := scoped.Group("")
	write.Use(middleware.RequireRoles(writers...))

	read.GET("/persons", h.Persons.List)
	read.GET("/persons/:program/:id", h.Persons.Get)
	read.GET("/upi/:upi", h.Persons.FindByUPI)
	write.POST("/persons", h.Persons.Register)
	write.PATCH("/persons/:program/:id", h.Persons.Update)
	write.POST("/persons/:program/:id/photo", h.Persons.UploadPhoto)

	write.POST("/persons/:program/:id/release", h.Lifecycle.Release)
	write.POST("/persons/:program/:id/death", h.Lifecycle.MarkDeceased)
	write.POST("/transfers/receive", h.Lifecycle.Receive)
	read.GET("/transfers", h.Lifecycle.Transfers)

	read.GET("/dashboard", h.Reports.Dashboard)
	read.GET("/reports/admissions", h.Reports.Admissions)
	read.GET("/reports/upi-register", h.Reports.UPIRegister)
	read.GET("/reports/upi-register/export", h.Reports.ExportUPIRegister)
	read.GET("/reports/deceased", h.Reports.Deceased)

	records := write.Group("/records")
	h.BankAccounts.Register(records.Group("/bank-accounts"), false)
	h.Books.Register(records.Group("/books"), false)
	h.Infrastructure.Register(records.Group("/infrastructure"), false)
	h.Emergencies.Register(records.Group("/emergencies"), false)
	h.Capitation.Register(records.Group("/capitation"), true)

	return r
}
