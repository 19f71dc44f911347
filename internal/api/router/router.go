package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/cuongbtq/jobboard/internal/api/handler"
	"github.com/cuongbtq/jobboard/internal/domain"
	"github.com/cuongbtq/jobboard/internal/validate"
)

// Options holds router settings that are not handler dependencies
type Options struct {
	ServiceName    string
	AllowedOrigins []string
}

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies, opts Options) (*gin.Engine, error) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := validate.Register(v); err != nil {
			return nil, fmt.Errorf("failed to register binding rules: %w", err)
		}
	}

	r := gin.New()
	r.MaxMultipartMemory = 32 << 20

	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware(opts.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		status, state := http.StatusOK, "healthy"
		checks := gin.H{}
		for name, check := range deps.HealthChecks {
			if err := check(c.Request.Context()); err != nil {
				status, state = http.StatusServiceUnavailable, "unhealthy"
				checks[name] = err.Error()
				continue
			}
			checks[name] = "ok"
		}

		c.JSON(status, gin.H{
			"status":  state,
			"service": opts.ServiceName,
			"checks":  checks,
		})
	})

	h := handler.New(deps)
	if deps.Files != nil {
		r.Static("/uploads", deps.Files.Dir())
	}

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signin", h.SignIn)
			auth.GET("/verify-auth-data/:token", h.VerifyAuthData)
			auth.DELETE("/signout", h.Authenticate(), h.SignOut)
		}

		signedIn := api.Group("", h.Authenticate())
		admin := signedIn.Group("", handler.RequireRole(domain.RoleAdmin))

		jobs := "/jobs"
		signedIn.GET(jobs+"/get-jobs", h.GetJobs)
		signedIn.GET(jobs+"/get-job/:id", h.GetJob)
		admin.POST(jobs+"/create-job", h.CreateJob)
		admin.PATCH(jobs+"/update-job/:id", h.UpdateJob)
		admin.DELETE(jobs+"/delete-job/:id", h.DeleteJob)

		applicants := "/applicants"
		signedIn.GET(applicants+"/get-applicants", h.GetApplicants)
		signedIn.POST(applicants+"/create-applicant", h.CreateApplicant)
		admin.PATCH(applicants+"/update-applicant/:id", h.UpdateApplicant)
		admin.DELETE(applicants+"/delete-applicant/:id", h.DeleteApplicant)

		if deps.Hub != nil {
			signedIn.GET("/events/ws", gin.WrapH(deps.Hub))
		}
	}

	return r, nil
}
