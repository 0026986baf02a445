// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	appealsfeature "github.com/dalemusser/dexterhub/internal/app/features/appeals"
	auditlogfeature "github.com/dalemusser/dexterhub/internal/app/features/auditlog"
	cohortsfeature "github.com/dalemusser/dexterhub/internal/app/features/cohorts"
	coursesfeature "github.com/dalemusser/dexterhub/internal/app/features/courses"
	dashboardfeature "github.com/dalemusser/dexterhub/internal/app/features/dashboard"
	droprecsfeature "github.com/dalemusser/dexterhub/internal/app/features/droprecs"
	errorsfeature "github.com/dalemusser/dexterhub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/dexterhub/internal/app/features/health"
	loginfeature "github.com/dalemusser/dexterhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/dexterhub/internal/app/features/logout"
	progressfeature "github.com/dalemusser/dexterhub/internal/app/features/progress"
	submissionsfeature "github.com/dalemusser/dexterhub/internal/app/features/submissions"
	systemusersfeature "github.com/dalemusser/dexterhub/internal/app/features/systemusers"
	userinfofeature "github.com/dalemusser/dexterhub/internal/app/features/userinfo"
	"github.com/dalemusser/dexterhub/internal/app/store/audit"
	userstore "github.com/dalemusser/dexterhub/internal/app/store/users"
	"github.com/dalemusser/dexterhub/internal/app/system/auditlog"
	"github.com/dalemusser/dexterhub/internal/app/system/auth"
	"github.com/dalemusser/dexterhub/internal/app/system/ratelimit"
	"github.com/dalemusser/dexterhub/internal/app/system/requestid"
	"github.com/dalemusser/dexterhub/internal/app/system/workers"
	"github.com/dalemusser/dexterhub/internal/app/workflow"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root router.
//
// Every request gets a request id and, when it carries a valid bearer
// token or session cookie, an actor. Feature routers enforce their own
// role requirements.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	authMgr, err := auth.NewManager(auth.Config{
		JWTSecret:     appCfg.JWTSecret,
		Issuer:        appCfg.JWTIssuer,
		TokenTTL:      appCfg.TokenTTL,
		SessionKey:    appCfg.SessionKey,
		SessionName:   appCfg.SessionName,
		SessionDomain: appCfg.SessionDomain,
		Secure:        coreCfg.Env == "prod",
	}, userstore.New(db), logger)
	if err != nil {
		logger.Error("auth manager init failed", zap.Error(err))
		return nil, err
	}

	limiter := ratelimit.NewLoginLimiter(appCfg.LoginRateLimitIP, appCfg.LoginRateLimit, appCfg.LoginRateWindow)
	startWorker(workers.NewSweeper("login-limiter", limiter, logger, 2*appCfg.LoginRateWindow))

	auditor := auditlog.New(audit.New(db), logger, auditlog.Config{Mirror: appCfg.AuditLogMirror})
	wf := workflow.NewMongo(db, auditor, logger)

	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(authMgr.LoadActor)
	r.NotFound(errorsfeature.NotFound)
	r.MethodNotAllowed(errorsfeature.MethodNotAllowed)

	// Health check for load balancers and orchestrators
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.MongoClient, logger)))

	// Authentication
	loginHandler := loginfeature.NewHandler(db, authMgr, limiter, errLog, logger)
	logoutHandler := logoutfeature.NewHandler(authMgr, logger)
	userinfoHandler := userinfofeature.NewHandler(db, errLog, logger)
	r.Route("/auth", func(ar chi.Router) {
		ar.Mount("/login", loginfeature.Routes(loginHandler))
		ar.Mount("/register", loginfeature.RegisterRoutes(loginHandler))
		ar.Mount("/logout", logoutfeature.Routes(logoutHandler))
		userinfofeature.MountRoutes(ar, userinfoHandler)
	})

	// User management
	r.Mount("/users", systemusersfeature.Routes(systemusersfeature.NewHandler(db, wf, errLog, logger)))

	// Cohorts, applications and events
	r.Mount("/cohorts", cohortsfeature.Routes(cohortsfeature.NewHandler(db, wf, errLog, logger)))

	// Course content, learner progress and graded work
	r.Mount("/courses", coursesfeature.Routes(coursesfeature.NewHandler(db, errLog, logger)))
	r.Mount("/progress", progressfeature.Routes(progressfeature.NewHandler(db, errLog, logger)))
	r.Mount("/submissions", submissionsfeature.Routes(submissionsfeature.NewHandler(db, wf, errLog, logger)))

	// Review queues
	appealsHandler := appealsfeature.NewHandler(wf, errLog, logger)
	dropsHandler := droprecsfeature.NewHandler(wf, errLog, logger)
	r.Mount("/appeals", appealsfeature.Routes(appealsHandler))
	r.Mount("/instructors/drop-recommendations", droprecsfeature.InstructorRoutes(dropsHandler))
	r.Route("/admin", func(ar chi.Router) {
		ar.Mount("/appeals", appealsfeature.AdminRoutes(appealsHandler))
		ar.Mount("/drop-recommendations", droprecsfeature.AdminRoutes(dropsHandler))
		ar.Mount("/audit-logs", auditlogfeature.Routes(auditlogfeature.NewHandler(db, errLog, logger)))
	})

	// Role dashboards
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardfeature.NewHandler(db, wf, errLog, logger)))

	return r, nil
}
