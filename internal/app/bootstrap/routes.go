// internal/app/bootstrap/routes.go
package bootstrap

import (
	"errors"
	"net/http"
	"time"

	communitiesfeature "github.com/dalemusser/pastoralhub/internal/app/features/communities"
	confirmationsfeature "github.com/dalemusser/pastoralhub/internal/app/features/confirmations"
	dashboardfeature "github.com/dalemusser/pastoralhub/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/pastoralhub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/pastoralhub/internal/app/features/health"
	maintenancefeature "github.com/dalemusser/pastoralhub/internal/app/features/maintenance"
	membersfeature "github.com/dalemusser/pastoralhub/internal/app/features/members"
	sessionfeature "github.com/dalemusser/pastoralhub/internal/app/features/session"
	"github.com/dalemusser/pastoralhub/internal/app/features/shared/deletion"
	soundtrainingsfeature "github.com/dalemusser/pastoralhub/internal/app/features/soundtrainings"
	streamfeature "github.com/dalemusser/pastoralhub/internal/app/features/stream"
	suggestionsfeature "github.com/dalemusser/pastoralhub/internal/app/features/suggestions"
	teamsfeature "github.com/dalemusser/pastoralhub/internal/app/features/teams"
	usersfeature "github.com/dalemusser/pastoralhub/internal/app/features/users"
	"github.com/dalemusser/pastoralhub/internal/app/policy/deletionpolicy"
	"github.com/dalemusser/pastoralhub/internal/app/store/audit"
	userstore "github.com/dalemusser/pastoralhub/internal/app/store/users"
	"github.com/dalemusser/pastoralhub/internal/app/system/auditlog"
	"github.com/dalemusser/pastoralhub/internal/app/system/auth"
	"github.com/dalemusser/pastoralhub/internal/app/system/confirm"
	"github.com/dalemusser/pastoralhub/internal/app/system/profiles"
	"github.com/dalemusser/pastoralhub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root router once the feeds are running.
//
// Every area is a JSON sub-router mounted under its own prefix. The
// session middleware runs first so each handler can read the signed-in
// profile through auth.CurrentUser(r).
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	if deps.Services == nil || deps.Services.Directory == nil {
		return nil, errors.New("build handler: directory not started")
	}
	dir := deps.Services.Directory

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// LoadSessionUser re-reads the profile on each request, so role, module
	// and status changes take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(dir.Users))

	errLog := errorsfeature.NewErrorLogger(logger)
	auditLog := auditlog.New(audit.New(deps.MongoDatabase), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})
	profileMgr := profiles.NewManager(dir.Users, dir.Communities, auditLog, logger, appCfg.BootstrapEmail, appCfg.BootstrapName)

	// Pending confirmations: one slot per actor.
	var slots confirm.Store = confirm.NewMemoryStore()
	if deps.Redis != nil {
		slots = confirm.NewRedisStore(deps.Redis)
	}
	queue := confirm.NewQueue(slots, appCfg.ConfirmTTL)
	dispatcher := confirm.NewDispatcher()
	deletions := deletion.NewRequester(queue, errLog, logger)

	loginLimiter := ratelimit.NewLoginLimiter(appCfg.LoginRateLimit)
	var suggestLimiter *ratelimit.Limiter
	if appCfg.SuggestRatePerMinute > 0 {
		suggestLimiter = ratelimit.New(appCfg.SuggestRatePerMinute, time.Minute)
	}
	deps.Services.LoginLimiter = loginLimiter
	deps.Services.SuggestLimiter = suggestLimiter

	r := chi.NewRouter()
	r.NotFound(errorsfeature.NotFound)
	r.MethodNotAllowed(errorsfeature.MethodNotAllowed)

	// Global auth middleware: loads SessionUser into context if signed in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Redis, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Sign-in, module switch, password
	sessionHandler := sessionfeature.NewHandler(deps.Identity, profileMgr, sessionMgr, loginLimiter, appCfg.RecentLoginWindow, errLog, auditLog, logger)
	r.Mount("/session", sessionfeature.Routes(sessionHandler))

	dashboardHandler := dashboardfeature.NewHandler(dir, errLog, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler))

	// Entity workflows. Each one also executes its confirmed deletions.
	membersHandler := membersfeature.NewHandler(dir, deletions, errLog, auditLog, logger)
	r.Mount("/members", membersfeature.Routes(membersHandler))

	teamsHandler := teamsfeature.NewHandler(dir, deletions, errLog, auditLog, logger)
	r.Mount("/teams", teamsfeature.Routes(teamsHandler))

	trainingsHandler := soundtrainingsfeature.NewHandler(dir, deletions, errLog, auditLog, logger)
	r.Mount("/sound-trainings", soundtrainingsfeature.Routes(trainingsHandler))

	communitiesHandler := communitiesfeature.NewHandler(dir, deletions, errLog, auditLog, logger)
	r.Mount("/communities", communitiesfeature.Routes(communitiesHandler))

	usersHandler := usersfeature.NewHandler(dir, deps.Identity, deletions, errLog, auditLog, logger)
	r.Mount("/users", usersfeature.Routes(usersHandler))

	for kind, ex := range deletionExecutors(membersHandler, teamsHandler, trainingsHandler, communitiesHandler, usersHandler) {
		dispatcher.Register(kind, ex)
	}

	// Deletion queue (master) and the confirmation step that runs deletions
	maintenanceHandler := maintenancefeature.NewHandler(dir, deletions, errLog, auditLog, logger)
	r.Mount("/maintenance", maintenancefeature.Routes(maintenanceHandler))

	confirmHandler := confirmationsfeature.NewHandler(queue, dispatcher, errLog, logger)
	r.Mount("/confirm", confirmationsfeature.Routes(confirmHandler))

	suggestionsHandler := suggestionsfeature.NewHandler(deps.Suggester, suggestLimiter, errLog, logger)
	r.Mount("/suggestions", suggestionsfeature.Routes(suggestionsHandler))

	// Live snapshots over server-sent events
	streamHandler := streamfeature.NewHandler(dir, errLog, logger)
	deps.Services.Stream = streamHandler
	r.Mount("/stream", streamfeature.Routes(streamHandler))

	return r, nil
}

// deletionExecutors maps each deletable kind to the workflow that carries
// out its confirmed deletions.
func deletionExecutors(
	members *membersfeature.Handler,
	teams *teamsfeature.Handler,
	trainings *soundtrainingsfeature.Handler,
	communities *communitiesfeature.Handler,
	users *usersfeature.Handler,
) map[deletionpolicy.Kind]confirm.Executor {
	return map[deletionpolicy.Kind]confirm.Executor{
		deletionpolicy.KindMember:        members.Execute,
		deletionpolicy.KindTeam:          teams.Execute,
		deletionpolicy.KindSoundTraining: trainings.Execute,
		deletionpolicy.KindCommunity:     communities.Execute,
		deletionpolicy.KindUser:          users.Execute,
	}
}
