package server

import (
	"strings"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/sessions"

	"github.com/mrbata-dev/Product-Stock/internal/auth"
	"github.com/mrbata-dev/Product-Stock/internal/config"
	"github.com/mrbata-dev/Product-Stock/internal/datamodels/user"
	"github.com/mrbata-dev/Product-Stock/internal/infra/redis"
	"github.com/mrbata-dev/Product-Stock/internal/infra/storage"
	"github.com/mrbata-dev/Product-Stock/internal/middleware"
	"github.com/mrbata-dev/Product-Stock/internal/repository/postgres"
	"github.com/mrbata-dev/Product-Stock/internal/service"
)

const oauthStateKey = "oauth_state"

// RegisterRoutes 注册所有 HTTP 路由
func RegisterRoutes(app *iris.Application, cfg *config.Config) {
	// 初始化基础设施
	db := postgres.Init(&cfg.Postgres)
	redisClient := redis.Init(&cfg.Redis)
	store := storage.Init(&cfg.Storage)

	// 仓储与服务
	userRepo := postgres.NewUserRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	productRepo := postgres.NewProductRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	userSvc := service.NewUserService(userRepo, &cfg.JWT)
	categorySvc := service.NewCategoryService(categoryRepo)
	notificationSvc := service.NewNotificationService(notificationRepo)
	productSvc := service.NewProductService(db, productRepo, categoryRepo, notificationSvc, store)

	loginLimiter := middleware.NewLoginLimiter(redisClient, &cfg.RateLimit)
	googleOAuth := auth.NewGoogleOAuth(&cfg.OAuth)
	sess := sessions.New(sessions.Config{Cookie: "psm_session"})

	// 未匹配的错误码统一返回 JSON
	app.OnAnyErrorCode(func(ctx iris.Context) {
		_ = ctx.JSON(iris.Map{"error": iris.StatusText(ctx.GetStatusCode())})
	})

	api := app.Party("/api")

	// 健康检查
	api.Get("/health", func(ctx iris.Context) {
		_ = ctx.JSON(iris.Map{"status": "ok"})
	})

	// 运行时统计
	api.Get("/runtime/stats", func(ctx iris.Context) {
		_ = ctx.JSON(service.GetMonitor().GetStats())
	})

	// ---------- 注册 / 登录 ----------

	authParty := api.Party("/auth")

	authParty.Post("/signup", func(ctx iris.Context) {
		var req struct {
			Uname    string `json:"uname"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"error": "Invalid request body"})
			return
		}
		u, err := userSvc.Signup(ctx.Request().Context(), req.Uname, req.Email, req.Password)
		if err != nil {
			respondError(ctx, err)
			return
		}
		ctx.StatusCode(iris.StatusCreated)
		_ = ctx.JSON(iris.Map{
			"message": "User created successfully",
			"user": iris.Map{
				"id":    u.ID,
				"name":  u.Name,
				"email": u.Email,
			},
		})
	})

	authParty.Post("/login", func(ctx iris.Context) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"error": "Invalid request body"})
			return
		}
		email := strings.ToLower(strings.TrimSpace(req.Email))
		if !loginLimiter.Allow(email) {
			service.GetMonitor().RecordLoginThrottled()
			ctx.StopWithJSON(429, iris.Map{"error": "Too many login attempts. Please try again later."})
			return
		}
		token, u, err := userSvc.Login(ctx.Request().Context(), email, req.Password)
		if err != nil {
			respondError(ctx, err)
			return
		}
		loginLimiter.Reset(email)
		_ = ctx.JSON(iris.Map{
			"token": token,
			"user":  publicUser(u),
		})
	})

	// ---------- Google OAuth ----------

	authParty.Get("/oauth/google", func(ctx iris.Context) {
		state := uuid.NewString()
		s := sess.Start(ctx)
		s.Set(oauthStateKey, state)
		ctx.Redirect(googleOAuth.AuthURL(state), iris.StatusFound)
	})

	authParty.Get("/oauth/google/callback", func(ctx iris.Context) {
		s := sess.Start(ctx)
		want := s.GetString(oauthStateKey)
		s.Delete(oauthStateKey)
		if want == "" || want != ctx.URLParam("state") {
			ctx.StopWithJSON(400, iris.Map{"error": "Invalid OAuth state"})
			return
		}
		code := ctx.URLParam("code")
		if code == "" {
			ctx.StopWithJSON(400, iris.Map{"error": "Missing authorization code"})
			return
		}
		profile, err := googleOAuth.Exchange(ctx.Request().Context(), code)
		if err != nil {
			ctx.StopWithJSON(401, iris.Map{"error": "OAuth sign-in failed"})
			return
		}
		token, u, err := userSvc.OAuthLogin(ctx.Request().Context(), profile.Email, profile.Name)
		if err != nil {
			respondError(ctx, err)
			return
		}
		_ = ctx.JSON(iris.Map{
			"token": token,
			"user":  publicUser(u),
		})
	})

	// ---------- 需要登录的接口 ----------

	authAPI := api.Party("/", func(ctx iris.Context) {
		token := strings.TrimPrefix(ctx.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			ctx.StopWithJSON(401, iris.Map{"error": "Unauthorized"})
			return
		}
		claims, err := auth.ParseToken(&cfg.JWT, token)
		if err != nil {
			ctx.StopWithJSON(401, iris.Map{"error": "Unauthorized"})
			return
		}
		ctx.Values().Set("user_id", claims.UserID)
		ctx.Values().Set("email", claims.Email)
		ctx.Values().Set("role", string(claims.Role))
		ctx.Next()
	})

	registerAdminRoutes(authAPI, userSvc, categorySvc, productSvc, notificationSvc, store)
}

// respondError 把业务错误映射到 HTTP 状态码
func respondError(ctx iris.Context, err error) {
	status, msg := service.HTTPStatus(err)
	ctx.StopWithJSON(status, iris.Map{"error": msg})
}

// publicUser 去掉密码散列后的用户视图
func publicUser(u *user.User) iris.Map {
	return iris.Map{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
	}
}
