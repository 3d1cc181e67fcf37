package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path"
	"regexp"
	"syscall"
	"ticketbari/src/boot"
	"ticketbari/src/config"
	"ticketbari/src/controllers"
	"ticketbari/src/db"
	"ticketbari/src/lib"
	"ticketbari/src/lifecycle"
	"ticketbari/src/middlewares"
	"ticketbari/src/store"
	"ticketbari/src/types"
	"time"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const (
	apiPrefix string = "/api/v1"
)

// server carries the dependencies shared by the route groups.
type server struct {
	ctrl     *controllers.Controller
	store    store.Store
	verifier middlewares.IDTokenVerifier
	// realtime is nil when pusher is not configured
	realtime lib.ChannelAuthorizer
	// webhookSecret is STRIPE_WEBHOOK_SECRET
	webhookSecret string
}

var departureValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	field := fl.Parent().FieldByName(fl.Param())
	clock, ok := field.Interface().(string)
	if !ok {
		return false
	}
	departure, err := config.ParseDeparture(date, clock)
	if err != nil {
		return false
	}
	return departure.After(time.Now())
}

var transportValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	mode, ok := fl.Field().Interface().(types.TransportMode)
	return ok && mode.Valid()
}

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("departure", departureValidatorFunc)
		v.RegisterValidation("transport", transportValidatorFunc)
	}
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.SecureHeaders)
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return router
}

func maintenanceModeMiddleware(g *gin.Engine) *gin.Engine {
	g.Use(func(ctx *gin.Context) {
		if config.GetEnvBool("MAINTENANCE_MODE", false) {
			err := errors.New("server is under maintenance")
			log.Println(err.Error())
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "code": lifecycle.Code(lifecycle.ErrNetworkFailure)})
			return
		}
	})
	return g
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	apiv1 := g.Group(apiPrefix)
	return apiv1
}

// registerRoutes mounts every route group on router.
func registerRoutes(router *gin.Engine, srv *server) {
	guestAuthRoutes(router, srv)
	stripeWebhookRoute(router, srv)
	publicTicketHandlers(apiv1Group(router), srv)

	authorized := router.Group(apiPrefix)
	authorized.Use(middlewares.AuthMiddleware(srv.store))
	{
		ticketHandlers(authorized, srv)
		bookingHandlers(authorized, srv)
		paymentHandlers(authorized, srv)
		dashboardHandlers(authorized, srv)
		realtimeHandlers(authorized, srv)
	}
}

func initLogger() {
	cwd, _ := os.Getwd()
	logsDir := path.Join(cwd, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		log.Printf("Could not create logs dir: %s\n", err.Error())
		return
	}
	gin.DefaultWriter = io.MultiWriter(&lumberjack.Logger{
		Filename:   path.Join(logsDir, "api.log"),
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     30,
	}, os.Stdout)
	log.SetOutput(io.MultiWriter(&lumberjack.Logger{
		Filename:   path.Join(logsDir, "server.log"),
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	}, os.Stderr))
}

func newStore() store.Store {
	if config.GetEnv("STORE_DRIVER", "postgres") == "memory" {
		log.Println("Using in-memory store")
		return store.NewMemoryStore()
	}
	return store.NewGormStore(boot.InitDb())
}

func newController(s store.Store) *controllers.Controller {
	ctrl := controllers.New(s, lib.NewStripeGateway(lib.GetStripeClient()))
	if rd := lib.GetRedisClient(); rd != nil {
		ctrl.Intents = lib.NewIntentCache(rd, config.GetEnvDuration("PAYMENT_INTENT_TTL", 10*time.Minute))
	}
	var publishers controllers.Publishers
	if lib.KafkaEnabled() {
		publishers = append(publishers, &lib.KafkaPublisher{ClientID: "ticketbari-api", Topic: lib.BookingEventsTopic})
	}
	if lib.PusherEnabled() {
		publishers = append(publishers, &lib.PusherPublisher{Client: lib.GetPusherClient()})
	}
	if len(publishers) > 0 {
		ctrl.Events = publishers
	}
	return ctrl
}

func main() {
	apiEnv := os.Getenv("API_ENV")
	if apiEnv == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			panic(err)
		}
	}
	initLogger()
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := newStore()
	ctrl := newController(s)
	srv := &server{
		ctrl:          ctrl,
		store:         s,
		webhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
	}
	if fauth, err := lib.GetFirebaseAuth(); err != nil {
		log.Printf("Error initializing FirebaseAuth client: %s\n", err.Error())
	} else {
		srv.verifier = fauth
	}

	if lib.PusherEnabled() {
		srv.realtime = lib.GetPusherClient()
	}

	boot.InitScheduler(ctrl)
	defer boot.StopScheduler()
	go boot.InitBroker(ctx)

	router := setupRouter()

	appHost := os.Getenv("APP_HOST")
	if apiEnv == "local" {
		router.Use(cors.Default())
	} else {
		cc := cors.DefaultConfig()
		cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PATCH", "PUT", "DELETE", "HEAD")
		cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization")
		cc.AllowOriginFunc = func(origin string) bool {
			if appHost == "" {
				return false
			}
			match, _ := regexp.MatchString(appHost, origin)
			return match
		}
		cc.AllowCredentials = true
		cc.AllowAllOrigins = false
		router.Use(cors.New(cc))
	}

	registerValidators()

	router = maintenanceModeMiddleware(router)

	registerRoutes(router, srv)

	httpServer := &http.Server{
		Addr:    ":" + config.GetEnv("PORT", "9090"),
		Handler: router,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down server: %s\n", err.Error())
		}
	}()
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %s", err)
	}
	if _, ok := s.(*store.GormStore); ok {
		if sqlDB, err := db.GetDb().DB(); err == nil {
			sqlDB.Close()
		}
	}
}
