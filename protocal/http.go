package protocal

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"spotify-line-bot/configs"
	httpAdapter "spotify-line-bot/internal/adapters/input/http"
	lineAdapter "spotify-line-bot/internal/adapters/output/line"
	mailAdapter "spotify-line-bot/internal/adapters/output/mail"
	"spotify-line-bot/internal/adapters/output/memory"
	spotifyAdapter "spotify-line-bot/internal/adapters/output/spotify"
	"spotify-line-bot/internal/application"
	"spotify-line-bot/internal/ports/output"
	"spotify-line-bot/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"
)

type config struct {
	ENV string `mapstructure:"env"`
}

// ServeHTTP func
func ServeHTTP() error {
	app := fiber.New()
	var cfg config
	flag.StringVar(&cfg.ENV, "env", "", "the environment to use")
	flag.Parse()
	configs.InitViper("./configs", cfg.ENV)
	logrus.Info(configs.GetViper().Env)
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept,Authorization",
	}))

	if err := validator.New().ValidateStruct(configs.GetViper()); err != nil {
		return err
	}

	// Wire up the hexagonal architecture layers
	// Output adapters
	lineClient, err := lineAdapter.NewLineClientAdapter(configs.GetViper().Line.ChannelToken)
	if err != nil {
		logrus.Fatalf("Failed to create LINE client: %v", err)
	}

	authProvider, err := spotifyAdapter.NewAuthProviderAdapter(
		configs.GetViper().Spotify.ClientID,
		configs.GetViper().Spotify.ClientSecret,
		configs.GetViper().Spotify.RedirectURL,
		configs.GetViper().Spotify.Scopes,
	)
	if err != nil {
		logrus.Fatalf("Failed to create Spotify auth provider: %v", err)
	}

	spotifyClient := spotifyAdapter.NewClientAdapter(
		"", time.Duration(configs.GetViper().Spotify.APITimeout)*time.Second)

	var mailer output.Mailer
	if configs.GetViper().SMTP.Host != "" {
		mailer = mailAdapter.NewSMTPMailer(
			configs.GetViper().SMTP.Host,
			configs.GetViper().SMTP.Port,
			configs.GetViper().SMTP.Username,
			configs.GetViper().SMTP.Password,
			configs.GetViper().SMTP.From,
		)
	} else {
		logrus.Warn("SMTP host not configured, email notifications disabled")
	}

	sessionStore := memory.NewMemorySessionStore()

	// Application services (use cases)
	dispatcher := application.NewNotificationDispatcher(lineClient, mailer)
	lifecycle := application.NewSessionLifecycleService(sessionStore, authProvider, spotifyClient, dispatcher)
	botSrv := application.NewBotService(lineClient, sessionStore, spotifyClient, lifecycle,
		configs.GetViper().Bot.Commands)

	// Input adapters (HTTP handlers)
	hdl := httpAdapter.New()
	lineWebhookHdl := httpAdapter.NewLineWebhookHandler(botSrv, configs.GetViper().Line.ChannelSecret)
	authCallbackHdl := httpAdapter.NewAuthCallbackHandler(lifecycle, lineClient)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		for range c {
			log.Println("Gracefull shut down ...")
			dispatcher.Flush()
			err := app.Shutdown()
			if err != nil {
				log.Println("Error when shutdown server: ", err)
			}
		}
	}()

	app.Get("/health", hdl.HealthCheck)

	auth := app.Group("/auth")
	{
		auth.Get("/spotify/callback", authCallbackHdl.HandleCallback)
	}

	webhook := app.Group("/webhook")
	{
		webhook.Post("/line", lineWebhookHdl.HandleWebhook)
	}

	err = app.Listen(":" + configs.GetViper().App.Port)
	if err != nil {
		return err
	}

	logrus.Println("Listerning on port: ", configs.GetViper().App.Port)
	return nil
}
