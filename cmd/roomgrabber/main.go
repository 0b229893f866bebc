package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/roomgrabber/roomgrabber/internal/api"
	"github.com/roomgrabber/roomgrabber/internal/auth"
	"github.com/roomgrabber/roomgrabber/internal/bot"
	"github.com/roomgrabber/roomgrabber/internal/flow"
	"github.com/roomgrabber/roomgrabber/internal/messaging"
	"github.com/roomgrabber/roomgrabber/internal/recognizer"
	"github.com/roomgrabber/roomgrabber/internal/store"
	"github.com/roomgrabber/roomgrabber/internal/twilioclient"
	"github.com/roomgrabber/roomgrabber/internal/util"
	"github.com/roomgrabber/roomgrabber/internal/whatsapp"
	"github.com/joho/godotenv"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for RoomGrabber state data
	DefaultStateDir = "/var/lib/roomgrabber"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "roomgrabber.db"
	// DefaultWhatsAppDBFileName is the default whatsmeow session database filename
	DefaultWhatsAppDBFileName = "whatsmeow.db"
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Bootstrapping RoomGrabber with configured modules")
	if err := run(ctx, flags); err != nil {
		slog.Error("RoomGrabber failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("RoomGrabber exited successfully")
}

// Config holds environment configuration
type Config struct {
	Channel        string
	DatabaseURL    string
	WhatsAppDSN    string
	StateDir       string
	OpenAIKey      string
	OpenAIModel    string
	APIAddr        string
	AuthEndpoint   string
	ConnectionName string
	Rooms          []string
	NumericCode    bool
}

// Flags holds command line flag values
type Flags struct {
	channel      *string
	qrOutput     *string
	numeric      *bool
	stateDir     *string
	dbDSN        *string
	waDSN        *string
	openaiKey    *string
	openaiModel  *string
	apiAddr      *string
	authEndpoint *string
	connection   *string
	rooms        []string
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		Channel:        os.Getenv("CHANNEL"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		WhatsAppDSN:    os.Getenv("WHATSAPP_DB_DSN"),
		StateDir:       os.Getenv("ROOMGRABBER_STATE_DIR"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    os.Getenv("OPENAI_MODEL"),
		APIAddr:        os.Getenv("API_ADDR"),
		AuthEndpoint:   os.Getenv("IDENTITY_ENDPOINT"),
		ConnectionName: os.Getenv("IDENTITY_CONNECTION_NAME"),
		Rooms:          util.ParseListEnv("MEETING_ROOMS"),
		NumericCode:    util.ParseBoolEnv("NUMERIC_CODE", false),
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No ROOMGRABBER_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}
	if config.Channel == "" {
		config.Channel = "whatsapp"
	}
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}
	if config.WhatsAppDSN == "" {
		config.WhatsAppDSN = filepath.Join(config.StateDir, DefaultWhatsAppDBFileName)
	}

	slog.Debug("environment variables loaded",
		"CHANNEL", config.Channel,
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"WHATSAPP_DB_DSN_SET", config.WhatsAppDSN != "",
		"ROOMGRABBER_STATE_DIR", config.StateDir,
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"API_ADDR", config.APIAddr,
		"IDENTITY_ENDPOINT_SET", config.AuthEndpoint != "")

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		channel:      flag.String("channel", config.Channel, "messaging channel: whatsapp, twilio, or none (overrides $CHANNEL)"),
		qrOutput:     flag.String("qr-output", "", "path to write login QR code"),
		numeric:      flag.Bool("numeric-code", config.NumericCode, "use numeric login code instead of QR code (overrides $NUMERIC_CODE)"),
		stateDir:     flag.String("state-dir", config.StateDir, "state directory for RoomGrabber data (overrides $ROOMGRABBER_STATE_DIR)"),
		dbDSN:        flag.String("db-dsn", config.DatabaseURL, "database DSN for the conversation store (overrides $DATABASE_URL)"),
		waDSN:        flag.String("whatsapp-db-dsn", config.WhatsAppDSN, "database DSN for the WhatsApp session (overrides $WHATSAPP_DB_DSN)"),
		openaiKey:    flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		openaiModel:  flag.String("openai-model", config.OpenAIModel, "OpenAI model for intent recognition (overrides $OPENAI_MODEL)"),
		apiAddr:      flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		authEndpoint: flag.String("auth-endpoint", config.AuthEndpoint, "identity provider endpoint (overrides $IDENTITY_ENDPOINT)"),
		connection:   flag.String("auth-connection", config.ConnectionName, "identity provider connection name (overrides $IDENTITY_CONNECTION_NAME)"),
		rooms:        config.Rooms,
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"channel", *flags.channel,
		"qrOutput", *flags.qrOutput,
		"numeric", *flags.numeric,
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"waDSN_set", *flags.waDSN != "",
		"openaiKeySet", *flags.openaiKey != "",
		"apiAddr", *flags.apiAddr)

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	for _, dsn := range []string{*flags.dbDSN, *flags.waDSN} {
		if dsn == "" || store.DetectDSNType(dsn) == "postgres" {
			continue
		}
		dir := filepath.Dir(dsn)
		if err := os.MkdirAll(dir, 0755); err != nil {
			slog.Error("Failed to create state directory", "error", err, "state_dir", dir)
			return err
		}
	}
	return nil
}

// run assembles the store, recognizer, auth provider, messaging channel, and
// bot, then serves until the context is cancelled.
func run(ctx context.Context, flags Flags) error {
	st, err := store.NewStore(store.WithDSN(*flags.dbDSN))
	if err != nil {
		return err
	}
	defer st.Close()

	cfg := flow.Config{
		ConnectionName: *flags.connection,
		Rooms:          flags.rooms,
	}

	if *flags.openaiKey != "" {
		recOpts := []recognizer.Option{recognizer.WithAPIKey(*flags.openaiKey)}
		if *flags.openaiModel != "" {
			recOpts = append(recOpts, recognizer.WithModel(*flags.openaiModel))
		}
		rec, err := recognizer.NewClient(recOpts...)
		if err != nil {
			return err
		}
		cfg.Recognizer = rec
	} else {
		slog.Info("No OpenAI API key configured, natural language understanding disabled")
	}

	if *flags.authEndpoint != "" {
		provider, err := auth.NewHTTPProvider(
			auth.WithEndpoint(*flags.authEndpoint),
			auth.WithConnectionName(*flags.connection),
		)
		if err != nil {
			return err
		}
		cfg.Provider = provider
	} else {
		slog.Info("No identity endpoint configured, running without authentication")
	}

	msgService, err := buildMessagingService(flags)
	if err != nil {
		return err
	}

	b := bot.New(st, msgService, cfg)
	server := api.NewServer(b, msgService, st,
		api.WithAddr(*flags.apiAddr),
		api.WithStateDir(*flags.stateDir),
	)
	return server.Run(ctx)
}

// buildMessagingService creates the channel selected by the channel flag.
func buildMessagingService(flags Flags) (messaging.Service, error) {
	switch *flags.channel {
	case "twilio":
		client, err := twilioclient.NewClient()
		if err != nil {
			return nil, err
		}
		return messaging.NewTwilioService(client), nil
	case "none":
		// HTTP injection endpoint only; useful for local testing.
		return messaging.NewMockService(), nil
	default:
		waOpts := []whatsapp.Option{whatsapp.WithDBDSN(*flags.waDSN)}
		if *flags.qrOutput != "" {
			waOpts = append(waOpts, whatsapp.WithQRCodeOutput(*flags.qrOutput))
		}
		if *flags.numeric {
			waOpts = append(waOpts, whatsapp.WithNumericCode())
		}
		client, err := whatsapp.NewClient(waOpts...)
		if err != nil {
			return nil, err
		}
		return messaging.NewWhatsAppService(client), nil
	}
}
