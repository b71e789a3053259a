package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/AlexYaroshenko/tgpoll/internal/app"
	"github.com/AlexYaroshenko/tgpoll/internal/config"
	"github.com/AlexYaroshenko/tgpoll/internal/store"
	"github.com/AlexYaroshenko/tgpoll/internal/telegram"
	"github.com/AlexYaroshenko/tgpoll/internal/web"
)

type flags struct {
	configPath string
	interval   time.Duration
	utf8       bool
	chatIDs    string
	storeDrv   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags

	root := &cobra.Command{
		Use:           "tgpoll",
		Short:         "Poll the Telegram Bot API and answer updates one at a time",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				log.Errorf("❌ %v", err)
				return err
			}
			if err := run(cmd.Context(), cfg); err != nil {
				log.Errorf("❌ %v", err)
				return err
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&f.configPath, "config", "c", "", "YAML config file")
	root.Flags().DurationVar(&f.interval, "interval", 0, "Poll interval (overrides POLL_INTERVAL)")
	root.Flags().BoolVar(&f.utf8, "utf8", false, "Decode \\uXXXX escapes in responses (overrides UTF8_DECODE)")
	root.Flags().StringVar(&f.chatIDs, "chat-ids", "", "Comma-separated chat IDs notified on start and stop (overrides TELEGRAM_CHAT_IDS)")
	root.Flags().StringVar(&f.storeDrv, "store", "", "Store driver: bolt, postgres or none (overrides STORE_DRIVER)")

	root.AddCommand(&cobra.Command{
		Use:   "getme",
		Short: "Check the token and print the bot account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			bot := newBot(cfg)
			me, err := bot.GetMe(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "id: %d\nusername: @%s\nname: %s %s\nis_bot: %t\n",
				me.ID, me.Username, me.FirstName, me.LastName, me.IsBot)
			return nil
		},
	})
	return root
}

func loadConfig(cmd *cobra.Command, f flags) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, err
	}

	fs := cmd.Flags()
	if fs.Changed("interval") {
		cfg.Telegram.PollInterval = f.interval
	}
	if fs.Changed("utf8") {
		cfg.Telegram.UTF8Decode = f.utf8
	}
	if fs.Changed("chat-ids") {
		ids, err := config.ParseChatIDs(f.chatIDs)
		if err != nil {
			return config.Config{}, err
		}
		cfg.Telegram.NotifyChatIDs = ids
	}
	if fs.Changed("store") {
		cfg.Store.Driver = f.storeDrv
	}

	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	} else {
		log.Warnf("unknown log level %q, using info", cfg.LogLevel)
	}
	return cfg, cfg.Validate()
}

func newBot(cfg config.Config) *telegram.Bot {
	bot := telegram.NewBot(telegram.NewHTTPTransport(cfg.Telegram.APIURL, cfg.Telegram.Token, cfg.Telegram.Timeout))
	bot.EnableUTF8Encoding(cfg.Telegram.UTF8Decode)
	bot.SetParseMode(cfg.Telegram.ParseMode)
	return bot
}

func run(parent context.Context, cfg config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bot := newBot(cfg)
	me, err := bot.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	log.Infof("🤖 Connected as @%s", me.Username)

	var st store.Store
	if cfg.Store.Driver != "" && cfg.Store.Driver != "none" {
		st, err = store.Open(ctx, cfg.Store.Driver, cfg.Store.BoltPath, cfg.Store.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()
	}
	handler := app.NewHandler(bot, st)

	var status *web.Server
	if cfg.HTTP.Port != "" {
		status = web.NewServer(cfg.HTTP.Port)
		go func() {
			if err := status.Run(ctx); err != nil {
				log.Errorf("❌ Server error: %v", err)
			}
		}()
	}

	notify(bot, recipients(cfg.Telegram.NotifyChatIDs, handler), fmt.Sprintf("🚀 @%s started, polling every %s", me.Username, cfg.Telegram.PollInterval))
	log.Infof("Polling every %s, press Ctrl+C to stop", cfg.Telegram.PollInterval)

	pollLoop(ctx, bot, handler, status, cfg.Telegram.PollInterval)

	log.Info("Shutting down...")
	notify(bot, recipients(cfg.Telegram.NotifyChatIDs, handler), fmt.Sprintf("🛑 @%s stopped", me.Username))
	return nil
}

// pollLoop polls until ctx is done. Whenever the cursor moved it polls again
// right away to drain the backlog; otherwise it waits interval.
func pollLoop(ctx context.Context, bot *telegram.Bot, h *app.Handler, status *web.Server, interval time.Duration) {
	var snap web.Snapshot
	for {
		prev := bot.Offset()
		upd, err := bot.Poll(ctx)
		snap.Offset = bot.Offset()
		snap.LastError = ""
		if err != nil {
			snap.LastError = err.Error()
		} else if upd.Kind() != telegram.KindNone {
			if err := h.Handle(ctx, upd); err != nil && !errors.Is(err, context.Canceled) {
				log.Errorf("handle %s update: %v", upd.Kind(), err)
				snap.LastError = err.Error()
			}
			snap.Handled++
			snap.LastKind = upd.Kind().String()
			snap.LastUpdate = time.Now()
		}
		if status != nil {
			status.UpdateState(snap)
		}

		wait := interval
		if bot.Offset() != prev {
			wait = 0
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// recipients merges the configured chat ids with the store's active chats.
func recipients(fixed []int64, h *app.Handler) []int64 {
	ids := append([]int64(nil), fixed...)
	subs, err := h.Subscribers()
	if err != nil {
		log.Errorf("list subscribers: %v", err)
		return ids
	}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}
	for _, id := range subs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

func notify(bot *telegram.Bot, chatIDs []int64, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, id := range chatIDs {
		if err := bot.SendMessage(ctx, id, text, ""); err != nil {
			log.Errorf("Error sending notification to %d: %v", id, err)
		}
	}
}
