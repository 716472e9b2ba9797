package utils

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/uptrace/bun"
)

// InteractionHandler handles one slash command, message component or modal
// submit. Only return errors when it's the backend's fault, nil if user's
// fault.
type InteractionHandler func(i *discordgo.InteractionCreate) error

// MemberJoinHandler reacts to a member joining the guild.
type MemberJoinHandler func(m *discordgo.GuildMemberAdd)

// metric label for ids without a handler
const unknownInteractionID = "unknown"

// ChannelDeleteHandler reacts to a guild channel being deleted.
type ChannelDeleteHandler func(c *discordgo.ChannelDelete)

type AppState struct {
	Config      *Config
	BunDB       *bun.DB
	Discord     Discord
	MetricChans *Metric

	startTime time.Time

	// will be send to Discord
	appCmdInfo map[string]*discordgo.ApplicationCommand
	// slash commands, msg components (buttons) and modals share one
	// namespace: command name or custom id
	appCmdHandler map[string]InteractionHandler
	// member join handlers
	memberJoinHandler []MemberJoinHandler
	// channel delete handlers
	channelDeleteHandler []ChannelDeleteHandler

	AppCloseSignalChan     chan os.Signal
	gracefulShutdownChans  []chan struct{}
	gracefulShutdownChansM sync.Mutex
}

func NewAppState(cfg *Config, db *bun.DB, dg Discord) *AppState {
	return &AppState{
		Config:      cfg,
		BunDB:       db,
		Discord:     dg,
		MetricChans: NewMetric(),

		startTime: time.Now(),

		appCmdInfo:    make(map[string]*discordgo.ApplicationCommand),
		appCmdHandler: make(map[string]InteractionHandler),

		AppCloseSignalChan: make(chan os.Signal, 1),
	}
}

func (as *AppState) GetUptime() time.Duration {
	return time.Since(as.startTime).Truncate(time.Second)
}

// InteractionContext bounds the store calls of a single interaction.
func (as *AppState) InteractionContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), as.Config.GetInteractionTimeout())
}

func (as *AppState) AddAppCmdInfo(id string, info *discordgo.ApplicationCommand) {
	as.appCmdInfo[id] = info
}

func (as *AppState) IterateAppCmdInfo(fn func(k string, v *discordgo.ApplicationCommand)) {
	for k, v := range as.appCmdInfo {
		fn(k, v)
	}
}

// NukeAppCmdInfo drops the command info once it has been sent to Discord.
func (as *AppState) NukeAppCmdInfo() {
	as.appCmdInfo = make(map[string]*discordgo.ApplicationCommand)
}

func (as *AppState) AddAppCmdHandler(id string, handler InteractionHandler) {
	if _, ok := as.appCmdHandler[id]; ok {
		slog.Warn("overwriting interaction handler", "id", id)
	}
	as.appCmdHandler[id] = handler
}

func (as *AppState) GetAppCmdHandler(id string) (InteractionHandler, bool) {
	handler, ok := as.appCmdHandler[id]
	return handler, ok
}

func (as *AppState) AddMemberJoinHandler(handler MemberJoinHandler) {
	as.memberJoinHandler = append(as.memberJoinHandler, handler)
}

func (as *AppState) AddChannelDeleteHandler(handler ChannelDeleteHandler) {
	as.channelDeleteHandler = append(as.channelDeleteHandler, handler)
}

// DispatchInteraction routes an interaction to its handler by command name,
// component custom id or modal custom id.
func (as *AppState) DispatchInteraction(i *discordgo.InteractionCreate) {
	if i == nil || i.Interaction == nil {
		return
	}

	var id string
	switch i.Type {
	case discordgo.InteractionApplicationCommand: // slash commands
		id = i.ApplicationCommandData().Name
	case discordgo.InteractionMessageComponent: // buttons, dropdowns, etc
		id = i.MessageComponentData().CustomID
	case discordgo.InteractionModalSubmit: // modal a.k.a. text input
		id = i.ModalSubmitData().CustomID
	default:
		slog.Error("unknown interaction type", "type", i.Type)
		return
	}

	if handler, ok := as.GetAppCmdHandler(id); ok {
		if err := handler(i); err != nil {
			as.MetricChans.Interactions.WithLabelValues(id, "error").Inc()
			slog.Error("handler error", "id", id, "error", err.Error())
			return
		}
		as.MetricChans.Interactions.WithLabelValues(id, "ok").Inc()
		return
	}

	// any id a client sends ends up here, keep the label set bounded
	as.MetricChans.Interactions.WithLabelValues(unknownInteractionID, "expired").Inc()
	InteractRespHiddenReply(as.Discord, i, "Ta interakcja wygasła.")
	username := "unknown"
	if user := InteractionUser(i); user != nil {
		username = user.Username
	}
	slog.Debug("someone used an expired interaction", "username", username, "custom_id", id)
}

func (as *AppState) DispatchMemberJoin(m *discordgo.GuildMemberAdd) {
	if m == nil || m.Member == nil || m.User == nil {
		return
	}
	for _, handler := range as.memberJoinHandler {
		handler(m)
	}
}

func (as *AppState) DispatchChannelDelete(c *discordgo.ChannelDelete) {
	if c == nil || c.Channel == nil {
		return
	}
	for _, handler := range as.channelDeleteHandler {
		handler(c)
	}
}

// CreateGracefulShutdownChan returns a channel closed by GracefulShutdown.
func (as *AppState) CreateGracefulShutdownChan() <-chan struct{} {
	as.gracefulShutdownChansM.Lock()
	defer as.gracefulShutdownChansM.Unlock()
	ch := make(chan struct{})
	as.gracefulShutdownChans = append(as.gracefulShutdownChans, ch)
	return ch
}

func (as *AppState) GracefulShutdown() {
	as.gracefulShutdownChansM.Lock()
	defer as.gracefulShutdownChansM.Unlock()
	for _, ch := range as.gracefulShutdownChans {
		close(ch)
	}
	as.gracefulShutdownChans = nil
}
