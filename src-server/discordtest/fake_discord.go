// Package discordtest provides an in-memory Discord API and interaction
// builders for handler tests.
package discordtest

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"gildia/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

var _ utils.Discord = (*FakeDiscord)(nil)

// ErrUnknownChannel mirrors Discord's 404 for deleted channels.
var ErrUnknownChannel = errors.New("unknown channel")

type SentMessage struct {
	ChannelID string
	Message   *discordgo.MessageSend
	// contents of attached files
	Files map[string]string
}

type RoleChange struct {
	GuildID string
	UserID  string
	RoleID  string
}

type Ban struct {
	GuildID string
	UserID  string
	Reason  string
}

// FakeDiscord records every call. Set Fail[method] to make that method
// return the error, Hooks[method] to run code when that method is called.
type FakeDiscord struct {
	mu sync.Mutex

	Responses       []*discordgo.InteractionResponse
	Edits           []*discordgo.WebhookEdit
	Messages        []SentMessage
	RoleAdds        []RoleChange
	Bans            []Ban
	CreatedChannels []discordgo.GuildChannelCreateData
	DeletedChannels []string
	MemberListCalls int
	// method names in call order
	Calls []string

	Members  map[string]*discordgo.Member
	Channels map[string]*discordgo.Channel
	History  map[string][]*discordgo.Message
	Fail     map[string]error
	Hooks    map[string]func()

	nextChannel int
}

func NewFakeDiscord() *FakeDiscord {
	return &FakeDiscord{
		Members:  make(map[string]*discordgo.Member),
		Channels: make(map[string]*discordgo.Channel),
		History:  make(map[string][]*discordgo.Message),
		Fail:     make(map[string]error),
		Hooks:    make(map[string]func()),
	}
}

// record notes the call and runs its hook. The hook runs without the lock
// held so it may call back into the fake.
func (f *FakeDiscord) record(method string) {
	f.mu.Lock()
	f.Calls = append(f.Calls, method)
	hook := f.Hooks[method]
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
}

// CallIndex returns the position of the first call to method, -1 if it
// wasn't called.
func (f *FakeDiscord) CallIndex(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	for idx, call := range f.Calls {
		if call == method {
			return idx
		}
	}
	return -1
}

// AddMember makes m visible to GuildMember and GuildMembers.
func (f *FakeDiscord) AddMember(m *discordgo.Member) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Members[m.User.ID] = m
}

func (f *FakeDiscord) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	f.record("InteractionRespond")
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Fail["InteractionRespond"]; err != nil {
		return err
	}
	f.Responses = append(f.Responses, resp)
	return nil
}

func (f *FakeDiscord) InteractionResponseEdit(interaction *discordgo.Interaction, edit *discordgo.WebhookEdit) (*discordgo.Message, error) {
	f.record("InteractionResponseEdit")
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Fail["InteractionResponseEdit"]; err != nil {
		return nil, err
	}
	f.Edits = append(f.Edits, edit)
	return &discordgo.Message{ID: fmt.Sprintf("edit-%d", len(f.Edits))}, nil
}

func (f *FakeDiscord) ChannelMessageSend(channelID string, content string) (*discordgo.Message, error) {
	return f.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{Content: content})
}

func (f *FakeDiscord) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error) {
	f.record("ChannelMessageSendComplex")
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Fail["ChannelMessageSend"]; err != nil {
		return nil, err
	}
	sent := SentMessage{ChannelID: channelID, Message: data, Files: make(map[string]string)}
	for _, file := range data.Files {
		content, err := io.ReadAll(file.Reader)
		if err != nil {
			return nil, err
		}
		sent.Files[file.Name] = string(content)
	}
	f.Messages = append(f.Messages, sent)
	return &discordgo.Message{
		ID:        fmt.Sprintf("msg-%d", len(f.Messages)),
		ChannelID: channelID,
		Content:   data.Content,
	}, nil
}

func (f *FakeDiscord) ChannelMessages(channelID string, limit int) ([]*discordgo.Message, error) {
	f.record("ChannelMessages")
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Fail["ChannelMessages"]; err != nil {
		return nil, err
	}
	history := f.History[channelID]
	if len(history) > limit {
		history = history[:limit]
	}
	return history, nil
}

func (f *FakeDiscord) GuildMember(guildID, userID string) (*discordgo.Member, error) {
	f.record("GuildMember")
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Fail["GuildMember"]; err != nil {
		return nil, err
	}
	member, ok := f.Members[userID]
	if !ok {
		return nil, fmt.Errorf("unknown member %s", userID)
	}
	copied := *member
	copied.Roles = append([]string(nil), member.Roles...)
	return &copied, nil
}

// GuildMembers pages through members ordered by user id, like Discord does.
func (f *FakeDiscord) GuildMembers(guildID, after string, limit int) ([]*discordgo.Member, error) {
	f.record("GuildMembers")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.MemberListCalls++
	if err := f.Fail["GuildMembers"]; err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(f.Members))
	for id := range f.Members {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool {
		if len(ids[a]) != len(ids[b]) {
			return len(ids[a]) < len(ids[b])
		}
		return ids[a] < ids[b]
	})

	page := make([]*discordgo.Member, 0, limit)
	for _, id := range ids {
		if after != "" && (len(id) < len(after) || (len(id) == len(after) && id <= after)) {
			continue
		}
		if len(page) == limit {
			break
		}
		page = append(page, f.Members[id])
	}
	return page, nil
}

func (f *FakeDiscord) GuildMemberRoleAdd(guildID, userID, roleID string) error {
	f.record("GuildMemberRoleAdd")
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Fail["GuildMemberRoleAdd"]; err != nil {
		return err
	}
	f.RoleAdds = append(f.RoleAdds, RoleChange{GuildID: guildID, UserID: userID, RoleID: roleID})
	if member, ok := f.Members[userID]; ok {
		member.Roles = append(member.Roles, roleID)
	}
	return nil
}

func (f *FakeDiscord) GuildBanCreateWithReason(guildID, userID, reason string, days int) error {
	f.record("GuildBanCreateWithReason")
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Fail["GuildBanCreateWithReason"]; err != nil {
		return err
	}
	f.Bans = append(f.Bans, Ban{GuildID: guildID, UserID: userID, Reason: reason})
	delete(f.Members, userID)
	return nil
}

func (f *FakeDiscord) GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	f.record("GuildChannelCreateComplex")
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Fail["GuildChannelCreateComplex"]; err != nil {
		return nil, err
	}
	f.nextChannel++
	channel := &discordgo.Channel{
		ID:                   fmt.Sprintf("chan-%d", f.nextChannel),
		GuildID:              guildID,
		Name:                 data.Name,
		Type:                 data.Type,
		ParentID:             data.ParentID,
		PermissionOverwrites: data.PermissionOverwrites,
	}
	f.CreatedChannels = append(f.CreatedChannels, data)
	f.Channels[channel.ID] = channel
	return channel, nil
}

func (f *FakeDiscord) ChannelDelete(channelID string) (*discordgo.Channel, error) {
	f.record("ChannelDelete")
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Fail["ChannelDelete"]; err != nil {
		return nil, err
	}
	channel, ok := f.Channels[channelID]
	if !ok {
		return nil, ErrUnknownChannel
	}
	delete(f.Channels, channelID)
	f.DeletedChannels = append(f.DeletedChannels, channelID)
	return channel, nil
}

func (f *FakeDiscord) UserChannelCreate(recipientID string) (*discordgo.Channel, error) {
	f.record("UserChannelCreate")
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Fail["UserChannelCreate"]; err != nil {
		return nil, err
	}
	return &discordgo.Channel{
		ID:   "dm-" + recipientID,
		Type: discordgo.ChannelTypeDM,
	}, nil
}

func (f *FakeDiscord) HeartbeatLatency() time.Duration {
	return 42 * time.Millisecond
}

// LastResponse returns the most recent interaction response, nil if none.
func (f *FakeDiscord) LastResponse() *discordgo.InteractionResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Responses) == 0 {
		return nil
	}
	return f.Responses[len(f.Responses)-1]
}

// LastReply returns the text of the most recent interaction response.
func (f *FakeDiscord) LastReply() string {
	resp := f.LastResponse()
	if resp == nil || resp.Data == nil {
		return ""
	}
	return resp.Data.Content
}

// MessagesTo returns everything sent to channelID, oldest first.
func (f *FakeDiscord) MessagesTo(channelID string) []SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sent []SentMessage
	for _, msg := range f.Messages {
		if msg.ChannelID == channelID {
			sent = append(sent, msg)
		}
	}
	return sent
}
