package notifier

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"honeypot-bot/internal/logging"
	"honeypot-bot/internal/platform"
)

// AttachmentName is the file an oversized log record is delivered as.
const AttachmentName = "mod_log.txt"

const oversizePointer = "📎 The full log record is too long to show here; see the attached `" + AttachmentName + "`."

// Notifier writes to log channels.
type Notifier struct {
	client platform.Client
}

func New(client platform.Client) *Notifier {
	return &Notifier{client: client}
}

// Warn sends a best-effort warning. A failure leaves only a log line.
func (n *Notifier) Warn(ctx context.Context, channelID, text string) {
	data := &discordgo.MessageSend{}
	data.Content, data.Files = Fit(text)
	if _, err := n.client.SendMessage(ctx, channelID, data); err != nil {
		logging.Error("Failed to send warning to channel %s: %v", channelID, err)
	}
}

// Publish sends a log record, moving the text into an attachment when it
// does not fit in one message.
func (n *Notifier) Publish(ctx context.Context, channelID string, data *discordgo.MessageSend) (*discordgo.Message, error) {
	content, files := Fit(data.Content)
	data.Content = content
	data.Files = append(data.Files, files...)

	msg, err := n.client.SendMessage(ctx, channelID, data)
	if err != nil {
		return nil, fmt.Errorf("publish to channel %s: %w", channelID, err)
	}
	return msg, nil
}

// Edit replaces the content, embeds and components of a delivered record,
// with the same size handling as Publish.
func (n *Notifier) Edit(ctx context.Context, channelID, messageID, text string, embeds []*discordgo.MessageEmbed, components []discordgo.MessageComponent) (*discordgo.Message, error) {
	content, files := Fit(text)
	edit := discordgo.NewMessageEdit(channelID, messageID).SetContent(content)
	edit.Components = &components
	if embeds != nil {
		edit.Embeds = &embeds
	}
	if len(files) > 0 {
		edit.Files = files
	}

	msg, err := n.client.EditMessage(ctx, edit)
	if err != nil {
		return nil, fmt.Errorf("edit message %s in channel %s: %w", messageID, channelID, err)
	}
	return msg, nil
}

// Fit returns text unchanged when it fits in a message. Otherwise it returns
// a short pointer plus the complete text as an attachment; nothing is cut.
func Fit(text string) (string, []*discordgo.File) {
	if utf8.RuneCountInString(text) <= platform.MessageLimit {
		return text, nil
	}
	return oversizePointer, []*discordgo.File{{
		Name:        AttachmentName,
		ContentType: "text/plain; charset=utf-8",
		Reader:      strings.NewReader(text),
	}}
}
