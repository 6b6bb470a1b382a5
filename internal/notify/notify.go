// Package notify delivers due reminders to users through pluggable channels.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"

	"github.com/bwmarrin/discordgo"
)

// Notifier delivers one reminder. A nil error means the reminder may be marked sent.
type Notifier interface {
	Notify(ctx context.Context, r core.DueReminder) error
}

// LogNotifier only logs reminders. It is the fallback when no channel is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, r core.DueReminder) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "Reminder due",
		"reminder_id", r.Reminder.ID,
		"user_id", r.Reminder.UserID,
		"transaction_id", r.Transaction.ID,
		"description", r.Transaction.Description,
		"amount", core.FormatAmount(r.Transaction.Amount),
		"due_date", r.Transaction.Date.Format("2006-01-02"))
	return nil
}

// Publisher is the subset of the AMQP client used for reminders.
type Publisher interface {
	PublishReminder(ctx context.Context, notice *amqp.ReminderNotice) error
}

// AMQPNotifier publishes a ReminderNotice per reminder.
type AMQPNotifier struct {
	pub Publisher
}

func NewAMQPNotifier(pub Publisher) *AMQPNotifier {
	return &AMQPNotifier{pub: pub}
}

func (n *AMQPNotifier) Notify(ctx context.Context, r core.DueReminder) error {
	if err := n.pub.PublishReminder(ctx, amqp.NewReminderNotice(r)); err != nil {
		return fmt.Errorf("publish reminder notice: %w", err)
	}
	return nil
}

// discordSender is satisfied by *discordgo.Session.
type discordSender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordNotifier posts reminders to a single channel through the bot REST API.
type DiscordNotifier struct {
	session   discordSender
	channelID string
}

// NewDiscordNotifier creates a bot session for token. The session is only used
// for REST calls so no gateway connection is opened.
func NewDiscordNotifier(token, channelID string) (*DiscordNotifier, error) {
	if token == "" || channelID == "" {
		return nil, errors.New("discord token and channel id are required")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	return &DiscordNotifier{session: session, channelID: channelID}, nil
}

func (n *DiscordNotifier) Notify(ctx context.Context, r core.DueReminder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := n.session.ChannelMessageSend(n.channelID, FormatMessage(r), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("send discord message: %w", err)
	}
	return nil
}

// FormatMessage renders the human-readable reminder line.
func FormatMessage(r core.DueReminder) string {
	kind := "Payment"
	if r.Transaction.Type == core.Income {
		kind = "Income"
	}
	who := r.Username
	if who == "" {
		who = r.Email
	}
	return fmt.Sprintf("%s reminder for %s: %s of %s due on %s",
		kind, who, r.Transaction.Description,
		core.FormatAmount(r.Transaction.Amount),
		r.Transaction.Date.Format("2006-01-02"))
}

// Multi fans a reminder out to every notifier. It fails if any of them fails,
// after trying all of them.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, r core.DueReminder) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Direct builds the notifiers that deliver without a broker: the log always,
// plus Discord when both token and channel are set.
func Direct(logger *slog.Logger, discordToken, discordChannel string) (Multi, error) {
	m := Multi{LogNotifier{Logger: logger}}
	if discordToken == "" || discordChannel == "" {
		return m, nil
	}
	d, err := NewDiscordNotifier(discordToken, discordChannel)
	if err != nil {
		return nil, err
	}
	return append(m, d), nil
}
