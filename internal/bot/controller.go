package bot

import (
	"context"
	"log"
	"strings"

	"github.com/yjleow/wbgt-bot/internal/session"
	"github.com/yjleow/wbgt-bot/internal/wbgt"
)

// Mode selects how the controller answers a successful date query.
type Mode string

const (
	// ModeInteractive replies with a station picker; the user then chooses
	// one station at a time from the stored result.
	ModeInteractive Mode = "interactive"

	// ModeBroadcast replies with every station's block immediately and
	// stores nothing.
	ModeBroadcast Mode = "broadcast"
)

const (
	greetingText = "Hi! Send me a date (YYYY-MM-DD) or datetime (YYYY-MM-DDTHH:MM:SS), " +
		"and I'll show you WBGT data by station."
	invalidDateText  = "Invalid date format. Use YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS"
	choosePromptText = "Choose a station:"
	staleChoiceText  = "Station data not found. Please send the date again."
)

// Fetcher retrieves the raw record list for a normalized date string.
type Fetcher interface {
	Fetch(ctx context.Context, date string) ([]wbgt.Record, error)
}

// Replier delivers outgoing messages to a user. Implemented by the chat
// transport; the controller never talks to the wire protocol directly.
type Replier interface {
	ReplyText(userID int64, text string) error
	ReplyWithChoices(userID int64, text string, choiceIDs []string) error
}

// Controller drives the date → station list → station detail conversation.
// It owns the session store: results are written only on a successful query
// for the same user id and read only when that user picks a station.
type Controller struct {
	fetcher  Fetcher
	sessions *session.Store
	replier  Replier
	mode     Mode
}

// NewController creates a Controller.
func NewController(fetcher Fetcher, sessions *session.Store, replier Replier, mode Mode) *Controller {
	if mode == "" {
		mode = ModeInteractive
	}
	return &Controller{
		fetcher:  fetcher,
		sessions: sessions,
		replier:  replier,
		mode:     mode,
	}
}

// HandleStart answers the /start command with the usage greeting.
func (c *Controller) HandleStart(userID int64) {
	c.reply(userID, greetingText)
}

// HandleText processes a user-sent date or datetime string. Any failure is
// reported to the user and leaves the stored session untouched, so a prior
// result stays selectable.
func (c *Controller) HandleText(ctx context.Context, userID int64, text string) {
	date, err := wbgt.ParseDateInput(strings.TrimSpace(text))
	if err != nil {
		c.reply(userID, invalidDateText)
		return
	}

	records, err := c.fetcher.Fetch(ctx, date)
	if err != nil {
		log.Printf("fetch failed for user %d date %q: %v", userID, date, err)
		c.reply(userID, "Error fetching WBGT data: "+err.Error())
		return
	}

	result := wbgt.GroupByStation(records)
	if len(result) == 0 {
		c.reply(userID, wbgt.NoRecordsMessage)
		return
	}

	if c.mode == ModeBroadcast {
		for _, block := range wbgt.FormatAll(result) {
			c.reply(userID, block)
		}
		return
	}

	c.sessions.Put(userID, result)
	if err := c.replier.ReplyWithChoices(userID, choosePromptText, result.Stations()); err != nil {
		log.Printf("reply to user %d failed: %v", userID, err)
	}
}

// HandleChoice resolves a previously offered station choice against the
// user's stored result. The result is not cleared by a lookup; the user may
// pick further stations from the same query.
func (c *Controller) HandleChoice(userID int64, choiceID string) {
	result, ok := c.sessions.Get(userID)
	if !ok {
		c.reply(userID, staleChoiceText)
		return
	}

	readings, ok := result[choiceID]
	if !ok {
		c.reply(userID, staleChoiceText)
		return
	}

	c.reply(userID, wbgt.FormatStation(choiceID, readings))
}

func (c *Controller) reply(userID int64, text string) {
	if err := c.replier.ReplyText(userID, text); err != nil {
		log.Printf("reply to user %d failed: %v", userID, err)
	}
}
