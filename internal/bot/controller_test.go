package bot

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/yjleow/wbgt-bot/internal/session"
	"github.com/yjleow/wbgt-bot/internal/wbgt"
)

type fakeFetcher struct {
	records map[string][]wbgt.Record
	err     error
	calls   int
}

func (f *fakeFetcher) Fetch(ctx context.Context, date string) ([]wbgt.Record, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records[date], nil
}

type reply struct {
	userID  int64
	text    string
	choices []string
}

type recordingReplier struct {
	replies []reply
}

func (r *recordingReplier) ReplyText(userID int64, text string) error {
	r.replies = append(r.replies, reply{userID: userID, text: text})
	return nil
}

func (r *recordingReplier) ReplyWithChoices(userID int64, text string, choiceIDs []string) error {
	r.replies = append(r.replies, reply{userID: userID, text: text, choices: choiceIDs})
	return nil
}

func f64(v float64) *float64 { return &v }
func str(s string) *string   { return &s }

func changiRecords(datetime string) []wbgt.Record {
	return []wbgt.Record{
		{
			Datetime: datetime,
			Readings: []wbgt.StationReading{
				{Station: wbgt.Station{Name: "Changi"}, WBGT: f64(28.5), HeatStress: str("Moderate")},
			},
		},
	}
}

func newTestController(fetcher Fetcher, mode Mode) (*Controller, *recordingReplier) {
	replier := &recordingReplier{}
	return NewController(fetcher, session.NewStore(), replier, mode), replier
}

func TestHandleTextInvalidDate(t *testing.T) {
	fetcher := &fakeFetcher{}
	c, replier := newTestController(fetcher, ModeInteractive)

	c.HandleText(context.Background(), 1, "not-a-date")

	if fetcher.calls != 0 {
		t.Errorf("fetcher called %d times for invalid input; want 0", fetcher.calls)
	}
	if len(replier.replies) != 1 || !strings.Contains(replier.replies[0].text, "Invalid date format") {
		t.Errorf("unexpected replies: %+v", replier.replies)
	}
}

func TestHandleTextTrimsInput(t *testing.T) {
	fetcher := &fakeFetcher{records: map[string][]wbgt.Record{"2024-06-01": changiRecords("2024-06-01T08:00:00Z")}}
	c, replier := newTestController(fetcher, ModeInteractive)

	c.HandleText(context.Background(), 1, "  2024-06-01  ")

	if len(replier.replies) != 1 || len(replier.replies[0].choices) != 1 {
		t.Fatalf("unexpected replies: %+v", replier.replies)
	}
}

func TestHandleTextOffersStationChoices(t *testing.T) {
	fetcher := &fakeFetcher{records: map[string][]wbgt.Record{
		"2024-06-01": {
			{
				Datetime: "2024-06-01T08:00:00Z",
				Readings: []wbgt.StationReading{
					{Station: wbgt.Station{Name: "Sentosa"}},
					{Station: wbgt.Station{Name: "Changi"}},
				},
			},
		},
	}}
	c, replier := newTestController(fetcher, ModeInteractive)

	c.HandleText(context.Background(), 1, "2024-06-01")

	if len(replier.replies) != 1 {
		t.Fatalf("expected 1 reply, got %+v", replier.replies)
	}
	got := replier.replies[0]
	if got.text != "Choose a station:" {
		t.Errorf("prompt = %q", got.text)
	}
	if want := []string{"Changi", "Sentosa"}; !reflect.DeepEqual(got.choices, want) {
		t.Errorf("choices = %v; want lexicographic %v", got.choices, want)
	}
}

func TestHandleTextNoRecords(t *testing.T) {
	fetcher := &fakeFetcher{}
	c, replier := newTestController(fetcher, ModeInteractive)

	c.HandleText(context.Background(), 1, "2024-06-01")

	if len(replier.replies) != 1 || replier.replies[0].text != wbgt.NoRecordsMessage {
		t.Fatalf("expected single no-records reply, got %+v", replier.replies)
	}
	if replier.replies[0].choices != nil {
		t.Error("no-records reply must not carry a choice list")
	}

	// Nothing stored: a later choice must hit the stale path.
	replier.replies = nil
	c.HandleChoice(1, "Changi")
	if len(replier.replies) != 1 || !strings.Contains(replier.replies[0].text, "send the date again") {
		t.Errorf("expected stale-choice reply, got %+v", replier.replies)
	}
}

func TestHandleTextFetchFailureKeepsSession(t *testing.T) {
	fetcher := &fakeFetcher{records: map[string][]wbgt.Record{"2024-06-01": changiRecords("2024-06-01T08:00:00Z")}}
	c, replier := newTestController(fetcher, ModeInteractive)

	c.HandleText(context.Background(), 1, "2024-06-01")

	fetcher.err = errors.New("boom")
	c.HandleText(context.Background(), 1, "2024-06-02")

	if len(replier.replies) != 2 || !strings.Contains(replier.replies[1].text, "Error fetching WBGT data") {
		t.Fatalf("unexpected replies: %+v", replier.replies)
	}

	// The prior result must survive the failed query.
	replier.replies = nil
	c.HandleChoice(1, "Changi")
	if len(replier.replies) != 1 || !strings.HasPrefix(replier.replies[0].text, "Station: Changi") {
		t.Errorf("prior session lost after fetch failure: %+v", replier.replies)
	}
}

func TestHandleChoiceRendersStation(t *testing.T) {
	fetcher := &fakeFetcher{records: map[string][]wbgt.Record{"2024-06-01": changiRecords("2024-06-01T08:00:00Z")}}
	c, replier := newTestController(fetcher, ModeInteractive)

	c.HandleText(context.Background(), 1, "2024-06-01")
	replier.replies = nil

	c.HandleChoice(1, "Changi")

	if len(replier.replies) != 1 {
		t.Fatalf("expected 1 reply, got %+v", replier.replies)
	}
	want := "Station: Changi\n  2024-06-01T08:00:00Z  WBGT: 28.5  HeatStress: Moderate"
	if replier.replies[0].text != want {
		t.Errorf("block = %q; want %q", replier.replies[0].text, want)
	}

	// The result is not cleared by a lookup; picking again still works.
	replier.replies = nil
	c.HandleChoice(1, "Changi")
	if len(replier.replies) != 1 || replier.replies[0].text != want {
		t.Errorf("second pick against same result failed: %+v", replier.replies)
	}
}

func TestHandleChoiceUnknownStation(t *testing.T) {
	fetcher := &fakeFetcher{records: map[string][]wbgt.Record{"2024-06-01": changiRecords("2024-06-01T08:00:00Z")}}
	c, replier := newTestController(fetcher, ModeInteractive)

	c.HandleText(context.Background(), 1, "2024-06-01")
	replier.replies = nil

	c.HandleChoice(1, "Sentosa")

	if len(replier.replies) != 1 || !strings.Contains(replier.replies[0].text, "Station data not found") {
		t.Errorf("expected stale-choice reply, got %+v", replier.replies)
	}
}

func TestNewQueryReplacesSession(t *testing.T) {
	fetcher := &fakeFetcher{records: map[string][]wbgt.Record{
		"2024-06-01": changiRecords("2024-06-01T08:00:00Z"),
		"2024-06-02": {
			{
				Datetime: "2024-06-02T08:00:00Z",
				Readings: []wbgt.StationReading{{Station: wbgt.Station{Name: "Sentosa"}}},
			},
		},
	}}
	c, replier := newTestController(fetcher, ModeInteractive)

	c.HandleText(context.Background(), 1, "2024-06-01")
	c.HandleText(context.Background(), 1, "2024-06-02")
	replier.replies = nil

	// The first query's station must now be unknown.
	c.HandleChoice(1, "Changi")
	if len(replier.replies) != 1 || !strings.Contains(replier.replies[0].text, "Station data not found") {
		t.Errorf("expected stale-choice reply for replaced session, got %+v", replier.replies)
	}

	replier.replies = nil
	c.HandleChoice(1, "Sentosa")
	if len(replier.replies) != 1 || !strings.HasPrefix(replier.replies[0].text, "Station: Sentosa") {
		t.Errorf("second query's data not resolvable: %+v", replier.replies)
	}
}

func TestBroadcastModeSendsAllBlocks(t *testing.T) {
	fetcher := &fakeFetcher{records: map[string][]wbgt.Record{
		"2024-06-01": {
			{
				Datetime: "2024-06-01T08:00:00Z",
				Readings: []wbgt.StationReading{
					{Station: wbgt.Station{Name: "Sentosa"}},
					{Station: wbgt.Station{Name: "Changi"}},
				},
			},
		},
	}}
	c, replier := newTestController(fetcher, ModeBroadcast)

	c.HandleText(context.Background(), 1, "2024-06-01")

	if len(replier.replies) != 2 {
		t.Fatalf("expected one message per station block, got %+v", replier.replies)
	}
	if !strings.HasPrefix(replier.replies[0].text, "Station: Changi") ||
		!strings.HasPrefix(replier.replies[1].text, "Station: Sentosa") {
		t.Errorf("blocks out of lexicographic order: %+v", replier.replies)
	}

	// Broadcast mode stores nothing.
	replier.replies = nil
	c.HandleChoice(1, "Changi")
	if len(replier.replies) != 1 || !strings.Contains(replier.replies[0].text, "Station data not found") {
		t.Errorf("broadcast mode should not store a session: %+v", replier.replies)
	}
}

func TestHandleStart(t *testing.T) {
	c, replier := newTestController(&fakeFetcher{}, ModeInteractive)

	c.HandleStart(1)

	if len(replier.replies) != 1 || !strings.Contains(replier.replies[0].text, "Send me a date") {
		t.Errorf("unexpected greeting: %+v", replier.replies)
	}
}
