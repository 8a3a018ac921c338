// Package bridge prepares the artifacts an external chat bot consumes: a
// per-event board bundle and the operator instructions that go with it.
package bridge

import (
	"archive/zip"
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"text/template"

	"github.com/meur/moonshade/internal/models"
)

// BoardFile is the name of the board document inside a bundle
const BoardFile = "board.json"

// BotBoard is the per-event document handed to the bot
type BotBoard struct {
	EventID   string        `json:"eventId"`
	EventName string        `json:"eventName"`
	Slug      string        `json:"slug"`
	Board     models.Board  `json:"board"`
	Teams     []models.Team `json:"teams"` // ordered by name, then id
}

// Guide is the companion panel content for one event
type Guide struct {
	Instructions string   `json:"instructions"`
	Commands     []string `json:"commands"`
}

var slugRegex = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Slugify turns an event name into a directory-safe name
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = slugRegex.ReplaceAllString(s, "-")
	if s = strings.Trim(s, "-"); s == "" {
		return "event"
	}
	return s
}

// NewBotBoard flattens an event for the bot
func NewBotBoard(ev *models.Event) BotBoard {
	teams := make([]models.Team, 0, len(ev.Teams))
	for _, t := range ev.Teams {
		teams = append(teams, *t.Clone())
	}
	slices.SortFunc(teams, func(a, b models.Team) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	return BotBoard{
		EventID:   ev.ID,
		EventName: ev.Name,
		Slug:      Slugify(ev.Name),
		Board:     ev.Board.Clone(),
		Teams:     teams,
	}
}

// Bundle writes board.json plus an empty icons/ directory into a ZIP
func Bundle(ev *models.Event) ([]byte, error) {
	board, err := json.MarshalIndent(NewBotBoard(ev), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode board: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create(BoardFile)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", BoardFile, err)
	}
	if _, err := f.Write(board); err != nil {
		return nil, fmt.Errorf("write %s: %w", BoardFile, err)
	}
	if _, err := zw.Create("icons/"); err != nil {
		return nil, fmt.Errorf("create icons dir: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finish bundle: %w", err)
	}
	return buf.Bytes(), nil
}

// BundleName is the download file name for an event's bundle
func BundleName(ev *models.Event) string {
	return Slugify(ev.Name) + "-bundle.zip"
}

var instructionsTmpl = template.Must(template.New("instructions").Parse(
	`1) Download the ZIP (board.json + icons) from the Events tab.
2) On your bot host, put icons into:
   data/events/tiletrials/{{.Slug}}/icons
3) In Discord, upload the board.json:
   /tiletrials upload event:{{.EventID}} file:<board.json>
4) Teams & dice:
   /tiletrials team-create ...
   /tiletrials set-dice ...
5) Post the board + per-team Roll buttons:
   /tiletrials setup event:{{.EventID}}`))

// NewGuide renders the bot instructions and sample commands for ev
func NewGuide(ev *models.Event) (Guide, error) {
	board := NewBotBoard(ev)

	var buf bytes.Buffer
	if err := instructionsTmpl.Execute(&buf, board); err != nil {
		return Guide{}, fmt.Errorf("render instructions: %w", err)
	}

	commands := []string{
		fmt.Sprintf("# List teams\n/tiletrials teams event:%s", ev.ID),
		fmt.Sprintf("# Set dice sides\n/tiletrials set-dice event:%s sides:6", ev.ID),
	}
	for _, t := range board.Teams {
		commands = append(commands, fmt.Sprintf("# Create a team\n/tiletrials team-create event:%s name:%q color:%s", ev.ID, t.Name, t.Color))
	}
	if len(board.Teams) == 0 {
		commands = append(commands, fmt.Sprintf("# Create a team\n/tiletrials team-create event:%s name:\"Team Alpha\" color:%s", ev.ID, models.Palette[0]))
	}
	commands = append(commands, fmt.Sprintf("# Post board + Roll buttons\n/tiletrials setup event:%s", ev.ID))

	return Guide{Instructions: buf.String(), Commands: commands}, nil
}
