package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/roman-kulish/mission-control/internal/iface"
	"github.com/roman-kulish/mission-control/internal/mission"
	"github.com/roman-kulish/mission-control/internal/missionfile"
	"github.com/roman-kulish/mission-control/internal/preview"
	"github.com/roman-kulish/mission-control/internal/storage"
	"github.com/roman-kulish/mission-control/internal/telemetry"
)

var ErrUnknownCommand = errors.New("unknown command")

type command struct {
	name  string
	usage string
	run   func(a *App, ctx context.Context, args []string) error
}

var commands = []command{
	{"topics", "topics", (*App).topics},
	{"show", "show <plan.yaml>", (*App).show},
	{"record", "record <plan.yaml>", (*App).record},
	{"journal", "journal [-topic name]... <session id>", (*App).journal},
	{"preview", "preview -o <out.png> <plan.yaml | plan id>", (*App).preview},
}

// App runs missionctl commands
type App struct {
	config *Config
	logger *slog.Logger
	out    io.Writer
	ids    mission.IDGenerator
	now    func() time.Time
}

func New(config *Config, logger *slog.Logger, out io.Writer) *App {
	return &App{
		config: config,
		logger: logger,
		out:    out,
		ids:    mission.RandomIDs{},
		now:    time.Now,
	}
}

func Run(ctx context.Context, config *Config, args []string, logger *slog.Logger) error {
	return New(config, logger, os.Stdout).Run(ctx, args)
}

// Run dispatches args[0] to its command
func (a *App) Run(ctx context.Context, args []string) error {
	if err := iface.Validate(); err != nil {
		return fmt.Errorf("invalid channel table: %w", err)
	}

	if len(args) == 0 {
		a.usage()
		return errors.New("no command given")
	}

	for _, c := range commands {
		if c.name == args[0] {
			return c.run(a, ctx, args[1:])
		}
	}

	a.usage()
	return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
}

func (a *App) usage() {
	fmt.Fprintln(a.out, "commands:")
	for _, c := range commands {
		fmt.Fprintf(a.out, "  %s\n", c.usage)
	}
}

func (a *App) topics(_ context.Context, _ []string) error {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MARKER\tTOPIC\tPAYLOAD")
	for _, b := range iface.Bindings() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", b.Marker, b.Topic, b.Payload)
	}
	return w.Flush()
}

func (a *App) show(_ context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: show <plan.yaml>")
	}

	plan, err := missionfile.LoadFile(args[0], a.ids)
	if err != nil {
		return err
	}

	payload, err := iface.MissionUpdateTopic{}.Encode(plan)
	if err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}

	fmt.Fprintln(a.out, plan)
	for i, n := range plan.Nodes {
		fmt.Fprintf(a.out, "%4d  %s\n", i, n)
	}
	fmt.Fprintf(a.out, "%s nodes, %s on %s\n",
		humanize.Comma(int64(len(plan.Nodes))), humanize.Bytes(uint64(len(payload))), iface.TopicMissionUpdate)
	return nil
}

func (a *App) record(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: record <plan.yaml>")
	}

	plan, err := missionfile.LoadFile(args[0], a.ids)
	if err != nil {
		return err
	}

	store, err := a.openStore(true)
	if err != nil {
		return err
	}
	defer store.Close()

	sessionID, err := store.CreateSession(ctx, a.config.Vehicle.ID, a.config)
	if err != nil {
		return err
	}

	if err = store.RecordPlan(ctx, sessionID, a.now(), plan); err != nil {
		return fmt.Errorf("recording plan: %w", err)
	}

	a.logger.Info("recorded plan",
		slog.Int64("session", sessionID),
		slog.String("plan", plan.ID.String()),
		slog.Int("nodes", len(plan.Nodes)))

	fmt.Fprintf(a.out, "session %d: %s\n", sessionID, plan)
	return nil
}

type topicList []string

func (t *topicList) String() string { return fmt.Sprint(*t) }

func (t *topicList) Set(v string) error {
	if _, ok := iface.Lookup(v); !ok {
		return fmt.Errorf("unknown topic %q", v)
	}
	*t = append(*t, v)
	return nil
}

func (a *App) journal(ctx context.Context, args []string) error {
	var topics topicList
	fs := flag.NewFlagSet("journal", flag.ContinueOnError)
	fs.SetOutput(a.out)
	fs.Var(&topics, "topic", "Only read messages on this topic, may be repeated")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: journal [-topic name]... <session id>")
	}

	sessionID, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil || sessionID <= 0 {
		return fmt.Errorf("invalid session id %q", fs.Arg(0))
	}

	store, err := a.openStore(false)
	if err != nil {
		return err
	}
	defer store.Close()

	var opts []storage.ReaderOption
	if len(topics) > 0 {
		opts = append(opts, storage.WithTopics(topics...))
	}
	if window := time.Duration(a.config.Journal.Window); window > 0 {
		opts = append(opts, storage.WithStartTime(a.now().Add(-window)))
	}
	if a.config.Journal.BatchSize > 0 {
		opts = append(opts, storage.WithBatchSize(a.config.Journal.BatchSize))
	}

	reader, err := store.ReadMessages(ctx, sessionID, opts...)
	if err != nil {
		return err
	}
	defer reader.Close()

	session := reader.Session()
	fmt.Fprintf(a.out, "session %d, vehicle %s, started %s\n",
		session.ID, session.VehicleID, humanize.Time(session.StartTime))

	tracker := telemetry.NewTracker()
	var count, failed int64
	for reader.Next(ctx) {
		m := reader.Current()
		count++

		text, err := storage.DecodeCurrent(reader)
		if err != nil {
			failed++
			a.logger.Warn("undecodable message",
				slog.Int64("id", m.ID),
				slog.String("topic", m.Topic),
				slog.String("error", err.Error()))
			continue
		}
		if _, err = tracker.Apply(m.Topic, m.Timestamp, m.Payload); err != nil {
			return fmt.Errorf("applying message %d: %w", m.ID, err)
		}

		fmt.Fprintf(a.out, "%s  %-16s %s\n", m.Timestamp.Local().Format(time.DateTime+".000"), m.Topic, text)
	}
	if err = reader.Error(); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s messages, %s undecodable\n", humanize.Comma(count), humanize.Comma(failed))
	printTelemetry(a.out, tracker.Get())
	return nil
}

func printTelemetry(w io.Writer, t *telemetry.Telemetry) {
	if t.Timestamp.IsZero() {
		return
	}

	fmt.Fprintf(w, "last telemetry %s:", humanize.Time(t.Timestamp))
	if t.Local != nil {
		fmt.Fprintf(w, " local %s", t.Local)
	}
	if t.Global != nil {
		fmt.Fprintf(w, " global %s", t.Global)
	}
	if t.Yaw != nil {
		fmt.Fprintf(w, " yaw %.3f", *t.Yaw)
	}
	if t.Step != nil {
		fmt.Fprintf(w, " step %d", *t.Step)
	}
	fmt.Fprintln(w)
}

func (a *App) preview(ctx context.Context, args []string) error {
	var output string
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	fs.SetOutput(a.out)
	fs.StringVar(&output, "o", "", "Path to the output PNG file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 || output == "" {
		return errors.New("usage: preview -o <out.png> <plan.yaml | plan id>")
	}

	plan, err := a.loadPlan(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	renderer, err := preview.NewRenderer(preview.Config{
		Width:         a.config.Preview.Width,
		Height:        a.config.Preview.Height,
		Margin:        a.config.Preview.Margin,
		NoAnnotations: a.config.Preview.NoAnnotations,
	})
	if err != nil {
		return fmt.Errorf("creating preview renderer: %w", err)
	}

	img, err := renderer.Render(plan)
	if err != nil {
		return fmt.Errorf("rendering preview: %w", err)
	}

	out, err := os.Create(output)
	if err != nil {
		return err
	}

	if err = png.Encode(out, img); err != nil {
		_ = out.Close()
		return err
	}

	a.logger.Info("rendered preview",
		slog.String("plan", plan.ID.String()),
		slog.String("destination", output))
	return out.Close()
}

// loadPlan reads a plan from a mission file, or from the journal when ref is
// a plan id
func (a *App) loadPlan(ctx context.Context, ref string) (mission.Plan, error) {
	id, err := uuid.Parse(ref)
	if err != nil {
		return missionfile.LoadFile(ref, a.ids)
	}

	store, err := a.openStore(false)
	if err != nil {
		return mission.Plan{}, err
	}
	defer store.Close()

	return store.Plan(ctx, id)
}

func (a *App) openStore(create bool) (*storage.SqliteStore, error) {
	dir := a.config.Storage.DataDirectory
	if dir == "" {
		dir = defaultDataDirectory
	}

	if create {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating storage directory '%s': %w", dir, err)
		}
	}

	dbPath := filepath.Join(dir, a.config.Storage.Database)
	if !create {
		if _, err := os.Stat(dbPath); err != nil {
			return nil, fmt.Errorf("database file '%s' does not exist: %w", dbPath, err)
		}
	}

	return storage.NewSqliteStore(dbPath, storage.WithLogger(a.logger)), nil
}
