// Command overseer inspects and directs a running hobbitsim over its HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/talgya/hobbit-home/internal/engine"
	"github.com/talgya/hobbit-home/internal/overseer"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	args := os.Args[2:]
	switch os.Args[1] {
	case "status":
		err = statusCmd(args)
	case "map":
		err = mapCmd(args)
	case "hobbits":
		err = hobbitsCmd(args)
	case "work":
		err = workCmd(args)
	case "dig", "fill":
		err = cellOrderCmd(os.Args[1], args)
	case "build":
		err = buildCmd(args)
	case "demolish":
		err = cellOrderCmd("demolish", args)
	case "cancel":
		err = cancelCmd(args)
	case "speed":
		err = speedCmd(args)
	case "snapshot":
		err = snapshotCmd(args)
	case "watch":
		err = watchCmd(args)
	case "patrol":
		err = patrolCmd(args)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "overseer:", err)
		var apiErr *overseer.APIError
		if errors.As(err, &apiErr) && apiErr.Status < 500 {
			os.Exit(3)
		}
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: overseer <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "read:   status | map | hobbits | work | watch | patrol")
	fmt.Fprintln(os.Stderr, "orders: dig X Y | fill X Y | build TYPE X Y | demolish X Y | cancel ID")
	fmt.Fprintln(os.Stderr, "admin:  speed [N] | snapshot")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "env: HOBBIT_API_URL (default http://localhost:8080), HOBBIT_ADMIN_KEY")
}

func apiURL(fs *flag.FlagSet) *string {
	return fs.String("api", envOrDefault("HOBBIT_API_URL", "http://localhost:8080"), "hobbitsim base URL")
}

func newActor(base string) *overseer.Actor {
	return overseer.NewActor(base, os.Getenv("HOBBIT_ADMIN_KEY"))
}

func statusCmd(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	api := apiURL(fs)
	_ = fs.Parse(args)

	obs, err := overseer.NewObserver(*api).Observe()
	if err != nil {
		return err
	}
	st := obs.Status
	health := overseer.Triage(obs)

	state := "running"
	if st.Speed == 0 {
		state = "paused"
	}
	fmt.Printf("%s (%s)\n", st.Name, st.ColonyID)
	fmt.Printf("  tick %s, %s into the colony, %s at %gx\n",
		humanize.Comma(int64(st.Tick)), english.Plural(st.Time, "second", "seconds"), state, st.Speed)
	fmt.Printf("  map %dx%d, %s, %s\n", st.Width, st.Height,
		english.Plural(st.Hobbits, "hobbit", "hobbits"),
		english.Plural(st.Buildings, "building", "buildings"))
	fmt.Printf("  orders: %d pending, %d in progress, %d held\n", st.Pending, st.InProgress, st.Held)
	fmt.Printf("  health: %s\n", health.Level)
	for _, note := range health.Notes {
		fmt.Printf("    - %s\n", note)
	}
	return nil
}

func mapCmd(args []string) error {
	fs := flag.NewFlagSet("map", flag.ExitOnError)
	api := apiURL(fs)
	_ = fs.Parse(args)

	obs, err := overseer.NewObserver(*api).Observe()
	if err != nil {
		return err
	}
	rows := make([][]rune, len(obs.Map.Rows))
	for y, row := range obs.Map.Rows {
		rows[y] = []rune(row)
	}
	for _, h := range obs.Hobbits {
		if h.Position.Y < len(rows) && h.Position.X < len(rows[h.Position.Y]) {
			rows[h.Position.Y][h.Position.X] = '@'
		}
	}
	for _, row := range rows {
		fmt.Println(string(row))
	}
	return nil
}

func hobbitsCmd(args []string) error {
	fs := flag.NewFlagSet("hobbits", flag.ExitOnError)
	api := apiURL(fs)
	_ = fs.Parse(args)

	obs, err := overseer.NewObserver(*api).Observe()
	if err != nil {
		return err
	}
	for _, h := range obs.Hobbits {
		fmt.Printf("%d  %-24s %-8s %-10s %-10s %-10s %s\n",
			h.Index, h.FullName, h.Position, h.Mood, h.Hunger, h.Action, h.OrderID)
		if h.Thoughts != "" {
			fmt.Printf("   \"%s\"\n", h.Thoughts)
		}
	}
	return nil
}

func workCmd(args []string) error {
	fs := flag.NewFlagSet("work", flag.ExitOnError)
	api := apiURL(fs)
	_ = fs.Parse(args)

	obs, err := overseer.NewObserver(*api).Observe()
	if err != nil {
		return err
	}
	for _, c := range obs.Work.InProgress {
		fmt.Printf("in progress  %s  %s (%d left)\n", describe(c.Order), c.Hobbit, c.Remaining)
	}
	for _, o := range obs.Work.Pending {
		fmt.Printf("pending      %s\n", describe(o))
	}
	for _, o := range obs.Work.Held {
		fmt.Printf("held         %s\n", describe(o))
	}
	if len(obs.Work.InProgress)+len(obs.Work.Pending)+len(obs.Work.Held) == 0 {
		fmt.Println("no work orders")
	}
	return nil
}

func describe(o overseer.OrderInfo) string {
	what := o.Kind
	if o.Building != nil {
		what += " " + o.Building.Name
	}
	return fmt.Sprintf("%s  %-22s at (%d,%d)", o.ID, what, o.X, o.Y)
}

func cellOrderCmd(kind string, args []string) error {
	fs := flag.NewFlagSet(kind, flag.ExitOnError)
	api := apiURL(fs)
	_ = fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: overseer %s X Y", kind)
	}
	x, y, err := parseCell(fs.Arg(0), fs.Arg(1))
	if err != nil {
		return err
	}
	return placeOrder(*api, overseer.OrderRequest{Type: kind, X: x, Y: y})
}

func buildCmd(args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	api := apiURL(fs)
	_ = fs.Parse(args)
	if fs.NArg() < 3 {
		return errors.New(`usage: overseer build TYPE X Y (e.g. build "dining room" 20 15)`)
	}
	n := fs.NArg()
	x, y, err := parseCell(fs.Arg(n-2), fs.Arg(n-1))
	if err != nil {
		return err
	}
	building := buildingType(fs.Args()[:n-2])
	return placeOrder(*api, overseer.OrderRequest{Type: "build", X: x, Y: y, Building: building})
}

// buildingType joins the words of a building name into its catalogue type,
// so "dining room" and "DiningRoom" both name the same building.
func buildingType(words []string) string {
	return strings.ReplaceAll(strings.Join(words, ""), " ", "")
}

func placeOrder(api string, req overseer.OrderRequest) error {
	o, err := newActor(api).Order(req)
	if err != nil {
		return err
	}
	fmt.Println("ordered", describe(*o))
	return nil
}

func cancelCmd(args []string) error {
	fs := flag.NewFlagSet("cancel", flag.ExitOnError)
	api := apiURL(fs)
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("usage: overseer cancel ORDER_ID")
	}
	if err := newActor(*api).Cancel(fs.Arg(0)); err != nil {
		return err
	}
	fmt.Println("cancelled", fs.Arg(0))
	return nil
}

func speedCmd(args []string) error {
	fs := flag.NewFlagSet("speed", flag.ExitOnError)
	api := apiURL(fs)
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		st, err := overseer.NewObserver(*api).Status()
		if err != nil {
			return err
		}
		fmt.Printf("speed %gx\n", st.Speed)
		return nil
	}
	speed, err := strconv.ParseFloat(fs.Arg(0), 64)
	if err != nil {
		return fmt.Errorf("bad speed %q: %w", fs.Arg(0), err)
	}
	got, err := newActor(*api).SetSpeed(speed)
	if err != nil {
		return err
	}
	fmt.Printf("speed %gx\n", got)
	return nil
}

func snapshotCmd(args []string) error {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	api := apiURL(fs)
	_ = fs.Parse(args)

	tick, err := newActor(*api).Snapshot()
	if err != nil {
		return err
	}
	fmt.Printf("saved colony at tick %s\n", humanize.Comma(int64(tick)))
	return nil
}

func watchCmd(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	api := apiURL(fs)
	category := fs.String("category", "", "only show events of this category (work, colony)")
	_ = fs.Parse(args)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := overseer.NewObserver(*api).Watch(ctx, func(ev engine.Event) {
		if *category != "" && ev.Category != *category {
			return
		}
		fmt.Printf("[%8d] %-6s %s\n", ev.Tick, ev.Category, ev.Description)
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// patrolCmd triages the colony on an interval and logs what it finds.
func patrolCmd(args []string) error {
	fs := flag.NewFlagSet("patrol", flag.ExitOnError)
	api := apiURL(fs)
	interval := fs.Duration("interval", time.Minute, "time between checks")
	_ = fs.Parse(args)

	observer := overseer.NewObserver(*api)

	slog.Info("waiting for hobbitsim API...", "api_url", *api)
	if err := waitForAPI(*api); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		patrol(observer)
		select {
		case <-ctx.Done():
			slog.Info("patrol stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func patrol(observer *overseer.Observer) {
	obs, err := observer.Observe()
	if err != nil {
		slog.Error("observation failed", "error", err)
		return
	}
	health := overseer.Triage(obs)
	attrs := []any{
		"tick", obs.Status.Tick,
		"level", health.Level,
		"idle", health.Idle,
		"pending", health.Pending,
		"in_progress", health.InProgress,
		"held", health.Held,
	}
	switch health.Level {
	case overseer.LevelStalled, overseer.LevelWarning:
		slog.Warn("colony needs attention", append(attrs, "notes", strings.Join(health.Notes, "; "))...)
	default:
		slog.Info("colony checked", attrs...)
	}
}

func parseCell(xs, ys string) (int, int, error) {
	x, err := strconv.Atoi(xs)
	if err != nil {
		return 0, 0, fmt.Errorf("bad x %q", xs)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return 0, 0, fmt.Errorf("bad y %q", ys)
	}
	return x, y, nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// waitForAPI polls the status endpoint with exponential backoff until it
// responds, giving up after five minutes.
func waitForAPI(apiURL string) error {
	backoff := 2 * time.Second
	maxBackoff := 30 * time.Second
	deadline := time.Now().Add(5 * time.Minute)

	for {
		resp, err := http.Get(apiURL + "/api/v1/status")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				slog.Info("hobbitsim API is ready")
				return nil
			}
		}
		if time.Now().After(deadline) {
			return errors.New("hobbitsim API did not become ready within 5 minutes")
		}
		slog.Info("hobbitsim not ready, retrying...", "backoff", backoff)
		time.Sleep(backoff)
		backoff = min(backoff*2, maxBackoff)
	}
}
