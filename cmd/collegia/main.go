// ABOUTME: Local CLI for inspecting and driving the collegia social core
// ABOUTME: Operates directly on the local SQLite-backed state stores

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/collegia/collegia-core/internal/config"
	"github.com/collegia/collegia-core/internal/feed"
	"github.com/collegia/collegia-core/internal/messaging"
	"github.com/collegia/collegia-core/internal/notify"
	"github.com/collegia/collegia-core/internal/profile"
	"github.com/collegia/collegia-core/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := loadConfig()
	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}

	app, err := newApp(cfg)
	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "whoami":
		err = app.cmdWhoami(args)
	case "feed":
		err = app.cmdFeed()
	case "post":
		err = app.cmdPost(args)
	case "like":
		err = app.cmdLike(args)
	case "comment":
		err = app.cmdComment(args)
	case "trending":
		err = app.cmdTrending()
	case "inbox":
		err = app.cmdInbox()
	case "send":
		err = app.cmdSend(args)
	case "read":
		err = app.cmdRead(args)
	case "notifications":
		err = app.cmdNotifications(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		printUsage()
		err = fmt.Errorf("unknown command: %s", cmd)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Println("collegia - local social core")
	fmt.Println()
	fmt.Println("Usage: collegia <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  whoami [name role]        Show (or set) the local user")
	fmt.Println("  feed                      Show the feed, newest first")
	fmt.Println("  post <content>            Publish a post as the local user")
	fmt.Println("  like <post-id>            Toggle your like on a post")
	fmt.Println("  comment <post-id> <text>  Comment on a post")
	fmt.Println("  trending                  Show the top trending tags")
	fmt.Println("  inbox                     List your conversations")
	fmt.Println("  send <user-id> <name> <text>  Message another user")
	fmt.Println("  read <conversation-id>    Mark a conversation read")
	fmt.Println("  notifications [clear]     Show (or clear) your notifications")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  COLLEGIA_CONFIG           Path to a YAML config file (optional)")
}

func loadConfig() (*config.Config, error) {
	if path := os.Getenv("COLLEGIA_CONFIG"); path != "" {
		return config.Load(path)
	}
	return config.Default(), nil
}

// app wires the state services over one SQLite store.
type app struct {
	store     store.Store
	feed      *feed.Service
	notify    *notify.Service
	messaging *messaging.Service
	profile   *profile.Service
}

func newApp(cfg *config.Config) (*app, error) {
	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	a := &app{
		store:   st,
		feed:    feed.NewService(st, logger),
		notify:  notify.NewService(st, logger),
		profile: profile.NewService(st, logger),
	}
	a.messaging = messaging.NewService(st, a.notify, logger)

	ctx := context.Background()
	a.feed.Hydrate(ctx)
	a.notify.Hydrate(ctx)
	a.messaging.Hydrate(ctx)
	a.profile.Hydrate(ctx)

	return a, nil
}

func (a *app) Close() {
	a.feed.Close()
	a.messaging.Close()
	a.notify.Close()
	a.profile.Close()
	a.store.Close()
}

// currentUser returns the local user or an instructive error.
func (a *app) currentUser() (*profile.User, error) {
	u := a.profile.CurrentUser()
	if u == nil {
		return nil, fmt.Errorf("no local user set, run: collegia whoami <name> <athlete|coach>")
	}
	return u, nil
}

func (a *app) cmdWhoami(args []string) error {
	if len(args) >= 2 {
		role := profile.Role(args[1])
		if role != profile.RoleAthlete && role != profile.RoleCoach {
			return fmt.Errorf("role must be athlete or coach")
		}
		a.profile.SetUser(profile.User{
			ID:   strings.ToLower(args[0]),
			Name: args[0],
			Role: role,
		})
	}

	u, err := a.currentUser()
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Printf("%s", u.Name)
	fmt.Printf(" (%s, id %s)\n", u.Role, u.ID)
	return nil
}

func (a *app) cmdFeed() error {
	posts := a.feed.Posts()
	if len(posts) == 0 {
		fmt.Println("The feed is empty.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAUTHOR\tROLE\tLIKES\tCOMMENTS\tWHEN\tCONTENT")
	for _, p := range posts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			shortID(p.ID), p.AuthorName, p.AuthorRole, p.Likes, p.Comments,
			p.Timestamp.Format(time.DateTime), p.Content)
	}
	return w.Flush()
}

func (a *app) cmdPost(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: collegia post <content>")
	}
	u, err := a.currentUser()
	if err != nil {
		return err
	}

	p := feed.NewPost(u.ID, u.Name, feed.Role(u.Role), strings.Join(args, " "), nil)
	a.feed.AddPost(p)

	color.Green("Posted %s\n", shortID(p.ID))
	return nil
}

func (a *app) cmdLike(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: collegia like <post-id>")
	}
	u, err := a.currentUser()
	if err != nil {
		return err
	}

	postID, err := a.resolvePostID(args[0])
	if err != nil {
		return err
	}

	a.feed.ToggleLike(postID, u.ID)
	if a.feed.IsLikedByUser(postID, u.ID) {
		color.Green("Liked %s\n", shortID(postID))
	} else {
		fmt.Printf("Unliked %s\n", shortID(postID))
	}
	return nil
}

func (a *app) cmdComment(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: collegia comment <post-id> <text>")
	}
	u, err := a.currentUser()
	if err != nil {
		return err
	}

	postID, err := a.resolvePostID(args[0])
	if err != nil {
		return err
	}

	if a.feed.AddComment(postID, u.ID, u.Name, strings.Join(args[1:], " ")) == nil {
		return fmt.Errorf("post not found: %s", args[0])
	}
	color.Green("Commented on %s\n", shortID(postID))
	return nil
}

func (a *app) cmdTrending() error {
	tags := a.feed.TrendingTags()
	if len(tags) == 0 {
		fmt.Println("Nothing is trending yet.")
		return nil
	}

	cyan := color.New(color.FgCyan)
	for i, tc := range tags {
		cyan.Printf("%2d. #%s", i+1, tc.Tag)
		fmt.Printf("  (%d)\n", tc.Count)
	}
	return nil
}

func (a *app) cmdInbox() error {
	u, err := a.currentUser()
	if err != nil {
		return err
	}

	convs := a.messaging.ConversationsForUser(u.ID)
	if len(convs) == 0 {
		fmt.Println("No conversations.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWITH\tUNREAD\tLAST ACTIVITY\tLAST MESSAGE")
	for _, c := range convs {
		last := ""
		if c.LastMessage != nil {
			last = c.LastMessage.Content
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			shortID(c.ID), otherParticipant(c, u.ID), c.UnreadCount,
			c.LastMessageTime.Format(time.DateTime), last)
	}
	return w.Flush()
}

func (a *app) cmdSend(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: collegia send <user-id> <name> <text>")
	}
	u, err := a.currentUser()
	if err != nil {
		return err
	}

	otherID, otherName := args[0], args[1]
	a.profile.RememberUser(profile.User{ID: otherID, Name: otherName})

	convID := a.messaging.GetOrCreateConversation(u.ID, u.Name, otherID, otherName)
	if a.messaging.SendMessage(convID, u.ID, u.Name, strings.Join(args[2:], " ")) == nil {
		return fmt.Errorf("conversation not found: %s", convID)
	}

	color.Green("Sent to %s (conversation %s)\n", otherName, shortID(convID))
	return nil
}

func (a *app) cmdRead(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: collegia read <conversation-id>")
	}
	u, err := a.currentUser()
	if err != nil {
		return err
	}

	convID, err := a.resolveConversationID(u.ID, args[0])
	if err != nil {
		return err
	}

	msgs := a.messaging.MessagesFor(convID)
	for _, m := range msgs {
		fmt.Printf("[%s] %s: %s\n", m.Timestamp.Format(time.DateTime), m.SenderName, m.Content)
	}
	a.messaging.MarkConversationRead(convID, u.ID)
	return nil
}

func (a *app) cmdNotifications(args []string) error {
	u, err := a.currentUser()
	if err != nil {
		return err
	}

	if len(args) == 1 && args[0] == "clear" {
		a.notify.ClearFor(u.ID)
		fmt.Println("Notifications cleared.")
		return nil
	}

	entries := a.notify.ListFor(u.ID)
	if len(entries) == 0 {
		fmt.Println("No notifications.")
		return nil
	}

	yellow := color.New(color.FgYellow)
	for _, n := range entries {
		marker := " "
		if !n.Read {
			marker = "*"
		}
		yellow.Printf("%s [%s] %s", marker, n.Type, n.Title)
		if n.Body != "" {
			fmt.Printf(": %s", n.Body)
		}
		fmt.Printf("  (%s)\n", n.Timestamp.Format(time.DateTime))
	}
	a.notify.MarkAllRead(u.ID)
	return nil
}

// resolvePostID accepts a full or shortened post id.
func (a *app) resolvePostID(arg string) (string, error) {
	for _, p := range a.feed.Posts() {
		if p.ID == arg || strings.HasPrefix(p.ID, arg) {
			return p.ID, nil
		}
	}
	return "", fmt.Errorf("post not found: %s", arg)
}

// resolveConversationID accepts a full or shortened conversation id.
func (a *app) resolveConversationID(userID, arg string) (string, error) {
	for _, c := range a.messaging.ConversationsForUser(userID) {
		if c.ID == arg || strings.HasPrefix(c.ID, arg) {
			return c.ID, nil
		}
	}
	return "", fmt.Errorf("conversation not found: %s", arg)
}

func otherParticipant(c *messaging.Conversation, userID string) string {
	for i, id := range c.Participants {
		if id != userID && i < len(c.ParticipantNames) {
			return c.ParticipantNames[i]
		}
	}
	return "?"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
