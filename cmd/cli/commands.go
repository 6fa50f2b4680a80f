package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"readdit/pkg/models"
)

var jsonOutput bool

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print raw JSON responses")

	sessionCmd.AddCommand(sessionNewCmd, sessionShowCmd, sessionEndCmd)
	prefsCmd.AddCommand(prefsGetCmd, prefsSetCmd)
	rootCmd.AddCommand(sessionCmd, searchCmd, recommendCmd, overviewCmd, voicesCmd, factsCmd, prefsCmd, watchCmd)

	searchCmd.Flags().Int("limit", 10, "maximum number of hits")

	for _, c := range []*cobra.Command{recommendCmd, overviewCmd, factsCmd, watchCmd} {
		addWorkFlags(c)
	}

	addPrefsFlags(prefsSetCmd)
}

func addPrefsFlags(c *cobra.Command) {
	c.Flags().Int("style", -1, "style slider (0-100)")
	c.Flags().Int("pace", -1, "pace slider (0-100)")
	c.Flags().Int("complexity", -1, "complexity slider (0-100)")
	c.Flags().StringSlice("genres", nil, "genres: "+strings.Join(models.Genres, ", "))
	c.Flags().Bool("clear-genres", false, "deselect every genre")
}

func addWorkFlags(c *cobra.Command) {
	c.Flags().String("title", "", "work title (required)")
	c.Flags().String("work", "", "work key, e.g. /works/OL893415W")
	c.Flags().String("author", "", "author key, e.g. OL79034A")
	c.Flags().String("author-name", "", "author display name")
	c.Flags().StringSlice("subjects", nil, "subjects of the work")
	c.Flags().Int("year", 0, "first publication year")
	c.Flags().Int("editions", 0, "edition count")
	c.Flags().Int64("cover", 0, "cover id")
}

func workMeta(c *cobra.Command) (models.WorkMeta, error) {
	f := c.Flags()
	var m models.WorkMeta
	m.Title, _ = f.GetString("title")
	m.WorkKey, _ = f.GetString("work")
	m.AuthorKey, _ = f.GetString("author")
	m.AuthorName, _ = f.GetString("author-name")
	m.Subjects, _ = f.GetStringSlice("subjects")
	m.FirstPublishYear, _ = f.GetInt("year")
	m.EditionCount, _ = f.GetInt("editions")
	m.CoverID, _ = f.GetInt64("cover")
	if strings.TrimSpace(m.Title) == "" {
		return m, errors.New("--title is required")
	}
	return m, nil
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage the anonymous session that stores preferences",
}

var sessionNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a session and store its token",
	RunE: func(cmd *cobra.Command, args []string) error {
		var td tokenData
		if err := newAPIClient().do(cmd.Context(), http.MethodPost, "/session", nil, nil, &td); err != nil {
			return err
		}
		if err := saveToken(tokenPath, td); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "session %s started, valid until %s\n", td.SessionID, td.ExpiresAt)
		return nil
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newAPIClient().authed()
		if err != nil {
			return err
		}
		var out map[string]any
		if err := c.do(cmd.Context(), http.MethodGet, "/session", nil, nil, &out); err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}

var sessionEndCmd = &cobra.Command{
	Use:   "end",
	Short: "End the session and forget its token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if c, err := newAPIClient().authed(); err == nil {
			if err := c.do(cmd.Context(), http.MethodDelete, "/session", nil, nil, nil); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", err)
			}
		}
		if err := clearToken(tokenPath); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "session ended")
		return nil
	},
}

type searchResponse struct {
	Query string `json:"query"`
	Total int    `json:"total"`
	Items []struct {
		Key        string `json:"key"`
		Title      string `json:"title"`
		AuthorKey  string `json:"author_key"`
		AuthorName string `json:"author_name"`
		Snippet    string `json:"snippet"`
	} `json:"items"`
}

var searchCmd = &cobra.Command{
	Use:   "search <title>",
	Short: "Search the catalog by title",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		q := url.Values{"q": {strings.Join(args, " ")}, "limit": {strconv.Itoa(limit)}}

		var resp searchResponse
		if err := newAPIClient().do(cmd.Context(), http.MethodGet, "/works/search", q, nil, &resp); err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), resp)
		}
		w := cmd.OutOrStdout()
		if resp.Total == 0 {
			fmt.Fprintln(w, "no works found")
			return nil
		}
		for _, it := range resp.Items {
			fmt.Fprintf(w, "%s  %s\n    %s", it.Key, it.Title, it.Snippet)
			if it.AuthorKey != "" {
				fmt.Fprintf(w, "  [author %s]", it.AuthorKey)
			}
			fmt.Fprintln(w)
		}
		return nil
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend works related to a base work",
	RunE: func(cmd *cobra.Command, args []string) error {
		meta, err := workMeta(cmd)
		if err != nil {
			return err
		}
		var recs models.Recommendations
		c := newAPIClient().withOptionalToken()
		if err := c.do(cmd.Context(), http.MethodPost, "/recommendations", nil, meta, &recs); err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), recs)
		}
		printRecommendations(cmd.OutOrStdout(), recs)
		return nil
	},
}

func printRecommendations(w io.Writer, recs models.Recommendations) {
	switch recs.Status {
	case models.RecommendationsUnavailable:
		fmt.Fprintln(w, "recommendations are unavailable right now, try again later")
		return
	case models.RecommendationsNoMatch:
		fmt.Fprintln(w, "no suitable recommendations found")
		return
	}
	for i, r := range recs.Items {
		fmt.Fprintf(w, "%d. %s by %s (%s)\n   %s\n", i+1, r.Title, r.AuthorName, r.Key, r.ReasonText)
	}
}

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Describe a work",
	RunE: func(cmd *cobra.Command, args []string) error {
		meta, err := workMeta(cmd)
		if err != nil {
			return err
		}
		var out struct {
			Description string   `json:"description"`
			Summary     string   `json:"summary"`
			CoverURL    string   `json:"cover_url"`
			Labels      []string `json:"labels"`
		}
		if err := newAPIClient().do(cmd.Context(), http.MethodPost, "/works/overview", nil, meta, &out); err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), out)
		}
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, out.Summary)
		if out.Description != "" {
			fmt.Fprintf(w, "\n%s\n", out.Description)
		}
		if len(out.Labels) > 0 {
			fmt.Fprintf(w, "\nlabels: %s\n", strings.Join(out.Labels, " · "))
		}
		if out.CoverURL != "" {
			fmt.Fprintf(w, "cover: %s\n", out.CoverURL)
		}
		return nil
	},
}

type voicesResponse struct {
	Status string `json:"status"`
	Items  []struct {
		Title       string `json:"title"`
		Permalink   string `json:"permalink"`
		Ups         int    `json:"ups"`
		NumComments int    `json:"num_comments"`
		Community   string `json:"community"`
		Age         string `json:"age"`
	} `json:"items"`
}

var voicesCmd = &cobra.Command{
	Use:   "voices <title>",
	Short: "Show community threads about a work",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{"title": {strings.Join(args, " ")}}
		var resp voicesResponse
		if err := newAPIClient().do(cmd.Context(), http.MethodGet, "/works/voices", q, nil, &resp); err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), resp)
		}
		printVoices(cmd.OutOrStdout(), resp)
		return nil
	},
}

func printVoices(w io.Writer, resp voicesResponse) {
	switch {
	case resp.Status != "ok":
		fmt.Fprintln(w, "community threads are unavailable right now")
	case len(resp.Items) == 0:
		fmt.Fprintln(w, "no community threads found")
	}
	for _, p := range resp.Items {
		fmt.Fprintf(w, "r/%s  %s\n    🗳️ %d  💬 %d  %s\n    %s\n", p.Community, p.Title, p.Ups, p.NumComments, p.Age, p.Permalink)
	}
}

var factsCmd = &cobra.Command{
	Use:   "facts",
	Short: "Show fun facts about a work",
	RunE: func(cmd *cobra.Command, args []string) error {
		meta, err := workMeta(cmd)
		if err != nil {
			return err
		}
		var out struct {
			Items []models.Fact `json:"items"`
		}
		if err := newAPIClient().do(cmd.Context(), http.MethodPost, "/works/facts", nil, meta, &out); err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), out)
		}
		for _, f := range out.Items {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", f.Icon, f.Text)
		}
		return nil
	},
}

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Read or change the session preferences",
}

var prefsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the stored preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newAPIClient().authed()
		if err != nil {
			return err
		}
		var p models.Preferences
		if err := c.do(cmd.Context(), http.MethodGet, "/preferences", nil, nil, &p); err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), p)
	},
}

var prefsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update some preferences, leaving the others unchanged",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newAPIClient().authed()
		if err != nil {
			return err
		}
		payload, err := prefsPayload(cmd)
		if err != nil {
			return err
		}
		var p models.Preferences
		if err := c.do(cmd.Context(), http.MethodPut, "/preferences", nil, payload, &p); err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), p)
	},
}

// prefsPayload builds a partial update from the flags that were set.
func prefsPayload(cmd *cobra.Command) (map[string]any, error) {
	f := cmd.Flags()
	payload := map[string]any{}
	for _, name := range []string{"style", "pace", "complexity"} {
		if !f.Changed(name) {
			continue
		}
		v, _ := f.GetInt(name)
		if v < 0 || v > 100 {
			return nil, fmt.Errorf("--%s must be between 0 and 100", name)
		}
		payload[name] = v
	}
	if f.Changed("genres") {
		genres, _ := f.GetStringSlice("genres")
		for _, g := range genres {
			if !models.IsGenre(g) {
				return nil, fmt.Errorf("unknown genre %q", g)
			}
		}
		payload["genres"] = genres
	}
	if none, _ := f.GetBool("clear-genres"); none {
		payload["genres"] = []string{}
	}
	if len(payload) == 0 {
		return nil, errors.New("nothing to update")
	}
	return payload, nil
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Open a work in the live view and print its panels as they arrive",
	RunE: func(cmd *cobra.Command, args []string) error {
		meta, err := workMeta(cmd)
		if err != nil {
			return err
		}
		c := newAPIClient().withOptionalToken()
		wsURL, err := c.websocketURL("/ws")
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		ws, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
		if err != nil {
			return fmt.Errorf("connect %s: %w", wsURL, err)
		}
		defer ws.Close()
		go func() {
			<-ctx.Done()
			_ = ws.Close()
		}()

		if err := ws.WriteJSON(map[string]any{"type": "open", "work": meta}); err != nil {
			return err
		}
		return watch(ctx, ws, cmd.OutOrStdout())
	},
}

type liveEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// watch prints events until the stream for the opened work is done.
func watch(ctx context.Context, ws *websocket.Conn, w io.Writer) error {
	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		var ev liveEvent
		if err := json.Unmarshal(msg, &ev); err != nil {
			continue
		}
		switch ev.Type {
		case "done":
			return nil
		case "error":
			return fmt.Errorf("server: %s", string(ev.Data))
		case "recommendations":
			var recs models.Recommendations
			if err := json.Unmarshal(ev.Data, &recs); err == nil {
				fmt.Fprintln(w, "== recommendations")
				printRecommendations(w, recs)
			}
		case "voices":
			var v voicesResponse
			if err := json.Unmarshal(ev.Data, &v); err == nil {
				fmt.Fprintln(w, "== voices")
				printVoices(w, v)
			}
		default:
			fmt.Fprintf(w, "== %s\n%s\n", ev.Type, string(ev.Data))
		}
	}
}
