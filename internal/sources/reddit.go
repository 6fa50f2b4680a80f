package sources

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"readdit/internal/logging"
	"readdit/pkg/models"
)

const (
	DefaultRedditProxy = "https://reddit-proxy.fbn.workers.dev"
	redditWebBase      = "https://www.reddit.com"
)

// DefaultCommunities are searched in this order.
var DefaultCommunities = []string{"books", "booksuggestions", "buecher"}

// RedditConfig configures the community provider.
type RedditConfig struct {
	ProxyURL    string
	Communities []string

	// A post is kept when it has at least MinUps upvotes or at least
	// MinComments comments.
	MinUps      int
	MinComments int
	MaxPosts    int

	Client ClientConfig
}

// Reddit searches community posts through a CORS proxy that forwards a
// site-relative path.
type Reddit struct {
	proxy       string
	communities []string
	minUps      int
	minComments int
	maxPosts    int
	c           *jsonClient
}

func NewReddit(cfg RedditConfig, hc *http.Client) *Reddit {
	if cfg.ProxyURL == "" {
		cfg.ProxyURL = DefaultRedditProxy
	}
	if len(cfg.Communities) == 0 {
		cfg.Communities = DefaultCommunities
	}
	if cfg.MinUps <= 0 {
		cfg.MinUps = 20
	}
	if cfg.MinComments <= 0 {
		cfg.MinComments = 5
	}
	if cfg.MaxPosts <= 0 {
		cfg.MaxPosts = 5
	}
	if cfg.Client.Name == "" {
		cfg.Client.Name = "reddit"
	}
	return &Reddit{
		proxy:       cfg.ProxyURL,
		communities: cfg.Communities,
		minUps:      cfg.MinUps,
		minComments: cfg.MinComments,
		maxPosts:    cfg.MaxPosts,
		c:           newJSONClient(cfg.Client, hc),
	}
}

func (r *Reddit) Name() string { return r.c.name }

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Permalink   string  `json:"permalink"`
	Ups         int     `json:"ups"`
	NumComments int     `json:"num_comments"`
	Subreddit   string  `json:"subreddit"`
	CreatedUTC  float64 `json:"created_utc"`
}

func (p redditPost) post(community string) models.CommunityPost {
	name := p.Subreddit
	if name == "" {
		name = community
	}
	link := p.Permalink
	if strings.HasPrefix(link, "/") {
		link = redditWebBase + link
	}
	return models.CommunityPost{
		ID:          p.ID,
		Title:       p.Title,
		Permalink:   link,
		Ups:         max(p.Ups, 0),
		NumComments: max(p.NumComments, 0),
		Community:   name,
		CreatedUTC:  int64(p.CreatedUTC),
	}
}

// SearchPosts searches every community for query and returns the best
// engaged posts whose title mentions it, highest score first. The result
// is Empty only when every community request failed.
func (r *Reddit) SearchPosts(ctx context.Context, query string) Result[[]models.CommunityPost] {
	query = strings.TrimSpace(query)
	if query == "" {
		return Empty[[]models.CommunityPost]()
	}

	slots := make([][]models.CommunityPost, len(r.communities))
	okSlots := make([]bool, len(r.communities))

	var g errgroup.Group
	for i, community := range r.communities {
		i, community := i, community
		g.Go(func() error {
			posts, ok := r.searchCommunity(ctx, community, query)
			slots[i], okSlots[i] = posts, ok
			return nil
		})
	}
	_ = g.Wait()

	anyOK := false
	var all []models.CommunityPost
	for i := range slots {
		anyOK = anyOK || okSlots[i]
		all = append(all, slots[i]...)
	}
	if !anyOK {
		return Empty[[]models.CommunityPost]()
	}

	return Ok(r.rank(all, query))
}

func (r *Reddit) searchCommunity(ctx context.Context, community, query string) ([]models.CommunityPost, bool) {
	u := r.proxy + "?url=" + url.QueryEscape(SearchPath(community, query))

	var raw redditListing
	if err := r.c.getJSON(ctx, u, &raw); err != nil {
		logging.Warn().Err(err).
			Str("provider", r.c.name).
			Str("community", community).
			Msg("community search failed")
		return nil, false
	}

	out := make([]models.CommunityPost, 0, len(raw.Data.Children))
	for _, ch := range raw.Data.Children {
		out = append(out, ch.Data.post(community))
	}
	return out, true
}

// rank filters posts by engagement and title mention, scores them and
// keeps the top maxPosts. Ties keep community order.
func (r *Reddit) rank(posts []models.CommunityPost, query string) []models.CommunityPost {
	q := strings.ToLower(query)
	kept := make([]models.CommunityPost, 0, len(posts))
	for _, p := range posts {
		engaged := p.Ups >= r.minUps || p.NumComments >= r.minComments
		if !engaged || !strings.Contains(strings.ToLower(p.Title), q) {
			continue
		}
		p.Score = models.EngagementScore(p.Ups, p.NumComments)
		kept = append(kept, p)
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Score > kept[j].Score })
	if len(kept) > r.maxPosts {
		kept = kept[:r.maxPosts]
	}
	return kept
}

// SearchPath is the site-relative search path handed to the proxy.
func SearchPath(community, query string) string {
	q := url.Values{}
	q.Set("q", query)
	q.Set("restrict_sr", "on")
	q.Set("type", "link")
	q.Set("sort", "relevance")
	return "/r/" + url.PathEscape(community) + "/search.json?" + q.Encode()
}
