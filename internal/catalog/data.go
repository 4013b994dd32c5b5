package catalog

import (
	"github.com/m-lab/rendersim/pkg/render1/model"
)

var defaultPresets = []model.NetworkPreset{
	{ID: "fast", Label: "Fast connection", Multiplier: 1},
	{ID: "slow", Label: "Slow 3G", Multiplier: 3},
}

var defaultScenarios = []model.Scenario{
	{
		ID:          "ssr",
		Name:        "Server-Side Rendering",
		ShortName:   "SSR",
		Description: "The server fetches data and renders HTML on every request. Content shows up as soon as the HTML arrives, interactivity waits for hydration.",
		Color:       "#3b82f6",
		Phases: []model.Phase{
			{ID: "request", Label: "Request", StartMs: 0, DurationMs: 40, Category: model.CategoryNetwork,
				Description: "The browser sends the request to the origin server."},
			{ID: "data", Label: "Fetch data", StartMs: 40, DurationMs: 120, Category: model.CategoryServer,
				Description: "The server queries its data sources."},
			{ID: "render", Label: "Render HTML", StartMs: 160, DurationMs: 60, Category: model.CategoryServer,
				Description: "The server renders the page to HTML."},
			{ID: "response", Label: "Send HTML", StartMs: 220, DurationMs: 80, Category: model.CategoryNetwork,
				Description: "The complete HTML document travels to the browser."},
			{ID: "paint", Label: "Paint", StartMs: 300, DurationMs: 40, Category: model.CategoryClient,
				Description: "The browser parses the HTML and paints the content."},
			{ID: "js", Label: "Load JS", StartMs: 340, DurationMs: 80, Category: model.CategoryNetwork,
				Description: "The JavaScript bundle is downloaded."},
			{ID: "hydrate", Label: "Hydrate", StartMs: 420, DurationMs: 100, Category: model.CategoryHydration,
				Description: "Event handlers are attached to the server HTML."},
		},
		Metrics: model.Metrics{TTFBMs: 260, FCPMs: 340, LCPMs: 340, TTIMs: 520, BundleKB: 180, PayloadKB: 42},
		PageStates: []model.PageStateTransition{
			{AtMs: 0, State: model.PageBlank},
			{AtMs: 340, State: model.PagePartial},
			{AtMs: 520, State: model.PageComplete},
		},
	},
	{
		ID:          "ssg",
		Name:        "Static Site Generation",
		ShortName:   "SSG",
		Description: "Pages are rendered once at build time and served from a CDN edge close to the user.",
		Color:       "#10b981",
		Phases: []model.Phase{
			{ID: "request", Label: "Request", StartMs: 0, DurationMs: 40, Category: model.CategoryNetwork,
				Description: "The browser sends the request to the nearest CDN edge."},
			{ID: "edge", Label: "Edge cache", StartMs: 40, DurationMs: 30, Category: model.CategoryServer,
				Description: "The edge finds the prebuilt HTML in its cache."},
			{ID: "response", Label: "Send HTML", StartMs: 70, DurationMs: 60, Category: model.CategoryNetwork,
				Description: "The prebuilt HTML travels to the browser."},
			{ID: "paint", Label: "Paint", StartMs: 130, DurationMs: 40, Category: model.CategoryClient,
				Description: "The browser parses the HTML and paints the content."},
			{ID: "js", Label: "Load JS", StartMs: 170, DurationMs: 80, Category: model.CategoryNetwork,
				Description: "The JavaScript bundle is downloaded."},
			{ID: "hydrate", Label: "Hydrate", StartMs: 250, DurationMs: 80, Category: model.CategoryHydration,
				Description: "Event handlers are attached to the static HTML."},
		},
		Metrics: model.Metrics{TTFBMs: 70, FCPMs: 170, LCPMs: 170, TTIMs: 330, BundleKB: 160, PayloadKB: 38},
		PageStates: []model.PageStateTransition{
			{AtMs: 0, State: model.PageBlank},
			{AtMs: 170, State: model.PagePartial},
			{AtMs: 330, State: model.PageComplete},
		},
	},
	{
		ID:          "isr",
		Name:        "Incremental Static Regeneration",
		ShortName:   "ISR",
		Description: "Static pages are served from the cache and regenerated in the background once they become stale.",
		Color:       "#8b5cf6",
		Phases: []model.Phase{
			{ID: "request", Label: "Request", StartMs: 0, DurationMs: 40, Category: model.CategoryNetwork,
				Description: "The browser sends the request to the nearest CDN edge."},
			{ID: "edge", Label: "Cache hit", StartMs: 40, DurationMs: 30, Category: model.CategoryServer,
				Description: "The edge serves the cached page, even if it is stale."},
			{ID: "response", Label: "Send HTML", StartMs: 70, DurationMs: 60, Category: model.CategoryNetwork,
				Description: "The cached HTML travels to the browser."},
			{ID: "paint", Label: "Paint", StartMs: 130, DurationMs: 40, Category: model.CategoryClient,
				Description: "The browser parses the HTML and paints the content."},
			{ID: "regenerate", Label: "Regenerate", StartMs: 130, DurationMs: 180, Category: model.CategoryServer,
				Description: "The server rebuilds the stale page in the background for the next visitor."},
			{ID: "js", Label: "Load JS", StartMs: 170, DurationMs: 80, Category: model.CategoryNetwork,
				Description: "The JavaScript bundle is downloaded."},
			{ID: "hydrate", Label: "Hydrate", StartMs: 250, DurationMs: 80, Category: model.CategoryHydration,
				Description: "Event handlers are attached to the cached HTML."},
		},
		Metrics: model.Metrics{TTFBMs: 70, FCPMs: 170, LCPMs: 170, TTIMs: 330, BundleKB: 165, PayloadKB: 38},
		PageStates: []model.PageStateTransition{
			{AtMs: 0, State: model.PageBlank},
			{AtMs: 170, State: model.PagePartial},
			{AtMs: 330, State: model.PageComplete},
		},
	},
	{
		ID:          "csr",
		Name:        "Client-Side Rendering",
		ShortName:   "CSR",
		Description: "The server sends an empty shell. The browser downloads the application, fetches data and renders everything itself.",
		Color:       "#f59e0b",
		Phases: []model.Phase{
			{ID: "request", Label: "Request", StartMs: 0, DurationMs: 40, Category: model.CategoryNetwork,
				Description: "The browser sends the request to the CDN."},
			{ID: "response", Label: "Send shell", StartMs: 40, DurationMs: 50, Category: model.CategoryNetwork,
				Description: "A nearly empty HTML shell travels to the browser."},
			{ID: "paint-shell", Label: "Paint shell", StartMs: 90, DurationMs: 20, Category: model.CategoryClient,
				Description: "The browser paints the empty application shell."},
			{ID: "js", Label: "Load JS", StartMs: 110, DurationMs: 150, Category: model.CategoryNetwork,
				Description: "The full application bundle is downloaded."},
			{ID: "execute", Label: "Execute JS", StartMs: 260, DurationMs: 80, Category: model.CategoryClient,
				Description: "The bundle is parsed and the application boots."},
			{ID: "fetch", Label: "Fetch data", StartMs: 340, DurationMs: 140, Category: model.CategoryFetch,
				Description: "The application requests its data from an API."},
			{ID: "render", Label: "Render", StartMs: 480, DurationMs: 60, Category: model.CategoryClient,
				Description: "The application renders the page with the data."},
		},
		Metrics: model.Metrics{TTFBMs: 60, FCPMs: 110, LCPMs: 540, TTIMs: 540, BundleKB: 320, PayloadKB: 6},
		PageStates: []model.PageStateTransition{
			{AtMs: 0, State: model.PageBlank},
			{AtMs: 110, State: model.PageShell},
			{AtMs: 340, State: model.PageLoading},
			{AtMs: 540, State: model.PageComplete},
		},
	},
	{
		ID:          "streaming",
		Name:        "Streaming SSR",
		ShortName:   "Streaming",
		Description: "The server flushes the page shell immediately and streams slower sections as their data resolves, hydrating them selectively.",
		Color:       "#ec4899",
		Phases: []model.Phase{
			{ID: "request", Label: "Request", StartMs: 0, DurationMs: 40, Category: model.CategoryNetwork,
				Description: "The browser sends the request to the origin server."},
			{ID: "shell", Label: "Render shell", StartMs: 40, DurationMs: 30, Category: model.CategoryServer,
				Description: "The server renders the static shell without waiting for data."},
			{ID: "data", Label: "Fetch data", StartMs: 70, DurationMs: 190, Category: model.CategoryServer,
				Description: "Slow data sources resolve while the shell is already on its way."},
			{ID: "stream-shell", Label: "Stream shell", StartMs: 70, DurationMs: 40, Category: model.CategoryNetwork,
				Description: "The first chunk of HTML is flushed to the browser."},
			{ID: "paint-shell", Label: "Paint shell", StartMs: 110, DurationMs: 20, Category: model.CategoryClient,
				Description: "The browser paints the shell with loading placeholders."},
			{ID: "js", Label: "Load JS", StartMs: 130, DurationMs: 100, Category: model.CategoryNetwork,
				Description: "The JavaScript bundle is downloaded in parallel."},
			{ID: "hydrate-shell", Label: "Hydrate shell", StartMs: 230, DurationMs: 60, Category: model.CategoryHydration,
				Description: "The shell becomes interactive before the data arrives."},
			{ID: "stream-data", Label: "Stream content", StartMs: 260, DurationMs: 40, Category: model.CategoryNetwork,
				Description: "The rendered content is streamed into its placeholder."},
			{ID: "paint-data", Label: "Paint content", StartMs: 300, DurationMs: 20, Category: model.CategoryClient,
				Description: "The browser swaps the placeholder for the content."},
			{ID: "hydrate-data", Label: "Hydrate content", StartMs: 320, DurationMs: 40, Category: model.CategoryHydration,
				Description: "The streamed section is hydrated."},
		},
		Metrics: model.Metrics{TTFBMs: 70, FCPMs: 130, LCPMs: 320, TTIMs: 360, BundleKB: 190, PayloadKB: 44},
		PageStates: []model.PageStateTransition{
			{AtMs: 0, State: model.PageBlank},
			{AtMs: 130, State: model.PageShell},
			{AtMs: 320, State: model.PageStreamed},
			{AtMs: 360, State: model.PageComplete},
		},
	},
}

// defaultCacheMiss holds the variants shown when the cache-hit toggle is off.
var defaultCacheMiss = map[string]model.Scenario{
	"isr": {
		ID:          "isr",
		Name:        "Incremental Static Regeneration",
		ShortName:   "ISR",
		Description: "Nothing is cached yet: the first visitor waits for the server to render the page, which is then cached for everyone else.",
		Color:       "#8b5cf6",
		Phases: []model.Phase{
			{ID: "request", Label: "Request", StartMs: 0, DurationMs: 40, Category: model.CategoryNetwork,
				Description: "The browser sends the request to the nearest CDN edge."},
			{ID: "edge", Label: "Cache miss", StartMs: 40, DurationMs: 20, Category: model.CategoryServer,
				Description: "The edge has no cached copy and forwards the request."},
			{ID: "render", Label: "Render HTML", StartMs: 60, DurationMs: 180, Category: model.CategoryServer,
				Description: "The server fetches data, renders the page and stores it in the cache."},
			{ID: "response", Label: "Send HTML", StartMs: 240, DurationMs: 80, Category: model.CategoryNetwork,
				Description: "The fresh HTML travels to the browser."},
			{ID: "paint", Label: "Paint", StartMs: 320, DurationMs: 40, Category: model.CategoryClient,
				Description: "The browser parses the HTML and paints the content."},
			{ID: "js", Label: "Load JS", StartMs: 360, DurationMs: 80, Category: model.CategoryNetwork,
				Description: "The JavaScript bundle is downloaded."},
			{ID: "hydrate", Label: "Hydrate", StartMs: 440, DurationMs: 100, Category: model.CategoryHydration,
				Description: "Event handlers are attached to the HTML."},
		},
		Metrics: model.Metrics{TTFBMs: 260, FCPMs: 360, LCPMs: 360, TTIMs: 540, BundleKB: 165, PayloadKB: 38},
		PageStates: []model.PageStateTransition{
			{AtMs: 0, State: model.PageBlank},
			{AtMs: 360, State: model.PagePartial},
			{AtMs: 540, State: model.PageComplete},
		},
	},
}
