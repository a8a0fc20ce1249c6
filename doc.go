// Package newsflow provides the session core for an AI-assisted newsletter
// curation tool: a staged generation pipeline with conversational editing.
//
// The package is organized into subpackages by domain:
//
//   - backend: generation service (feed aggregation, summaries, tweets, newsletter)
//   - config: YAML configuration with environment overrides
//   - http: shared HTTP client utilities
//   - notify: session event notification (log, webhook)
//   - persist: durable conversation storage
//   - prompt: prompt template loading
//   - testutil: test utilities and fixtures
//
// The root package holds the session state machine. A Controller owns one
// SessionState aggregate and drives the fixed pipeline
//
//	fetch articles → select → summarize → posts / newsletter
//
// through a Gateway, the only seam to the generation service. Edits to
// generated content are staged as proposals behind an explicit
// accept/reject gate.
//
// # Quick Start
//
//	gw := newsflow.NewHTTPGateway(newsflow.GatewayConfig{BaseURL: "http://localhost:8080"})
//	ctrl, _ := newsflow.NewController(newsflow.ControllerConfig{
//	    Gateway: gw,
//	    Persist: persist.NewMemoryStore(),
//	})
//	defer ctrl.Close()
//
//	ctrl.FetchArticles(ctx, feedURLs)
//	ctrl.SummarizeSelected(ctx)
//	ctrl.GeneratePosts(ctx)
//
// See individual package documentation for detailed usage.
package newsflow
