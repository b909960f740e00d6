// Package apiclient is a small client for remote HTTP APIs that answer in
// JSON, XML or plain text.
//
// A Client is bound to one endpoint (scheme, domain and optional port) and
// sends GET and POST requests with optional basic authentication. Response
// bodies are classified by shape and decoded into a tagged Body. Statuses
// outside [200, 210] are returned as *Error values with code ErrCodeStatus.
// Results can be kept behind a cache-aside Store with a TTL.
//
// # Basic Usage
//
//	client, err := apiclient.New(apiclient.Config{
//	    Domain:   "api.example.com",
//	    Secure:   true,
//	    Username: "user",
//	    Password: "secret",
//	})
//
//	body, err := client.Get(ctx, "/users", map[string]any{
//	    "filter": map[string]any{"active": true},
//	    "ids":    []int{1, 2},
//	})
//	// GET https://api.example.com/users?filter[active]=true&ids[]=1&ids[]=2
//
//	body, err = client.Post(ctx, "/items", map[string]any{"name": "x"})
//
// # Request Hooks
//
// Config.OnSetupRequest runs on every request after basic auth is applied.
// Hooks passed to Get, Post or Do run after it, for that call only:
//
//	client.Get(ctx, "/users", nil, func(req *http.Request) {
//	    req.Header.Set("Accept", "application/json")
//	})
//
// # Caching
//
//	client, _ := apiclient.New(cfg, apiclient.WithCache(redisClient))
//
//	users, err := apiclient.CacheAs(ctx, client, "users", 5*time.Minute,
//	    func(ctx context.Context) ([]User, error) { return fetchUsers(ctx) })
//
// # Error Handling
//
//	if code, ok := apiclient.StatusCode(err); ok && code == 404 {
//	    // not found
//	}
//	if apiclient.IsTransport(err) {
//	    // connection refused, TLS failure, timeout
//	}
package apiclient
