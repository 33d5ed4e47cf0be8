package skybrief

// Client is the top-level entry point. It bundles the shared HTTP core with
// the per-surface API groups.
type Client struct {
	Config Config

	auth       Auth
	httpClient *httpClient

	Agents *AgentsAPI
	Search *SearchAPI
}

// NewClient builds a client. Empty or zero arguments fall back to the
// SKYBRIEF_* environment variables.
func NewClient(apiKey, projectEndpoint string, timeoutSeconds float64, maxRetries int) (*Client, error) {
	cfg, err := LoadConfig(apiKey, projectEndpoint, timeoutSeconds, maxRetries)
	if err != nil {
		return nil, err
	}
	return NewClientWithConfig(cfg)
}

// NewClientWithParams builds a client from explicit parameters, falling back
// to the environment for whatever is left unset.
func NewClientWithParams(params ConfigParams) (*Client, error) {
	cfg, err := LoadConfigWithParams(params)
	if err != nil {
		return nil, err
	}
	return NewClientWithConfig(cfg)
}

// NewClientWithConfig builds a client from a fully prepared Config.
func NewClientWithConfig(cfg Config) (*Client, error) {
	auth := newAuth(cfg)
	hc := newHTTPClient(cfg, auth)
	c := &Client{
		Config:     cfg,
		auth:       auth,
		httpClient: hc,
	}
	c.Agents = newAgentsAPI(cfg, hc)
	c.Search = newSearchAPI(cfg, hc)
	return c, nil
}

// Close releases idle connections held by the client.
func (c *Client) Close() {
	c.httpClient.close()
}
