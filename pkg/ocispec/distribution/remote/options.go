package remote

// DefaultOptions returns the default options.
func DefaultOptions() *Options {
	return &Options{
		Client: NewClient(),
	}
}

// MakeOptions returns the options with all optional parameters applied.
func MakeOptions(opts ...Option) *Options {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// Option is the optional parameter setting method.
type Option func(*Options)

// Options is the structure of the optional parameters.
type Options struct {
	Client *Client
}

// WithHTTPClient sets the HTTP client for the registry.
func WithHTTPClient(client *Client) Option {
	return func(o *Options) {
		if client != nil {
			o.Client = client
		}
	}
}
