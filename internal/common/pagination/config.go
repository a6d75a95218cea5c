package pagination

// Config holds pagination limits for offset endpoints (latest reviews, feed)
// and for the search endpoint. pkg/config fills it from file and environment.
type Config struct {
	DefaultPage     int // Default page number (typically 1)
	DefaultPageSize int // Default items per page on offset endpoints (typically 20)
	MaxPageSize     int // Page sizes above this are clamped (typically 100)
	DefaultLimit    int // Default search page size (typically 20)
	MaxLimit        int // Search limits above this are clamped (typically 50)
}

// DefaultConfig returns the default pagination configuration.
func DefaultConfig() Config {
	return Config{
		DefaultPage:     1,
		DefaultPageSize: 20,
		MaxPageSize:     100,
		DefaultLimit:    20,
		MaxLimit:        50,
	}
}
