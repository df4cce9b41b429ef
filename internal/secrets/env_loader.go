package secrets

import "os"

// EnvLoader returns a Loader that reads the specified environment variables.
// Missing variables are silently omitted from the result map.
func EnvLoader(keys ...string) Loader {
	return func() (map[string]string, error) {
		vals := make(map[string]string, len(keys))
		for _, k := range keys {
			if v := os.Getenv(k); v != "" {
				vals[k] = v
			}
		}
		return vals, nil
	}
}

// Static returns a Loader serving a fixed value set. Empty values are
// omitted so they never mask another loader's entries in a Chain.
func Static(values map[string]string) Loader {
	return func() (map[string]string, error) {
		vals := make(map[string]string, len(values))
		for k, v := range values {
			if v != "" {
				vals[k] = v
			}
		}
		return vals, nil
	}
}

// Chain merges the results of several loaders; later loaders win on
// conflicting keys. A failure in any loader fails the whole load.
func Chain(loaders ...Loader) Loader {
	return func() (map[string]string, error) {
		merged := make(map[string]string)
		for _, l := range loaders {
			vals, err := l()
			if err != nil {
				return nil, err
			}
			for k, v := range vals {
				merged[k] = v
			}
		}
		return merged, nil
	}
}
