package routing

// configError is the closed set of configuration error reasons detected
// at registration. They are fatal: a misconfigured plugin aborts startup.
type configError string

func (e configError) Error() string { return string(e) }

const (
	ErrInvalidName    configError = "invalid name"
	ErrInvalidRoute   configError = "invalid route"
	ErrDuplicateName  configError = "duplicate plugin name"
	ErrDuplicateRoute configError = "duplicate route"
)
