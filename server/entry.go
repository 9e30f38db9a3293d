package server

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/plugmux/plugmux/httperror"
	"github.com/plugmux/plugmux/plugin"
)

const entryDocument = `<!DOCTYPE html>
<head><base href="plugin/%s/" /></head>
<body><script type="module">%s</script></body>
`

// pluginEntry serves the HTML wrapper document that bootstraps an
// iframed plugin by importing its ES module. The import statement is the
// only script in the document and is pinned by its hash in the content
// security policy.
func (s *Server) pluginEntry(w http.ResponseWriter, r *http.Request) error {
	name := r.URL.Query().Get("name")
	p, ok := s.index.Plugin(name)
	if !ok {
		return httperror.NotFound(fmt.Sprintf("no plugin with name %q", name))
	}

	mechanism, err := s.loadingMechanism(p)
	if err != nil {
		return err
	}

	if mechanism.Type != plugin.MechanismIFrame {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(http.StatusBadRequest)
		_, err := io.WriteString(w, "Plugin is not module loadable")
		return err
	}

	// The module is imported relative to the base href, so the document
	// stays correct regardless of the path prefix the core is mounted
	// under.
	module, err := json.Marshal("." + p.FrontendMetadata().ESModulePath)
	if err != nil {
		return err
	}

	script := fmt.Sprintf(`import(%s).then((m) => void m.render());`, module)
	scriptSha := base64.StdEncoding.EncodeToString(sha256sum(script))

	csp := strings.Join([]string{
		"default-src 'self'",
		"font-src 'self'",
		"frame-ancestors *",
		"img-src blob: data: 'self'",
		fmt.Sprintf("script-src 'sha256-%s'", scriptSha),
		"style-src blob: data: 'unsafe-inline' 'self'",
	}, "; ")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Security-Policy", csp)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	_, err = io.WriteString(w, fmt.Sprintf(entryDocument, name, script))
	return err
}

func sha256sum(s string) []byte {
	sum := sha256.Sum256([]byte(s))
	return sum[:]
}
