package server

import (
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
)

var systemPaths = map[string]bool{
	"/health":  true,
	"/version": true,
}

// Routes returns the registered routes, API routes first, then system
// routes, each group sorted by path and method.
func (s *Server) Routes() gin.RoutesInfo {
	routes := s.engine.Routes()
	sort.Slice(routes, func(i, j int) bool {
		iSys, jSys := systemPaths[routes[i].Path], systemPaths[routes[j].Path]
		if iSys != jSys {
			return !iSys
		}
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return methodOrder(routes[i].Method) < methodOrder(routes[j].Method)
	})
	return routes
}

// LogRoutes writes the route table at debug level.
func (s *Server) LogRoutes() {
	for _, r := range s.Routes() {
		s.log.Debug("Route", map[string]interface{}{
			"method":  r.Method,
			"path":    r.Path,
			"handler": formatHandlerName(r.Handler),
		})
	}
}

// formatHandlerName shortens Gin's handler names:
// "github.com/org/svc/api.(*AuthHandler).Login-fm" becomes "AuthHandler.Login".
func formatHandlerName(fullPath string) string {
	name := strings.TrimSuffix(fullPath, "-fm")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.ReplaceAll(name, "(*", "")
	name = strings.ReplaceAll(name, ")", "")

	// Closures such as "endpoint.Health.func1" keep the enclosing name.
	if strings.Contains(name, ".func") {
		parts := strings.Split(name, ".")
		for i := len(parts) - 1; i >= 0; i-- {
			if !strings.HasPrefix(parts[i], "func") {
				name = strings.ToLower(parts[i])
				break
			}
		}
	}

	// Drop a lowercase package prefix.
	if pkg, rest, ok := strings.Cut(name, "."); ok && rest != "" && strings.ToLower(pkg) == pkg {
		name = rest
	}
	return name
}

func methodOrder(method string) int {
	switch method {
	case "GET":
		return 0
	case "POST":
		return 1
	case "PUT":
		return 2
	case "PATCH":
		return 3
	case "DELETE":
		return 4
	default:
		return 5
	}
}
