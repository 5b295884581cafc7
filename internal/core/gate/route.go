package gate

import (
	"path"
	"strings"
)

const (
	AdminPrefix = "/admin"
	LoginPath   = "/admin/login"
)

// RouteClass is the gate's view of a request path.
type RouteClass int

const (
	RoutePublic RouteClass = iota
	RouteLogin
	RouteProtected
)

func (c RouteClass) String() string {
	switch c {
	case RouteLogin:
		return "login"
	case RouteProtected:
		return "protected"
	default:
		return "public"
	}
}

// Classify maps a request path to its route class. The login path and
// everything below it is checked before the admin prefix.
func Classify(p string) RouteClass {
	p = CleanPath(p)
	switch {
	case underPrefix(p, LoginPath):
		return RouteLogin
	case underPrefix(p, AdminPrefix):
		return RouteProtected
	default:
		return RoutePublic
	}
}

// CleanPath returns the canonical form of p used for classification.
func CleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

func underPrefix(p, prefix string) bool {
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}
