package audit

import "strings"

// ActionResource holds action and resource derived from an HTTP route.
type ActionResource struct {
	Action   string
	Resource string
}

const apiPrefix = "/api/v1/"

// Sub-resource routes whose last segment does not name the action directly.
var subActions = map[string]string{
	"program": "submit",
	"frames":  "capture",
	"execute": "execute",
	"role":    "role_changed",
	"status":  "status_changed",
}

// ParseRoute returns action and resource for a gin route template (e.g. POST /api/v1/plans/:id/validate).
// Resource is the singular first path segment. Action is the verb segment after the id when present
// (validate, approve, abort), otherwise derived from the method: create, update, delete, get or list.
func ParseRoute(method, route string) ActionResource {
	path := strings.TrimPrefix(route, apiPrefix)
	path = strings.Trim(path, "/")
	if path == "" {
		return ActionResource{Action: "unknown", Resource: "unknown"}
	}
	segs := strings.Split(path, "/")
	resource := singular(segs[0])

	last := segs[len(segs)-1]
	if len(segs) > 1 && !strings.HasPrefix(last, ":") {
		if a, ok := subActions[last]; ok {
			return ActionResource{Action: a, Resource: resource}
		}
		return ActionResource{Action: strings.ReplaceAll(last, "-", "_"), Resource: resource}
	}
	return ActionResource{Action: methodToAction(method, len(segs) > 1), Resource: resource}
}

func singular(seg string) string {
	seg = strings.ReplaceAll(seg, "-", "_")
	switch {
	case strings.HasSuffix(seg, "ies"):
		return strings.TrimSuffix(seg, "ies") + "y"
	case strings.HasSuffix(seg, "s"):
		return strings.TrimSuffix(seg, "s")
	default:
		return seg
	}
}

func methodToAction(method string, byID bool) string {
	switch strings.ToUpper(method) {
	case "POST":
		return "create"
	case "PUT", "PATCH":
		return "update"
	case "DELETE":
		return "delete"
	case "GET":
		if byID {
			return "get"
		}
		return "list"
	default:
		return strings.ToLower(method)
	}
}

// Mutating reports whether requests with method change state and so are audited.
func Mutating(method string) bool {
	switch strings.ToUpper(method) {
	case "POST", "PUT", "PATCH", "DELETE":
		return true
	}
	return false
}
