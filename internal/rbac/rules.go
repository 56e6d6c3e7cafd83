package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"viewer": {
		"exam:view",
		"batch:view",
		"score:view",
	},
	"operator": {
		"exam:view",
		"batch:view",
		"batch:decode",
		"batch:score",
		"score:view",
		"decode:preview",
	},
	"admin": {
		"*", // everything
	},
}
