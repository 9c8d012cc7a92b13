package rbac

// Simple default policy. Candidates never authenticate here; their surface
// is addressed by assignment access token instead of a role.
var RolePermissions = map[string][]string{
	"reviewer": {
		"test:view",
		"candidate:view",
		"assignment:view",
		"grading:*",
		"export:results",
	},
	"admin": {
		"*", // everything
	},
}
