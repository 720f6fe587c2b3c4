package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"candidate": {
		"session:start",
		"session:submit",
		"session:view-own",
		"candidate:view-own",
		"certificate:view-own",
	},
	"supervisor": {
		"question:create",
		"question:view",
		"question:delete",
		"session:view-all",
		"candidate:view-all",
	},
	"admin": {
		"*", // everything
	},
}
