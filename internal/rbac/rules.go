package rbac

// Default policy. Trainees submit sheets and read their own results; staff
// author tests and run scoring; admin can do everything.
var RolePermissions = map[string][]string{
	"trainee": {
		"test:view",
		"sheet:submit",
		"result:view-own",
		"user:change_password",
	},
	"staff": {
		"test:create",
		"test:view",
		"test:update",
		"test:delete",
		"sheet:view",
		"result:compute",
		"result:view",
		"result:remarks",
		"result:delete",
		"users:list",
		"users:bulk_upsert",
		"user:change_password",
	},
	"admin": {
		"*", // everything
	},
}
