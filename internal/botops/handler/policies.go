package handler

import (
	"rolegate/internal/access"
	"rolegate/pkg/domain"
)

// Route policies. MustPolicy panics on an empty role set, so a bad table
// fails at process start rather than on first request.
var (
	SendPolicy    = access.MustPolicy("send", domain.RoleAdmin, domain.RoleMod)
	RestartPolicy = access.MustPolicy("restart", domain.RoleAdmin)
	LogsPolicy    = access.MustPolicy("logs", domain.RoleAdmin, domain.RoleMod)
)
