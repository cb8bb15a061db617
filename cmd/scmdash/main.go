package main

import (
	"scmdash/internal/cli"

	_ "scmdash/docs"
)

// @title scmdash API
// @version 1.0.0
// @description Backend of the SCM infrastructure dashboard: users, repositories, migrations, backups and schedules.
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and a JWT token.

func main() {
	cli.Execute()
}
